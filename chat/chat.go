package chat

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/karashiin/hibiki/guildmodels"
	"github.com/sirupsen/logrus"
)

const openaiTokenEnvVar = "HIBIKI_OPENAI_TOKEN"
const chatModelEnvVar = "HIBIKI_CHAT_MODEL"
const chatCooldownEnvVar = "HIBIKI_CHAT_COOLDOWN_SECONDS"

const defaultModel = openai.GPT4oMini
const defaultMaxTokens = 1024
const defaultCooldown = 15 * time.Second
const defaultSystemPrompt = "You are a friendly Discord assistant. Keep answers short enough to fit in a single message."

//ErrCooldown is returned when a user asks again before their cooldown expires.
var ErrCooldown = errors.New("chat: user is on cooldown")

//Client bridges chat slash commands to the chat-completion backend, applying
//a per-user cooldown in front of it.
type Client struct {
	backend      *openai.Client
	defaultModel string
	cooldowns    *cooldownTable
}

//Init creates a chat client from the relevant environment variables.
func Init() (*Client, error) {
	apiTok, exists := os.LookupEnv(openaiTokenEnvVar)
	if !exists {
		logrus.Errorf("`%v` env variable was not set.", openaiTokenEnvVar)
		return nil, fmt.Errorf("`%v` env variable was not set", openaiTokenEnvVar)
	}
	model, exists := os.LookupEnv(chatModelEnvVar)
	if !exists {
		model = defaultModel
	}
	cooldown := defaultCooldown
	if raw, exists := os.LookupEnv(chatCooldownEnvVar); exists {
		seconds, err := strconv.Atoi(raw)
		if err != nil || seconds < 0 {
			logrus.Warnf("Ignoring invalid `%v` value %v", chatCooldownEnvVar, raw)
		} else {
			cooldown = time.Duration(seconds) * time.Second
		}
	}

	return &Client{
		backend:      openai.NewClient(apiTok),
		defaultModel: model,
		cooldowns:    newCooldownTable(cooldown),
	}, nil
}

//Close stops the cooldown table's eviction loop.
func (c *Client) Close() {
	c.cooldowns.stop()
}

//Complete sends one user prompt to the chat-completion backend and returns
//the assistant's reply. Guild overrides take precedence over the env defaults.
func (c *Client) Complete(ctx context.Context, cfg guildmodels.ChatGuildConfig, userID string, prompt string) (string, error) {
	if !c.cooldowns.allow(userID) {
		return "", ErrCooldown
	}

	model := c.defaultModel
	if cfg.Model != "" {
		model = cfg.Model
	}
	maxTokens := defaultMaxTokens
	if cfg.MaxTokens > 0 {
		maxTokens = cfg.MaxTokens
	}
	systemPrompt := defaultSystemPrompt
	if cfg.SystemPrompt != "" {
		systemPrompt = cfg.SystemPrompt
	}

	resp, err := c.backend.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     model,
		MaxTokens: maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		logrus.Warnf("Chat completion request failed due to error %v", err)
		return "", fmt.Errorf("chat completion request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat: backend returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
