package bot

import (
	"errors"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/karashiin/hibiki/chat"
	"github.com/sirupsen/logrus"
)

//Discord caps message content at 2000 characters; longer completions are cut.
const maxReplyLength = 2000

//HandleChatCommand forwards a /chat prompt to the chat-completion backend and
//posts the reply. Completions regularly take longer than the three seconds
//discord allows for a response, so the interaction is deferred first.
func (b *HibikiBot) HandleChatCommand(i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	opts := optionMap(data.Options)
	prompt, ok := stringOption(opts, "prompt")
	if !ok || prompt == "" {
		b.respond(i, ResponseDenied{command: "/chat", reason: "You need to give me something to respond to", timestamp: time.Now()})
		return
	}

	userID, _ := attribution(i)
	err := b.deferResponse(i, false)
	if err != nil {
		return
	}

	ctx, cancel := handlerContext()
	defer cancel()
	guildCfg, err := b.DBConnection.GetOrCreateGuild(ctx, i.GuildID)
	if err != nil {
		logrus.Warnf("Failed to load guild chat config for guild %v due to error %v", i.GuildID, err)
		b.editResponse(i, "Oops! I encountered an unexpected error whilst running your /chat command. Please try again later.")
		return
	}

	reply, err := b.Chat.Complete(ctx, guildCfg.Chat, userID, prompt)
	if errors.Is(err, chat.ErrCooldown) {
		b.editResponse(i, "Easy there! Give me a few seconds before asking again.")
		return
	}
	if err != nil {
		logrus.Warnf("Chat completion for user %v failed due to error %v", userID, err)
		b.editResponse(i, "Oops! I encountered an unexpected error whilst running your /chat command. Please try again later.")
		return
	}
	if len(reply) > maxReplyLength {
		reply = reply[:maxReplyLength-1] + "…"
	}
	logrus.Infof("%v Completed command /chat successfully for user %v", logLineLabel(time.Now()), userID)
	b.editResponse(i, reply)
}
