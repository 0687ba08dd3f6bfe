package bot

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
)

const (
	successMessageColour int = 0x28bd00
	warnMessageColour    int = 0xbdb900
	errorMessageColour   int = 0xbd1b00
)

//Response represents the result of a command which can be both communicated over discord and written to the log.
type Response interface {
	InteractionResponse() *discordgo.InteractionResponse
	WriteToLog()
}

//ResponseSuccess will be returned when a command has been successfully completed
type ResponseSuccess struct {
	//The base command name
	command string
	//A human-readable description of what happened
	description string
	//Whether the reply should only be visible to the invoking user
	ephemeral bool
	//The time the success was logged at
	timestamp time.Time
}

//InteractionResponse builds a response object which can be sent back to whoever invoked the command.
func (r ResponseSuccess) InteractionResponse() *discordgo.InteractionResponse {
	embed := discordgo.MessageEmbed{
		Title:       "Success! \\o/",
		Type:        discordgo.EmbedTypeRich,
		Description: r.description,
		Timestamp:   r.timestamp.Format(time.RFC3339),
		Color:       successMessageColour,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Log ID: %d", r.timestamp.UnixNano()),
		},
	}
	data := discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{&embed},
	}
	if r.ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &data,
	}
}

//WriteToLog dumps data on a discord command response to the log
func (r ResponseSuccess) WriteToLog() {
	logrus.Infof("%v Completed command %v successfully: %v", logLineLabel(r.timestamp), r.command, r.description)
}

//ResponseDenied will be returned when a rule blocked the requested action.
//The reason names the specific rule that failed.
type ResponseDenied struct {
	//The base command name
	command string
	//A human-readable description of the rule that failed
	reason string
	//The time the denial was logged at
	timestamp time.Time
}

//InteractionResponse builds a response object which can be sent back to whoever invoked the command.
func (r ResponseDenied) InteractionResponse() *discordgo.InteractionResponse {
	embed := discordgo.MessageEmbed{
		Title:       "That didn't work",
		Type:        discordgo.EmbedTypeRich,
		Description: r.reason,
		Timestamp:   r.timestamp.Format(time.RFC3339),
		Color:       warnMessageColour,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Log ID: %d", r.timestamp.UnixNano()),
		},
	}
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{&embed},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	}
}

//WriteToLog dumps data on a discord command response to the log
func (r ResponseDenied) WriteToLog() {
	logrus.Infof("%v Denied command %v: %v", logLineLabel(r.timestamp), r.command, r.reason)
}

//ResponseInternalError will be returned when there was some kind of error within the bot or when communicating with
//APIs. The user gets a generic message without internal detail.
type ResponseInternalError struct {
	//The base command name
	command string
	//The underlying error, written to the log only
	err error
	//The time the error was logged at
	timestamp time.Time
}

//InteractionResponse builds a response object which can be sent back to whoever invoked the command.
func (r ResponseInternalError) InteractionResponse() *discordgo.InteractionResponse {
	description := fmt.Sprintf("Oops! I encountered an unexpected error whilst running your %v command. Please try again later.", r.command)
	embed := discordgo.MessageEmbed{
		Title:       "Oops, something went wrong ;w;",
		Type:        discordgo.EmbedTypeRich,
		Description: description,
		Timestamp:   r.timestamp.Format(time.RFC3339),
		Color:       errorMessageColour,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Log ID: %d", r.timestamp.UnixNano()),
		},
	}
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{&embed},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	}
}

//WriteToLog dumps data on a discord command response to the log
func (r ResponseInternalError) WriteToLog() {
	logrus.Warnf("%v Internal error whilst executing command %v: %v", logLineLabel(r.timestamp), r.command, r.err)
}

//ResponseNotAllowed will be returned when a user tried to run a command that they do not have the correct role for
type ResponseNotAllowed struct {
	//The base command name
	command string
	//The time the error was logged at
	timestamp time.Time
}

//InteractionResponse builds a response object which can be sent back to whoever invoked the command.
func (r ResponseNotAllowed) InteractionResponse() *discordgo.InteractionResponse {
	embed := discordgo.MessageEmbed{
		Title:       "That's illegal m8",
		Type:        discordgo.EmbedTypeRich,
		Description: fmt.Sprintf("Sorry, but the %v command needs admin privileges.", r.command),
		Timestamp:   r.timestamp.Format(time.RFC3339),
		Color:       errorMessageColour,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Log ID: %d", r.timestamp.UnixNano()),
		},
	}
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{&embed},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	}
}

//WriteToLog dumps data on a discord command response to the log
func (r ResponseNotAllowed) WriteToLog() {
	logrus.Infof("%v Rejected command %v as the sender did not have the correct privileges", logLineLabel(r.timestamp), r.command)
}

/////////////////////
//Utility Functions//
/////////////////////

func logLineLabel(t time.Time) string {
	return fmt.Sprintf("#%v# | ", t.UnixNano())
}
