package bot

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
)

//HandleWelcomeCommand handles the /welcome enable and disable subcommands.
func (b *HibikiBot) HandleWelcomeCommand(i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	var result Response
	isFromAdmin, err := b.isFromAdmin(i)
	if err != nil {
		result = ResponseInternalError{command: "/welcome", err: err, timestamp: time.Now()}
	} else if !isFromAdmin {
		result = ResponseNotAllowed{command: "/welcome", timestamp: time.Now()}
	} else {
		sub, options := subcommand(data)
		opts := optionMap(options)
		switch sub {
		case "enable":
			result = b.enableWelcome(i, opts)
		case "disable":
			result = b.disableWelcome(i)
		default:
			result = ResponseInternalError{command: "/welcome", err: fmt.Errorf("unknown subcommand %v", sub), timestamp: time.Now()}
		}
	}
	b.respond(i, result)
}

func (b *HibikiBot) enableWelcome(i *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) Response {
	command := "/welcome enable"
	channel := channelOption(b.DiscordSession(), opts, "channel")
	if channel == nil {
		return ResponseDenied{command: command, reason: "I couldn't resolve that channel", timestamp: time.Now()}
	}

	ctx, cancel := handlerContext()
	defer cancel()
	guildCfg, err := b.DBConnection.GetOrCreateGuild(ctx, i.GuildID)
	if err != nil {
		return ResponseInternalError{command: command, err: err, timestamp: time.Now()}
	}

	guildCfg.Welcome.Enabled = true
	guildCfg.Welcome.ChannelID = channel.ID
	if template, ok := stringOption(opts, "welcome_template"); ok {
		guildCfg.Welcome.WelcomeTemplate = template
	}
	if template, ok := stringOption(opts, "leave_template"); ok {
		guildCfg.Welcome.LeaveTemplate = template
	}

	err = b.DBConnection.UpdateGuild(ctx, guildCfg)
	if err != nil {
		return ResponseInternalError{command: command, err: err, timestamp: time.Now()}
	}
	return ResponseSuccess{
		command:     command,
		description: fmt.Sprintf("Welcome and leave messages will now be posted in <#%v>", channel.ID),
		timestamp:   time.Now(),
	}
}

func (b *HibikiBot) disableWelcome(i *discordgo.InteractionCreate) Response {
	command := "/welcome disable"
	ctx, cancel := handlerContext()
	defer cancel()
	guildCfg, err := b.DBConnection.GetOrCreateGuild(ctx, i.GuildID)
	if err != nil {
		return ResponseInternalError{command: command, err: err, timestamp: time.Now()}
	}
	guildCfg.Welcome.Enabled = false
	err = b.DBConnection.UpdateGuild(ctx, guildCfg)
	if err != nil {
		return ResponseInternalError{command: command, err: err, timestamp: time.Now()}
	}
	return ResponseSuccess{
		command:     command,
		description: "Welcome and leave messages are now disabled",
		timestamp:   time.Now(),
	}
}
