package bot

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
)

//HandleAdminCommand handles the /admin addrole subcommand, which marks a guild
//role as allowed to run the bot's admin commands.
func (b *HibikiBot) HandleAdminCommand(i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	var result Response
	isFromAdmin, err := b.isFromAdmin(i)
	if err != nil {
		result = ResponseInternalError{command: "/admin", err: err, timestamp: time.Now()}
	} else if !isFromAdmin {
		result = ResponseNotAllowed{command: "/admin", timestamp: time.Now()}
	} else {
		sub, options := subcommand(data)
		opts := optionMap(options)
		switch sub {
		case "addrole":
			result = b.addBotAdminRole(i, opts)
		default:
			result = ResponseInternalError{command: "/admin", err: fmt.Errorf("unknown subcommand %v", sub), timestamp: time.Now()}
		}
	}
	b.respond(i, result)
}

func (b *HibikiBot) addBotAdminRole(i *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) Response {
	command := "/admin addrole"
	role := roleOption(b.DiscordSession(), i.GuildID, opts, "role")
	if role == nil {
		return ResponseDenied{command: command, reason: "I couldn't resolve that role", timestamp: time.Now()}
	}

	ctx, cancel := handlerContext()
	defer cancel()
	//Make sure the guild document exists before pushing into its role list
	_, err := b.DBConnection.GetOrCreateGuild(ctx, i.GuildID)
	if err != nil {
		return ResponseInternalError{command: command, err: err, timestamp: time.Now()}
	}
	updated, err := b.DBConnection.AddAdminRole(ctx, i.GuildID, role.ID)
	if err != nil {
		return ResponseInternalError{command: command, err: err, timestamp: time.Now()}
	}
	if updated == 0 {
		return ResponseDenied{command: command, reason: fmt.Sprintf("The role %v is already a bot admin role", role.Name), timestamp: time.Now()}
	}
	return ResponseSuccess{
		command:     command,
		description: fmt.Sprintf("Members with the %v role can now run admin commands", role.Name),
		timestamp:   time.Now(),
	}
}
