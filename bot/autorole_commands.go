package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

//HandleAutoRoleCommand handles the /autorole add, remove and list subcommands.
func (b *HibikiBot) HandleAutoRoleCommand(i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	var result Response
	isFromAdmin, err := b.isFromAdmin(i)
	if err != nil {
		result = ResponseInternalError{command: "/autorole", err: err, timestamp: time.Now()}
	} else if !isFromAdmin {
		result = ResponseNotAllowed{command: "/autorole", timestamp: time.Now()}
	} else {
		sub, options := subcommand(data)
		opts := optionMap(options)
		switch sub {
		case "add":
			result = b.addAutoRole(i, opts)
		case "remove":
			result = b.removeAutoRole(i, opts)
		case "list":
			result = b.listAutoRoles(i)
		default:
			result = ResponseInternalError{command: "/autorole", err: fmt.Errorf("unknown subcommand %v", sub), timestamp: time.Now()}
		}
	}
	b.respond(i, result)
}

func (b *HibikiBot) addAutoRole(i *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) Response {
	command := "/autorole add"
	role := roleOption(b.DiscordSession(), i.GuildID, opts, "role")
	if role == nil {
		return ResponseDenied{command: command, reason: "I couldn't resolve that role", timestamp: time.Now()}
	}

	ctx, cancel := handlerContext()
	defer cancel()
	guildCfg, err := b.DBConnection.GetOrCreateGuild(ctx, i.GuildID)
	if err != nil {
		return ResponseInternalError{command: command, err: err, timestamp: time.Now()}
	}
	for _, existing := range guildCfg.AutoRole.RoleIDs {
		if existing == role.ID {
			return ResponseDenied{command: command, reason: fmt.Sprintf("The role %v is already on the auto-role list", role.Name), timestamp: time.Now()}
		}
	}
	guildCfg.AutoRole.Enabled = true
	guildCfg.AutoRole.RoleIDs = append(guildCfg.AutoRole.RoleIDs, role.ID)
	err = b.DBConnection.UpdateGuild(ctx, guildCfg)
	if err != nil {
		return ResponseInternalError{command: command, err: err, timestamp: time.Now()}
	}
	return ResponseSuccess{
		command:     command,
		description: fmt.Sprintf("New members will now be given the %v role on join", role.Name),
		timestamp:   time.Now(),
	}
}

func (b *HibikiBot) removeAutoRole(i *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) Response {
	command := "/autorole remove"
	role := roleOption(b.DiscordSession(), i.GuildID, opts, "role")
	if role == nil {
		return ResponseDenied{command: command, reason: "I couldn't resolve that role", timestamp: time.Now()}
	}

	ctx, cancel := handlerContext()
	defer cancel()
	guildCfg, err := b.DBConnection.GetOrCreateGuild(ctx, i.GuildID)
	if err != nil {
		return ResponseInternalError{command: command, err: err, timestamp: time.Now()}
	}
	found := false
	kept := guildCfg.AutoRole.RoleIDs[:0]
	for _, existing := range guildCfg.AutoRole.RoleIDs {
		if existing == role.ID {
			found = true
			continue
		}
		kept = append(kept, existing)
	}
	if !found {
		return ResponseDenied{command: command, reason: fmt.Sprintf("The role %v is not on the auto-role list", role.Name), timestamp: time.Now()}
	}
	guildCfg.AutoRole.RoleIDs = kept
	if len(kept) == 0 {
		guildCfg.AutoRole.Enabled = false
	}
	err = b.DBConnection.UpdateGuild(ctx, guildCfg)
	if err != nil {
		return ResponseInternalError{command: command, err: err, timestamp: time.Now()}
	}
	return ResponseSuccess{
		command:     command,
		description: fmt.Sprintf("The %v role will no longer be given on join", role.Name),
		timestamp:   time.Now(),
	}
}

func (b *HibikiBot) listAutoRoles(i *discordgo.InteractionCreate) Response {
	command := "/autorole list"
	ctx, cancel := handlerContext()
	defer cancel()
	guildCfg, err := b.DBConnection.GetOrCreateGuild(ctx, i.GuildID)
	if err != nil {
		return ResponseInternalError{command: command, err: err, timestamp: time.Now()}
	}
	if len(guildCfg.AutoRole.RoleIDs) == 0 {
		return ResponseSuccess{command: command, description: "This server has no auto-roles configured", ephemeral: true, timestamp: time.Now()}
	}
	var mentions []string
	for _, roleID := range guildCfg.AutoRole.RoleIDs {
		mentions = append(mentions, fmt.Sprintf("<@&%v>", roleID))
	}
	return ResponseSuccess{
		command:     command,
		description: fmt.Sprintf("Roles given on join: %v", strings.Join(mentions, ", ")),
		ephemeral:   true,
		timestamp:   time.Now(),
	}
}
