package bot

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/karashiin/hibiki/guildmodels"
	"github.com/karashiin/hibiki/rolemenu"
)

const menuEmbedColour int = 0x5865f2

//HandleRoleMenuCommand handles every /rolemenu subcommand.
func (b *HibikiBot) HandleRoleMenuCommand(i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	var result Response
	isFromAdmin, err := b.isFromAdmin(i)
	if err != nil {
		result = ResponseInternalError{command: "/rolemenu", err: err, timestamp: time.Now()}
	} else if !isFromAdmin {
		result = ResponseNotAllowed{command: "/rolemenu", timestamp: time.Now()}
	} else {
		sub, options := subcommand(data)
		opts := optionMap(options)
		switch sub {
		case "create":
			result = b.createRoleMenu(i, opts)
		case "addrole":
			result = b.addMenuRole(i, opts)
		case "removerole":
			result = b.removeMenuRole(i, opts)
		case "reorder":
			result = b.reorderMenuRole(i, opts)
		case "settings":
			result = b.updateMenuSettings(i, opts)
		case "delete":
			result = b.deleteRoleMenu(i, opts)
		case "cleanup":
			result = b.cleanupRoleMenu(i, opts)
		case "list":
			result = b.listRoleMenus(i)
		default:
			result = ResponseInternalError{command: "/rolemenu", err: fmt.Errorf("unknown subcommand %v", sub), timestamp: time.Now()}
		}
	}
	b.respond(i, result)
}

func (b *HibikiBot) createRoleMenu(i *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) Response {
	command := "/rolemenu create"
	channel := channelOption(b.DiscordSession(), opts, "channel")
	if channel == nil {
		return ResponseDenied{command: command, reason: "I couldn't resolve that channel", timestamp: time.Now()}
	}
	title, _ := stringOption(opts, "title")
	description, _ := stringOption(opts, "description")

	settings := guildmodels.MenuSettings{AllowRoleRemoval: true, EphemeralResponse: true}
	if maxRoles, ok := intOption(opts, "max_roles"); ok && maxRoles > 0 {
		settings.MaxRolesPerUser = &maxRoles
	}
	if allowRemoval, ok := boolOption(opts, "allow_removal"); ok {
		settings.AllowRoleRemoval = allowRemoval
	}
	if ephemeral, ok := boolOption(opts, "ephemeral"); ok {
		settings.EphemeralResponse = ephemeral
	}

	userID, username := attribution(i)
	creator := guildmodels.Attribution{UserID: userID, Username: username, Timestamp: time.Now()}
	config := guildmodels.RoleMenuConfig{
		GuildID:        i.GuildID,
		ChannelID:      channel.ID,
		Title:          title,
		Description:    description,
		Color:          menuEmbedColour,
		Settings:       settings,
		CreatedBy:      creator,
		LastModifiedBy: creator,
	}

	ctx, cancel := handlerContext()
	defer cancel()
	err := b.RoleMenus.CreateMenu(ctx, &config)
	if errors.Is(err, rolemenu.ErrMissingTitle) {
		return ResponseDenied{command: command, reason: "A menu needs both a title and a description", timestamp: time.Now()}
	}
	if err != nil {
		return ResponseInternalError{command: command, err: err, timestamp: time.Now()}
	}
	return ResponseSuccess{
		command:     command,
		description: fmt.Sprintf("Posted a new role menu in <#%v>. Menu ID: `%v`", channel.ID, config.MessageID),
		timestamp:   time.Now(),
	}
}

func (b *HibikiBot) addMenuRole(i *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) Response {
	command := "/rolemenu addrole"
	menuID, _ := stringOption(opts, "menu")
	role := roleOption(b.DiscordSession(), i.GuildID, opts, "role")
	if role == nil {
		return ResponseDenied{command: command, reason: "I couldn't resolve that role", timestamp: time.Now()}
	}

	entry := guildmodels.RoleEntry{
		RoleID:   role.ID,
		RoleName: role.Name,
		Label:    role.Name,
		Style:    guildmodels.ButtonStylePrimary,
		Position: -1,
	}
	if label, ok := stringOption(opts, "label"); ok {
		entry.Label = label
	}
	if emoji, ok := stringOption(opts, "emoji"); ok {
		apiEmoji := interpretEmoji(emoji)
		if apiEmoji == nil {
			return ResponseDenied{command: command, reason: "I couldn't understand that emoji", timestamp: time.Now()}
		}
		entry.Emoji = apiEmoji
	}
	if description, ok := stringOption(opts, "description"); ok {
		entry.Description = &description
	}
	if style, ok := stringOption(opts, "style"); ok {
		entry.Style = style
	}
	if position, ok := intOption(opts, "position"); ok {
		entry.Position = position
	}
	if maxAssignments, ok := intOption(opts, "max_assignments"); ok && maxAssignments > 0 {
		entry.MaxAssignments = &maxAssignments
	}
	if required := roleOption(b.DiscordSession(), i.GuildID, opts, "required_role"); required != nil {
		entry.RequiredRole = &required.ID
	}
	if conflicting := roleOption(b.DiscordSession(), i.GuildID, opts, "conflicts_with"); conflicting != nil {
		entry.ConflictingRoles = []string{conflicting.ID}
	}

	userID, username := attribution(i)
	ctx, cancel := handlerContext()
	defer cancel()
	err := b.RoleMenus.AddRole(ctx, menuID, entry, guildmodels.Attribution{UserID: userID, Username: username})
	switch {
	case errors.Is(err, rolemenu.ErrNotFound):
		return ResponseDenied{command: command, reason: "No menu exists with that message ID", timestamp: time.Now()}
	case errors.Is(err, rolemenu.ErrDuplicateRole):
		return ResponseDenied{command: command, reason: fmt.Sprintf("The role %v already exists on that menu", role.Name), timestamp: time.Now()}
	case errors.Is(err, rolemenu.ErrMenuFull):
		return ResponseDenied{command: command, reason: fmt.Sprintf("A menu may offer a maximum of %d roles", rolemenu.MaxMenuRoles), timestamp: time.Now()}
	case err != nil:
		return ResponseInternalError{command: command, err: err, timestamp: time.Now()}
	}
	return ResponseSuccess{
		command:     command,
		description: fmt.Sprintf("Added %v to menu `%v`", role.Name, menuID),
		timestamp:   time.Now(),
	}
}

func (b *HibikiBot) removeMenuRole(i *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) Response {
	command := "/rolemenu removerole"
	menuID, _ := stringOption(opts, "menu")
	role := roleOption(b.DiscordSession(), i.GuildID, opts, "role")
	if role == nil {
		return ResponseDenied{command: command, reason: "I couldn't resolve that role", timestamp: time.Now()}
	}

	userID, username := attribution(i)
	ctx, cancel := handlerContext()
	defer cancel()
	err := b.RoleMenus.RemoveRole(ctx, menuID, role.ID, guildmodels.Attribution{UserID: userID, Username: username})
	switch {
	case errors.Is(err, rolemenu.ErrNotFound):
		return ResponseDenied{command: command, reason: "No menu exists with that message ID", timestamp: time.Now()}
	case errors.Is(err, rolemenu.ErrRoleNotOnMenu):
		return ResponseDenied{command: command, reason: fmt.Sprintf("The role %v is not on that menu", role.Name), timestamp: time.Now()}
	case err != nil:
		return ResponseInternalError{command: command, err: err, timestamp: time.Now()}
	}
	return ResponseSuccess{
		command:     command,
		description: fmt.Sprintf("Removed %v from menu `%v`", role.Name, menuID),
		timestamp:   time.Now(),
	}
}

func (b *HibikiBot) reorderMenuRole(i *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) Response {
	command := "/rolemenu reorder"
	menuID, _ := stringOption(opts, "menu")
	position, _ := intOption(opts, "position")
	role := roleOption(b.DiscordSession(), i.GuildID, opts, "role")
	if role == nil {
		return ResponseDenied{command: command, reason: "I couldn't resolve that role", timestamp: time.Now()}
	}

	userID, username := attribution(i)
	ctx, cancel := handlerContext()
	defer cancel()
	err := b.RoleMenus.ReorderRole(ctx, menuID, role.ID, position, guildmodels.Attribution{UserID: userID, Username: username})
	switch {
	case errors.Is(err, rolemenu.ErrNotFound):
		return ResponseDenied{command: command, reason: "No menu exists with that message ID", timestamp: time.Now()}
	case errors.Is(err, rolemenu.ErrRoleNotOnMenu):
		return ResponseDenied{command: command, reason: fmt.Sprintf("The role %v is not on that menu", role.Name), timestamp: time.Now()}
	case errors.Is(err, rolemenu.ErrBadPosition):
		return ResponseDenied{command: command, reason: "That position is beyond the end of the menu", timestamp: time.Now()}
	case err != nil:
		return ResponseInternalError{command: command, err: err, timestamp: time.Now()}
	}
	return ResponseSuccess{
		command:     command,
		description: fmt.Sprintf("Moved %v to position %d on menu `%v`", role.Name, position, menuID),
		timestamp:   time.Now(),
	}
}

func (b *HibikiBot) updateMenuSettings(i *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) Response {
	command := "/rolemenu settings"
	menuID, _ := stringOption(opts, "menu")

	ctx, cancel := handlerContext()
	defer cancel()
	config, err := b.DBConnection.FindByMessage(ctx, menuID)
	if errors.Is(err, rolemenu.ErrNotFound) {
		return ResponseDenied{command: command, reason: "No menu exists with that message ID", timestamp: time.Now()}
	}
	if err != nil {
		return ResponseInternalError{command: command, err: err, timestamp: time.Now()}
	}

	settings := config.Settings
	if maxRoles, ok := intOption(opts, "max_roles"); ok {
		if maxRoles <= 0 {
			settings.MaxRolesPerUser = nil
		} else {
			settings.MaxRolesPerUser = &maxRoles
		}
	}
	if allowRemoval, ok := boolOption(opts, "allow_removal"); ok {
		settings.AllowRoleRemoval = allowRemoval
	}
	if ephemeral, ok := boolOption(opts, "ephemeral"); ok {
		settings.EphemeralResponse = ephemeral
	}
	if logChannel := channelOption(b.DiscordSession(), opts, "log_channel"); logChannel != nil {
		settings.LogChannelID = &logChannel.ID
	}
	if clear, ok := boolOption(opts, "clear_log_channel"); ok && clear {
		settings.LogChannelID = nil
	}

	userID, username := attribution(i)
	err = b.RoleMenus.UpdateSettings(ctx, menuID, settings, guildmodels.Attribution{UserID: userID, Username: username})
	if err != nil {
		return ResponseInternalError{command: command, err: err, timestamp: time.Now()}
	}
	return ResponseSuccess{
		command:     command,
		description: fmt.Sprintf("Updated settings for menu `%v`", menuID),
		timestamp:   time.Now(),
	}
}

func (b *HibikiBot) deleteRoleMenu(i *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) Response {
	command := "/rolemenu delete"
	menuID, _ := stringOption(opts, "menu")

	ctx, cancel := handlerContext()
	defer cancel()
	err := b.RoleMenus.DeleteMenu(ctx, menuID)
	if errors.Is(err, rolemenu.ErrNotFound) {
		return ResponseDenied{command: command, reason: "No menu exists with that message ID", timestamp: time.Now()}
	}
	if err != nil {
		return ResponseInternalError{command: command, err: err, timestamp: time.Now()}
	}
	return ResponseSuccess{
		command:     command,
		description: fmt.Sprintf("Deleted menu `%v`", menuID),
		timestamp:   time.Now(),
	}
}

func (b *HibikiBot) cleanupRoleMenu(i *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) Response {
	command := "/rolemenu cleanup"
	menuID, _ := stringOption(opts, "menu")

	ctx, cancel := handlerContext()
	defer cancel()
	removed, err := b.RoleMenus.CleanupStaleRoles(ctx, menuID)
	if errors.Is(err, rolemenu.ErrNotFound) {
		return ResponseDenied{command: command, reason: "No menu exists with that message ID", timestamp: time.Now()}
	}
	if err != nil {
		return ResponseInternalError{command: command, err: err, timestamp: time.Now()}
	}
	return ResponseSuccess{
		command:     command,
		description: fmt.Sprintf("Removed %d stale role(s) from menu `%v`", removed, menuID),
		timestamp:   time.Now(),
	}
}

func (b *HibikiBot) listRoleMenus(i *discordgo.InteractionCreate) Response {
	command := "/rolemenu list"
	ctx, cancel := handlerContext()
	defer cancel()
	configs, err := b.RoleMenus.Store.ListByGuild(ctx, i.GuildID)
	if err != nil {
		return ResponseInternalError{command: command, err: err, timestamp: time.Now()}
	}
	if len(configs) == 0 {
		return ResponseSuccess{command: command, description: "This server has no role menus yet", ephemeral: true, timestamp: time.Now()}
	}
	var lines []string
	for _, config := range configs {
		lines = append(lines, fmt.Sprintf("`%v` in <#%v> — **%v** (%d roles, %d interactions)",
			config.MessageID, config.ChannelID, config.Title, len(config.Roles), config.Statistics.TotalInteractions))
	}
	return ResponseSuccess{
		command:     command,
		description: strings.Join(lines, "\n"),
		ephemeral:   true,
		timestamp:   time.Now(),
	}
}
