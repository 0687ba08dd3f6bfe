package bot

import (
	"github.com/bwmarrin/discordgo"
	"github.com/karashiin/hibiki/rolemenu"
	"github.com/sirupsen/logrus"
)

//Commands returns the slash command definitions for the bot.
func Commands() []*discordgo.ApplicationCommand {
	manageGuild := int64(discordgo.PermissionManageServer)
	return []*discordgo.ApplicationCommand{
		{
			Name:                     "rolemenu",
			Description:              "Manage self-assignable role menus",
			DefaultMemberPermissions: &manageGuild,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "create",
					Description: "Post a new role menu in a channel",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionChannel, Name: "channel", Description: "Channel to post the menu in", Required: true},
						{Type: discordgo.ApplicationCommandOptionString, Name: "title", Description: "Menu title", Required: true},
						{Type: discordgo.ApplicationCommandOptionString, Name: "description", Description: "Menu description", Required: true},
						{Type: discordgo.ApplicationCommandOptionInteger, Name: "max_roles", Description: "Maximum menu roles one user may hold"},
						{Type: discordgo.ApplicationCommandOptionBoolean, Name: "allow_removal", Description: "Allow users to remove roles again (default true)"},
						{Type: discordgo.ApplicationCommandOptionBoolean, Name: "ephemeral", Description: "Reply to toggles privately (default true)"},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "addrole",
					Description: "Add a role to an existing menu",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionString, Name: "menu", Description: "Message ID of the menu", Required: true},
						{Type: discordgo.ApplicationCommandOptionRole, Name: "role", Description: "Role to offer", Required: true},
						{Type: discordgo.ApplicationCommandOptionString, Name: "label", Description: "Button label (defaults to the role name)"},
						{Type: discordgo.ApplicationCommandOptionString, Name: "emoji", Description: "Button emoji"},
						{Type: discordgo.ApplicationCommandOptionString, Name: "description", Description: "Line shown for this role on the menu"},
						{
							Type: discordgo.ApplicationCommandOptionString, Name: "style", Description: "Button style",
							Choices: []*discordgo.ApplicationCommandOptionChoice{
								{Name: "Primary", Value: "Primary"},
								{Name: "Secondary", Value: "Secondary"},
								{Name: "Success", Value: "Success"},
								{Name: "Danger", Value: "Danger"},
							},
						},
						{Type: discordgo.ApplicationCommandOptionInteger, Name: "position", Description: "Sort position on the menu"},
						{Type: discordgo.ApplicationCommandOptionInteger, Name: "max_assignments", Description: "Maximum users that may hold this role"},
						{Type: discordgo.ApplicationCommandOptionRole, Name: "required_role", Description: "Role a user must already hold"},
						{Type: discordgo.ApplicationCommandOptionRole, Name: "conflicts_with", Description: "Role that may not be held at the same time"},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "removerole",
					Description: "Remove a role from a menu",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionString, Name: "menu", Description: "Message ID of the menu", Required: true},
						{Type: discordgo.ApplicationCommandOptionRole, Name: "role", Description: "Role to remove", Required: true},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "reorder",
					Description: "Move a role to a new position on a menu",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionString, Name: "menu", Description: "Message ID of the menu", Required: true},
						{Type: discordgo.ApplicationCommandOptionRole, Name: "role", Description: "Role to move", Required: true},
						{Type: discordgo.ApplicationCommandOptionInteger, Name: "position", Description: "New position", Required: true},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "settings",
					Description: "Change a menu's settings",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionString, Name: "menu", Description: "Message ID of the menu", Required: true},
						{Type: discordgo.ApplicationCommandOptionInteger, Name: "max_roles", Description: "Maximum menu roles one user may hold (0 clears the limit)"},
						{Type: discordgo.ApplicationCommandOptionBoolean, Name: "allow_removal", Description: "Allow users to remove roles again"},
						{Type: discordgo.ApplicationCommandOptionBoolean, Name: "ephemeral", Description: "Reply to toggles privately"},
						{Type: discordgo.ApplicationCommandOptionChannel, Name: "log_channel", Description: "Channel toggles are logged to"},
						{Type: discordgo.ApplicationCommandOptionBoolean, Name: "clear_log_channel", Description: "Stop logging toggles"},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "delete",
					Description: "Delete a role menu",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionString, Name: "menu", Description: "Message ID of the menu", Required: true},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "cleanup",
					Description: "Remove menu entries whose roles were deleted from the server",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionString, Name: "menu", Description: "Message ID of the menu", Required: true},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "list",
					Description: "List this server's role menus",
				},
			},
		},
		{
			Name:                     "welcome",
			Description:              "Configure welcome and leave messages",
			DefaultMemberPermissions: &manageGuild,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "enable",
					Description: "Enable welcome/leave messages in a channel",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionChannel, Name: "channel", Description: "Channel for the messages", Required: true},
						{Type: discordgo.ApplicationCommandOptionString, Name: "welcome_template", Description: "Template: {user} {username} {server} {memberCount}"},
						{Type: discordgo.ApplicationCommandOptionString, Name: "leave_template", Description: "Template: {user} {username} {server} {memberCount}"},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "disable",
					Description: "Disable welcome/leave messages",
				},
			},
		},
		{
			Name:                     "autorole",
			Description:              "Configure roles granted automatically on join",
			DefaultMemberPermissions: &manageGuild,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "add",
					Description: "Add a role to the auto-role list",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionRole, Name: "role", Description: "Role to grant on join", Required: true},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "remove",
					Description: "Remove a role from the auto-role list",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionRole, Name: "role", Description: "Role to stop granting", Required: true},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "list",
					Description: "Show the auto-role list",
				},
			},
		},
		{
			Name:                     "admin",
			Description:              "Manage which roles may administer this bot",
			DefaultMemberPermissions: &manageGuild,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "addrole",
					Description: "Allow a role to run this bot's admin commands",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionRole, Name: "role", Description: "Role to grant bot admin rights", Required: true},
					},
				},
			},
		},
		{
			Name:        "chat",
			Description: "Ask the bot's AI assistant",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "prompt", Description: "What to ask", Required: true},
			},
		},
		{
			Name:        "play",
			Description: "Play a track or add it to the queue",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "query", Description: "Search terms or a URL", Required: true},
			},
		},
		{Name: "skip", Description: "Skip the current track"},
		{Name: "stop", Description: "Stop playback and clear the queue"},
		{Name: "queue", Description: "Show the current queue"},
		{
			Name:        "ticket",
			Description: "Support tickets",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "open",
					Description: "Open a support ticket",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionString, Name: "topic", Description: "What the ticket is about"},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "close",
					Description: "Close the ticket behind this channel",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "setup",
					Description: "Configure the ticket system",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionChannel, Name: "category", Description: "Category ticket channels are created under", Required: true},
						{Type: discordgo.ApplicationCommandOptionRole, Name: "support_role", Description: "Role that can see tickets", Required: true},
					},
				},
			},
		},
	}
}

//RegisterCommands overwrites the bot's global slash commands with the current definitions.
func (b *HibikiBot) RegisterCommands() error {
	session := b.DiscordSession()
	_, err := session.ApplicationCommandBulkOverwrite(session.State.User.ID, "", Commands())
	if err != nil {
		logrus.Errorf("Failed to register slash commands due to error %v", err)
		return err
	}
	return nil
}

//HandleInteraction is called upon every interaction from the gateway. It routes slash commands and
//component presses to their handlers.
func (b *HibikiBot) HandleInteraction(i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		data := i.ApplicationCommandData()
		switch data.Name {
		case "rolemenu":
			b.HandleRoleMenuCommand(i, data)
		case "welcome":
			b.HandleWelcomeCommand(i, data)
		case "autorole":
			b.HandleAutoRoleCommand(i, data)
		case "admin":
			b.HandleAdminCommand(i, data)
		case "chat":
			b.HandleChatCommand(i, data)
		case "play", "skip", "stop", "queue":
			b.HandleMusicCommand(i, data)
		case "ticket":
			b.HandleTicketCommand(i, data)
		default:
			logrus.Warnf("Got interaction for unknown command %v", data.Name)
		}
	case discordgo.InteractionMessageComponent:
		customID := i.MessageComponentData().CustomID
		if messageID, roleID, ok := rolemenu.ParseToggleCustomID(customID); ok {
			b.HandleRoleToggle(i, messageID, roleID)
			return
		}
		logrus.Debugf("Ignoring component interaction with custom id %v", customID)
	}
}
