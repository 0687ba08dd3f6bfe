package rolemenu

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/karashiin/hibiki/guildmodels"
)

const toggleCustomIDPrefix = "rolemenu:toggle"

//ToggleCustomID encodes the button identifier for a role on a menu message.
func ToggleCustomID(messageID, roleID string) string {
	return fmt.Sprintf("%s:%s:%s", toggleCustomIDPrefix, messageID, roleID)
}

//ParseToggleCustomID decodes a button identifier produced by ToggleCustomID.
//It returns ok=false for identifiers belonging to other components.
func ParseToggleCustomID(customID string) (messageID, roleID string, ok bool) {
	if !strings.HasPrefix(customID, toggleCustomIDPrefix+":") {
		return "", "", false
	}
	parts := strings.Split(customID, ":")
	if len(parts) != 4 {
		return "", "", false
	}
	return parts[2], parts[3], true
}

//BuildEmbed renders a menu config into the embed shown on the menu message,
//with one line per role showing emoji, label, description and assignment
//counts.
func BuildEmbed(config *guildmodels.RoleMenuConfig) *discordgo.MessageEmbed {
	var lines []string
	for _, entry := range config.Roles {
		var sb strings.Builder
		if entry.Emoji != nil {
			sb.WriteString(*entry.Emoji)
			sb.WriteString(" ")
		}
		sb.WriteString(fmt.Sprintf("**%s**", entry.Label))
		if entry.Description != nil {
			sb.WriteString(fmt.Sprintf(" — %s", *entry.Description))
		}
		if entry.MaxAssignments != nil {
			sb.WriteString(fmt.Sprintf(" (%d/%d)", entry.CurrentAssignments, *entry.MaxAssignments))
		} else {
			sb.WriteString(fmt.Sprintf(" (%d)", entry.CurrentAssignments))
		}
		lines = append(lines, sb.String())
	}
	description := config.Description
	if len(lines) > 0 {
		description = description + "\n\n" + strings.Join(lines, "\n")
	}
	return &discordgo.MessageEmbed{
		Title:       config.Title,
		Type:        discordgo.EmbedTypeRich,
		Description: description,
		Color:       config.Color,
	}
}

//BuildComponents renders the menu's buttons as up to 5 action rows of up to 5
//buttons each, in role position order.
func BuildComponents(config *guildmodels.RoleMenuConfig) []discordgo.MessageComponent {
	var rows []discordgo.MessageComponent
	var row []discordgo.MessageComponent
	for _, entry := range config.Roles {
		button := discordgo.Button{
			CustomID: ToggleCustomID(config.MessageID, entry.RoleID),
			Label:    entry.Label,
			Style:    buttonStyle(entry.Style),
		}
		if entry.Emoji != nil {
			button.Emoji = &discordgo.ComponentEmoji{Name: *entry.Emoji}
		}
		row = append(row, button)
		if len(row) == 5 {
			rows = append(rows, discordgo.ActionsRow{Components: row})
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, discordgo.ActionsRow{Components: row})
	}
	return rows
}

func buttonStyle(style string) discordgo.ButtonStyle {
	switch style {
	case guildmodels.ButtonStyleSecondary:
		return discordgo.SecondaryButton
	case guildmodels.ButtonStyleSuccess:
		return discordgo.SuccessButton
	case guildmodels.ButtonStyleDanger:
		return discordgo.DangerButton
	default:
		return discordgo.PrimaryButton
	}
}
