package bot

import (
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/karashiin/hibiki/rolemenu"
	"github.com/sirupsen/logrus"
)

//HandleRoleToggle handles a press on one of a role menu's buttons.
func (b *HibikiBot) HandleRoleToggle(i *discordgo.InteractionCreate, messageID, roleID string) {
	if i.Member == nil || i.Member.User == nil {
		logrus.Warnf("Got role toggle without member data on message %v", messageID)
		return
	}
	userID := i.Member.User.ID

	ctx, cancel := handlerContext()
	defer cancel()

	//The menu's settings decide whether replies are private; fall back to
	//private when the menu has vanished.
	ephemeral := true
	var logChannel *string
	config, err := b.DBConnection.FindByMessage(ctx, messageID)
	if err == nil {
		ephemeral = config.Settings.EphemeralResponse
		logChannel = config.Settings.LogChannelID
	} else if !errors.Is(err, rolemenu.ErrNotFound) {
		b.respond(i, ResponseInternalError{command: "role toggle", err: err, timestamp: time.Now()})
		return
	}

	outcome := b.RoleMenus.ToggleRole(ctx, i.GuildID, messageID, roleID, userID, i.Member.Roles)
	b.respond(i, toggleResponse(outcome, roleID, ephemeral))

	if logChannel != nil {
		b.logToggle(*logChannel, outcome, userID, roleID)
	}
}

//toggleResponse maps a toggle outcome to the single short reply the invoking
//user sees. Denials name the violated rule; platform and persistence failures
//get a generic try-again message.
func toggleResponse(outcome rolemenu.Outcome, roleID string, ephemeral bool) Response {
	now := time.Now()
	switch outcome.Kind {
	case rolemenu.OutcomeAssigned:
		return ResponseSuccess{
			command:     "role toggle",
			description: fmt.Sprintf("You now have the <@&%v> role!", roleID),
			ephemeral:   ephemeral,
			timestamp:   now,
		}
	case rolemenu.OutcomeRemoved:
		return ResponseSuccess{
			command:     "role toggle",
			description: fmt.Sprintf("Removed your <@&%v> role.", roleID),
			ephemeral:   ephemeral,
			timestamp:   now,
		}
	case rolemenu.OutcomeDeniedAssign, rolemenu.OutcomeDeniedRemove:
		return ResponseDenied{command: "role toggle", reason: outcome.Reason, timestamp: now}
	case rolemenu.OutcomeRoleMissing:
		return ResponseDenied{
			command:   "role toggle",
			reason:    "That role no longer exists on this server. Ask an admin to run /rolemenu cleanup.",
			timestamp: now,
		}
	default:
		return ResponseInternalError{
			command:   "role toggle",
			err:       fmt.Errorf("toggle failed with outcome %v", outcome.Kind),
			timestamp: now,
		}
	}
}

//logToggle posts a short audit line to the menu's configured log channel.
func (b *HibikiBot) logToggle(channelID string, outcome rolemenu.Outcome, userID, roleID string) {
	var line string
	switch outcome.Kind {
	case rolemenu.OutcomeAssigned:
		line = fmt.Sprintf("<@%v> took the <@&%v> role", userID, roleID)
	case rolemenu.OutcomeRemoved:
		line = fmt.Sprintf("<@%v> dropped the <@&%v> role", userID, roleID)
	default:
		return
	}
	_, err := b.DiscordSession().ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content:         line,
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	})
	if err != nil {
		logrus.Warnf("Failed to write role toggle log line to channel %v due to error %v", channelID, err)
	}
}
