package bot

import (
	"github.com/bwmarrin/discordgo"
	"github.com/karashiin/hibiki/guildmodels"
	"github.com/karashiin/hibiki/welcome"
	"github.com/sirupsen/logrus"
)

//HandleMemberAdd greets a new member and grants the guild's auto-roles.
func (b *HibikiBot) HandleMemberAdd(m *discordgo.GuildMemberAdd) {
	ctx, cancel := handlerContext()
	defer cancel()
	guildCfg, err := b.DBConnection.GetOrCreateGuild(ctx, m.GuildID)
	if err != nil {
		logrus.Warnf("Failed to load guild config for member join in guild %v due to error %v", m.GuildID, err)
		return
	}

	if guildCfg.AutoRole.Enabled {
		b.grantAutoRoles(guildCfg, m)
	}
	if guildCfg.Welcome.Enabled && guildCfg.Welcome.ChannelID != "" {
		b.postMemberMessage(guildCfg.Welcome, guildCfg.Welcome.WelcomeTemplate, welcome.DefaultWelcomeTemplate, m.GuildID, m.User)
	}
}

//HandleMemberRemove posts the guild's leave message, if configured.
func (b *HibikiBot) HandleMemberRemove(m *discordgo.GuildMemberRemove) {
	ctx, cancel := handlerContext()
	defer cancel()
	guildCfg, err := b.DBConnection.GetOrCreateGuild(ctx, m.GuildID)
	if err != nil {
		logrus.Warnf("Failed to load guild config for member leave in guild %v due to error %v", m.GuildID, err)
		return
	}
	if !guildCfg.Welcome.Enabled || guildCfg.Welcome.ChannelID == "" {
		return
	}
	b.postMemberMessage(guildCfg.Welcome, guildCfg.Welcome.LeaveTemplate, welcome.DefaultLeaveTemplate, m.GuildID, m.User)
}

func (b *HibikiBot) grantAutoRoles(guildCfg *guildmodels.GuildConfig, m *discordgo.GuildMemberAdd) {
	for _, roleID := range guildCfg.AutoRole.RoleIDs {
		exists, err := b.DiscordConnection.RoleExists(m.GuildID, roleID)
		if err == nil && !exists {
			logrus.Warnf("Skipping auto-role %v in guild %v as it no longer exists", roleID, m.GuildID)
			continue
		}
		err = b.DiscordConnection.GrantRole(m.GuildID, m.User.ID, roleID, "Auto-role on join")
		if err != nil {
			logrus.Warnf("Failed to grant auto-role %v to user %v in guild %v due to error %v", roleID, m.User.ID, m.GuildID, err)
		}
	}
}

func (b *HibikiBot) postMemberMessage(cfg guildmodels.WelcomeConfig, template, fallback string, guildID string, user *discordgo.User) {
	if template == "" {
		template = fallback
	}
	serverName := guildID
	memberCount := 0
	guild, err := b.DiscordSession().State.Guild(guildID)
	if err == nil {
		serverName = guild.Name
		memberCount = guild.MemberCount
	}

	content := welcome.Render(template, welcome.TemplateData{
		UserID:      user.ID,
		Username:    user.Username,
		ServerName:  serverName,
		MemberCount: memberCount,
	})

	colour := cfg.EmbedColor
	if colour == 0 {
		colour = menuEmbedColour
	}
	_, err = b.DiscordSession().ChannelMessageSendComplex(cfg.ChannelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{{
			Type:        discordgo.EmbedTypeRich,
			Description: content,
			Color:       colour,
		}},
	})
	if err != nil {
		logrus.Errorf("Failed to send welcome/leave message to channel %v due to error %v", cfg.ChannelID, err)
	}
}
