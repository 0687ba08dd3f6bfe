package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/karashiin/hibiki/db"
	"github.com/karashiin/hibiki/guildmodels"
	"github.com/sirupsen/logrus"
)

//HandleTicketCommand handles the /ticket open, close and setup subcommands.
func (b *HibikiBot) HandleTicketCommand(i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	var result Response
	sub, options := subcommand(data)
	opts := optionMap(options)
	switch sub {
	case "open":
		result = b.openTicket(i, opts)
	case "close":
		result = b.closeTicket(i)
	case "setup":
		result = b.setupTickets(i, opts)
	default:
		result = ResponseInternalError{command: "/ticket", err: fmt.Errorf("unknown subcommand %v", sub), timestamp: time.Now()}
	}
	b.respond(i, result)
}

func (b *HibikiBot) openTicket(i *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) Response {
	command := "/ticket open"
	if i.Member == nil || i.Member.User == nil {
		return ResponseDenied{command: command, reason: "Tickets can only be opened from inside a server", timestamp: time.Now()}
	}
	openerID := i.Member.User.ID

	ctx, cancel := handlerContext()
	defer cancel()
	guildCfg, err := b.DBConnection.GetOrCreateGuild(ctx, i.GuildID)
	if err != nil {
		return ResponseInternalError{command: command, err: err, timestamp: time.Now()}
	}
	if !guildCfg.Tickets.Enabled {
		return ResponseDenied{command: command, reason: "The ticket system is not set up on this server. An admin needs to run /ticket setup first.", timestamp: time.Now()}
	}

	number, err := b.DBConnection.NextTicketNumber(ctx, i.GuildID)
	if err != nil {
		return ResponseInternalError{command: command, err: err, timestamp: time.Now()}
	}

	channel, err := b.createTicketChannel(i.GuildID, guildCfg.Tickets, openerID, number)
	if err != nil {
		return ResponseInternalError{command: command, err: err, timestamp: time.Now()}
	}

	topic, _ := stringOption(opts, "topic")
	ticket := guildmodels.Ticket{
		GuildID:   i.GuildID,
		ChannelID: channel.ID,
		Number:    number,
		OpenerID:  openerID,
		Topic:     topic,
		State:     guildmodels.TicketStateOpen,
		OpenedAt:  time.Now(),
	}
	err = b.DBConnection.InsertTicket(ctx, &ticket)
	if err != nil {
		//Without a document the channel would be orphaned, so take it down again
		_, delErr := b.DiscordSession().ChannelDelete(channel.ID)
		if delErr != nil {
			logrus.Warnf("Failed to remove orphaned ticket channel %v due to error %v", channel.ID, delErr)
		}
		return ResponseInternalError{command: command, err: err, timestamp: time.Now()}
	}

	b.postTicketGreeting(channel.ID, openerID, guildCfg.Tickets.SupportRoleID, topic)
	return ResponseSuccess{
		command:     command,
		description: fmt.Sprintf("Opened ticket #%04d in <#%v>", number, channel.ID),
		ephemeral:   true,
		timestamp:   time.Now(),
	}
}

func (b *HibikiBot) closeTicket(i *discordgo.InteractionCreate) Response {
	command := "/ticket close"
	userID, _ := attribution(i)

	ctx, cancel := handlerContext()
	defer cancel()
	ticket, err := b.DBConnection.FindOpenTicketByChannel(ctx, i.GuildID, i.ChannelID)
	if errors.Is(err, db.ErrTicketNotFound) {
		return ResponseDenied{command: command, reason: "This channel does not belong to an open ticket", timestamp: time.Now()}
	}
	if err != nil {
		return ResponseInternalError{command: command, err: err, timestamp: time.Now()}
	}

	//Only the opener, admins or the support role may close a ticket
	allowed := ticket.OpenerID == userID
	if !allowed {
		allowed, err = b.canManageTicket(ctx, i)
		if err != nil {
			return ResponseInternalError{command: command, err: err, timestamp: time.Now()}
		}
	}
	if !allowed {
		return ResponseNotAllowed{command: command, timestamp: time.Now()}
	}

	err = b.DBConnection.CloseTicket(ctx, i.GuildID, i.ChannelID, userID)
	if errors.Is(err, db.ErrTicketNotFound) {
		return ResponseDenied{command: command, reason: "This channel does not belong to an open ticket", timestamp: time.Now()}
	}
	if err != nil {
		return ResponseInternalError{command: command, err: err, timestamp: time.Now()}
	}

	//The document is authoritative; removing the channel is best effort
	go func() {
		time.Sleep(5 * time.Second)
		_, err := b.DiscordSession().ChannelDelete(i.ChannelID)
		if err != nil {
			logrus.Warnf("Failed to delete closed ticket channel %v due to error %v", i.ChannelID, err)
		}
	}()
	return ResponseSuccess{
		command:     command,
		description: fmt.Sprintf("Closed ticket #%04d. This channel will be removed shortly.", ticket.Number),
		timestamp:   time.Now(),
	}
}

func (b *HibikiBot) setupTickets(i *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) Response {
	command := "/ticket setup"
	isFromAdmin, err := b.isFromAdmin(i)
	if err != nil {
		return ResponseInternalError{command: command, err: err, timestamp: time.Now()}
	}
	if !isFromAdmin {
		return ResponseNotAllowed{command: command, timestamp: time.Now()}
	}

	category := channelOption(b.DiscordSession(), opts, "category")
	supportRole := roleOption(b.DiscordSession(), i.GuildID, opts, "support_role")
	if category == nil || supportRole == nil {
		return ResponseDenied{command: command, reason: "I couldn't resolve that category or role", timestamp: time.Now()}
	}
	if category.Type != discordgo.ChannelTypeGuildCategory {
		return ResponseDenied{command: command, reason: "Ticket channels need a category channel to be created under", timestamp: time.Now()}
	}

	ctx, cancel := handlerContext()
	defer cancel()
	guildCfg, err := b.DBConnection.GetOrCreateGuild(ctx, i.GuildID)
	if err != nil {
		return ResponseInternalError{command: command, err: err, timestamp: time.Now()}
	}
	guildCfg.Tickets.Enabled = true
	guildCfg.Tickets.CategoryID = category.ID
	guildCfg.Tickets.SupportRoleID = supportRole.ID
	if guildCfg.Tickets.NextNumber == 0 {
		guildCfg.Tickets.NextNumber = 1
	}
	err = b.DBConnection.UpdateGuild(ctx, guildCfg)
	if err != nil {
		return ResponseInternalError{command: command, err: err, timestamp: time.Now()}
	}
	return ResponseSuccess{
		command:     command,
		description: fmt.Sprintf("Tickets will now be created under **%v** and visible to <@&%v>", category.Name, supportRole.ID),
		timestamp:   time.Now(),
	}
}

//createTicketChannel creates the private channel backing a ticket: hidden from
//everyone except the opener, the support role and the bot itself.
func (b *HibikiBot) createTicketChannel(guildID string, cfg guildmodels.TicketConfig, openerID string, number int) (*discordgo.Channel, error) {
	session := b.DiscordSession()
	memberPerms := int64(discordgo.PermissionViewChannel | discordgo.PermissionSendMessages | discordgo.PermissionReadMessageHistory)
	overwrites := []*discordgo.PermissionOverwrite{
		{ID: guildID, Type: discordgo.PermissionOverwriteTypeRole, Deny: int64(discordgo.PermissionViewChannel)},
		{ID: openerID, Type: discordgo.PermissionOverwriteTypeMember, Allow: memberPerms},
		{ID: session.State.User.ID, Type: discordgo.PermissionOverwriteTypeMember, Allow: memberPerms},
	}
	if cfg.SupportRoleID != "" {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID: cfg.SupportRoleID, Type: discordgo.PermissionOverwriteTypeRole, Allow: memberPerms,
		})
	}
	channel, err := session.GuildChannelCreateComplex(guildID, discordgo.GuildChannelCreateData{
		Name:                 fmt.Sprintf("ticket-%04d", number),
		Type:                 discordgo.ChannelTypeGuildText,
		ParentID:             cfg.CategoryID,
		PermissionOverwrites: overwrites,
	})
	if err != nil {
		logrus.Warnf("Failed to create ticket channel for guild %v due to error %v", guildID, err)
		return nil, fmt.Errorf("failed to create ticket channel: %w", err)
	}
	return channel, nil
}

func (b *HibikiBot) postTicketGreeting(channelID, openerID, supportRoleID, topic string) {
	greeting := fmt.Sprintf("Hi <@%v>! Describe your issue here and someone will be with you shortly.", openerID)
	if topic != "" {
		greeting = fmt.Sprintf("%v\nTopic: %v", greeting, topic)
	}
	allowed := &discordgo.MessageAllowedMentions{
		Users: []string{openerID},
	}
	if supportRoleID != "" {
		greeting = fmt.Sprintf("%v\ncc <@&%v>", greeting, supportRoleID)
		allowed.Roles = []string{supportRoleID}
	}
	_, err := b.DiscordSession().ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content:         greeting,
		AllowedMentions: allowed,
	})
	if err != nil {
		logrus.Warnf("Failed to post ticket greeting to channel %v due to error %v", channelID, err)
	}
}

//canManageTicket reports whether the sender may close tickets they did not
//open: admins, or holders of the configured support role.
func (b *HibikiBot) canManageTicket(ctx context.Context, i *discordgo.InteractionCreate) (bool, error) {
	isFromAdmin, err := b.isFromAdmin(i)
	if err != nil {
		return false, err
	}
	if isFromAdmin {
		return true, nil
	}
	guildCfg, err := b.DBConnection.GetOrCreateGuild(ctx, i.GuildID)
	if err != nil {
		return false, err
	}
	if guildCfg.Tickets.SupportRoleID == "" || i.Member == nil {
		return false, nil
	}
	for _, role := range i.Member.Roles {
		if role == guildCfg.Tickets.SupportRoleID {
			return true, nil
		}
	}
	return false, nil
}
