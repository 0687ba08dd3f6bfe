package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/karashiin/hibiki/guildmodels"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

//ErrTicketNotFound is returned when a channel has no open ticket behind it.
var ErrTicketNotFound = errors.New("db: no open ticket for channel")

//InsertTicket stores a freshly opened ticket document.
func (db *Connection) InsertTicket(ctx context.Context, ticket *guildmodels.Ticket) error {
	_, err := db.database.Collection(ticketsCollection).InsertOne(ctx, ticket)
	if err != nil {
		logrus.Warnf("Failed to insert ticket %v for guild %v due to error %v", ticket.Number, ticket.GuildID, err)
		return fmt.Errorf("failed to insert ticket: %w", err)
	}
	return nil
}

//FindOpenTicketByChannel returns the open ticket backed by the given channel.
func (db *Connection) FindOpenTicketByChannel(ctx context.Context, guildID, channelID string) (*guildmodels.Ticket, error) {
	var ticket guildmodels.Ticket
	err := db.database.Collection(ticketsCollection).FindOne(ctx, bson.M{
		"guild_id":   guildID,
		"channel_id": channelID,
		"state":      guildmodels.TicketStateOpen,
	}).Decode(&ticket)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrTicketNotFound
	}
	if err != nil {
		logrus.Warnf("Failed to look up ticket for channel %v due to error %v", channelID, err)
		return nil, fmt.Errorf("failed to look up ticket for channel %v: %w", channelID, err)
	}
	return &ticket, nil
}

//CloseTicket marks the open ticket for a channel as closed. The document
//update is authoritative; deleting the backing channel is the caller's
//best-effort concern.
func (db *Connection) CloseTicket(ctx context.Context, guildID, channelID, closedBy string) error {
	now := time.Now()
	res, err := db.database.Collection(ticketsCollection).UpdateOne(ctx,
		bson.M{"guild_id": guildID, "channel_id": channelID, "state": guildmodels.TicketStateOpen},
		bson.M{"$set": bson.M{
			"state":     guildmodels.TicketStateClosed,
			"closed_at": now,
			"closed_by": closedBy,
		}},
	)
	if err != nil {
		logrus.Warnf("Failed to close ticket for channel %v due to error %v", channelID, err)
		return fmt.Errorf("failed to close ticket for channel %v: %w", channelID, err)
	}
	if res.ModifiedCount == 0 {
		return ErrTicketNotFound
	}
	return nil
}

//ListOpenTickets returns all open tickets for a guild.
func (db *Connection) ListOpenTickets(ctx context.Context, guildID string) ([]guildmodels.Ticket, error) {
	cursor, err := db.database.Collection(ticketsCollection).Find(ctx, bson.M{
		"guild_id": guildID,
		"state":    guildmodels.TicketStateOpen,
	})
	if err != nil {
		logrus.Warnf("Failed to list open tickets for guild %v due to error %v", guildID, err)
		return nil, fmt.Errorf("failed to list open tickets for guild %v: %w", guildID, err)
	}
	var tickets []guildmodels.Ticket
	err = cursor.All(ctx, &tickets)
	if err != nil {
		logrus.Warnf("Failed to decode open tickets for guild %v due to error %v", guildID, err)
		return nil, fmt.Errorf("failed to decode open tickets for guild %v: %w", guildID, err)
	}
	return tickets, nil
}
