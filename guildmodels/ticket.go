package guildmodels

import "time"

//Ticket states. A ticket only ever moves from open to closed.
const (
	TicketStateOpen   = "open"
	TicketStateClosed = "closed"
)

//Ticket represents a single support ticket and the private channel backing it.
type Ticket struct {
	GuildID   string     `bson:"guild_id"`
	ChannelID string     `bson:"channel_id"`
	Number    int        `bson:"number"`
	OpenerID  string     `bson:"opener_id"`
	Topic     string     `bson:"topic,omitempty"`
	State     string     `bson:"state"`
	OpenedAt  time.Time  `bson:"opened_at"`
	ClosedAt  *time.Time `bson:"closed_at,omitempty"`
	ClosedBy  string     `bson:"closed_by,omitempty"`
}
