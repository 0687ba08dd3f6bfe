package guildmodels

//GuildConfig contains configuration for a discord guild managed by this bot
type GuildConfig struct {
	GuildID    string          `bson:"guild_id"`
	AdminRoles []string        `bson:"admin_roles,omitempty"`
	Welcome    WelcomeConfig   `bson:"welcome"`
	AutoRole   AutoRoleConfig  `bson:"auto_role"`
	Tickets    TicketConfig    `bson:"tickets"`
	Chat       ChatGuildConfig `bson:"chat"`
}

//WelcomeConfig controls the messages posted when members join or leave.
//Templates may contain the placeholders {user}, {username}, {server} and
//{memberCount}.
type WelcomeConfig struct {
	Enabled         bool   `bson:"enabled"`
	ChannelID       string `bson:"channel_id,omitempty"`
	WelcomeTemplate string `bson:"welcome_template,omitempty"`
	LeaveTemplate   string `bson:"leave_template,omitempty"`
	EmbedColor      int    `bson:"embed_color,omitempty"`
}

//AutoRoleConfig lists roles granted automatically on member join.
type AutoRoleConfig struct {
	Enabled bool     `bson:"enabled"`
	RoleIDs []string `bson:"role_ids,omitempty"`
}

//TicketConfig holds the channel category and support role used by the ticket
//system, plus a running counter used to number ticket channels.
type TicketConfig struct {
	Enabled       bool   `bson:"enabled"`
	CategoryID    string `bson:"category_id,omitempty"`
	SupportRoleID string `bson:"support_role_id,omitempty"`
	NextNumber    int    `bson:"next_number"`
}

//ChatGuildConfig carries per-guild overrides for the AI chat bridge.
type ChatGuildConfig struct {
	SystemPrompt string `bson:"system_prompt,omitempty"`
	Model        string `bson:"model,omitempty"`
	MaxTokens    int    `bson:"max_tokens,omitempty"`
}

//DefaultGuild returns an otherwise-empty guild config with a given ID
func DefaultGuild(gid string) GuildConfig {
	return GuildConfig{
		GuildID:    gid,
		AdminRoles: nil,
		Tickets:    TicketConfig{NextNumber: 1},
	}
}
