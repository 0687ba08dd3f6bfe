package guildmodels

import "time"

//Button style names accepted for a role entry. These mirror the styles the
//chat platform offers for message buttons.
const (
	ButtonStylePrimary   = "Primary"
	ButtonStyleSecondary = "Secondary"
	ButtonStyleSuccess   = "Success"
	ButtonStyleDanger    = "Danger"
)

//RoleMenuConfig is the stored configuration for a single posted role menu
//message. One document exists per menu message; message_id is unique.
type RoleMenuConfig struct {
	GuildID   string `bson:"guild_id"`
	MessageID string `bson:"message_id"`
	ChannelID string `bson:"channel_id"`

	Title       string `bson:"title"`
	Description string `bson:"description"`
	Color       int    `bson:"color"`

	Roles []RoleEntry `bson:"roles"`

	Settings   MenuSettings   `bson:"settings"`
	Statistics MenuStatistics `bson:"statistics"`

	CreatedBy      Attribution `bson:"created_by"`
	LastModifiedBy Attribution `bson:"last_modified_by"`

	//Version increases on every save and is checked on write so that two
	//interleaved read-modify-write cycles cannot silently overwrite each
	//other's counters.
	Version int64 `bson:"version"`
}

//RoleEntry describes one role offered on a menu.
type RoleEntry struct {
	RoleID      string  `bson:"role_id"`
	RoleName    string  `bson:"role_name"`
	Label       string  `bson:"label"`
	Emoji       *string `bson:"emoji,omitempty"`
	Description *string `bson:"description,omitempty"`
	Style       string  `bson:"style"`
	Position    int     `bson:"position"`

	MaxAssignments     *int `bson:"max_assignments,omitempty"`
	CurrentAssignments int  `bson:"current_assignments"`

	RequiredRole     *string  `bson:"required_role,omitempty"`
	ConflictingRoles []string `bson:"conflicting_roles,omitempty"`
}

//MenuSettings holds per-menu behaviour switches.
type MenuSettings struct {
	MaxRolesPerUser   *int    `bson:"max_roles_per_user,omitempty"`
	AllowRoleRemoval  bool    `bson:"allow_role_removal"`
	EphemeralResponse bool    `bson:"ephemeral_response"`
	LogChannelID      *string `bson:"log_channel_id,omitempty"`
}

//MenuStatistics accumulates interaction counters for a menu.
type MenuStatistics struct {
	TotalInteractions int        `bson:"total_interactions"`
	UniqueUsers       []UserStat `bson:"unique_users,omitempty"`
	RoleAssignments   []RoleStat `bson:"role_assignments,omitempty"`
}

//UserStat tracks how often a single user has interacted with a menu.
type UserStat struct {
	UserID            string    `bson:"user_id"`
	InteractionCount  int       `bson:"interaction_count"`
	LastInteractionAt time.Time `bson:"last_interaction_at"`
}

//RoleStat tracks assignment and removal totals for one role on a menu.
type RoleStat struct {
	RoleID        string `bson:"role_id"`
	AssignedCount int    `bson:"assigned_count"`
	RemovedCount  int    `bson:"removed_count"`
}

//Attribution records who performed a create or modify action and when.
type Attribution struct {
	UserID    string    `bson:"user_id"`
	Username  string    `bson:"username"`
	Timestamp time.Time `bson:"timestamp"`
}

//FindRole returns a pointer to the entry for the given role ID, or nil if the
//menu does not offer that role.
func (c *RoleMenuConfig) FindRole(roleID string) *RoleEntry {
	for i := range c.Roles {
		if c.Roles[i].RoleID == roleID {
			return &c.Roles[i]
		}
	}
	return nil
}

//RoleStatFor returns a pointer to the statistics record for the given role ID,
//or nil if none has been created yet.
func (s *MenuStatistics) RoleStatFor(roleID string) *RoleStat {
	for i := range s.RoleAssignments {
		if s.RoleAssignments[i].RoleID == roleID {
			return &s.RoleAssignments[i]
		}
	}
	return nil
}

//UserStatFor returns a pointer to the statistics record for the given user ID,
//or nil if the user has never interacted with the menu.
func (s *MenuStatistics) UserStatFor(userID string) *UserStat {
	for i := range s.UniqueUsers {
		if s.UniqueUsers[i].UserID == userID {
			return &s.UniqueUsers[i]
		}
	}
	return nil
}
