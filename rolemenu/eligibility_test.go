package rolemenu

import (
	"testing"

	"github.com/karashiin/hibiki/guildmodels"
	"github.com/stretchr/testify/assert"
)

func intPtr(i int) *int { return &i }

func strPtr(s string) *string { return &s }

func testMenu() *guildmodels.RoleMenuConfig {
	return &guildmodels.RoleMenuConfig{
		GuildID:     "guild-1",
		MessageID:   "message-1",
		ChannelID:   "channel-1",
		Title:       "Pick your roles",
		Description: "Self-assignable roles",
		Settings:    guildmodels.MenuSettings{AllowRoleRemoval: true},
		Roles: []guildmodels.RoleEntry{
			{RoleID: "gamer", RoleName: "Gamer", Label: "Gamer", Style: guildmodels.ButtonStylePrimary, Position: 0},
			{RoleID: "teamA", RoleName: "Team A", Label: "Team A", Style: guildmodels.ButtonStyleSuccess, Position: 1, ConflictingRoles: []string{"teamB"}},
			{RoleID: "teamB", RoleName: "Team B", Label: "Team B", Style: guildmodels.ButtonStyleDanger, Position: 2, ConflictingRoles: []string{"teamA"}},
			{RoleID: "vip", RoleName: "VIP", Label: "VIP", Style: guildmodels.ButtonStyleSecondary, Position: 3, RequiredRole: strPtr("member")},
		},
	}
}

func TestCanAssign(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		setup      func(*guildmodels.RoleMenuConfig)
		roleID     string
		userRoles  []string
		wantAllow  bool
		wantReason string
	}{
		{
			name:      "plain role is allowed",
			roleID:    "gamer",
			userRoles: nil,
			wantAllow: true,
		},
		{
			name:       "unknown role is denied",
			roleID:     "nonexistent",
			userRoles:  nil,
			wantAllow:  false,
			wantReason: "Role not found",
		},
		{
			name: "per-role assignment limit reached",
			setup: func(c *guildmodels.RoleMenuConfig) {
				c.Roles[0].MaxAssignments = intPtr(1)
				c.Roles[0].CurrentAssignments = 1
			},
			roleID:     "gamer",
			userRoles:  nil,
			wantAllow:  false,
			wantReason: "Role assignment limit reached",
		},
		{
			name: "limit frees up after a removal",
			setup: func(c *guildmodels.RoleMenuConfig) {
				c.Roles[0].MaxAssignments = intPtr(1)
				c.Roles[0].CurrentAssignments = 0
			},
			roleID:    "gamer",
			userRoles: nil,
			wantAllow: true,
		},
		{
			name:       "conflicting role held",
			roleID:     "teamA",
			userRoles:  []string{"teamB"},
			wantAllow:  false,
			wantReason: "Conflicting role detected",
		},
		{
			name:       "required role missing",
			roleID:     "vip",
			userRoles:  nil,
			wantAllow:  false,
			wantReason: "Required role not found",
		},
		{
			name:      "required role held",
			roleID:    "vip",
			userRoles: []string{"member"},
			wantAllow: true,
		},
		{
			name: "per-user menu role cap reached",
			setup: func(c *guildmodels.RoleMenuConfig) {
				c.Settings.MaxRolesPerUser = intPtr(2)
			},
			roleID:     "gamer",
			userRoles:  []string{"teamA", "vip", "unrelated"},
			wantAllow:  false,
			wantReason: "You already have the maximum of 2 roles from this menu",
		},
		{
			name: "roles outside the menu do not count towards the cap",
			setup: func(c *guildmodels.RoleMenuConfig) {
				c.Settings.MaxRolesPerUser = intPtr(2)
			},
			roleID:    "gamer",
			userRoles: []string{"vip", "unrelated", "also-unrelated"},
			wantAllow: true,
		},
		{
			name: "menu cap is checked before the per-role limit",
			setup: func(c *guildmodels.RoleMenuConfig) {
				c.Settings.MaxRolesPerUser = intPtr(1)
				c.Roles[0].MaxAssignments = intPtr(1)
				c.Roles[0].CurrentAssignments = 1
			},
			roleID:     "gamer",
			userRoles:  []string{"teamA"},
			wantAllow:  false,
			wantReason: "You already have the maximum of 1 roles from this menu",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			config := testMenu()
			if tt.setup != nil {
				tt.setup(config)
			}
			decision := CanAssign(config, tt.roleID, "user-1", tt.userRoles)
			assert.Equal(t, tt.wantAllow, decision.Allowed)
			if !tt.wantAllow {
				assert.Equal(t, tt.wantReason, decision.Reason)
			}
		})
	}
}

func TestCanAssignIsPure(t *testing.T) {
	t.Parallel()
	config := testMenu()
	config.Roles[0].MaxAssignments = intPtr(1)
	config.Roles[0].CurrentAssignments = 1

	first := CanAssign(config, "gamer", "user-1", []string{"teamB"})
	second := CanAssign(config, "gamer", "user-1", []string{"teamB"})
	assert.Equal(t, first, second)
	assert.Equal(t, 1, config.Roles[0].CurrentAssignments)
	assert.Zero(t, config.Statistics.TotalInteractions)
}
