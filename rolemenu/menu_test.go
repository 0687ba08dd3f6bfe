package rolemenu

import (
	"fmt"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/karashiin/hibiki/guildmodels"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddEntryRejectsDuplicates(t *testing.T) {
	t.Parallel()
	config := testMenu()
	err := AddEntry(config, guildmodels.RoleEntry{RoleID: "gamer", Label: "Gamer again"})
	assert.ErrorIs(t, err, ErrDuplicateRole)
	assert.Len(t, config.Roles, 4)
}

func TestAddEntryRejectsFullMenu(t *testing.T) {
	t.Parallel()
	config := &guildmodels.RoleMenuConfig{Title: "t", Description: "d"}
	for i := 0; i < MaxMenuRoles; i++ {
		err := AddEntry(config, guildmodels.RoleEntry{RoleID: fmt.Sprintf("role-%d", i), Position: i})
		require.NoError(t, err)
	}
	err := AddEntry(config, guildmodels.RoleEntry{RoleID: "one-too-many"})
	assert.ErrorIs(t, err, ErrMenuFull)
	assert.Len(t, config.Roles, MaxMenuRoles)
}

func TestAddEntrySortsByPosition(t *testing.T) {
	t.Parallel()
	config := &guildmodels.RoleMenuConfig{}
	require.NoError(t, AddEntry(config, guildmodels.RoleEntry{RoleID: "c", Position: 10}))
	require.NoError(t, AddEntry(config, guildmodels.RoleEntry{RoleID: "a", Position: 1}))
	require.NoError(t, AddEntry(config, guildmodels.RoleEntry{RoleID: "b", Position: 5}))

	var order []string
	for _, entry := range config.Roles {
		order = append(order, entry.RoleID)
	}
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestRemoveEntry(t *testing.T) {
	t.Parallel()
	config := testMenu()
	err := RemoveEntry(config, "teamA")
	require.NoError(t, err)
	assert.Nil(t, config.FindRole("teamA"))
	assert.Len(t, config.Roles, 3)

	//Positions of the survivors are not renumbered
	assert.Equal(t, 2, config.FindRole("teamB").Position)

	err = RemoveEntry(config, "teamA")
	assert.ErrorIs(t, err, ErrRoleNotOnMenu)
}

func TestReorderEntry(t *testing.T) {
	t.Parallel()
	config := testMenu()

	err := ReorderEntry(config, "vip", 0)
	require.NoError(t, err)
	assert.Equal(t, "vip", config.Roles[0].RoleID)

	err = ReorderEntry(config, "vip", len(config.Roles))
	assert.ErrorIs(t, err, ErrBadPosition)

	err = ReorderEntry(config, "missing", 1)
	assert.ErrorIs(t, err, ErrRoleNotOnMenu)
}

func TestToggleCustomIDRoundTrip(t *testing.T) {
	t.Parallel()
	id := ToggleCustomID("msg-1", "role-1")
	messageID, roleID, ok := ParseToggleCustomID(id)
	require.True(t, ok)
	assert.Equal(t, "msg-1", messageID)
	assert.Equal(t, "role-1", roleID)

	_, _, ok = ParseToggleCustomID("ticket:close:whatever")
	assert.False(t, ok)
}

func TestBuildComponentsRowLayout(t *testing.T) {
	t.Parallel()
	config := &guildmodels.RoleMenuConfig{MessageID: "msg-1"}
	for i := 0; i < 12; i++ {
		require.NoError(t, AddEntry(config, guildmodels.RoleEntry{
			RoleID:   fmt.Sprintf("role-%d", i),
			Label:    fmt.Sprintf("Role %d", i),
			Position: i,
		}))
	}
	rows := BuildComponents(config)
	require.Len(t, rows, 3)
	assert.Len(t, rows[0].(discordgo.ActionsRow).Components, 5)
	assert.Len(t, rows[2].(discordgo.ActionsRow).Components, 2)
}
