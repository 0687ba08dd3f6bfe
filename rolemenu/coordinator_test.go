package rolemenu

import (
	"context"
	"errors"
	"testing"

	"github.com/karashiin/hibiki/guildmodels"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type grantCall struct {
	guildID, userID, roleID string
}

type fakeRoles struct {
	granted   []grantCall
	revoked   []grantCall
	grantErr  error
	revokeErr error
	missing   map[string]bool
}

func (f *fakeRoles) GrantRole(guildID, userID, roleID, reason string) error {
	if f.grantErr != nil {
		return f.grantErr
	}
	f.granted = append(f.granted, grantCall{guildID, userID, roleID})
	return nil
}

func (f *fakeRoles) RevokeRole(guildID, userID, roleID, reason string) error {
	if f.revokeErr != nil {
		return f.revokeErr
	}
	f.revoked = append(f.revoked, grantCall{guildID, userID, roleID})
	return nil
}

func (f *fakeRoles) RoleExists(guildID, roleID string) (bool, error) {
	return !f.missing[roleID], nil
}

func cloneConfig(c *guildmodels.RoleMenuConfig) *guildmodels.RoleMenuConfig {
	out := *c
	out.Roles = append([]guildmodels.RoleEntry(nil), c.Roles...)
	out.Statistics.UniqueUsers = append([]guildmodels.UserStat(nil), c.Statistics.UniqueUsers...)
	out.Statistics.RoleAssignments = append([]guildmodels.RoleStat(nil), c.Statistics.RoleAssignments...)
	return &out
}

type fakeStore struct {
	docs    map[string]*guildmodels.RoleMenuConfig
	saveErr error
	//conflicts simulates a concurrent writer: each conflict bumps the stored
	//version (applying another user's toggle) before reporting a mismatch.
	conflicts    int
	conflictRole string
	saves        int
	deletes      int
}

func newFakeStore(configs ...*guildmodels.RoleMenuConfig) *fakeStore {
	s := &fakeStore{docs: map[string]*guildmodels.RoleMenuConfig{}}
	for _, c := range configs {
		s.docs[c.MessageID] = cloneConfig(c)
	}
	return s
}

func (f *fakeStore) FindByMessage(_ context.Context, messageID string) (*guildmodels.RoleMenuConfig, error) {
	doc, ok := f.docs[messageID]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneConfig(doc), nil
}

func (f *fakeStore) Save(_ context.Context, config *guildmodels.RoleMenuConfig, expectedVersion int64) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	if f.conflicts > 0 {
		f.conflicts--
		stored := f.docs[config.MessageID]
		recordToggle(stored, f.conflictRole, "racing-user", true)
		stored.Version++
		return ErrVersionMismatch
	}
	stored, ok := f.docs[config.MessageID]
	if ok && stored.Version != expectedVersion {
		return ErrVersionMismatch
	}
	f.saves++
	config.Version = expectedVersion + 1
	f.docs[config.MessageID] = cloneConfig(config)
	return nil
}

func (f *fakeStore) Delete(_ context.Context, messageID string) error {
	if _, ok := f.docs[messageID]; !ok {
		return ErrNotFound
	}
	delete(f.docs, messageID)
	f.deletes++
	return nil
}

func (f *fakeStore) ListByGuild(_ context.Context, guildID string) ([]guildmodels.RoleMenuConfig, error) {
	var out []guildmodels.RoleMenuConfig
	for _, doc := range f.docs {
		if doc.GuildID == guildID {
			out = append(out, *cloneConfig(doc))
		}
	}
	return out, nil
}

type fakeRenderer struct {
	postErr   error
	deleteErr error
	posts     int
	renders   int
	deletes   int
}

func (f *fakeRenderer) PostMenu(config *guildmodels.RoleMenuConfig) (string, error) {
	if f.postErr != nil {
		return "", f.postErr
	}
	f.posts++
	return "posted-message", nil
}

func (f *fakeRenderer) RenderMenu(config *guildmodels.RoleMenuConfig) error {
	f.renders++
	return nil
}

func (f *fakeRenderer) DeleteMenuMessage(config *guildmodels.RoleMenuConfig) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletes++
	return nil
}

func newTestCoordinator(config *guildmodels.RoleMenuConfig) (*Coordinator, *fakeRoles, *fakeStore, *fakeRenderer) {
	roles := &fakeRoles{missing: map[string]bool{}}
	store := newFakeStore(config)
	renderer := &fakeRenderer{}
	return NewCoordinator(roles, store, renderer), roles, store, renderer
}

func TestToggleAssignsEligibleRole(t *testing.T) {
	t.Parallel()
	config := testMenu()
	config.FindRole("gamer").CurrentAssignments = 2
	config.Statistics.RoleAssignments = []guildmodels.RoleStat{{RoleID: "gamer", AssignedCount: 2}}
	coord, roles, store, renderer := newTestCoordinator(config)

	outcome := coord.ToggleRole(context.Background(), "guild-1", "message-1", "gamer", "user-1", nil)

	assert.Equal(t, OutcomeAssigned, outcome.Kind)
	require.Len(t, roles.granted, 1)
	assert.Equal(t, grantCall{"guild-1", "user-1", "gamer"}, roles.granted[0])

	stored := store.docs["message-1"]
	assert.Equal(t, 3, stored.FindRole("gamer").CurrentAssignments)
	assert.Equal(t, 3, stored.Statistics.RoleStatFor("gamer").AssignedCount)
	assert.Equal(t, 1, stored.Statistics.TotalInteractions)
	require.NotNil(t, stored.Statistics.UserStatFor("user-1"))
	assert.Equal(t, 1, stored.Statistics.UserStatFor("user-1").InteractionCount)
	assert.Equal(t, 1, renderer.renders)
	assert.Equal(t, 1, store.saves)
}

func TestToggleRemovesHeldRole(t *testing.T) {
	t.Parallel()
	config := testMenu()
	config.FindRole("gamer").CurrentAssignments = 1
	coord, roles, store, renderer := newTestCoordinator(config)

	outcome := coord.ToggleRole(context.Background(), "guild-1", "message-1", "gamer", "user-1", []string{"gamer"})

	assert.Equal(t, OutcomeRemoved, outcome.Kind)
	require.Len(t, roles.revoked, 1)
	assert.Empty(t, roles.granted)

	stored := store.docs["message-1"]
	assert.Equal(t, 0, stored.FindRole("gamer").CurrentAssignments)
	assert.Equal(t, 1, stored.Statistics.RoleStatFor("gamer").RemovedCount)
	assert.Equal(t, 1, stored.Statistics.TotalInteractions)
	assert.Equal(t, 1, renderer.renders)
}

func TestToggleRemovalFloorsAtZero(t *testing.T) {
	t.Parallel()
	config := testMenu()
	//Counter already at zero even though the user somehow holds the role
	coord, _, store, _ := newTestCoordinator(config)

	outcome := coord.ToggleRole(context.Background(), "guild-1", "message-1", "gamer", "user-1", []string{"gamer"})

	assert.Equal(t, OutcomeRemoved, outcome.Kind)
	assert.Equal(t, 0, store.docs["message-1"].FindRole("gamer").CurrentAssignments)
}

func TestToggleRemovalDisabled(t *testing.T) {
	t.Parallel()
	config := testMenu()
	config.Settings.AllowRoleRemoval = false
	config.FindRole("gamer").CurrentAssignments = 1
	coord, roles, store, renderer := newTestCoordinator(config)

	outcome := coord.ToggleRole(context.Background(), "guild-1", "message-1", "gamer", "user-1", []string{"gamer"})

	assert.Equal(t, OutcomeDeniedRemove, outcome.Kind)
	assert.Equal(t, "Role removal is disabled for this menu", outcome.Reason)
	assert.Empty(t, roles.revoked)
	assert.Zero(t, store.saves)
	assert.Zero(t, renderer.renders)
	assert.Equal(t, 1, store.docs["message-1"].FindRole("gamer").CurrentAssignments)
}

func TestToggleDenialLeavesDocumentUntouched(t *testing.T) {
	t.Parallel()
	config := testMenu()
	coord, roles, store, renderer := newTestCoordinator(config)

	outcome := coord.ToggleRole(context.Background(), "guild-1", "message-1", "teamA", "user-1", []string{"teamB"})

	assert.Equal(t, OutcomeDeniedAssign, outcome.Kind)
	assert.Equal(t, "Conflicting role detected", outcome.Reason)
	assert.Empty(t, roles.granted)
	assert.Zero(t, store.saves)
	assert.Zero(t, renderer.renders)
	stored := store.docs["message-1"]
	assert.Zero(t, stored.Statistics.TotalInteractions)
	assert.Empty(t, stored.Statistics.RoleAssignments)
}

func TestTogglePlatformFailureSkipsStatistics(t *testing.T) {
	t.Parallel()
	config := testMenu()
	coord, roles, store, _ := newTestCoordinator(config)
	roles.grantErr = errors.New("missing permissions")

	outcome := coord.ToggleRole(context.Background(), "guild-1", "message-1", "gamer", "user-1", nil)

	assert.Equal(t, OutcomePlatformFailed, outcome.Kind)
	assert.Zero(t, store.saves)
	assert.Zero(t, store.docs["message-1"].Statistics.TotalInteractions)
}

func TestToggleRoleMissingOnPlatform(t *testing.T) {
	t.Parallel()
	config := testMenu()
	coord, roles, store, _ := newTestCoordinator(config)
	roles.missing["gamer"] = true

	outcome := coord.ToggleRole(context.Background(), "guild-1", "message-1", "gamer", "user-1", nil)

	assert.Equal(t, OutcomeRoleMissing, outcome.Kind)
	assert.Empty(t, roles.granted)
	assert.Zero(t, store.saves)
}

func TestTogglePersistenceFailureIsNotRolledBack(t *testing.T) {
	t.Parallel()
	config := testMenu()
	coord, roles, store, _ := newTestCoordinator(config)
	store.saveErr = errors.New("write concern error")

	outcome := coord.ToggleRole(context.Background(), "guild-1", "message-1", "gamer", "user-1", nil)

	assert.Equal(t, OutcomePersistenceFailed, outcome.Kind)
	//The grant happened and is intentionally left in place
	assert.Len(t, roles.granted, 1)
	assert.Empty(t, roles.revoked)
}

func TestToggleRetriesAfterVersionRace(t *testing.T) {
	t.Parallel()
	config := testMenu()
	coord, roles, store, _ := newTestCoordinator(config)
	store.conflicts = 1
	store.conflictRole = "teamB"

	outcome := coord.ToggleRole(context.Background(), "guild-1", "message-1", "gamer", "user-1", nil)

	assert.Equal(t, OutcomeAssigned, outcome.Kind)
	//The platform call is never repeated across save retries
	assert.Len(t, roles.granted, 1)

	//Both the racing writer's toggle and ours survive
	stored := store.docs["message-1"]
	assert.Equal(t, 1, stored.Statistics.RoleStatFor("gamer").AssignedCount)
	assert.Equal(t, 1, stored.Statistics.RoleStatFor("teamB").AssignedCount)
	assert.Equal(t, 2, stored.Statistics.TotalInteractions)
}

func TestToggleGivesUpAfterRepeatedRaces(t *testing.T) {
	t.Parallel()
	config := testMenu()
	coord, roles, store, _ := newTestCoordinator(config)
	store.conflicts = saveRetries + 2
	store.conflictRole = "teamB"

	outcome := coord.ToggleRole(context.Background(), "guild-1", "message-1", "gamer", "user-1", nil)

	assert.Equal(t, OutcomePersistenceFailed, outcome.Kind)
	assert.Len(t, roles.granted, 1)
}

//Counter consistency across a serialized toggle sequence: at every step
//currentAssignments equals assignedCount minus removedCount and never goes
//negative.
func TestCounterConsistencyAcrossToggles(t *testing.T) {
	t.Parallel()
	config := testMenu()
	coord, _, store, _ := newTestCoordinator(config)
	ctx := context.Background()

	steps := []struct {
		userID    string
		userRoles []string
	}{
		{"u1", nil},
		{"u2", nil},
		{"u1", []string{"gamer"}},
		{"u3", nil},
		{"u2", []string{"gamer"}},
	}
	for _, step := range steps {
		outcome := coord.ToggleRole(ctx, "guild-1", "message-1", "gamer", step.userID, step.userRoles)
		require.Contains(t, []OutcomeKind{OutcomeAssigned, OutcomeRemoved}, outcome.Kind)

		stored := store.docs["message-1"]
		stat := stored.Statistics.RoleStatFor("gamer")
		current := stored.FindRole("gamer").CurrentAssignments
		assert.Equal(t, stat.AssignedCount-stat.RemovedCount, current)
		assert.GreaterOrEqual(t, current, 0)
	}
}

func TestCreateMenuRequiresTitleAndDescription(t *testing.T) {
	t.Parallel()
	coord, _, store, renderer := newTestCoordinator(testMenu())
	err := coord.CreateMenu(context.Background(), &guildmodels.RoleMenuConfig{GuildID: "guild-1"})
	assert.ErrorIs(t, err, ErrMissingTitle)
	assert.Zero(t, renderer.posts)
	assert.Zero(t, store.saves)
}

func TestCreateMenuIsAllOrNothing(t *testing.T) {
	t.Parallel()

	t.Run("post failure creates no document", func(t *testing.T) {
		t.Parallel()
		coord, _, store, renderer := newTestCoordinator(testMenu())
		renderer.postErr = errors.New("channel gone")
		err := coord.CreateMenu(context.Background(), &guildmodels.RoleMenuConfig{
			GuildID: "guild-1", ChannelID: "channel-1", Title: "t", Description: "d",
		})
		assert.Error(t, err)
		assert.Zero(t, store.saves)
	})

	t.Run("save failure removes the posted message", func(t *testing.T) {
		t.Parallel()
		coord, _, store, renderer := newTestCoordinator(testMenu())
		store.saveErr = errors.New("write failed")
		err := coord.CreateMenu(context.Background(), &guildmodels.RoleMenuConfig{
			GuildID: "guild-1", ChannelID: "channel-1", Title: "t", Description: "d",
		})
		assert.Error(t, err)
		assert.Equal(t, 1, renderer.posts)
		assert.Equal(t, 1, renderer.deletes)
	})
}

func TestCreateMenuPersistsPostedMessageID(t *testing.T) {
	t.Parallel()
	coord, _, store, renderer := newTestCoordinator(testMenu())
	config := &guildmodels.RoleMenuConfig{GuildID: "guild-1", ChannelID: "channel-1", Title: "t", Description: "d"}
	err := coord.CreateMenu(context.Background(), config)
	require.NoError(t, err)
	assert.Equal(t, "posted-message", config.MessageID)
	assert.Equal(t, 1, renderer.posts)
	assert.NotNil(t, store.docs["posted-message"])
}

func TestAddRoleThroughCoordinator(t *testing.T) {
	t.Parallel()
	coord, _, store, renderer := newTestCoordinator(testMenu())
	actor := guildmodels.Attribution{UserID: "admin-1", Username: "admin"}

	err := coord.AddRole(context.Background(), "message-1", guildmodels.RoleEntry{RoleID: "artist", Label: "Artist", Position: 4}, actor)
	require.NoError(t, err)
	stored := store.docs["message-1"]
	assert.NotNil(t, stored.FindRole("artist"))
	assert.Equal(t, "admin-1", stored.LastModifiedBy.UserID)
	assert.False(t, stored.LastModifiedBy.Timestamp.IsZero())
	assert.Equal(t, 1, renderer.renders)

	err = coord.AddRole(context.Background(), "message-1", guildmodels.RoleEntry{RoleID: "artist"}, actor)
	assert.ErrorIs(t, err, ErrDuplicateRole)
	assert.Equal(t, 1, store.saves)
}

func TestDeleteMenuDocumentIsAuthoritative(t *testing.T) {
	t.Parallel()
	coord, _, store, renderer := newTestCoordinator(testMenu())
	renderer.deleteErr = errors.New("message already gone")

	err := coord.DeleteMenu(context.Background(), "message-1")
	assert.NoError(t, err)
	assert.Equal(t, 1, store.deletes)
	_, findErr := store.FindByMessage(context.Background(), "message-1")
	assert.ErrorIs(t, findErr, ErrNotFound)
}

func TestCleanupStaleRoles(t *testing.T) {
	t.Parallel()
	config := testMenu()
	coord, roles, store, renderer := newTestCoordinator(config)
	roles.missing["teamB"] = true

	removed, err := coord.CleanupStaleRoles(context.Background(), "message-1")
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Nil(t, store.docs["message-1"].FindRole("teamB"))
	assert.Equal(t, 1, renderer.renders)

	//A second pass finds nothing stale and does not write
	saves := store.saves
	removed, err = coord.CleanupStaleRoles(context.Background(), "message-1")
	require.NoError(t, err)
	assert.Zero(t, removed)
	assert.Equal(t, saves, store.saves)
	assert.Equal(t, 1, renderer.renders)
}

func TestToggleUnknownMenu(t *testing.T) {
	t.Parallel()
	coord, _, _, _ := newTestCoordinator(testMenu())
	outcome := coord.ToggleRole(context.Background(), "guild-1", "unknown-message", "gamer", "user-1", nil)
	assert.Equal(t, OutcomeDeniedAssign, outcome.Kind)
	assert.Equal(t, "Menu not found", outcome.Reason)
}
