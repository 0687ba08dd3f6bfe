package rolemenu

import (
	"context"
	"errors"
	"time"

	"github.com/karashiin/hibiki/guildmodels"
	"github.com/sirupsen/logrus"
)

//ErrVersionMismatch is returned by a ConfigStore save when the stored document
//has moved on from the expected version.
var ErrVersionMismatch = errors.New("rolemenu: config version mismatch")

//ErrNotFound is returned by a ConfigStore lookup when no menu document exists
//for the given message.
var ErrNotFound = errors.New("rolemenu: menu config not found")

//saveRetries bounds how many times a toggle will re-read and re-apply its
//statistics update after losing a version race.
const saveRetries = 3

//RoleOperations is the slice of the chat platform the engine needs: granting
//and revoking roles and checking that a role still exists.
type RoleOperations interface {
	GrantRole(guildID, userID, roleID, reason string) error
	RevokeRole(guildID, userID, roleID, reason string) error
	RoleExists(guildID, roleID string) (bool, error)
}

//ConfigStore persists role menu documents. Save performs a compare-and-swap
//on the document version and must return ErrVersionMismatch when the stored
//version differs from expectedVersion.
type ConfigStore interface {
	FindByMessage(ctx context.Context, messageID string) (*guildmodels.RoleMenuConfig, error)
	Save(ctx context.Context, config *guildmodels.RoleMenuConfig, expectedVersion int64) error
	Delete(ctx context.Context, messageID string) error
	ListByGuild(ctx context.Context, guildID string) ([]guildmodels.RoleMenuConfig, error)
}

//Renderer redraws or removes the posted menu message for a config.
type Renderer interface {
	//PostMenu posts a fresh menu message and returns its message ID.
	PostMenu(config *guildmodels.RoleMenuConfig) (string, error)
	//RenderMenu re-renders the existing menu message in place.
	RenderMenu(config *guildmodels.RoleMenuConfig) error
	//DeleteMenuMessage removes the posted menu message.
	DeleteMenuMessage(config *guildmodels.RoleMenuConfig) error
}

//OutcomeKind identifies what a toggle request did.
type OutcomeKind int

const (
	//OutcomeAssigned means the role was granted to the user.
	OutcomeAssigned OutcomeKind = iota
	//OutcomeRemoved means the role was revoked from the user.
	OutcomeRemoved
	//OutcomeDeniedAssign means an eligibility rule blocked the assignment.
	OutcomeDeniedAssign
	//OutcomeDeniedRemove means the menu does not allow removing roles.
	OutcomeDeniedRemove
	//OutcomeRoleMissing means the role no longer exists on the platform.
	OutcomeRoleMissing
	//OutcomePlatformFailed means the platform rejected the grant or revoke.
	OutcomePlatformFailed
	//OutcomePersistenceFailed means the document write failed after the
	//platform call had already succeeded.
	OutcomePersistenceFailed
)

//Outcome is the result of one toggle request. Reason is set for denials.
type Outcome struct {
	Kind   OutcomeKind
	Reason string
}

//Coordinator orchestrates toggle requests and menu lifecycle operations,
//keeping the stored document and the platform's role state in agreement.
type Coordinator struct {
	Roles    RoleOperations
	Store    ConfigStore
	Renderer Renderer
}

//NewCoordinator wires a coordinator from its collaborators.
func NewCoordinator(roles RoleOperations, store ConfigStore, renderer Renderer) *Coordinator {
	return &Coordinator{Roles: roles, Store: store, Renderer: renderer}
}

//ToggleRole handles a single user toggle on one menu role: it decides between
//assignment and removal, checks eligibility, performs the platform side
//effect, updates statistics and persists the document. The platform call
//strictly precedes any statistics change, so a rejected grant or revoke never
//adjusts counters. A persistence failure after a successful platform call is
//reported but the grant/revoke is not rolled back.
func (c *Coordinator) ToggleRole(ctx context.Context, guildID, messageID, roleID, userID string, currentUserRoleIDs []string) Outcome {
	config, err := c.Store.FindByMessage(ctx, messageID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Outcome{Kind: OutcomeDeniedAssign, Reason: "Menu not found"}
		}
		logrus.Warnf("Failed to load role menu config for message %v due to error %v", messageID, err)
		return Outcome{Kind: OutcomePersistenceFailed}
	}

	hasRole := containsRole(currentUserRoleIDs, roleID)
	if hasRole {
		return c.removeRole(ctx, config, roleID, userID)
	}
	return c.assignRole(ctx, config, roleID, userID, currentUserRoleIDs)
}

func (c *Coordinator) assignRole(ctx context.Context, config *guildmodels.RoleMenuConfig, roleID, userID string, currentUserRoleIDs []string) Outcome {
	decision := CanAssign(config, roleID, userID, currentUserRoleIDs)
	if !decision.Allowed {
		return Outcome{Kind: OutcomeDeniedAssign, Reason: decision.Reason}
	}

	exists, err := c.Roles.RoleExists(config.GuildID, roleID)
	if err != nil {
		logrus.Warnf("Failed to check role %v exists in guild %v due to error %v", roleID, config.GuildID, err)
		return Outcome{Kind: OutcomePlatformFailed}
	}
	if !exists {
		return Outcome{Kind: OutcomeRoleMissing}
	}

	err = c.Roles.GrantRole(config.GuildID, userID, roleID, "Self-assigned via role menu")
	if err != nil {
		logrus.Warnf("Platform rejected grant of role %v to user %v in guild %v: %v", roleID, userID, config.GuildID, err)
		return Outcome{Kind: OutcomePlatformFailed}
	}

	if !c.recordAndSave(ctx, config, roleID, userID, true) {
		return Outcome{Kind: OutcomePersistenceFailed}
	}
	c.rerender(config)
	return Outcome{Kind: OutcomeAssigned}
}

func (c *Coordinator) removeRole(ctx context.Context, config *guildmodels.RoleMenuConfig, roleID, userID string) Outcome {
	if !config.Settings.AllowRoleRemoval {
		return Outcome{Kind: OutcomeDeniedRemove, Reason: "Role removal is disabled for this menu"}
	}
	if config.FindRole(roleID) == nil {
		return Outcome{Kind: OutcomeDeniedRemove, Reason: "Role not found"}
	}

	err := c.Roles.RevokeRole(config.GuildID, userID, roleID, "Self-removed via role menu")
	if err != nil {
		logrus.Warnf("Platform rejected revoke of role %v from user %v in guild %v: %v", roleID, userID, config.GuildID, err)
		return Outcome{Kind: OutcomePlatformFailed}
	}

	if !c.recordAndSave(ctx, config, roleID, userID, false) {
		return Outcome{Kind: OutcomePersistenceFailed}
	}
	c.rerender(config)
	return Outcome{Kind: OutcomeRemoved}
}

//recordAndSave applies the statistics update for one successful platform
//mutation and persists the document with a compare-and-swap. On a version
//race it re-reads the document and re-applies the update; the platform call
//is never repeated. Reports success as true.
func (c *Coordinator) recordAndSave(ctx context.Context, config *guildmodels.RoleMenuConfig, roleID, userID string, assigned bool) bool {
	for attempt := 0; attempt <= saveRetries; attempt++ {
		if attempt > 0 {
			fresh, err := c.Store.FindByMessage(ctx, config.MessageID)
			if err != nil {
				logrus.Warnf("Failed to re-read role menu config for message %v during save retry: %v", config.MessageID, err)
				return false
			}
			*config = *fresh
		}
		recordToggle(config, roleID, userID, assigned)
		err := c.Store.Save(ctx, config, config.Version)
		if err == nil {
			return true
		}
		if !errors.Is(err, ErrVersionMismatch) {
			logrus.Warnf("Failed to persist role menu config for message %v due to error %v", config.MessageID, err)
			return false
		}
		logrus.Debugf("Version race persisting role menu config for message %v, retrying", config.MessageID)
	}
	logrus.Warnf("Gave up persisting role menu config for message %v after %d version races", config.MessageID, saveRetries)
	return false
}

//recordToggle mutates the per-role counter, the per-role statistics record,
//the per-user record and the interaction total in lockstep, so the redundant
//currentAssignments counter cannot drift from assigned-removed.
func recordToggle(config *guildmodels.RoleMenuConfig, roleID, userID string, assigned bool) {
	entry := config.FindRole(roleID)
	stat := config.Statistics.RoleStatFor(roleID)
	if stat == nil {
		config.Statistics.RoleAssignments = append(config.Statistics.RoleAssignments, guildmodels.RoleStat{RoleID: roleID})
		stat = &config.Statistics.RoleAssignments[len(config.Statistics.RoleAssignments)-1]
	}
	if assigned {
		if entry != nil {
			entry.CurrentAssignments++
		}
		stat.AssignedCount++
	} else {
		if entry != nil && entry.CurrentAssignments > 0 {
			entry.CurrentAssignments--
		}
		stat.RemovedCount++
	}

	now := time.Now()
	user := config.Statistics.UserStatFor(userID)
	if user == nil {
		config.Statistics.UniqueUsers = append(config.Statistics.UniqueUsers, guildmodels.UserStat{UserID: userID})
		user = &config.Statistics.UniqueUsers[len(config.Statistics.UniqueUsers)-1]
	}
	user.InteractionCount++
	user.LastInteractionAt = now
	config.Statistics.TotalInteractions++
}

func (c *Coordinator) rerender(config *guildmodels.RoleMenuConfig) {
	err := c.Renderer.RenderMenu(config)
	if err != nil {
		logrus.Warnf("Failed to re-render role menu message %v due to error %v", config.MessageID, err)
	}
}
