package rolemenu

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/karashiin/hibiki/guildmodels"
	"github.com/sirupsen/logrus"
)

//MaxMenuRoles is the platform ceiling of 5 button rows of 5 buttons each.
const MaxMenuRoles = 25

var (
	//ErrDuplicateRole is returned when adding a role already on the menu.
	ErrDuplicateRole = errors.New("rolemenu: role already exists on this menu")
	//ErrMenuFull is returned when adding a role to a full menu.
	ErrMenuFull = fmt.Errorf("rolemenu: a menu may offer a maximum of %d roles", MaxMenuRoles)
	//ErrRoleNotOnMenu is returned when removing or reordering a role the menu
	//does not offer.
	ErrRoleNotOnMenu = errors.New("rolemenu: role is not on this menu")
	//ErrBadPosition is returned when reordering to a position past the end of
	//the role list.
	ErrBadPosition = errors.New("rolemenu: position is beyond the end of the menu")
	//ErrMissingTitle is returned when creating a menu without a title or
	//description.
	ErrMissingTitle = errors.New("rolemenu: menu title and description must not be empty")
)

//AddEntry appends a role entry to the config and re-sorts the collection by
//position. A negative position places the entry after the current last one.
//It rejects duplicates and menus already at the platform ceiling.
func AddEntry(config *guildmodels.RoleMenuConfig, entry guildmodels.RoleEntry) error {
	if config.FindRole(entry.RoleID) != nil {
		return ErrDuplicateRole
	}
	if len(config.Roles) >= MaxMenuRoles {
		return ErrMenuFull
	}
	if entry.Position < 0 {
		entry.Position = 0
		for _, existing := range config.Roles {
			if existing.Position >= entry.Position {
				entry.Position = existing.Position + 1
			}
		}
	}
	config.Roles = append(config.Roles, entry)
	sortEntries(config)
	return nil
}

//RemoveEntry removes the entry for the given role ID. Remaining positions are
//left as they are; they do not need to be contiguous.
func RemoveEntry(config *guildmodels.RoleMenuConfig, roleID string) error {
	for i := range config.Roles {
		if config.Roles[i].RoleID == roleID {
			config.Roles = append(config.Roles[:i], config.Roles[i+1:]...)
			return nil
		}
	}
	return ErrRoleNotOnMenu
}

//ReorderEntry moves an entry to a new index in the display order and
//renumbers positions to match, so the moved entry cannot tie with another.
func ReorderEntry(config *guildmodels.RoleMenuConfig, roleID string, position int) error {
	if position < 0 || position >= len(config.Roles) {
		return ErrBadPosition
	}
	idx := -1
	for i := range config.Roles {
		if config.Roles[i].RoleID == roleID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return ErrRoleNotOnMenu
	}
	entry := config.Roles[idx]
	config.Roles = append(config.Roles[:idx], config.Roles[idx+1:]...)
	rest := append([]guildmodels.RoleEntry{entry}, config.Roles[position:]...)
	config.Roles = append(config.Roles[:position], rest...)
	for i := range config.Roles {
		config.Roles[i].Position = i
	}
	return nil
}

func sortEntries(config *guildmodels.RoleMenuConfig) {
	sort.SliceStable(config.Roles, func(i, j int) bool {
		return config.Roles[i].Position < config.Roles[j].Position
	})
}

//CreateMenu posts a fresh menu message and persists its config document as a
//single all-or-nothing step: if the post fails no document is created, and if
//the save fails the posted message is removed again.
func (c *Coordinator) CreateMenu(ctx context.Context, config *guildmodels.RoleMenuConfig) error {
	if config.Title == "" || config.Description == "" {
		return ErrMissingTitle
	}
	messageID, err := c.Renderer.PostMenu(config)
	if err != nil {
		return fmt.Errorf("failed to post role menu message: %w", err)
	}
	config.MessageID = messageID
	err = c.Store.Save(ctx, config, config.Version)
	if err != nil {
		logrus.Errorf("Failed to persist new role menu for guild %v due to error %v", config.GuildID, err)
		delErr := c.Renderer.DeleteMenuMessage(config)
		if delErr != nil {
			logrus.Warnf("Failed to remove orphaned role menu message %v due to error %v", config.MessageID, delErr)
		}
		return fmt.Errorf("failed to persist role menu: %w", err)
	}
	return nil
}

//AddRole adds an entry to an existing menu, persists the document and
//re-renders the message.
func (c *Coordinator) AddRole(ctx context.Context, messageID string, entry guildmodels.RoleEntry, actor guildmodels.Attribution) error {
	return c.mutateMenu(ctx, messageID, actor, func(config *guildmodels.RoleMenuConfig) error {
		return AddEntry(config, entry)
	})
}

//RemoveRole removes an entry from an existing menu, persists the document and
//re-renders the message.
func (c *Coordinator) RemoveRole(ctx context.Context, messageID, roleID string, actor guildmodels.Attribution) error {
	return c.mutateMenu(ctx, messageID, actor, func(config *guildmodels.RoleMenuConfig) error {
		return RemoveEntry(config, roleID)
	})
}

//ReorderRole moves an entry to a new position, persists and re-renders.
func (c *Coordinator) ReorderRole(ctx context.Context, messageID, roleID string, position int, actor guildmodels.Attribution) error {
	return c.mutateMenu(ctx, messageID, actor, func(config *guildmodels.RoleMenuConfig) error {
		return ReorderEntry(config, roleID, position)
	})
}

//UpdateSettings replaces the menu's settings block, persists and re-renders.
func (c *Coordinator) UpdateSettings(ctx context.Context, messageID string, settings guildmodels.MenuSettings, actor guildmodels.Attribution) error {
	return c.mutateMenu(ctx, messageID, actor, func(config *guildmodels.RoleMenuConfig) error {
		config.Settings = settings
		return nil
	})
}

//DeleteMenu removes the menu document and then best-effort deletes the posted
//message. The document removal is authoritative; a failure to delete the
//message is only logged.
func (c *Coordinator) DeleteMenu(ctx context.Context, messageID string) error {
	config, err := c.Store.FindByMessage(ctx, messageID)
	if err != nil {
		return err
	}
	err = c.Store.Delete(ctx, messageID)
	if err != nil {
		return fmt.Errorf("failed to delete role menu document: %w", err)
	}
	err = c.Renderer.DeleteMenuMessage(config)
	if err != nil {
		logrus.Warnf("Failed to delete role menu message %v due to error %v", messageID, err)
	}
	return nil
}

//CleanupStaleRoles removes every entry whose role no longer exists on the
//platform. If any entries were removed the document is persisted and the
//message re-rendered. Returns the number of entries removed.
func (c *Coordinator) CleanupStaleRoles(ctx context.Context, messageID string) (int, error) {
	config, err := c.Store.FindByMessage(ctx, messageID)
	if err != nil {
		return 0, err
	}
	kept := config.Roles[:0]
	removed := 0
	for _, entry := range config.Roles {
		exists, err := c.Roles.RoleExists(config.GuildID, entry.RoleID)
		if err != nil {
			return removed, fmt.Errorf("failed to check role %v: %w", entry.RoleID, err)
		}
		if exists {
			kept = append(kept, entry)
		} else {
			logrus.Infof("Removing stale role %v (%v) from menu %v", entry.RoleID, entry.RoleName, messageID)
			removed++
		}
	}
	if removed == 0 {
		return 0, nil
	}
	config.Roles = kept
	err = c.Store.Save(ctx, config, config.Version)
	if err != nil {
		return removed, fmt.Errorf("failed to persist cleaned menu: %w", err)
	}
	c.rerender(config)
	return removed, nil
}

//mutateMenu loads a menu document, applies a mutation, stamps attribution,
//persists and re-renders. The mutation's error is returned untouched so
//callers can surface the specific rule that failed.
func (c *Coordinator) mutateMenu(ctx context.Context, messageID string, actor guildmodels.Attribution, mutate func(*guildmodels.RoleMenuConfig) error) error {
	config, err := c.Store.FindByMessage(ctx, messageID)
	if err != nil {
		return err
	}
	err = mutate(config)
	if err != nil {
		return err
	}
	if actor.Timestamp.IsZero() {
		actor.Timestamp = time.Now()
	}
	config.LastModifiedBy = actor
	err = c.Store.Save(ctx, config, config.Version)
	if err != nil {
		return fmt.Errorf("failed to persist role menu: %w", err)
	}
	c.rerender(config)
	return nil
}
