package rolemenu

import (
	"fmt"

	"github.com/karashiin/hibiki/guildmodels"
)

//Decision is the result of an eligibility check. When Allowed is false, Reason
//holds a short user-facing explanation of the first rule that failed.
type Decision struct {
	Allowed bool
	Reason  string
}

func deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

//CanAssign decides whether a user may currently gain the given role from a
//menu. It is a pure function over the menu config and the user's current role
//set; checks run in a fixed order and the first failure wins.
func CanAssign(config *guildmodels.RoleMenuConfig, roleID string, userID string, currentUserRoleIDs []string) Decision {
	entry := config.FindRole(roleID)
	if entry == nil {
		return deny("Role not found")
	}
	if max := config.Settings.MaxRolesPerUser; max != nil {
		held := countMenuRolesHeld(config, currentUserRoleIDs)
		if held >= *max {
			return deny(fmt.Sprintf("You already have the maximum of %d roles from this menu", *max))
		}
	}
	if entry.MaxAssignments != nil && entry.CurrentAssignments >= *entry.MaxAssignments {
		return deny("Role assignment limit reached")
	}
	if entry.RequiredRole != nil && !containsRole(currentUserRoleIDs, *entry.RequiredRole) {
		return deny("Required role not found")
	}
	for _, conflicting := range entry.ConflictingRoles {
		if containsRole(currentUserRoleIDs, conflicting) {
			return deny("Conflicting role detected")
		}
	}
	return Decision{Allowed: true}
}

//countMenuRolesHeld returns how many of the user's current roles are offered
//by this menu.
func countMenuRolesHeld(config *guildmodels.RoleMenuConfig, currentUserRoleIDs []string) int {
	count := 0
	for _, entry := range config.Roles {
		if containsRole(currentUserRoleIDs, entry.RoleID) {
			count++
		}
	}
	return count
}

func containsRole(roleIDs []string, roleID string) bool {
	for _, id := range roleIDs {
		if id == roleID {
			return true
		}
	}
	return false
}
