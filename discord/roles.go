package discord

import (
	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
)

//GrantRole assigns a guild role to a member, recording the reason in the
//guild's audit log.
func (d *EventSource) GrantRole(guildID, userID, roleID, reason string) error {
	err := d.discordClient.GuildMemberRoleAdd(guildID, userID, roleID, discordgo.WithAuditLogReason(reason))
	if err != nil {
		logrus.Warnf("Failed to grant role %v to user %v in guild %v due to error %v", roleID, userID, guildID, err)
	}
	return err
}

//RevokeRole removes a guild role from a member, recording the reason in the
//guild's audit log.
func (d *EventSource) RevokeRole(guildID, userID, roleID, reason string) error {
	err := d.discordClient.GuildMemberRoleRemove(guildID, userID, roleID, discordgo.WithAuditLogReason(reason))
	if err != nil {
		logrus.Warnf("Failed to revoke role %v from user %v in guild %v due to error %v", roleID, userID, guildID, err)
	}
	return err
}

//RoleExists reports whether the guild still has a role with the given ID.
//The gateway state cache is checked first to avoid an API round trip.
func (d *EventSource) RoleExists(guildID, roleID string) (bool, error) {
	role, err := d.discordClient.State.Role(guildID, roleID)
	if err == nil && role != nil {
		return true, nil
	}
	roles, err := d.discordClient.GuildRoles(guildID)
	if err != nil {
		logrus.Warnf("Failed to fetch guild roles for guild id %v due to error %v", guildID, err)
		return false, err
	}
	for _, guildRole := range roles {
		if guildRole.ID == roleID {
			return true, nil
		}
	}
	return false, nil
}

//GuildRoles returns the guild's full role list.
func (d *EventSource) GuildRoles(guildID string) ([]*discordgo.Role, error) {
	roles, err := d.discordClient.GuildRoles(guildID)
	if err != nil {
		logrus.Warnf("Failed to fetch guild roles for guild id %v due to error %v", guildID, err)
		return nil, err
	}
	return roles, nil
}
