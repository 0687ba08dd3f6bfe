package welcome

import (
	"fmt"
	"strings"
)

//Default templates used when a guild enables welcome messages without
//configuring its own.
const (
	DefaultWelcomeTemplate = "Welcome to {server}, {user}! You are member #{memberCount}."
	DefaultLeaveTemplate   = "{username} has left {server}."
)

//TemplateData carries the values substituted into a welcome or leave template.
type TemplateData struct {
	UserID      string
	Username    string
	ServerName  string
	MemberCount int
}

//Render substitutes the supported placeholders into a message template:
//{user} becomes a mention, {username}, {server} and {memberCount} become
//their literal values. Anything else in braces is passed through verbatim.
func Render(template string, data TemplateData) string {
	replacer := strings.NewReplacer(
		"{user}", fmt.Sprintf("<@%s>", data.UserID),
		"{username}", data.Username,
		"{server}", data.ServerName,
		"{memberCount}", fmt.Sprintf("%d", data.MemberCount),
	)
	return replacer.Replace(template)
}
