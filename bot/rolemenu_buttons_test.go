package bot

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/karashiin/hibiki/rolemenu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func interactionEmbed(t *testing.T, r Response) *discordgo.MessageEmbed {
	t.Helper()
	resp := r.InteractionResponse()
	require.NotNil(t, resp.Data)
	require.Len(t, resp.Data.Embeds, 1)
	return resp.Data.Embeds[0]
}

func TestToggleResponseAssigned(t *testing.T) {
	outcome := rolemenu.Outcome{Kind: rolemenu.OutcomeAssigned}
	r := toggleResponse(outcome, "role-1", true)

	success, ok := r.(ResponseSuccess)
	require.True(t, ok)
	assert.Contains(t, success.description, "<@&role-1>")

	resp := r.InteractionResponse()
	assert.Equal(t, discordgo.MessageFlagsEphemeral, resp.Data.Flags)
}

func TestToggleResponseAssignedPublic(t *testing.T) {
	outcome := rolemenu.Outcome{Kind: rolemenu.OutcomeAssigned}
	resp := toggleResponse(outcome, "role-1", false).InteractionResponse()
	assert.Zero(t, resp.Data.Flags)
}

func TestToggleResponseRemoved(t *testing.T) {
	outcome := rolemenu.Outcome{Kind: rolemenu.OutcomeRemoved}
	r := toggleResponse(outcome, "role-1", true)

	success, ok := r.(ResponseSuccess)
	require.True(t, ok)
	assert.Contains(t, success.description, "Removed")
}

func TestToggleResponseDenialNamesRule(t *testing.T) {
	outcome := rolemenu.Outcome{
		Kind:   rolemenu.OutcomeDeniedAssign,
		Reason: "You already have the maximum of 2 roles from this menu",
	}
	r := toggleResponse(outcome, "role-1", false)

	denied, ok := r.(ResponseDenied)
	require.True(t, ok)
	assert.Equal(t, outcome.Reason, denied.reason)

	//Denials are always private regardless of the menu's ephemeral setting
	resp := r.InteractionResponse()
	assert.Equal(t, discordgo.MessageFlagsEphemeral, resp.Data.Flags)
}

func TestToggleResponseRoleMissingSuggestsCleanup(t *testing.T) {
	outcome := rolemenu.Outcome{Kind: rolemenu.OutcomeRoleMissing}
	r := toggleResponse(outcome, "role-1", false)

	denied, ok := r.(ResponseDenied)
	require.True(t, ok)
	assert.Contains(t, denied.reason, "/rolemenu cleanup")
}

func TestToggleResponseFailuresAreGeneric(t *testing.T) {
	for _, kind := range []rolemenu.OutcomeKind{rolemenu.OutcomePlatformFailed, rolemenu.OutcomePersistenceFailed} {
		r := toggleResponse(rolemenu.Outcome{Kind: kind}, "role-1", false)
		_, ok := r.(ResponseInternalError)
		require.True(t, ok, "outcome kind %v should map to an internal error", kind)

		embed := interactionEmbed(t, r)
		assert.NotContains(t, embed.Description, "role-1")
	}
}
