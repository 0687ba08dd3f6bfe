package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCooldownTableAllowsFirstRequest(t *testing.T) {
	t.Parallel()
	table := newCooldownTable(time.Hour)
	defer table.stop()

	assert.True(t, table.allow("u1"))
	assert.False(t, table.allow("u1"))
	//Other users have independent cooldowns
	assert.True(t, table.allow("u2"))
}

func TestCooldownTableRefillsAfterInterval(t *testing.T) {
	t.Parallel()
	table := newCooldownTable(10 * time.Millisecond)
	defer table.stop()

	assert.True(t, table.allow("u1"))
	assert.False(t, table.allow("u1"))
	time.Sleep(20 * time.Millisecond)
	assert.True(t, table.allow("u1"))
}

func TestCooldownTableDisabled(t *testing.T) {
	t.Parallel()
	table := newCooldownTable(0)
	defer table.stop()

	assert.True(t, table.allow("u1"))
	assert.True(t, table.allow("u1"))
}
