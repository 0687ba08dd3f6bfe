package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterpretEmojiGuildEmoji(t *testing.T) {
	res := interpretEmoji("<:catjam:814989586614125568>")
	require.NotNil(t, res)
	assert.Equal(t, "catjam:814989586614125568", *res)
}

func TestInterpretEmojiAnimatedGuildEmoji(t *testing.T) {
	res := interpretEmoji("<a:partyblob:123456789012345678>")
	require.NotNil(t, res)
	assert.Equal(t, "partyblob:123456789012345678", *res)
}

func TestInterpretEmojiUnicode(t *testing.T) {
	res := interpretEmoji("🎮")
	require.NotNil(t, res)
	assert.Equal(t, "🎮", *res)
}

func TestInterpretEmojiEmpty(t *testing.T) {
	assert.Nil(t, interpretEmoji(""))
}
