package music

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNode struct {
	searchErr error
	playErr   error
	played    []string
	stopped   int
}

func (f *fakeNode) SearchTracks(_ context.Context, query string) ([]Track, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return []Track{{
		Encoded: "enc:" + query,
		Info:    TrackInfo{Title: query, Length: 200_000},
	}}, nil
}

func (f *fakeNode) PlayTrack(_ context.Context, guildID string, track Track) error {
	if f.playErr != nil {
		return f.playErr
	}
	f.played = append(f.played, track.Encoded)
	return nil
}

func (f *fakeNode) StopPlayback(_ context.Context, guildID string) error {
	f.stopped++
	return nil
}

func (f *fakeNode) UpdateVoice(_ context.Context, guildID, voiceSessionID, token, endpoint string) error {
	return nil
}

func newTestManager() (*Manager, *fakeNode) {
	fake := &fakeNode{}
	return &Manager{node: fake, queues: map[string]*guildQueue{}}, fake
}

func TestPlayStartsFirstTrackImmediately(t *testing.T) {
	t.Parallel()
	m, fake := newTestManager()

	track, queued, err := m.Play(context.Background(), "g1", "some song")
	require.NoError(t, err)
	assert.False(t, queued)
	assert.Equal(t, "enc:some song", track.Encoded)
	assert.Equal(t, []string{"enc:some song"}, fake.played)
}

func TestPlayQueuesBehindCurrentTrack(t *testing.T) {
	t.Parallel()
	m, fake := newTestManager()
	ctx := context.Background()

	_, _, err := m.Play(ctx, "g1", "first")
	require.NoError(t, err)
	_, queued, err := m.Play(ctx, "g1", "second")
	require.NoError(t, err)
	assert.True(t, queued)
	//The second track is not sent to the sidecar yet
	assert.Equal(t, []string{"enc:first"}, fake.played)

	now, upNext := m.Queue("g1")
	require.NotNil(t, now)
	assert.Equal(t, "enc:first", now.Encoded)
	require.Len(t, upNext, 1)
	assert.Equal(t, "enc:second", upNext[0].Encoded)
}

func TestSkipAdvancesQueue(t *testing.T) {
	t.Parallel()
	m, fake := newTestManager()
	ctx := context.Background()

	_, _, err := m.Play(ctx, "g1", "first")
	require.NoError(t, err)
	_, _, err = m.Play(ctx, "g1", "second")
	require.NoError(t, err)

	next, err := m.Skip(ctx, "g1")
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, "enc:second", next.Encoded)
	assert.Equal(t, []string{"enc:first", "enc:second"}, fake.played)

	//Skipping the last track stops playback
	next, err = m.Skip(ctx, "g1")
	require.NoError(t, err)
	assert.Nil(t, next)
	assert.Equal(t, 1, fake.stopped)

	_, err = m.Skip(ctx, "g1")
	assert.ErrorIs(t, err, ErrNothingPlaying)
}

func TestStopClearsQueue(t *testing.T) {
	t.Parallel()
	m, fake := newTestManager()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, _, err := m.Play(ctx, "g1", fmt.Sprintf("track-%d", i))
		require.NoError(t, err)
	}
	err := m.Stop(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, 1, fake.stopped)

	now, upNext := m.Queue("g1")
	assert.Nil(t, now)
	assert.Empty(t, upNext)

	assert.ErrorIs(t, m.Stop(ctx, "g1"), ErrNothingPlaying)
}

func TestPlaySurfacesSearchErrors(t *testing.T) {
	t.Parallel()
	m, fake := newTestManager()
	fake.searchErr = ErrNoMatches

	_, _, err := m.Play(context.Background(), "g1", "garbage")
	assert.ErrorIs(t, err, ErrNoMatches)
}

func TestPlayRollsBackOnSidecarFailure(t *testing.T) {
	t.Parallel()
	m, fake := newTestManager()
	fake.playErr = errors.New("node down")

	_, _, err := m.Play(context.Background(), "g1", "song")
	require.Error(t, err)

	//A follow-up request starts fresh rather than queueing behind a ghost
	fake.playErr = nil
	_, queued, err := m.Play(context.Background(), "g1", "song")
	require.NoError(t, err)
	assert.False(t, queued)
}

func TestTrackDisplayLength(t *testing.T) {
	t.Parallel()
	info := TrackInfo{Length: 200_000}
	assert.Equal(t, "3:20", info.DisplayLength())
	assert.Equal(t, "0:05", TrackInfo{Length: 5_000}.DisplayLength())
}
