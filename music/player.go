package music

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
)

//ErrNothingPlaying is returned by skip and stop when the guild has no player.
var ErrNothingPlaying = errors.New("music: nothing is playing in this guild")

//node is the slice of the audio sidecar the player manager drives.
type node interface {
	SearchTracks(ctx context.Context, query string) ([]Track, error)
	PlayTrack(ctx context.Context, guildID string, track Track) error
	StopPlayback(ctx context.Context, guildID string) error
	UpdateVoice(ctx context.Context, guildID, voiceSessionID, token, endpoint string) error
}

//guildQueue is the in-memory playback state for one guild.
type guildQueue struct {
	nowPlaying *Track
	upNext     []Track
}

//Manager keeps the per-guild queues and requests playback changes from the
//audio sidecar. Queues live only in memory; a restart clears them.
type Manager struct {
	node node

	mu     sync.Mutex
	queues map[string]*guildQueue
}

//NewManager wires a player manager to its sidecar client.
func NewManager(client *LavalinkClient) *Manager {
	return &Manager{node: client, queues: map[string]*guildQueue{}}
}

//Play resolves a query and either starts it immediately or appends it to the
//guild's queue. Returns the chosen track and whether it was queued behind a
//current one.
func (m *Manager) Play(ctx context.Context, guildID string, query string) (Track, bool, error) {
	tracks, err := m.node.SearchTracks(ctx, query)
	if err != nil {
		return Track{}, false, err
	}
	track := tracks[0]

	m.mu.Lock()
	queue, ok := m.queues[guildID]
	if !ok {
		queue = &guildQueue{}
		m.queues[guildID] = queue
	}
	if queue.nowPlaying != nil {
		queue.upNext = append(queue.upNext, track)
		m.mu.Unlock()
		return track, true, nil
	}
	queue.nowPlaying = &track
	m.mu.Unlock()

	err = m.node.PlayTrack(ctx, guildID, track)
	if err != nil {
		m.mu.Lock()
		queue.nowPlaying = nil
		m.mu.Unlock()
		return Track{}, false, err
	}
	return track, false, nil
}

//Skip drops the current track and starts the next queued one, if any.
//Returns the track now playing, or nil when the queue ran dry.
func (m *Manager) Skip(ctx context.Context, guildID string) (*Track, error) {
	m.mu.Lock()
	queue, ok := m.queues[guildID]
	if !ok || queue.nowPlaying == nil {
		m.mu.Unlock()
		return nil, ErrNothingPlaying
	}
	if len(queue.upNext) == 0 {
		queue.nowPlaying = nil
		m.mu.Unlock()
		err := m.node.StopPlayback(ctx, guildID)
		return nil, err
	}
	next := queue.upNext[0]
	queue.upNext = queue.upNext[1:]
	queue.nowPlaying = &next
	m.mu.Unlock()

	err := m.node.PlayTrack(ctx, guildID, next)
	if err != nil {
		m.mu.Lock()
		queue.nowPlaying = nil
		m.mu.Unlock()
		return nil, err
	}
	return &next, nil
}

//Stop clears the guild's queue and stops playback.
func (m *Manager) Stop(ctx context.Context, guildID string) error {
	m.mu.Lock()
	queue, ok := m.queues[guildID]
	if !ok || queue.nowPlaying == nil {
		m.mu.Unlock()
		return ErrNothingPlaying
	}
	queue.nowPlaying = nil
	queue.upNext = nil
	m.mu.Unlock()
	return m.node.StopPlayback(ctx, guildID)
}

//Queue returns the current track and the queued tracks for a guild.
func (m *Manager) Queue(guildID string) (*Track, []Track) {
	m.mu.Lock()
	defer m.mu.Unlock()
	queue, ok := m.queues[guildID]
	if !ok {
		return nil, nil
	}
	var upNext []Track
	upNext = append(upNext, queue.upNext...)
	return queue.nowPlaying, upNext
}

//HandleVoiceServerUpdate forwards fresh voice credentials for a guild to the
//sidecar so it can (re)connect to the voice channel.
func (m *Manager) HandleVoiceServerUpdate(ctx context.Context, guildID, voiceSessionID, token, endpoint string) {
	err := m.node.UpdateVoice(ctx, guildID, voiceSessionID, token, endpoint)
	if err != nil {
		logrus.Warnf("Failed to forward voice server update for guild %v due to error %v", guildID, err)
	}
}
