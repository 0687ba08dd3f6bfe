package chat

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

//cooldownEvictAfter is how long an idle user's limiter is kept before the
//janitor drops it.
const cooldownEvictAfter = 30 * time.Minute
const cooldownSweepInterval = 5 * time.Minute

//cooldownTable keeps one rate limiter per user so that each user gets a full
//cooldown between prompts. Idle entries are evicted periodically so the table
//stays bounded.
type cooldownTable struct {
	mu       sync.Mutex
	interval time.Duration
	users    map[string]*cooldownEntry
	done     chan struct{}
}

type cooldownEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newCooldownTable(interval time.Duration) *cooldownTable {
	t := &cooldownTable{
		interval: interval,
		users:    map[string]*cooldownEntry{},
		done:     make(chan struct{}),
	}
	go t.sweep()
	return t
}

//allow reports whether the user may send a prompt now, consuming their
//cooldown token if so.
func (t *cooldownTable) allow(userID string) bool {
	if t.interval <= 0 {
		return true
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	entry, ok := t.users[userID]
	if !ok {
		entry = &cooldownEntry{limiter: rate.NewLimiter(rate.Every(t.interval), 1)}
		t.users[userID] = entry
	}
	entry.lastSeen = time.Now()
	return entry.limiter.Allow()
}

func (t *cooldownTable) sweep() {
	ticker := time.NewTicker(cooldownSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-t.done:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-cooldownEvictAfter)
			t.mu.Lock()
			for userID, entry := range t.users {
				if entry.lastSeen.Before(cutoff) {
					delete(t.users, userID)
				}
			}
			t.mu.Unlock()
		}
	}
}

func (t *cooldownTable) stop() {
	close(t.done)
}
