package service

import "sync"

// channelLocks hands out one mutex per channel id so claim and unclaim on
// the same ticket serialize while different tickets proceed in parallel.
// Entries are reference counted and removed once the last holder releases,
// keeping the map bounded by in-flight operations rather than ticket count.
type channelLocks struct {
	mu      sync.Mutex
	entries map[int64]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newChannelLocks() *channelLocks {
	return &channelLocks{entries: make(map[int64]*lockEntry)}
}

// Lock acquires the exclusive section for channelID and returns its
// release func. The section must cover the claimant re-read and write.
func (l *channelLocks) Lock(channelID int64) func() {
	l.mu.Lock()
	entry, ok := l.entries[channelID]
	if !ok {
		entry = &lockEntry{}
		l.entries[channelID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.entries, channelID)
		}
		l.mu.Unlock()
	}
}
