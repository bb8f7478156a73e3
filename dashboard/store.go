// Package dashboard keeps recent command activity and bot statistics,
// and serves them to browsers over HTTP and a WebSocket push channel.
package dashboard

import (
	"sync"
	"time"

	"github.com/asaskevich/EventBus"
)

// HistorySize is the number of commands kept in the history.
const HistorySize = 100

// Push event names
const (
	EventCommandHistory = "command_history"
	EventStatsUpdate    = "stats_update"
	EventNewCommand     = "new_command"
)

// Status is the bot's connection status.
type Status string

const (
	StatusOnline  Status = "online"
	StatusOffline Status = "offline"
)

// CommandEntry is a single logged command invocation.
type CommandEntry struct {
	Command   string         `json:"command"`
	UserID    string         `json:"user"`
	Timestamp time.Time      `json:"timestamp"`
	Context   map[string]any `json:"context,omitempty"`
}

// Stats are the bot statistics shown on the dashboard.
type Stats struct {
	TotalCommands uint64     `json:"total_commands"`
	Uptime        *time.Time `json:"uptime"`
	Guilds        int        `json:"guilds"`
	Users         int        `json:"users"`
	Status        Status     `json:"status"`
}

// StatsUpdate is a partial update of Stats. Nil fields are left unchanged.
// The command total can only be changed through LogCommand.
type StatsUpdate struct {
	Uptime *time.Time
	Guilds *int
	Users  *int
	Status *Status
}

// Snapshot is a consistent copy of the store's state.
type Snapshot struct {
	History []CommandEntry
	Stats   Stats
}

// Store is the in-memory dashboard state. It is safe for concurrent use.
type Store struct {
	mu sync.RWMutex

	// ring buffer; start is the index of the oldest entry
	history []CommandEntry
	start   int
	count   int

	stats Stats
	bus   EventBus.Bus

	now func() time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		history: make([]CommandEntry, HistorySize),
		stats:   Stats{Status: StatusOffline},
		bus:     EventBus.New(),
		now:     time.Now,
	}
}

// LogCommand timestamps e, appends it to the history, and increments the command total.
func (s *Store) LogCommand(e CommandEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e.Timestamp = s.now().UTC()

	idx := (s.start + s.count) % HistorySize
	s.history[idx] = e
	if s.count < HistorySize {
		s.count++
	} else {
		s.start = (s.start + 1) % HistorySize
	}

	s.stats.TotalCommands++

	s.bus.Publish(EventNewCommand, e)
}

// UpdateStats merges u into the current stats.
func (s *Store) UpdateStats(u StatsUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.Uptime != nil {
		t := *u.Uptime
		s.stats.Uptime = &t
	}
	if u.Guilds != nil {
		s.stats.Guilds = *u.Guilds
	}
	if u.Users != nil {
		s.stats.Users = *u.Users
	}
	if u.Status != nil {
		s.stats.Status = *u.Status
	}

	s.bus.Publish(EventStatsUpdate, s.statsLocked())
}

// History returns the logged commands, oldest first.
func (s *Store) History() []CommandEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.historyLocked()
}

// Stats returns a copy of the current stats.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.statsLocked()
}

// Attach calls fn with a snapshot of the store. No events are published while fn runs,
// so anything fn registers sees every event after the snapshot exactly once.
func (s *Store) Attach(fn func(Snapshot)) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fn(Snapshot{
		History: s.historyLocked(),
		Stats:   s.statsLocked(),
	})
}

// OnCommand subscribes fn to new commands. fn is called with the store locked and must not call back into it.
func (s *Store) OnCommand(fn func(CommandEntry)) error {
	return s.bus.Subscribe(EventNewCommand, fn)
}

// OnStats subscribes fn to stats updates. fn is called with the store locked and must not call back into it.
func (s *Store) OnStats(fn func(Stats)) error {
	return s.bus.Subscribe(EventStatsUpdate, fn)
}

func (s *Store) historyLocked() []CommandEntry {
	out := make([]CommandEntry, 0, s.count)
	for i := 0; i < s.count; i++ {
		out = append(out, s.history[(s.start+i)%HistorySize])
	}
	return out
}

func (s *Store) statsLocked() Stats {
	st := s.stats
	if st.Uptime != nil {
		t := *st.Uptime
		st.Uptime = &t
	}
	return st
}
