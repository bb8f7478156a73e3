package dashboard

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogCommandBoundedHistory(t *testing.T) {
	for _, n := range []int{0, 1, 99, 100, 101, 250} {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			s := NewStore()
			for i := 0; i < n; i++ {
				s.LogCommand(CommandEntry{Command: fmt.Sprint(i)})
			}

			h := s.History()
			want := n
			if want > HistorySize {
				want = HistorySize
			}
			require.Len(t, h, want)

			// exactly the most recent entries, oldest first
			for i, e := range h {
				assert.Equal(t, fmt.Sprint(n-want+i), e.Command)
			}

			assert.Equal(t, uint64(n), s.Stats().TotalCommands)
		})
	}
}

func TestLogCommandTimestamps(t *testing.T) {
	s := NewStore()
	fixed := time.Date(2022, 2, 5, 23, 5, 13, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	s.LogCommand(CommandEntry{Command: "ping", UserID: "1", Timestamp: time.Unix(0, 0)})
	assert.Equal(t, fixed, s.History()[0].Timestamp)
}

func TestUpdateStatsMerges(t *testing.T) {
	s := NewStore()
	assert.Equal(t, StatusOffline, s.Stats().Status)

	guilds, online := 3, StatusOnline
	s.UpdateStats(StatsUpdate{Guilds: &guilds, Status: &online})

	users := 12
	s.UpdateStats(StatsUpdate{Users: &users})

	st := s.Stats()
	assert.Equal(t, 3, st.Guilds)
	assert.Equal(t, 12, st.Users)
	assert.Equal(t, StatusOnline, st.Status)
	assert.Nil(t, st.Uptime)
}

func TestTotalCommandsSurvivesStatsUpdates(t *testing.T) {
	s := NewStore()
	s.LogCommand(CommandEntry{Command: "hello"})
	s.LogCommand(CommandEntry{Command: "ping"})

	offline := StatusOffline
	s.UpdateStats(StatsUpdate{Status: &offline})
	assert.Equal(t, uint64(2), s.Stats().TotalCommands)
}

func TestStoreEvents(t *testing.T) {
	s := NewStore()

	var commands []CommandEntry
	var stats []Stats
	require.NoError(t, s.OnCommand(func(e CommandEntry) { commands = append(commands, e) }))
	require.NoError(t, s.OnStats(func(st Stats) { stats = append(stats, st) }))

	s.LogCommand(CommandEntry{Command: "info"})
	users := 5
	s.UpdateStats(StatsUpdate{Users: &users})

	require.Len(t, commands, 1)
	assert.Equal(t, "info", commands[0].Command)
	require.Len(t, stats, 1)
	assert.Equal(t, 5, stats[0].Users)
	assert.Equal(t, uint64(1), stats[0].TotalCommands)
}

func TestStoreConcurrentUse(t *testing.T) {
	s := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				s.LogCommand(CommandEntry{Command: "ping"})
				_ = s.History()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, uint64(400), s.Stats().TotalCommands)
	assert.Len(t, s.History(), HistorySize)
}

func TestStatsCopiesUptime(t *testing.T) {
	s := NewStore()
	now := time.Now()
	s.UpdateStats(StatsUpdate{Uptime: &now})

	st := s.Stats()
	*st.Uptime = time.Time{}
	assert.False(t, s.Stats().Uptime.IsZero())
}
