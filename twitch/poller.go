package twitch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"emperror.dev/errors"
	"github.com/starshine-sys/clipbot/common"
	"github.com/starshine-sys/clipbot/metrics"
)

// DefaultInterval is the time between two polls.
const DefaultInterval = 30 * time.Second

// ClipSource is implemented by *Client.
type ClipSource interface {
	Authenticate(ctx context.Context) error
	ResolveChannel(ctx context.Context, login string) (id string, found bool, err error)
	LatestClips(ctx context.Context, broadcasterID string, count int) []Clip
}

// State is the poller's lifecycle state.
type State int

const (
	Uninitialized State = iota
	Authenticating
	Resolving
	Polling
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Authenticating:
		return "authenticating"
	case Resolving:
		return "resolving"
	case Polling:
		return "polling"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Poller checks a channel for new clips on a fixed interval and calls Announce for each new one.
type Poller struct {
	Source   ClipSource
	Channel  string
	Interval time.Duration
	Announce func(Clip) error

	mu            sync.Mutex
	state         State
	broadcasterID string
	lastSeen      string
}

// NewPoller returns a poller for the given channel login.
func NewPoller(src ClipSource, channel string, interval time.Duration, announce func(Clip) error) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}

	return &Poller{
		Source:   src,
		Channel:  channel,
		Interval: interval,
		Announce: announce,
	}
}

// Run authenticates, resolves the channel, and then polls until ctx is cancelled.
// Authentication and resolution are retried every interval until they succeed.
func (p *Poller) Run(ctx context.Context) {
	log := common.Log.Named("poller")

	p.setState(Authenticating)
	for {
		err := p.Source.Authenticate(ctx)
		if err == nil {
			break
		}
		log.Errorf("Error authenticating with Twitch: %v", err)

		if !p.sleep(ctx) {
			return
		}
	}

	p.setState(Resolving)
	for {
		id, found, err := p.Source.ResolveChannel(ctx, p.Channel)
		if err == nil && found {
			p.mu.Lock()
			p.broadcasterID = id
			p.mu.Unlock()

			log.Infof("Watching %v (%v) for new clips", p.Channel, id)
			break
		}

		if err != nil {
			log.Errorf("Error resolving channel %q: %v", p.Channel, err)
		} else {
			log.Warnf("Twitch channel %q not found", p.Channel)
		}

		if !p.sleep(ctx) {
			return
		}
	}

	p.setState(Polling)
	for {
		err := p.Tick(ctx)
		if err != nil {
			log.Errorf("Error checking for new clips: %v", err)
		}

		if !p.sleep(ctx) {
			return
		}
	}
}

// Tick runs a single poll iteration. Panics are recovered and returned as errors.
func (p *Poller) Tick(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("panic while polling: %v", r)
		}
	}()

	metrics.ClipPolls.Inc()

	p.mu.Lock()
	id := p.broadcasterID
	p.mu.Unlock()

	clips := p.Source.LatestClips(ctx, id, 1)
	if len(clips) == 0 {
		return nil
	}
	latest := clips[0]

	p.mu.Lock()
	previous := p.lastSeen
	p.lastSeen = latest.ID
	p.mu.Unlock()

	// the first clip seen after startup is not new, it's just the current state
	if previous == "" || previous == latest.ID {
		return nil
	}

	common.Log.Named("poller").Infof("New clip %v: %q", latest.ID, latest.Title)
	metrics.ClipsAnnounced.Inc()

	if p.Announce == nil {
		return nil
	}
	return errors.Wrap(p.Announce(latest), "announcing clip")
}

// State returns the current lifecycle state.
func (p *Poller) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// LastSeen returns the last observed clip ID, or an empty string if no clip has been seen yet.
func (p *Poller) LastSeen() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastSeen
}

// BroadcasterID returns the resolved broadcaster ID.
func (p *Poller) BroadcasterID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.broadcasterID
}

func (p *Poller) setState(s State) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}

func (p *Poller) sleep(ctx context.Context) bool {
	t := time.NewTimer(p.Interval)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
