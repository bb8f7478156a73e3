package bot

import (
	"context"
	"sync"
	"time"

	"emperror.dev/errors"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/diamondburned/arikawa/v3/gateway"
	"github.com/diamondburned/arikawa/v3/session/shard"
	"github.com/diamondburned/arikawa/v3/state"
	"github.com/starshine-sys/bcr"
	"github.com/starshine-sys/clipbot/common"
	"github.com/starshine-sys/clipbot/dashboard"
	"github.com/starshine-sys/clipbot/notify"
)

const Intents = bcr.RequiredIntents | gateway.IntentGuildMembers

// Presence is the activity shown once the bot is ready.
const Presence = "!help for commands"

type Bot struct {
	Config Config

	Router *bcr.Router
	Store  *dashboard.Store
	Notify *notify.Dispatcher

	Start time.Time

	user   *discord.User
	userMu sync.RWMutex
}

// New creates a new Bot. The gateway is not opened until Open is called.
func New(c Config, store *dashboard.Store) (*Bot, error) {
	common.SetupGatewayLogging()

	r, err := bcr.NewWithIntents(c.Token, nil, []string{c.Prefix}, Intents)
	if err != nil {
		return nil, errors.Wrap(err, "creating router")
	}
	return NewWithRouter(c, r, store), nil
}

// NewWithRouter creates a Bot around an existing router.
func NewWithRouter(c Config, r *bcr.Router, store *dashboard.Store) *Bot {
	r.EmbedColor = bcr.ColourPurple
	r.Logger = bcr.NewZapLogger(common.Log.Named("bcr"))

	bot := &Bot{
		Config: c,
		Router: r,
		Store:  store,
		Start:  time.Now().UTC(),
	}
	bot.Notify = notify.New(bot.Session(), c.ClipsChannel)

	return bot
}

// Session returns the session wrapper used by the notifier and command router.
func (bot *Bot) Session() Session {
	return Session{Router: bot.Router}
}

// State returns the state for the shard the guild is on. Guild ID 0 returns the first shard.
func (bot *Bot) State(guildID discord.GuildID) *state.State {
	s, _ := bot.Router.StateFromGuildID(guildID)
	return s
}

// ForEach runs fn for every shard's state.
func (bot *Bot) ForEach(fn func(s *state.State)) {
	bot.Router.ShardManager.ForEach(func(s shard.Shard) {
		fn(s.(*state.State))
	})
}

// AddHandler adds gateway event handlers to every shard.
func (bot *Bot) AddHandler(fns ...any) {
	for _, fn := range fns {
		bot.Router.AddHandler(fn)
	}
}

// Open connects every shard to the gateway.
func (bot *Bot) Open(ctx context.Context) error {
	err := bot.Router.ShardManager.Open(ctx)
	if err != nil {
		return errors.Wrap(err, "connecting to Discord")
	}
	return nil
}

// Close disconnects from the gateway and stops the notifier's cache.
func (bot *Bot) Close() error {
	if err := bot.Notify.Close(); err != nil {
		common.Log.Errorf("Error closing notifier: %v", err)
	}
	return bot.Router.ShardManager.Close()
}

// SetUser stores the bot's own user, as received in the ready event.
// The first time it's called, mentions of the bot are added as prefixes.
func (bot *Bot) SetUser(u discord.User) {
	bot.userMu.Lock()
	defer bot.userMu.Unlock()

	if bot.user == nil {
		bot.Router.Prefixes = append(bot.Router.Prefixes, "<@"+u.ID.String()+">", "<@!"+u.ID.String()+">")
	}

	bot.user = &u
	bot.Router.Bot = &u
}

// User returns the bot's own user, if the bot is ready.
func (bot *Bot) User() (discord.User, bool) {
	bot.userMu.RLock()
	defer bot.userMu.RUnlock()

	if bot.user == nil {
		return discord.User{}, false
	}
	return *bot.user, true
}

// SetPresence sets the bot's activity on every shard.
func (bot *Bot) SetPresence(ctx context.Context) (err error) {
	bot.ForEach(func(s *state.State) {
		sendErr := s.Gateway().Send(ctx, &gateway.UpdatePresenceCommand{
			Status: discord.OnlineStatus,
			Activities: []discord.Activity{{
				Name: Presence,
				Type: discord.GameActivity,
			}},
		})
		if sendErr != nil && err == nil {
			err = sendErr
		}
	})
	return err
}

// Latency returns the last measured heartbeat latency of the first shard.
// It may be negative if a heartbeat was sent but not yet acknowledged.
func (bot *Bot) Latency() time.Duration {
	g := bot.State(0).Gateway()
	return g.EchoBeat().Sub(g.SentBeat())
}

// Counts returns the number of cached guilds and the number of distinct cached users in them.
func (bot *Bot) Counts() (guilds, users int) {
	seen := common.NewSet[discord.UserID]()

	bot.ForEach(func(s *state.State) {
		gs, err := s.GuildStore.Guilds()
		if err != nil {
			common.Log.Errorf("Error getting guilds: %v", err)
			return
		}
		guilds += len(gs)

		for _, g := range gs {
			members, err := s.MemberStore.Members(g.ID)
			if err != nil {
				continue
			}
			for _, m := range members {
				seen.Add(m.User.ID)
			}
		}
	})

	return guilds, seen.Len()
}

// PushStats refreshes the guild and user counts on the dashboard.
func (bot *Bot) PushStats() {
	guilds, users := bot.Counts()
	status := dashboard.StatusOnline
	start := bot.Start

	bot.Store.UpdateStats(dashboard.StatsUpdate{
		Uptime: &start,
		Guilds: &guilds,
		Users:  &users,
		Status: &status,
	})
}
