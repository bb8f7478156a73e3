package commands

import (
	"sync"
	"time"

	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/starshine-sys/bcr"
	"github.com/starshine-sys/clipbot/bot"
	"github.com/starshine-sys/clipbot/dashboard"
)

// Session is the subset of the Discord API commands reply through.
type Session interface {
	SendMessage(channelID discord.ChannelID, content string, embeds ...discord.Embed) (*discord.Message, error)
}

// StatsSource provides the numbers shown by the ping and info commands.
type StatsSource interface {
	Latency() time.Duration
	Counts() (guilds, users int)
}

// CommandLogger records command invocations.
type CommandLogger interface {
	LogCommand(dashboard.CommandEntry)
}

// ErrorReporter reports unexpected errors and returns an error code for them.
type ErrorReporter interface {
	ReportError(userID discord.UserID, err error) string
}

type Bot struct {
	*bcr.Router

	Session Session
	Stats   StatsSource

	// History and Reporter are optional.
	History  CommandLogger
	Reporter ErrorReporter

	// required channel permissions per command, checked before bcr runs the command
	perms   map[string]discord.Permissions
	permsMu sync.RWMutex
}

// Init adds all commands to r.
func Init(r *bcr.Router, s Session, stats StatsSource) *Bot {
	b := &Bot{
		Router:  r,
		Session: s,
		Stats:   stats,
		perms:   map[string]discord.Permissions{},
	}

	b.AddCommand(&bcr.Command{
		Name:    "hello",
		Summary: "Says hello.",
		Command: b.hello,
	})

	b.AddCommand(&bcr.Command{
		Name:    "ping",
		Summary: "Shows the bot's latency.",
		Command: b.ping,
	})

	b.AddCommand(&bcr.Command{
		Name:    "info",
		Summary: "Shows information about the bot.",
		Command: b.info,
	})

	b.AddCommand(&bcr.Command{
		Name:    "help",
		Summary: "Shows this help, or help for a single command.",
		Usage:   "[command]",
		Command: b.help,
	})

	return b
}

// Setup adds all commands to b's router and registers the message handler.
func Setup(b *bot.Bot) *Bot {
	cb := Init(b.Router, b.Session(), b)
	cb.History = b.Store
	cb.Reporter = b

	b.AddHandler(cb.MessageCreate)
	return cb
}
