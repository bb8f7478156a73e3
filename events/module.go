package events

import (
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/starshine-sys/clipbot/bot"
	"github.com/starshine-sys/clipbot/common"
)

var log = common.Log.Named("events")

// Welcomer sends welcome messages to new members.
type Welcomer interface {
	Welcome(discord.User) error
}

type Bot struct {
	*bot.Bot

	welcomer Welcomer
}

// Init adds all gateway event handlers to b.
func Init(b *bot.Bot) {
	eb := &Bot{
		Bot:      b,
		welcomer: b.Notify,
	}

	b.AddHandler(eb.ready)
	b.AddHandler(eb.guildCreate)
	b.AddHandler(eb.guildDelete)
	b.AddHandler(eb.guildMemberAdd)
}
