package events

import (
	"context"
	"time"

	"github.com/diamondburned/arikawa/v3/gateway"
)

func (bot *Bot) ready(ev *gateway.ReadyEvent) {
	bot.SetUser(ev.User)
	log.Infof("Logged in as %v#%v (%v) in %v guild(s)", ev.User.Username, ev.User.Discriminator, ev.User.ID, len(ev.Guilds))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := bot.SetPresence(ctx); err != nil {
		log.Errorf("Error setting presence: %v", err)
	}

	bot.PushStats()
}
