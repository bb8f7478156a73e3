package events

import (
	"emperror.dev/errors"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/diamondburned/arikawa/v3/gateway"
	"github.com/starshine-sys/clipbot/notify"
)

func (bot *Bot) guildMemberAdd(ev *gateway.GuildMemberAddEvent) {
	welcome(bot.welcomer, ev.User)
}

// welcome sends u a welcome DM, returning true if it was sent.
// Errors are logged, never returned.
func welcome(w Welcomer, u discord.User) bool {
	if u.Bot {
		return false
	}

	err := w.Welcome(u)
	if err == nil {
		return true
	}

	if errors.Is(err, notify.ErrDirectMessagesDisabled) {
		log.Infof("Couldn't send welcome message to %v, DMs are disabled", u.ID)
	} else {
		log.Errorf("Error sending welcome message to %v: %v", u.ID, err)
	}
	return false
}
