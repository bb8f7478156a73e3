package events

import "github.com/diamondburned/arikawa/v3/gateway"

func (bot *Bot) guildCreate(ev *gateway.GuildCreateEvent) {
	log.Debugf("Guild %v (%v) available", ev.Name, ev.ID)
	bot.PushStats()
}

func (bot *Bot) guildDelete(ev *gateway.GuildDeleteEvent) {
	if ev.Unavailable {
		log.Debugf("Guild %v became unavailable", ev.ID)
	} else {
		log.Infof("Removed from guild %v", ev.ID)
	}
	bot.PushStats()
}
