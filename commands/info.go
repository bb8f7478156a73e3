package commands

import (
	"github.com/starshine-sys/bcr"
	"github.com/starshine-sys/clipbot/notify"
)

func (bot *Bot) info(ctx *bcr.Context) (err error) {
	guilds, users := bot.Stats.Counts()

	return bot.send(ctx, "", notify.InfoEmbed(guilds, users, bot.prefix(), ctx.DisplayName()))
}
