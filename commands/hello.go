package commands

import (
	"fmt"

	"github.com/starshine-sys/bcr"
)

func (bot *Bot) hello(ctx *bcr.Context) (err error) {
	return bot.send(ctx, fmt.Sprintf("Hello %v!", ctx.Author.Mention()))
}
