package main

import (
	"os"

	"github.com/starshine-sys/clipbot/cmd/clipbot/bot"
	"github.com/starshine-sys/clipbot/cmd/clipbot/web"
	"github.com/starshine-sys/clipbot/common"
	"github.com/urfave/cli/v2"
)

var app = &cli.App{
	Name:    "clipbot",
	Usage:   "Discord bot that reposts Twitch clips",
	Version: common.Version(),

	Commands: []*cli.Command{
		bot.Command,
		web.Command,
	},
}

func main() {
	err := app.Run(os.Args)
	if err != nil {
		common.Log.Fatal(err)
	}
}
