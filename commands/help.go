package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/starshine-sys/bcr"
)

func (bot *Bot) help(ctx *bcr.Context) (err error) {
	if len(ctx.Args) > 0 {
		return bot.commandHelp(ctx, ctx.Args[0])
	}

	cmds := bot.Commands()
	sort.Sort(bcr.Commands(cmds))

	var b strings.Builder
	for _, c := range cmds {
		fmt.Fprintf(&b, "%v: %v\n", bot.usage(c), c.Summary)
	}

	return bot.send(ctx, "", discord.Embed{
		Title:       "Commands",
		Description: b.String(),
		Color:       bcr.ColourPurple,
		Footer: &discord.EmbedFooter{
			Text: fmt.Sprintf("Use %vhelp <command> for help with a single command.", bot.prefix()),
		},
	})
}

func (bot *Bot) commandHelp(ctx *bcr.Context, name string) (err error) {
	c := bot.GetCommand(name)
	if c == nil {
		return bot.send(ctx, fmt.Sprintf("No command called %q found.", name))
	}

	e := discord.Embed{
		Title:       bot.prefix() + c.Name,
		Description: c.Summary,
		Color:       bcr.ColourPurple,
		Fields: []discord.EmbedField{{
			Name:  "Usage",
			Value: bot.usage(c),
		}},
	}

	if args := requiredArgs(c.Usage); len(args) > 0 {
		e.Fields = append(e.Fields, discord.EmbedField{
			Name:  "Required arguments",
			Value: strings.Join(args, ", "),
		})
	}

	return bot.send(ctx, "", e)
}
