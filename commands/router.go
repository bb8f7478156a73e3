package commands

import (
	"fmt"
	"strings"

	"emperror.dev/errors"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/diamondburned/arikawa/v3/gateway"
	"github.com/starshine-sys/bcr"
	"github.com/starshine-sys/clipbot/common"
	"github.com/starshine-sys/clipbot/dashboard"
	"github.com/starshine-sys/clipbot/metrics"
)

// AddPermissionCommand adds a command that needs perms in the channel it's used in.
// bcr's own permission check is not used so that failures get the same reply as every other error.
func (bot *Bot) AddPermissionCommand(c *bcr.Command, perms discord.Permissions) *bcr.Command {
	bot.permsMu.Lock()
	bot.perms[strings.ToLower(c.Name)] = perms
	bot.permsMu.Unlock()

	return bot.AddCommand(c)
}

// MessageCreate is the message create event handler.
func (bot *Bot) MessageCreate(ev *gateway.MessageCreateEvent) {
	if ev.Author.Bot || !bot.MatchPrefix(ev.Message) {
		return
	}

	ctx, err := bot.NewContext(ev)
	if err != nil {
		if !errors.Is(err, bcr.ErrEmptyMessage) {
			common.Log.Named("commands").Errorf("Error getting context for %v: %v", ev.ID, err)
		}
		return
	}

	bot.Dispatch(ctx)
}

// Dispatch runs the command in ctx.
// Errors are replied to in the context's channel and never returned.
func (bot *Bot) Dispatch(ctx *bcr.Context) {
	cmd := bot.GetCommand(ctx.Command)
	if cmd == nil {
		bot.handleError(ctx, ErrCommandNotFound)
		return
	}

	metrics.Commands.WithLabelValues(cmd.Name).Inc()
	if bot.History != nil {
		bot.History.LogCommand(dashboard.CommandEntry{
			Command: cmd.Name,
			UserID:  ctx.Author.ID.String(),
			Context: logContext(ctx),
		})
	}

	if err := bot.run(ctx, cmd); err != nil {
		bot.handleError(ctx, err)
	}
}

func (bot *Bot) run(ctx *bcr.Context, cmd *bcr.Command) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = errors.Errorf("%v", rec)
		}
	}()

	required := requiredArgs(cmd.Usage)
	if len(ctx.Args) < len(required) {
		return &MissingArgumentError{Param: required[len(ctx.Args)]}
	}

	if err := bot.checkPermissions(ctx, cmd); err != nil {
		return err
	}

	// bcr would answer these itself, bypassing Session
	if len(ctx.Args) > 0 && (strings.EqualFold(ctx.Args[0], "help") || strings.EqualFold(ctx.Args[0], "usage")) {
		return bot.commandHelp(ctx, cmd.Name)
	}

	return bot.Execute(ctx)
}

func (bot *Bot) checkPermissions(ctx *bcr.Context, cmd *bcr.Command) error {
	bot.permsMu.RLock()
	perms := bot.perms[strings.ToLower(cmd.Name)]
	bot.permsMu.RUnlock()

	if perms == 0 {
		return nil
	}

	// permission-gated commands can't be used in DMs
	if ctx.Guild == nil || ctx.Channel == nil || ctx.Member == nil {
		return ErrMissingPermissions
	}

	// the member in message events doesn't include the user
	m := *ctx.Member
	m.User = ctx.Author

	if !discord.CalcOverwrites(*ctx.Guild, *ctx.Channel, m).Has(perms) {
		return ErrMissingPermissions
	}
	return nil
}

// requiredArgs returns the names of the required arguments in a usage string.
// Required arguments are written as <name>, optional ones as [name].
func requiredArgs(usage string) (args []string) {
	for _, f := range strings.Fields(usage) {
		if strings.HasPrefix(f, "<") && strings.HasSuffix(f, ">") {
			args = append(args, strings.TrimSuffix(strings.Trim(f, "<>"), "..."))
		}
	}
	return args
}

func (bot *Bot) handleError(ctx *bcr.Context, err error) {
	log := common.Log.Named("commands")

	kind, reply := bot.classify(err)
	metrics.CommandErrors.WithLabelValues(kind).Inc()

	if kind == kindInternal {
		var code string
		if bot.Reporter != nil {
			code = bot.Reporter.ReportError(ctx.Author.ID, err)
		}
		log.Errorf("Error in command %q by %v (code %v): %v", ctx.Command, ctx.Author.ID, code, err)
	} else {
		log.Debugf("Command %q by %v failed: %v", ctx.Command, ctx.Author.ID, err)
	}

	if sendErr := bot.send(ctx, reply); sendErr != nil {
		log.Errorf("Error sending error reply in %v: %v", ctx.Message.ChannelID, sendErr)
	}
}

func (bot *Bot) send(ctx *bcr.Context, content string, embeds ...discord.Embed) error {
	_, err := bot.Session.SendMessage(ctx.Message.ChannelID, content, embeds...)
	return err
}

func (bot *Bot) prefix() string {
	if len(bot.Prefixes) == 0 {
		return ""
	}
	return bot.Prefixes[0]
}

func (bot *Bot) usage(c *bcr.Command) string {
	s := fmt.Sprintf("`%v%v", bot.prefix(), c.Name)
	if c.Usage != "" {
		s += " " + c.Usage
	}
	return s + "`"
}

func logContext(ctx *bcr.Context) map[string]any {
	m := map[string]any{
		"channel": ctx.Message.ChannelID.String(),
		"args":    ctx.RawArgs,
	}
	if ctx.Message.GuildID.IsValid() {
		m["guild"] = ctx.Message.GuildID.String()
	}
	return m
}
