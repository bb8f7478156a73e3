package bot

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"emperror.dev/errors"
	"github.com/getsentry/sentry-go"
	"github.com/starshine-sys/bcr"
	"github.com/starshine-sys/clipbot/bot"
	"github.com/starshine-sys/clipbot/commands"
	"github.com/starshine-sys/clipbot/common"
	"github.com/starshine-sys/clipbot/dashboard"
	"github.com/starshine-sys/clipbot/events"
	"github.com/starshine-sys/clipbot/twitch"
	"github.com/urfave/cli/v2"
)

var Command = &cli.Command{
	Name:   "bot",
	Usage:  "Run the bot",
	Action: run,
}

func run(c *cli.Context) (err error) {
	// set up logger for this section
	log := common.Log.Named("init")

	conf, err := bot.ReadConfig()
	if err != nil {
		return err
	}

	// sentry, if enabled
	if conf.SentryURL != "" {
		err = sentry.Init(sentry.ClientOptions{
			Dsn:     conf.SentryURL,
			Release: common.Version(),
		})
		if err != nil {
			return errors.Wrap(err, "initing Sentry")
		}
		defer sentry.Flush(2 * time.Second)
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()

	store := dashboard.NewStore()
	b, err := bot.New(conf, store)
	if err != nil {
		return err
	}

	// actually load events + commands
	commands.Setup(b)
	events.Init(b)

	if conf.DashboardAddr != "" {
		srv, err := dashboard.NewServer(store)
		if err != nil {
			return errors.Wrap(err, "creating dashboard")
		}

		go func() {
			log.Infof("Dashboard listening on %v", conf.DashboardAddr)
			if err := srv.ListenAndServe(ctx, conf.DashboardAddr); err != nil {
				common.Log.Named("web").Errorf("Dashboard stopped: %v", err)
			}
		}()
	} else {
		log.Info("DASHBOARD_ADDR is empty, not starting the dashboard.")
	}

	if err := b.Open(ctx); err != nil {
		return err
	}
	log.Info("Connected to Discord. Press Ctrl-C or send an interrupt signal to stop.")

	if conf.PollerEnabled() {
		client := twitch.NewClient(conf.TwitchClientID, conf.TwitchClientSecret, twitch.Options{
			Timeout: conf.HTTPTimeout,
		})

		p := twitch.NewPoller(client, conf.TwitchChannel, conf.PollInterval, b.Notify.AnnounceClip)
		go p.Run(ctx)
		log.Infof("Polling clips for %v every %v", conf.TwitchChannel, conf.PollInterval)
	} else {
		log.Info("TWITCH_CHANNEL is empty, not polling for clips.")
	}

	<-ctx.Done()
	log.Infof("Interrupt signal received after %v. Shutting down...",
		bcr.HumanizeDuration(bcr.DurationPrecisionSeconds, time.Since(b.Start)))

	offline := dashboard.StatusOffline
	store.UpdateStats(dashboard.StatsUpdate{Status: &offline})

	if err := b.Close(); err != nil {
		log.Errorf("Error closing gateway: %v", err)
	}
	return nil
}

