package web

import (
	"os"
	"os/signal"
	"syscall"

	"emperror.dev/errors"
	"github.com/starshine-sys/clipbot/common"
	"github.com/starshine-sys/clipbot/dashboard"
	"github.com/urfave/cli/v2"
)

var Command = &cli.Command{
	Name:   "web",
	Usage:  "Run the dashboard without the bot",
	Action: run,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "addr",
			Usage:   "Address to listen on",
			Value:   dashboard.DefaultAddr,
			EnvVars: []string{"DASHBOARD_ADDR"},
		},
	},
}

func run(c *cli.Context) error {
	log := common.Log.Named("web")

	addr := c.String("addr")
	if addr == "" {
		return errors.New("no dashboard address given")
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()

	srv, err := dashboard.NewServer(dashboard.NewStore())
	if err != nil {
		return errors.Wrap(err, "creating dashboard")
	}

	log.Infof("Dashboard listening on %v", addr)
	return srv.ListenAndServe(ctx, addr)
}
