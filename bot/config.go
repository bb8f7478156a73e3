package bot

import (
	"os"
	"strings"
	"time"

	"emperror.dev/errors"
	"github.com/starshine-sys/clipbot/dashboard"
	"github.com/starshine-sys/clipbot/notify"
	"github.com/starshine-sys/clipbot/twitch"
)

// Config is the bot configuration, read from the environment.
type Config struct {
	Token  string
	Prefix string

	TwitchChannel      string
	TwitchClientID     string
	TwitchClientSecret string

	ClipsChannel string
	PollInterval time.Duration
	HTTPTimeout  time.Duration

	// DashboardAddr is empty if the in-process dashboard is disabled.
	DashboardAddr string
	SentryURL     string
}

const (
	DefaultPrefix      = "!"
	DefaultHTTPTimeout = 10 * time.Second
)

// PollerEnabled returns true if a Twitch channel is configured.
func (c Config) PollerEnabled() bool {
	return c.TwitchChannel != ""
}

// ReadConfig reads the configuration from the environment.
// All missing required variables are reported in a single error.
func ReadConfig() (c Config, err error) {
	c = Config{
		Token:              os.Getenv("DISCORD_TOKEN"),
		Prefix:             envOr("PREFIX", DefaultPrefix),
		TwitchChannel:      strings.TrimSpace(os.Getenv("TWITCH_CHANNEL")),
		TwitchClientID:     os.Getenv("TWITCH_CLIENT_ID"),
		TwitchClientSecret: os.Getenv("TWITCH_CLIENT_SECRET"),
		ClipsChannel:       envOr("CLIPS_CHANNEL", notify.DefaultChannelName),
		SentryURL:          os.Getenv("SENTRY_URL"),
	}

	// an explicitly empty DASHBOARD_ADDR disables the dashboard
	if addr, ok := os.LookupEnv("DASHBOARD_ADDR"); ok {
		c.DashboardAddr = addr
	} else {
		c.DashboardAddr = dashboard.DefaultAddr
	}

	var missing []string
	if c.Token == "" {
		missing = append(missing, "DISCORD_TOKEN")
	}
	if c.PollerEnabled() {
		if c.TwitchClientID == "" {
			missing = append(missing, "TWITCH_CLIENT_ID")
		}
		if c.TwitchClientSecret == "" {
			missing = append(missing, "TWITCH_CLIENT_SECRET")
		}
	}
	if len(missing) > 0 {
		return c, errors.Errorf("missing required environment variables: %v", strings.Join(missing, ", "))
	}

	c.PollInterval, err = envDuration("POLL_INTERVAL", twitch.DefaultInterval)
	if err != nil {
		return c, err
	}
	c.HTTPTimeout, err = envDuration("HTTP_TIMEOUT", DefaultHTTPTimeout)
	if err != nil {
		return c, err
	}

	return c, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, errors.Wrapf(err, "parsing %v", key)
	}
	if d <= 0 {
		return 0, errors.Errorf("%v must be positive, got %v", key, d)
	}
	return d, nil
}
