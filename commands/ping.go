package commands

import (
	"fmt"
	"time"

	"github.com/starshine-sys/bcr"
)

func (bot *Bot) ping(ctx *bcr.Context) (err error) {
	return bot.send(ctx, fmt.Sprintf("Pong! Latency: %dms", LatencyMillis(bot.Stats.Latency())))
}

// LatencyMillis rounds d to whole milliseconds.
// The heartbeat latency is negative until the first heartbeat is acknowledged, so it's clamped to 0.
func LatencyMillis(d time.Duration) int64 {
	if d < 0 {
		return 0
	}
	return d.Round(time.Millisecond).Milliseconds()
}
