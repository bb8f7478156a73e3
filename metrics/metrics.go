// Package metrics holds the Prometheus collectors shared by the bot, the clip poller and the dashboard.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Commands counts command invocations by command name.
	Commands = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clipbot_commands_total",
		Help: "Number of commands invoked",
	}, []string{"command"})

	// CommandErrors counts command failures by classification.
	CommandErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clipbot_command_errors_total",
		Help: "Number of failed command invocations",
	}, []string{"kind"})

	ClipPolls = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clipbot_clip_polls_total",
		Help: "Number of clip poll iterations",
	})

	ClipsAnnounced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clipbot_clips_announced_total",
		Help: "Number of new clips announced",
	})

	DashboardClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "clipbot_dashboard_clients",
		Help: "Currently connected dashboard clients",
	})
)
