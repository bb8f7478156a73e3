package bot

import (
	"time"

	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
)

// ReportError sends err to Sentry, if it's configured, and returns an error code to show the user.
// If Sentry is not configured, the code is a random UUID that only appears in the logs.
func (bot *Bot) ReportError(userID discord.UserID, err error) string {
	if bot.Config.SentryURL == "" {
		return uuid.New().String()
	}

	hub := sentry.CurrentHub().Clone()
	hub.ConfigureScope(func(scope *sentry.Scope) {
		if userID.IsValid() {
			scope.SetUser(sentry.User{ID: userID.String()})
		}
	})

	hub.AddBreadcrumb(&sentry.Breadcrumb{
		Data: map[string]any{
			"user": userID,
		},
		Level:     sentry.LevelError,
		Timestamp: time.Now().UTC(),
	}, nil)

	id := hub.CaptureException(err)
	if id == nil {
		return uuid.New().String()
	}
	return string(*id)
}
