package commands

import (
	"fmt"

	"emperror.dev/errors"
)

const (
	ErrCommandNotFound    = errors.Sentinel("command not found")
	ErrMissingPermissions = errors.Sentinel("missing permissions")
)

// MissingArgumentError is returned when a command is invoked without one of its required arguments.
type MissingArgumentError struct {
	Param string
}

func (e *MissingArgumentError) Error() string {
	return fmt.Sprintf("missing required argument: %v", e.Param)
}

// error kinds, used as metric labels
const (
	kindNotFound   = "not_found"
	kindMissingArg = "missing_argument"
	kindPermission = "missing_permissions"
	kindInternal   = "internal"
)

// classify returns the metric label and the user-facing reply for err.
func (bot *Bot) classify(err error) (kind, reply string) {
	var missing *MissingArgumentError

	switch {
	case errors.Is(err, ErrCommandNotFound):
		return kindNotFound, fmt.Sprintf("Command not found. Use %vhelp to see available commands.", bot.prefix())
	case errors.As(err, &missing):
		return kindMissingArg, "Missing required argument: " + missing.Param
	case errors.Is(err, ErrMissingPermissions):
		return kindPermission, "You don't have permission to use this command."
	default:
		return kindInternal, "An error occurred: " + err.Error()
	}
}
