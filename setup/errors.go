package setup

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrUnauthorized indicates that the remote platform rejected the bot's credentials.
// A Gateway wraps this error so that Engine.Reconcile aborts the run instead of
// recording a failed action for every remaining resource.
var ErrUnauthorized = errors.New("remote platform rejected credentials")

// ErrUndecidedAction indicates that an Action without a terminal status was given to a Ledger.
var ErrUndecidedAction = errors.New("action has no terminal status")

// ErrConfigNotFound indicates that the requested configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration not found")

// ValidationError lists every problem found in a Configuration.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s", strings.Join(e.Problems, "; "))
}

// IsFatal reports whether the given error must abort a reconciliation run.
func IsFatal(err error) bool {
	return errors.Is(err, ErrUnauthorized) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
