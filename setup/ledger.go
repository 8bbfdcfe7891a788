package setup

import "fmt"

// Status is the outcome of an Action.
type Status string

const (
	// StatusPending is the zero state of an Action that has not been decided yet.
	// It never appears in a Ledger.
	StatusPending Status = "pending"

	// StatusPlanned means the resource would be created. Dry runs only.
	StatusPlanned Status = "planned"

	// StatusCompleted means the resource was created.
	StatusCompleted Status = "completed"

	// StatusSkipped means the resource already existed or could not be attempted.
	StatusSkipped Status = "skipped"

	// StatusFailed means the resource could not be created.
	StatusFailed Status = "failed"
)

// Action records one planned or attempted create operation.
type Action struct {
	Kind Kind   `json:"kind"`
	Name string `json:"name"`

	// Parent is the name of the category a channel belongs to.
	Parent string `json:"parent,omitempty"`

	Status Status `json:"status"`

	// ResourceID is only set on StatusCompleted.
	ResourceID string `json:"resource_id,omitempty"`

	// Reason is only set on StatusSkipped.
	Reason string `json:"reason,omitempty"`

	// Error is only set on StatusFailed.
	Error string `json:"error,omitempty"`
}

// Ledger is an append-only, ordered record of Actions.
type Ledger struct {
	actions []Action
}

// NewLedger creates an empty Ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// Append records an Action as given.
// ErrUndecidedAction is returned, and nothing is recorded, when the Action has no terminal status.
func (l *Ledger) Append(action Action) error {
	switch action.Status {
	case StatusPlanned, StatusCompleted, StatusSkipped, StatusFailed:
		l.actions = append(l.actions, action)
		return nil

	default:
		return fmt.Errorf("%s %q with status %q: %w", action.Kind, action.Name, action.Status, ErrUndecidedAction)
	}
}

// Actions returns a copy of the recorded Actions in append order.
func (l *Ledger) Actions() []Action {
	actions := make([]Action, len(l.actions))
	copy(actions, l.actions)
	return actions
}

// Len returns the number of recorded Actions.
func (l *Ledger) Len() int {
	return len(l.actions)
}
