// Package audit provides the persistent audit trail of reconciliation
// runs: who reconciled which feature on which device, the commands that
// were applied, and how it ended.
package audit

import (
	"time"

	"github.com/google/uuid"

	"github.com/nexcon-network/nexcon/pkg/reconcile"
)

// Event records one reconciliation run.
type Event struct {
	ID        string        `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	User      string        `json:"user"`
	Device    string        `json:"device"`
	Feature   string        `json:"feature"`
	Key       string        `json:"key,omitempty"`
	Intent    string        `json:"state,omitempty"`
	Commands  []string      `json:"commands,omitempty"`
	Changed   bool          `json:"changed"`
	CheckMode bool          `json:"check_mode"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration"`
}

// Filter defines criteria for querying audit events
type Filter struct {
	Device      string
	User        string
	Feature     string
	StartTime   time.Time
	EndTime     time.Time
	SuccessOnly bool
	FailureOnly bool
	ChangedOnly bool
	Limit       int
	Offset      int
}

// NewEvent creates a new audit event
func NewEvent(user, device, feature string) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		User:      user,
		Device:    device,
		Feature:   feature,
	}
}

// WithIntent sets the requested intent
func (e *Event) WithIntent(intent reconcile.Intent) *Event {
	e.Intent = string(intent)
	return e
}

// WithKey sets the entity key
func (e *Event) WithKey(key string) *Event {
	e.Key = key
	return e
}

// WithResult copies the run's outcome from the reconciliation report
func (e *Event) WithResult(r *reconcile.Result) *Event {
	e.Key = r.Key
	e.Intent = string(r.Intent)
	e.Commands = r.Commands
	e.Changed = r.Changed
	e.CheckMode = r.CheckMode
	return e
}

// WithCommands sets the submitted commands for runs without a report
func (e *Event) WithCommands(commands []string) *Event {
	e.Commands = commands
	return e
}

// WithChanged marks whether the run changed the device
func (e *Event) WithChanged(changed bool) *Event {
	e.Changed = changed
	return e
}

// WithCheckMode marks the event as a check-mode run
func (e *Event) WithCheckMode(check bool) *Event {
	e.CheckMode = check
	return e
}

// WithSuccess marks the event as successful
func (e *Event) WithSuccess() *Event {
	e.Success = true
	return e
}

// WithError marks the event as failed
func (e *Event) WithError(err error) *Event {
	e.Success = false
	if err != nil {
		e.Error = err.Error()
	}
	return e
}

// WithDuration sets the run duration
func (e *Event) WithDuration(d time.Duration) *Event {
	e.Duration = d
	return e
}
