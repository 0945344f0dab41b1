package reconcile

import (
	"context"

	"github.com/nexcon-network/nexcon/pkg/device"
	"github.com/nexcon-network/nexcon/pkg/param"
)

// Feature is one reconcilable configuration surface of a switch. A Feature
// contributes the three pure stages of the pass (build, normalize, plan);
// the Driver owns sequencing, device I/O, and reporting.
type Feature interface {
	// Name is the feature's registry and CLI name, e.g. "pim-interface".
	Name() string

	// Requires lists device features ("pim") that must be enabled before
	// this feature can be planned. Empty when none.
	Requires() []string

	// Params returns the parameter schema user input is validated against.
	Params() *param.Spec

	// Key returns the entity key for a validated parameter set: the
	// community name, the interface name, the RP address. Features whose
	// state is device-global return "".
	Key(values param.Values) string

	// BuildProposed validates the parameter set against the intent and maps
	// it to the canonical proposed state. It performs no device I/O; every
	// error it returns is a validation error.
	BuildProposed(values param.Values, intent Intent) (State, error)

	// ReadExisting reads the device state for key and normalizes it into
	// the canonical mapping plus side-channel flags. An unconfigured entity
	// yields an empty State and no error.
	ReadExisting(ctx context.Context, dev device.Client, key string) (State, Flags, error)

	// Plan translates the computed delta and intent into an ordered command
	// plan. An empty plan means the device already matches the request.
	Plan(req PlanRequest) (*Plan, error)
}

// Preflighter is implemented by features with device preconditions beyond
// enabled-feature checks. Preflight runs after Requires and before
// ReadExisting, using read-only calls.
type Preflighter interface {
	Preflight(ctx context.Context, dev device.Client, key string) error
}

// PlanRequest carries everything a feature planner may consult. Delta
// drives reconfiguration commands; Existing drives removal and reset
// commands; Proposed supplies companion values for fields whose command
// spans several parameters; Flags select sequences that depend on how the
// device arrived at its current state.
type PlanRequest struct {
	Intent   Intent
	Key      string
	Delta    State
	Proposed State
	Existing State
	Flags    Flags
}
