package reconcile

import (
	"context"
	"time"

	"github.com/nexcon-network/nexcon/pkg/device"
	"github.com/nexcon-network/nexcon/pkg/param"
	"github.com/nexcon-network/nexcon/pkg/util"
)

// DefaultReadbackDelay is how long an applying Driver waits after a
// successful submission before re-reading device state. Some NX-OS show
// commands lag the configuration commit slightly.
const DefaultReadbackDelay = 500 * time.Millisecond

// Driver runs reconciliation passes against one device. In check mode it
// reports what a pass would change without submitting anything.
type Driver struct {
	dev      device.Client
	check    bool
	readback time.Duration
}

// DriverOption configures a Driver.
type DriverOption func(*Driver)

// CheckMode makes the driver report instead of apply.
func CheckMode(on bool) DriverOption {
	return func(d *Driver) { d.check = on }
}

// ReadbackDelay overrides the wait between submission and the final
// state re-read.
func ReadbackDelay(delay time.Duration) DriverOption {
	return func(d *Driver) { d.readback = delay }
}

// NewDriver creates a Driver for the given device.
func NewDriver(dev device.Client, opts ...DriverOption) *Driver {
	d := &Driver{
		dev:      dev,
		readback: DefaultReadbackDelay,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Request identifies one reconciliation pass: a feature entity, the
// desired intent, and the user's parameter values.
type Request struct {
	Values param.Values
	Intent Intent
}

// Run executes one reconciliation pass for a feature and returns its
// report. The stages run in a fixed order so that failures surface as
// early and as cheaply as possible: parameter validation before any device
// call, feature and interface preconditions on read-only calls, then the
// read-compare-plan-apply sequence. Any error aborts the pass; nothing is
// retried or rolled back.
func (d *Driver) Run(ctx context.Context, f Feature, req Request) (*Result, error) {
	key := f.Key(req.Values)
	log := util.WithDevice(d.dev.Name()).WithField("feature", f.Name())
	if key != "" {
		log = log.WithField("key", key)
	}

	proposed, err := f.BuildProposed(req.Values, req.Intent)
	if err != nil {
		return nil, err
	}
	log.Debugf("proposed state: %d fields", len(proposed))

	for _, name := range f.Requires() {
		enabled, err := d.dev.FeatureEnabled(ctx, name)
		if err != nil {
			return nil, err
		}
		if !enabled {
			return nil, util.NewPreconditionError(f.Name(), d.dev.Name(),
				"feature "+name+" must be enabled", "run: feature "+name)
		}
	}
	if pf, ok := f.(Preflighter); ok {
		if err := pf.Preflight(ctx, d.dev, key); err != nil {
			return nil, err
		}
	}

	existing, flags, err := f.ReadExisting(ctx, d.dev, key)
	if err != nil {
		return nil, err
	}
	log.Debugf("existing state: %d fields, flags %v", len(existing), flags)

	delta := Delta(proposed, existing)
	plan, err := f.Plan(PlanRequest{
		Intent:   req.Intent,
		Key:      key,
		Delta:    delta,
		Proposed: proposed,
		Existing: existing,
		Flags:    flags,
	})
	if err != nil {
		return nil, err
	}

	result := &Result{
		Device:    d.dev.Name(),
		Feature:   f.Name(),
		Key:       key,
		Intent:    req.Intent,
		Proposed:  proposed,
		Existing:  existing,
		Final:     existing.Clone(),
		Commands:  plan.Commands(),
		CheckMode: d.check,
	}

	if plan.IsEmpty() {
		log.Debug("no changes required")
		return result, nil
	}
	result.Changed = true

	if d.check {
		log.Infof("check mode: %d commands not applied", len(result.Commands))
		return result, nil
	}

	log.Infof("applying %d commands", len(result.Commands))
	if err := d.dev.Submit(ctx, plan.Payload()); err != nil {
		return nil, err
	}

	if d.readback > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(d.readback):
		}
	}

	final, _, err := f.ReadExisting(ctx, d.dev, key)
	if err != nil {
		return nil, err
	}
	result.Final = final
	return result, nil
}
