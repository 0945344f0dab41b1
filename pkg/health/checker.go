// Package health runs read-only health probes against a switch over the
// same client surface the reconciliation engine uses. Checks never
// configure anything.
package health

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/nexcon-network/nexcon/pkg/device"
)

// Status classifies a check outcome.
type Status string

const (
	StatusOK       Status = "ok"
	StatusWarning  Status = "warning"
	StatusCritical Status = "critical"
	StatusUnknown  Status = "unknown"
)

// severity orders statuses for aggregation. The report's overall status
// is the worst individual result.
var severity = map[Status]int{
	StatusOK:       0,
	StatusUnknown:  1,
	StatusWarning:  2,
	StatusCritical: 3,
}

// Result is the outcome of one check.
type Result struct {
	Check     string        `json:"check"`
	Status    Status        `json:"status"`
	Message   string        `json:"message"`
	Details   any           `json:"details,omitempty"`
	Duration  time.Duration `json:"duration"`
	Timestamp time.Time     `json:"timestamp"`
}

// Report is the outcome of a full check run against one device.
type Report struct {
	Device    string        `json:"device"`
	Timestamp time.Time     `json:"timestamp"`
	Overall   Status        `json:"overall"`
	Results   []Result      `json:"results"`
	Duration  time.Duration `json:"duration"`
}

// Check is a single read-only probe.
type Check interface {
	Name() string
	Run(ctx context.Context, dev device.Client) Result
}

// Checker runs a set of checks in order and aggregates their results.
type Checker struct {
	checks []Check
}

// NewChecker creates a Checker with the default check set.
func NewChecker() *Checker {
	return &Checker{
		checks: []Check{
			&InterfaceCheck{},
			&EnvironmentCheck{},
			&ResourceCheck{},
			&PIMNeighborCheck{},
		},
	}
}

// AddCheck registers an additional check.
func (c *Checker) AddCheck(check Check) {
	c.checks = append(c.checks, check)
}

// Only restricts the checker to the named checks, preserving run order.
// Unknown names are an error.
func (c *Checker) Only(names []string) error {
	want := make(map[string]bool, len(names))
	for _, name := range names {
		want[name] = true
	}

	var kept []Check
	for _, check := range c.checks {
		if want[check.Name()] {
			kept = append(kept, check)
			delete(want, check.Name())
		}
	}
	if len(want) > 0 {
		unknown := make([]string, 0, len(want))
		for name := range want {
			unknown = append(unknown, name)
		}
		sort.Strings(unknown)
		return fmt.Errorf("unknown check(s): %s (available: %s)",
			strings.Join(unknown, ", "), strings.Join(c.ListChecks(), ", "))
	}
	c.checks = kept
	return nil
}

// ListChecks returns the registered check names in run order.
func (c *Checker) ListChecks() []string {
	names := make([]string, len(c.checks))
	for i, check := range c.checks {
		names[i] = check.Name()
	}
	return names
}

// RunAll executes every registered check against the device and returns
// the aggregated report.
func (c *Checker) RunAll(ctx context.Context, dev device.Client) *Report {
	start := time.Now()
	report := &Report{
		Device:    dev.Name(),
		Timestamp: start,
		Overall:   StatusOK,
	}

	for _, check := range c.checks {
		checkStart := time.Now()
		res := check.Run(ctx, dev)
		res.Check = check.Name()
		res.Duration = time.Since(checkStart)
		res.Timestamp = checkStart

		if severity[res.Status] > severity[report.Overall] {
			report.Overall = res.Status
		}
		report.Results = append(report.Results, res)
	}

	report.Duration = time.Since(start)
	return report
}
