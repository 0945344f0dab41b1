// Package feature implements the reconcilable configuration surfaces of
// an NX-OS switch. Each feature contributes the pure stages of a
// reconciliation pass (build proposed, normalize existing, plan commands)
// against the schema it declares; the reconcile driver owns sequencing
// and device I/O.
//
// Features register themselves at init time and are looked up by name.
package feature

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nexcon-network/nexcon/pkg/reconcile"
)

var registry = make(map[string]reconcile.Feature)

// Register makes a feature available by its name. It panics when called
// twice for the same name; registration happens at init time only.
func Register(f reconcile.Feature) {
	if f == nil || f.Name() == "" {
		panic("feature: Register with nil feature or empty name")
	}
	if _, dup := registry[f.Name()]; dup {
		panic("feature: Register called twice for " + f.Name())
	}
	registry[f.Name()] = f
}

// Lookup returns the named feature.
func Lookup(name string) (reconcile.Feature, error) {
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown feature %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return f, nil
}

// Names returns all registered feature names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
