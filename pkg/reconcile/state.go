// Package reconcile implements the idempotent configuration pass shared by
// every device feature: build the proposed state from user parameters, read
// and normalize the device's existing state, compute the delta between the
// two, translate the delta into an ordered command plan, and apply it.
//
// States are flat field-to-value mappings over a closed, feature-declared
// field set. Values are primitives (string, bool, int) already normalized to
// the device's own representation, so two mappings can be compared pairwise
// without further conversion.
package reconcile

import (
	"fmt"
	"sort"

	"github.com/nexcon-network/nexcon/pkg/util"
)

// Intent is the desired disposition of a feature entity.
type Intent string

const (
	// IntentPresent converges the entity toward the proposed values.
	IntentPresent Intent = "present"
	// IntentAbsent removes the entity's configuration entirely.
	IntentAbsent Intent = "absent"
	// IntentDefault resets the entity's fields to device defaults without
	// removing the entity itself.
	IntentDefault Intent = "default"
)

// ParseIntent converts a user-supplied state word into an Intent.
func ParseIntent(s string) (Intent, error) {
	switch Intent(s) {
	case IntentPresent, IntentAbsent, IntentDefault:
		return Intent(s), nil
	case "":
		return IntentPresent, nil
	}
	return "", util.NewValidationError(fmt.Sprintf("state must be present, absent, or default, got %q", s))
}

// Kind describes the primitive type a canonical field carries.
type Kind int

const (
	KindString Kind = iota
	KindBool
	KindInt
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	}
	return "unknown"
}

// FieldSet is the closed set of canonical fields one feature reconciles,
// with the kind each field must carry. Normalizer and builder for a feature
// share a single FieldSet so both sides of the comparison speak the
// same schema.
type FieldSet map[string]Kind

// Validate checks that every field in st belongs to the set and carries a
// value of the declared kind.
func (fs FieldSet) Validate(st State) error {
	v := &util.ValidationBuilder{}
	for _, name := range sortedKeys(st) {
		kind, ok := fs[name]
		if !ok {
			v.AddErrorf("unknown field %q", name)
			continue
		}
		switch st[name].(type) {
		case string:
			v.Add(kind == KindString, fmt.Sprintf("field %q must be %s, got string", name, kind))
		case bool:
			v.Add(kind == KindBool, fmt.Sprintf("field %q must be %s, got bool", name, kind))
		case int:
			v.Add(kind == KindInt, fmt.Sprintf("field %q must be %s, got int", name, kind))
		default:
			v.AddErrorf("field %q carries unsupported type %T", name, st[name])
		}
	}
	return v.Build()
}

// State is a canonical field-to-value mapping for one feature entity.
// An empty (or nil) State means the entity is not configured.
type State map[string]any

// Flags are feature-specific derived booleans that travel alongside a
// normalized State without taking part in delta comparison. Planners use
// them to select command sequences that depend on how the device arrived
// at its current configuration.
type Flags map[string]bool

// Clone returns an independent copy of the state. Values are primitives,
// so a shallow copy suffices.
func (s State) Clone() State {
	if s == nil {
		return State{}
	}
	out := make(State, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Has reports whether the field is present in the mapping.
func (s State) Has(field string) bool {
	_, ok := s[field]
	return ok
}

// String returns the field's string value, or "" when the field is absent
// or not a string.
func (s State) String(field string) string {
	v, _ := s[field].(string)
	return v
}

// Bool returns the field's bool value, or false when the field is absent
// or not a bool.
func (s State) Bool(field string) bool {
	v, _ := s[field].(bool)
	return v
}

// Int returns the field's int value, or 0 when the field is absent or not
// an int.
func (s State) Int(field string) int {
	v, _ := s[field].(int)
	return v
}

func sortedKeys(s State) []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
