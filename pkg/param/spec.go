// Package param defines the parameter schemas features expose and the
// validation user-supplied values pass through before any device contact.
// A Spec is declarative: fields with kinds and choices, plus cross-field
// constraints, all checked in one Validate call that accumulates every
// failure instead of stopping at the first.
package param

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nexcon-network/nexcon/pkg/util"
)

// Kind is the primitive type a parameter carries.
type Kind int

const (
	String Kind = iota
	Bool
	Int
)

func (k Kind) String() string {
	switch k {
	case String:
		return "string"
	case Bool:
		return "bool"
	case Int:
		return "int"
	}
	return "unknown"
}

// Field declares one parameter of a feature.
type Field struct {
	Name     string
	Kind     Kind
	Required bool
	// Choices restricts a String field to a fixed vocabulary.
	Choices []string
	// Help is the one-line description surfaced as CLI flag help.
	Help string
}

// Spec is a feature's full parameter schema.
type Spec struct {
	Feature string
	Fields  []Field

	// MutuallyExclusive lists groups in which at most one field may be
	// supplied.
	MutuallyExclusive [][]string
	// RequireOneOf lists groups in which at least one field must be
	// supplied.
	RequireOneOf [][]string
	// RequireTogether lists groups whose fields must be supplied all
	// together or not at all.
	RequireTogether [][]string
}

// Field returns the declared field with the given name.
func (s *Spec) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Validate checks the supplied values against the schema: known names,
// matching kinds, choice membership, required fields, and every
// cross-field constraint.
func (s *Spec) Validate(v Values) error {
	b := &util.ValidationBuilder{}

	for name, value := range v {
		f, ok := s.Field(name)
		if !ok {
			b.AddErrorf("unknown parameter %q", name)
			continue
		}
		switch f.Kind {
		case String:
			sv, ok := value.(string)
			if !ok {
				b.AddErrorf("parameter %q must be a string", name)
				continue
			}
			if len(f.Choices) > 0 && !containsString(f.Choices, sv) {
				b.AddErrorf("parameter %q must be one of [%s], got %q",
					name, strings.Join(f.Choices, ", "), sv)
			}
		case Bool:
			if _, ok := value.(bool); !ok {
				b.AddErrorf("parameter %q must be a bool", name)
			}
		case Int:
			if _, ok := value.(int); !ok {
				b.AddErrorf("parameter %q must be an int", name)
			}
		}
	}

	for _, f := range s.Fields {
		if f.Required && !v.Has(f.Name) {
			b.AddErrorf("parameter %q is required", f.Name)
		}
	}

	for _, group := range s.MutuallyExclusive {
		if supplied := v.supplied(group); len(supplied) > 1 {
			b.AddErrorf("parameters [%s] are mutually exclusive", strings.Join(supplied, ", "))
		}
	}
	for _, group := range s.RequireOneOf {
		if supplied := v.supplied(group); len(supplied) == 0 {
			b.AddErrorf("one of [%s] is required", strings.Join(group, ", "))
		}
	}
	for _, group := range s.RequireTogether {
		supplied := v.supplied(group)
		if len(supplied) > 0 && len(supplied) < len(group) {
			b.AddErrorf("parameters [%s] must be supplied together", strings.Join(group, ", "))
		}
	}

	return b.Build()
}

// Coerce converts a loosely typed parameter map (YAML or JSON decoding)
// into Values matching the schema's kinds. String fields accept integers
// and stringify them, matching how operators write numeric values in task
// files. Unknown names are rejected.
func (s *Spec) Coerce(raw map[string]any) (Values, error) {
	b := &util.ValidationBuilder{}
	v := Values{}

	for name, value := range raw {
		f, ok := s.Field(name)
		if !ok {
			b.AddErrorf("unknown parameter %q", name)
			continue
		}
		switch f.Kind {
		case String:
			switch t := value.(type) {
			case string:
				v[name] = t
			case int:
				v[name] = fmt.Sprintf("%d", t)
			default:
				b.AddErrorf("parameter %q must be a string, got %T", name, value)
			}
		case Bool:
			t, ok := value.(bool)
			if !ok {
				b.AddErrorf("parameter %q must be a bool, got %T", name, value)
				continue
			}
			v[name] = t
		case Int:
			t, ok := value.(int)
			if !ok {
				b.AddErrorf("parameter %q must be an int, got %T", name, value)
				continue
			}
			v[name] = t
		}
	}

	if err := b.Build(); err != nil {
		return nil, err
	}
	return v, nil
}

// CoerceStrings converts parameters supplied as plain strings (shell
// key=value input) into Values matching the schema's kinds. Unknown
// names are rejected.
func (s *Spec) CoerceStrings(raw map[string]string) (Values, error) {
	b := &util.ValidationBuilder{}
	v := Values{}

	for name, value := range raw {
		f, ok := s.Field(name)
		if !ok {
			b.AddErrorf("unknown parameter %q", name)
			continue
		}
		switch f.Kind {
		case String:
			v[name] = value
		case Bool:
			t, err := strconv.ParseBool(value)
			if err != nil {
				b.AddErrorf("parameter %q must be true or false, got %q", name, value)
				continue
			}
			v[name] = t
		case Int:
			t, err := strconv.Atoi(value)
			if err != nil {
				b.AddErrorf("parameter %q must be a number, got %q", name, value)
				continue
			}
			v[name] = t
		}
	}

	if err := b.Build(); err != nil {
		return nil, err
	}
	return v, nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
