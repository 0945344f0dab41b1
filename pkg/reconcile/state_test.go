package reconcile

import (
	"strings"
	"testing"
)

func TestParseIntent(t *testing.T) {
	tests := []struct {
		input   string
		want    Intent
		wantErr bool
	}{
		{"present", IntentPresent, false},
		{"absent", IntentAbsent, false},
		{"default", IntentDefault, false},
		{"", IntentPresent, false},
		{"deleted", "", true},
		{"Present", "", true},
	}

	for _, tt := range tests {
		got, err := ParseIntent(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseIntent(%q) should fail", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseIntent(%q) error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseIntent(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestFieldSet_Validate(t *testing.T) {
	fs := FieldSet{
		"group":  KindString,
		"sparse": KindBool,
		"count":  KindInt,
	}

	t.Run("valid", func(t *testing.T) {
		st := State{"group": "network-operator", "sparse": true, "count": 2}
		if err := fs.Validate(st); err != nil {
			t.Errorf("Validate() error: %v", err)
		}
	})

	t.Run("empty state is valid", func(t *testing.T) {
		if err := fs.Validate(State{}); err != nil {
			t.Errorf("Validate(empty) error: %v", err)
		}
	})

	t.Run("unknown field", func(t *testing.T) {
		err := fs.Validate(State{"acl": "x"})
		if err == nil {
			t.Fatal("unknown field accepted")
		}
		if !strings.Contains(err.Error(), "acl") {
			t.Errorf("error should name the field: %v", err)
		}
	})

	t.Run("kind mismatch", func(t *testing.T) {
		if err := fs.Validate(State{"sparse": "true"}); err == nil {
			t.Error("string for bool field accepted")
		}
		if err := fs.Validate(State{"group": 5}); err == nil {
			t.Error("int for string field accepted")
		}
	})

	t.Run("unsupported type", func(t *testing.T) {
		if err := fs.Validate(State{"group": []string{"a"}}); err == nil {
			t.Error("slice value accepted")
		}
	})
}

func TestState_Clone(t *testing.T) {
	orig := State{"group": "network-admin", "sparse": true}
	clone := orig.Clone()

	clone["group"] = "network-operator"
	if orig["group"] != "network-admin" {
		t.Error("Clone() should be independent of the original")
	}

	var nilState State
	if got := nilState.Clone(); got == nil || len(got) != 0 {
		t.Errorf("Clone(nil) = %v, want empty map", got)
	}
}

func TestState_Getters(t *testing.T) {
	st := State{"group": "network-admin", "sparse": true, "count": 3}

	if !st.Has("group") || st.Has("missing") {
		t.Error("Has() presence check wrong")
	}
	if got := st.String("group"); got != "network-admin" {
		t.Errorf("String() = %q", got)
	}
	if got := st.String("sparse"); got != "" {
		t.Errorf("String() on bool field = %q, want empty", got)
	}
	if !st.Bool("sparse") {
		t.Error("Bool() = false, want true")
	}
	if got := st.Int("count"); got != 3 {
		t.Errorf("Int() = %d, want 3", got)
	}
}
