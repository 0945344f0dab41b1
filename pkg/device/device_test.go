package device

import (
	"context"
	"errors"
	"testing"

	"github.com/tidwall/gjson"

	"github.com/nexcon-network/nexcon/pkg/util"
)

// fakeConn serves canned show output keyed by command.
type fakeConn struct {
	json      map[string]string
	text      map[string]string
	errs      map[string]error
	submitted []string
	closed    bool
}

func (f *fakeConn) ShowJSON(_ context.Context, command string) (gjson.Result, error) {
	if err, ok := f.errs[command]; ok {
		return gjson.Result{}, err
	}
	return gjson.Parse(f.json[command]), nil
}

func (f *fakeConn) ShowText(_ context.Context, command string) (string, error) {
	if err, ok := f.errs[command]; ok {
		return "", err
	}
	return f.text[command], nil
}

func (f *fakeConn) Configure(_ context.Context, payload string) error {
	f.submitted = append(f.submitted, payload)
	return nil
}

func (f *fakeConn) Close() error {
	f.closed = true
	return nil
}

const showFeatureJSON = `{
  "TABLE_cfcFeatureCtrlTable": {
    "ROW_cfcFeatureCtrlTable": [
      {"cfcFeatureCtrlName2": "bgp", "cfcFeatureCtrlOpStatus2": "disabled"},
      {"cfcFeatureCtrlName2": "pim", "cfcFeatureCtrlOpStatus2": "enabled"},
      {"cfcFeatureCtrlName2": "ospf 1", "cfcFeatureCtrlOpStatus2": "enabled"},
      {"cfcFeatureCtrlName2": "interface-vlan", "cfcFeatureCtrlOpStatus2": "enabled"}
    ]
  }
}`

func TestDevice_FeatureEnabled(t *testing.T) {
	dev := New("nxos-sw01", &fakeConn{json: map[string]string{
		"show feature": showFeatureJSON,
	}})

	tests := []struct {
		feature string
		want    bool
	}{
		{"pim", true},
		{"bgp", false},
		{"ospf", true}, // instanced feature rows carry the instance suffix
		{"eigrp", false},
	}

	for _, tt := range tests {
		got, err := dev.FeatureEnabled(context.Background(), tt.feature)
		if err != nil {
			t.Fatalf("FeatureEnabled(%q) error: %v", tt.feature, err)
		}
		if got != tt.want {
			t.Errorf("FeatureEnabled(%q) = %v, want %v", tt.feature, got, tt.want)
		}
	}
}

func TestDevice_FeatureEnabled_SingleRow(t *testing.T) {
	// A table with one entry serializes the row as an object, not an array.
	dev := New("nxos-sw01", &fakeConn{json: map[string]string{
		"show feature": `{"TABLE_cfcFeatureCtrlTable": {"ROW_cfcFeatureCtrlTable":
			{"cfcFeatureCtrlName2": "pim", "cfcFeatureCtrlOpStatus2": "enabled"}}}`,
	}})

	got, err := dev.FeatureEnabled(context.Background(), "pim")
	if err != nil {
		t.Fatalf("FeatureEnabled() error: %v", err)
	}
	if !got {
		t.Error("single-row table should still report pim enabled")
	}
}

func TestDevice_InterfaceLayer(t *testing.T) {
	tests := []struct {
		name string
		body string
		want Layer
	}{
		{
			name: "access port",
			body: `{"TABLE_interface": {"ROW_interface": {"interface": "Ethernet1/1", "eth_mode": "access"}}}`,
			want: Layer2,
		},
		{
			name: "trunk port",
			body: `{"TABLE_interface": {"ROW_interface": {"interface": "Ethernet1/2", "eth_mode": "trunk"}}}`,
			want: Layer2,
		},
		{
			name: "routed port",
			body: `{"TABLE_interface": {"ROW_interface": {"interface": "Ethernet1/3", "eth_mode": "routed"}}}`,
			want: Layer3,
		},
		{
			name: "loopback has no eth_mode",
			body: `{"TABLE_interface": {"ROW_interface": {"interface": "loopback0"}}}`,
			want: Layer3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := New("nxos-sw01", &fakeConn{json: map[string]string{
				"show interface Ethernet1/1": tt.body,
			}})
			got, err := dev.InterfaceLayer(context.Background(), "Ethernet1/1")
			if err != nil {
				t.Fatalf("InterfaceLayer() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("InterfaceLayer() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDevice_InterfaceLayer_NotFound(t *testing.T) {
	dev := New("nxos-sw01", &fakeConn{json: map[string]string{
		"show interface Ethernet9/9": `{}`,
	}})
	_, err := dev.InterfaceLayer(context.Background(), "Ethernet9/9")
	if err == nil {
		t.Fatal("expected error for unknown interface")
	}
	if !errors.Is(err, util.ErrNotFound) {
		t.Errorf("error should wrap ErrNotFound: %v", err)
	}
}

func TestDevice_SubmitPassesPayloadThrough(t *testing.T) {
	conn := &fakeConn{}
	dev := New("nxos-sw01", conn)

	payload := "interface Ethernet1/1\nip pim sparse-mode"
	if err := dev.Submit(context.Background(), payload); err != nil {
		t.Fatalf("Submit() error: %v", err)
	}
	if len(conn.submitted) != 1 || conn.submitted[0] != payload {
		t.Errorf("submitted = %v, want single payload %q", conn.submitted, payload)
	}
}

func TestRows(t *testing.T) {
	t.Run("array", func(t *testing.T) {
		v := gjson.Parse(`{"r": [1, 2, 3]}`).Get("r")
		if got := len(Rows(v)); got != 3 {
			t.Errorf("Rows(array) len = %d, want 3", got)
		}
	})
	t.Run("object", func(t *testing.T) {
		v := gjson.Parse(`{"r": {"a": 1}}`).Get("r")
		if got := len(Rows(v)); got != 1 {
			t.Errorf("Rows(object) len = %d, want 1", got)
		}
	})
	t.Run("missing", func(t *testing.T) {
		v := gjson.Parse(`{}`).Get("r")
		if got := len(Rows(v)); got != 0 {
			t.Errorf("Rows(missing) len = %d, want 0", got)
		}
	})
}

const showVersionJSON = `{
  "header_str": "Cisco Nexus Operating System (NX-OS) Software",
  "bios_ver_str": "07.69",
  "nxos_ver_str": "9.3(10)",
  "chassis_id": "Nexus9000 C9336C-FX2 chassis",
  "host_name": "nxos-sw01",
  "proc_board_id": "FDO24380ABC",
  "kern_uptm_days": 12,
  "kern_uptm_hrs": 4,
  "kern_uptm_mins": 31,
  "kern_uptm_secs": 9,
  "rr_reason": "Reset Requested by CLI command reload"
}`

func TestGatherFacts(t *testing.T) {
	dev := New("nxos-sw01", &fakeConn{json: map[string]string{
		"show version": showVersionJSON,
	}})

	f, err := GatherFacts(context.Background(), dev)
	if err != nil {
		t.Fatalf("GatherFacts() error: %v", err)
	}
	if f.Hostname != "nxos-sw01" {
		t.Errorf("Hostname = %q, want nxos-sw01", f.Hostname)
	}
	if f.Version != "9.3(10)" {
		t.Errorf("Version = %q, want 9.3(10)", f.Version)
	}
	if f.Platform != "Nexus9000 C9336C-FX2 chassis" {
		t.Errorf("Platform = %q", f.Platform)
	}
	if f.Uptime != "12d 4h 31m 9s" {
		t.Errorf("Uptime = %q", f.Uptime)
	}
}

func TestGatherFacts_LegacyVersionKey(t *testing.T) {
	dev := New("n7k", &fakeConn{json: map[string]string{
		"show version": `{"host_name": "n7k", "sys_ver_str": "8.4(2)"}`,
	}})

	f, err := GatherFacts(context.Background(), dev)
	if err != nil {
		t.Fatalf("GatherFacts() error: %v", err)
	}
	if f.Version != "8.4(2)" {
		t.Errorf("Version = %q, want 8.4(2)", f.Version)
	}
}
