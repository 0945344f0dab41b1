package feature

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/tidwall/gjson"

	"github.com/nexcon-network/nexcon/internal/testutil"
	"github.com/nexcon-network/nexcon/pkg/device"
	"github.com/nexcon-network/nexcon/pkg/param"
	"github.com/nexcon-network/nexcon/pkg/reconcile"
	"github.com/nexcon-network/nexcon/pkg/util"
)

// ============================================================================
// Key normalization
// ============================================================================

func TestPIMInterface_Key(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"e1/1", "Ethernet1/1"},
		{"eth1/1", "Ethernet1/1"},
		{"Ethernet1/1", "Ethernet1/1"},
		{"po10", "port-channel10"},
		{"lo0", "loopback0"},
	}

	f := &PIMInterface{}
	for _, tt := range tests {
		if got := f.Key(param.Values{"interface": tt.in}); got != tt.want {
			t.Errorf("Key(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// ============================================================================
// Proposed-state builder
// ============================================================================

func TestPIMInterface_BuildProposed(t *testing.T) {
	tests := []struct {
		name    string
		values  param.Values
		want    reconcile.State
		wantErr string
	}{
		{
			name:   "hello interval rescales seconds to milliseconds",
			values: param.Values{"interface": "e1/1", "hello_interval": 5},
			want:   reconcile.State{"hello_interval": "5000"},
		},
		{
			name: "full parameter set",
			values: param.Values{
				"interface":       "e1/1",
				"sparse":          true,
				"dr_prio":         "20",
				"hello_interval":  30,
				"border":          false,
				"neighbor_policy": "nbr-filter",
				"neighbor_type":   "prefix",
				"jp_policy_in":    "jp-in",
				"jp_type_in":      "routemap",
			},
			want: reconcile.State{
				"sparse":          true,
				"dr_prio":         "20",
				"hello_interval":  "30000",
				"border":          false,
				"neighbor_policy": "nbr-filter",
				"neighbor_type":   "prefix",
				"jp_policy_in":    "jp-in",
				"jp_type_in":      "routemap",
			},
		},
		{
			name:   "omitted parameters stay omitted",
			values: param.Values{"interface": "e1/1", "sparse": true},
			want:   reconcile.State{"sparse": true},
		},
		{
			name:    "dr_prio must be numeric",
			values:  param.Values{"interface": "e1/1", "dr_prio": "high"},
			wantErr: "dr_prio must be a number",
		},
		{
			name:    "hello interval must be positive",
			values:  param.Values{"interface": "e1/1", "hello_interval": 0},
			wantErr: "at least 1 second",
		},
		{
			name:    "policy name and type travel together",
			values:  param.Values{"interface": "e1/1", "jp_policy_in": "jp-in"},
			wantErr: "must be supplied together",
		},
		{
			name:    "policy type is a closed choice",
			values:  param.Values{"interface": "e1/1", "neighbor_policy": "x", "neighbor_type": "acl"},
			wantErr: "must be one of",
		},
	}

	f := &PIMInterface{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.BuildProposed(tt.values, reconcile.IntentPresent)
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("BuildProposed() = %v, want error containing %q", got, tt.wantErr)
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("BuildProposed() error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("BuildProposed() = %v, want %v", got, tt.want)
			}
		})
	}
}

// ============================================================================
// Existing-state normalizer
// ============================================================================

func TestPIMInterface_Normalize(t *testing.T) {
	body := gjson.Parse(testutil.ShowPIMInterfaceEth1)

	st, flags := normalizePIMInterface(body, testutil.RunIntfEth1)

	want := reconcile.State{
		"sparse":         true,
		"dr_prio":        "10",
		"hello_interval": "30000",
		"border":         false,
	}
	if !reflect.DeepEqual(st, want) {
		t.Errorf("state = %v, want %v", st, want)
	}
	if flags[flagJPBidir] || flags[flagIsAuth] {
		t.Errorf("flags = %v, want both false", flags)
	}
}

func TestPIMInterface_NormalizeUnconfigured(t *testing.T) {
	st, flags := normalizePIMInterface(gjson.Parse(testutil.ShowPIMInterfaceNone), "")

	if len(st) != 0 {
		t.Errorf("state = %v, want empty", st)
	}
	if flags[flagJPBidir] || flags[flagIsAuth] {
		t.Errorf("flags = %v, want both false", flags)
	}
}

func TestPIMInterface_NormalizePolicies(t *testing.T) {
	body := gjson.Parse(testutil.ShowPIMInterfaceEth1)

	tests := []struct {
		name      string
		run       string
		want      reconcile.State
		wantBidir bool
	}{
		{
			name: "directed jp policies",
			run: `interface Ethernet1/1
  ip pim sparse-mode
  ip pim jp-policy jp-in in
  ip pim jp-policy prefix-list jp-out-pl out
`,
			want: reconcile.State{
				"jp_policy_in":  "jp-in",
				"jp_type_in":    "routemap",
				"jp_policy_out": "jp-out-pl",
				"jp_type_out":   "prefix",
			},
		},
		{
			name: "directionless jp policy covers both directions",
			run: `interface Ethernet1/1
  ip pim sparse-mode
  ip pim jp-policy jp-both
`,
			want: reconcile.State{
				"jp_policy_in":  "jp-both",
				"jp_type_in":    "routemap",
				"jp_policy_out": "jp-both",
				"jp_type_out":   "routemap",
			},
			wantBidir: true,
		},
		{
			name: "neighbor policy prefix-list form",
			run: `interface Ethernet1/1
  ip pim sparse-mode
  ip pim neighbor-policy prefix-list nbr-pl
`,
			want: reconcile.State{
				"neighbor_policy": "nbr-pl",
				"neighbor_type":   "prefix",
			},
		},
	}

	base := reconcile.State{
		"sparse":         true,
		"dr_prio":        "10",
		"hello_interval": "30000",
		"border":         false,
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := base.Clone()
			for k, v := range tt.want {
				want[k] = v
			}

			st, flags := normalizePIMInterface(body, tt.run)
			if !reflect.DeepEqual(st, want) {
				t.Errorf("state = %v, want %v", st, want)
			}
			if flags[flagJPBidir] != tt.wantBidir {
				t.Errorf("bidir flag = %v, want %v", flags[flagJPBidir], tt.wantBidir)
			}
		})
	}
}

func TestPIMInterface_NormalizeAuthFlag(t *testing.T) {
	body := gjson.Parse(`{
		"TABLE_iod": {
			"ROW_iod": {
				"if-name": "Ethernet1/1",
				"dr-priority": "1",
				"hello-interval": "30000",
				"is-border": "true",
				"is-auth-configured": "true"
			}
		}
	}`)

	st, flags := normalizePIMInterface(body, "")
	if !flags[flagIsAuth] {
		t.Error("auth flag = false, want true")
	}
	if !st.Bool("border") {
		t.Error("border = false, want true")
	}
	if st.Has("hello_auth_key") {
		t.Error("hello_auth_key must never appear in existing state")
	}
}

// ============================================================================
// Planner
// ============================================================================

func TestPIMInterface_PlanPresentOrder(t *testing.T) {
	delta := reconcile.State{
		"sparse":          true,
		"dr_prio":         "20",
		"hello_interval":  "5000",
		"hello_auth_key":  "s3cret",
		"border":          true,
		"neighbor_policy": "nbr-filter",
		"jp_policy_in":    "jp-in",
		"jp_policy_out":   "jp-out",
	}
	proposed := delta.Clone()
	proposed["neighbor_type"] = "prefix"
	proposed["jp_type_in"] = "routemap"
	proposed["jp_type_out"] = "prefix"

	f := &PIMInterface{}
	plan, err := f.Plan(reconcile.PlanRequest{
		Intent:   reconcile.IntentPresent,
		Key:      "Ethernet1/1",
		Delta:    delta,
		Proposed: proposed,
		Flags:    reconcile.Flags{},
	})
	if err != nil {
		t.Fatalf("Plan() error: %v", err)
	}

	want := []string{
		"interface Ethernet1/1",
		"ip pim sparse-mode",
		"ip pim dr-priority 20",
		"ip pim hello-interval 5000",
		"ip pim hello-authentication ah-md5 s3cret",
		"ip pim border",
		"ip pim neighbor-policy prefix-list nbr-filter",
		"ip pim jp-policy jp-in in",
		"ip pim jp-policy prefix-list jp-out out",
	}
	if got := plan.Commands(); !reflect.DeepEqual(got, want) {
		t.Errorf("Plan() commands = %v, want %v", got, want)
	}
}

func TestPIMInterface_PlanReissuesPolicyOnTypeChange(t *testing.T) {
	// Only the type half changed; the command carries name and type from
	// the proposed state.
	f := &PIMInterface{}
	plan, err := f.Plan(reconcile.PlanRequest{
		Intent: reconcile.IntentPresent,
		Key:    "Ethernet1/1",
		Delta:  reconcile.State{"jp_type_in": "prefix"},
		Proposed: reconcile.State{
			"jp_policy_in": "jp-in",
			"jp_type_in":   "prefix",
		},
		Flags: reconcile.Flags{},
	})
	if err != nil {
		t.Fatalf("Plan() error: %v", err)
	}

	want := []string{
		"interface Ethernet1/1",
		"ip pim jp-policy prefix-list jp-in in",
	}
	if got := plan.Commands(); !reflect.DeepEqual(got, want) {
		t.Errorf("Plan() commands = %v, want %v", got, want)
	}
}

func TestPIMInterface_PlanAbsent(t *testing.T) {
	existing := reconcile.State{
		"sparse":         true,
		"dr_prio":        "20",
		"hello_interval": "30000",
		"border":         true,
		"jp_policy_in":   "jp-both",
		"jp_type_in":     "routemap",
		"jp_policy_out":  "jp-both",
		"jp_type_out":    "routemap",
	}

	f := &PIMInterface{}
	plan, err := f.Plan(reconcile.PlanRequest{
		Intent:   reconcile.IntentAbsent,
		Key:      "Ethernet1/1",
		Existing: existing,
		Flags:    reconcile.Flags{flagJPBidir: true, flagIsAuth: true},
	})
	if err != nil {
		t.Fatalf("Plan() error: %v", err)
	}

	// Default hello-interval needs no reset; the directionless jp policy
	// is removed as the single line the device holds; sparse-mode goes
	// last.
	want := []string{
		"interface Ethernet1/1",
		"no ip pim dr-priority",
		"no ip pim hello-authentication ah-md5",
		"no ip pim border",
		"no ip pim jp-policy jp-both",
		"no ip pim sparse-mode",
	}
	if got := plan.Commands(); !reflect.DeepEqual(got, want) {
		t.Errorf("Plan() commands = %v, want %v", got, want)
	}
}

func TestPIMInterface_PlanDefaultKeepsSparse(t *testing.T) {
	existing := reconcile.State{
		"sparse":         true,
		"dr_prio":        "20",
		"hello_interval": "5000",
		"border":         false,
		"jp_policy_in":   "jp-in",
		"jp_type_in":     "routemap",
	}

	f := &PIMInterface{}
	plan, err := f.Plan(reconcile.PlanRequest{
		Intent:   reconcile.IntentDefault,
		Key:      "Ethernet1/1",
		Existing: existing,
		Flags:    reconcile.Flags{},
	})
	if err != nil {
		t.Fatalf("Plan() error: %v", err)
	}

	want := []string{
		"interface Ethernet1/1",
		"no ip pim dr-priority",
		"no ip pim hello-interval",
		"no ip pim jp-policy jp-in in",
	}
	if got := plan.Commands(); !reflect.DeepEqual(got, want) {
		t.Errorf("Plan() commands = %v, want %v", got, want)
	}
}

func TestPIMInterface_PlanAbsentUnconfigured(t *testing.T) {
	f := &PIMInterface{}
	plan, err := f.Plan(reconcile.PlanRequest{
		Intent:   reconcile.IntentAbsent,
		Key:      "Ethernet1/1",
		Existing: reconcile.State{},
		Flags:    reconcile.Flags{},
	})
	if err != nil {
		t.Fatalf("Plan() error: %v", err)
	}
	if !plan.IsEmpty() {
		t.Errorf("Plan() commands = %v, want empty", plan.Commands())
	}
}

// ============================================================================
// Preflight
// ============================================================================

func TestPIMInterface_Preflight(t *testing.T) {
	dev := testutil.NewFakeClient("nxos-sw01")
	dev.Layers["Ethernet1/1"] = device.Layer3
	dev.Layers["Ethernet1/2"] = device.Layer2

	f := &PIMInterface{}
	if err := f.Preflight(context.Background(), dev, "Ethernet1/1"); err != nil {
		t.Errorf("Preflight(routed) error: %v", err)
	}

	err := f.Preflight(context.Background(), dev, "Ethernet1/2")
	if !errors.Is(err, util.ErrPreconditionFailed) {
		t.Errorf("Preflight(switchport) = %v, want ErrPreconditionFailed", err)
	}
}

// ============================================================================
// Full pass against a fake device
// ============================================================================

func TestPIMInterface_ReconcileChangesTimers(t *testing.T) {
	dev := testutil.ConfiguredSwitch("nxos-sw01")
	f, err := Lookup("pim-interface")
	if err != nil {
		t.Fatalf("Lookup() error: %v", err)
	}

	driver := reconcile.NewDriver(dev, reconcile.ReadbackDelay(0))
	result, err := driver.Run(context.Background(), f, reconcile.Request{
		Values: param.Values{"interface": "e1/1", "dr_prio": "20", "hello_interval": 5},
		Intent: reconcile.IntentPresent,
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if !result.Changed {
		t.Fatal("Changed = false, want true")
	}
	want := []string{
		"interface Ethernet1/1",
		"ip pim dr-priority 20",
		"ip pim hello-interval 5000",
	}
	if !reflect.DeepEqual(result.Commands, want) {
		t.Errorf("Commands = %v, want %v", result.Commands, want)
	}
	if len(dev.Submitted) != 1 || dev.Submitted[0] != strings.Join(want, "\n") {
		t.Errorf("submitted %v, want one payload of %v", dev.Submitted, want)
	}
}

func TestPIMInterface_ReconcileConverged(t *testing.T) {
	dev := testutil.ConfiguredSwitch("nxos-sw01")
	f, err := Lookup("pim-interface")
	if err != nil {
		t.Fatalf("Lookup() error: %v", err)
	}

	driver := reconcile.NewDriver(dev, reconcile.ReadbackDelay(0))
	result, err := driver.Run(context.Background(), f, reconcile.Request{
		Values: param.Values{"interface": "e1/1", "sparse": true, "dr_prio": "10"},
		Intent: reconcile.IntentPresent,
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if result.Changed {
		t.Errorf("Changed = true, want false; commands %v", result.Commands)
	}
}

func TestPIMInterface_ReconcileRejectsSwitchport(t *testing.T) {
	dev := testutil.ConfiguredSwitch("nxos-sw01")
	dev.Layers["Ethernet1/2"] = device.Layer2

	f, err := Lookup("pim-interface")
	if err != nil {
		t.Fatalf("Lookup() error: %v", err)
	}

	driver := reconcile.NewDriver(dev, reconcile.ReadbackDelay(0))
	_, err = driver.Run(context.Background(), f, reconcile.Request{
		Values: param.Values{"interface": "e1/2", "sparse": true},
		Intent: reconcile.IntentPresent,
	})
	if !errors.Is(err, util.ErrPreconditionFailed) {
		t.Fatalf("Run() = %v, want ErrPreconditionFailed", err)
	}
	if len(dev.Submitted) != 0 {
		t.Errorf("submitted %v, want nothing", dev.Submitted)
	}
}
