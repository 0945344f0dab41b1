// Package e2e_test drives the full stack against a fake NX-API switch:
// inventory resolution, the HTTP transport, the reconciliation driver,
// and the audit log. Nothing below the HTTP boundary is mocked.
package e2e_test

import (
	"context"
	"errors"
	"fmt"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"testing"

	"github.com/nexcon-network/nexcon/pkg/device"
	"github.com/nexcon-network/nexcon/pkg/feature"
	"github.com/nexcon-network/nexcon/pkg/inventory"
	"github.com/nexcon-network/nexcon/pkg/param"
	"github.com/nexcon-network/nexcon/pkg/reconcile"
	"github.com/nexcon-network/nexcon/pkg/util"
)

// openLabDevice writes a one-device inventory pointing at the fake
// switch and opens the device through it, exactly as the CLI would.
func openLabDevice(t *testing.T, srv *httptest.Server, password string) *device.Device {
	t.Helper()

	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatalf("parsing test server URL: %v", err)
	}
	port, _ := strconv.Atoi(u.Port())

	content := fmt.Sprintf(`devices:
  - name: nxos-e2e
    host: %s
    transport: nxapi
    scheme: http
    port: %d
    username: admin
    password: %s
    tags: [e2e]
`, u.Hostname(), port, password)

	dir, err := os.MkdirTemp("", "nexcon-e2e-*")
	if err != nil {
		t.Fatalf("creating temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	path := filepath.Join(dir, "inventory.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing inventory: %v", err)
	}

	inv, err := inventory.Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	entry, err := inv.Device("nxos-e2e")
	if err != nil {
		t.Fatalf("Device() error: %v", err)
	}
	dev, err := entry.Open()
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { dev.Close() })
	return dev
}

func TestReconcileLifecycle(t *testing.T) {
	sw := newFakeSwitch()
	srv := sw.server()
	defer srv.Close()

	dev := openLabDevice(t, srv, "secret")
	f, err := feature.Lookup("snmp-community")
	if err != nil {
		t.Fatalf("Lookup() error: %v", err)
	}
	driver := reconcile.NewDriver(dev, reconcile.ReadbackDelay(0))
	ctx := context.Background()

	// Create.
	res, err := driver.Run(ctx, f, reconcile.Request{
		Values: param.Values{"community": "ops", "access": "ro"},
		Intent: reconcile.IntentPresent,
	})
	if err != nil {
		t.Fatalf("create: Run() error: %v", err)
	}
	if !res.Changed {
		t.Fatal("create: Changed = false, want true")
	}
	want := []string{"snmp-server community ops group network-operator"}
	if !reflect.DeepEqual(res.Commands, want) {
		t.Errorf("create: Commands = %v, want %v", res.Commands, want)
	}
	if c, ok := sw.configured("ops"); !ok || c.group != "network-operator" {
		t.Errorf("create: switch state = %+v, %v", c, ok)
	}
	wantFinal := reconcile.State{"group": "network-operator"}
	if !reflect.DeepEqual(res.Final, wantFinal) {
		t.Errorf("create: Final = %v, want %v", res.Final, wantFinal)
	}

	// A second identical pass converges without touching the device.
	before := sw.confCount()
	res, err = driver.Run(ctx, f, reconcile.Request{
		Values: param.Values{"community": "ops", "access": "ro"},
		Intent: reconcile.IntentPresent,
	})
	if err != nil {
		t.Fatalf("converge: Run() error: %v", err)
	}
	if res.Changed {
		t.Errorf("converge: Changed = true; commands %v", res.Commands)
	}
	if sw.confCount() != before {
		t.Errorf("converge: device received %d new commands", sw.confCount()-before)
	}

	// Modify group and add an ACL in one pass.
	res, err = driver.Run(ctx, f, reconcile.Request{
		Values: param.Values{"community": "ops", "group": "sec-admins", "acl": "snmp-mgmt"},
		Intent: reconcile.IntentPresent,
	})
	if err != nil {
		t.Fatalf("modify: Run() error: %v", err)
	}
	want = []string{
		"snmp-server community ops group sec-admins",
		"snmp-server community ops use-acl snmp-mgmt",
	}
	if !reflect.DeepEqual(res.Commands, want) {
		t.Errorf("modify: Commands = %v, want %v", res.Commands, want)
	}
	if c, _ := sw.configured("ops"); c.group != "sec-admins" || c.acl != "snmp-mgmt" {
		t.Errorf("modify: switch state = %+v", c)
	}

	// Remove.
	res, err = driver.Run(ctx, f, reconcile.Request{
		Values: param.Values{"community": "ops", "group": "sec-admins"},
		Intent: reconcile.IntentAbsent,
	})
	if err != nil {
		t.Fatalf("remove: Run() error: %v", err)
	}
	want = []string{"no snmp-server community ops"}
	if !reflect.DeepEqual(res.Commands, want) {
		t.Errorf("remove: Commands = %v, want %v", res.Commands, want)
	}
	if _, ok := sw.configured("ops"); ok {
		t.Error("remove: community still configured")
	}
	if len(res.Final) != 0 {
		t.Errorf("remove: Final = %v, want empty", res.Final)
	}

	// Removing again is a no-op.
	before = sw.confCount()
	res, err = driver.Run(ctx, f, reconcile.Request{
		Values: param.Values{"community": "ops", "group": "sec-admins"},
		Intent: reconcile.IntentAbsent,
	})
	if err != nil {
		t.Fatalf("re-remove: Run() error: %v", err)
	}
	if res.Changed || sw.confCount() != before {
		t.Errorf("re-remove: Changed = %v, new commands = %d", res.Changed, sw.confCount()-before)
	}
}

func TestCheckModeLeavesDeviceUntouched(t *testing.T) {
	sw := newFakeSwitch()
	srv := sw.server()
	defer srv.Close()

	dev := openLabDevice(t, srv, "secret")
	f, err := feature.Lookup("snmp-community")
	if err != nil {
		t.Fatalf("Lookup() error: %v", err)
	}

	driver := reconcile.NewDriver(dev, reconcile.CheckMode(true))
	res, err := driver.Run(context.Background(), f, reconcile.Request{
		Values: param.Values{"community": "ops", "access": "rw"},
		Intent: reconcile.IntentPresent,
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if !res.Changed || !res.CheckMode {
		t.Errorf("Changed = %v, CheckMode = %v, want both true", res.Changed, res.CheckMode)
	}
	want := []string{"snmp-server community ops group network-admin"}
	if !reflect.DeepEqual(res.Commands, want) {
		t.Errorf("Commands = %v, want %v", res.Commands, want)
	}
	if sw.confCount() != 0 {
		t.Errorf("device received %d commands in check mode", sw.confCount())
	}
	if _, ok := sw.configured("ops"); ok {
		t.Error("community configured in check mode")
	}
}

func TestBadCredentialsSurfaceAsTransportError(t *testing.T) {
	sw := newFakeSwitch()
	srv := sw.server()
	defer srv.Close()

	dev := openLabDevice(t, srv, "wrong")
	f, err := feature.Lookup("snmp-community")
	if err != nil {
		t.Fatalf("Lookup() error: %v", err)
	}

	driver := reconcile.NewDriver(dev, reconcile.ReadbackDelay(0))
	_, err = driver.Run(context.Background(), f, reconcile.Request{
		Values: param.Values{"community": "ops", "access": "ro"},
		Intent: reconcile.IntentPresent,
	})
	if err == nil {
		t.Fatal("expected error with bad credentials")
	}
	if !errors.Is(err, util.ErrUnreachable) {
		t.Errorf("error should wrap ErrUnreachable: %v", err)
	}
}
