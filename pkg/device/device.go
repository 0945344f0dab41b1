// Package device handles NX-OS device access: the transport-neutral client
// surface the reconciliation engine talks to, plus the device-level checks
// (enabled features, interface mode) shared by every feature.
package device

import (
	"context"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/nexcon-network/nexcon/pkg/util"
)

// Layer is an interface's switching mode.
type Layer string

const (
	LayerUnknown Layer = ""
	Layer2       Layer = "layer2"
	Layer3       Layer = "layer3"
)

// Conn is one transport session to a switch. Implementations exist for
// NX-API over HTTP(S) and for the CLI over SSH.
type Conn interface {
	// ShowJSON runs a show command with structured output and returns the
	// parsed body.
	ShowJSON(ctx context.Context, command string) (gjson.Result, error)
	// ShowText runs a show command and returns its raw ASCII output.
	ShowText(ctx context.Context, command string) (string, error)
	// Configure submits a configuration payload, one command per line, as
	// a single unit. The first rejected command aborts the submission.
	Configure(ctx context.Context, payload string) error
	// Close releases the session.
	Close() error
}

// Client is the device surface the reconciliation engine consumes.
type Client interface {
	Name() string
	ShowJSON(ctx context.Context, command string) (gjson.Result, error)
	ShowText(ctx context.Context, command string) (string, error)
	Submit(ctx context.Context, payload string) error
	FeatureEnabled(ctx context.Context, feature string) (bool, error)
	InterfaceLayer(ctx context.Context, name string) (Layer, error)
}

// Device implements Client over a Conn.
type Device struct {
	name string
	conn Conn
}

// New creates a Device for the named switch over an established Conn.
func New(name string, conn Conn) *Device {
	return &Device{name: name, conn: conn}
}

// Name returns the device's inventory name.
func (d *Device) Name() string {
	return d.name
}

// ShowJSON runs a structured show command.
func (d *Device) ShowJSON(ctx context.Context, command string) (gjson.Result, error) {
	util.WithDevice(d.name).Debugf("show: %s", command)
	return d.conn.ShowJSON(ctx, command)
}

// ShowText runs an ASCII show command.
func (d *Device) ShowText(ctx context.Context, command string) (string, error) {
	util.WithDevice(d.name).Debugf("show (ascii): %s", command)
	return d.conn.ShowText(ctx, command)
}

// Submit sends a configuration payload to the device.
func (d *Device) Submit(ctx context.Context, payload string) error {
	util.WithDevice(d.name).Debugf("configure:\n%s", payload)
	return d.conn.Configure(ctx, payload)
}

// Close releases the underlying session.
func (d *Device) Close() error {
	return d.conn.Close()
}

// FeatureEnabled reports whether a device feature ("pim", "bgp") is
// enabled. Instanced features report enabled when any instance is.
func (d *Device) FeatureEnabled(ctx context.Context, feature string) (bool, error) {
	body, err := d.ShowJSON(ctx, "show feature")
	if err != nil {
		return false, err
	}
	for _, row := range Rows(body.Get("TABLE_cfcFeatureCtrlTable.ROW_cfcFeatureCtrlTable")) {
		name := row.Get("cfcFeatureCtrlName2").String()
		if name != feature && !strings.HasPrefix(name, feature+" ") {
			continue
		}
		if strings.HasPrefix(row.Get("cfcFeatureCtrlOpStatus2").String(), "enabled") {
			return true, nil
		}
	}
	return false, nil
}

// InterfaceLayer reports whether an interface runs as a switchport or as a
// routed port. Interfaces without an ethernet mode (loopbacks, SVIs,
// subinterfaces) are layer-3 by construction.
func (d *Device) InterfaceLayer(ctx context.Context, name string) (Layer, error) {
	body, err := d.ShowJSON(ctx, "show interface "+name)
	if err != nil {
		return LayerUnknown, err
	}
	rows := Rows(body.Get("TABLE_interface.ROW_interface"))
	if len(rows) == 0 {
		return LayerUnknown, fmt.Errorf("interface %s on %s: %w", name, d.name, util.ErrNotFound)
	}
	switch rows[0].Get("eth_mode").String() {
	case "access", "trunk", "fex-fabric":
		return Layer2, nil
	default:
		return Layer3, nil
	}
}

// Rows normalizes NX-OS's TABLE/ROW convention: a ROW_* value is a single
// object when one entry exists and an array when several do. Rows returns
// the entries as a slice either way, empty when the path is missing.
func Rows(v gjson.Result) []gjson.Result {
	if !v.Exists() {
		return nil
	}
	if v.IsArray() {
		return v.Array()
	}
	return []gjson.Result{v}
}
