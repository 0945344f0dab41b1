// Package testutil provides the fake device client and canned NX-OS
// command output shared by unit tests across packages.
package testutil

import (
	"context"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/nexcon-network/nexcon/pkg/device"
)

// FakeClient implements device.Client from canned per-command output.
// Show commands without a registered fixture fail the call, so a feature
// issuing the wrong command string surfaces as a test failure rather than
// silently reading an empty state.
type FakeClient struct {
	DeviceName string

	// JSON and Text map show commands to their canned output.
	JSON map[string]string
	Text map[string]string
	// Errs forces an error for a show command, taking precedence over
	// fixtures.
	Errs map[string]error

	// Features maps device feature names to their enabled state.
	Features map[string]bool
	// Layers maps interface names to their switching mode. Interfaces not
	// listed report layer-3.
	Layers map[string]device.Layer

	// Submitted collects configuration payloads in submission order.
	Submitted []string
	// SubmitErr is returned by Submit after recording the payload.
	SubmitErr error
	// OnSubmit, when set, runs after each successful submission. Tests use
	// it to swap fixtures so the post-apply read sees the new state.
	OnSubmit func(payload string)
}

// NewFakeClient creates a FakeClient with empty fixture maps.
func NewFakeClient(name string) *FakeClient {
	return &FakeClient{
		DeviceName: name,
		JSON:       make(map[string]string),
		Text:       make(map[string]string),
		Errs:       make(map[string]error),
		Features:   make(map[string]bool),
		Layers:     make(map[string]device.Layer),
	}
}

func (f *FakeClient) Name() string {
	return f.DeviceName
}

func (f *FakeClient) ShowJSON(ctx context.Context, command string) (gjson.Result, error) {
	if err := f.Errs[command]; err != nil {
		return gjson.Result{}, err
	}
	body, ok := f.JSON[command]
	if !ok {
		return gjson.Result{}, fmt.Errorf("no JSON fixture for %q", command)
	}
	return gjson.Parse(body), nil
}

func (f *FakeClient) ShowText(ctx context.Context, command string) (string, error) {
	if err := f.Errs[command]; err != nil {
		return "", err
	}
	out, ok := f.Text[command]
	if !ok {
		return "", fmt.Errorf("no text fixture for %q", command)
	}
	return out, nil
}

func (f *FakeClient) Submit(ctx context.Context, payload string) error {
	f.Submitted = append(f.Submitted, payload)
	if f.SubmitErr != nil {
		return f.SubmitErr
	}
	if f.OnSubmit != nil {
		f.OnSubmit(payload)
	}
	return nil
}

func (f *FakeClient) FeatureEnabled(ctx context.Context, feature string) (bool, error) {
	return f.Features[feature], nil
}

func (f *FakeClient) InterfaceLayer(ctx context.Context, name string) (device.Layer, error) {
	if layer, ok := f.Layers[name]; ok {
		return layer, nil
	}
	return device.Layer3, nil
}
