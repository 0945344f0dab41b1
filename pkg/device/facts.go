package device

import (
	"context"
	"fmt"
)

// Facts are the identity details gathered from a device.
type Facts struct {
	Hostname  string `json:"hostname"`
	Platform  string `json:"platform"`
	Version   string `json:"version"`
	Serial    string `json:"serial,omitempty"`
	BIOS      string `json:"bios,omitempty"`
	Uptime    string `json:"uptime,omitempty"`
	LastReset string `json:"last_reset,omitempty"`
}

// GatherFacts reads device identity from show version.
func GatherFacts(ctx context.Context, dev Client) (*Facts, error) {
	body, err := dev.ShowJSON(ctx, "show version")
	if err != nil {
		return nil, err
	}

	f := &Facts{
		Hostname:  body.Get("host_name").String(),
		Platform:  body.Get("chassis_id").String(),
		Version:   body.Get("nxos_ver_str").String(),
		Serial:    body.Get("proc_board_id").String(),
		BIOS:      body.Get("bios_ver_str").String(),
		LastReset: body.Get("rr_reason").String(),
	}
	// Older releases report the system image version under a different key.
	if f.Version == "" {
		f.Version = body.Get("sys_ver_str").String()
	}
	if body.Get("kern_uptm_days").Exists() {
		f.Uptime = fmt.Sprintf("%dd %dh %dm %ds",
			body.Get("kern_uptm_days").Int(),
			body.Get("kern_uptm_hrs").Int(),
			body.Get("kern_uptm_mins").Int(),
			body.Get("kern_uptm_secs").Int())
	}
	return f, nil
}
