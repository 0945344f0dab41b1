package health

import (
	"context"
	"fmt"
	"strings"

	"github.com/nexcon-network/nexcon/pkg/device"
)

// InterfaceCheck flags ethernet interfaces that are down without being
// administratively shut.
type InterfaceCheck struct{}

func (c *InterfaceCheck) Name() string { return "interfaces" }

func (c *InterfaceCheck) Run(ctx context.Context, dev device.Client) Result {
	body, err := dev.ShowJSON(ctx, "show interface brief")
	if err != nil {
		return Result{Status: StatusUnknown, Message: fmt.Sprintf("query failed: %v", err)}
	}

	var total, adminDown int
	var down []string
	for _, row := range device.Rows(body.Get("TABLE_interface.ROW_interface")) {
		name := row.Get("interface").String()
		if !strings.HasPrefix(name, "Ethernet") {
			continue
		}
		total++
		if row.Get("state").String() == "up" {
			continue
		}
		if strings.Contains(row.Get("state_rsn_desc").String(), "Administratively") {
			adminDown++
			continue
		}
		down = append(down, name)
	}

	details := map[string]int{
		"total":      total,
		"admin_down": adminDown,
		"down":       len(down),
	}
	if len(down) > 0 {
		return Result{
			Status:  StatusWarning,
			Message: fmt.Sprintf("%d interface(s) down: %s", len(down), strings.Join(down, ", ")),
			Details: details,
		}
	}
	return Result{
		Status:  StatusOK,
		Message: fmt.Sprintf("%d/%d interfaces up (%d admin down)", total-adminDown, total, adminDown),
		Details: details,
	}
}

// EnvironmentCheck inspects power supplies, fans, and temperature
// sensors.
type EnvironmentCheck struct{}

func (c *EnvironmentCheck) Name() string { return "environment" }

func (c *EnvironmentCheck) Run(ctx context.Context, dev device.Client) Result {
	body, err := dev.ShowJSON(ctx, "show environment")
	if err != nil {
		return Result{Status: StatusUnknown, Message: fmt.Sprintf("query failed: %v", err)}
	}

	var failed, absent []string

	for _, row := range device.Rows(body.Get("powersup.TABLE_psinfo.ROW_psinfo")) {
		name := fmt.Sprintf("PS%s", row.Get("psnum").String())
		switch status := row.Get("ps_status").String(); status {
		case "Ok", "ok":
		case "Absent":
			absent = append(absent, name)
		default:
			failed = append(failed, fmt.Sprintf("%s (%s)", name, status))
		}
	}

	for _, row := range device.Rows(body.Get("fandetails.TABLE_faninfo.ROW_faninfo")) {
		name := row.Get("fanname").String()
		switch status := row.Get("fanstatus").String(); status {
		case "Ok", "ok":
		case "Absent":
			absent = append(absent, name)
		default:
			failed = append(failed, fmt.Sprintf("%s (%s)", name, status))
		}
	}

	for _, row := range device.Rows(body.Get("TABLE_tempinfo.ROW_tempinfo")) {
		if status := row.Get("alarmstatus").String(); status != "" && status != "Ok" && status != "ok" {
			failed = append(failed, fmt.Sprintf("sensor %s (%s)", row.Get("sensor").String(), status))
		}
	}

	if len(failed) > 0 {
		return Result{
			Status:  StatusCritical,
			Message: "environment fault: " + strings.Join(failed, ", "),
		}
	}
	if len(absent) > 0 {
		return Result{
			Status:  StatusWarning,
			Message: "absent: " + strings.Join(absent, ", "),
		}
	}
	return Result{Status: StatusOK, Message: "power, cooling, and temperature ok"}
}

// ResourceCheck inspects CPU and memory utilization.
type ResourceCheck struct {
	// WarnPct and CritPct override the default 80/90 utilization
	// thresholds when non-zero.
	WarnPct float64
	CritPct float64
}

func (c *ResourceCheck) Name() string { return "resources" }

func (c *ResourceCheck) thresholds() (warn, crit float64) {
	warn, crit = 80, 90
	if c.WarnPct > 0 {
		warn = c.WarnPct
	}
	if c.CritPct > 0 {
		crit = c.CritPct
	}
	return warn, crit
}

func (c *ResourceCheck) Run(ctx context.Context, dev device.Client) Result {
	body, err := dev.ShowJSON(ctx, "show system resources")
	if err != nil {
		return Result{Status: StatusUnknown, Message: fmt.Sprintf("query failed: %v", err)}
	}

	cpuBusy := 100 - body.Get("cpu_state_idle").Float()
	memTotal := body.Get("memory_usage_total").Float()
	memUsed := body.Get("memory_usage_used").Float()
	var memPct float64
	if memTotal > 0 {
		memPct = memUsed / memTotal * 100
	}

	warn, crit := c.thresholds()
	status := StatusOK
	if cpuBusy >= warn || memPct >= warn {
		status = StatusWarning
	}
	if cpuBusy >= crit || memPct >= crit {
		status = StatusCritical
	}

	return Result{
		Status:  status,
		Message: fmt.Sprintf("cpu %.0f%% busy, memory %.0f%% used", cpuBusy, memPct),
		Details: map[string]float64{
			"cpu_busy_pct":    cpuBusy,
			"memory_used_pct": memPct,
			"load_avg_1min":   body.Get("load_avg_1min").Float(),
		},
	}
}

// PIMNeighborCheck counts PIM adjacencies. A device running PIM with no
// neighbors usually means a misconfigured or down upstream interface.
type PIMNeighborCheck struct{}

func (c *PIMNeighborCheck) Name() string { return "pim-neighbors" }

func (c *PIMNeighborCheck) Run(ctx context.Context, dev device.Client) Result {
	enabled, err := dev.FeatureEnabled(ctx, "pim")
	if err != nil {
		return Result{Status: StatusUnknown, Message: fmt.Sprintf("query failed: %v", err)}
	}
	if !enabled {
		return Result{Status: StatusOK, Message: "feature pim not enabled, skipped"}
	}

	body, err := dev.ShowJSON(ctx, "show ip pim neighbor")
	if err != nil {
		return Result{Status: StatusUnknown, Message: fmt.Sprintf("query failed: %v", err)}
	}

	var neighbors []string
	for _, vrf := range device.Rows(body.Get("TABLE_vrf.ROW_vrf")) {
		for _, row := range device.Rows(vrf.Get("TABLE_neighbor.ROW_neighbor")) {
			neighbors = append(neighbors, fmt.Sprintf("%s on %s",
				row.Get("nbr-addr").String(), row.Get("if-name").String()))
		}
	}

	if len(neighbors) == 0 {
		return Result{Status: StatusWarning, Message: "feature pim enabled but no neighbors"}
	}
	return Result{
		Status:  StatusOK,
		Message: fmt.Sprintf("%d PIM neighbor(s)", len(neighbors)),
		Details: neighbors,
	}
}
