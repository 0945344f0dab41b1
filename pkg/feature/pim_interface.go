package feature

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/nexcon-network/nexcon/pkg/device"
	"github.com/nexcon-network/nexcon/pkg/param"
	"github.com/nexcon-network/nexcon/pkg/reconcile"
	"github.com/nexcon-network/nexcon/pkg/util"
)

// Side-channel flags derived while normalizing. They steer command
// sequencing without taking part in the delta.
const (
	// flagJPBidir marks a join-prune policy configured without a
	// direction, which the device applies to both directions as one line.
	flagJPBidir = "jp_bidir"
	// flagIsAuth marks hello authentication as configured. The device
	// never discloses the key itself.
	flagIsAuth = "isauth"
)

// pimInterfaceFields is the canonical schema for per-interface PIM state.
// hello_interval is kept in the device's milliseconds representation.
var pimInterfaceFields = reconcile.FieldSet{
	"sparse":          reconcile.KindBool,
	"dr_prio":         reconcile.KindString,
	"hello_interval":  reconcile.KindString,
	"hello_auth_key":  reconcile.KindString,
	"border":          reconcile.KindBool,
	"neighbor_policy": reconcile.KindString,
	"neighbor_type":   reconcile.KindString,
	"jp_policy_in":    reconcile.KindString,
	"jp_type_in":      reconcile.KindString,
	"jp_policy_out":   reconcile.KindString,
	"jp_type_out":     reconcile.KindString,
}

// Device defaults; a field at its default needs no reset command.
const (
	defaultDRPriority    = "1"
	defaultHelloInterval = "30000"
)

var (
	jpPolicyLine  = regexp.MustCompile(`(?m)^\s*ip pim jp-policy( prefix-list)? (\S+)( in| out)?\s*$`)
	nbrPolicyLine = regexp.MustCompile(`(?m)^\s*ip pim neighbor-policy( prefix-list)? (\S+)\s*$`)
)

// PIMInterface reconciles per-interface PIM sparse-mode configuration:
// DR priority, hello interval and authentication, border role, and the
// neighbor and join-prune policies.
type PIMInterface struct{}

func init() { Register(&PIMInterface{}) }

func (*PIMInterface) Name() string { return "pim-interface" }

func (*PIMInterface) Requires() []string { return []string{"pim"} }

func (*PIMInterface) Params() *param.Spec {
	return &param.Spec{
		Feature: "pim-interface",
		Fields: []param.Field{
			{Name: "interface", Kind: param.String, Required: true, Help: "full or abbreviated interface name"},
			{Name: "sparse", Kind: param.Bool, Help: "enable PIM sparse-mode"},
			{Name: "dr_prio", Kind: param.String, Help: "designated router priority"},
			{Name: "hello_interval", Kind: param.Int, Help: "hello interval in seconds"},
			{Name: "hello_auth_key", Kind: param.String, Help: "hello authentication key (ah-md5)"},
			{Name: "border", Kind: param.Bool, Help: "mark the interface as a PIM domain border"},
			{Name: "neighbor_policy", Kind: param.String, Help: "policy filtering PIM adjacencies"},
			{Name: "neighbor_type", Kind: param.String, Choices: []string{"prefix", "routemap"}, Help: "neighbor policy type"},
			{Name: "jp_policy_in", Kind: param.String, Help: "inbound join-prune policy"},
			{Name: "jp_type_in", Kind: param.String, Choices: []string{"prefix", "routemap"}, Help: "inbound join-prune policy type"},
			{Name: "jp_policy_out", Kind: param.String, Help: "outbound join-prune policy"},
			{Name: "jp_type_out", Kind: param.String, Choices: []string{"prefix", "routemap"}, Help: "outbound join-prune policy type"},
		},
		RequireTogether: [][]string{
			{"neighbor_policy", "neighbor_type"},
			{"jp_policy_in", "jp_type_in"},
			{"jp_policy_out", "jp_type_out"},
		},
	}
}

func (*PIMInterface) Key(v param.Values) string {
	return util.NormalizeInterfaceName(v.String("interface"))
}

func (f *PIMInterface) BuildProposed(v param.Values, intent reconcile.Intent) (reconcile.State, error) {
	if err := f.Params().Validate(v); err != nil {
		return nil, err
	}

	b := &util.ValidationBuilder{}
	if v.Has("dr_prio") {
		if _, err := strconv.ParseUint(v.String("dr_prio"), 10, 32); err != nil {
			b.AddErrorf("dr_prio must be a number, got %q", v.String("dr_prio"))
		}
	}
	if v.Has("hello_interval") && v.Int("hello_interval") < 1 {
		b.AddError("hello_interval must be at least 1 second")
	}
	if err := b.Build(); err != nil {
		return nil, err
	}

	st := reconcile.State{}
	if v.Has("sparse") {
		st["sparse"] = v.Bool("sparse")
	}
	if v.Has("dr_prio") {
		st["dr_prio"] = v.String("dr_prio")
	}
	if v.Has("hello_interval") {
		// Seconds from the operator, milliseconds on the device.
		st["hello_interval"] = strconv.Itoa(v.Int("hello_interval") * 1000)
	}
	if v.Has("hello_auth_key") {
		st["hello_auth_key"] = v.String("hello_auth_key")
	}
	if v.Has("border") {
		st["border"] = v.Bool("border")
	}
	for _, name := range []string{
		"neighbor_policy", "neighbor_type",
		"jp_policy_in", "jp_type_in",
		"jp_policy_out", "jp_type_out",
	} {
		if v.Has(name) {
			st[name] = v.String(name)
		}
	}

	if err := pimInterfaceFields.Validate(st); err != nil {
		return nil, err
	}
	return st, nil
}

// Preflight rejects switchports: PIM configuration requires a routed
// interface.
func (*PIMInterface) Preflight(ctx context.Context, dev device.Client, key string) error {
	layer, err := dev.InterfaceLayer(ctx, key)
	if err != nil {
		return err
	}
	if layer == device.Layer2 {
		return util.NewPreconditionError("pim-interface", key,
			"interface must be layer-3", "configure: no switchport")
	}
	return nil
}

func (*PIMInterface) ReadExisting(ctx context.Context, dev device.Client, key string) (reconcile.State, reconcile.Flags, error) {
	body, err := dev.ShowJSON(ctx, "show ip pim interface "+key)
	if err != nil {
		return nil, nil, err
	}
	run, err := dev.ShowText(ctx, "show running-config interface "+key)
	if err != nil {
		return nil, nil, err
	}
	st, flags := normalizePIMInterface(body, run)
	return st, flags, nil
}

// normalizePIMInterface builds the canonical mapping from the PIM
// interface table plus the policy lines of the interface's running
// config, which the table does not carry completely. An interface
// without PIM yields an empty state.
func normalizePIMInterface(body gjson.Result, run string) (reconcile.State, reconcile.Flags) {
	flags := reconcile.Flags{flagJPBidir: false, flagIsAuth: false}
	rows := device.Rows(body.Get("TABLE_iod.ROW_iod"))
	if len(rows) == 0 {
		return reconcile.State{}, flags
	}
	row := rows[0]

	st := reconcile.State{
		"sparse":         true,
		"dr_prio":        row.Get("dr-priority").String(),
		"hello_interval": row.Get("hello-interval").String(),
		"border":         row.Get("is-border").Bool(),
	}
	flags[flagIsAuth] = row.Get("is-auth-configured").Bool()

	for _, m := range jpPolicyLine.FindAllStringSubmatch(run, -1) {
		ptype := "routemap"
		if m[1] != "" {
			ptype = "prefix"
		}
		name := m[2]
		switch strings.TrimSpace(m[3]) {
		case "in":
			st["jp_policy_in"] = name
			st["jp_type_in"] = ptype
		case "out":
			st["jp_policy_out"] = name
			st["jp_type_out"] = ptype
		default:
			// Directionless form applies to both directions as one line.
			st["jp_policy_in"] = name
			st["jp_type_in"] = ptype
			st["jp_policy_out"] = name
			st["jp_type_out"] = ptype
			flags[flagJPBidir] = true
		}
	}
	if m := nbrPolicyLine.FindStringSubmatch(run); m != nil {
		ptype := "routemap"
		if m[1] != "" {
			ptype = "prefix"
		}
		st["neighbor_policy"] = m[2]
		st["neighbor_type"] = ptype
	}

	return st, flags
}

func (*PIMInterface) Plan(req reconcile.PlanRequest) (*reconcile.Plan, error) {
	plan := reconcile.NewPlan()

	var cmds []string
	switch req.Intent {
	case reconcile.IntentAbsent:
		cmds = pimResetCommands(req.Existing, req.Flags)
		if req.Existing.Bool("sparse") {
			cmds = append(cmds, "no ip pim sparse-mode")
		}
	case reconcile.IntentDefault:
		cmds = pimResetCommands(req.Existing, req.Flags)
	default:
		cmds = pimConfigCommands(req.Delta, req.Proposed)
	}

	plan.AddContext("interface "+req.Key, cmds...)
	return plan, nil
}

// pimConfigCommands emits reconfiguration commands for the delta in a
// fixed field order. A policy command re-issues name and type together
// when either half changed.
func pimConfigCommands(delta, proposed reconcile.State) []string {
	var cmds []string

	if delta.Has("sparse") {
		if delta.Bool("sparse") {
			cmds = append(cmds, "ip pim sparse-mode")
		} else {
			cmds = append(cmds, "no ip pim sparse-mode")
		}
	}
	if delta.Has("dr_prio") {
		cmds = append(cmds, "ip pim dr-priority "+delta.String("dr_prio"))
	}
	if delta.Has("hello_interval") {
		cmds = append(cmds, "ip pim hello-interval "+delta.String("hello_interval"))
	}
	if delta.Has("hello_auth_key") {
		cmds = append(cmds, "ip pim hello-authentication ah-md5 "+delta.String("hello_auth_key"))
	}
	if delta.Has("border") {
		if delta.Bool("border") {
			cmds = append(cmds, "ip pim border")
		} else {
			cmds = append(cmds, "no ip pim border")
		}
	}
	if delta.Has("neighbor_policy") || delta.Has("neighbor_type") {
		cmds = append(cmds, pimPolicyCommand("neighbor-policy",
			proposed.String("neighbor_policy"), proposed.String("neighbor_type"), ""))
	}
	if delta.Has("jp_policy_in") || delta.Has("jp_type_in") {
		cmds = append(cmds, pimPolicyCommand("jp-policy",
			proposed.String("jp_policy_in"), proposed.String("jp_type_in"), "in"))
	}
	if delta.Has("jp_policy_out") || delta.Has("jp_type_out") {
		cmds = append(cmds, pimPolicyCommand("jp-policy",
			proposed.String("jp_policy_out"), proposed.String("jp_type_out"), "out"))
	}

	return cmds
}

// pimResetCommands emits default-reset commands for every configured
// non-default field, in a fixed order. Directionless join-prune policies
// are removed as the single line the device holds.
func pimResetCommands(existing reconcile.State, flags reconcile.Flags) []string {
	var cmds []string

	if v := existing.String("dr_prio"); v != "" && v != defaultDRPriority {
		cmds = append(cmds, "no ip pim dr-priority")
	}
	if flags[flagIsAuth] {
		cmds = append(cmds, "no ip pim hello-authentication ah-md5")
	}
	if v := existing.String("hello_interval"); v != "" && v != defaultHelloInterval {
		cmds = append(cmds, "no ip pim hello-interval")
	}
	if existing.Bool("border") {
		cmds = append(cmds, "no ip pim border")
	}
	if existing.Has("neighbor_policy") {
		cmds = append(cmds, "no "+pimPolicyCommand("neighbor-policy",
			existing.String("neighbor_policy"), existing.String("neighbor_type"), ""))
	}
	if flags[flagJPBidir] {
		if existing.Has("jp_policy_in") {
			cmds = append(cmds, "no "+pimPolicyCommand("jp-policy",
				existing.String("jp_policy_in"), existing.String("jp_type_in"), ""))
		}
	} else {
		if existing.Has("jp_policy_in") {
			cmds = append(cmds, "no "+pimPolicyCommand("jp-policy",
				existing.String("jp_policy_in"), existing.String("jp_type_in"), "in"))
		}
		if existing.Has("jp_policy_out") {
			cmds = append(cmds, "no "+pimPolicyCommand("jp-policy",
				existing.String("jp_policy_out"), existing.String("jp_type_out"), "out"))
		}
	}

	return cmds
}

// pimPolicyCommand renders a neighbor or join-prune policy command.
func pimPolicyCommand(kind, name, ptype, direction string) string {
	cmd := "ip pim " + kind + " "
	if ptype == "prefix" {
		cmd += "prefix-list "
	}
	cmd += name
	if direction != "" {
		cmd += " " + direction
	}
	return cmd
}
