package feature

import (
	"context"
	"regexp"

	"github.com/nexcon-network/nexcon/pkg/device"
	"github.com/nexcon-network/nexcon/pkg/param"
	"github.com/nexcon-network/nexcon/pkg/reconcile"
	"github.com/nexcon-network/nexcon/pkg/util"
)

// impliedGroupList is what a bare rp-address line covers; the running
// config omits the selector entirely in that case.
const impliedGroupList = "224.0.0.0/4"

var pimRPFields = reconcile.FieldSet{
	"group_list":  reconcile.KindString,
	"prefix_list": reconcile.KindString,
	"route_map":   reconcile.KindString,
	"bidir":       reconcile.KindBool,
}

var rpAddressLine = regexp.MustCompile(
	`(?m)^ip pim rp-address (\S+)(?: group-list (\S+))?(?: prefix-list (\S+))?(?: route-map (\S+))?( bidir)?\s*$`)

// PIMRPAddress reconciles one static rendezvous point entry: the RP
// address, its group selector, and the bidir role. RPs carrying several
// lines reconcile against the first one.
type PIMRPAddress struct{}

func init() { Register(&PIMRPAddress{}) }

func (*PIMRPAddress) Name() string { return "pim-rp-address" }

func (*PIMRPAddress) Requires() []string { return []string{"pim"} }

func (*PIMRPAddress) Params() *param.Spec {
	return &param.Spec{
		Feature: "pim-rp-address",
		Fields: []param.Field{
			{Name: "rp_address", Kind: param.String, Required: true, Help: "rendezvous point address"},
			{Name: "group_list", Kind: param.String, Help: "multicast group range served by the RP"},
			{Name: "prefix_list", Kind: param.String, Help: "prefix list selecting groups"},
			{Name: "route_map", Kind: param.String, Help: "route map selecting groups"},
			{Name: "bidir", Kind: param.Bool, Help: "bidirectional shared trees"},
		},
		MutuallyExclusive: [][]string{{"group_list", "prefix_list", "route_map"}},
	}
}

func (*PIMRPAddress) Key(v param.Values) string {
	return v.String("rp_address")
}

func (f *PIMRPAddress) BuildProposed(v param.Values, intent reconcile.Intent) (reconcile.State, error) {
	if err := f.Params().Validate(v); err != nil {
		return nil, err
	}

	b := &util.ValidationBuilder{}
	b.Add(util.IsValidIPv4(v.String("rp_address")),
		"rp_address must be a valid IPv4 address")
	if v.Has("group_list") {
		b.Add(util.IsMulticastIPv4CIDR(v.String("group_list")),
			"group_list must be a multicast prefix")
	}
	if err := b.Build(); err != nil {
		return nil, err
	}

	st := reconcile.State{}
	for _, name := range []string{"group_list", "prefix_list", "route_map"} {
		if v.Has(name) {
			st[name] = v.String(name)
		}
	}
	if v.Has("bidir") {
		st["bidir"] = v.Bool("bidir")
	}
	// No selector means the RP serves the whole multicast range. Carrying
	// the implied range keeps a configured-with-defaults entry comparable
	// and distinct from an absent one.
	if !st.Has("prefix_list") && !st.Has("route_map") && st.String("group_list") == "" {
		st["group_list"] = impliedGroupList
	}

	if err := pimRPFields.Validate(st); err != nil {
		return nil, err
	}
	return st, nil
}

func (*PIMRPAddress) ReadExisting(ctx context.Context, dev device.Client, key string) (reconcile.State, reconcile.Flags, error) {
	run, err := dev.ShowText(ctx, "show running-config pim")
	if err != nil {
		return nil, nil, err
	}
	return normalizePIMRPAddress(run, key), reconcile.Flags{}, nil
}

// normalizePIMRPAddress maps the RP's first running-config line onto the
// canonical schema. An empty mapping means the RP is not configured.
func normalizePIMRPAddress(run, rp string) reconcile.State {
	for _, m := range rpAddressLine.FindAllStringSubmatch(run, -1) {
		if m[1] != rp {
			continue
		}
		st := reconcile.State{}
		switch {
		case m[2] != "":
			st["group_list"] = m[2]
		case m[3] != "":
			st["prefix_list"] = m[3]
		case m[4] != "":
			st["route_map"] = m[4]
		default:
			st["group_list"] = impliedGroupList
		}
		if m[5] != "" {
			st["bidir"] = true
		}
		return st
	}
	return reconcile.State{}
}

func (*PIMRPAddress) Plan(req reconcile.PlanRequest) (*reconcile.Plan, error) {
	plan := reconcile.NewPlan()

	switch req.Intent {
	case reconcile.IntentAbsent, reconcile.IntentDefault:
		if len(req.Existing) > 0 {
			plan.Add("no " + rpCommand(req.Key, req.Existing))
		}
	default:
		if len(req.Delta) == 0 {
			break
		}
		// The rp-address line is atomic: replace the whole entry when any
		// part of it changes.
		if len(req.Existing) > 0 {
			plan.Add("no " + rpCommand(req.Key, req.Existing))
		}
		plan.Add(rpCommand(req.Key, req.Proposed))
	}
	return plan, nil
}

// rpCommand renders one rp-address line from a canonical mapping. The
// implied group range stays implicit so the command matches what the
// device stores for a bare entry.
func rpCommand(rp string, st reconcile.State) string {
	cmd := "ip pim rp-address " + rp
	if v := st.String("group_list"); v != "" && v != impliedGroupList {
		cmd += " group-list " + v
	}
	if v := st.String("prefix_list"); v != "" {
		cmd += " prefix-list " + v
	}
	if v := st.String("route_map"); v != "" {
		cmd += " route-map " + v
	}
	if st.Bool("bidir") {
		cmd += " bidir"
	}
	return cmd
}
