package feature

import (
	"context"

	"github.com/tidwall/gjson"

	"github.com/nexcon-network/nexcon/pkg/device"
	"github.com/nexcon-network/nexcon/pkg/param"
	"github.com/nexcon-network/nexcon/pkg/reconcile"
	"github.com/nexcon-network/nexcon/pkg/util"
)

// Built-in groups the ro/rw shorthand maps to.
const (
	groupReadOnly  = "network-operator"
	groupReadWrite = "network-admin"
)

// snmpCommunityFields is the canonical schema for one community entry.
var snmpCommunityFields = reconcile.FieldSet{
	"group": reconcile.KindString,
	"acl":   reconcile.KindString,
}

// SNMPCommunity reconciles snmp-server community entries: the group the
// community belongs to and the ACL filtering its requests.
type SNMPCommunity struct{}

func init() { Register(&SNMPCommunity{}) }

func (*SNMPCommunity) Name() string { return "snmp-community" }

// SNMP is always available on NX-OS; no feature gate.
func (*SNMPCommunity) Requires() []string { return nil }

func (*SNMPCommunity) Params() *param.Spec {
	return &param.Spec{
		Feature: "snmp-community",
		Fields: []param.Field{
			{Name: "community", Kind: param.String, Required: true, Help: "community string"},
			{Name: "access", Kind: param.String, Choices: []string{"ro", "rw"}, Help: "access mode, shorthand for the built-in groups"},
			{Name: "group", Kind: param.String, Help: "group the community belongs to"},
			{Name: "acl", Kind: param.String, Help: "ACL filtering requests using this community"},
		},
		MutuallyExclusive: [][]string{{"access", "group"}},
		RequireOneOf:      [][]string{{"access", "group"}},
	}
}

func (*SNMPCommunity) Key(v param.Values) string {
	return v.String("community")
}

func (f *SNMPCommunity) BuildProposed(v param.Values, intent reconcile.Intent) (reconcile.State, error) {
	if err := f.Params().Validate(v); err != nil {
		return nil, err
	}
	if intent == reconcile.IntentDefault {
		return nil, util.NewValidationError("snmp-community supports state present or absent")
	}

	st := reconcile.State{}
	switch {
	case v.Has("group"):
		st["group"] = v.String("group")
	case v.String("access") == "rw":
		st["group"] = groupReadWrite
	case v.String("access") == "ro":
		st["group"] = groupReadOnly
	}
	if v.Has("acl") {
		st["acl"] = v.String("acl")
	}

	if err := snmpCommunityFields.Validate(st); err != nil {
		return nil, err
	}
	return st, nil
}

func (*SNMPCommunity) ReadExisting(ctx context.Context, dev device.Client, key string) (reconcile.State, reconcile.Flags, error) {
	body, err := dev.ShowJSON(ctx, "show snmp community")
	if err != nil {
		return nil, nil, err
	}
	return normalizeSNMPCommunity(body, key), reconcile.Flags{}, nil
}

// normalizeSNMPCommunity maps the named community's table row onto the
// canonical schema. An unknown community yields an empty state.
func normalizeSNMPCommunity(body gjson.Result, name string) reconcile.State {
	st := reconcile.State{}
	for _, row := range device.Rows(body.Get("TABLE_snmp_community.ROW_snmp_community")) {
		if row.Get("community_name").String() != name {
			continue
		}
		if group := row.Get("grouporaccess").String(); group != "" {
			st["group"] = group
		}
		// The table shows "-" for communities without an ACL.
		if acl := row.Get("aclfilter").String(); acl != "" && acl != "-" {
			st["acl"] = acl
		}
		break
	}
	return st
}

func (*SNMPCommunity) Plan(req reconcile.PlanRequest) (*reconcile.Plan, error) {
	plan := reconcile.NewPlan()

	if req.Intent == reconcile.IntentAbsent {
		if len(req.Existing) > 0 {
			plan.Add("no snmp-server community " + req.Key)
		}
		return plan, nil
	}

	var cmds []string
	if req.Delta.Has("group") {
		cmds = append(cmds, "snmp-server community "+req.Key+" group "+req.Delta.String("group"))
	}
	if req.Delta.Has("acl") {
		cmds = append(cmds, "snmp-server community "+req.Key+" use-acl "+req.Delta.String("acl"))
	}
	plan.Add(cmds...)
	return plan, nil
}
