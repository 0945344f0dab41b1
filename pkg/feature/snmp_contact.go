package feature

import (
	"context"
	"regexp"
	"strings"

	"github.com/nexcon-network/nexcon/pkg/device"
	"github.com/nexcon-network/nexcon/pkg/param"
	"github.com/nexcon-network/nexcon/pkg/reconcile"
	"github.com/nexcon-network/nexcon/pkg/util"
)

var snmpContactFields = reconcile.FieldSet{
	"contact": reconcile.KindString,
}

var snmpContactLine = regexp.MustCompile(`(?m)^snmp-server contact (.+)$`)

// SNMPContact reconciles the device's single sysContact string.
type SNMPContact struct{}

func init() { Register(&SNMPContact{}) }

func (*SNMPContact) Name() string { return "snmp-contact" }

func (*SNMPContact) Requires() []string { return nil }

func (*SNMPContact) Params() *param.Spec {
	return &param.Spec{
		Feature: "snmp-contact",
		Fields: []param.Field{
			{Name: "contact", Kind: param.String, Help: "sysContact string"},
		},
	}
}

// Key returns "". The contact is device-global.
func (*SNMPContact) Key(param.Values) string { return "" }

func (f *SNMPContact) BuildProposed(v param.Values, intent reconcile.Intent) (reconcile.State, error) {
	if err := f.Params().Validate(v); err != nil {
		return nil, err
	}

	st := reconcile.State{}
	if intent == reconcile.IntentPresent {
		contact := strings.TrimSpace(v.String("contact"))
		if contact == "" {
			return nil, util.NewValidationError("contact is required when state is present")
		}
		st["contact"] = contact
	}

	if err := snmpContactFields.Validate(st); err != nil {
		return nil, err
	}
	return st, nil
}

func (*SNMPContact) ReadExisting(ctx context.Context, dev device.Client, key string) (reconcile.State, reconcile.Flags, error) {
	run, err := dev.ShowText(ctx, "show running-config snmp")
	if err != nil {
		return nil, nil, err
	}
	return normalizeSNMPContact(run), reconcile.Flags{}, nil
}

func normalizeSNMPContact(run string) reconcile.State {
	st := reconcile.State{}
	if m := snmpContactLine.FindStringSubmatch(run); m != nil {
		st["contact"] = strings.TrimSpace(m[1])
	}
	return st
}

func (*SNMPContact) Plan(req reconcile.PlanRequest) (*reconcile.Plan, error) {
	plan := reconcile.NewPlan()

	switch req.Intent {
	case reconcile.IntentAbsent, reconcile.IntentDefault:
		if req.Existing.Has("contact") {
			plan.Add("no snmp-server contact")
		}
	default:
		if req.Delta.Has("contact") {
			plan.Add("snmp-server contact " + req.Delta.String("contact"))
		}
	}
	return plan, nil
}
