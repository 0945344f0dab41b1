package feature

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/nexcon-network/nexcon/pkg/device"
	"github.com/nexcon-network/nexcon/pkg/param"
	"github.com/nexcon-network/nexcon/pkg/reconcile"
	"github.com/nexcon-network/nexcon/pkg/util"
)

// ssmDefault marks the device's implied default range (232.0.0.0/8),
// which the running config does not show as an explicit line.
const ssmDefault = "default"

var pimFields = reconcile.FieldSet{
	"ssm_range": reconcile.KindString,
}

var ssmRangeLine = regexp.MustCompile(`(?m)^ip pim ssm range (.+)$`)

// PIM reconciles device-global PIM configuration: the SSM group range.
type PIM struct{}

func init() { Register(&PIM{}) }

func (*PIM) Name() string { return "pim" }

func (*PIM) Requires() []string { return []string{"pim"} }

func (*PIM) Params() *param.Spec {
	return &param.Spec{
		Feature: "pim",
		Fields: []param.Field{
			{Name: "ssm_range", Kind: param.String, Required: true,
				Help: "SSM group ranges (comma or space separated), or default, or none"},
		},
	}
}

// Key returns "": global PIM state has no entity key.
func (*PIM) Key(param.Values) string { return "" }

func (f *PIM) BuildProposed(v param.Values, intent reconcile.Intent) (reconcile.State, error) {
	if err := f.Params().Validate(v); err != nil {
		return nil, err
	}

	value, err := normalizeSSMRange(v.String("ssm_range"))
	if err != nil {
		return nil, err
	}

	st := reconcile.State{"ssm_range": value}
	if err := pimFields.Validate(st); err != nil {
		return nil, err
	}
	return st, nil
}

// normalizeSSMRange canonicalizes an operator-supplied range: keywords
// pass through alone, prefixes are validated as multicast CIDRs and
// sorted so ordering differences never show up as a delta.
func normalizeSSMRange(raw string) (string, error) {
	tokens := strings.Fields(strings.ReplaceAll(raw, ",", " "))
	if len(tokens) == 0 {
		return "", util.NewValidationError("ssm_range must not be empty")
	}

	b := &util.ValidationBuilder{}
	for _, tok := range tokens {
		if tok == ssmDefault || tok == "none" {
			b.Add(len(tokens) == 1, "ssm_range keyword "+tok+" cannot be combined with prefixes")
			continue
		}
		if !util.IsMulticastIPv4CIDR(tok) {
			b.AddErrorf("ssm_range %q is not a multicast prefix", tok)
		}
	}
	if err := b.Build(); err != nil {
		return "", err
	}

	if len(tokens) == 1 {
		return tokens[0], nil
	}
	sort.Strings(tokens)
	return strings.Join(tokens, " "), nil
}

func (*PIM) ReadExisting(ctx context.Context, dev device.Client, _ string) (reconcile.State, reconcile.Flags, error) {
	run, err := dev.ShowText(ctx, "show running-config pim")
	if err != nil {
		return nil, nil, err
	}
	return normalizePIM(run), reconcile.Flags{}, nil
}

// normalizePIM maps the running config onto the canonical schema. No
// explicit range line means the device runs its implied default.
func normalizePIM(run string) reconcile.State {
	m := ssmRangeLine.FindStringSubmatch(run)
	if m == nil {
		return reconcile.State{"ssm_range": ssmDefault}
	}
	tokens := strings.Fields(m[1])
	if len(tokens) > 1 {
		sort.Strings(tokens)
	}
	return reconcile.State{"ssm_range": strings.Join(tokens, " ")}
}

func (*PIM) Plan(req reconcile.PlanRequest) (*reconcile.Plan, error) {
	plan := reconcile.NewPlan()
	current := req.Existing.String("ssm_range")

	switch req.Intent {
	case reconcile.IntentAbsent, reconcile.IntentDefault:
		if current != ssmDefault && current != "" {
			plan.Add("no ip pim ssm range " + current)
		}
	default:
		if !req.Delta.Has("ssm_range") {
			break
		}
		if want := req.Delta.String("ssm_range"); want == ssmDefault {
			// Delta fired, so an explicit range is configured; remove it
			// to fall back to the implied default.
			plan.Add("no ip pim ssm range " + current)
		} else {
			plan.Add("ip pim ssm range " + want)
		}
	}
	return plan, nil
}
