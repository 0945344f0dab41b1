package reconcile

import "strings"

// Group is one ordered unit of a command plan: either a flat run of
// top-level configuration commands, or a context-entry command with
// commands nested under it (an interface stanza, for example).
type Group struct {
	// Context is the context-entry command ("interface Ethernet1/1").
	// Empty for flat groups.
	Context  string   `json:"context,omitempty"`
	Commands []string `json:"commands"`
}

// Plan is an ordered sequence of command groups produced by a feature
// planner. Group order and command order within a group are preserved
// exactly as appended; the device executes the flattened sequence in
// a single submission.
type Plan struct {
	groups []Group
}

// NewPlan creates an empty command plan.
func NewPlan() *Plan {
	return &Plan{}
}

// Add appends a flat group of top-level commands. Empty calls are ignored
// so planners can pass conditionally built slices without guarding.
func (p *Plan) Add(commands ...string) {
	if len(commands) == 0 {
		return
	}
	p.groups = append(p.groups, Group{Commands: commands})
}

// AddContext appends a group of commands nested under a context-entry
// command. The context line always precedes its nested commands in the
// flattened sequence. Ignored when commands is empty.
func (p *Plan) AddContext(context string, commands ...string) {
	if len(commands) == 0 {
		return
	}
	p.groups = append(p.groups, Group{Context: context, Commands: commands})
}

// IsEmpty returns true if no group carries a command.
func (p *Plan) IsEmpty() bool {
	return len(p.groups) == 0
}

// Groups returns the plan's groups in append order.
func (p *Plan) Groups() []Group {
	return p.groups
}

// Commands returns the flattened command sequence: for each group in
// order, the context line (when present) followed by the group's commands.
func (p *Plan) Commands() []string {
	var out []string
	for _, g := range p.groups {
		if g.Context != "" {
			out = append(out, g.Context)
		}
		out = append(out, g.Commands...)
	}
	return out
}

// Payload serializes the plan into the single configuration payload
// submitted to the device, one command per line.
func (p *Plan) Payload() string {
	return strings.Join(p.Commands(), "\n")
}

// String returns a human-readable representation of the plan.
func (p *Plan) String() string {
	if p.IsEmpty() {
		return "No changes"
	}

	var sb strings.Builder
	for _, g := range p.groups {
		indent := "  "
		if g.Context != "" {
			sb.WriteString(indent + g.Context + "\n")
			indent = "    "
		}
		for _, c := range g.Commands {
			sb.WriteString(indent + c + "\n")
		}
	}
	return sb.String()
}
