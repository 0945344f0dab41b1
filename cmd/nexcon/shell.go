package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/nexcon-network/nexcon/pkg/cli"
	"github.com/nexcon-network/nexcon/pkg/device"
	"github.com/nexcon-network/nexcon/pkg/feature"
	"github.com/nexcon-network/nexcon/pkg/health"
	"github.com/nexcon-network/nexcon/pkg/reconcile"
)

// Shell provides an interactive REPL with a persistent device connection.
type Shell struct {
	dev      *device.Device
	name     string
	rl       *readline.Instance
	running  bool
	commands map[string]func(args []string)
}

// NewShell creates a new interactive shell for the given device.
func NewShell(dev *device.Device, name string) *Shell {
	s := &Shell{
		dev:     dev,
		name:    name,
		running: true,
	}
	s.commands = map[string]func(args []string){
		"check":    func(args []string) { s.cmdReconcile(args, true) },
		"apply":    func(args []string) { s.cmdReconcile(args, false) },
		"run":      s.cmdRun,
		"facts":    func([]string) { s.cmdFacts() },
		"health":   func([]string) { s.cmdHealth() },
		"features": func([]string) { s.cmdFeatures() },
		"help":     func([]string) { s.cmdHelp() },
		"?":        func([]string) { s.cmdHelp() },
	}
	return s
}

// Run starts the interactive loop. It returns when the operator exits
// or closes the input stream.
func (s *Shell) Run() error {
	var err error
	s.rl, err = readline.NewEx(&readline.Config{
		Prompt:          s.name + "> ",
		HistoryFile:     os.ExpandEnv("$HOME/.nexcon_history"),
		AutoComplete:    shellCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("initializing readline: %w", err)
	}
	defer s.rl.Close()

	fmt.Printf("Connected to %s.\n", bold(s.name))
	fmt.Println("Type 'help' for available commands, 'exit' to disconnect.")

	for s.running {
		line, err := s.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				if len(line) == 0 {
					break
				}
				continue
			} else if err == io.EOF {
				break
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		args := strings.Fields(line)
		cmd := args[0]

		switch cmd {
		case "exit", "quit", "q":
			s.running = false
		default:
			if fn, ok := s.commands[cmd]; ok {
				fn(args[1:])
			} else {
				fmt.Printf("Unknown command: %s (type 'help' for commands)\n", cmd)
			}
		}
	}

	fmt.Println("Disconnecting...")
	return nil
}

// cmdReconcile handles both check and apply. Both preview the plan; apply
// additionally confirms and submits it.
func (s *Shell) cmdReconcile(args []string, checkOnly bool) {
	if len(args) == 0 {
		fmt.Println("Usage: check|apply <feature> [param=value ...] [state=present|absent|default]")
		return
	}

	f, req, err := parseShellRequest(args)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	ctx := context.Background()

	res, err := reconcileOn(ctx, s.dev, f, req, true)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if !res.Changed {
		fmt.Println(green("No changes required."))
		return
	}

	fmt.Println("Changes to be applied:")
	printCommands(res.Commands)

	if checkOnly {
		return
	}
	if !s.confirmExecute() {
		fmt.Println("Cancelled.")
		return
	}

	if _, err := reconcileOn(ctx, s.dev, f, req, false); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Println(green("Changes applied successfully."))
}

// cmdRun submits raw configuration lines after confirmation.
func (s *Shell) cmdRun(args []string) {
	if len(args) == 0 {
		fmt.Println("Usage: run <config command>")
		return
	}

	command := strings.Join(args, " ")
	fmt.Printf("Will submit: %s\n", command)
	if !s.confirmExecute() {
		fmt.Println("Cancelled.")
		return
	}

	if err := s.dev.Submit(context.Background(), command); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Println(green("Submitted."))
}

// cmdFacts displays device identity.
func (s *Shell) cmdFacts() {
	facts, err := device.GatherFacts(context.Background(), s.dev)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	printFacts(facts)
}

// cmdHealth runs the default health checks.
func (s *Shell) cmdHealth() {
	report := health.NewChecker().RunAll(context.Background(), s.dev)
	for _, res := range report.Results {
		fmt.Printf("%s %s  %s\n", cli.DotPad(res.Check, 16), healthStatus(res.Status), res.Message)
	}
	fmt.Printf("Overall: %s\n", healthStatus(report.Overall))
}

// cmdFeatures lists the registered features and their parameters.
func (s *Shell) cmdFeatures() {
	for _, name := range feature.Names() {
		f, err := feature.Lookup(name)
		if err != nil {
			continue
		}
		fmt.Printf("%s\n", bold(name))
		for _, field := range f.Params().Fields {
			required := ""
			if field.Required {
				required = " (required)"
			}
			fmt.Printf("  %-18s %s%s\n", field.Name, field.Help, required)
		}
	}
}

// cmdHelp displays available commands.
func (s *Shell) cmdHelp() {
	fmt.Println("Commands:")
	fmt.Println("  check <feature> [param=value ...]   Preview reconciliation (no changes)")
	fmt.Println("  apply <feature> [param=value ...]   Reconcile with confirmation prompt")
	fmt.Println("  run <command>                       Submit a raw config command")
	fmt.Println("  facts                               Show device identity")
	fmt.Println("  health                              Run read-only health checks")
	fmt.Println("  features                            List features and their parameters")
	fmt.Println("  help                                Show this help")
	fmt.Println("  exit                                Disconnect")
	fmt.Println()
	fmt.Println("Pass state=absent or state=default to remove or reset configuration:")
	fmt.Println("  apply snmp-community community=ops state=absent")
}

// confirmExecute prompts the operator to confirm execution.
func (s *Shell) confirmExecute() bool {
	s.rl.SetPrompt("Execute? [y/N]: ")
	defer s.rl.SetPrompt(s.name + "> ")

	line, err := s.rl.Readline()
	if err != nil {
		return false
	}
	line = strings.TrimSpace(strings.ToLower(line))
	return line == "y" || line == "yes"
}

// parseShellRequest resolves "<feature> key=value ..." into a feature and
// a typed reconcile request. The state key selects the intent.
func parseShellRequest(args []string) (reconcile.Feature, reconcile.Request, error) {
	f, err := feature.Lookup(args[0])
	if err != nil {
		return nil, reconcile.Request{}, err
	}

	raw := map[string]string{}
	state := "present"
	for _, arg := range args[1:] {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, reconcile.Request{}, fmt.Errorf("expected key=value, got %q", arg)
		}
		if key == "state" {
			state = value
			continue
		}
		raw[key] = value
	}

	intent, err := reconcile.ParseIntent(state)
	if err != nil {
		return nil, reconcile.Request{}, err
	}
	values, err := f.Params().CoerceStrings(raw)
	if err != nil {
		return nil, reconcile.Request{}, err
	}
	return f, reconcile.Request{Values: values, Intent: intent}, nil
}

// shellCompleter builds tab completion over commands and feature names.
func shellCompleter() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem("check", featureItems()...),
		readline.PcItem("apply", featureItems()...),
		readline.PcItem("run"),
		readline.PcItem("facts"),
		readline.PcItem("health"),
		readline.PcItem("features"),
		readline.PcItem("help"),
		readline.PcItem("exit"),
		readline.PcItem("quit"),
	)
}

func featureItems() []readline.PrefixCompleterInterface {
	items := make([]readline.PrefixCompleterInterface, 0, len(feature.Names()))
	for _, name := range feature.Names() {
		items = append(items, readline.PcItem(name))
	}
	return items
}

// shellCmd is the cobra command for the interactive shell.
var shellCmd = &cobra.Command{
	Use:     "shell",
	Short:   "Interactive shell with persistent device connection",
	Aliases: []string{"sh"},
	Long: `Start an interactive shell with a persistent connection to a device.

The shell provides a REPL with:
  - Persistent device connection (connected on entry, disconnected on exit)
  - check/apply commands taking feature parameters as key=value pairs
  - Confirmation prompts before any change is submitted
  - Tab completion over commands and feature names

Examples:
  nexcon -d nxos-sw01 shell
  nxos-sw01> check pim-interface interface=Ethernet1/1 sparse=true
  nxos-sw01> apply snmp-community community=ops group=network-operator`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dev, err := connectDevice()
		if err != nil {
			return err
		}
		defer dev.Close()

		sh := NewShell(dev, deviceName)
		return sh.Run()
	},
}
