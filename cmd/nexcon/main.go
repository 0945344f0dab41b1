// Nexcon - Cisco NX-OS Configuration Reconciler
//
// A CLI for declarative, idempotent configuration of NX-OS switches:
//   - One feature per run: read device state, diff, plan, apply
//   - Dry-run by default (preview the command plan, require -x to execute)
//   - NX-API (HTTP/HTTPS) and SSH CLI transports, selected per device
//   - Audit logging of every run, check mode included
//
// Pattern:
//
//	nexcon -d <device> <feature> [--param value ...] [--state present|absent|default] [-x]
//
// Context flags:
//
//	-d, --device     Device name from the inventory (or set default via: nexcon settings set device <name>)
//	-I, --inventory  Inventory file path
//
// Examples:
//
//	nexcon -d nxos-sw01 snmp-community --community ops --group network-operator
//	nexcon -d nxos-sw01 pim-interface --interface e1/1 --sparse --dr-prio 20 -x
//	nexcon -d nxos-sw01 pim-rp-address --rp-address 10.255.0.1 --state absent -x
//	nexcon -d nxos-sw01 facts
//	nexcon apply -f tasks.yaml -x
//	nexcon audit list --device nxos-sw01 --last 24h
package main

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/nexcon-network/nexcon/pkg/audit"
	"github.com/nexcon-network/nexcon/pkg/cli"
	"github.com/nexcon-network/nexcon/pkg/device"
	"github.com/nexcon-network/nexcon/pkg/feature"
	"github.com/nexcon-network/nexcon/pkg/inventory"
	"github.com/nexcon-network/nexcon/pkg/settings"
	"github.com/nexcon-network/nexcon/pkg/util"
	"github.com/nexcon-network/nexcon/pkg/version"
)

var (
	// Global context flags (select the device to operate on)
	deviceName    string // -d, --device
	inventoryPath string // -I, --inventory

	// Global option flags
	executeMode bool
	verbose     bool
	jsonOutput  bool

	// Global state
	userSettings *settings.Settings
	inv          *inventory.Inventory
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:               "nexcon",
	Short:             "Cisco NX-OS Configuration Reconciler",
	SilenceUsage:      true,
	SilenceErrors:     true,
	CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
	Long: `Nexcon reconciles declarative configuration against Cisco NX-OS switches.

Each feature command reads the device state, computes the minimal command
plan, and previews it. Write commands are dry-run by default; use -x to
execute.

  nexcon -d <device> <feature> [--param value ...] [-x]`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for certain commands
		if isSettingsOrHelp(cmd) {
			return nil
		}

		// Load user settings
		var err error
		userSettings, err = settings.Load()
		if err != nil {
			util.Warnf("Could not load settings: %v", err)
			userSettings = &settings.Settings{}
		}

		// Apply defaults from settings
		if deviceName == "" {
			deviceName = userSettings.DefaultDevice
		}
		if inventoryPath == "" {
			inventoryPath = userSettings.GetInventoryPath()
		}
		if userSettings.ExecuteByDefault {
			executeMode = true
		}

		// Set log level: quiet by default, verbose on -v
		if verbose {
			util.SetLogLevel("debug")
		} else {
			util.SetLogLevel("warn")
		}

		// Initialize audit logger
		auditPath := userSettings.AuditLog
		if auditPath == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				auditPath = "nexcon_audit.log"
			} else {
				auditPath = filepath.Join(home, ".nexcon", "audit.log")
			}
		}
		auditLogger, err := audit.NewFileLogger(auditPath, audit.RotationConfig{
			MaxSize:    10 * 1024 * 1024, // 10MB
			MaxBackups: 10,
		})
		if err != nil {
			util.Warnf("Could not initialize audit logging: %v", err)
		} else {
			audit.SetDefaultLogger(auditLogger)
		}

		return nil
	},
}

func init() {
	// Context flags (device selectors)
	rootCmd.PersistentFlags().StringVarP(&deviceName, "device", "d", "", "Device name from the inventory")
	rootCmd.PersistentFlags().StringVarP(&inventoryPath, "inventory", "I", "", "Inventory file path")

	// Option flags (global)
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	// Write flags (-x) and output flags (--json) are local to commands that
	// use them. Use addWriteFlags(cmd) and addOutputFlags(cmd) to register.

	rootCmd.AddGroup(
		&cobra.Group{ID: "feature", Title: "Feature Reconciliation:"},
		&cobra.Group{ID: "device", Title: "Device Operations:"},
		&cobra.Group{ID: "meta", Title: "Configuration & Meta:"},
	)

	// Feature commands are generated from the registry, one per feature,
	// with flags derived from the feature's parameter schema.
	for _, name := range feature.Names() {
		f, err := feature.Lookup(name)
		if err != nil {
			continue
		}
		cmd := featureCommand(f)
		cmd.GroupID = "feature"
		addWriteFlags(cmd)
		addOutputFlags(cmd)
		rootCmd.AddCommand(cmd)
	}
	applyCmd.GroupID = "feature"
	addWriteFlags(applyCmd)
	rootCmd.AddCommand(applyCmd)

	// Device Operations
	for _, cmd := range []*cobra.Command{factsCmd, healthCmd, devicesCmd, runCmd, shellCmd} {
		cmd.GroupID = "device"
		rootCmd.AddCommand(cmd)
	}
	addWriteFlags(runCmd)
	addOutputFlags(factsCmd)
	addOutputFlags(healthCmd)
	addOutputFlags(devicesCmd)

	// Configuration & Meta
	for _, cmd := range []*cobra.Command{settingsCmd, auditCmd, versionCmd} {
		cmd.GroupID = "meta"
		rootCmd.AddCommand(cmd)
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		if version.Version == "dev" {
			fmt.Println("nexcon dev build (use 'make build' for version info)")
		} else {
			fmt.Printf("nexcon %s (%s)\n", version.Version, version.GitCommit)
		}
	},
}

// ============================================================================
// Context Helpers - Resolve and connect the device under operation
// ============================================================================

// loadInventory loads the inventory file once per invocation.
func loadInventory() error {
	if inv != nil {
		return nil
	}
	loaded, err := inventory.Load(inventoryPath)
	if err != nil {
		return err
	}
	inv = loaded
	return nil
}

// connectDevice opens the device selected by -d.
func connectDevice() (*device.Device, error) {
	if deviceName == "" {
		return nil, fmt.Errorf("device required: use -d <device> or set a default (nexcon settings set device <name>)")
	}
	return connectNamed(deviceName)
}

// connectNamed opens a named inventory device, prompting for a password
// when the inventory carries none.
func connectNamed(name string) (*device.Device, error) {
	if err := loadInventory(); err != nil {
		return nil, err
	}
	entry, err := inv.Device(name)
	if err != nil {
		return nil, err
	}
	if entry.Password == "" {
		pw, err := promptPassword(fmt.Sprintf("Password for %s@%s: ", entry.Username, entry.Host))
		if err != nil {
			return nil, err
		}
		entry.Password = pw
	}
	return entry.Open()
}

// promptPassword reads a password from the terminal without echo.
func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(pw), nil
}

// currentUser is the identity recorded in audit events.
func currentUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "unknown"
}

// ============================================================================
// Output Helpers
// ============================================================================

// Helper to print dry-run notice
func printDryRunNotice() {
	if !executeMode {
		fmt.Println("\n" + yellow("DRY-RUN: No changes applied. Use -x to execute."))
	}
}

// isSettingsOrHelp checks whether cmd (or any ancestor) is a settings, help, or version command.
func isSettingsOrHelp(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "help", "version", "settings":
			return true
		}
	}
	return false
}

// addWriteFlags registers -x/--execute as a local flag.
func addWriteFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&executeMode, "execute", "x", false, "Execute changes (default is dry-run)")
}

// addOutputFlags registers --json as a local flag.
func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "JSON output")
}

// Color helpers, delegating to pkg/cli
func green(s string) string  { return cli.Green(s) }
func yellow(s string) string { return cli.Yellow(s) }
func red(s string) string    { return cli.Red(s) }
func cyan(s string) string   { return cli.Cyan(s) }
func bold(s string) string   { return cli.Bold(s) }
