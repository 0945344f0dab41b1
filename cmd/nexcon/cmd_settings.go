package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nexcon-network/nexcon/pkg/cli"
	"github.com/nexcon-network/nexcon/pkg/settings"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage persistent settings",
	Long: `Manage persistent settings stored in ~/.nexcon/settings.json.

Settings provide defaults for context flags:
  - default_device:     Used when -d is not specified
  - inventory_path:     Inventory file location (-I flag default)
  - audit_log:          Audit log location
  - execute_by_default: Write commands execute without -x (lab use only)

Examples:
  nexcon settings show
  nexcon settings set device nxos-sw01
  nexcon settings set inventory /etc/nexcon/inventory.yaml
  nexcon settings clear`,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := settings.Load()
		if err != nil {
			return fmt.Errorf("loading settings: %w", err)
		}

		fmt.Printf("Settings file: %s\n\n", settings.DefaultSettingsPath())

		t := cli.NewTable("SETTING", "VALUE")

		printSetting := func(name, value string) {
			if value == "" {
				value = "(not set)"
			}
			t.Row(name, value)
		}

		printSetting("default_device", s.DefaultDevice)
		printSetting("inventory_path", s.InventoryPath)
		printSetting("audit_log", s.AuditLog)
		printSetting("execute_by_default", strconv.FormatBool(s.ExecuteByDefault))

		t.Flush()
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <setting> <value>",
	Short: "Set a setting value",
	Long: `Set a persistent setting value.

Available settings:
  device             - Default device name (-d flag default)
  inventory          - Inventory file location (-I flag default)
  audit-log          - Audit log location
  execute-by-default - Write commands execute without -x (true/false)

Examples:
  nexcon settings set device nxos-sw01
  nexcon settings set inventory /etc/nexcon/inventory.yaml
  nexcon settings set execute-by-default true`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		setting := args[0]
		value := args[1]

		s, err := settings.Load()
		if err != nil {
			s = &settings.Settings{}
		}

		switch setting {
		case "device", "default_device":
			s.SetDefaultDevice(value)
			fmt.Printf("Default device set to: %s\n", value)
		case "inventory", "inventory_path":
			s.SetInventoryPath(value)
			fmt.Printf("Inventory path set to: %s\n", value)
		case "audit-log", "audit_log":
			s.SetAuditLog(value)
			fmt.Printf("Audit log set to: %s\n", value)
		case "execute-by-default", "execute_by_default":
			on, err := strconv.ParseBool(value)
			if err != nil {
				return fmt.Errorf("execute-by-default must be true or false, got %q", value)
			}
			s.ExecuteByDefault = on
			if on {
				fmt.Println(yellow("Write commands will execute without -x."))
			} else {
				fmt.Println("Write commands are dry-run by default.")
			}
		default:
			return fmt.Errorf("unknown setting: %s (valid: device, inventory, audit-log, execute-by-default)", setting)
		}

		if err := s.Save(); err != nil {
			return fmt.Errorf("saving settings: %w", err)
		}

		return nil
	},
}

var settingsGetCmd = &cobra.Command{
	Use:   "get <setting>",
	Short: "Get a setting value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		setting := args[0]

		s, err := settings.Load()
		if err != nil {
			return fmt.Errorf("loading settings: %w", err)
		}

		var value string
		switch setting {
		case "device", "default_device":
			value = s.DefaultDevice
		case "inventory", "inventory_path":
			value = s.InventoryPath
		case "audit-log", "audit_log":
			value = s.AuditLog
		case "execute-by-default", "execute_by_default":
			value = strconv.FormatBool(s.ExecuteByDefault)
		default:
			return fmt.Errorf("unknown setting: %s (valid: device, inventory, audit-log, execute-by-default)", setting)
		}

		if value == "" {
			fmt.Println("(not set)")
		} else {
			fmt.Println(value)
		}
		return nil
	},
}

var settingsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear all settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := settings.Load()
		if err != nil {
			s = &settings.Settings{}
		}
		s.Clear()
		if err := s.Save(); err != nil {
			return fmt.Errorf("saving settings: %w", err)
		}
		fmt.Println("All settings cleared.")
		return nil
	},
}

var settingsPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show settings file path",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(settings.DefaultSettingsPath())
	},
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsClearCmd)
	settingsCmd.AddCommand(settingsPathCmd)
}
