package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nexcon-network/nexcon/pkg/audit"
)

var runCmd = &cobra.Command{
	Use:   "run <command>...",
	Short: "Submit raw configuration commands",
	Long: `Submit raw configuration commands through the same submission path
feature reconciliation uses. All arguments are delivered as one batch,
in argument order. Dry-run by default; -x executes.

Raw commands bypass state comparison: nexcon does not check whether the
device already matches, so repeated runs repeat the commands.

Examples:
  nexcon -d nxos-sw01 run "snmp-server location lab-3"
  nexcon -d nxos-sw01 run "interface Ethernet1/1" "ip pim sparse-mode" -x`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if deviceName == "" {
			return fmt.Errorf("device required: use -d <device> or set a default (nexcon settings set device <name>)")
		}

		start := time.Now()

		if !executeMode {
			fmt.Println("Commands to be submitted:")
			printCommands(args)
			audit.Log(audit.NewEvent(currentUser(), deviceName, "run").
				WithCommands(args).
				WithChanged(true).
				WithCheckMode(true).
				WithSuccess().
				WithDuration(time.Since(start)))
			printDryRunNotice()
			return nil
		}

		dev, err := connectDevice()
		if err != nil {
			return err
		}
		defer dev.Close()

		if err := dev.Submit(cmd.Context(), strings.Join(args, "\n")); err != nil {
			audit.Log(audit.NewEvent(currentUser(), deviceName, "run").
				WithCommands(args).
				WithError(err).
				WithDuration(time.Since(start)))
			return err
		}
		audit.Log(audit.NewEvent(currentUser(), deviceName, "run").
			WithCommands(args).
			WithChanged(true).
			WithSuccess().
			WithDuration(time.Since(start)))

		fmt.Printf("Submitted %d commands.\n", len(args))
		return nil
	},
}
