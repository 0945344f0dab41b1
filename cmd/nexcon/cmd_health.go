package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nexcon-network/nexcon/pkg/cli"
	"github.com/nexcon-network/nexcon/pkg/health"
)

var healthChecks []string

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Run read-only health checks against a device",
	Long: `Run read-only health checks against a device.

Checks: interfaces (unexpected down ports), environment (power, fans,
temperature), resources (cpu and memory), pim-neighbors (adjacency
count when feature pim is enabled).

The command exits non-zero when any check reports critical.

Examples:
  nexcon -d nxos-sw01 health
  nexcon -d nxos-sw01 health --check interfaces --check resources
  nexcon -d nxos-sw01 health --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dev, err := connectDevice()
		if err != nil {
			return err
		}
		defer dev.Close()

		checker := health.NewChecker()
		if len(healthChecks) > 0 {
			if err := checker.Only(healthChecks); err != nil {
				return err
			}
		}
		report := checker.RunAll(cmd.Context(), dev)

		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return err
			}
		} else {
			for _, res := range report.Results {
				fmt.Printf("%s %s  %s\n", cli.DotPad(res.Check, 16), healthStatus(res.Status), res.Message)
			}
			fmt.Printf("\nOverall: %s\n", healthStatus(report.Overall))
		}

		if report.Overall == health.StatusCritical {
			return fmt.Errorf("health: critical")
		}
		return nil
	},
}

// healthStatus renders a status with the usual colors.
func healthStatus(s health.Status) string {
	switch s {
	case health.StatusOK:
		return green("ok")
	case health.StatusWarning:
		return yellow("warning")
	case health.StatusCritical:
		return red("critical")
	default:
		return string(s)
	}
}

func init() {
	healthCmd.Flags().StringArrayVar(&healthChecks, "check", nil, "Run only the named check (repeatable)")
}
