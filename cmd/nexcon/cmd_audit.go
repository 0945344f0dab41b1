package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nexcon-network/nexcon/pkg/audit"
	"github.com/nexcon-network/nexcon/pkg/cli"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "View the reconciliation audit trail",
	Long: `View the audit trail of reconciliation runs.

Every run is logged, check mode included, with:
  - Timestamp and user
  - Device, feature, and entity key
  - Requested state and the planned commands
  - Whether the device was changed
  - Success/failure status

Examples:
  nexcon audit list --device nxos-sw01
  nexcon audit list --last 24h --changed
  nexcon audit list --user alice --failures`,
}

var (
	auditDevice   string
	auditUser     string
	auditFeature  string
	auditLast     string
	auditLimit    int
	auditFailures bool
	auditChanged  bool
)

var auditListCmd = &cobra.Command{
	Use:   "list",
	Short: "List audit events",
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := audit.Filter{
			Device:      auditDevice,
			User:        auditUser,
			Feature:     auditFeature,
			Limit:       auditLimit,
			FailureOnly: auditFailures,
			ChangedOnly: auditChanged,
		}

		// Parse --last duration
		if auditLast != "" {
			duration, err := time.ParseDuration(auditLast)
			if err != nil {
				return fmt.Errorf("invalid duration: %s", auditLast)
			}
			filter.StartTime = time.Now().Add(-duration)
		}

		events, err := audit.Query(filter)
		if err != nil {
			return fmt.Errorf("querying audit log: %w", err)
		}

		if jsonOutput {
			return json.NewEncoder(os.Stdout).Encode(events)
		}

		if len(events) == 0 {
			fmt.Println("No audit events found")
			return nil
		}

		t := cli.NewTable("TIMESTAMP", "USER", "DEVICE", "FEATURE", "STATE", "CHANGED", "STATUS")
		for _, event := range events {
			status := green("ok")
			if !event.Success {
				status = red("failed")
			} else if event.CheckMode {
				status = yellow("check")
			}

			changed := "-"
			if event.Changed {
				changed = "yes"
			}

			featureKey := event.Feature
			if event.Key != "" {
				featureKey = fmt.Sprintf("%s[%s]", event.Feature, event.Key)
			}

			t.Row(
				event.Timestamp.Format("2006-01-02 15:04:05"),
				event.User,
				event.Device,
				featureKey,
				event.Intent,
				changed,
				status,
			)
		}
		t.Flush()

		return nil
	},
}

func init() {
	auditListCmd.Flags().StringVar(&auditDevice, "device", "", "Filter by device")
	auditListCmd.Flags().StringVar(&auditUser, "user", "", "Filter by user")
	auditListCmd.Flags().StringVar(&auditFeature, "feature", "", "Filter by feature")
	auditListCmd.Flags().StringVar(&auditLast, "last", "", "Show events from last duration (e.g., 24h)")
	auditListCmd.Flags().IntVar(&auditLimit, "limit", 100, "Maximum events to show")
	auditListCmd.Flags().BoolVar(&auditFailures, "failures", false, "Show only failed runs")
	auditListCmd.Flags().BoolVar(&auditChanged, "changed", false, "Show only runs that changed the device")
	addOutputFlags(auditListCmd)

	auditCmd.AddCommand(auditListCmd)
}
