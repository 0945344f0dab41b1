package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nexcon-network/nexcon/pkg/cli"
	"github.com/nexcon-network/nexcon/pkg/device"
)

var factsCmd = &cobra.Command{
	Use:   "facts",
	Short: "Show device identity facts",
	Long: `Read device identity from show version: hostname, platform, NX-OS
version, serial number, and uptime.

Examples:
  nexcon -d nxos-sw01 facts
  nexcon -d nxos-sw01 facts --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dev, err := connectDevice()
		if err != nil {
			return err
		}
		defer dev.Close()

		facts, err := device.GatherFacts(cmd.Context(), dev)
		if err != nil {
			return err
		}

		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(facts)
		}

		printFacts(facts)
		return nil
	},
}

// printFacts renders device facts as dot-padded rows, skipping fields
// the platform did not report.
func printFacts(facts *device.Facts) {
	printFact := func(name, value string) {
		if value == "" {
			return
		}
		fmt.Printf("%s %s\n", cli.DotPad(name, 14), value)
	}
	printFact("Hostname", facts.Hostname)
	printFact("Platform", facts.Platform)
	printFact("Version", facts.Version)
	printFact("Serial", facts.Serial)
	printFact("BIOS", facts.BIOS)
	printFact("Uptime", facts.Uptime)
	printFact("Last reset", facts.LastReset)
}
