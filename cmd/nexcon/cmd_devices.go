package main

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nexcon-network/nexcon/pkg/cli"
	"github.com/nexcon-network/nexcon/pkg/inventory"
)

var devicesTag string

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List inventory devices",
	Long: `List the devices defined in the inventory file, in file order.

Examples:
  nexcon devices
  nexcon devices --tag core`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := loadInventory(); err != nil {
			return err
		}

		var devs []*inventory.Device
		if devicesTag != "" {
			devs = inv.WithTag(devicesTag)
		} else {
			devs = inv.Devices()
		}

		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(devs)
		}

		t := cli.NewTable("NAME", "HOST", "TRANSPORT", "TAGS")
		for _, d := range devs {
			t.Row(d.Name, d.Host, d.Transport, strings.Join(d.Tags, ","))
		}
		t.Flush()
		return nil
	},
}

func init() {
	devicesCmd.Flags().StringVar(&devicesTag, "tag", "", "Only devices carrying this tag")
}
