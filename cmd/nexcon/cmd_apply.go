package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nexcon-network/nexcon/pkg/cli"
	"github.com/nexcon-network/nexcon/pkg/device"
	"github.com/nexcon-network/nexcon/pkg/feature"
	"github.com/nexcon-network/nexcon/pkg/param"
	"github.com/nexcon-network/nexcon/pkg/reconcile"
)

var applyFile string

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply a task file",
	Long: `Apply a YAML task file. Each task names a feature, a desired state,
and parameters; tasks run in file order, one reconciliation pass each,
stopping at the first error. Dry-run by default; -x executes.

Task file format:

  defaults:
    device: nxos-sw01
    state: present
  tasks:
    - name: management community
      feature: snmp-community
      params: {community: ops, group: network-operator}
    - feature: pim-interface
      device: nxos-sw02
      params: {interface: e1/1, sparse: true}

Examples:
  nexcon apply -f tasks.yaml
  nexcon apply -f tasks.yaml -x`,
	RunE: func(cmd *cobra.Command, args []string) error {
		tf, err := param.LoadTasks(applyFile)
		if err != nil {
			return err
		}

		// One connection per device, reused across tasks.
		conns := map[string]*device.Device{}
		defer func() {
			for _, d := range conns {
				d.Close()
			}
		}()

		changed := 0
		for i, t := range tf.Tasks {
			label := t.Name
			if label == "" {
				label = t.Feature
			}
			label = fmt.Sprintf("%s @%s", label, t.Device)

			f, err := feature.Lookup(t.Feature)
			if err != nil {
				return taskFailed(i, label, err)
			}
			intent, err := reconcile.ParseIntent(t.State)
			if err != nil {
				return taskFailed(i, label, err)
			}
			values, err := f.Params().Coerce(t.Params)
			if err != nil {
				return taskFailed(i, label, err)
			}

			dev, ok := conns[t.Device]
			if !ok {
				dev, err = connectNamed(t.Device)
				if err != nil {
					return taskFailed(i, label, err)
				}
				conns[t.Device] = dev
			}

			res, err := reconcileOn(cmd.Context(), dev, f, reconcile.Request{
				Values: values,
				Intent: intent,
			}, !executeMode)
			if err != nil {
				return taskFailed(i, label, err)
			}

			status := green("ok")
			if res.Changed {
				status = yellow("changed")
				changed++
			}
			fmt.Printf("%s %s\n", cli.DotPad(label, 48), status)
		}

		fmt.Printf("\n%d tasks, %d changed.\n", len(tf.Tasks), changed)
		printDryRunNotice()
		return nil
	},
}

// taskFailed prints the failure line and wraps the error with the task's
// position for the exit message.
func taskFailed(i int, label string, err error) error {
	fmt.Printf("%s %s\n", cli.DotPad(label, 48), red("failed"))
	return fmt.Errorf("task %d (%s): %w", i+1, label, err)
}

func init() {
	applyCmd.Flags().StringVarP(&applyFile, "file", "f", "", "Task file (YAML)")
	applyCmd.MarkFlagRequired("file")
}
