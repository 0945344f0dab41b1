package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nexcon-network/nexcon/pkg/audit"
	"github.com/nexcon-network/nexcon/pkg/device"
	"github.com/nexcon-network/nexcon/pkg/param"
	"github.com/nexcon-network/nexcon/pkg/reconcile"
)

// featureShort is the one-line help per feature command.
var featureShort = map[string]string{
	"snmp-community": "Reconcile an SNMP community",
	"snmp-contact":   "Reconcile the SNMP contact",
	"pim":            "Reconcile global PIM settings",
	"pim-interface":  "Reconcile PIM on an interface",
	"pim-rp-address": "Reconcile a PIM rendezvous point",
}

// featureCommand builds the cobra command for one registered feature.
// Flags are generated from the feature's parameter schema, so the CLI
// surface always matches what BuildProposed validates.
func featureCommand(f reconcile.Feature) *cobra.Command {
	spec := f.Params()
	var stateFlag string

	cmd := &cobra.Command{
		Use:   f.Name(),
		Short: featureShort[f.Name()],
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			intent, err := reconcile.ParseIntent(stateFlag)
			if err != nil {
				return err
			}

			// Collect only the flags the operator actually set, so that
			// presence and zero values stay distinguishable downstream.
			values := param.Values{}
			for _, field := range spec.Fields {
				name := flagName(field.Name)
				if !cmd.Flags().Changed(name) {
					continue
				}
				switch field.Kind {
				case param.String:
					v, _ := cmd.Flags().GetString(name)
					values[field.Name] = v
				case param.Bool:
					v, _ := cmd.Flags().GetBool(name)
					values[field.Name] = v
				case param.Int:
					v, _ := cmd.Flags().GetInt(name)
					values[field.Name] = v
				}
			}

			dev, err := connectDevice()
			if err != nil {
				return err
			}
			defer dev.Close()

			res, err := reconcileOn(cmd.Context(), dev, f, reconcile.Request{
				Values: values,
				Intent: intent,
			}, !executeMode)
			if err != nil {
				return err
			}
			return printResult(res)
		},
	}

	for _, field := range spec.Fields {
		name := flagName(field.Name)
		help := field.Help
		if len(field.Choices) > 0 {
			help = fmt.Sprintf("%s (%s)", help, strings.Join(field.Choices, "|"))
		}
		switch field.Kind {
		case param.String:
			cmd.Flags().String(name, "", help)
		case param.Bool:
			cmd.Flags().Bool(name, false, help)
		case param.Int:
			cmd.Flags().Int(name, 0, help)
		}
		if field.Required {
			cmd.MarkFlagRequired(name)
		}
	}
	cmd.Flags().StringVar(&stateFlag, "state", "present", "Desired state (present|absent|default)")

	return cmd
}

// flagName maps a schema parameter name to its CLI flag spelling.
func flagName(param string) string {
	return strings.ReplaceAll(param, "_", "-")
}

// reconcileOn runs one reconciliation pass against an open device and
// records the audit event, success or failure.
func reconcileOn(ctx context.Context, dev *device.Device, f reconcile.Feature, req reconcile.Request, check bool) (*reconcile.Result, error) {
	start := time.Now()
	driver := reconcile.NewDriver(dev, reconcile.CheckMode(check))
	res, err := driver.Run(ctx, f, req)
	if err != nil {
		audit.Log(audit.NewEvent(currentUser(), dev.Name(), f.Name()).
			WithIntent(req.Intent).
			WithKey(f.Key(req.Values)).
			WithCheckMode(check).
			WithError(err).
			WithDuration(time.Since(start)))
		return nil, err
	}
	audit.Log(audit.NewEvent(currentUser(), dev.Name(), f.Name()).
		WithResult(res).
		WithSuccess().
		WithDuration(time.Since(start)))
	return res, nil
}

// printResult renders one reconciliation report.
func printResult(r *reconcile.Result) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}

	if !r.Changed {
		fmt.Println(green("No changes required."))
		return nil
	}

	if r.CheckMode {
		fmt.Println("Changes to be applied:")
	} else {
		fmt.Println("Changes applied:")
	}
	printCommands(r.Commands)

	if r.CheckMode {
		printDryRunNotice()
	} else {
		fmt.Println("\n" + green("Changes applied successfully."))
	}
	return nil
}

// printCommands renders a flattened command plan, indenting commands
// nested under an interface context line.
func printCommands(commands []string) {
	indent := "  "
	for _, c := range commands {
		if strings.HasPrefix(c, "interface ") {
			fmt.Println("  " + cyan(c))
			indent = "    "
			continue
		}
		fmt.Println(indent + c)
	}
}
