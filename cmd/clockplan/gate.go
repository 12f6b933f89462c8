package main

import (
	"fmt"

	"clocktree-go/clock/family"

	"github.com/spf13/cobra"
)

func newGateCmd(sess *session) *cobra.Command {
	var famName string
	cmd := &cobra.Command{
		Use:   "gate <enable|disable|reset|status> <periph>",
		Short: "Drive a peripheral clock gate on the simulated chip",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, ok := family.ByName(famName)
			if !ok {
				return fmt.Errorf("unknown family %q", famName)
			}
			id, ok := family.ParseID(args[1])
			if !ok {
				return fmt.Errorf("bad peripheral name %q", args[1])
			}
			c := sess.chip(f)
			var err error
			switch args[0] {
			case "enable":
				err = c.gate.Enable(id)
			case "disable":
				err = c.gate.Disable(id)
			case "reset":
				err = c.gate.Reset(id)
			case "status":
			default:
				return fmt.Errorf("unknown verb %q", args[0])
			}
			if err != nil {
				return explain(err)
			}
			loc, err := c.gate.Loc(id)
			if err != nil {
				return explain(err)
			}
			on, _ := c.gate.Enabled(id)
			fmt.Fprintf(cmd.OutOrStdout(), "%s on %s: enabled=%v clock=%s\n", id, loc.Bus, on, c.store.Load().Peripheral(loc))
			return nil
		},
	}
	cmd.Flags().StringVar(&famName, "family", "l4", "chip family")
	return cmd
}
