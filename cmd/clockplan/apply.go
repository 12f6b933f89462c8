package main

import (
	"fmt"
	"io"

	"clocktree-go/clock/freq"
	"clocktree-go/clock/regblock"
	"clocktree-go/clock/solver"

	"github.com/spf13/cobra"
)

func newApplyCmd(sess *session) *cobra.Command {
	var (
		rf          requestFlags
		stuckReady  string
		stuckSwitch bool
		quiet       bool
	)
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Solve and apply a plan to the simulated RCC",
		Long: `Solve the request and run the sequencer against a simulated register
block, printing every register write in order. Fault flags make the
simulation misbehave so the rollback path can be inspected.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := rf.build()
			if err != nil {
				return err
			}
			p, err := solver.Solve(req)
			if err != nil {
				return explain(err)
			}
			c := sess.chip(p.Family)
			c.sim.ResetTrace()
			c.sim.Unstick()
			if stuckReady != "" {
				src, ok := freq.ParseSource(stuckReady)
				if !ok {
					return fmt.Errorf("unknown source %q", stuckReady)
				}
				c.sim.StickReady(src)
			}
			if stuckSwitch {
				c.sim.StickSwitch()
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "plan  ", p.String())
			snap, applyErr := c.seq.Apply(&p)
			if !quiet {
				printTrace(out, c.sim.Trace())
			}
			for _, v := range c.sim.Violations() {
				fmt.Fprintln(out, "VIOLATION", v)
			}
			c.sim.Unstick()
			if applyErr != nil {
				fmt.Fprintln(out, "rolled back; clocks unchanged:", c.store.Load().String())
				return explain(applyErr)
			}
			fmt.Fprintln(out, "result", snap.String())
			return nil
		},
	}
	rf.register(cmd)
	cmd.Flags().StringVar(&stuckReady, "stuck-ready", "", "oscillator whose ready flag never rises (hse, hsi, msi, pll)")
	cmd.Flags().BoolVar(&stuckSwitch, "stuck-switch", false, "SYSCLK switch status never follows SW")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "omit the write trace")
	return cmd
}

func printTrace(out io.Writer, trace []regblock.Write) {
	for i, w := range trace {
		fmt.Fprintf(out, "%3d  %#08x [%2d:%d] %#x -> %#x\n", i, w.Field.Addr, w.Field.Pos, w.Field.Width, w.Old, w.New)
	}
}
