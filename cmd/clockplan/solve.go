package main

import (
	"encoding/json"
	"fmt"

	"clocktree-go/clock/solver"
	"clocktree-go/errcode"

	"github.com/spf13/cobra"
)

// planView is the JSON form of a plan.
type planView struct {
	Family   string            `json:"family"`
	Source   string            `json:"source"`
	Input    string            `json:"input"`
	InputHz  uint32            `json:"input_hz"`
	SysClkHz uint32            `json:"sysclk_hz"`
	PLL      *pllView          `json:"pll,omitempty"`
	Buses    map[string]busRow `json:"buses"`
	Latency  uint32            `json:"latency"`
}

type pllView struct {
	M, N, R, Q, P uint32
	VCOHz         uint32 `json:"vco_hz"`
	QHz           uint32 `json:"q_hz,omitempty"`
	PHz           uint32 `json:"p_hz,omitempty"`
}

type busRow struct {
	Hz  uint32 `json:"hz"`
	Div uint32 `json:"div"`
	Max uint32 `json:"max_hz"`
}

func viewOf(p *solver.Plan) planView {
	v := planView{
		Family:   p.Family.Name,
		Source:   p.Source.String(),
		Input:    p.Input().String(),
		InputHz:  hz(p.Freqs.Input),
		SysClkHz: hz(p.Freqs.SysClk),
		Buses:    map[string]busRow{},
		Latency:  p.Latency,
	}
	if p.PLL.Enabled() {
		v.PLL = &pllView{
			M: p.PLL.M, N: p.PLL.N, R: p.PLL.R, Q: p.PLL.Q, P: p.PLL.P,
			VCOHz: hz(p.Freqs.VCO), QHz: hz(p.Freqs.PLLQ), PHz: hz(p.Freqs.PLLP),
		}
	}
	for _, b := range p.Family.Buses {
		v.Buses[b.Bus.String()] = busRow{Hz: hz(p.Freqs.Bus[b.Bus]), Div: p.Div[b.Bus], Max: hz(p.Ceilings[b.Bus])}
	}
	return v
}

func newSolveCmd(sess *session) *cobra.Command {
	var (
		rf         requestFlags
		asJSON     bool
		candidates int
		rediscover bool
	)
	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Compute a clock plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := rf.build()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if candidates > 0 {
				plans, err := solver.Candidates(req, candidates)
				if err != nil {
					return explain(err)
				}
				for i := range plans {
					fmt.Fprintf(out, "%2d  %s\n", i+1, plans[i].String())
				}
				return nil
			}
			p, err := solver.Solve(req)
			if err != nil {
				return explain(err)
			}
			if rediscover {
				if p, err = solver.Rediscover(p); err != nil {
					return explain(err)
				}
			}
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(viewOf(&p))
			}
			printPlan(cmd, &p)
			return nil
		},
	}
	rf.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the plan as JSON")
	cmd.Flags().IntVar(&candidates, "candidates", 0, "list the N best plans instead of one")
	cmd.Flags().BoolVar(&rediscover, "rediscover", false, "re-solve from the plan's own frequencies")
	return cmd
}

func printPlan(cmd *cobra.Command, p *solver.Plan) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "family   %s (%s)\n", p.Family.Name, p.Family.Part)
	fmt.Fprintf(out, "source   %s from %s %s\n", p.Source, p.Input(), p.Freqs.Input)
	if p.PLL.Enabled() {
		fmt.Fprintf(out, "pll      m=%d n=%d r=%d vco=%s", p.PLL.M, p.PLL.N, p.PLL.R, p.Freqs.VCO)
		if p.PLL.Q != 0 {
			fmt.Fprintf(out, " q=%d (%s)", p.PLL.Q, p.Freqs.PLLQ)
		}
		if p.PLL.P != 0 {
			fmt.Fprintf(out, " p=%d (%s)", p.PLL.P, p.Freqs.PLLP)
		}
		fmt.Fprintln(out)
	}
	fmt.Fprintf(out, "sysclk   %s\n", p.Freqs.SysClk)
	for _, b := range p.Family.Buses {
		fmt.Fprintf(out, "%-8s %s /%d (max %s)\n", b.Bus, p.Freqs.Bus[b.Bus], p.Div[b.Bus], p.Ceilings[b.Bus])
	}
	fmt.Fprintf(out, "flash    %d wait states\n", p.Latency)
}

// explain prefixes the stable error code so scripts can match on it.
func explain(err error) error {
	return fmt.Errorf("%s: %w", errcode.Of(err), err)
}
