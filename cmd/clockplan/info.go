package main

import (
	"fmt"
	"text/tabwriter"

	"clocktree-go/clock/family"
	"clocktree-go/clock/freq"

	"github.com/spf13/cobra"
)

func newFamiliesCmd(sess *session) *cobra.Command {
	return &cobra.Command{
		Use:   "families",
		Short: "List supported families and their limits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "FAMILY\tPART\tSYSMAX\tHSE\tSOURCES\tBUSES\tVCO")
			for _, name := range family.Names() {
				f, _ := family.ByName(name)
				srcs := ""
				for s := freq.Source(1); int(s) < freq.NumSources; s++ {
					if f.SysSource(s) {
						if srcs != "" {
							srcs += ","
						}
						srcs += s.String()
					}
				}
				buses := ""
				for _, b := range f.Buses {
					if buses != "" {
						buses += " "
					}
					buses += b.Bus.String() + "<=" + b.Max.String()
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s-%s\t%s\t%s\t%s-%s\n",
					f.Name, f.Part, f.SysMax, f.HSEMin, f.HSEMax, srcs, buses, f.PLL.VCOMin, f.PLL.VCOMax)
			}
			return w.Flush()
		},
	}
}

func newPeriphsCmd(sess *session) *cobra.Command {
	return &cobra.Command{
		Use:   "periphs <family>",
		Short: "List a family's peripheral clock gates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, ok := family.ByName(args[0])
			if !ok {
				return fmt.Errorf("unknown family %q", args[0])
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PERIPH\tBUS\tENABLE\tRESET")
			for _, e := range f.Periphs {
				rst := "-"
				if e.Loc.Reset.Valid() {
					rst = fmt.Sprintf("%#08x.%d", e.Loc.Reset.Addr, e.Loc.Reset.Pos)
				}
				fmt.Fprintf(w, "%s\t%s\t%#08x.%d\t%s\n", e.ID, e.Loc.Bus, e.Loc.Enable.Addr, e.Loc.Enable.Pos, rst)
			}
			return w.Flush()
		},
	}
}
