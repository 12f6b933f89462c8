package main

import (
	"io"

	"clocktree-go/clock/family"
	"clocktree-go/clock/gate"
	"clocktree-go/clock/regblock"
	"clocktree-go/clock/sequencer"
	"clocktree-go/clock/snapshot"

	"github.com/spf13/cobra"
)

// chip is one simulated part. The REPL keeps chips across commands so
// successive applies see the state the previous one left.
type chip struct {
	fam   *family.Family
	sim   *regblock.Sim
	store *snapshot.Store
	seq   *sequencer.Sequencer
	gate  *gate.Dynamic
}

type session struct {
	out   io.Writer
	chips map[string]*chip
}

func newSession(out io.Writer) *session {
	return &session{out: out, chips: map[string]*chip{}}
}

// simDelay is the number of status polls a simulated oscillator needs.
const simDelay = 4

func (s *session) chip(f *family.Family) *chip {
	if c, ok := s.chips[f.Name]; ok {
		return c
	}
	sim := regblock.NewSim(f, simDelay)
	st := snapshot.NewStore(f)
	c := &chip{
		fam:   f,
		sim:   sim,
		store: st,
		seq:   sequencer.New(f, sim, st, sequencer.DefaultBudget),
		gate:  gate.NewDynamic(f, sim),
	}
	s.chips[f.Name] = c
	return c
}

func newRootCmd(sess *session) *cobra.Command {
	root := &cobra.Command{
		Use:   "clockplan",
		Short: "STM32 clock tree planner",
		Long: `Solve STM32 RCC clock requests and dry-run them against a simulated
register block.

Examples:
  clockplan solve --family l4 --source hse --hse 8MHz --sysclk 80MHz
  clockplan solve --request 'family f4; source hse 8MHz; sysclk 168MHz'
  clockplan apply --board boards/nucleo-l476.yaml
  clockplan periphs g4
  clockplan repl`,
		SilenceUsage: true,
	}
	root.SetOut(sess.out)
	root.AddCommand(
		newSolveCmd(sess),
		newApplyCmd(sess),
		newFamiliesCmd(sess),
		newPeriphsCmd(sess),
		newGateCmd(sess),
		newReplCmd(sess),
	)
	return root
}
