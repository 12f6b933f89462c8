package main

import (
	"fmt"
	"os"
	"strings"

	"clocktree-go/clock/family"
	"clocktree-go/clock/freq"
	"clocktree-go/clock/reqdsl"
	"clocktree-go/clock/solver"
	"clocktree-go/services/rcc"
	"clocktree-go/types"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// boardFile is the YAML board description. Either rcc or request is set.
type boardFile struct {
	Board   string            `yaml:"board"`
	RCC     types.ClockConfig `yaml:"rcc"`
	Request string            `yaml:"request"`
}

// requestFlags are shared by solve and apply.
type requestFlags struct {
	family, source, hse, sysclk, pll string
	bypass                           bool
	ahbMax, apb1Max, apb2Max         string
	request, board                   string
}

func (f *requestFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.family, "family", "", "chip family (l4, f4, g4, g0, f3)")
	fl.StringVar(&f.source, "source", "", "clock source (hse, hsi, msi)")
	fl.StringVar(&f.hse, "hse", "", "HSE frequency, e.g. 8MHz")
	fl.BoolVar(&f.bypass, "bypass", false, "HSE is an external clock, not a crystal")
	fl.StringVar(&f.sysclk, "sysclk", "", "target SYSCLK; empty keeps the reset clock")
	fl.StringVar(&f.pll, "pll", "auto", "pll use: auto, on or off")
	fl.StringVar(&f.ahbMax, "ahb-max", "", "AHB ceiling")
	fl.StringVar(&f.apb1Max, "apb1-max", "", "APB1 ceiling")
	fl.StringVar(&f.apb2Max, "apb2-max", "", "APB2 ceiling")
	fl.StringVar(&f.request, "request", "", "request text, or @file")
	fl.StringVar(&f.board, "board", "", "YAML board file")
}

func (f *requestFlags) build() (solver.Request, error) {
	switch {
	case f.board != "":
		return loadBoard(f.board)
	case f.request != "":
		text := f.request
		if strings.HasPrefix(text, "@") {
			b, err := os.ReadFile(text[1:])
			if err != nil {
				return solver.Request{}, err
			}
			text = string(b)
		}
		return fromText(text)
	}

	cfg := types.ClockConfig{Family: f.family, Source: f.source, HSEBypass: f.bypass, PLL: f.pll}
	for _, v := range []struct {
		in  string
		out *uint32
	}{
		{f.hse, &cfg.HSEHz},
		{f.sysclk, &cfg.SysClkHz},
		{f.ahbMax, &cfg.AHBMaxHz},
		{f.apb1Max, &cfg.APB1MaxHz},
		{f.apb2Max, &cfg.APB2MaxHz},
	} {
		if v.in == "" {
			continue
		}
		hz, err := reqdsl.ParseHz(v.in)
		if err != nil {
			return solver.Request{}, err
		}
		*v.out = uint32(hz)
	}
	return fromConfig(cfg)
}

func fromText(text string) (solver.Request, error) {
	spec, err := reqdsl.Parse(text)
	if err != nil {
		return solver.Request{}, err
	}
	return spec.Resolve()
}

func fromConfig(cfg types.ClockConfig) (solver.Request, error) {
	f, ok := family.ByName(cfg.Family)
	if !ok {
		return solver.Request{}, fmt.Errorf("unknown family %q (have %s)", cfg.Family, strings.Join(family.Names(), ", "))
	}
	return rcc.Request(cfg, f)
}

func loadBoard(path string) (solver.Request, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return solver.Request{}, err
	}
	var b boardFile
	if err := yaml.Unmarshal(raw, &b); err != nil {
		return solver.Request{}, fmt.Errorf("%s: %w", path, err)
	}
	if b.Request != "" {
		return fromText(b.Request)
	}
	return fromConfig(b.RCC)
}

func hz(v freq.Hz) uint32 { return uint32(v) }
