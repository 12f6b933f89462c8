package rcc

import (
	"encoding/json"

	"clocktree-go/clock/family"
	"clocktree-go/clock/freq"
	"clocktree-go/clock/snapshot"
	"clocktree-go/clock/solver"
	"clocktree-go/errcode"
	"clocktree-go/types"
)

// Request converts a bus/board clock config into a solver request.
func Request(cfg types.ClockConfig, f *family.Family) (solver.Request, error) {
	r := solver.Request{
		Family:    f,
		HSE:       freq.Hz(cfg.HSEHz),
		HSEBypass: cfg.HSEBypass,
		SysClk:    freq.Hz(cfg.SysClkHz),
	}
	if cfg.Source != "" {
		src, ok := freq.ParseSource(cfg.Source)
		if !ok || src == freq.PLL || src == freq.NoSource {
			return solver.Request{}, &errcode.E{C: errcode.InvalidParams, Op: "config", Msg: "source " + cfg.Source}
		}
		r.Source = src
	}
	switch cfg.PLL {
	case "", "auto":
	case "on":
		r.UsePLL = solver.PLLOn
	case "off":
		r.UsePLL = solver.PLLOff
	default:
		return solver.Request{}, &errcode.E{C: errcode.InvalidParams, Op: "config", Msg: "pll " + cfg.PLL}
	}
	r.Ceilings[family.AHB] = freq.Hz(cfg.AHBMaxHz)
	r.Ceilings[family.APB1] = freq.Hz(cfg.APB1MaxHz)
	r.Ceilings[family.APB2] = freq.Hz(cfg.APB2MaxHz)

	o := cfg.Override
	r.Override = solver.Override{M: o.M, N: o.N, R: o.R, Q: o.Q, P: o.P}
	r.Override.Bus[family.AHB] = o.AHB
	r.Override.Bus[family.APB1] = o.APB1
	r.Override.Bus[family.APB2] = o.APB2
	return r, nil
}

// decodeConfig accepts a typed config or anything that round-trips through
// JSON into one.
func decodeConfig(src any) (types.ClockConfig, error) {
	var cfg types.ClockConfig
	switch v := src.(type) {
	case types.ClockConfig:
		return v, nil
	case *types.ClockConfig:
		if v == nil {
			return cfg, errcode.InvalidPayload
		}
		return *v, nil
	case []byte:
		return cfg, json.Unmarshal(v, &cfg)
	case string:
		return cfg, json.Unmarshal([]byte(v), &cfg)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return cfg, err
		}
		return cfg, json.Unmarshal(b, &cfg)
	}
}

// ToBus flattens a snapshot for publication.
func ToBus(s *snapshot.Snapshot, ts int64) types.ClockSnapshot {
	return types.ClockSnapshot{
		Family:     s.Family,
		Generation: s.Generation,
		Source:     s.Source.String(),
		Input:      s.Input.String(),
		InputHz:    uint32(s.InputHz),
		SysClkHz:   uint32(s.SysClk),
		AHBHz:      uint32(s.Buses[family.AHB]),
		APB1Hz:     uint32(s.Buses[family.APB1]),
		APB2Hz:     uint32(s.Buses[family.APB2]),
		APB1TimHz:  uint32(s.Timer(family.APB1)),
		APB2TimHz:  uint32(s.Timer(family.APB2)),
		PLLQHz:     uint32(s.PLLQ),
		PLLPHz:     uint32(s.PLLP),
		Latency:    s.Latency,
		TS:         ts,
	}
}
