// clock/solver/candidates.go
package solver

import (
	"clocktree-go/clock/freq"

	"golang.org/x/exp/slices"
)

// Candidates returns up to limit plans for req in preference order; the
// first equals Solve's result. limit <= 0 returns all of them.
func Candidates(req Request, limit int) ([]Plan, error) {
	s, mode, err := prepare(&req)
	if err != nil {
		return nil, err
	}
	var all []candidate
	s.collect = &all
	s.run(mode)
	if len(all) == 0 {
		return nil, s.err()
	}
	slices.SortStableFunc(all, func(a, b candidate) int { return compare(&a, &b, s.target) })
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	out := make([]Plan, 0, len(all))
	for i := range all {
		p, err := s.plan(&all[i])
		if err != nil {
			continue
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		return nil, s.err()
	}
	return out, nil
}

// Rediscover searches for a plan with p's observable frequencies: the same
// oscillator, p's SYSCLK as target and p's bus clocks as ceilings. The
// dividers may differ when several combinations tie.
func Rediscover(p Plan) (Plan, error) {
	req := Request{
		Family:    p.Family,
		Source:    p.Input(),
		HSE:       p.HSE,
		HSEBypass: p.HSEBypass,
		SysClk:    p.Freqs.SysClk,
	}
	if p.Source != freq.PLL {
		req.UsePLL = PLLOff
	}
	for b, d := range p.Div {
		if d != 0 {
			req.Ceilings[b] = p.Freqs.Bus[b]
		}
	}
	return Solve(req)
}
