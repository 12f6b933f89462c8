package heartbeat

import (
	"context"
	"time"

	"clocktree-go/bus"
	"clocktree-go/clock/snapshot"
	"clocktree-go/types"
	"clocktree-go/x/conv"
)

var topicConfigHeartbeat = bus.T("config", "heartbeat")

// Clocks supplies the applied snapshot; nil means not configured yet.
type Clocks interface {
	Snapshot() *snapshot.Snapshot
}

type Service struct {
	Clocks Clocks
	// Out receives each line; println when nil.
	Out func(line string)
}

func (s *Service) line() string {
	if s.Clocks == nil {
		return "heartbeat"
	}
	snap := s.Clocks.Snapshot()
	if snap == nil {
		return "heartbeat sysclk=unconfigured"
	}
	return "heartbeat sysclk=" + snap.SysClk.String() + " gen=" + conv.U32(snap.Generation)
}

func (s *Service) emit(t time.Time) {
	l := t.Format("15:04:05") + " " + s.line()
	if s.Out != nil {
		s.Out(l)
		return
	}
	println("[heartbeat]", l)
}

func interval(p any) (time.Duration, bool) {
	switch v := p.(type) {
	case types.HeartbeatConfig:
		if v.IntervalS > 0 {
			return time.Duration(v.IntervalS) * time.Second, true
		}
	case map[string]any:
		if f, ok := v["interval_s"].(float64); ok && f > 0 {
			return time.Duration(f * float64(time.Second)), true
		}
	}
	return 0, false
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection) {
	cfgSub := conn.Subscribe(topicConfigHeartbeat)
	defer conn.Unsubscribe(cfgSub)

	tick := time.NewTicker(1 * time.Second)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			println("[heartbeat] stopping")
			return
		case t := <-tick.C:
			s.emit(t)
		case msg := <-cfgSub.Channel():
			if d, ok := interval(msg.Payload); ok {
				tick.Reset(d)
				println("[heartbeat] interval", d.String())
			}
		}
	}
}

func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	go s.serviceLoop(ctx, conn)
	return nil
}
