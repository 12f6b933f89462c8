// services/config/config_test.go
package config

import (
	"context"
	"testing"
	"time"

	"clocktree-go/bus"
	"clocktree-go/types"
)

func TestPublishesRetainedPerKey(t *testing.T) {
	old := Lookup
	Lookup = func(device string) (Setup, bool) {
		if device != "bench" {
			return nil, false
		}
		return Setup{
			"rcc":       types.ClockConfig{Family: "l4", SysClkHz: 80_000_000},
			"heartbeat": types.HeartbeatConfig{IntervalS: 5},
		}, true
	}
	t.Cleanup(func() { Lookup = old })

	b := bus.NewBus(16)
	conn := b.NewConnection("test-config")
	ctx := context.WithValue(context.Background(), CtxDeviceKey, "bench")
	NewConfigService().Start(ctx, conn)

	// Retained, so subscribing late is fine.
	time.Sleep(20 * time.Millisecond)
	sub := conn.Subscribe(bus.T(configPrefix, "#"))

	got := map[string]any{}
	deadline := time.After(500 * time.Millisecond)
	for len(got) < 2 {
		select {
		case m := <-sub.Channel():
			if !m.Retained || len(m.Topic) != 2 {
				t.Fatalf("bad message on %s", m.Topic)
			}
			got[m.Topic[1].(string)] = m.Payload
		case <-deadline:
			t.Fatalf("got %v", got)
		}
	}
	rcc, ok := got["rcc"].(types.ClockConfig)
	if !ok || rcc.Family != "l4" {
		t.Fatalf("rcc payload %#v", got["rcc"])
	}
	if hb, ok := got["heartbeat"].(types.HeartbeatConfig); !ok || hb.IntervalS != 5 {
		t.Fatalf("heartbeat payload %#v", got["heartbeat"])
	}
}

func TestMissingDevice(t *testing.T) {
	s := NewConfigService()
	conn := bus.NewBus(4).NewConnection("x")
	if err := s.publishConfig(context.Background(), conn); err == nil {
		t.Fatal("expected error without device")
	}
	ctx := context.WithValue(context.Background(), CtxDeviceKey, "no-such-board")
	if err := s.publishConfig(ctx, conn); err == nil {
		t.Fatal("expected error for unknown board")
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	Register("dup-board", Setup{"heartbeat": types.HeartbeatConfig{IntervalS: 1}})
	defer func() {
		if recover() == nil {
			t.Fatal("no panic")
		}
	}()
	Register("dup-board", Setup{})
}
