// services/rcc/rcc_test.go
package rcc

import (
	"context"
	"testing"
	"time"

	"clocktree-go/bus"
	"clocktree-go/clock/family"
	"clocktree-go/clock/owner"
	"clocktree-go/errcode"
	"clocktree-go/types"
)

type rig struct {
	t      *testing.T
	b      *bus.Bus
	conn   *bus.Connection
	svc    *Service
	owners *owner.Registry
	state  *bus.Subscription
}

func newRig(t *testing.T) *rig {
	t.Helper()
	b := bus.NewBus(32)
	r := &rig{t: t, b: b, conn: b.NewConnection("test"), owners: owner.New()}
	r.state = r.conn.Subscribe(topicState)
	r.svc = New(b.NewConnection("rcc"), Options{Owners: r.owners})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	r.svc.Start(ctx)
	r.waitState("idle")
	return r
}

func (r *rig) waitState(level string) types.RCCState {
	r.t.Helper()
	deadline := time.After(time.Second)
	for {
		select {
		case m := <-r.state.Channel():
			st := m.Payload.(types.RCCState)
			if st.Level == level {
				return st
			}
		case <-deadline:
			r.t.Fatalf("timeout waiting for state %q", level)
		}
	}
}

func (r *rig) configure(cfg any) {
	r.conn.Publish(r.conn.NewMessage(topicConfig, cfg, true))
}

func (r *rig) control(name, verb string) *bus.Message {
	r.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	reply, err := r.conn.RequestWait(ctx, r.conn.NewMessage(bus.T("rcc", "periph", name, "control", verb), nil, false))
	if err != nil {
		r.t.Fatalf("%s/%s: %v", name, verb, err)
	}
	return reply
}

func (r *rig) expectErr(name, verb string, code errcode.Code) {
	r.t.Helper()
	e, ok := r.control(name, verb).Payload.(types.ErrorReply)
	if !ok || e.Error != string(code) {
		r.t.Fatalf("%s/%s: reply %#v, want %s", name, verb, e, code)
	}
}

var l4Board = types.ClockConfig{
	Family:    "l4",
	Source:    "hse",
	HSEHz:     8_000_000,
	HSEBypass: true,
	SysClkHz:  80_000_000,
	Gates:     []string{"gpioa", "usart2"},
}

func TestControlsRejectedBeforeConfig(t *testing.T) {
	r := newRig(t)
	r.expectErr("usart2", "enable", errcode.RCCNotReady)
}

func TestConfigureAppliesAndPublishes(t *testing.T) {
	r := newRig(t)
	snaps := r.conn.Subscribe(topicSnapshot)
	r.configure(l4Board)
	r.waitState("ready")

	var snap types.ClockSnapshot
	select {
	case m := <-snaps.Channel():
		snap = m.Payload.(types.ClockSnapshot)
	case <-time.After(time.Second):
		t.Fatal("no snapshot")
	}
	if snap.SysClkHz != 80_000_000 || snap.Generation != 1 || snap.Source != "pll" || snap.Input != "hse" {
		t.Fatalf("snapshot %+v", snap)
	}
	if snap.Latency != 4 || snap.APB1TimHz != 80_000_000 {
		t.Fatalf("snapshot %+v", snap)
	}

	ok, _ := r.control("usart2", "status").Payload.(types.OKReply)
	st, _ := ok.Result.(types.PeriphStatus)
	if !st.Enabled || st.Bus != "apb1" || st.ClockHz != 80_000_000 {
		t.Fatalf("status %#v", ok)
	}

	if _, isOK := r.control("usart2", "disable").Payload.(types.OKReply); !isOK {
		t.Fatal("disable failed")
	}
	ok, _ = r.control("usart2", "status").Payload.(types.OKReply)
	if ok.Result.(types.PeriphStatus).Enabled {
		t.Fatal("still enabled")
	}
	if _, isOK := r.control("usart2", "reset").Payload.(types.OKReply); !isOK {
		t.Fatal("reset failed")
	}
	r.expectErr("usart9", "enable", errcode.UnknownPeripheral)
	r.expectErr("bogus", "enable", errcode.UnknownPeripheral)
	r.expectErr("usart2", "explode", errcode.Unsupported)

	if h, _ := r.owners.Owner("flash"); h != holder {
		t.Fatalf("flash owner %q", h)
	}
}

func TestFailedConfigKeepsSnapshot(t *testing.T) {
	r := newRig(t)
	r.configure(l4Board)
	r.waitState("ready")

	bad := l4Board
	bad.SysClkHz = 500_000_000
	r.configure(bad)
	st := r.waitState("failed")
	if st.Status != string(errcode.ConfigUnsatisfiable) {
		t.Fatalf("state %+v", st)
	}
	if s := r.svc.Snapshot(); s == nil || s.Generation != 1 || s.SysClk != 80_000_000 {
		t.Fatalf("snapshot %v", s)
	}

	other := l4Board
	other.Family = "f4"
	r.configure(other)
	if st := r.waitState("failed"); st.Status != string(errcode.Unsupported) {
		t.Fatalf("state %+v", st)
	}
}

func TestBadGateLeavesClocksUntouched(t *testing.T) {
	r := newRig(t)
	snaps := r.conn.Subscribe(topicSnapshot)

	cfg := l4Board
	cfg.Gates = []string{"gpioa", "nosuch9"}
	r.configure(cfg)
	if st := r.waitState("failed"); st.Status != string(errcode.UnknownPeripheral) {
		t.Fatalf("state %+v", st)
	}
	if s := r.svc.Snapshot(); s == nil || s.Generation != 0 || s.SysClk == 80_000_000 {
		t.Fatalf("clock plan committed: %v", s)
	}
	gpioa, _ := family.ParseID("gpioa")
	if on, _ := r.svc.gate.Enabled(gpioa); on {
		t.Fatal("gpioa enabled by a rejected config")
	}
	select {
	case m := <-snaps.Channel():
		t.Fatalf("snapshot published: %+v", m.Payload)
	default:
	}

	r.configure(l4Board)
	r.waitState("ready")
	if s := r.svc.Snapshot(); s.Generation != 1 || s.SysClk != 80_000_000 {
		t.Fatalf("snapshot %v", s)
	}
}

func TestClaimedPeripheralOnlyObeysHolder(t *testing.T) {
	r := newRig(t)
	r.configure(l4Board)
	r.waitState("ready")
	if err := r.owners.Claim("usart2", "uart-driver"); err != nil {
		t.Fatal(err)
	}

	r.expectErr("usart2", "disable", errcode.ResourceOwned)
	r.expectErr("usart2", "reset", errcode.ResourceOwned)
	ok, isOK := r.control("usart2", "status").Payload.(types.OKReply)
	if !isOK || !ok.Result.(types.PeriphStatus).Enabled {
		t.Fatalf("status %#v", ok)
	}

	drv := r.b.NewConnection("uart-driver")
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	reply, err := drv.RequestWait(ctx, drv.NewMessage(bus.T("rcc", "periph", "usart2", "control", "disable"), nil, false))
	if err != nil {
		t.Fatal(err)
	}
	if _, isOK := reply.Payload.(types.OKReply); !isOK {
		t.Fatalf("holder refused: %#v", reply.Payload)
	}
}

func TestConfigFromMap(t *testing.T) {
	r := newRig(t)
	r.configure(map[string]any{"family": "g0", "source": "hsi", "sysclk_hz": 64_000_000})
	r.waitState("ready")
	if s := r.svc.Snapshot(); s.SysClk != 64_000_000 || s.Family != "g0" {
		t.Fatalf("snapshot %v", s)
	}
}

func TestConfigRejects(t *testing.T) {
	cases := []struct {
		name string
		cfg  any
		code errcode.Code
	}{
		{"bad payload", "{", errcode.InvalidPayload},
		{"unknown family", types.ClockConfig{Family: "h7"}, errcode.UnknownFamily},
		{"bad pll", types.ClockConfig{Family: "l4", PLL: "maybe"}, errcode.InvalidParams},
		{"pll source", types.ClockConfig{Family: "l4", Source: "pll"}, errcode.InvalidParams},
		{"unknown gate", types.ClockConfig{Family: "l4", Gates: []string{"fdcan"}}, errcode.UnknownPeripheral},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := newRig(t)
			r.configure(c.cfg)
			if st := r.waitState("failed"); st.Status != string(c.code) {
				t.Fatalf("state %+v", st)
			}
		})
	}
}

func TestFlashAlreadyOwned(t *testing.T) {
	r := newRig(t)
	if err := r.owners.Claim("flash", "bootloader"); err != nil {
		t.Fatal(err)
	}
	r.configure(l4Board)
	if st := r.waitState("failed"); st.Status != string(errcode.ResourceOwned) {
		t.Fatalf("state %+v", st)
	}
	if _, held := r.owners.Owner("rcc"); held {
		t.Fatal("partial claim left behind")
	}
}
