package heartbeat

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"clocktree-go/bus"
	"clocktree-go/clock/family/l4"
	"clocktree-go/clock/snapshot"
	"clocktree-go/types"
)

type fixed struct{ s *snapshot.Snapshot }

func (f fixed) Snapshot() *snapshot.Snapshot { return f.s }

func TestLineReportsSysClk(t *testing.T) {
	s := &Service{Clocks: fixed{snapshot.Default(l4.Family)}}
	if got := s.line(); got != "heartbeat sysclk=4MHz gen=0" {
		t.Fatalf("line = %q", got)
	}
	s.Clocks = fixed{}
	if got := s.line(); !strings.Contains(got, "unconfigured") {
		t.Fatalf("line = %q", got)
	}
}

func TestIntervalFromConfig(t *testing.T) {
	b := bus.NewBus(4)
	conn := b.NewConnection("test")

	var mu sync.Mutex
	var lines []string
	s := &Service{Clocks: fixed{snapshot.Default(l4.Family)}, Out: func(l string) {
		mu.Lock()
		lines = append(lines, l)
		mu.Unlock()
	}}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	conn.Publish(conn.NewMessage(topicConfigHeartbeat, map[string]any{"interval_s": 0.02}, true))
	s.Start(ctx, conn)

	time.Sleep(150 * time.Millisecond)
	mu.Lock()
	n := len(lines)
	mu.Unlock()
	if n < 3 {
		t.Fatalf("only %d beats at 20ms", n)
	}
}

func TestInterval(t *testing.T) {
	if d, ok := interval(types.HeartbeatConfig{IntervalS: 3}); !ok || d != 3*time.Second {
		t.Fatalf("%v %v", d, ok)
	}
	if _, ok := interval(types.HeartbeatConfig{}); ok {
		t.Fatal("zero interval accepted")
	}
	if _, ok := interval("5"); ok {
		t.Fatal("string accepted")
	}
}
