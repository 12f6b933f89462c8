package main

import (
	"context"
	"time"

	"clocktree-go/bus"
	"clocktree-go/services/config"
	_ "clocktree-go/services/config/setups"
	"clocktree-go/services/heartbeat"
	"clocktree-go/services/rcc"
)

// device selects the board setup when more than one is linked in; set it
// with -ldflags "-X main.device=nucleo-g474".
var device = "nucleo-l476"

func board() string {
	if bs := config.Boards(); len(bs) == 1 {
		return bs[0]
	}
	return device
}

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	println("[main] boot", board())

	b := bus.NewBus(8)
	ctx := context.WithValue(context.Background(), config.CtxDeviceKey, board())

	mon := b.NewConnection("ui").Subscribe(bus.T("rcc", "#"))
	go func() {
		for m := range mon.Channel() {
			println("[monitor] <-", m.Topic.String())
		}
	}()

	clocks := rcc.New(b.NewConnection("rcc"), rcc.Options{})
	clocks.Start(ctx)

	hb := &heartbeat.Service{Clocks: clocks}
	_ = hb.Start(ctx, b.NewConnection("heartbeat"))

	config.NewConfigService().Start(ctx, b.NewConnection("config"))

	select {}
}
