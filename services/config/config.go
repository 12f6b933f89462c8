// Package config publishes the board's setup as retained messages under
// config/<key>. Setups are Go literals compiled into the image, one per
// board.
package config

import (
	"context"
	"errors"
	"sort"
	"sync"

	"clocktree-go/bus"
)

const (
	serviceName  = "config"
	configPrefix = "config"
	CtxDeviceKey = "device" // context key used for device ID
)

// Setup maps a config key ("rcc", "heartbeat") to its payload.
type Setup map[string]any

var (
	mu     sync.RWMutex
	setups = map[string]Setup{}
)

// Register adds a board setup. Board files call it from init.
func Register(device string, s Setup) {
	mu.Lock()
	defer mu.Unlock()
	if _, dup := setups[device]; dup {
		panic("config: duplicate setup " + device)
	}
	setups[device] = s
}

// Lookup resolves a board setup. Tests may replace it.
var Lookup = func(device string) (Setup, bool) {
	mu.RLock()
	defer mu.RUnlock()
	s, ok := setups[device]
	return s, ok
}

// Boards lists registered setups in name order.
func Boards() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(setups))
	for k := range setups {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

type ConfigService struct {
	Name string
}

func NewConfigService() *ConfigService {
	return &ConfigService{Name: serviceName}
}

func (s *ConfigService) publishConfig(ctx context.Context, conn *bus.Connection) error {
	device, _ := ctx.Value(CtxDeviceKey).(string)
	if device == "" {
		return errors.New("missing device ID in context")
	}
	setup, ok := Lookup(device)
	if !ok || len(setup) == 0 {
		return errors.New("no setup for device: " + device)
	}
	for k, v := range setup {
		conn.Publish(conn.NewMessage(bus.T(configPrefix, k), v, true))
	}
	return nil
}

// Start publishes the setup in the background.
func (s *ConfigService) Start(ctx context.Context, conn *bus.Connection) {
	go func() {
		if err := s.publishConfig(ctx, conn); err != nil {
			println("[config]", err.Error())
		}
	}()
}
