// Package config publishes the board's configuration as retained bus
// messages under config/<service>.
package config

import (
	"context"
	"errors"

	"dacx0501-go/bus"
	"dacx0501-go/services/hal"
	"dacx0501-go/types"
)

const (
	serviceName  = "config"
	configPrefix = "config"
)

type ctxKey string

// CtxDeviceKey is the context key holding the board id.
const CtxDeviceKey ctxKey = "device"

// Board is the static configuration of one board.
type Board struct {
	SPI       map[string]hal.SPIPort // bus id -> host port
	HAL       types.HALConfig
	Heartbeat types.HeartbeatConfig // zero: service default
}

// BoardLookup resolves a board id. Tests override it.
var BoardLookup = func(device string) (Board, bool) {
	b, ok := boards[device]
	return b, ok
}

var (
	errNoDevice = errors.New("config: missing device id in context")
	errNoBoard  = errors.New("config: no configuration for device")
)

type ConfigService struct {
	Name string
}

func NewConfigService() *ConfigService {
	return &ConfigService{Name: serviceName}
}

// Publish sends the configuration for the board in ctx, retained.
func (s *ConfigService) Publish(ctx context.Context, conn *bus.Connection) error {
	device, _ := ctx.Value(CtxDeviceKey).(string)
	if device == "" {
		return errNoDevice
	}
	b, ok := BoardLookup(device)
	if !ok {
		return errNoBoard
	}
	conn.Publish(conn.NewMessage(bus.T(configPrefix, "hal"), b.HAL, true))
	if b.Heartbeat.IntervalMs > 0 {
		conn.Publish(conn.NewMessage(bus.T(configPrefix, "heartbeat"), b.Heartbeat, true))
	}
	return nil
}

// Start publishes in the background; failures are logged.
func (s *ConfigService) Start(ctx context.Context, conn *bus.Connection) {
	go func() {
		if err := s.Publish(ctx, conn); err != nil {
			println("[config]", err.Error())
		}
	}()
}
