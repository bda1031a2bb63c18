package config

import (
	"context"
	"testing"
	"time"

	"dacx0501-go/bus"
	dacdev "dacx0501-go/services/hal/devices/dacx0501"
	"dacx0501-go/types"
)

func TestConfig_PublishRetainedHAL(t *testing.T) {
	want := types.HALConfig{Devices: []types.HALDevice{{
		ID: "dac0", Type: "dac70501", Params: dacdev.Params{Bus: "spi0"},
	}}}
	oldLookup := BoardLookup
	BoardLookup = func(device string) (Board, bool) {
		if device != "bench" {
			return Board{}, false
		}
		return Board{HAL: want, Heartbeat: types.HeartbeatConfig{IntervalMs: 250}}, true
	}
	t.Cleanup(func() { BoardLookup = oldLookup })

	b := bus.NewBus(4)
	conn := b.NewConnection("test-config")
	svc := NewConfigService()

	ctx := context.WithValue(context.Background(), CtxDeviceKey, "bench")
	svc.Start(ctx, conn)

	sub := conn.Subscribe(bus.T(configPrefix, "hal"))
	select {
	case m := <-sub.Channel():
		got, ok := m.Payload.(types.HALConfig)
		if !ok || !m.Retained {
			t.Fatalf("payload %T retained=%v", m.Payload, m.Retained)
		}
		if len(got.Devices) != 1 || got.Devices[0] != want.Devices[0] {
			t.Fatalf("devices = %+v", got.Devices)
		}
	case <-time.After(600 * time.Millisecond):
		t.Fatal("no config/hal message")
	}

	hb := conn.Subscribe(bus.T(configPrefix, "heartbeat"))
	select {
	case m := <-hb.Channel():
		if c, ok := m.Payload.(types.HeartbeatConfig); !ok || c.IntervalMs != 250 {
			t.Fatalf("heartbeat config = %+v", m.Payload)
		}
	case <-time.After(600 * time.Millisecond):
		t.Fatal("no config/heartbeat message")
	}
}

func TestConfig_PublishErrors(t *testing.T) {
	conn := bus.NewBus(4).NewConnection("test-config")
	svc := NewConfigService()

	if err := svc.Publish(context.Background(), conn); err != errNoDevice {
		t.Fatalf("err = %v", err)
	}
	ctx := context.WithValue(context.Background(), CtxDeviceKey, "no-such-board")
	if err := svc.Publish(ctx, conn); err != errNoBoard {
		t.Fatalf("err = %v", err)
	}
}

func TestBuiltinBoardsAreConsistent(t *testing.T) {
	for id, b := range boards {
		names := map[string]bool{}
		for _, d := range b.HAL.Devices {
			p, ok := d.Params.(dacdev.Params)
			if !ok {
				t.Fatalf("%s/%s: params %T", id, d.ID, d.Params)
			}
			if _, ok := b.SPI[p.Bus]; !ok {
				t.Fatalf("%s/%s: bus %q has no port", id, d.ID, p.Bus)
			}
			name := p.Name
			if name == "" {
				name = d.ID
			}
			names[name] = true
		}
		for _, ps := range b.HAL.Pollers {
			if !names[ps.Name] {
				t.Fatalf("%s: poller for unknown capability %q", id, ps.Name)
			}
		}
	}
}
