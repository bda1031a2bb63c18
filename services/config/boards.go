package config

import (
	dacdev "dacx0501-go/services/hal/devices/dacx0501"
	"dacx0501-go/services/hal"
	"dacx0501-go/types"
)

// Built-in boards, keyed by the id placed in ctx under CtxDeviceKey.
var boards = map[string]Board{
	// Raspberry Pi with a DAC80501 EVM on SPI0 CE0, internal reference.
	"rpi": {
		SPI: map[string]hal.SPIPort{
			"spi0": {Dev: "/dev/spidev0.0", FreqHz: 10_000_000, Mode: 1},
		},
		HAL: types.HALConfig{
			Devices: []types.HALDevice{{
				ID:     "dac0",
				Type:   "dac80501",
				Params: dacdev.Params{Bus: "spi0", Name: "out0", Initial: 0},
			}},
			Pollers: []types.PollSpec{{
				Kind: types.KindDAC, Name: "out0", Verb: "read", IntervalMs: 1000, JitterMs: 50,
			}},
		},
		Heartbeat: types.HeartbeatConfig{IntervalMs: 2000},
	},

	// Two 12-bit parts on separate chip selects, external 1.25 V reference
	// with unity gain.
	"rpi-dual": {
		SPI: map[string]hal.SPIPort{
			"spi0": {Dev: "/dev/spidev0.0", Mode: 1},
			"spi1": {Dev: "/dev/spidev0.1", Mode: 1},
		},
		HAL: types.HALConfig{
			Devices: []types.HALDevice{
				{ID: "dac0", Type: "dac60501", Params: dacdev.Params{
					Bus: "spi0", Name: "bias", VrefMV: 1250, Reference: "disable", Gain: "1x",
				}},
				{ID: "dac1", Type: "dac60501", Params: dacdev.Params{
					Bus: "spi1", Name: "trim", VrefMV: 1250, Reference: "disable", Gain: "1x",
				}},
			},
			Pollers: []types.PollSpec{
				{Kind: types.KindDAC, Name: "bias", IntervalMs: 5000},
				{Kind: types.KindDAC, Name: "trim", IntervalMs: 5000},
			},
		},
	},
}
