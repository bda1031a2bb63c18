package dacx0501dev

import (
	"context"

	"periph.io/x/conn/v3/physic"

	"dacx0501-go/drivers/dacx0501"
	"dacx0501-go/errcode"
	"dacx0501-go/services/hal/internal/core"
	"dacx0501-go/types"
	"dacx0501-go/x/strx"

	"tinygo.org/x/drivers"
)

// Params defines wiring and start-up state for one DACx0501.
type Params struct {
	Bus    string // e.g. "spi0" (required)
	Domain string // default "io"
	Name   string // default device id

	// Reference voltage at VREF in mV; default 2500 (internal reference).
	VrefMV uint32

	// Initial output code; above the variant's range is invalid.
	Initial uint16

	// Register settings; "" keeps the power-on default.
	Power     string // "on" | "off"
	Reference string // "enable" | "disable"
	Divider   string // "1x" | "half"
	Gain      string // "1x" | "2x"
}

const defaultVrefMV = 2500

// dac is the method set shared by every resolution variant.
type dac interface {
	Bits() uint8
	MaxLevel() uint16
	Config() dacx0501.Config
	SetOutputLevel(level uint16) error
	SetOutputLevelUnchecked(level uint16) error
	SetInternalReference(ref dacx0501.InternalReference) error
	SetPowerState(state dacx0501.PowerState) error
	SetReferenceDivider(div dacx0501.ReferenceDivider) error
	SetOutputGain(gain dacx0501.OutputGain) error
	Configure(cfg dacx0501.Config) error
	RefAlarmStatus() (dacx0501.AlarmStatus, error)
	OutputPotential(level uint16, vref physic.ElectricPotential) (physic.ElectricPotential, error)
	LevelForPotential(v, vref physic.ElectricPotential) (uint16, error)
}

var variants = map[string]func(drivers.SPI) dac{
	"dac80501": func(s drivers.SPI) dac { return dacx0501.NewDAC80501(s) },
	"dac70501": func(s drivers.SPI) dac { return dacx0501.NewDAC70501(s) },
	"dac60501": func(s drivers.SPI) dac { return dacx0501.NewDAC60501(s) },
}

func init() {
	for typ := range variants {
		core.RegisterBuilder(typ, builder{})
	}
}

type builder struct{}

func (builder) Build(ctx context.Context, in core.BuilderInput) (core.Device, error) {
	p, ok := in.Params.(Params)
	if !ok || p.Bus == "" {
		return nil, errcode.InvalidParams
	}
	mk, ok := variants[in.Type]
	if !ok {
		return nil, errcode.Unsupported
	}
	cfg, err := parseConfig(p)
	if err != nil {
		return nil, errcode.InvalidParams
	}

	bus, err := in.Res.Reg.ClaimSPI(in.ID, core.ResourceID(p.Bus))
	if err != nil {
		return nil, err
	}
	chip := mk(bus)
	if p.Initial > chip.MaxLevel() {
		in.Res.Reg.ReleaseSPI(in.ID, core.ResourceID(p.Bus))
		return nil, errcode.InvalidParams
	}

	return &Device{
		id:      in.ID,
		typ:     in.Type,
		bus:     p.Bus,
		chip:    chip,
		reg:     in.Res.Reg,
		pub:     in.Res.Pub,
		vrefMV:  strx.Or(p.VrefMV, defaultVrefMV),
		cfg:     cfg,
		initial: p.Initial,
		addr: core.CapAddr{
			Domain: strx.Coalesce(p.Domain, "io"),
			Kind:   string(types.KindDAC),
			Name:   strx.Coalesce(p.Name, in.ID),
		},
	}, nil
}

// parseConfig starts from the power-on defaults and applies the set fields.
func parseConfig(p Params) (dacx0501.Config, error) {
	cfg := dacx0501.DefaultConfig()
	var err error
	if p.Power != "" {
		if cfg.Power, err = dacx0501.ParsePowerState(p.Power); err != nil {
			return cfg, err
		}
	}
	if p.Reference != "" {
		if cfg.Reference, err = dacx0501.ParseInternalReference(p.Reference); err != nil {
			return cfg, err
		}
	}
	if p.Divider != "" {
		if cfg.Divider, err = dacx0501.ParseReferenceDivider(p.Divider); err != nil {
			return cfg, err
		}
	}
	if p.Gain != "" {
		if cfg.Gain, err = dacx0501.ParseOutputGain(p.Gain); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}
