package dacx0501dev

import (
	"context"
	"errors"

	"periph.io/x/conn/v3/physic"

	"dacx0501-go/drivers/dacx0501"
	"dacx0501-go/errcode"
	"dacx0501-go/services/hal/internal/core"
	"dacx0501-go/types"
	"dacx0501-go/x/mathx"
	"dacx0501-go/x/timex"
)

type Device struct {
	id   string
	typ  string
	bus  string
	chip dac
	reg  core.ResourceRegistry
	pub  core.EventEmitter
	addr core.CapAddr

	vrefMV  uint32
	cfg     dacx0501.Config // applied by Init
	initial uint16

	level uint16 // last code written
	alarm string // last STATUS read, "" until the first read
}

func (d *Device) ID() string { return d.id }

func (d *Device) Capabilities() []core.CapabilitySpec {
	return []core.CapabilitySpec{{
		Domain: d.addr.Domain,
		Kind:   types.KindDAC,
		Name:   d.addr.Name,
		Info: types.Info{
			SchemaVersion: 1,
			Driver:        d.typ,
			Detail: types.DACInfo{
				Bus:    d.bus,
				Bits:   d.chip.Bits(),
				Max:    d.chip.MaxLevel(),
				VrefMV: d.vrefMV,
			},
		},
	}}
}

// Init writes both register groups, then the initial level.
func (d *Device) Init(ctx context.Context) error {
	if err := d.chip.Configure(d.cfg); err != nil {
		return wrapErr("init", err)
	}
	if err := d.chip.SetOutputLevel(d.initial); err != nil {
		return wrapErr("init", err)
	}
	d.level = d.initial
	d.emitValue()
	return nil
}

func (d *Device) Close() error {
	if d.reg != nil {
		d.reg.ReleaseSPI(d.id, core.ResourceID(d.bus))
	}
	return nil
}

func (d *Device) Control(_ core.CapAddr, verb string, payload any) (core.EnqueueResult, error) {
	res, err := d.control(verb, payload)
	return res, wrapErr(verb, err)
}

func (d *Device) control(verb string, payload any) (core.EnqueueResult, error) {
	switch verb {
	case "set", "set_unchecked":
		p, code := core.As[types.DACSet](payload)
		if code != "" || payload == nil {
			return core.EnqueueResult{Error: errcode.InvalidPayload}, nil
		}
		write := d.chip.SetOutputLevel
		if verb == "set_unchecked" {
			write = d.chip.SetOutputLevelUnchecked
		}
		return d.setLevel(p.Level, write)

	case "set_voltage":
		p, code := core.As[types.DACSetVoltage](payload)
		if code != "" || payload == nil {
			return core.EnqueueResult{Error: errcode.InvalidPayload}, nil
		}
		lvl, err := d.chip.LevelForPotential(physic.ElectricPotential(p.MilliVolts)*physic.MilliVolt, d.vref())
		if err != nil {
			return core.EnqueueResult{}, err
		}
		return d.setLevel(lvl, d.chip.SetOutputLevel)

	case "configure":
		p, code := core.As[types.DACConfigure](payload)
		if code != "" {
			return core.EnqueueResult{Error: code}, nil
		}
		return d.configure(p)

	case "read":
		st, err := d.chip.RefAlarmStatus()
		if err != nil {
			d.degrade(err)
			return core.EnqueueResult{}, err
		}
		d.alarm = st.String()
		d.emitValue()
		return core.EnqueueResult{OK: true}, nil

	default:
		return core.EnqueueResult{Error: errcode.Unsupported}, nil
	}
}

func (d *Device) setLevel(lvl uint16, write func(uint16) error) (core.EnqueueResult, error) {
	if err := write(lvl); err != nil {
		d.degrade(err)
		return core.EnqueueResult{}, err
	}
	d.level = lvl
	d.emitValue()
	return core.EnqueueResult{OK: true}, nil
}

// configure validates every field before touching the chip, then applies the
// set ones in register order.
func (d *Device) configure(p types.DACConfigure) (core.EnqueueResult, error) {
	var steps []func() error
	if p.Reference != "" {
		v, err := dacx0501.ParseInternalReference(p.Reference)
		if err != nil {
			return core.EnqueueResult{}, err
		}
		steps = append(steps, func() error { return d.chip.SetInternalReference(v) })
	}
	if p.Power != "" {
		v, err := dacx0501.ParsePowerState(p.Power)
		if err != nil {
			return core.EnqueueResult{}, err
		}
		steps = append(steps, func() error { return d.chip.SetPowerState(v) })
	}
	if p.Divider != "" {
		v, err := dacx0501.ParseReferenceDivider(p.Divider)
		if err != nil {
			return core.EnqueueResult{}, err
		}
		steps = append(steps, func() error { return d.chip.SetReferenceDivider(v) })
	}
	if p.Gain != "" {
		v, err := dacx0501.ParseOutputGain(p.Gain)
		if err != nil {
			return core.EnqueueResult{}, err
		}
		steps = append(steps, func() error { return d.chip.SetOutputGain(v) })
	}
	if len(steps) == 0 {
		return core.EnqueueResult{Error: errcode.InvalidPayload}, nil
	}
	for _, step := range steps {
		if err := step(); err != nil {
			d.degrade(err)
			return core.EnqueueResult{}, err
		}
	}
	d.emitValue()
	return core.EnqueueResult{OK: true}, nil
}

func (d *Device) vref() physic.ElectricPotential {
	return physic.ElectricPotential(d.vrefMV) * physic.MilliVolt
}

// degrade reports transport failures as a degraded link. Rejected values
// leave the link as it is.
func (d *Device) degrade(err error) {
	if !errors.Is(err, dacx0501.ErrSPI) {
		return
	}
	if !d.pub.Emit(core.Event{Addr: d.addr, TSms: timex.NowMs(), Err: string(codeOf(err))}) {
		println("[hal] dac event dropped:", d.id)
	}
}

func (d *Device) emitValue() {
	cfg := d.chip.Config()
	v := types.DACValue{
		Level:     d.level,
		Power:     cfg.Power.String(),
		Reference: cfg.Reference.String(),
		Divider:   cfg.Divider.String(),
		Gain:      cfg.Gain.String(),
		Alarm:     d.alarm,
	}
	if out, err := d.chip.OutputPotential(d.level, d.vref()); err == nil {
		v.MilliVolts = uint32(mathx.RoundDiv(uint64(out), uint64(physic.MilliVolt)))
	}
	if !d.pub.Emit(core.Event{Addr: d.addr, Payload: v, TSms: timex.NowMs()}) {
		println("[hal] dac event dropped:", d.id)
	}
}
