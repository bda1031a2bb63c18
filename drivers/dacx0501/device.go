// Package dacx0501 provides a driver for the TI DAC80501 (16-bit), DAC70501
// (14-bit) and DAC60501 (12-bit) SPI DACs. The three parts share one register
// map and differ only in resolution, which is a type parameter:
//
//	d := dacx0501.NewDAC70501(spi)
//	err := d.SetOutputLevel(0x3FFF) // ErrValueOverflow for 0x4000
//
// Every operation is one blocking 3-byte transfer: a command byte followed by
// a 16-bit payload. The CONFIG and GAIN registers are write-only, so the
// driver keeps a shadow copy and re-sends both fields of a group on every
// change. A Device is not safe for concurrent use.
package dacx0501

import (
	"tinygo.org/x/drivers"
)

// PinOutput drives a logic level. Used for a GPIO chip select.
type PinOutput func(level bool)

// Resolution fixes the number of significant output bits of a variant.
type Resolution interface {
	Bits() uint8
}

type (
	Bits16 struct{}
	Bits14 struct{}
	Bits12 struct{}
)

func (Bits16) Bits() uint8 { return 16 }
func (Bits14) Bits() uint8 { return 14 }
func (Bits12) Bits() uint8 { return 12 }

// Device is one DACx0501 on an SPI bus.
type Device[R Resolution] struct {
	spi drivers.SPI
	cs  PinOutput
	res R
	cfg Config

	// Scratch frame reused by every transfer; STATUS reads land here too.
	buf [3]byte
}

// Concrete variants.
type (
	DAC80501 = Device[Bits16]
	DAC70501 = Device[Bits14]
	DAC60501 = Device[Bits12]
)

// New wraps an already configured SPI bus. It does not touch the device.
func New[R Resolution](spi drivers.SPI) *Device[R] {
	return &Device[R]{
		spi: spi,
		cfg: DefaultConfig(),
	}
}

func NewDAC80501(spi drivers.SPI) *DAC80501 { return New[Bits16](spi) }
func NewDAC70501(spi drivers.SPI) *DAC70501 { return New[Bits14](spi) }
func NewDAC60501(spi drivers.SPI) *DAC60501 { return New[Bits12](spi) }

// SetChipSelect installs an active-low chip select driven around each frame.
// Pass nil when the bus controller owns CS.
func (d *Device[R]) SetChipSelect(cs PinOutput) {
	d.cs = cs
	if cs != nil {
		cs(true)
	}
}

// Bits is the output resolution of this variant.
func (d *Device[R]) Bits() uint8 { return d.res.Bits() }

// MaxLevel is the largest code SetOutputLevel accepts.
func (d *Device[R]) MaxLevel() uint16 { return uint16(uint32(1)<<d.res.Bits() - 1) }

// Config returns the shadow configuration.
func (d *Device[R]) Config() Config { return d.cfg }

// SetOutputLevel writes a straight-binary code to DAC-DATA. Codes with bits
// at or above the variant's resolution return ErrValueOverflow and nothing
// is sent.
func (d *Device[R]) SetOutputLevel(level uint16) error {
	if uint32(level)>>d.res.Bits() != 0 {
		return ErrValueOverflow
	}
	return d.SetOutputLevelUnchecked(level)
}

// SetOutputLevelUnchecked writes level to DAC-DATA without a range check.
// The caller guarantees level <= MaxLevel(); otherwise the chip receives the
// raw 16-bit pattern.
func (d *Device[R]) SetOutputLevelUnchecked(level uint16) error {
	return d.write(RegDACData, byte(level>>8), byte(level))
}

// SetInternalReference enables or disables the internal reference. Enabled
// by default.
func (d *Device[R]) SetInternalReference(ref InternalReference) error {
	d.cfg.Reference = ref
	return d.writeConfig()
}

// SetPowerState powers the output on or off. On by default.
func (d *Device[R]) SetPowerState(state PowerState) error {
	d.cfg.Power = state
	return d.writeConfig()
}

// SetReferenceDivider halves the reference seen by the DAC core when set to
// DividerHalf. Leave enough headroom to VDD or the reference alarm trips and
// all outputs go to 0 V until the divider is corrected. DividerOneX by
// default.
func (d *Device[R]) SetReferenceDivider(div ReferenceDivider) error {
	d.cfg.Divider = div
	return d.writeGain()
}

// SetOutputGain sets the buffer amplifier gain. GainTwoX by default; pairs
// well with DividerHalf.
func (d *Device[R]) SetOutputGain(gain OutputGain) error {
	d.cfg.Gain = gain
	return d.writeGain()
}

// Configure writes both register groups, CONFIG first. It stops at the
// first failure; the shadow is updated group by group before each write.
func (d *Device[R]) Configure(cfg Config) error {
	d.cfg.Reference, d.cfg.Power = cfg.Reference, cfg.Power
	if err := d.writeConfig(); err != nil {
		return err
	}
	d.cfg.Divider, d.cfg.Gain = cfg.Divider, cfg.Gain
	return d.writeGain()
}

// RefAlarmStatus reads the STATUS register.
func (d *Device[R]) RefAlarmStatus() (AlarmStatus, error) {
	d.buf = [3]byte{RegStatus.Code(), 0, 0}
	d.selectChip(true)
	err := d.spi.Tx(d.buf[:], d.buf[:])
	d.selectChip(false)
	if err != nil {
		return AlarmLow, &SPIError{Reg: RegStatus, Err: err}
	}
	return decodeAlarm(d.buf[2]), nil
}

func (d *Device[R]) writeConfig() error {
	p := d.cfg.configPayload()
	return d.write(RegConfig, p[0], p[1])
}

func (d *Device[R]) writeGain() error {
	p := d.cfg.gainPayload()
	return d.write(RegGain, p[0], p[1])
}

func (d *Device[R]) write(reg Register, b1, b2 byte) error {
	d.buf = [3]byte{reg.Code(), b1, b2}
	d.selectChip(true)
	err := d.spi.Tx(d.buf[:], nil)
	d.selectChip(false)
	if err != nil {
		return &SPIError{Reg: reg, Err: err}
	}
	return nil
}

// CS is active-low.
func (d *Device[R]) selectChip(on bool) {
	if d.cs != nil {
		d.cs(!on)
	}
}
