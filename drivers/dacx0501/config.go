package dacx0501

import "errors"

// ErrUnknownSetting is returned by the Parse* helpers.
var ErrUnknownSetting = errors.New("dacx0501: unknown setting")

// PowerState of the DAC output. In PowerOff the output is tied to GND
// through a 1 kΩ internal resistor.
type PowerState uint8

const (
	PowerOn PowerState = iota // default
	PowerOff
)

func (s PowerState) String() string {
	if s == PowerOff {
		return "off"
	}
	return "on"
}

// InternalReference enables or disables the on-chip voltage reference.
type InternalReference uint8

const (
	ReferenceEnable InternalReference = iota // default
	ReferenceDisable
)

func (s InternalReference) String() string {
	if s == ReferenceDisable {
		return "disable"
	}
	return "enable"
}

// ReferenceDivider applies to both the internal and an external reference.
type ReferenceDivider uint8

const (
	DividerOneX ReferenceDivider = iota // default
	DividerHalf
)

func (s ReferenceDivider) String() string {
	if s == DividerHalf {
		return "half"
	}
	return "1x"
}

// OutputGain of the output buffer amplifier.
type OutputGain uint8

const (
	GainTwoX OutputGain = iota // default
	GainOneX
)

func (s OutputGain) String() string {
	if s == GainOneX {
		return "1x"
	}
	return "2x"
}

func ParsePowerState(s string) (PowerState, error) {
	switch s {
	case "on":
		return PowerOn, nil
	case "off":
		return PowerOff, nil
	}
	return PowerOn, ErrUnknownSetting
}

func ParseInternalReference(s string) (InternalReference, error) {
	switch s {
	case "enable":
		return ReferenceEnable, nil
	case "disable":
		return ReferenceDisable, nil
	}
	return ReferenceEnable, ErrUnknownSetting
}

func ParseReferenceDivider(s string) (ReferenceDivider, error) {
	switch s {
	case "1x":
		return DividerOneX, nil
	case "half":
		return DividerHalf, nil
	}
	return DividerOneX, ErrUnknownSetting
}

func ParseOutputGain(s string) (OutputGain, error) {
	switch s {
	case "1x":
		return GainOneX, nil
	case "2x":
		return GainTwoX, nil
	}
	return GainTwoX, ErrUnknownSetting
}

// Config is the write-only shadow of the CONFIG and GAIN registers. The
// chip cannot be read back, so this is the last value written (or the
// power-on default).
type Config struct {
	// CONFIG register group.
	Reference InternalReference
	Power     PowerState

	// GAIN register group.
	Divider ReferenceDivider
	Gain    OutputGain
}

// DefaultConfig matches the device power-on state.
func DefaultConfig() Config {
	return Config{
		Reference: ReferenceEnable,
		Power:     PowerOn,
		Divider:   DividerOneX,
		Gain:      GainTwoX,
	}
}

// configPayload packs the CONFIG group:
// [REF-PWDWN (1 = internal reference off), DAC-PWDWN (1 = output off)].
func (c Config) configPayload() [2]byte {
	return [2]byte{
		boolByte(c.Reference == ReferenceDisable),
		boolByte(c.Power == PowerOff),
	}
}

// gainPayload packs the GAIN group:
// [REF-DIV (1 = reference halved), BUFF-GAIN (1 = gain of 2)].
func (c Config) gainPayload() [2]byte {
	return [2]byte{
		boolByte(c.Divider == DividerHalf),
		boolByte(c.Gain == GainTwoX),
	}
}

func decodeConfigPayload(p [2]byte) (InternalReference, PowerState) {
	ref, pwr := ReferenceEnable, PowerOn
	if p[0]&1 != 0 {
		ref = ReferenceDisable
	}
	if p[1]&1 != 0 {
		pwr = PowerOff
	}
	return ref, pwr
}

func decodeGainPayload(p [2]byte) (ReferenceDivider, OutputGain) {
	div, gain := DividerOneX, GainOneX
	if p[0]&1 != 0 {
		div = DividerHalf
	}
	if p[1]&1 != 0 {
		gain = GainTwoX
	}
	return div, gain
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
