package types

// ------------------------
// DAC
// ------------------------

type DACInfo struct {
	Bus    string `json:"bus"`
	Bits   uint8  `json:"bits"`
	Max    uint16 `json:"max"`
	VrefMV uint32 `json:"vref_mv"`
}

// DACSet carries a raw output code.
type DACSet struct {
	Level uint16 `json:"level"`
}

type DACSetVoltage struct {
	MilliVolts uint32 `json:"mv"`
}

// DACConfigure changes register settings. Empty fields are left as they are.
type DACConfigure struct {
	Power     string `json:"power,omitempty"`     // "on" | "off"
	Reference string `json:"reference,omitempty"` // "enable" | "disable"
	Divider   string `json:"divider,omitempty"`   // "1x" | "half"
	Gain      string `json:"gain,omitempty"`      // "1x" | "2x"
}

// DACValue is the retained state of a DAC capability. Register settings are
// the last values written; the chip cannot be read back.
type DACValue struct {
	Level      uint16 `json:"level"`
	MilliVolts uint32 `json:"mv"`
	Power      string `json:"power"`
	Reference  string `json:"reference"`
	Divider    string `json:"divider"`
	Gain       string `json:"gain"`
	Alarm      string `json:"alarm,omitempty"` // "high" | "low"; set by read
}
