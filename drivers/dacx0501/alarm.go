package dacx0501

// AlarmStatus is High when the headroom between VDD and the reference is
// below the analog threshold. While High the reference buffer is shut down
// and all outputs read 0 V; DAC codes are retained.
type AlarmStatus uint8

const (
	AlarmLow AlarmStatus = iota
	AlarmHigh
)

func (a AlarmStatus) String() string {
	if a == AlarmHigh {
		return "high"
	}
	return "low"
}

// decodeAlarm reads REF-ALARM from the third byte of a STATUS response.
// Only an exact 1 is High.
func decodeAlarm(b byte) AlarmStatus {
	if b == 1 {
		return AlarmHigh
	}
	return AlarmLow
}
