package dacx0501

// Register selects the target of a frame. The command byte is the first byte
// of every 3-byte transfer.
//
//	 DC  DC  DC  DC
//	B23 B22 B21 B20 B19 B18 B17 B16 REGISTER  HEX
//	 0   0   0   0   0   0   0   0  NOOP      0x00
//	 0   0   0   0   0   0   0   1  DEVID     0x01
//	 0   0   0   0   0   0   1   0  SYNC      0x02
//	 0   0   0   0   0   0   1   1  CONFIG    0x03
//	 0   0   0   0   0   1   0   0  GAIN      0x04
//	 0   0   0   0   0   1   0   1  TRIGGER   0x05
//	 0   0   0   0   0   1   1   1  STATUS    0x07
//	 0   0   0   0   1   0   0   0  DACDATA   0x08
type Register uint8

const (
	RegNoOp Register = iota
	RegDeviceID
	RegSync
	RegConfig
	RegGain
	RegTrigger
	RegStatus
	RegDACData
)

// Command byte per register. Indexed by Register; the table is the only
// source of wire codes.
var regCodes = [...]byte{
	RegNoOp:     0x00,
	RegDeviceID: 0x01,
	RegSync:     0x02,
	RegConfig:   0x03,
	RegGain:     0x04,
	RegTrigger:  0x05,
	RegStatus:   0x07,
	RegDACData:  0x08,
}

var regNames = [...]string{
	RegNoOp:     "noop",
	RegDeviceID: "devid",
	RegSync:     "sync",
	RegConfig:   "config",
	RegGain:     "gain",
	RegTrigger:  "trigger",
	RegStatus:   "status",
	RegDACData:  "dacdata",
}

// Code returns the command byte for r. Values outside the register set
// encode as NOOP.
func (r Register) Code() byte {
	if int(r) >= len(regCodes) {
		return regCodes[RegNoOp]
	}
	return regCodes[r]
}

func (r Register) String() string {
	if int(r) >= len(regNames) {
		return "unknown"
	}
	return regNames[r]
}
