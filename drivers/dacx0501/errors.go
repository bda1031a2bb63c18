package dacx0501

import "errors"

// Errors returned by the driver (TinyGo-safe; no fmt).
var (
	// ErrValueOverflow: the output code has bits set at or above the
	// variant's resolution. Nothing is sent.
	ErrValueOverflow = errors.New("dacx0501: value overflow")
	// ErrSPI matches every transport failure via errors.Is.
	ErrSPI = errors.New("dacx0501: spi error")
)

// SPIError wraps a transport failure with the register it was addressed to.
type SPIError struct {
	Reg Register
	Err error
}

func (e *SPIError) Error() string {
	if e.Err == nil {
		return ErrSPI.Error() + " (" + e.Reg.String() + ")"
	}
	return ErrSPI.Error() + " (" + e.Reg.String() + "): " + e.Err.Error()
}

func (e *SPIError) Unwrap() error { return e.Err }

func (e *SPIError) Is(target error) bool { return target == ErrSPI }
