package dacx0501dev

import (
	"errors"

	"dacx0501-go/drivers/dacx0501"
	"dacx0501-go/errcode"
)

// codeOf maps driver errors to bus codes.
func codeOf(err error) errcode.Code {
	switch {
	case err == nil:
		return errcode.OK
	case errors.Is(err, dacx0501.ErrValueOverflow):
		return errcode.ValueOverflow
	case errors.Is(err, dacx0501.ErrSPI):
		return errcode.IOError
	case errors.Is(err, dacx0501.ErrUnknownSetting),
		errors.Is(err, dacx0501.ErrInvalidReference):
		return errcode.InvalidParams
	}
	return errcode.Of(err)
}

// wrapErr attaches the bus code; the driver error stays in the chain.
func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &errcode.E{C: codeOf(err), Op: op, Err: err}
}
