package errcode

import (
	"errors"
	"fmt"
	"testing"
)

func TestOf(t *testing.T) {
	cases := []struct {
		err  error
		want Code
	}{
		{nil, OK},
		{Busy, Busy},
		{&E{C: BusInUse, Op: "claim"}, BusInUse},
		{errors.New("boom"), Error},
	}
	for _, c := range cases {
		if got := Of(c.err); got != c.want {
			t.Errorf("Of(%v) = %q, want %q", c.err, got, c.want)
		}
	}
}

type coded struct{}

func (coded) Error() string { return "coded" }
func (coded) Code() Code    { return ValueOverflow }

func TestOfOutermostCodeWins(t *testing.T) {
	cases := []struct {
		err  error
		want Code
	}{
		{&E{C: IOError, Msg: "spi0", Err: Timeout}, IOError},
		{fmt.Errorf("set: %w", &E{C: InvalidParams}), InvalidParams},
		{fmt.Errorf("set: %w", coded{}), ValueOverflow},
		{&E{C: Busy, Err: coded{}}, Busy},
		{fmt.Errorf("wrapped: %w", errors.New("plain")), Error},
	}
	for _, c := range cases {
		if got := Of(c.err); got != c.want {
			t.Errorf("Of(%v) = %q, want %q", c.err, got, c.want)
		}
	}
}

func TestEMessage(t *testing.T) {
	e := &E{C: IOError, Msg: "spi0", Err: Timeout}
	if e.Error() != "io_error: spi0" {
		t.Fatalf("Error() = %q", e.Error())
	}
	if !errors.Is(e, Timeout) {
		t.Fatal("cause not unwrapped")
	}
	if (&E{C: Busy}).Error() != "busy" {
		t.Fatal("bare code message")
	}
}
