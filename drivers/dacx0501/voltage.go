package dacx0501

import (
	"errors"

	"periph.io/x/conn/v3/physic"

	"dacx0501-go/x/mathx"
)

// ErrInvalidReference: the reference voltage passed to a conversion is not
// positive.
var ErrInvalidReference = errors.New("dacx0501: invalid reference voltage")

// Transfer function, using the shadow divider and gain:
//
//	Vout = level / 2^bits * Vref / div * gain
func (d *Device[R]) scale() (num, den uint64) {
	num, den = 1, uint64(1)<<d.res.Bits()
	if d.cfg.Gain == GainTwoX {
		num = 2
	}
	if d.cfg.Divider == DividerHalf {
		den *= 2
	}
	return num, den
}

// OutputPotential is the nominal output for level with reference vref under
// the current divider and gain settings. Rounded to the nearest nV.
func (d *Device[R]) OutputPotential(level uint16, vref physic.ElectricPotential) (physic.ElectricPotential, error) {
	if vref <= 0 {
		return 0, ErrInvalidReference
	}
	num, den := d.scale()
	return physic.ElectricPotential(mathx.RoundDiv(uint64(level)*uint64(vref)*num, den)), nil
}

// LevelForPotential returns the code nearest to v. Potentials below 0 V or
// above the code range return ErrValueOverflow.
func (d *Device[R]) LevelForPotential(v, vref physic.ElectricPotential) (uint16, error) {
	if vref <= 0 {
		return 0, ErrInvalidReference
	}
	// Full scale never exceeds 2*vref; this also bounds the products below.
	if !mathx.Between(v, 0, 2*vref) {
		return 0, ErrValueOverflow
	}
	num, den := d.scale()
	code := mathx.RoundDiv(uint64(v)*den, uint64(vref)*num)
	if code > uint64(d.MaxLevel()) {
		return 0, ErrValueOverflow
	}
	return uint16(code), nil
}
