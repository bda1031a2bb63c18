package dacx0501

import "errors"

var errBus = errors.New("bus fault")

// fakeSPI records every Tx and answers reads with resp.
type fakeSPI struct {
	writes [][]byte // w of each Tx
	reads  int      // Tx calls with a read buffer
	resp   [3]byte
	err    error
}

func (f *fakeSPI) Tx(w, r []byte) error {
	f.writes = append(f.writes, append([]byte(nil), w...))
	if f.err != nil {
		return f.err
	}
	if r != nil {
		f.reads++
		copy(r, f.resp[:])
	}
	return nil
}

func (f *fakeSPI) Transfer(b byte) (byte, error) {
	var r [1]byte
	err := f.Tx([]byte{b}, r[:])
	return r[0], err
}

func (f *fakeSPI) last() []byte {
	if len(f.writes) == 0 {
		return nil
	}
	return f.writes[len(f.writes)-1]
}
