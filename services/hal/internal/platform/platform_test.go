package platform

import (
	"errors"
	"testing"

	"periph.io/x/conn/v3/conntest"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spitest"

	"dacx0501-go/errcode"

	"tinygo.org/x/drivers"
)

type nopSPI struct{}

func (nopSPI) Tx(w, r []byte) error          { return nil }
func (nopSPI) Transfer(b byte) (byte, error) { return 0, nil }

func TestRegistryExclusiveClaims(t *testing.T) {
	r := NewRegistry(StaticFactory{"spi0": nopSPI{}})

	if _, err := r.ClaimSPI("dac1", "spi0"); err != nil {
		t.Fatalf("first claim: %v", err)
	}
	if _, err := r.ClaimSPI("dac1", "spi0"); err != nil {
		t.Fatalf("re-claim by owner: %v", err)
	}
	if _, err := r.ClaimSPI("dac2", "spi0"); err != errcode.BusInUse {
		t.Fatalf("second owner err = %v, want bus_in_use", err)
	}
	r.ReleaseSPI("dac2", "spi0") // not the owner; ignored
	if _, err := r.ClaimSPI("dac2", "spi0"); err != errcode.BusInUse {
		t.Fatalf("release by non-owner freed the bus: %v", err)
	}
	r.ReleaseSPI("dac1", "spi0")
	if _, err := r.ClaimSPI("dac2", "spi0"); err != nil {
		t.Fatalf("claim after release: %v", err)
	}
	if _, err := r.ClaimSPI("dac3", "spi9"); err != errcode.UnknownBus {
		t.Fatalf("unknown bus err = %v", err)
	}
}

func TestPeriphSPIFrames(t *testing.T) {
	pb := &spitest.Playback{
		Playback: conntest.Playback{
			Ops: []conntest.IO{
				{W: []byte{0x08, 0x12, 0x34}},
				{W: []byte{0x07, 0x00, 0x00}, R: []byte{0x00, 0x00, 0x01}},
			},
		},
	}
	c, err := pb.Connect(0, spi.Mode1, 8)
	if err != nil {
		t.Fatal(err)
	}
	var s drivers.SPI = NewPeriphSPI(c)

	if err := s.Tx([]byte{0x08, 0x12, 0x34}, nil); err != nil {
		t.Fatalf("write: %v", err)
	}
	frame := []byte{0x07, 0x00, 0x00}
	if err := s.Tx(frame, frame); err != nil {
		t.Fatalf("write-then-read: %v", err)
	}
	if frame[2] != 0x01 {
		t.Fatalf("response not written in place: %v", frame)
	}
	if err := pb.Close(); err != nil {
		t.Fatalf("unconsumed ops: %v", err)
	}
}

func TestPeriphSPIUnequalLengths(t *testing.T) {
	pb := &spitest.Playback{
		Playback: conntest.Playback{
			Ops: []conntest.IO{
				{W: []byte{0x07, 0x00, 0x00}, R: []byte{0xAA, 0xBB, 0xCC}},
				{W: []byte{0x01, 0x02}, R: []byte{0x10, 0x20}},
			},
		},
	}
	c, err := pb.Connect(0, spi.Mode1, 8)
	if err != nil {
		t.Fatal(err)
	}
	s := NewPeriphSPI(c)

	r := make([]byte, 3)
	if err := s.Tx([]byte{0x07}, r); err != nil {
		t.Fatal(err)
	}
	if r[2] != 0xCC {
		t.Fatalf("padded read = %v", r)
	}
	r1 := make([]byte, 1)
	if err := s.Tx([]byte{0x01, 0x02}, r1); err != nil {
		t.Fatal(err)
	}
	if r1[0] != 0x10 {
		t.Fatalf("truncated read = %v", r1)
	}
}

func TestPeriphFactory(t *testing.T) {
	pb := &spitest.Playback{
		Playback: conntest.Playback{Ops: []conntest.IO{{W: []byte{0x03, 0x00, 0x01}}}},
	}
	f := NewPeriphFactory(map[string]PortConfig{"spi0": {Dev: "/dev/spidev0.0", Mode: 1}})
	inits := 0
	f.initHost = func() error { inits++; return nil }
	var opened []string
	f.openPort = func(name string) (spi.PortCloser, error) {
		opened = append(opened, name)
		return pb, nil
	}

	b, err := f.OpenSPI("spi0")
	if err != nil {
		t.Fatal(err)
	}
	again, err := f.OpenSPI("spi0")
	if err != nil || again != b {
		t.Fatalf("second open returned a different bus: %v", err)
	}
	if inits != 1 || len(opened) != 1 || opened[0] != "/dev/spidev0.0" {
		t.Fatalf("inits=%d opened=%v", inits, opened)
	}
	if err := b.Tx([]byte{0x03, 0x00, 0x01}, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := f.OpenSPI("spi1"); err != errcode.UnknownBus {
		t.Fatalf("unconfigured port err = %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestPeriphFactoryHostInitFailure(t *testing.T) {
	f := NewPeriphFactory(map[string]PortConfig{"spi0": {}})
	boom := errors.New("no host drivers")
	f.initHost = func() error { return boom }
	_, err := f.OpenSPI("spi0")
	if errcode.Of(err) != errcode.IOError || !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
}
