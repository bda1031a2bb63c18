package platform

import (
	"sync"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"dacx0501-go/errcode"

	"tinygo.org/x/drivers"
)

// PortConfig describes one host SPI port (spidev on Linux).
type PortConfig struct {
	Dev    string // spireg name, e.g. "/dev/spidev0.0" or "SPI0.0"; "" = first port
	FreqHz uint32 // default 1 MHz
	Mode   uint8  // SPI mode 0..3; DACx0501 samples on the falling edge
	Bits   int    // default 8
}

const defaultFreqHz = 1_000_000

// PeriphSPI adapts a periph.io connection to the tinygo drivers.SPI contract.
type PeriphSPI struct {
	c   spi.Conn
	buf []byte
}

func NewPeriphSPI(c spi.Conn) *PeriphSPI { return &PeriphSPI{c: c} }

// Tx writes w and reads len(r) bytes in the same transfer. periph requires
// equal lengths, so the shorter side is padded from a scratch buffer.
func (p *PeriphSPI) Tx(w, r []byte) error {
	switch {
	case len(r) == 0:
		return p.c.Tx(w, nil)
	case len(w) == len(r):
		return p.c.Tx(w, r)
	case len(w) < len(r):
		p.buf = append(p.buf[:0], w...)
		p.buf = append(p.buf, make([]byte, len(r)-len(w))...)
		return p.c.Tx(p.buf, r)
	default:
		rx := make([]byte, len(w))
		if err := p.c.Tx(w, rx); err != nil {
			return err
		}
		copy(r, rx)
		return nil
	}
}

func (p *PeriphSPI) Transfer(b byte) (byte, error) {
	var r [1]byte
	err := p.c.Tx([]byte{b}, r[:])
	return r[0], err
}

// PeriphFactory opens configured ports lazily through periph's registry.
type PeriphFactory struct {
	mu    sync.Mutex
	ports map[string]PortConfig
	open  map[string]*PeriphSPI
	cls   []spi.PortCloser

	// Swapped in tests.
	initHost func() error
	openPort func(name string) (spi.PortCloser, error)

	initOnce sync.Once
	initErr  error
}

func NewPeriphFactory(ports map[string]PortConfig) *PeriphFactory {
	return &PeriphFactory{
		ports: ports,
		open:  map[string]*PeriphSPI{},
		initHost: func() error {
			_, err := host.Init()
			return err
		},
		openPort: spireg.Open,
	}
}

func (f *PeriphFactory) OpenSPI(id string) (drivers.SPI, error) {
	cfg, ok := f.ports[id]
	if !ok {
		return nil, errcode.UnknownBus
	}
	f.initOnce.Do(func() { f.initErr = f.initHost() })
	if f.initErr != nil {
		return nil, &errcode.E{C: errcode.IOError, Op: "host_init", Msg: id, Err: f.initErr}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if b := f.open[id]; b != nil {
		return b, nil
	}
	port, err := f.openPort(cfg.Dev)
	if err != nil {
		return nil, &errcode.E{C: errcode.UnknownBus, Op: "spi_open", Msg: id, Err: err}
	}
	freq := cfg.FreqHz
	if freq == 0 {
		freq = defaultFreqHz
	}
	bits := cfg.Bits
	if bits == 0 {
		bits = 8
	}
	c, err := port.Connect(physic.Frequency(freq)*physic.Hertz, spi.Mode(cfg.Mode), bits)
	if err != nil {
		_ = port.Close()
		return nil, &errcode.E{C: errcode.IOError, Op: "spi_connect", Msg: id, Err: err}
	}
	b := NewPeriphSPI(c)
	f.open[id] = b
	f.cls = append(f.cls, port)
	return b, nil
}

// Close releases every opened port.
func (f *PeriphFactory) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	var first error
	for _, c := range f.cls {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	f.cls = nil
	f.open = map[string]*PeriphSPI{}
	return first
}
