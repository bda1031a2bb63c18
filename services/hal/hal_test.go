package hal

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"dacx0501-go/bus"
	"dacx0501-go/errcode"
	dacdev "dacx0501-go/services/hal/devices/dacx0501"
	"dacx0501-go/services/hal/internal/core"
	"dacx0501-go/types"

	"tinygo.org/x/drivers"
)

type busSPI struct {
	mu     sync.Mutex
	frames [][]byte
	status byte
}

func (s *busSPI) Tx(w, r []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, append([]byte(nil), w...))
	if len(r) == 3 {
		r[2] = s.status
	}
	return nil
}

func (s *busSPI) Transfer(b byte) (byte, error) { return 0, nil }

func (s *busSPI) take() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.frames
	s.frames = nil
	return out
}

func recvOrTimeout(ch <-chan *bus.Message, d time.Duration) (*bus.Message, error) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case m := <-ch:
		return m, nil
	case <-timer.C:
		return nil, context.DeadlineExceeded
	}
}

func waitReady(t *testing.T, conn *bus.Connection) {
	t.Helper()
	sub := conn.Subscribe(bus.T("hal", "state"))
	defer conn.Unsubscribe(sub)
	for {
		m, err := recvOrTimeout(sub.Channel(), 2*time.Second)
		if err != nil {
			t.Fatal("HAL never became ready")
		}
		if st, ok := m.Payload.(types.HALState); ok && st.Level == "ready" {
			return
		}
	}
}

func control(t *testing.T, conn *bus.Connection, name, verb string, payload any) any {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	a := core.CapAddr{Domain: "io", Kind: "dac", Name: name}
	m, err := conn.RequestWait(ctx, conn.NewMessage(core.CapCtrl(a, verb), payload, false))
	if err != nil {
		t.Fatalf("%s/%s: %v", name, verb, err)
	}
	return m.Payload
}

// waitValue returns the first value on the capability accepted by ok. The
// retained value may predate the last control.
func waitValue(t *testing.T, conn *bus.Connection, name string, ok func(types.DACValue) bool) types.DACValue {
	t.Helper()
	sub := conn.Subscribe(core.CapValue(core.CapAddr{Domain: "io", Kind: "dac", Name: name}))
	defer conn.Unsubscribe(sub)
	var last types.DACValue
	for {
		m, err := recvOrTimeout(sub.Channel(), time.Second)
		if err != nil {
			t.Fatalf("%s value = %+v", name, last)
		}
		if v, isVal := m.Payload.(types.DACValue); isVal {
			if ok(v) {
				return v
			}
			last = v
		}
	}
}

func expectFrames(t *testing.T, got [][]byte, want ...[]byte) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("frames = %x, want %x", got, want)
	}
	for i := range want {
		if !bytes.Equal(got[i], want[i]) {
			t.Fatalf("frame %d = %x, want %x", i, got[i], want[i])
		}
	}
}

func TestHALDrivesDACsOverBus(t *testing.T) {
	spi0, spi1 := &busSPI{}, &busSPI{}
	b := bus.NewBus(16)
	conn := b.NewConnection("test")

	conn.Publish(conn.NewMessage(bus.T("config", "hal"), types.HALConfig{
		Devices: []types.HALDevice{
			{ID: "dac1", Type: "dac80501", Params: dacdev.Params{Bus: "spi0", Initial: 0x8000}},
			{ID: "dac2", Type: "dac60501", Params: dacdev.Params{Bus: "spi1", Gain: "1x"}},
			// spi0 is already owned by dac1.
			{ID: "dac3", Type: "dac70501", Params: dacdev.Params{Bus: "spi0"}},
		},
	}, true))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		RunWith(ctx, b.NewConnection("hal"), map[string]drivers.SPI{"spi0": spi0, "spi1": spi1})
		close(done)
	}()
	defer func() {
		cancel()
		<-done
	}()
	waitReady(t, conn)

	expectFrames(t, spi0.take(), []byte{0x03, 0, 0}, []byte{0x04, 0, 1}, []byte{0x08, 0x80, 0x00})
	waitValue(t, conn, "dac1", func(v types.DACValue) bool { return v.Level == 0x8000 && v.MilliVolts == 2500 })
	spi1.take()

	if got := control(t, conn, "dac2", "set_voltage", types.DACSetVoltage{MilliVolts: 1250}); got != (types.OKReply{OK: true}) {
		t.Fatalf("set_voltage reply = %+v", got)
	}
	expectFrames(t, spi1.take(), []byte{0x08, 0x08, 0x00})
	waitValue(t, conn, "dac2", func(v types.DACValue) bool { return v.Level == 2048 && v.MilliVolts == 1250 && v.Gain == "1x" })

	got := control(t, conn, "dac2", "set", types.DACSet{Level: 0x1000})
	if r, ok := got.(types.ErrorReply); !ok || r.Error != string(errcode.ValueOverflow) {
		t.Fatalf("overflow reply = %+v", got)
	}
	expectFrames(t, spi1.take())

	spi0.mu.Lock()
	spi0.status = 1
	spi0.mu.Unlock()
	if got := control(t, conn, "dac1", "read", nil); got != (types.OKReply{OK: true}) {
		t.Fatalf("read reply = %+v", got)
	}
	waitValue(t, conn, "dac1", func(v types.DACValue) bool { return v.Alarm == "high" })

	got = control(t, conn, "dac3", "set", types.DACSet{Level: 1})
	if r, ok := got.(types.ErrorReply); !ok || r.Error != string(errcode.UnknownCapability) {
		t.Fatalf("dac3 reply = %+v", got)
	}
}
