// cmd/dacsweep/main.go
//
// dacsweep steps one DAC capability through a voltage range over the bus
// and prints each retained value. Run on the board whose id is given with
// -board.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"dacx0501-go/bus"
	"dacx0501-go/services/config"
	"dacx0501-go/services/hal"
	"dacx0501-go/types"
)

// ---------- Configuration ----------

const (
	halReadyTimeout = 5 * time.Second
	replyTimeout    = time.Second
)

var (
	boardID = flag.String("board", "rpi", "board id")
	capName = flag.String("dac", "out0", "dac capability name")
	fromMV  = flag.Uint("from", 0, "first step in mV")
	toMV    = flag.Uint("to", 2500, "last step in mV")
	stepMV  = flag.Uint("step", 250, "step in mV")
	dwell   = flag.Duration("dwell", 500*time.Millisecond, "time per step")
	cycles  = flag.Int("cycles", 1, "sweeps to run; 0 = until interrupted")
)

// ---------- Topics ----------

func tCtrl(verb string) bus.Topic {
	return bus.T("hal", "cap", "io", string(types.KindDAC), *capName, "control", verb)
}
func tValue() bus.Topic    { return bus.T("hal", "cap", "io", string(types.KindDAC), *capName, "value") }
func tHalState() bus.Topic { return bus.T("hal", "state") }

func waitReady(ctx context.Context, conn *bus.Connection) error {
	sub := conn.Subscribe(tHalState())
	defer conn.Unsubscribe(sub)
	ctx, cancel := context.WithTimeout(ctx, halReadyTimeout)
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("hal not ready: %w", ctx.Err())
		case m := <-sub.Channel():
			if st, ok := m.Payload.(types.HALState); ok && st.Level == "ready" {
				return nil
			}
		}
	}
}

func request(ctx context.Context, conn *bus.Connection, verb string, payload any) error {
	ctx, cancel := context.WithTimeout(ctx, replyTimeout)
	defer cancel()
	m, err := conn.RequestWait(ctx, conn.NewMessage(tCtrl(verb), payload, false))
	if err != nil {
		return err
	}
	if r, ok := m.Payload.(types.ErrorReply); ok {
		return fmt.Errorf("%s: %s", verb, r.Error)
	}
	return nil
}

// nextStep returns the step after mv, or false once another step would pass to.
func nextStep(mv, to, step uint) (uint, bool) {
	if step == 0 || step > to || mv > to-step {
		return 0, false
	}
	return mv + step, true
}

func sweep(ctx context.Context, conn *bus.Connection) error {
	for mv, ok := *fromMV, *fromMV <= *toMV; ok; mv, ok = nextStep(mv, *toMV, *stepMV) {
		if err := request(ctx, conn, "set_voltage", types.DACSetVoltage{MilliVolts: uint32(mv)}); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(*dwell):
		}
	}
	return request(ctx, conn, "read", nil)
}

func main() {
	flag.Parse()
	board, ok := config.BoardLookup(*boardID)
	if !ok {
		fmt.Fprintln(os.Stderr, "unknown board:", *boardID)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = context.WithValue(ctx, config.CtxDeviceKey, *boardID)

	b := bus.NewBus(8)
	conn := b.NewConnection("dacsweep")

	vals := conn.Subscribe(tValue())
	go func() {
		for m := range vals.Channel() {
			if v, ok := m.Payload.(types.DACValue); ok {
				fmt.Printf("%s level=%d mv=%d power=%s gain=%s div=%s alarm=%s\n",
					*capName, v.Level, v.MilliVolts, v.Power, v.Gain, v.Divider, v.Alarm)
			}
		}
	}()

	halDone := make(chan struct{})
	go func() {
		hal.Run(ctx, b.NewConnection("hal"), board.SPI)
		close(halDone)
	}()
	config.NewConfigService().Start(ctx, b.NewConnection("config"))

	err := waitReady(ctx, conn)
	for n := 0; err == nil && (*cycles == 0 || n < *cycles); n++ {
		err = sweep(ctx, conn)
	}
	if err != nil && ctx.Err() == nil {
		fmt.Fprintln(os.Stderr, "dacsweep:", err)
	}
	stop()
	<-halDone
	conn.Disconnect()
}
