package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"dacx0501-go/bus"
	"dacx0501-go/services/config"
	"dacx0501-go/services/hal"
	"dacx0501-go/services/heartbeat"
)

func printTopic(prefix string, t bus.Topic) {
	print(prefix, " ")
	for i := 0; i < t.Len(); i++ {
		if i > 0 {
			print("/")
		}
		switch v := t.At(i).(type) {
		case string:
			print(v)
		case int:
			print(v)
		default:
			print("?")
		}
	}
	println()
}

func main() {
	device := "rpi"
	if len(os.Args) > 1 {
		device = os.Args[1]
	}
	board, ok := config.BoardLookup(device)
	if !ok {
		println("[main] unknown board:", device)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = context.WithValue(ctx, config.CtxDeviceKey, device)

	println("[main] bootstrapping bus …")
	b := bus.NewBus(8)
	halConn := b.NewConnection("hal")
	cfgConn := b.NewConnection("config")
	uiConn := b.NewConnection("ui")

	mon := uiConn.Subscribe(bus.T("hal", "#"))
	go func() {
		for m := range mon.Channel() {
			printTopic("[monitor] <-", m.Topic)
		}
	}()

	config.NewConfigService().Start(ctx, cfgConn)
	_ = (&heartbeat.Service{}).Start(ctx, b.NewConnection("heartbeat"))

	println("[main] starting hal on", device)
	hal.Run(ctx, halConn, board.SPI)
	uiConn.Disconnect()
	println("[main] stopped")
}
