// Package hal runs the hardware abstraction service: it builds devices from
// the retained config/hal message and exposes them as bus capabilities
// under hal/cap/<domain>/<kind>/<name>.
package hal

import (
	"context"

	"dacx0501-go/bus"
	"dacx0501-go/services/hal/internal/core"
	"dacx0501-go/services/hal/internal/platform"

	// Device builders register themselves.
	_ "dacx0501-go/services/hal/devices/dacx0501"

	"tinygo.org/x/drivers"
)

// SPIPort describes one host SPI port.
type SPIPort = platform.PortConfig

// Run serves host SPI ports (Linux spidev through periph) until ctx is done.
func Run(ctx context.Context, conn *bus.Connection, ports map[string]SPIPort) {
	f := platform.NewPeriphFactory(ports)
	defer func() {
		if err := f.Close(); err != nil {
			println("[hal] spi close:", err.Error())
		}
	}()
	run(ctx, conn, f)
}

// RunWith serves already configured buses, keyed by bus id.
func RunWith(ctx context.Context, conn *bus.Connection, buses map[string]drivers.SPI) {
	run(ctx, conn, platform.StaticFactory(buses))
}

func run(ctx context.Context, conn *bus.Connection, f platform.Factory) {
	core.NewHAL(conn, platform.NewRegistry(f)).Run(ctx)
}
