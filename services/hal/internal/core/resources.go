package core

import (
	"tinygo.org/x/drivers"
)

type ResourceID string // e.g. "spi0"

// ---- SPI ----

// ResourceRegistry hands out buses. A bus is owned by one device at a time;
// claims on a bus that is already owned fail with errcode.BusInUse and
// unknown ids with errcode.UnknownBus.
type ResourceRegistry interface {
	ClaimSPI(devID string, id ResourceID) (drivers.SPI, error)
	ReleaseSPI(devID string, id ResourceID)
}

// ---- Device → HAL telemetry (single shape) ----
// By default an Event is a value update published retained to .../value.
// IsEvent publishes non-retained to .../event instead. A non-empty Err
// publishes only .../status=degraded.

type Event struct {
	Addr    CapAddr
	Payload any
	TSms    int64
	Err     string
	IsEvent bool
}

type EventEmitter interface {
	// Emit must not block; false means the event was dropped.
	Emit(ev Event) bool
}
