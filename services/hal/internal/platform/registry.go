// Package platform provides the buses HAL devices claim.
package platform

import (
	"sync"

	"dacx0501-go/errcode"
	"dacx0501-go/services/hal/internal/core"

	"tinygo.org/x/drivers"
)

// Factory opens a bus by id. Unknown ids return errcode.UnknownBus.
type Factory interface {
	OpenSPI(id string) (drivers.SPI, error)
}

// StaticFactory serves pre-built buses (MCU boards, tests).
type StaticFactory map[string]drivers.SPI

func (f StaticFactory) OpenSPI(id string) (drivers.SPI, error) {
	if b, ok := f[id]; ok && b != nil {
		return b, nil
	}
	return nil, errcode.UnknownBus
}

// Registry implements core.ResourceRegistry with exclusive ownership per bus.
type Registry struct {
	mu     sync.Mutex
	f      Factory
	owners map[core.ResourceID]string
}

func NewRegistry(f Factory) *Registry {
	return &Registry{f: f, owners: map[core.ResourceID]string{}}
}

func (r *Registry) ClaimSPI(devID string, id core.ResourceID) (drivers.SPI, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if owner, taken := r.owners[id]; taken && owner != devID {
		return nil, errcode.BusInUse
	}
	b, err := r.f.OpenSPI(string(id))
	if err != nil {
		return nil, err
	}
	r.owners[id] = devID
	return b, nil
}

// ReleaseSPI is a no-op unless devID owns the bus.
func (r *Registry) ReleaseSPI(devID string, id core.ResourceID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.owners[id] == devID {
		delete(r.owners, id)
	}
}
