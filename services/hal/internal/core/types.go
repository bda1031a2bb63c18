package core

import (
	"context"

	"dacx0501-go/errcode"
	"dacx0501-go/types"
)

// ---- Capability & device model ----

// CapAddr addresses one public capability: hal/cap/<domain>/<kind>/<name>.
type CapAddr struct {
	Domain string
	Kind   string
	Name   string
}

type CapabilitySpec struct {
	Domain string // "" => inferred from kind
	Kind   types.Kind
	Name   string // "" => device id
	Info   types.Info
}

// EnqueueResult is the synchronous outcome of a control. OK=false with an
// empty Error is reported as busy.
type EnqueueResult struct {
	OK    bool
	Error errcode.Code
}

// Device is what a builder produces. Control runs on the HAL goroutine and
// must return promptly; values are reported through Resources.Pub.
type Device interface {
	ID() string
	Capabilities() []CapabilitySpec
	Init(ctx context.Context) error
	Control(addr CapAddr, verb string, payload any) (EnqueueResult, error)
	Close() error // release claimed resources
}

// ---- HAL-injected resources ----

type Resources struct {
	Reg ResourceRegistry
	Pub EventEmitter // provided by HAL
}

// Builder input
type BuilderInput struct {
	ID, Type string
	Params   any
	Res      Resources
}

type Builder interface {
	Build(ctx context.Context, in BuilderInput) (Device, error)
}
