package core

import (
	"context"

	"dacx0501-go/bus"
	"dacx0501-go/errcode"
	"dacx0501-go/types"
	"dacx0501-go/x/strx"
	"dacx0501-go/x/timex"
)

const (
	eventQueueLen = 16
	pollQueueLen  = 8
)

type HAL struct {
	conn *bus.Connection
	res  Resources

	// Device registry
	dev map[string]Device // devID -> device

	// Capability index: address -> devID
	capIndex map[CapAddr]string

	cfgSub  *bus.Subscription
	ctrlSub *bus.Subscription

	// Single-threaded publication of device events
	evCh chan Event

	pollCh chan PollReq
	poller *Poller
}

func NewHAL(conn *bus.Connection, reg ResourceRegistry) *HAL {
	h := &HAL{
		conn:     conn,
		res:      Resources{Reg: reg},
		dev:      map[string]Device{},
		capIndex: map[CapAddr]string{},
		evCh:     make(chan Event, eventQueueLen),
		pollCh:   make(chan PollReq, pollQueueLen),
	}
	// HAL provides the emitter to devices.
	h.res.Pub = h
	h.poller = NewPoller(h.pollCh)
	return h
}

// Run serves configuration, controls, polls and device events until ctx is
// done, then closes every device.
func (h *HAL) Run(ctx context.Context) {
	h.cfgSub = h.conn.Subscribe(topicConfigHAL())
	h.ctrlSub = h.conn.Subscribe(ctrlWildcard())
	defer h.conn.Unsubscribe(h.cfgSub)
	defer h.conn.Unsubscribe(h.ctrlSub)
	defer h.closeAll()

	go h.poller.Run(ctx)

	h.pubHALState("idle", "")
	ready := false
	for {
		select {
		case <-ctx.Done():
			h.pubHALState("stopped", "context_cancelled")
			return
		case msg := <-h.cfgSub.Channel():
			if cfg, ok := msg.Payload.(types.HALConfig); ok {
				// Additive: existing device ids are left alone.
				h.applyConfig(ctx, cfg)
				if !ready {
					ready = true
					h.pubHALState("ready", "")
				}
			}
		case m := <-h.ctrlSub.Channel():
			if !ready {
				h.replyErr(m, errcode.HALNotReady)
				continue
			}
			h.handleControl(m)
		case req := <-h.pollCh:
			h.handlePoll(req)
		case ev := <-h.evCh:
			// All device→HAL telemetry is published from this goroutine.
			h.handleEvent(ev)
		}
	}
}

func (h *HAL) applyConfig(ctx context.Context, cfg types.HALConfig) {
	for i := range cfg.Devices {
		dc := cfg.Devices[i]
		if _, exists := h.dev[dc.ID]; exists {
			continue
		}
		b, ok := lookupBuilder(dc.Type)
		if !ok {
			println("[hal] no builder for type:", dc.Type, "id:", dc.ID)
			continue
		}
		dev, err := b.Build(ctx, BuilderInput{
			ID:     dc.ID,
			Type:   dc.Type,
			Params: dc.Params,
			Res:    h.res,
		})
		if err != nil {
			println("[hal] build failed for:", dc.ID, "err:", err.Error())
			continue
		}

		// Register capabilities first so Init can report through them.
		var addrs []CapAddr
		for _, cs := range dev.Capabilities() {
			a := CapAddr{
				Kind: string(cs.Kind),
				Name: strx.Coalesce(cs.Name, dev.ID()),
			}
			a.Domain = strx.Coalesce(cs.Domain, defaultDomainFor(a.Kind))
			addrs = append(addrs, a)

			h.conn.Publish(h.conn.NewMessage(capInfo(a), cs.Info, true))
			h.conn.Publish(h.conn.NewMessage(
				capStatus(a),
				types.CapabilityStatus{Link: types.LinkDown, TSms: timex.NowMs()},
				true,
			))
		}

		if err := dev.Init(ctx); err != nil {
			println("[hal] init failed for:", dc.ID, "err:", err.Error())
			code := string(errcode.Of(err))
			for _, a := range addrs {
				h.conn.Publish(h.conn.NewMessage(
					capStatus(a),
					types.CapabilityStatus{Link: types.LinkDegraded, TSms: timex.NowMs(), Error: code},
					true,
				))
			}
			_ = dev.Close()
			continue
		}

		h.dev[dev.ID()] = dev
		for _, a := range addrs {
			h.capIndex[a] = dev.ID()
		}
	}

	for _, ps := range cfg.Pollers {
		a := CapAddr{Domain: ps.Domain, Kind: string(ps.Kind), Name: ps.Name}
		a.Domain = strx.Coalesce(a.Domain, defaultDomainFor(a.Kind))
		if _, ok := h.capIndex[a]; !ok {
			println("[hal] poller for unknown capability:", a.Domain, a.Kind, a.Name)
			continue
		}
		h.poller.Upsert(a, strx.Coalesce(ps.Verb, "read"), timex.Ms(ps.IntervalMs), timex.Ms(uint32(ps.JitterMs)))
	}
}

func (h *HAL) handleControl(msg *bus.Message) {
	// hal/cap/<domain>/<kind>/<name>/control/<verb>
	if msg.Topic.Len() != 7 {
		h.replyErr(msg, errcode.InvalidTopic)
		return
	}
	domain, _ := msg.Topic.At(2).(string)
	kind, _ := msg.Topic.At(3).(string)
	name, _ := msg.Topic.At(4).(string)
	verb, _ := msg.Topic.At(6).(string)
	addr := CapAddr{Domain: domain, Kind: kind, Name: name}

	dev := h.dev[h.capIndex[addr]]
	if dev == nil {
		h.replyErr(msg, errcode.UnknownCapability)
		return
	}

	res, err := dev.Control(addr, verb, msg.Payload)
	if err != nil {
		h.replyErr(msg, errcode.Of(err))
		return
	}
	if res.OK {
		h.replyOK(msg)
		return
	}
	h.replyErr(msg, strx.Or(res.Error, errcode.Busy))
}

func (h *HAL) handlePoll(req PollReq) {
	dev := h.dev[h.capIndex[req.Addr]]
	if dev == nil {
		h.poller.Stop(req.Addr, req.Verb)
		return
	}
	// Failures are reported by the device as degraded status.
	_, _ = dev.Control(req.Addr, req.Verb, nil)
}

func (h *HAL) handleEvent(ev Event) {
	a := ev.Addr

	// Error → retained status:degraded; no value/event published.
	if ev.Err != "" {
		h.conn.Publish(h.conn.NewMessage(
			capStatus(a),
			types.CapabilityStatus{Link: types.LinkDegraded, TSms: ev.TSms, Error: ev.Err},
			true,
		))
		return
	}

	if ev.IsEvent {
		h.conn.Publish(h.conn.NewMessage(capEvent(a), ev.Payload, false))
	} else {
		h.conn.Publish(h.conn.NewMessage(capValue(a), ev.Payload, true))
	}
	h.conn.Publish(h.conn.NewMessage(
		capStatus(a),
		types.CapabilityStatus{Link: types.LinkUp, TSms: ev.TSms},
		true,
	))
}

func (h *HAL) closeAll() {
	for id, d := range h.dev {
		if err := d.Close(); err != nil {
			println("[hal] close failed for:", id, "err:", err.Error())
		}
	}
}

func (h *HAL) pubHALState(level, status string) {
	h.conn.Publish(h.conn.NewMessage(
		topicHALState(),
		types.HALState{Level: level, Status: status, TSms: timex.NowMs()},
		true,
	))
}

func (h *HAL) replyOK(m *bus.Message) {
	h.conn.Reply(m, types.OKReply{OK: true}, false)
}

func (h *HAL) replyErr(m *bus.Message, code errcode.Code) {
	h.conn.Reply(m, types.ErrorReply{OK: false, Error: string(strx.Or(code, errcode.Error))}, false)
}

// Analog and digital outputs live under "io".
func defaultDomainFor(kind string) string {
	return "io"
}

// ---- HAL as EventEmitter (enqueue to single publisher) ----

func (h *HAL) Emit(ev Event) bool {
	select {
	case h.evCh <- ev:
		return true
	default:
		return false
	}
}
