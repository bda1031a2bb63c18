// Package heartbeat publishes a periodic liveness message on
// system/heartbeat. The interval follows the retained config/heartbeat.
package heartbeat

import (
	"context"
	"time"

	"dacx0501-go/bus"
	"dacx0501-go/types"
	"dacx0501-go/x/mathx"
	"dacx0501-go/x/timex"
)

const (
	defaultInterval = time.Second
	minInterval     = time.Millisecond
	maxInterval     = time.Hour
)

var (
	topicConfigHeartbeat = bus.T("config", "heartbeat")
	topicHeartbeat       = bus.T("system", "heartbeat")
)

type Service struct{}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection) {
	cfgSub := conn.Subscribe(topicConfigHeartbeat)
	defer conn.Unsubscribe(cfgSub)

	tick := time.NewTicker(defaultInterval)
	defer tick.Stop()

	var seq uint32
	for {
		select {
		case <-ctx.Done():
			println("[heartbeat] stopping")
			return
		case <-tick.C:
			seq++
			conn.Publish(conn.NewMessage(topicHeartbeat, types.Heartbeat{Seq: seq, TSms: timex.NowMs()}, false))
		case msg := <-cfgSub.Channel():
			cfg, ok := msg.Payload.(types.HeartbeatConfig)
			if !ok || cfg.IntervalMs == 0 {
				continue
			}
			d := interval(cfg.IntervalMs)
			tick.Reset(d)
			println("[heartbeat] interval set to", d.Milliseconds(), "ms")
		}
	}
}

func interval(ms uint32) time.Duration {
	return mathx.Clamp(timex.Ms(ms), minInterval, maxInterval)
}

// Start runs the service until ctx is done.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	go s.serviceLoop(ctx, conn)
	return nil
}
