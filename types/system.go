package types

type HeartbeatConfig struct {
	IntervalMs uint32 `json:"interval_ms"`
}

type Heartbeat struct {
	Seq  uint32 `json:"seq"`
	TSms int64  `json:"ts_ms"`
}
