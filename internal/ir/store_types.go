package ir

// Trace records, as written by the recorder and read back by the trace
// command. Frames and effects are ordered by their logical sequence numbers,
// never by wall time.

// RunRecord identifies one engine run.
type RunRecord struct {
	ID     string `json:"id"` // UUIDv7, sorts by creation
	Name   string `json:"name"`
	Source string `json:"source,omitempty"` // document path, if any
	Digest string `json:"digest,omitempty"` // OperationsDigest of the setup batch
}

// FrameRecord summarizes one processed frame.
type FrameRecord struct {
	Seq         int64   `json:"seq"`
	TimestampMS float64 `json:"timestamp_ms"`
	Epoch       int64   `json:"epoch"`
	Events      int     `json:"events"`
	Callbacks   int     `json:"callbacks"`
	Visited     int     `json:"visited"`
	Sinks       int     `json:"sinks"`
	Error       string  `json:"error,omitempty"`
}

// EffectRecord is one outbound side effect. Payload is canonical JSON.
type EffectRecord struct {
	Seq       int64   `json:"seq"` // per-run order of emission
	Frame     int64   `json:"frame"`
	Kind      string  `json:"kind"` // "view" or "event"
	ViewTag   ViewTag `json:"view_tag,omitempty"`
	ViewName  string  `json:"view_name,omitempty"`
	EventName string  `json:"event_name,omitempty"`
	Payload   string  `json:"payload"`
}
