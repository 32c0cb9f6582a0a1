// Package types holds the payloads shared by the engine, the shell and the
// preview stream.
package types

// ------------------------
// Breathing channels
// ------------------------

// Stage is the lifecycle stage of one breathing channel.
type Stage uint8

const (
	StagePaused  Stage = iota // power-on delay, held at the start level
	StageRising               // start -> peak
	StageFalling              // peak -> trough
	StageWaiting              // cycle complete, next profile not yet installed
)

func (s Stage) String() string {
	switch s {
	case StagePaused:
		return "paused"
	case StageRising:
		return "rising"
	case StageFalling:
		return "falling"
	case StageWaiting:
		return "waiting"
	default:
		return "unknown"
	}
}

// ChannelState is what the tick context publishes for one channel.
type ChannelState struct {
	ID        int    `json:"id"`
	Stage     Stage  `json:"stage"`
	Level     uint8  `json:"level"`     // drive value 0..255 before gamma
	Duty      uint16 `json:"duty"`      // last count written to the output
	Remaining uint32 `json:"remaining"` // ticks left in the current cycle
	Stalled   bool   `json:"stalled,omitempty"`
}

// EngineStats are monotonic counters kept by the engine.
type EngineStats struct {
	Ticks      uint64   `json:"ticks"`
	Requests   uint32   `json:"requests"`
	Drops      uint32   `json:"drops"`
	Installs   []uint32 `json:"installs"` // per channel
	Brightness float32  `json:"brightness"`
}

// Frame is one preview sample of every channel.
type Frame struct {
	TS       int64          `json:"ts"` // unix ms
	Channels []ChannelState `json:"channels"`
}
