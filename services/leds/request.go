package leds

// ReqKind tags a handoff queue message.
type ReqKind uint8

const (
	ReqRecompute  ReqKind = iota + 1 // build and install the next profile
	ReqBrightness                    // set the master scale on every channel
	ReqSetValue                      // hold a channel at an absolute level
)

// Request is the only message type on the handoff queue. It is a plain value
// so sending it from the tick context does not allocate.
type Request struct {
	Kind    ReqKind
	Channel int
	Start   float32 // ReqRecompute: level the next cycle rises from
	Scale   float32 // ReqBrightness
	Value   uint8   // ReqSetValue

	// ReqRecompute: remaining ticks of every channel at the time of the
	// event, indexed by channel id.
	N        int
	Snapshot [MaxChannels]uint32
}

// Remaining returns the populated part of the snapshot.
func (r *Request) Remaining() []uint32 { return r.Snapshot[:r.N] }
