package h2

// StreamState is the lifecycle state of a stream, per RFC 7540 section
// 5.1. There is no idle state here: a Stream exists only once an
// Endpoint has admitted it, and ID sequencing alone governs order
// before that point.
type StreamState uint8

const (
	StateReservedLocal StreamState = iota
	StateReservedRemote
	StateOpen
	StateHalfClosedLocal
	StateHalfClosedRemote
	StateClosed
)

var stateName = [...]string{
	StateReservedLocal:    "ReservedLocal",
	StateReservedRemote:   "ReservedRemote",
	StateOpen:             "Open",
	StateHalfClosedLocal:  "HalfClosedLocal",
	StateHalfClosedRemote: "HalfClosedRemote",
	StateClosed:           "Closed",
}

func (st StreamState) String() string {
	if int(st) < len(stateName) {
		return stateName[st]
	}
	return "Unknown"
}

// A Stream is one logical bidirectional exchange within a connection,
// identified by a numeric ID. Streams are created only through
// Endpoint.CreateStream or Endpoint.ReservePushStream and leave the
// connection only through Conn.CloseStream; once Closed a stream never
// re-enters any other state.
type Stream struct {
	conn *Conn
	id   uint32

	state    StreamState // guarded by conn.mu
	priority int         // fixed at creation
	endpoint *Endpoint   // initiator, fixed at creation
	parent   *Stream     // set for push-reserved streams only
}

// ID returns the stream identifier.
func (s *Stream) ID() uint32 { return s.id }

// State returns the stream's current lifecycle state.
func (s *Stream) State() StreamState {
	s.conn.mu.Lock()
	defer s.conn.mu.Unlock()
	return s.state
}

// Priority returns the stream's priority weight.
func (s *Stream) Priority() int { return s.priority }

// CreatedBy returns the endpoint that initiated the stream.
func (s *Stream) CreatedBy() *Endpoint { return s.endpoint }

// Parent returns the stream this one was push-reserved from, or nil if
// the stream was not created by a reservation.
func (s *Stream) Parent() *Stream { return s.parent }

// active reports whether the stream counts against its initiator's
// concurrency limit. Caller must hold conn.mu.
func (s *Stream) active() bool {
	switch s.state {
	case StateOpen, StateHalfClosedLocal, StateHalfClosedRemote:
		return true
	}
	return false
}
