package h2

// An Endpoint is one side's view of a connection: its stream ID
// numbering subspace, its concurrency admission limit, and its push
// policy. The client side of a connection numbers its streams with odd
// IDs starting at 1, the server side with even IDs starting at 2.
//
// The two endpoints of a Conn are constructed together and never hold
// stream state of their own; they read and write the Conn's stream
// table under the Conn's lock.
type Endpoint struct {
	conn  *Conn
	local bool

	// Guarded by conn.mu.
	nextStreamID      uint32
	maxStreams        int
	numActive         int
	pushToAllowed     bool
	lastStreamCreated uint32

	opposite *Endpoint // fixed at construction
}

// CreateStream admits a stream initiated by this endpoint and notifies
// all listeners. It fails, mutating nothing, if the connection is going
// away (ErrGoingAway), id is not this endpoint's next sequential ID or
// already exists (ErrInvalidStreamID), priority is negative
// (ErrInvalidPriority), or the endpoint is at its concurrency limit
// (ErrTooManyStreams).
//
// The stream starts Open, or half-closed from this endpoint's side when
// halfClosed is set.
func (e *Endpoint) CreateStream(id uint32, priority int, halfClosed bool) (*Stream, error) {
	cc := e.conn
	cc.mu.Lock()
	if err := e.checkCreateLocked(id, priority); err != nil {
		cc.mu.Unlock()
		cc.log.Debugf("create stream %d refused: %v", id, err)
		return nil, err
	}
	state := StateOpen
	if halfClosed {
		if e.local {
			state = StateHalfClosedLocal
		} else {
			state = StateHalfClosedRemote
		}
	}
	st := &Stream{conn: cc, id: id, state: state, priority: priority, endpoint: e}
	cc.streams[id] = st
	e.nextStreamID += 2
	e.numActive++
	e.lastStreamCreated = id
	ls := cc.listenersLocked()
	cc.mu.Unlock()

	notifyCreated(ls, id)
	return st, nil
}

// ReservePushStream reserves a push stream initiated by this endpoint
// on behalf of parent and notifies all listeners. It fails, mutating
// nothing, if the connection is going away (ErrGoingAway), the peer
// does not accept pushes (ErrPushNotAllowed), id violates this
// endpoint's sequencing (ErrInvalidStreamID), parent is not a live
// stream this endpoint can still send on (ErrInvalidParent), the
// derived priority is negative (ErrInvalidPriority), or the endpoint is
// at its concurrency limit (ErrTooManyStreams).
//
// The reserved stream inherits the parent's priority unless the Conn
// was built with WithInitialPriority.
func (e *Endpoint) ReservePushStream(id uint32, parent *Stream) (*Stream, error) {
	cc := e.conn
	cc.mu.Lock()
	priority, err := e.checkReserveLocked(id, parent)
	if err != nil {
		cc.mu.Unlock()
		cc.log.Debugf("reserve push stream %d refused: %v", id, err)
		return nil, err
	}
	state := StateReservedLocal
	if !e.local {
		state = StateReservedRemote
	}
	st := &Stream{conn: cc, id: id, state: state, priority: priority, endpoint: e, parent: parent}
	cc.streams[id] = st
	e.nextStreamID += 2
	e.lastStreamCreated = id
	ls := cc.listenersLocked()
	cc.mu.Unlock()

	notifyCreated(ls, id)
	return st, nil
}

// All checks run before any mutation, so a refused call leaves the
// connection untouched.
func (e *Endpoint) checkCreateLocked(id uint32, priority int) error {
	if e.conn.goingAwayLocked() {
		return streamError(id, ErrGoingAway, "")
	}
	if err := e.checkStreamIDLocked(id); err != nil {
		return err
	}
	if priority < 0 {
		return streamError(id, ErrInvalidPriority, "weight %d is negative", priority)
	}
	return e.checkAdmissionLocked(id)
}

func (e *Endpoint) checkReserveLocked(id uint32, parent *Stream) (int, error) {
	if e.conn.goingAwayLocked() {
		return 0, streamError(id, ErrGoingAway, "")
	}
	if !e.opposite.pushToAllowed {
		return 0, streamError(id, ErrPushNotAllowed, "peer does not accept pushes")
	}
	if err := e.checkStreamIDLocked(id); err != nil {
		return 0, err
	}
	if parent == nil {
		return 0, streamError(id, ErrInvalidParent, "no parent stream")
	}
	if e.conn.streams[parent.id] != parent || !e.canPushFromLocked(parent) {
		return 0, streamError(id, ErrInvalidParent, "parent stream %d is %v", parent.id, parent.state)
	}
	priority := parent.priority
	if e.conn.reservePriority >= 0 {
		priority = e.conn.reservePriority
	}
	if priority < 0 {
		return 0, streamError(id, ErrInvalidPriority, "weight %d is negative", priority)
	}
	if err := e.checkAdmissionLocked(id); err != nil {
		return 0, err
	}
	return priority, nil
}

func (e *Endpoint) checkStreamIDLocked(id uint32) error {
	if id != e.nextStreamID {
		return streamError(id, ErrInvalidStreamID, "next expected ID for this endpoint is %d", e.nextStreamID)
	}
	if _, ok := e.conn.streams[id]; ok {
		return streamError(id, ErrInvalidStreamID, "stream already exists")
	}
	return nil
}

func (e *Endpoint) checkAdmissionLocked(id uint32) error {
	if e.numActive >= e.maxStreams {
		return streamError(id, ErrTooManyStreams, "%d active streams at limit %d", e.numActive, e.maxStreams)
	}
	return nil
}

// canPushFromLocked reports whether this endpoint's sending direction
// on parent is still open, i.e. whether it can legitimately promise a
// push on it. Caller must hold conn.mu.
func (e *Endpoint) canPushFromLocked(parent *Stream) bool {
	switch parent.state {
	case StateOpen:
		return true
	case StateHalfClosedRemote:
		return e.local
	case StateHalfClosedLocal:
		return !e.local
	}
	return false
}

// IsLocal reports whether this is the connection's local endpoint.
func (e *Endpoint) IsLocal() bool { return e.local }

// Opposite returns the paired endpoint on the other side of the
// connection.
func (e *Endpoint) Opposite() *Endpoint { return e.opposite }

// NextStreamID returns the only stream ID this endpoint would currently
// admit.
func (e *Endpoint) NextStreamID() uint32 {
	e.conn.mu.Lock()
	defer e.conn.mu.Unlock()
	return e.nextStreamID
}

// LastStreamCreated returns the ID of the stream last successfully
// admitted or reserved by this endpoint, or 0 if there is none.
func (e *Endpoint) LastStreamCreated() uint32 {
	e.conn.mu.Lock()
	defer e.conn.mu.Unlock()
	return e.lastStreamCreated
}

// NumActive returns the number of open or half-closed streams this
// endpoint initiated. Reserved streams do not count until they open.
func (e *Endpoint) NumActive() int {
	e.conn.mu.Lock()
	defer e.conn.mu.Unlock()
	return e.numActive
}

// MaxStreams returns the endpoint's concurrency admission ceiling.
func (e *Endpoint) MaxStreams() int {
	e.conn.mu.Lock()
	defer e.conn.mu.Unlock()
	return e.maxStreams
}

// SetMaxStreams sets the endpoint's concurrency admission ceiling.
// Lowering it below the current active count closes nothing; it only
// blocks future admission until streams drain.
func (e *Endpoint) SetMaxStreams(n int) {
	e.conn.mu.Lock()
	defer e.conn.mu.Unlock()
	e.maxStreams = n
}

// PushToAllowed reports whether the peer may push streams to this
// endpoint.
func (e *Endpoint) PushToAllowed() bool {
	e.conn.mu.Lock()
	defer e.conn.mu.Unlock()
	return e.pushToAllowed
}

// SetPushToAllowed sets whether the peer may push streams to this
// endpoint.
func (e *Endpoint) SetPushToAllowed(allow bool) {
	e.conn.mu.Lock()
	defer e.conn.mu.Unlock()
	e.pushToAllowed = allow
}
