package h2

import (
	"math"
	"sort"
	"sync"
)

const defaultMaxStreams = math.MaxInt32

// Conn tracks the stream lifecycle state of one HTTP/2 connection: the
// stream table, both endpoints' admission state, and GOAWAY progress.
// It never touches the wire. A frame layer drives it — HEADERS calls
// CreateStream, PUSH_PROMISE calls ReservePushStream, RST_STREAM and
// end-of-stream call CloseStream, GOAWAY calls SendGoAway or
// ReceiveGoAway — and a GoAwaySink fulfills the one outbound request it
// produces.
//
// All mutating operations are atomic with respect to one another: they
// validate and mutate under a single lock, which is released before
// listener callbacks and sink calls run.
type Conn struct {
	mu        sync.Mutex
	streams   map[uint32]*Stream
	local     *Endpoint
	remote    *Endpoint
	listeners []*StreamEvents

	goAwaySent     bool
	goAwayReceived bool
	goAwayCause    error

	reservePriority int // -1 means reservations inherit the parent's priority
	sink            GoAwaySink
	log             Logger
}

// NewConn builds the stream state for one transport session. server
// indicates whether the local endpoint is the server side, which
// determines each endpoint's ID numbering subspace.
func NewConn(server bool, opts ...Option) *Conn {
	cc := &Conn{
		streams:         make(map[uint32]*Stream),
		reservePriority: -1,
		log:             createLogger(),
	}
	cc.local = &Endpoint{conn: cc, local: true, nextStreamID: 1, maxStreams: defaultMaxStreams, pushToAllowed: true}
	cc.remote = &Endpoint{conn: cc, nextStreamID: 1, maxStreams: defaultMaxStreams, pushToAllowed: true}
	if server {
		cc.local.nextStreamID = 2
	} else {
		cc.remote.nextStreamID = 2
	}
	cc.local.opposite = cc.remote
	cc.remote.opposite = cc.local
	for _, opt := range opts {
		opt(cc)
	}
	return cc
}

// Local returns the connection's own endpoint.
func (cc *Conn) Local() *Endpoint { return cc.local }

// Remote returns the peer's endpoint.
func (cc *Conn) Remote() *Endpoint { return cc.remote }

// Stream returns the stream with the given ID, or nil if no such
// stream exists. Closed streams are removed from the table, so a
// recently closed ID also returns nil.
func (cc *Conn) Stream(id uint32) *Stream {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.streams[id]
}

// StreamOrFail returns the stream with the given ID, or an error
// wrapping ErrStreamNotFound. Closed streams are removed, so a
// recently closed ID fails the same way as one that never existed.
func (cc *Conn) StreamOrFail(id uint32) (*Stream, error) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	st, ok := cc.streams[id]
	if !ok {
		return nil, streamError(id, ErrStreamNotFound, "")
	}
	return st, nil
}

// NumStreams returns the number of streams currently in the table,
// reserved streams included.
func (cc *Conn) NumStreams() int {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return len(cc.streams)
}

// ActiveStreams returns the streams currently open or half-closed,
// sorted by ascending priority weight with ties broken by ascending
// stream ID. Reserved and closed streams never appear. Repeated calls
// without intervening mutation return the same order.
func (cc *Conn) ActiveStreams() []*Stream {
	cc.mu.Lock()
	var out []*Stream
	for _, st := range cc.streams {
		if st.active() {
			out = append(out, st)
		}
	}
	cc.mu.Unlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].priority != out[j].priority {
			return out[i].priority < out[j].priority
		}
		return out[i].id < out[j].id
	})
	return out
}

// CloseStream moves the stream to Closed, removes it from the table,
// releases its initiator's concurrency slot if the stream was active,
// and notifies all listeners. Closing an unknown or already-closed ID
// fails with ErrStreamNotFound.
func (cc *Conn) CloseStream(id uint32) error {
	cc.mu.Lock()
	st, ok := cc.streams[id]
	if !ok {
		cc.mu.Unlock()
		return streamError(id, ErrStreamNotFound, "")
	}
	if st.active() {
		st.endpoint.numActive--
	}
	st.state = StateClosed
	delete(cc.streams, id)
	ls := cc.listenersLocked()
	cc.mu.Unlock()

	notifyClosed(ls, id)
	return nil
}

// SendGoAway marks the connection as going away and asks the sink, if
// any, to emit a GOAWAY frame carrying the last peer-initiated stream
// ID this side admitted and an error code derived from cause. A nil
// cause means graceful shutdown (NO_ERROR).
//
// Calling it again replaces the recorded cause and forwards the
// request to the sink once more; whether anything is re-emitted is the
// transport's choice. After the first call no further streams are
// admitted on either endpoint.
func (cc *Conn) SendGoAway(cause error) {
	cc.mu.Lock()
	cc.goAwaySent = true
	cc.goAwayCause = cause
	last := cc.remote.lastStreamCreated
	sink := cc.sink
	cc.mu.Unlock()

	code := errCodeForError(cause)
	cc.log.Debugf("sending GOAWAY, last stream %d, code %v", last, code)
	if sink != nil {
		sink.SendGoAway(last, code, cause)
	}
}

// ReceiveGoAway records that the peer sent a GOAWAY frame. After this,
// no further streams are admitted on either endpoint; existing streams
// drain through CloseStream as usual.
func (cc *Conn) ReceiveGoAway() {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.goAwayReceived = true
}

// GoAwaySent reports whether SendGoAway has been called.
func (cc *Conn) GoAwaySent() bool {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.goAwaySent
}

// GoAwayReceived reports whether ReceiveGoAway has been called.
func (cc *Conn) GoAwayReceived() bool {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.goAwayReceived
}

// GoingAway reports whether a GOAWAY has been sent or received. Once
// true it never reverts.
func (cc *Conn) GoingAway() bool {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.goAwaySent || cc.goAwayReceived
}

// GoAwayCause returns the cause recorded by the most recent SendGoAway,
// or nil.
func (cc *Conn) GoAwayCause() error {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.goAwayCause
}

// LastStreamID returns the value a GOAWAY emitted now would carry: the
// last peer-initiated stream ID this side admitted.
func (cc *Conn) LastStreamID() uint32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.remote.lastStreamCreated
}

func (cc *Conn) goingAwayLocked() bool {
	return cc.goAwaySent || cc.goAwayReceived
}
