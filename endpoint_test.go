package h2

import (
	"testing"

	"github.com/connctl/h2/internal/tests"
)

func newTestConn(server bool, opts ...Option) *Conn {
	opts = append(opts, WithDisableLogger())
	return NewConn(server, opts...)
}

func TestCreateStreamSequencing(t *testing.T) {
	cc := newTestConn(true)

	// Client side numbers odd from 1.
	st, err := cc.Remote().CreateStream(1, 0, false)
	tests.AssertNoError(t, err)
	tests.AssertEqual(t, uint32(1), st.ID())

	// Gaps, reuse and reordering all fail, regardless of headroom.
	for _, id := range []uint32{1, 2, 5, 7} {
		_, err = cc.Remote().CreateStream(id, 0, false)
		tests.AssertErrorIs(t, err, ErrInvalidStreamID)
	}
	tests.AssertEqual(t, uint32(3), cc.Remote().NextStreamID())

	_, err = cc.Remote().CreateStream(3, 0, false)
	tests.AssertNoError(t, err)

	// Server side numbers even from 2.
	tests.AssertEqual(t, uint32(2), cc.Local().NextStreamID())
	_, err = cc.Local().CreateStream(1, 0, false)
	tests.AssertErrorIs(t, err, ErrInvalidStreamID)
	_, err = cc.Local().CreateStream(2, 0, false)
	tests.AssertNoError(t, err)
}

func TestCreateStreamClientNumbering(t *testing.T) {
	cc := newTestConn(false)
	tests.AssertEqual(t, uint32(1), cc.Local().NextStreamID())
	tests.AssertEqual(t, uint32(2), cc.Remote().NextStreamID())
}

func TestCreateStreamStates(t *testing.T) {
	cc := newTestConn(false)

	st, err := cc.Local().CreateStream(1, 0, false)
	tests.AssertNoError(t, err)
	tests.AssertEqual(t, StateOpen, st.State())

	st, err = cc.Local().CreateStream(3, 0, true)
	tests.AssertNoError(t, err)
	tests.AssertEqual(t, StateHalfClosedLocal, st.State())

	st, err = cc.Remote().CreateStream(2, 0, true)
	tests.AssertNoError(t, err)
	tests.AssertEqual(t, StateHalfClosedRemote, st.State())
}

func TestCreateStreamInvalidPriority(t *testing.T) {
	cc := newTestConn(false)
	_, err := cc.Local().CreateStream(1, -1, false)
	tests.AssertErrorIs(t, err, ErrInvalidPriority)

	// Nothing moved.
	tests.AssertEqual(t, uint32(1), cc.Local().NextStreamID())
	tests.AssertEqual(t, uint32(0), cc.Local().LastStreamCreated())
	tests.AssertEqual(t, 0, cc.NumStreams())
}

func TestCreateStreamAdmission(t *testing.T) {
	cc := newTestConn(true, WithMaxStreams(100, 2))
	remote := cc.Remote()

	_, err := remote.CreateStream(1, 0, false)
	tests.AssertNoError(t, err)
	tests.AssertEqual(t, 1, remote.NumActive())

	_, err = remote.CreateStream(3, 0, false)
	tests.AssertNoError(t, err)
	tests.AssertEqual(t, 2, remote.NumActive())

	_, err = remote.CreateStream(5, 0, false)
	tests.AssertErrorIs(t, err, ErrTooManyStreams)
	tests.AssertEqual(t, uint32(3), remote.LastStreamCreated())
	tests.AssertEqual(t, uint32(5), remote.NextStreamID())

	tests.AssertNoError(t, cc.CloseStream(1))
	tests.AssertEqual(t, 1, remote.NumActive())

	_, err = remote.CreateStream(5, 0, false)
	tests.AssertNoError(t, err)
	tests.AssertEqual(t, 2, remote.NumActive())
	tests.AssertEqual(t, uint32(5), remote.LastStreamCreated())
}

func TestSetMaxStreamsBelowActive(t *testing.T) {
	cc := newTestConn(false, WithMaxStreams(2, 2))
	local := cc.Local()
	_, err := local.CreateStream(1, 0, false)
	tests.AssertNoError(t, err)
	_, err = local.CreateStream(3, 0, false)
	tests.AssertNoError(t, err)

	// Lowering the limit closes nothing; it only blocks admission.
	local.SetMaxStreams(1)
	tests.AssertEqual(t, 2, local.NumActive())
	tests.AssertEqual(t, 2, len(cc.ActiveStreams()))
	_, err = local.CreateStream(5, 0, false)
	tests.AssertErrorIs(t, err, ErrTooManyStreams)
}

func TestReservePushStream(t *testing.T) {
	cc := newTestConn(true)
	parent, err := cc.Remote().CreateStream(1, 3, false)
	tests.AssertNoError(t, err)

	st, err := cc.Local().ReservePushStream(2, parent)
	tests.AssertNoError(t, err)
	tests.AssertEqual(t, StateReservedLocal, st.State())
	tests.AssertEqual(t, parent, st.Parent())
	tests.AssertEqual(t, 3, st.Priority()) // inherited
	tests.AssertEqual(t, uint32(2), cc.Local().LastStreamCreated())

	// Reserved streams hold no concurrency slot and are not active.
	tests.AssertEqual(t, 0, cc.Local().NumActive())
	tests.AssertEqual(t, 1, len(cc.ActiveStreams()))
}

func TestReservePushStreamRemote(t *testing.T) {
	cc := newTestConn(false)
	parent, err := cc.Local().CreateStream(1, 0, false)
	tests.AssertNoError(t, err)

	st, err := cc.Remote().ReservePushStream(2, parent)
	tests.AssertNoError(t, err)
	tests.AssertEqual(t, StateReservedRemote, st.State())
}

func TestReservePushNotAllowed(t *testing.T) {
	cc := newTestConn(true, WithPushToAllowed(true, false))
	parent, err := cc.Remote().CreateStream(1, 0, false)
	tests.AssertNoError(t, err)

	// The receiving endpoint (remote) refused pushes; everything else
	// about the call is valid.
	_, err = cc.Local().ReservePushStream(2, parent)
	tests.AssertErrorIs(t, err, ErrPushNotAllowed)
}

func TestReservePushSequencing(t *testing.T) {
	cc := newTestConn(true)
	parent, err := cc.Remote().CreateStream(1, 0, false)
	tests.AssertNoError(t, err)

	_, err = cc.Local().ReservePushStream(4, parent)
	tests.AssertErrorIs(t, err, ErrInvalidStreamID)
}

func TestReservePushClosedParent(t *testing.T) {
	cc := newTestConn(true)
	parent, err := cc.Remote().CreateStream(1, 0, false)
	tests.AssertNoError(t, err)
	tests.AssertNoError(t, cc.CloseStream(1))

	_, err = cc.Local().ReservePushStream(2, parent)
	tests.AssertErrorIs(t, err, ErrInvalidParent)
}

func TestReservePushNilParent(t *testing.T) {
	cc := newTestConn(true)
	_, err := cc.Local().ReservePushStream(2, nil)
	tests.AssertErrorIs(t, err, ErrInvalidParent)
}

func TestReservePushHalfClosedParent(t *testing.T) {
	cc := newTestConn(true)

	// HalfClosedRemote: the local side can still send, so it may push.
	parent, err := cc.Remote().CreateStream(1, 0, true)
	tests.AssertNoError(t, err)
	tests.AssertEqual(t, StateHalfClosedRemote, parent.State())
	_, err = cc.Local().ReservePushStream(2, parent)
	tests.AssertNoError(t, err)

	// HalfClosedLocal: the local side finished sending; no push from it.
	parent, err = cc.Local().CreateStream(4, 0, true)
	tests.AssertNoError(t, err)
	tests.AssertEqual(t, StateHalfClosedLocal, parent.State())
	_, err = cc.Local().ReservePushStream(6, parent)
	tests.AssertErrorIs(t, err, ErrInvalidParent)
}

func TestReservePushReservedParent(t *testing.T) {
	cc := newTestConn(true)
	parent, err := cc.Remote().CreateStream(1, 0, false)
	tests.AssertNoError(t, err)
	reserved, err := cc.Local().ReservePushStream(2, parent)
	tests.AssertNoError(t, err)

	_, err = cc.Local().ReservePushStream(4, reserved)
	tests.AssertErrorIs(t, err, ErrInvalidParent)
}

func TestReservePushInitialPriorityOverride(t *testing.T) {
	cc := newTestConn(true, WithInitialPriority(7))
	parent, err := cc.Remote().CreateStream(1, 3, false)
	tests.AssertNoError(t, err)

	st, err := cc.Local().ReservePushStream(2, parent)
	tests.AssertNoError(t, err)
	tests.AssertEqual(t, 7, st.Priority())
}

func TestReservePushAdmissionLimit(t *testing.T) {
	cc := newTestConn(true, WithMaxStreams(0, 100))
	parent, err := cc.Remote().CreateStream(1, 0, false)
	tests.AssertNoError(t, err)

	_, err = cc.Local().ReservePushStream(2, parent)
	tests.AssertErrorIs(t, err, ErrTooManyStreams)
}

func TestGoAwayBlocksAdmission(t *testing.T) {
	cc := newTestConn(true)
	parent, err := cc.Remote().CreateStream(1, 0, false)
	tests.AssertNoError(t, err)

	cc.SendGoAway(nil)

	// Correctly sequenced with plenty of headroom, still refused.
	_, err = cc.Remote().CreateStream(3, 0, false)
	tests.AssertErrorIs(t, err, ErrGoingAway)
	_, err = cc.Local().ReservePushStream(2, parent)
	tests.AssertErrorIs(t, err, ErrGoingAway)

	// Same once the peer's GOAWAY arrives.
	cc2 := newTestConn(true)
	cc2.ReceiveGoAway()
	_, err = cc2.Remote().CreateStream(1, 0, false)
	tests.AssertErrorIs(t, err, ErrGoingAway)
}

func TestEndpointOpposite(t *testing.T) {
	cc := newTestConn(false)
	tests.AssertEqual(t, cc.Remote(), cc.Local().Opposite())
	tests.AssertEqual(t, cc.Local(), cc.Remote().Opposite())
	tests.AssertEqual(t, true, cc.Local().IsLocal())
	tests.AssertEqual(t, false, cc.Remote().IsLocal())
}

func TestEndpointAccessors(t *testing.T) {
	cc := newTestConn(false)
	e := cc.Local()

	e.SetMaxStreams(42)
	tests.AssertEqual(t, 42, e.MaxStreams())

	tests.AssertEqual(t, true, e.PushToAllowed())
	e.SetPushToAllowed(false)
	tests.AssertEqual(t, false, e.PushToAllowed())
}
