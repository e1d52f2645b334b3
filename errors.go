package h2

import (
	"errors"
	"fmt"
)

// An ErrCode is an unsigned 32-bit error code as defined in the HTTP/2 spec.
// Values match the wire encoding, so they convert directly to the codes used
// by frame writers such as golang.org/x/net/http2.
type ErrCode uint32

const (
	ErrCodeNo                 ErrCode = 0x0
	ErrCodeProtocol           ErrCode = 0x1
	ErrCodeInternal           ErrCode = 0x2
	ErrCodeFlowControl        ErrCode = 0x3
	ErrCodeSettingsTimeout    ErrCode = 0x4
	ErrCodeStreamClosed       ErrCode = 0x5
	ErrCodeFrameSize          ErrCode = 0x6
	ErrCodeRefusedStream      ErrCode = 0x7
	ErrCodeCancel             ErrCode = 0x8
	ErrCodeCompression        ErrCode = 0x9
	ErrCodeConnect            ErrCode = 0xa
	ErrCodeEnhanceYourCalm    ErrCode = 0xb
	ErrCodeInadequateSecurity ErrCode = 0xc
	ErrCodeHTTP11Required     ErrCode = 0xd
)

var errCodeName = map[ErrCode]string{
	ErrCodeNo:                 "NO_ERROR",
	ErrCodeProtocol:           "PROTOCOL_ERROR",
	ErrCodeInternal:           "INTERNAL_ERROR",
	ErrCodeFlowControl:        "FLOW_CONTROL_ERROR",
	ErrCodeSettingsTimeout:    "SETTINGS_TIMEOUT",
	ErrCodeStreamClosed:       "STREAM_CLOSED",
	ErrCodeFrameSize:          "FRAME_SIZE_ERROR",
	ErrCodeRefusedStream:      "REFUSED_STREAM",
	ErrCodeCancel:             "CANCEL",
	ErrCodeCompression:        "COMPRESSION_ERROR",
	ErrCodeConnect:            "CONNECT_ERROR",
	ErrCodeEnhanceYourCalm:    "ENHANCE_YOUR_CALM",
	ErrCodeInadequateSecurity: "INADEQUATE_SECURITY",
	ErrCodeHTTP11Required:     "HTTP_1_1_REQUIRED",
}

func (e ErrCode) String() string {
	if s, ok := errCodeName[e]; ok {
		return s
	}
	return fmt.Sprintf("unknown error code 0x%x", uint32(e))
}

// ConnectionError is an error that results in the termination of the
// entire connection. Passing one as the cause of SendGoAway makes its
// code the GOAWAY frame's error code.
type ConnectionError ErrCode

func (e ConnectionError) Error() string {
	return fmt.Sprintf("connection error: %s", ErrCode(e))
}

// The failure kinds reported by stream admission, reservation, lookup
// and closure. Every error returned by this package wraps exactly one
// of these, so callers classify with errors.Is.
//
// ErrInvalidParent, ErrInvalidPriority and ErrTooManyStreams concern a
// single stream; the caller typically answers with a stream reset. An
// out-of-sequence or reused ID from a conforming peer is impossible,
// so ErrInvalidStreamID on a received frame signals a peer protocol
// violation worth a GOAWAY.
var (
	ErrInvalidStreamID = errors.New("invalid stream ID")
	ErrStreamNotFound  = errors.New("stream not found")
	ErrTooManyStreams  = errors.New("too many concurrent streams")
	ErrPushNotAllowed  = errors.New("server push not allowed")
	ErrInvalidParent   = errors.New("invalid parent stream")
	ErrInvalidPriority = errors.New("invalid stream priority")
	ErrGoingAway       = errors.New("connection is going away")
)

// StreamError is a failure scoped to one stream ID. It wraps the
// violated kind, so errors.Is(err, ErrTooManyStreams) etc. work.
type StreamError struct {
	StreamID uint32
	Kind     error
	Detail   string
}

func streamError(id uint32, kind error, format string, v ...interface{}) StreamError {
	e := StreamError{StreamID: id, Kind: kind}
	if format != "" {
		e.Detail = fmt.Sprintf(format, v...)
	}
	return e
}

func (e StreamError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("h2: stream %d: %v: %s", e.StreamID, e.Kind, e.Detail)
	}
	return fmt.Sprintf("h2: stream %d: %v", e.StreamID, e.Kind)
}

func (e StreamError) Unwrap() error { return e.Kind }

// errCodeForError derives the GOAWAY wire code from a cause. A nil
// cause is a graceful shutdown. A ConnectionError carries its code
// verbatim; the admission kinds map to their RFC 7540 counterparts.
func errCodeForError(err error) ErrCode {
	if err == nil {
		return ErrCodeNo
	}
	var ce ConnectionError
	if errors.As(err, &ce) {
		return ErrCode(ce)
	}
	switch {
	case errors.Is(err, ErrGoingAway):
		return ErrCodeNo
	case errors.Is(err, ErrTooManyStreams):
		return ErrCodeRefusedStream
	case errors.Is(err, ErrStreamNotFound):
		return ErrCodeStreamClosed
	case errors.Is(err, ErrInvalidStreamID),
		errors.Is(err, ErrPushNotAllowed),
		errors.Is(err, ErrInvalidParent),
		errors.Is(err, ErrInvalidPriority):
		return ErrCodeProtocol
	}
	return ErrCodeInternal
}
