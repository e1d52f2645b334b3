package h2

import (
	"io"
	"sync"

	"golang.org/x/net/http2"
)

// A GoAwaySink fulfills the one outbound request this package
// produces: emit a GOAWAY frame. Requests are fire-and-forget; the
// sink owns any write errors.
type GoAwaySink interface {
	SendGoAway(lastStreamID uint32, code ErrCode, cause error)
}

// GoAwaySinkFunc adapts a function to a GoAwaySink.
type GoAwaySinkFunc func(lastStreamID uint32, code ErrCode, cause error)

func (f GoAwaySinkFunc) SendGoAway(lastStreamID uint32, code ErrCode, cause error) {
	f(lastStreamID, code, cause)
}

// FramerSink is a GoAwaySink that encodes GOAWAY frames onto an
// io.Writer with an x/net/http2 Framer. The cause's message, if any,
// becomes the frame's debug data. Write failures go to the logger.
type FramerSink struct {
	mu  sync.Mutex
	fr  *http2.Framer
	log Logger
}

// NewFramerSink builds a sink writing to w. A nil logger falls back to
// the package default.
func NewFramerSink(w io.Writer, log Logger) *FramerSink {
	if log == nil {
		log = createLogger()
	}
	return &FramerSink{fr: http2.NewFramer(w, nil), log: log}
}

func (s *FramerSink) SendGoAway(lastStreamID uint32, code ErrCode, cause error) {
	var debug []byte
	if cause != nil {
		debug = []byte(cause.Error())
	}
	s.mu.Lock()
	err := s.fr.WriteGoAway(lastStreamID, http2.ErrCode(code), debug)
	s.mu.Unlock()
	if err != nil {
		s.log.Errorf("write GOAWAY frame: %v", err)
	}
}
