// Package h2 implements the connection-level stream lifecycle control
// plane of an HTTP/2 endpoint: stream identity and state tracking,
// per-endpoint concurrency admission and strict stream-ID sequencing,
// server-push reservation, and graceful shutdown (GOAWAY)
// coordination.
//
// It parses no bytes. A frame-processing layer decodes frames and
// calls into a Conn's endpoints — CreateStream for HEADERS,
// ReservePushStream for PUSH_PROMISE, CloseStream for RST_STREAM or
// end-of-stream, SendGoAway and ReceiveGoAway for GOAWAY — and the one
// outbound request (emit a GOAWAY frame) goes to a pluggable
// GoAwaySink. FramerSink provides one backed by an x/net/http2 Framer.
//
// Subsystems that need a consistent view of which streams exist, such
// as flow-control accounting or header-compression context lifecycle,
// subscribe through StreamEvents for synchronous creation and closure
// notifications.
package h2
