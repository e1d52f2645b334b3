package h2

// An Option configures a Conn at construction time.
type Option func(*Conn)

// WithMaxStreams sets each endpoint's concurrency admission ceiling.
// The default is effectively unlimited.
func WithMaxStreams(local, remote int) Option {
	return func(cc *Conn) {
		cc.local.maxStreams = local
		cc.remote.maxStreams = remote
	}
}

// WithPushToAllowed sets whether each endpoint accepts pushes from its
// peer. Both default to true.
func WithPushToAllowed(local, remote bool) Option {
	return func(cc *Conn) {
		cc.local.pushToAllowed = local
		cc.remote.pushToAllowed = remote
	}
}

// WithInitialPriority sets the priority weight given to push-reserved
// streams. Without it, reservations inherit the parent's weight.
func WithInitialPriority(weight int) Option {
	return func(cc *Conn) {
		cc.reservePriority = weight
	}
}

// WithGoAwaySink sets the transport sink that fulfills GOAWAY
// requests. Without one, SendGoAway only records state.
func WithGoAwaySink(s GoAwaySink) Option {
	return func(cc *Conn) {
		cc.sink = s
	}
}

// WithLogger replaces the default stderr logger.
func WithLogger(l Logger) Option {
	return func(cc *Conn) {
		if l != nil {
			cc.log = l
		}
	}
}

// WithDisableLogger silences all logging.
func WithDisableLogger() Option {
	return func(cc *Conn) {
		cc.log = &disableLogger{}
	}
}
