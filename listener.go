package h2

// StreamEvents is a closed set of callback handles for stream
// lifecycle notifications: OnCreated fires after a stream is admitted
// or reserved and the table reflects it, OnClosed after CloseStream
// removes it. Nil handles are skipped.
//
// Dispatch is synchronous and in registration order, with no internal
// lock held. Each transition fires each handle exactly once; a refused
// admission fires nothing. Callbacks must not create, reserve or close
// streams on the same Conn — queue such work instead.
type StreamEvents struct {
	OnCreated func(streamID uint32)
	OnClosed  func(streamID uint32)
}

// AddListener registers ev for stream notifications. Listeners are
// keyed by pointer identity; adding one that is already registered is
// a no-op.
func (cc *Conn) AddListener(ev *StreamEvents) {
	if ev == nil {
		return
	}
	cc.mu.Lock()
	defer cc.mu.Unlock()
	for _, l := range cc.listeners {
		if l == ev {
			return
		}
	}
	cc.listeners = append(cc.listeners, ev)
}

// RemoveListener unregisters ev. Removing a listener that was never
// added is a no-op.
func (cc *Conn) RemoveListener(ev *StreamEvents) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	for i, l := range cc.listeners {
		if l == ev {
			cc.listeners = append(cc.listeners[:i], cc.listeners[i+1:]...)
			return
		}
	}
}

// listenersLocked snapshots the registry so dispatch can run after the
// lock is released. Caller must hold cc.mu.
func (cc *Conn) listenersLocked() []*StreamEvents {
	if len(cc.listeners) == 0 {
		return nil
	}
	ls := make([]*StreamEvents, len(cc.listeners))
	copy(ls, cc.listeners)
	return ls
}

func notifyCreated(ls []*StreamEvents, id uint32) {
	for _, l := range ls {
		if l.OnCreated != nil {
			l.OnCreated(id)
		}
	}
}

func notifyClosed(ls []*StreamEvents, id uint32) {
	for _, l := range ls {
		if l.OnClosed != nil {
			l.OnClosed(id)
		}
	}
}
