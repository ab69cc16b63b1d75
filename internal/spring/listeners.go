package spring

type listener struct {
	fn   func(float64)
	live bool
}

// listenerList keeps subscribers in registration order.
type listenerList struct {
	entries []*listener
}

func (l *listenerList) add(fn func(float64)) func() {
	e := &listener{fn: fn, live: true}
	l.entries = append(l.entries, e)
	return func() {
		if !e.live {
			return
		}
		e.live = false
		for idx, x := range l.entries {
			if x == e {
				l.entries = append(l.entries[:idx:idx], l.entries[idx+1:]...)
				break
			}
		}
	}
}

func (l *listenerList) emit(v float64) {
	if len(l.entries) == 0 {
		return
	}
	snapshot := append([]*listener(nil), l.entries...)
	for _, e := range snapshot {
		if e.live && e.fn != nil {
			e.fn(v)
		}
	}
}

func (l *listenerList) len() int { return len(l.entries) }
