package studio

import "sync"

// hub fans session views out to subscribers. Each subscriber holds at most one
// pending view; a newer view replaces an unread one.
type hub struct {
	mu   sync.Mutex
	subs map[chan View]struct{}
}

func newHub() *hub {
	return &hub{subs: make(map[chan View]struct{})}
}

func (h *hub) subscribe(initial View) (<-chan View, func()) {
	ch := make(chan View, 1)
	ch <- initial

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
		})
	}
}

func (h *hub) publish(v View) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- v:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- v:
		default:
		}
	}
}

func (h *hub) len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
