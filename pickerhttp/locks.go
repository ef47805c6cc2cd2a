package pickerhttp

import "sync"

// pickerLocks serializes the requests that change a single picker, so each
// load, change, and save runs against the state the previous one saved.
type pickerLocks struct {
	mu   sync.Mutex
	held map[string]*pickerLock
}

type pickerLock struct {
	sync.Mutex
	waiters int
}

// lock blocks until the picker named id is free and returns the function
// that frees it again.
func (l *pickerLocks) lock(id string) func() {
	l.mu.Lock()
	if l.held == nil {
		l.held = map[string]*pickerLock{}
	}
	pl, ok := l.held[id]
	if !ok {
		pl = &pickerLock{}
		l.held[id] = pl
	}
	pl.waiters++
	l.mu.Unlock()

	pl.Lock()
	return func() {
		pl.Unlock()
		l.mu.Lock()
		pl.waiters--
		if pl.waiters == 0 {
			delete(l.held, id)
		}
		l.mu.Unlock()
	}
}
