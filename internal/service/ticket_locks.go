package service

import "sync"

// ticketLocks serialises transitions per ticket id. Entries are refcounted and
// dropped once nobody holds or waits on them.
type ticketLocks struct {
	mu      sync.Mutex
	entries map[string]*ticketLock
}

type ticketLock struct {
	mu   sync.Mutex
	refs int
}

func newTicketLocks() *ticketLocks {
	return &ticketLocks{entries: make(map[string]*ticketLock)}
}

// lock blocks until id is held by the caller.
func (l *ticketLocks) lock(id string) (unlock func()) {
	l.mu.Lock()
	entry := l.entry(id)
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	return func() { l.release(id, entry) }
}

// tryLock acquires id only if nobody holds it. Callers that already hold
// another ticket's lock must use this to avoid lock-order deadlocks.
func (l *ticketLocks) tryLock(id string) (unlock func(), ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry := l.entry(id)
	if !entry.mu.TryLock() {
		return nil, false
	}
	entry.refs++
	return func() { l.release(id, entry) }, true
}

func (l *ticketLocks) entry(id string) *ticketLock {
	entry, ok := l.entries[id]
	if !ok {
		entry = &ticketLock{}
		l.entries[id] = entry
	}
	return entry
}

func (l *ticketLocks) release(id string, entry *ticketLock) {
	entry.mu.Unlock()
	l.mu.Lock()
	defer l.mu.Unlock()
	entry.refs--
	if entry.refs == 0 {
		delete(l.entries, id)
	}
}

func (l *ticketLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
