package round

import "sync"

type leaseKey struct {
	userID   int64
	gameName string
}

// leases hands out at most one in-flight lifecycle operation per (user, game)
type leases struct {
	lock sync.Mutex
	held map[leaseKey]bool
}

func newLeases() *leases {
	return &leases{
		held: make(map[leaseKey]bool),
	}
}

// acquire returns false immediately if the lease is already held
func (l *leases) acquire(userID int64, gameName string) bool {
	l.lock.Lock()
	defer l.lock.Unlock()

	key := leaseKey{userID: userID, gameName: gameName}
	if l.held[key] {
		return false
	}

	l.held[key] = true
	return true
}

func (l *leases) release(userID int64, gameName string) {
	l.lock.Lock()
	defer l.lock.Unlock()

	delete(l.held, leaseKey{userID: userID, gameName: gameName})
}
