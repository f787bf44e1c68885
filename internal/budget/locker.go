package budget

import (
	"context"
	"sync"
)

// userLocks serialises ledger writes per user inside this process. The
// repository row lock covers writers in other processes.
type userLocks struct {
	mu    sync.Mutex
	locks map[int64]*userLock
}

type userLock struct {
	sem  chan struct{}
	refs int
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[int64]*userLock)}
}

func (l *userLocks) acquire(ctx context.Context, userID int64) (func(), error) {
	l.mu.Lock()
	lk, ok := l.locks[userID]
	if !ok {
		lk = &userLock{sem: make(chan struct{}, 1)}
		l.locks[userID] = lk
	}
	lk.refs++
	l.mu.Unlock()

	select {
	case lk.sem <- struct{}{}:
		return func() {
			<-lk.sem
			l.release(userID, lk)
		}, nil
	case <-ctx.Done():
		l.release(userID, lk)
		return nil, ctx.Err()
	}
}

func (l *userLocks) release(userID int64, lk *userLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	lk.refs--
	if lk.refs == 0 {
		delete(l.locks, userID)
	}
}

func (l *userLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
