package room

import (
	"context"
	"errors"
	"sync"
)

var errLoopStopped = errors.New("run loop has stopped")

// loop runs closures one at a time on a single goroutine
type loop struct {
	execInRunLoop chan func()
	stop          chan struct{}
	stopOnce      sync.Once
	done          chan struct{}
}

func newLoop() *loop {
	return &loop{
		execInRunLoop: make(chan func(), 256),
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
	}
}

// run blocks until halt is called or exitAfter returns true after a closure
func (l *loop) run(exitAfter func() bool) {
	defer close(l.done)

	for {
		select {
		case fn := <-l.execInRunLoop:
			fn()
			if exitAfter != nil && exitAfter() {
				return
			}
		case <-l.stop:
			return
		}
	}
}

// halt stops the loop; closures already queued are dropped
func (l *loop) halt() {
	l.stopOnce.Do(func() {
		close(l.stop)
	})
}

// exec runs fn on the loop and waits for it to return
func (l *loop) exec(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	wrapped := func() {
		defer close(finished)
		fn()
	}

	select {
	case l.execInRunLoop <- wrapped:
	case <-l.done:
		return errLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-finished:
		return nil
	case <-l.done:
		// the closure that stopped the loop may have been ours
		select {
		case <-finished:
			return nil
		default:
			return errLoopStopped
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// post queues fn without waiting for it
func (l *loop) post(fn func()) {
	select {
	case l.execInRunLoop <- fn:
	case <-l.done:
	}
}
