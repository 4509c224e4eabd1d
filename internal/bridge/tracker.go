package bridge

import (
	"context"
	"sync"
)

// taskTracker counts running tasks. Unlike sync.WaitGroup, add may race
// with wait, and a wait abandoned through ctx leaves nothing behind.
// The zero value is idle.
type taskTracker struct {
	mu   sync.Mutex
	n    int
	idle chan struct{}
}

func (t *taskTracker) add() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.n == 0 {
		t.idle = make(chan struct{})
	}
	t.n++
}

func (t *taskTracker) done() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.n--
	if t.n == 0 {
		close(t.idle)
	}
}

// wait returns once the count has dropped to zero or ctx is done. Tasks
// added after it returns are not covered.
func (t *taskTracker) wait(ctx context.Context) error {
	t.mu.Lock()
	if t.n == 0 {
		t.mu.Unlock()
		return nil
	}
	idle := t.idle
	t.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
