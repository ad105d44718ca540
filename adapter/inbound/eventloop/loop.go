package eventloop

import (
	"context"
	"sync"

	"github.com/ajkula/GoBatchPrint/domain/port/outbound"
)

// Loop is the primary context of the process. Callbacks posted from any
// goroutine run one at a time, in posting order, on the goroutine that
// called Run.
type Loop struct {
	logger outbound.Logger

	mu      sync.Mutex
	queue   []func()
	wake    chan struct{}
	stopped bool
	done    chan struct{}
}

func New(logger outbound.Logger) *Loop {
	return &Loop{
		logger: logger,
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// Post enqueues fn. It never blocks and returns false once the loop is stopped.
func (l *Loop) Post(fn func()) bool {
	if fn == nil {
		return false
	}

	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// Run executes posted callbacks until ctx is done or Stop is called.
// Callbacks already queued at that point still run before Run returns.
func (l *Loop) Run(ctx context.Context) {
	defer close(l.done)

	for {
		l.drain()

		select {
		case <-ctx.Done():
			l.Stop()
			l.drain()
			return
		case <-l.wake:
		}

		l.mu.Lock()
		stopped := l.stopped
		l.mu.Unlock()
		if stopped {
			l.drain()
			return
		}
	}
}

// Stop refuses further posts and wakes Run so it can return.
func (l *Loop) Stop() {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return
	}
	l.stopped = true
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Done is closed when Run has returned.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

func (l *Loop) drain() {
	for {
		l.mu.Lock()
		if len(l.queue) == 0 {
			l.mu.Unlock()
			return
		}
		fn := l.queue[0]
		l.queue[0] = nil
		l.queue = l.queue[1:]
		l.mu.Unlock()

		l.invoke(fn)
	}
}

func (l *Loop) invoke(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("Callback panicked on event loop", "panic", r)
		}
	}()
	fn()
}

var _ outbound.CallbackQueue = (*Loop)(nil)
