package eventloop

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockLogger struct {
	mu     sync.Mutex
	errors []string
}

func (m *mockLogger) Info(msg string, args ...any)  {}
func (m *mockLogger) Warn(msg string, args ...any)  {}
func (m *mockLogger) Debug(msg string, args ...any) {}
func (m *mockLogger) Error(msg string, args ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, msg)
}

func runLoop(t *testing.T, loop *Loop) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	go loop.Run(ctx)
	return cancel
}

func TestLoop_RunsCallbacksInOrderOnOneGoroutine(t *testing.T) {
	loop := New(&mockLogger{})
	cancel := runLoop(t, loop)
	defer cancel()

	var mu sync.Mutex
	var order []int
	done := make(chan struct{})

	for i := 0; i < 50; i++ {
		i := i
		require.True(t, loop.Post(func() {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			if i == 49 {
				close(done)
			}
		}))
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("callbacks did not run")
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, order, 50)
	for i, v := range order {
		assert.Equal(t, i, v)
	}
}

func TestLoop_PostFromManyGoroutines(t *testing.T) {
	loop := New(&mockLogger{})
	cancel := runLoop(t, loop)
	defer cancel()

	var wg sync.WaitGroup
	var mu sync.Mutex
	count := 0
	running := 0
	overlap := false

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				loop.Post(func() {
					mu.Lock()
					running++
					if running > 1 {
						overlap = true
					}
					mu.Unlock()

					mu.Lock()
					running--
					count++
					mu.Unlock()
				})
			}
		}()
	}
	wg.Wait()

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return count == 200
	}, 2*time.Second, 5*time.Millisecond)
	assert.False(t, overlap)
}

func TestLoop_StopDrainsAndRejects(t *testing.T) {
	loop := New(&mockLogger{})

	ran := 0
	loop.Post(func() { ran++ })
	loop.Post(func() { ran++ })
	loop.Stop()

	assert.False(t, loop.Post(func() { ran++ }))

	loop.Run(context.Background())

	assert.Equal(t, 2, ran)
	select {
	case <-loop.Done():
	default:
		t.Fatal("Done should be closed after Run returns")
	}
}

func TestLoop_ContextCancelStopsRun(t *testing.T) {
	loop := New(&mockLogger{})
	ctx, cancel := context.WithCancel(context.Background())
	go loop.Run(ctx)

	cancel()

	select {
	case <-loop.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.False(t, loop.Post(func() {}))
}

func TestLoop_PanicIsLoggedAndLoopContinues(t *testing.T) {
	logger := &mockLogger{}
	loop := New(logger)
	cancel := runLoop(t, loop)
	defer cancel()

	after := make(chan struct{})
	loop.Post(func() { panic("boom") })
	loop.Post(func() { close(after) })

	select {
	case <-after:
	case <-time.After(2 * time.Second):
		t.Fatal("loop stopped after panic")
	}

	logger.mu.Lock()
	defer logger.mu.Unlock()
	assert.Len(t, logger.errors, 1)
}

func TestLoop_NilCallbackRejected(t *testing.T) {
	loop := New(&mockLogger{})
	assert.False(t, loop.Post(nil))
}
