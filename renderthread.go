package framepace

import (
	"log/slog"
	"sync"
)

// RenderThread is the single goroutine that owns the GPU-facing render
// context and executes frame work in strict FIFO order.
//
// Tasks posted with Post run one at a time, in posting order, on the same
// goroutine for the lifetime of the thread. This single-consumer ordering is
// what lets the rest of the package treat task state as single-writer: the
// producer writes before posting, the render thread reads inside the posted
// closure, and nothing overlaps.
//
// Thread safety: Post and Stop are safe for concurrent use.
type RenderThread struct {
	mu      sync.Mutex
	cond    *sync.Cond
	queue   []func()
	stopped bool
	done    chan struct{}

	vsyncSink VsyncSource
}

// RenderThreadOption configures a RenderThread during creation.
type RenderThreadOption func(*RenderThread)

// WithVsyncSink installs the sink that receives each frame's timing vector
// at the start of the sync phase. The sink is informational; the frame cycle
// does not consume anything from it.
func WithVsyncSink(v VsyncSource) RenderThreadOption {
	return func(rt *RenderThread) {
		rt.vsyncSink = v
	}
}

// NewRenderThread creates a render thread and starts its goroutine
// immediately. Callers must eventually call Stop to release it.
func NewRenderThread(opts ...RenderThreadOption) *RenderThread {
	rt := &RenderThread{
		done: make(chan struct{}),
	}
	rt.cond = sync.NewCond(&rt.mu)
	for _, opt := range opts {
		opt(rt)
	}
	go rt.loop()
	Logger().Info("render thread started")
	return rt
}

// Post enqueues work for execution on the render thread.
// Returns false if the thread has been stopped (the work is discarded).
func (rt *RenderThread) Post(work func()) bool {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.stopped {
		return false
	}
	rt.queue = append(rt.queue, work)
	rt.cond.Signal()
	return true
}

// Stop drains already-queued work, then stops the goroutine.
// Stop blocks until the goroutine has exited. Idempotent.
func (rt *RenderThread) Stop() {
	rt.mu.Lock()
	if rt.stopped {
		rt.mu.Unlock()
		<-rt.done
		return
	}
	rt.stopped = true
	rt.cond.Signal()
	rt.mu.Unlock()
	<-rt.done
	Logger().Info("render thread stopped")
}

// loop is the render thread goroutine: pop in FIFO order, run, repeat.
func (rt *RenderThread) loop() {
	defer close(rt.done)
	for {
		rt.mu.Lock()
		for len(rt.queue) == 0 && !rt.stopped {
			rt.cond.Wait()
		}
		if len(rt.queue) == 0 {
			// Stopped and fully drained.
			rt.mu.Unlock()
			return
		}
		work := rt.queue[0]
		rt.queue[0] = nil
		rt.queue = rt.queue[1:]
		rt.mu.Unlock()

		rt.runTask(work)
	}
}

// runTask executes one unit of work. Panics are logged and re-raised: a task
// that dies mid-cycle can never deliver its gate signal, so limping on would
// deadlock the producer permanently. Crashing is the contract for that.
func (rt *RenderThread) runTask(work func()) {
	defer func() {
		if r := recover(); r != nil {
			Logger().Warn("render thread task panicked",
				slog.Any("panic", r))
			panic(r)
		}
	}()
	work()
}
