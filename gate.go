package framepace

import "sync"

// UnblockGate is the one-shot block/release primitive between the producer
// and the render thread.
//
// The producer calls PostAndWait, which runs the post function while holding
// the gate lock and then waits for exactly one Release. The render thread
// calls Release once per cycle; it holds the lock only for the instant of the
// signal, never while doing sync or draw work.
//
// A generation counter makes the wait robust against spurious wakeups and
// lets Release be called before the producer starts waiting (the post runs
// under the lock, so a release from the posted work cannot be lost).
//
// A cycle that never calls Release blocks the producer forever. That is a
// broken lifecycle, not a recoverable condition, and the gate makes no
// attempt to time out.
type UnblockGate struct {
	mu   sync.Mutex
	cond *sync.Cond
	gen  uint64
}

// NewUnblockGate creates a ready-to-use gate.
func NewUnblockGate() *UnblockGate {
	g := &UnblockGate{}
	g.cond = sync.NewCond(&g.mu)
	return g
}

// PostAndWait runs post under the gate lock, then blocks until the next
// Release. post typically enqueues a closure on the render thread's queue;
// running it under the lock guarantees the closure's Release cannot slip in
// before the wait begins.
//
// PostAndWait is not reentrant: a second call before the prior cycle's
// Release violates the single-producer contract.
func (g *UnblockGate) PostAndWait(post func()) {
	g.mu.Lock()
	gen := g.gen
	post()
	for g.gen == gen {
		g.cond.Wait()
	}
	g.mu.Unlock()
}

// Release wakes the waiting producer. Exactly one Release is expected per
// PostAndWait; extra releases advance the generation harmlessly but indicate
// a cycle that signaled twice.
func (g *UnblockGate) Release() {
	g.mu.Lock()
	g.gen++
	g.cond.Signal()
	g.mu.Unlock()
}
