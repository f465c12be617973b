package framepace

// LayerUpdater is a deferred layer mutation queued by the producer and
// applied on the render thread during the sync phase.
//
// Apply flushes the pending mutation into the form the render tree reads.
// Apply must not panic; if an individual update cannot be applied it is
// simply not retried this cycle.
type LayerUpdater interface {
	Apply()
}

// layerQueue is a deduplicated, insertion-ordered set of pending layer
// updates. Membership is by identity (interface comparison), matching how
// the producer registers the same layer object across frames.
//
// Not safe for concurrent use; the frame cycle serializes access (producer
// writes before posting, render thread drains inside the posted closure).
type layerQueue struct {
	layers []LayerUpdater
}

// push appends l unless it is already queued. Idempotent.
func (q *layerQueue) push(l LayerUpdater) {
	for _, existing := range q.layers {
		if existing == l {
			return
		}
	}
	q.layers = append(q.layers, l)
}

// remove deletes the matching entry, preserving order. No-op if absent.
// The vacated tail slot is nilled so the backing array does not keep the
// removed layer alive.
func (q *layerQueue) remove(l LayerUpdater) {
	for i, existing := range q.layers {
		if existing == l {
			copy(q.layers[i:], q.layers[i+1:])
			q.layers[len(q.layers)-1] = nil
			q.layers = q.layers[:len(q.layers)-1]
			return
		}
	}
}

// applyAll invokes Apply on every queued update in insertion order, then
// clears the queue. The queue is empty afterwards regardless of what the
// individual updates did, so a dropped frame cannot grow it without bound.
func (q *layerQueue) applyAll() {
	for _, l := range q.layers {
		l.Apply()
	}
	clear(q.layers)
	q.layers = q.layers[:0]
}

// len reports the number of queued updates.
func (q *layerQueue) len() int {
	return len(q.layers)
}
