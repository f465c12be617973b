package framepace

import "testing"

// recordingLayer counts Apply calls and records global apply order.
type recordingLayer struct {
	name    string
	applied int
	order   *[]string
}

func (l *recordingLayer) Apply() {
	l.applied++
	if l.order != nil {
		*l.order = append(*l.order, l.name)
	}
}

func TestLayerQueuePushIdempotent(t *testing.T) {
	var q layerQueue
	layer := &recordingLayer{name: "a"}

	q.push(layer)
	q.push(layer)
	q.push(layer)

	if q.len() != 1 {
		t.Fatalf("expected 1 queued entry after repeated push, got %d", q.len())
	}

	q.applyAll()
	if layer.applied != 1 {
		t.Errorf("expected 1 apply, got %d", layer.applied)
	}
}

func TestLayerQueueRemove(t *testing.T) {
	var q layerQueue
	a := &recordingLayer{name: "a"}
	b := &recordingLayer{name: "b"}

	q.push(a)
	q.push(b)

	q.remove(a)
	if q.len() != 1 {
		t.Fatalf("expected 1 entry after remove, got %d", q.len())
	}

	// Removing an absent layer is a no-op.
	q.remove(a)
	if q.len() != 1 {
		t.Fatalf("expected remove of absent layer to be a no-op, got %d entries", q.len())
	}

	q.applyAll()
	if a.applied != 0 {
		t.Errorf("removed layer was applied %d times", a.applied)
	}
	if b.applied != 1 {
		t.Errorf("expected remaining layer applied once, got %d", b.applied)
	}
}

func TestLayerQueueRemoveReleasesReference(t *testing.T) {
	var q layerQueue
	a := &recordingLayer{name: "a"}
	b := &recordingLayer{name: "b"}

	q.push(a)
	q.push(b)
	q.remove(a)

	// The shift must not leave a stale entry in the backing array past the
	// new length, or the removed layer stays reachable until the next push.
	backing := q.layers[:cap(q.layers)]
	for i := q.len(); i < len(backing); i++ {
		if backing[i] != nil {
			t.Errorf("backing slot %d still references %v after remove", i, backing[i])
		}
	}
	if q.len() != 1 || q.layers[0] != b {
		t.Fatalf("expected queue [b] after remove, got %d entries", q.len())
	}
}

func TestLayerQueueApplyOrder(t *testing.T) {
	var q layerQueue
	var order []string

	layers := []*recordingLayer{
		{name: "first", order: &order},
		{name: "second", order: &order},
		{name: "third", order: &order},
	}
	for _, l := range layers {
		q.push(l)
	}
	// Overlapping re-push before apply must not duplicate.
	q.push(layers[0])
	q.push(layers[2])

	q.applyAll()

	want := []string{"first", "second", "third"}
	if len(order) != len(want) {
		t.Fatalf("expected %d applies, got %d (%v)", len(want), len(order), order)
	}
	for i, name := range want {
		if order[i] != name {
			t.Errorf("apply order[%d] = %q, want %q", i, order[i], name)
		}
	}
}

func TestLayerQueueClearedAfterApply(t *testing.T) {
	var q layerQueue
	q.push(&recordingLayer{name: "a"})
	q.push(&recordingLayer{name: "b"})

	q.applyAll()
	if q.len() != 0 {
		t.Fatalf("expected empty queue after apply, got %d entries", q.len())
	}

	// A second apply on the cleared queue does nothing.
	q.applyAll()
	if q.len() != 0 {
		t.Fatalf("expected queue to stay empty, got %d entries", q.len())
	}
}
