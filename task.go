package framepace

import (
	"image"
	"log/slog"
	"sync/atomic"
	"time"
)

// processStart anchors the package's monotonic clock. nanotime readings are
// comparable with each other and with FrameInfo values produced from the
// same anchor.
var processStart = time.Now()

// nanotime returns monotonic nanoseconds since process start.
func nanotime() int64 {
	return int64(time.Since(processStart))
}

// Option configures a DrawFrameTask during creation.
type Option func(*DrawFrameTask)

// WithTargetCPUPercent sets the share of the vsync budget reported as the
// target CPU work duration to the hint channel. Values outside (0, 100] fall
// back to DefaultTargetCPUPercent.
func WithTargetCPUPercent(pct int) Option {
	return func(t *DrawFrameTask) {
		if pct > 0 && pct <= 100 {
			t.hints.targetCPUPercent = int64(pct)
		}
	}
}

// withClock overrides the monotonic clock. Test hook.
func withClock(now func() int64) Option {
	return func(t *DrawFrameTask) {
		t.now = now
	}
}

// TaskStats counts frame outcomes across the task's lifetime.
type TaskStats struct {
	// Frames is the number of completed cycles.
	Frames int64
	// Dropped is the number of cycles that ended with SyncFrameDropped.
	Dropped int64
}

// DrawFrameTask coordinates one frame cycle at a time between a producer
// goroutine and a render thread.
//
// The producer fills in frame state and calls DrawFrame, which blocks until
// the render thread has captured everything this frame needs. Depending on
// texture cache pressure the release happens either right after the sync
// phase (the common low-latency path) or only after the frame's draw has
// completed (backpressure; see the package documentation).
//
// A task coordinates exactly one RenderContext and one target node, set via
// SetTarget. DrawFrame is not reentrant; the task assumes a single-producer
// contract.
type DrawFrameTask struct {
	renderThread *RenderThread
	context      RenderContext
	targetRoot   *RenderNode

	// Frame state, written by the producer before posting and read by the
	// render thread inside the posted closure. The gate serializes access;
	// no locking needed. Everything the render thread touches after
	// releasing the gate must be copied to locals first, because the next
	// cycle's producer may already be overwriting these fields.
	frame             FrameInfo
	contentDrawBounds image.Rectangle
	frameComplete     func()
	frameCallback     func(frameNumber int64)
	layers            layerQueue
	syncResult        SyncResult
	syncQueued        int64

	gate  *UnblockGate
	hints hintReporter
	now   func() int64

	frames  atomic.Int64
	dropped atomic.Int64
}

// NewDrawFrameTask creates a task with no target. SetTarget must be called
// before the first DrawFrame.
func NewDrawFrameTask(opts ...Option) *DrawFrameTask {
	t := &DrawFrameTask{
		gate: NewUnblockGate(),
		now:  nanotime,
	}
	t.hints.targetCPUPercent = DefaultTargetCPUPercent
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// SetTarget binds the task to a render thread, context, and target subtree.
// Called before the first frame and again whenever the window's context is
// replaced. Must not be called while a cycle is in flight.
func (t *DrawFrameTask) SetTarget(rt *RenderThread, ctx RenderContext, target *RenderNode) {
	t.renderThread = rt
	t.context = ctx
	t.targetRoot = target
}

// SetHintCallbacks installs the adaptive-scheduling hint channel. Both
// callbacks must be non-nil for reporting to activate; set once during
// initialization, before the first DrawFrame, and never changed after.
func (t *DrawFrameTask) SetHintCallbacks(updateTarget, reportActual DurationCallback) {
	t.hints.updateTarget = updateTarget
	t.hints.reportActual = reportActual
}

// PushLayerUpdate queues a deferred layer mutation for application during
// the next sync phase. Idempotent: pushing an already-queued layer is a
// no-op. Panics if no context is set, since an update queued against nothing
// can never be applied.
func (t *DrawFrameTask) PushLayerUpdate(layer LayerUpdater) {
	if t.context == nil {
		panic("framepace: PushLayerUpdate with no render context")
	}
	t.layers.push(layer)
}

// RemoveLayerUpdate cancels a previously queued layer update. No-op if the
// layer is not queued.
func (t *DrawFrameTask) RemoveLayerUpdate(layer LayerUpdater) {
	t.layers.remove(layer)
}

// Stats returns frame outcome counters. Safe to call from any goroutine.
func (t *DrawFrameTask) Stats() TaskStats {
	return TaskStats{
		Frames:  t.frames.Load(),
		Dropped: t.dropped.Load(),
	}
}

// DrawFrame hands one frame to the render thread and blocks until it may
// proceed with the next.
//
// frame is the timing vector for this vsync pulse. bounds is the region
// requested for drawing. frameComplete, if non-nil, fires once when the
// frame's GPU work completes. frameCallback, if non-nil, is enqueued with
// the frame's number even on pulses that end up not drawing.
//
// The returned SyncResult describes frame-level outcomes; see the flag
// documentation. DrawFrame panics if SetTarget has not established a
// context, which is a lifecycle violation rather than a recoverable error.
func (t *DrawFrameTask) DrawFrame(frame FrameInfo, bounds image.Rectangle, frameComplete func(), frameCallback func(frameNumber int64)) SyncResult {
	if t.context == nil {
		panic("framepace: DrawFrame with no render context")
	}

	t.frame = frame
	t.contentDrawBounds = bounds
	t.frameComplete = frameComplete
	t.frameCallback = frameCallback
	t.syncResult = SyncOK
	t.syncQueued = t.now()

	t.gate.PostAndWait(func() {
		if !t.renderThread.Post(t.run) {
			// A stopped thread can never deliver the gate signal;
			// waiting would deadlock the producer forever.
			panic("framepace: DrawFrame on a stopped render thread")
		}
	})

	return t.syncResult
}

// run executes one frame cycle on the render thread. Two phases: the sync
// phase captures producer state, then the gate is released (early or late
// per the backpressure policy) and the draw phase continues asynchronously.
func (t *DrawFrameTask) run() {
	syncDelay := time.Duration(t.now() - t.syncQueued)

	var info TreeInfo
	canUnblock := t.syncFrameState(&info)
	canDraw := info.CanDrawThisFrame

	if t.frameComplete != nil {
		t.context.AddFrameCompleteListener(t.frameComplete)
		t.frameComplete = nil
	}

	// Copy everything the draw phase needs. After the gate release below,
	// the next cycle's producer may be rewriting task fields.
	ctx := t.context
	callback := t.frameCallback
	t.frameCallback = nil
	hints := &t.hints
	intendedVsync := t.frame.Get(FrameInfoIntendedVsync)
	frameDeadline := t.frame.Get(FrameInfoDeadline)
	frameStartTime := t.frame.Get(FrameInfoStartTime)

	if canUnblock {
		t.gate.Release()
	}

	// The frame number is accurate even when this pulse does not draw.
	if callback != nil {
		frameNr := ctx.FrameNumber()
		ctx.EnqueueFrameWork(func() { callback(frameNr) })
	}

	var dequeue time.Duration
	if canDraw {
		dequeue = ctx.Draw()
	} else {
		// Retire prior frames' fences so skipped pulses don't let GPU
		// work overlap into the next frame.
		ctx.WaitOnFences()
	}

	if !canUnblock {
		t.gate.Release()
	}

	// Hint state is render-thread-only, so touching it after the release
	// cannot race the producer.
	if hints.enabled() {
		hints.forwardTarget(frameDeadline, intendedVsync)
		frameDuration := time.Duration(t.now() - frameStartTime)
		hints.forwardActual(frameDuration, syncDelay, dequeue)
	}
	hints.setLastDequeue(dequeue)
}

// syncFrameState is the sync phase: deliver timing, bind the context, flush
// layer updates, publish draw bounds, prepare the tree, and fold the
// outcomes into the cycle's SyncResult.
//
// Returns whether the producer may be released before the draw phase
// (false when texture preparation ran out of cache space).
func (t *DrawFrameTask) syncFrameState(info *TreeInfo) bool {
	if sink := t.renderThread.vsyncSink; sink != nil {
		sink.VsyncReceived(t.frame)
	}

	canDraw := t.context.MakeCurrent()
	t.context.UnpinImages()

	t.layers.applyAll()
	t.context.SetContentDrawBounds(t.contentDrawBounds)
	*info = t.context.PrepareTree(t.frame, t.syncQueued, t.targetRoot)

	// Checked after PrepareTree so pending tree state and prefetched
	// layers have been flushed first.
	if !t.context.HasSurface() {
		t.syncResult |= SyncLostSurfaceRewardIfFound
		info.CanDrawThisFrame = false
	} else if !canDraw {
		// A surface is present but the context refused to bind, which
		// only happens while stopped.
		t.syncResult |= SyncContextIsStopped
		info.CanDrawThisFrame = false
	}

	if info.HasAnimations && info.RequiresUIRedraw {
		t.syncResult |= SyncUIRedrawRequired
	}
	if !info.CanDrawThisFrame {
		t.syncResult |= SyncFrameDropped
		t.dropped.Add(1)
		Logger().Warn("frame dropped",
			slog.Int64("timelineID", t.frame.Get(FrameInfoTimelineID)),
			slog.String("result", t.syncResult.String()))
	}
	t.frames.Add(1)

	Logger().Debug("frame synced",
		slog.Int64("timelineID", t.frame.Get(FrameInfoTimelineID)),
		slog.Bool("canDraw", info.CanDrawThisFrame),
		slog.Bool("prepareTextures", info.PrepareTextures))

	// False means texture uploads ran out of cache space; hold the
	// producer until the draw completes.
	return info.PrepareTextures
}
