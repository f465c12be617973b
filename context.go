package framepace

import (
	"image"
	"time"
)

// RenderNode is the root of the scene subtree a task draws. The node's
// contents are opaque to framepace; the render context walks it during
// PrepareTree and Draw.
type RenderNode struct {
	// Name identifies the node in logs. Optional.
	Name string
}

// TreeInfo is the structured output of RenderContext.PrepareTree for one
// frame.
type TreeInfo struct {
	// CanDrawThisFrame is false when preparation determined the frame
	// cannot be drawn (no surface, stopped context, nothing visible).
	CanDrawThisFrame bool

	// HasAnimations is true when animators advanced during preparation.
	HasAnimations bool

	// RequiresUIRedraw is true when those animations need the producer to
	// build another frame to be observed.
	RequiresUIRedraw bool

	// PrepareTextures is false when texture uploads ran out of cache space
	// during preparation. See the backpressure notes on DrawFrameTask.
	PrepareTextures bool
}

// RenderContext is the GPU-facing canvas a DrawFrameTask coordinates.
// Implementations own the surface, the texture cache, and command
// submission; framepace only decides when each step runs and when the
// producer is released.
//
// All methods are called on the render thread, inside the posted frame
// closure, except where noted. See gpucanvas/ for a reference
// implementation.
type RenderContext interface {
	// MakeCurrent binds the context to the calling thread.
	// Returns false if the context cannot bind (typically stopped).
	MakeCurrent() bool

	// UnpinImages eagerly releases unpinned cached images, relieving
	// texture memory pressure before the frame allocates new resources.
	UnpinImages()

	// SetContentDrawBounds publishes the region the producer requested
	// for drawing. Consumed once per cycle.
	SetContentDrawBounds(bounds image.Rectangle)

	// PrepareTree walks the target subtree, advancing animators and
	// uploading textures. postedAt is the monotonic nanosecond time the
	// frame was posted to the render thread.
	PrepareTree(frame FrameInfo, postedAt int64, target *RenderNode) TreeInfo

	// HasSurface reports whether a drawable surface is attached.
	HasSurface() bool

	// Draw submits the frame's GPU work and presents it. The returned
	// duration is the time spent waiting to dequeue a swapchain buffer,
	// which is display-bound rather than CPU-bound.
	Draw() time.Duration

	// WaitOnFences blocks until in-flight GPU work from prior frames has
	// retired. Called instead of Draw when the frame is dropped, so work
	// cannot pile up across skipped frames.
	WaitOnFences()

	// FrameNumber returns the number the next drawn frame will carry.
	// Accurate even on vsync pulses that end up not drawing.
	FrameNumber() int64

	// EnqueueFrameWork schedules work to run with the frame's draw.
	EnqueueFrameWork(work func())

	// AddFrameCompleteListener registers a one-shot callback invoked when
	// this frame's GPU work completes.
	AddFrameCompleteListener(listener func())
}

// VsyncSource receives each frame's timing vector at the start of the sync
// phase. Implementations typically feed a display-timing model that predicts
// future vsync pulses. Delivery is informational; nothing is read back.
type VsyncSource interface {
	VsyncReceived(frame FrameInfo)
}
