package gpucanvas

import (
	"errors"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/framepace"
	"github.com/gogpu/framepace/imagecache"
)

// Common errors returned by Context operations.
var (
	// ErrNilProvider is returned when a nil DeviceProvider is passed.
	ErrNilProvider = errors.New("gpucanvas: nil DeviceProvider")

	// ErrNilRenderer is returned when a nil FrameRenderer is passed.
	ErrNilRenderer = errors.New("gpucanvas: nil FrameRenderer")
)

// DefaultImageCacheCapacity is the unpinned image cache entry budget used
// when no explicit capacity is configured.
const DefaultImageCacheCapacity = 256

// FrameRenderer prepares and submits one frame's scene content.
// Implementations walk the target subtree, upload textures through the
// context's image cache, and encode GPU commands against the provider's
// queue.
type FrameRenderer interface {
	// Prepare advances animators and uploads resources for the frame.
	Prepare(frame framepace.FrameInfo, postedAt int64, target *framepace.RenderNode) framepace.TreeInfo

	// Draw encodes and submits the frame's commands.
	Draw(queue gpucontext.Queue, bounds image.Rectangle) error
}

// FenceWaiter is an optional interface for renderers that track in-flight
// GPU work. When implemented, Context.WaitOnFences delegates to it.
type FenceWaiter interface {
	WaitIdle()
}

// DequeueFunc acquires the next output buffer and returns the time spent
// waiting for it. Swapchain-backed deployments install one via
// WithDequeueFunc; the default returns immediately.
type DequeueFunc func() time.Duration

// Context is a framepace.RenderContext over a gpucontext.DeviceProvider.
//
// Pacing methods (MakeCurrent, UnpinImages, PrepareTree, Draw, ...) are
// called on the render thread. Lifecycle methods (SetSurface, SetStopped)
// may be called from other goroutines and are internally synchronized.
type Context struct {
	provider gpucontext.DeviceProvider
	renderer FrameRenderer
	images   *imagecache.Cache[string]
	dequeue  DequeueFunc

	mu      sync.Mutex
	surface any
	stopped bool

	// Render-thread-only state.
	contentBounds image.Rectangle
	frameNumber   int64
	frameWork     []func()
	frameComplete []func()
}

var _ framepace.RenderContext = (*Context)(nil)

// ContextOption configures a Context during creation.
type ContextOption func(*contextOptions)

type contextOptions struct {
	cacheCapacity int
	dequeue       DequeueFunc
}

// WithImageCacheCapacity sets the unpinned image cache entry budget.
func WithImageCacheCapacity(n int) ContextOption {
	return func(o *contextOptions) {
		o.cacheCapacity = n
	}
}

// WithDequeueFunc installs the buffer acquisition hook used by Draw to
// measure display-bound wait time.
func WithDequeueFunc(fn DequeueFunc) ContextOption {
	return func(o *contextOptions) {
		o.dequeue = fn
	}
}

// New creates a context for the given device provider and renderer.
func New(provider gpucontext.DeviceProvider, renderer FrameRenderer, opts ...ContextOption) (*Context, error) {
	if provider == nil {
		return nil, ErrNilProvider
	}
	if renderer == nil {
		return nil, ErrNilRenderer
	}

	options := contextOptions{cacheCapacity: DefaultImageCacheCapacity}
	for _, opt := range opts {
		opt(&options)
	}

	images, err := imagecache.New[string](options.cacheCapacity)
	if err != nil {
		return nil, err
	}

	dequeue := options.dequeue
	if dequeue == nil {
		dequeue = func() time.Duration { return 0 }
	}

	return &Context{
		provider:    provider,
		renderer:    renderer,
		images:      images,
		dequeue:     dequeue,
		frameNumber: 1,
	}, nil
}

// Images returns the context's image cache. Renderers pin uploads through
// it during Prepare.
func (c *Context) Images() *imagecache.Cache[string] {
	return c.images
}

// SurfaceFormat returns the provider's swapchain texture format.
func (c *Context) SurfaceFormat() gputypes.TextureFormat {
	return c.provider.SurfaceFormat()
}

// SetSurface attaches (non-nil) or detaches (nil) the output surface.
// Safe to call from any goroutine.
func (c *Context) SetSurface(surface any) {
	c.mu.Lock()
	c.surface = surface
	c.mu.Unlock()
}

// SetStopped marks the context stopped or resumed. A stopped context
// refuses MakeCurrent, which surfaces as SyncContextIsStopped on the next
// frame. Safe to call from any goroutine.
func (c *Context) SetStopped(stopped bool) {
	c.mu.Lock()
	c.stopped = stopped
	c.mu.Unlock()
}

// MakeCurrent binds the context to the calling thread.
// Returns false while the context is stopped.
func (c *Context) MakeCurrent() bool {
	c.mu.Lock()
	stopped := c.stopped
	c.mu.Unlock()
	if stopped {
		framepace.Logger().Debug("make current refused: context stopped")
		return false
	}
	return c.provider.Device() != nil
}

// UnpinImages releases the previous frame's pins into the LRU tier.
func (c *Context) UnpinImages() {
	c.images.UnpinAll()
}

// SetContentDrawBounds publishes the producer's requested draw region.
func (c *Context) SetContentDrawBounds(bounds image.Rectangle) {
	c.contentBounds = bounds
}

// PrepareTree delegates scene preparation to the renderer, then folds in
// surface availability.
func (c *Context) PrepareTree(frame framepace.FrameInfo, postedAt int64, target *framepace.RenderNode) framepace.TreeInfo {
	info := c.renderer.Prepare(frame, postedAt, target)
	if !c.HasSurface() {
		info.CanDrawThisFrame = false
	}
	return info
}

// HasSurface reports whether an output surface is attached.
func (c *Context) HasSurface() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.surface != nil
}

// Draw acquires a buffer, runs enqueued frame work, submits the frame, and
// fires frame-complete listeners. Returns the buffer acquisition wait.
func (c *Context) Draw() time.Duration {
	dequeueDuration := c.dequeue()

	c.runFrameWork()

	if err := c.renderer.Draw(c.provider.Queue(), c.contentBounds); err != nil {
		// Non-fatal: the frame is lost but the pipeline keeps going.
		framepace.Logger().Warn("frame draw failed",
			slog.Int64("frame", c.frameNumber),
			slog.Any("error", err))
	}
	c.frameNumber++

	c.fireFrameComplete()
	return dequeueDuration
}

// WaitOnFences retires in-flight GPU work from prior frames. Enqueued frame
// work and frame-complete listeners still run, so a dropped frame cannot
// strand callbacks.
func (c *Context) WaitOnFences() {
	c.runFrameWork()
	if waiter, ok := c.renderer.(FenceWaiter); ok {
		waiter.WaitIdle()
	}
	c.fireFrameComplete()
}

// FrameNumber returns the number the next drawn frame will carry.
func (c *Context) FrameNumber() int64 {
	return c.frameNumber
}

// EnqueueFrameWork schedules work to run with this frame's draw (or its
// fence wait, when the frame is dropped).
func (c *Context) EnqueueFrameWork(work func()) {
	c.frameWork = append(c.frameWork, work)
}

// AddFrameCompleteListener registers a one-shot completion callback.
func (c *Context) AddFrameCompleteListener(listener func()) {
	c.frameComplete = append(c.frameComplete, listener)
}

// runFrameWork drains the enqueued frame work in FIFO order.
func (c *Context) runFrameWork() {
	work := c.frameWork
	c.frameWork = nil
	for _, fn := range work {
		fn()
	}
}

// fireFrameComplete invokes and clears the one-shot completion listeners.
func (c *Context) fireFrameComplete() {
	listeners := c.frameComplete
	c.frameComplete = nil
	for _, fn := range listeners {
		fn()
	}
}
