// Package framepace synchronizes frame handoff between a producer goroutine
// and a dedicated render thread.
//
// # Overview
//
// framepace implements the pacing core of a retained-mode rendering pipeline.
// A producer goroutine builds scene state for a frame, then calls
// [DrawFrameTask.DrawFrame], which posts the frame to the render thread and
// blocks until the render thread has captured everything it needs. The render
// thread continues drawing asynchronously after releasing the producer, so
// the producer can start preparing the next frame while the current one is
// still being submitted to the GPU.
//
// # Quick Start
//
//	rt := framepace.NewRenderThread()
//	defer rt.Stop()
//
//	task := framepace.NewDrawFrameTask()
//	task.SetTarget(rt, ctx, root)
//
//	// Per frame, on the producer goroutine:
//	result := task.DrawFrame(frame, bounds, nil, nil)
//	if result.Has(framepace.SyncFrameDropped) {
//	    // frame was not drawn this vsync pulse
//	}
//
// # Architecture
//
// The package is organized around a small set of cooperating pieces:
//   - DrawFrameTask: the per-window frame cycle state machine
//   - RenderThread: single goroutine owning the GPU-facing context, with a
//     strictly ordered FIFO task queue
//   - UnblockGate: the one-shot block/release primitive between producer and
//     render thread
//   - RenderContext: the interface to the GPU-facing canvas implementation
//     (see gpucanvas/ for a reference implementation)
//   - imagecache/: pinned texture cache backing UnpinImages semantics
//
// # Backpressure
//
// When frame preparation reports texture cache exhaustion, the producer is
// held until the render thread finishes drawing the constrained frame. This
// converts transient cache pressure into backpressure on the producer instead
// of letting it race ahead and add more texture demand.
//
// # Thread Safety
//
// A DrawFrameTask serves exactly one producer at a time; DrawFrame is not
// reentrant. All other task state is serialized by the frame cycle itself and
// needs no additional locking.
package framepace
