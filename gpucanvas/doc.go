// Package gpucanvas provides a reference framepace.RenderContext built on
// the gpucontext device abstraction.
//
// The context owns surface lifecycle, frame numbering, frame-complete
// listeners, and a pinned image cache; scene preparation and command
// submission are delegated to an injected FrameRenderer. This split keeps
// the pacing-facing plumbing reusable across backends: anything that can
// produce a gpucontext.DeviceProvider (gogpu.App, a headless device, a test
// mock) can drive it.
package gpucanvas
