package framepace

// FrameInfoIndex identifies one slot of the per-frame timing vector.
type FrameInfoIndex int

// Slots of the frame timing vector. All time values are nanoseconds on the
// same monotonic clock the compositor stamps vsync pulses with.
const (
	// FrameInfoVsync is the vsync timestamp the frame is being produced for.
	FrameInfoVsync FrameInfoIndex = iota

	// FrameInfoIntendedVsync is the vsync pulse the frame was originally
	// scheduled against. Differs from FrameInfoVsync when the producer
	// slipped a pulse.
	FrameInfoIntendedVsync

	// FrameInfoTimelineID is the compositor's frame timeline identifier.
	FrameInfoTimelineID

	// FrameInfoDeadline is the point by which the frame must be submitted
	// to be presented on its intended vsync.
	FrameInfoDeadline

	// FrameInfoInterval is the display refresh interval.
	FrameInfoInterval

	// FrameInfoStartTime is when the producer began building this frame.
	FrameInfoStartTime

	frameInfoSize // number of slots; keep last
)

// FrameInfo is the fixed timing vector captured for one frame.
//
// A FrameInfo is owned by the task for exactly one cycle: the producer fills
// it before calling DrawFrame and must treat it as consumed once the call
// returns. Values are plain int64 nanoseconds so the vector can be handed
// across the producer/render-thread boundary as a value copy.
type FrameInfo [frameInfoSize]int64

// Get returns the value stored at idx.
func (f *FrameInfo) Get(idx FrameInfoIndex) int64 {
	return f[idx]
}

// Set stores v at idx and returns f for chaining:
//
//	var frame framepace.FrameInfo
//	frame.Set(framepace.FrameInfoVsync, vsync).
//	      Set(framepace.FrameInfoDeadline, deadline)
func (f *FrameInfo) Set(idx FrameInfoIndex, v int64) *FrameInfo {
	f[idx] = v
	return f
}

// Snapshot returns a copy of the vector. The copy is detached from the
// task-owned original and safe to retain past the current cycle.
func (f *FrameInfo) Snapshot() FrameInfo {
	return *f
}
