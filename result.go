package framepace

import "strings"

// SyncResult is a bitmask summarizing the outcome of one frame cycle.
//
// Flags are independent and may be combined; the producer checks individual
// bits with Has after DrawFrame returns. The zero value (SyncOK) means the
// frame synced and will be drawn.
type SyncResult uint32

// SyncOK is the empty result: the frame synced cleanly.
const SyncOK SyncResult = 0

const (
	// SyncUIRedrawRequired means animations ran during the sync phase that
	// the producer must redraw to observe; it should schedule another frame.
	SyncUIRedrawRequired SyncResult = 1 << iota

	// SyncLostSurfaceRewardIfFound means the target surface disappeared.
	// The producer should stop producing frames until a surface returns.
	SyncLostSurfaceRewardIfFound

	// SyncContextIsStopped means a surface exists but the render context is
	// stopped and refused to bind. Mutually exclusive with
	// SyncLostSurfaceRewardIfFound.
	SyncContextIsStopped

	// SyncFrameDropped means this frame was not drawn this vsync pulse.
	SyncFrameDropped
)

// Has reports whether all bits of flag are set in r.
func (r SyncResult) Has(flag SyncResult) bool {
	return r&flag == flag
}

// String returns a human-readable form, e.g. "UIRedrawRequired|FrameDropped".
func (r SyncResult) String() string {
	if r == SyncOK {
		return "OK"
	}
	var parts []string
	if r.Has(SyncUIRedrawRequired) {
		parts = append(parts, "UIRedrawRequired")
	}
	if r.Has(SyncLostSurfaceRewardIfFound) {
		parts = append(parts, "LostSurfaceRewardIfFound")
	}
	if r.Has(SyncContextIsStopped) {
		parts = append(parts, "ContextIsStopped")
	}
	if r.Has(SyncFrameDropped) {
		parts = append(parts, "FrameDropped")
	}
	return strings.Join(parts, "|")
}
