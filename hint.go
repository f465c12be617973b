package framepace

import "time"

// DurationCallback receives a work-duration report for the adaptive
// CPU-scheduling hint channel, in nanoseconds of CPU work.
type DurationCallback func(d time.Duration)

// Reported durations outside the open interval (hintFloor, hintCeiling) are
// considered nonsense (clock skew, first-frame artifacts) and suppressed.
const (
	hintFloor   = 100 * time.Microsecond
	hintCeiling = 10 * time.Second
)

// DefaultTargetCPUPercent is the share of the vsync budget treated as
// available CPU time when no explicit value is configured.
const DefaultTargetCPUPercent = 70

// hintReporter computes per-frame target and actual CPU work durations and
// forwards them to the hint channel.
//
// The reporter is inert unless both callbacks are set. Its mutable state
// (last forwarded target, last dequeue duration) is touched only by the
// render thread, so it needs no locking.
type hintReporter struct {
	updateTarget DurationCallback
	reportActual DurationCallback

	// targetCPUPercent is the percentage of the frame budget the producer
	// and render thread together are expected to spend on CPU work.
	targetCPUPercent int64

	lastTarget  time.Duration
	lastDequeue time.Duration
}

// enabled reports whether both hint callbacks are configured.
func (h *hintReporter) enabled() bool {
	return h.updateTarget != nil && h.reportActual != nil
}

// inRange reports whether d lies strictly inside the sanity interval.
func inRange(d time.Duration) bool {
	return d > hintFloor && d < hintCeiling
}

// forwardTarget forwards the frame's target work duration if it is sane and
// differs from the last forwarded value. The dedupe matters: the target is
// near-constant across frames and the channel typically crosses a process
// boundary.
func (h *hintReporter) forwardTarget(frameDeadline, intendedVsync int64) {
	target := time.Duration(frameDeadline-intendedVsync) * time.Duration(h.targetCPUPercent) / 100
	if inRange(target) && target != h.lastTarget {
		h.lastTarget = target
		h.updateTarget(target)
	}
}

// forwardActual forwards the measured CPU work duration for the frame.
//
// Dequeue-buffer wait is display-bound, not CPU-bound, so it is subtracted
// from the wall-clock frame duration. The min with the previous cycle's
// dequeue duration guards against over-subtracting when this cycle's sync
// delay already absorbed part of a stale wait.
func (h *hintReporter) forwardActual(frameDuration, syncDelay, dequeue time.Duration) {
	actual := frameDuration - min(syncDelay, h.lastDequeue) - dequeue
	if inRange(actual) {
		h.reportActual(actual)
	}
}

// setLastDequeue records the cycle's dequeue duration. Called at the end of
// every cycle, even when drawing was skipped (in which case it is zero), so
// the next cycle's min() compares against fresh data.
func (h *hintReporter) setLastDequeue(d time.Duration) {
	h.lastDequeue = d
}
