package willowvr

import (
	"log/slog"
	"time"
)

// frameStats holds per-frame timing metrics.
// Only populated when Session debug mode is on.
type frameStats struct {
	bindTime    time.Duration
	submitTime  time.Duration
	mirrorTime  time.Duration
	controllers int
}

// debugLog writes timing stats at debug level.
func (h *Hmd) debugLog(stats frameStats) {
	if !h.session.debug {
		return
	}
	total := stats.bindTime + stats.submitTime + stats.mirrorTime
	h.session.logger.Debug("frame",
		slog.Uint64("frame", h.frameIndex),
		slog.Duration("bind", stats.bindTime),
		slog.Duration("submit", stats.submitTime),
		slog.Duration("mirror", stats.mirrorTime),
		slog.Duration("total", total),
		slog.Int("controllers", stats.controllers),
		slog.String("origin", h.state.String()),
		slog.Bool("visible", h.visible),
	)
}

// debugCheckBound warns when an eye is enabled outside Bind/Unbind.
func (h *Hmd) debugCheckBound(op string) {
	if h.session.debug && !h.bound {
		h.session.logger.Warn("eye used outside bind", "op", op, "frame", h.frameIndex)
	}
}
