package willowvr

import (
	"image"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// mirrorStep is one phase of DrawMirrored.
type mirrorStep uint8

const (
	stepDraw   mirrorStep = iota // compose the mirror into the window
	stepSubmit                   // hand the frame to the compositor
)

// mirrorSequence returns the order of draw and submit for a mirror mode.
// Undistorted modes compose the eye buffers before submission; the
// compositor mirror is only current after submission.
func mirrorSequence(mode MirrorMode, handleSubmit bool) []mirrorStep {
	switch {
	case mode == MirrorModeNone:
		if handleSubmit {
			return []mirrorStep{stepSubmit}
		}
		return nil
	case mode.Undistorted():
		if handleSubmit {
			return []mirrorStep{stepDraw, stepSubmit}
		}
		return []mirrorStep{stepDraw}
	default:
		if handleSubmit {
			return []mirrorStep{stepSubmit, stepDraw}
		}
		return []mirrorStep{stepDraw}
	}
}

// MirrorMode returns the window composition mode.
func (h *Hmd) MirrorMode() MirrorMode { return h.mirrorMode }

// SetMirrorMode changes the window composition mode.
func (h *Hmd) SetMirrorMode(mode MirrorMode) { h.mirrorMode = mode }

// IsMirrored reports whether anything is drawn to the window.
func (h *Hmd) IsMirrored() bool { return h.mirrorMode != MirrorModeNone }

// IsMirroredUndistorted reports whether the window shows raw eye buffers.
func (h *Hmd) IsMirroredUndistorted() bool { return h.mirrorMode.Undistorted() }

// SubmitFrame hands the eye render target to the compositor and records
// whether the application is visible in the headset.
func (h *Hmd) SubmitFrame() error {
	var t0 time.Time
	if h.session.debug {
		t0 = time.Now()
	}
	h.ensureTarget()
	visible, err := h.device.SubmitFrame(h.frameIndex, h.target, h.viewports)
	h.visible = visible
	if h.session.debug {
		h.stats.submitTime = time.Since(t0)
	}
	if err != nil {
		h.session.logger.Warn("submit frame", "frame", h.frameIndex, "err", err)
	}
	return err
}

// DrawMirrored composes the eye buffers into rect on screen according to
// the mirror mode, and submits the frame when handleSubmit is set. Queued
// screenshots are written afterwards.
func (h *Hmd) DrawMirrored(screen *ebiten.Image, rect Rect, handleSubmit bool) error {
	var t0 time.Time
	if h.session.debug {
		t0 = time.Now()
	}
	h.mirrorRect = rect

	var err error
	for _, st := range mirrorSequence(h.mirrorMode, handleSubmit) {
		switch st {
		case stepDraw:
			h.drawMirror(screen, rect)
		case stepSubmit:
			if e := h.SubmitFrame(); e != nil {
				err = e
			}
		}
	}

	if h.session.debug {
		h.stats.mirrorTime = time.Since(t0) - h.stats.submitTime
		h.stats.controllers = len(h.session.controllers)
		h.debugLog(h.stats)
	}
	h.session.flushScreenshots(screen)
	return err
}

func (h *Hmd) drawMirror(screen *ebiten.Image, rect Rect) {
	h.ensureTarget()
	switch h.mirrorMode {
	case MirrorModeStereo:
		if mt := h.device.MirrorTexture(); mt != nil {
			drawStretched(screen, mt, rect)
			return
		}
		drawStretched(screen, h.target, rect)
	case MirrorModeUndistortedStereo:
		drawStretched(screen, h.target, rect)
	case MirrorModeUndistortedMonoLeft:
		drawCenteredFit(screen, h.EyeTarget(EyeLeft), rect)
	case MirrorModeUndistortedMonoRight:
		drawCenteredFit(screen, h.EyeTarget(EyeRight), rect)
	}
}

// drawStretched scales src to cover dst rect exactly.
func drawStretched(dst, src *ebiten.Image, rect Rect) {
	b := src.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return
	}
	var op ebiten.DrawImageOptions
	op.GeoM.Translate(-float64(b.Min.X), -float64(b.Min.Y))
	op.GeoM.Scale(rect.Width/float64(b.Dx()), rect.Height/float64(b.Dy()))
	op.GeoM.Translate(rect.X, rect.Y)
	op.Filter = ebiten.FilterLinear
	dst.DrawImage(src, &op)
}

// drawCenteredFit fills rect with src at uniform scale, cropping whatever
// overflows equally on both sides.
func drawCenteredFit(dst, src *ebiten.Image, rect Rect) {
	crop := centeredFit(src.Bounds(), rect)
	if crop.Empty() {
		return
	}
	drawStretched(dst, src.SubImage(crop).(*ebiten.Image), rect)
}

// centeredFit returns the centered region of src with rect's aspect ratio.
func centeredFit(src image.Rectangle, rect Rect) image.Rectangle {
	if src.Empty() || rect.Width <= 0 || rect.Height <= 0 {
		return image.Rectangle{}
	}
	sw, sh := float64(src.Dx()), float64(src.Dy())
	target := rect.Aspect()
	w, h := sw, sh
	if sw/sh > target {
		w = sh * target
	} else {
		h = sw / target
	}
	x0 := src.Min.X + int((sw-w)/2)
	y0 := src.Min.Y + int((sh-h)/2)
	return image.Rect(x0, y0, x0+int(w), y0+int(h))
}
