package willowvr

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// debugPanelColor backs the overlay text for readability.
var debugPanelColor = color.RGBA{0, 0, 0, 128}

// DebugInfo returns the text shown by DrawDebugInfo.
func (h *Hmd) DebugInfo() string {
	var b strings.Builder
	fmt.Fprintf(&b, "FPS: %.1f\nTPS: %.1f\n", ebiten.ActualFPS(), ebiten.ActualTPS())
	fmt.Fprintf(&b, "%s (%s)\n", h.Description(), h.session.api)
	fmt.Fprintf(&b, "origin: %s %s\n", h.state, h.originMode)
	fmt.Fprintf(&b, "frames: %d/%d visible: %t\n", h.elapsedFrames, h.frameIndex, h.visible)
	p := h.HeadPosition()
	fmt.Fprintf(&b, "head: (%.2f, %.2f, %.2f)\n", p[0], p[1], p[2])
	r := h.inputRay
	fmt.Fprintf(&b, "ray: (%.2f, %.2f, %.2f) -> (%.2f, %.2f, %.2f)\n",
		r.Origin[0], r.Origin[1], r.Origin[2], r.Direction[0], r.Direction[1], r.Direction[2])
	for _, c := range h.session.controllers {
		fmt.Fprintf(&b, "%s: %s\n", c.typ, c.name)
	}
	return b.String()
}

// DrawDebugInfo prints frame rate, origin state, and connected controllers
// in the top-left corner of screen.
func (h *Hmd) DrawDebugInfo(screen *ebiten.Image) {
	text := h.DebugInfo()
	lines := strings.Count(text, "\n") + 1
	longest := 0
	for _, l := range strings.Split(text, "\n") {
		longest = max(longest, len(l))
	}
	// ebitenutil.DebugPrint glyphs are 6x16.
	bg := screen.SubImage(image.Rect(0, 0, longest*6+8, lines*16+4)).(*ebiten.Image)
	bg.Fill(debugPanelColor)
	ebitenutil.DebugPrintAt(screen, text, 4, 2)
}
