package willowvr

import (
	"bytes"
	"fmt"
	"image/color"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/goregular"
)

// TTFFont wraps Ebitengine's text/v2 for TrueType labels drawn into eye
// targets.
type TTFFont struct {
	face   *text.GoTextFace
	source *text.GoTextFaceSource
	size   float64
	lh     float64 // cached line height
}

// LoadTTFFont loads a TrueType font from raw TTF/OTF data at the given size.
func LoadTTFFont(ttfData []byte, size float64) (*TTFFont, error) {
	source, err := text.NewGoTextFaceSource(bytes.NewReader(ttfData))
	if err != nil {
		return nil, fmt.Errorf("willowvr: failed to parse TTF data: %w", err)
	}
	face := &text.GoTextFace{Source: source, Size: size}
	m := face.Metrics()
	return &TTFFont{
		face:   face,
		source: source,
		size:   size,
		lh:     m.HAscent + m.HDescent + m.HLineGap,
	}, nil
}

var (
	defaultFontOnce sync.Once
	defaultFont     *TTFFont
	defaultFontErr  error
)

// DefaultFont returns the built-in Go Regular face at 14 pixels.
func DefaultFont() (*TTFFont, error) {
	defaultFontOnce.Do(func() {
		defaultFont, defaultFontErr = LoadTTFFont(goregular.TTF, 14)
	})
	return defaultFont, defaultFontErr
}

// Size returns the face size in pixels.
func (f *TTFFont) Size() float64 { return f.size }

// MeasureString returns the width and height of the rendered text.
func (f *TTFFont) MeasureString(s string) (width, height float64) {
	return text.Measure(s, f.face, f.lh)
}

// LineHeight returns the vertical distance between baselines.
func (f *TTFFont) LineHeight() float64 { return f.lh }

// Face returns the underlying GoTextFace for direct text/v2 rendering.
func (f *TTFFont) Face() *text.GoTextFace { return f.face }

// labelPlacement returns the top-left corner for a label of size w×h
// centered horizontally on (x, y) and sitting just above it.
func labelPlacement(x, y, w, h float64) (float64, float64) {
	return x - w/2, y - h - labelGap
}

const labelGap = 4 // pixels between anchor and label

// DrawLabel3D draws s into dst centered above the model-space point p.
// Returns false when p is behind the eye.
func DrawLabel3D(dst *ebiten.Image, v EyeView, f *TTFFont, p mgl64.Vec3, s string, clr color.Color) bool {
	x, y, ok := v.Project(p)
	if !ok {
		return false
	}
	if dst == nil || s == "" {
		return true
	}
	w, h := f.MeasureString(s)
	lx, ly := labelPlacement(x, y, w, h)

	op := &text.DrawOptions{}
	op.GeoM.Translate(lx, ly)
	op.ColorScale.ScaleWithColor(clr)
	op.LineSpacing = f.lh
	text.Draw(dst, s, f.face, op)
	return true
}

// DrawControllerLabels names every tracked controller at its position in
// tracking space.
func (h *Hmd) DrawControllerLabels(dst *ebiten.Image, v EyeView, f *TTFFont) {
	tracking := v
	tracking.Model = identity
	for _, c := range h.session.controllers {
		if !c.poseValid {
			continue
		}
		DrawLabel3D(dst, tracking, f, translation(c.deviceToTracking), c.name, color.White)
	}
}
