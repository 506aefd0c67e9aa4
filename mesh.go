package willowvr

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
)

// maxMeshVerts is the largest vertex count addressable by uint16 indices.
const maxMeshVerts = 65535

var whitePixelImage *ebiten.Image

// ensureWhitePixel returns a lazily-initialized 1x1 white pixel image.
// Line quads sample it so their color comes from the vertices.
func ensureWhitePixel() *ebiten.Image {
	if whitePixelImage == nil {
		whitePixelImage = ebiten.NewImage(1, 1)
		whitePixelImage.Fill(color.RGBA{R: 255, G: 255, B: 255, A: 255})
	}
	return whitePixelImage
}

// LineMesh accumulates 3D line segments projected through an EyeView and
// draws them with a single DrawTriangles call per flush. Segments crossing
// the near plane are clipped; segments fully behind it are dropped. A flush
// is antialiased when any queued segment came from an antialiased view.
type LineMesh struct {
	verts     []ebiten.Vertex
	inds      []uint16
	antiAlias bool
}

// Len returns the number of queued segments.
func (m *LineMesh) Len() int { return len(m.verts) / 4 }

// Reset drops queued segments, keeping the backing arrays.
func (m *LineMesh) Reset() {
	m.verts = m.verts[:0]
	m.inds = m.inds[:0]
	m.antiAlias = false
}

// AddLine queues the segment a-b in v's model space, width pixels wide.
// Returns false when the segment is not visible.
func (m *LineMesh) AddLine(v EyeView, a, b mgl64.Vec3, width float64, clr color.Color) bool {
	mvp := v.MVP()
	ca := mvp.Mul4x1(a.Vec4(1))
	cb := mvp.Mul4x1(b.Vec4(1))
	ca, cb, ok := clipNear(ca, cb)
	if !ok {
		return false
	}
	m.antiAlias = m.antiAlias || v.AntiAlias
	x0, y0, _ := v.toViewport(ca)
	x1, y1, _ := v.toViewport(cb)
	m.addQuad(x0, y0, x1, y1, width, clr)
	return true
}

func (m *LineMesh) addQuad(x0, y0, x1, y1, width float64, clr color.Color) {
	if len(m.verts)+4 > maxMeshVerts {
		return
	}
	px, py := perpendicular(x0, y0, x1, y1)
	hw := width / 2
	px, py = px*hw, py*hw

	n := color.NRGBAModel.Convert(clr).(color.NRGBA)
	r, g, b, al := float32(n.R)/255, float32(n.G)/255, float32(n.B)/255, float32(n.A)/255
	vert := func(x, y float64) ebiten.Vertex {
		return ebiten.Vertex{
			DstX: float32(x), DstY: float32(y),
			SrcX: 0.5, SrcY: 0.5,
			ColorR: r, ColorG: g, ColorB: b, ColorA: al,
		}
	}
	base := uint16(len(m.verts))
	m.verts = append(m.verts,
		vert(x0+px, y0+py),
		vert(x0-px, y0-py),
		vert(x1-px, y1-py),
		vert(x1+px, y1+py),
	)
	m.inds = append(m.inds, base, base+1, base+2, base, base+2, base+3)
}

// Flush draws the queued segments into dst and resets the mesh.
func (m *LineMesh) Flush(dst *ebiten.Image) {
	if dst == nil || len(m.inds) == 0 {
		m.Reset()
		return
	}
	var op ebiten.DrawTrianglesOptions
	op.AntiAlias = m.antiAlias
	dst.DrawTriangles(m.verts, m.inds, ensureWhitePixel(), &op)
	m.Reset()
}

// clipNear clips the clip-space segment a-b against the near plane
// (z >= -w). ok is false when the segment lies entirely behind it.
func clipNear(a, b mgl64.Vec4) (mgl64.Vec4, mgl64.Vec4, bool) {
	da := a[2] + a[3]
	db := b[2] + b[3]
	switch {
	case da < 0 && db < 0:
		return a, b, false
	case da < 0:
		a = lerp4(a, b, da/(da-db))
	case db < 0:
		b = lerp4(b, a, db/(db-da))
	}
	if a[3] <= 1e-9 || b[3] <= 1e-9 {
		return a, b, false
	}
	return a, b, true
}

func lerp4(a, b mgl64.Vec4, t float64) mgl64.Vec4 {
	return a.Add(b.Sub(a).Mul(t))
}
