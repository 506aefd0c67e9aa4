package willowvr

import (
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
)

// Gizmo colors for the device axes.
var (
	axisColorX = color.RGBA{R: 230, G: 60, B: 60, A: 255}
	axisColorY = color.RGBA{R: 60, G: 200, B: 60, A: 255}
	axisColorZ = color.RGBA{R: 70, G: 110, B: 240, A: 255}
	rayColor   = color.RGBA{R: 255, G: 220, B: 80, A: 255}
)

const (
	gizmoLength  = 0.05 // meters
	gizmoWidth   = 2
	rayLength    = 2 // meters
	rayLineWidth = 1.5
)

var lineScratch LineMesh

// DrawLine3D draws the segment a-b in v's model space into dst.
func DrawLine3D(dst *ebiten.Image, v EyeView, a, b mgl64.Vec3, width float64, clr color.Color) {
	if lineScratch.AddLine(v, a, b, width, clr) {
		lineScratch.Flush(dst)
	}
}

// DrawGrid draws a square grid on the y=0 plane of v's model space,
// centered on the origin, with lines every step meters out to half size.
func DrawGrid(dst *ebiten.Image, v EyeView, size, step float64, clr color.Color) {
	if size <= 0 || step <= 0 {
		return
	}
	half := size / 2
	n := int(math.Floor(half / step))
	for i := -n; i <= n; i++ {
		d := float64(i) * step
		lineScratch.AddLine(v, mgl64.Vec3{d, 0, -half}, mgl64.Vec3{d, 0, half}, 1, clr)
		lineScratch.AddLine(v, mgl64.Vec3{-half, 0, d}, mgl64.Vec3{half, 0, d}, 1, clr)
	}
	lineScratch.Flush(dst)
}

// DrawAxes draws an RGB gizmo for the frame m, length meters per axis.
func DrawAxes(dst *ebiten.Image, v EyeView, m mgl64.Mat4, length float64) {
	o := transformPoint(m, mgl64.Vec3{})
	lineScratch.AddLine(v, o, transformPoint(m, mgl64.Vec3{length, 0, 0}), gizmoWidth, axisColorX)
	lineScratch.AddLine(v, o, transformPoint(m, mgl64.Vec3{0, length, 0}), gizmoWidth, axisColorY)
	lineScratch.AddLine(v, o, transformPoint(m, mgl64.Vec3{0, 0, length}), gizmoWidth, axisColorZ)
	lineScratch.Flush(dst)
}

// DrawControllers draws an axis gizmo for every tracked controller and the
// input ray of pointing controllers. Gizmos are placed in tracking space and
// rays in world space regardless of v.Model.
func (h *Hmd) DrawControllers(dst *ebiten.Image, v EyeView) {
	tracking := v
	tracking.Model = identity
	world := v
	world.Model = h.modelFor(CoordSysWorld)

	for _, c := range h.session.controllers {
		if !c.poseValid {
			continue
		}
		DrawAxes(dst, tracking, c.deviceToTracking, gizmoLength)
		if r := c.InputRay(); !r.IsZero() {
			lineScratch.AddLine(world, r.Origin, r.At(rayLength), rayLineWidth, rayColor)
		}
	}
	lineScratch.Flush(dst)
}

// perpendicular returns the unit left-perpendicular of the segment from
// (x0,y0) to (x1,y1).
func perpendicular(x0, y0, x1, y1 float64) (float64, float64) {
	dx := x1 - x0
	dy := y1 - y0
	ln := math.Sqrt(dx*dx + dy*dy)
	if ln < 1e-10 {
		return 0, -1
	}
	return -dy / ln, dx / ln
}
