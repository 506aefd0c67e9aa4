package willowvr

import "github.com/go-gl/mathgl/mgl64"

// EyeCamera holds the view and projection for one eye or for the combined
// mirror view. Both matrices are independently settable; the inverse view
// is cached until the view changes.
type EyeCamera struct {
	view       mgl64.Mat4
	projection mgl64.Mat4
	invView    mgl64.Mat4
	dirty      bool
}

func newEyeCamera() *EyeCamera {
	return &EyeCamera{
		view:       identity,
		projection: identity,
		invView:    identity,
	}
}

// View returns the view matrix.
func (c *EyeCamera) View() mgl64.Mat4 { return c.view }

// Projection returns the projection matrix.
func (c *EyeCamera) Projection() mgl64.Mat4 { return c.projection }

// SetView replaces the view matrix.
func (c *EyeCamera) SetView(m mgl64.Mat4) {
	c.view = m
	c.dirty = true
}

// SetProjection replaces the projection matrix.
func (c *EyeCamera) SetProjection(m mgl64.Mat4) {
	c.projection = m
}

// InverseView returns the camera-to-tracking transform.
func (c *EyeCamera) InverseView() mgl64.Mat4 {
	if c.dirty {
		c.invView = affineInverse(c.view)
		c.dirty = false
	}
	return c.invView
}

// Position returns the camera position in the space the view maps from.
func (c *EyeCamera) Position() mgl64.Vec3 {
	return translation(c.InverseView())
}

// ViewProjection returns Projection · View.
func (c *EyeCamera) ViewProjection() mgl64.Mat4 {
	return c.projection.Mul4(c.view)
}
