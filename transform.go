package willowvr

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// identity is the 4x4 identity matrix.
var identity = mgl64.Ident4()

// forward is the device-local viewing direction.
var forward = mgl64.Vec3{0, 0, -1}

// Pose is a position and orientation sample for one tracked device.
// Produced once per frame by a driver and treated as immutable afterwards.
type Pose struct {
	Position    mgl64.Vec3
	Orientation mgl64.Quat
	Valid       bool
}

// IdentityPose is a valid pose at the tracking origin facing -Z.
var IdentityPose = Pose{Orientation: mgl64.QuatIdent(), Valid: true}

// Matrix returns translate(position) · rotate(orientation).
func (p Pose) Matrix() mgl64.Mat4 {
	q := p.Orientation
	if q.Len() == 0 {
		q = mgl64.QuatIdent()
	}
	return translate(p.Position).Mul4(q.Normalize().Mat4())
}

// PoseFromMatrix decomposes a rigid transform into a valid Pose. Scale is
// assumed to be one.
func PoseFromMatrix(m mgl64.Mat4) Pose {
	return Pose{
		Position:    translation(m),
		Orientation: mgl64.Mat4ToQuat(m).Normalize(),
		Valid:       true,
	}
}

// Ray is a directed line in application-world space. The direction is not
// necessarily normalized. The zero Ray is the empty ray.
type Ray struct {
	Origin    mgl64.Vec3
	Direction mgl64.Vec3
}

// IsZero reports whether r is the empty ray.
func (r Ray) IsZero() bool {
	return r.Direction.Len() == 0 && r.Origin.Len() == 0
}

// At returns the point Origin + t·Direction.
func (r Ray) At(t float64) mgl64.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// IntersectPlane returns the ray parameter where r crosses the plane through
// point with the given normal. ok is false for parallel rays and hits behind
// the origin.
func (r Ray) IntersectPlane(point, normal mgl64.Vec3) (t float64, ok bool) {
	denom := normal.Dot(r.Direction)
	if math.Abs(denom) < 1e-9 {
		return 0, false
	}
	t = normal.Dot(point.Sub(r.Origin)) / denom
	return t, t >= 0
}

// rayFrom computes the pointing ray of a device:
//
//	M = invLook · invOrigin · deviceToTracking
//	origin = M·(0,0,0,1), direction = M·(0,0,-1,0)
func rayFrom(invLook, invOrigin, deviceToTracking mgl64.Mat4) Ray {
	m := invLook.Mul4(invOrigin).Mul4(deviceToTracking)
	return Ray{
		Origin:    m.Mul4x1(mgl64.Vec4{0, 0, 0, 1}).Vec3(),
		Direction: m.Mul4x1(forward.Vec4(0)).Vec3(),
	}
}

// translate returns a translation matrix.
func translate(v mgl64.Vec3) mgl64.Mat4 {
	return mgl64.Translate3D(v[0], v[1], v[2])
}

// translation extracts the translation column of an affine matrix.
func translation(m mgl64.Mat4) mgl64.Vec3 {
	return m.Col(3).Vec3()
}

// affineInverse inverts an affine matrix by inverting its linear part and
// back-transforming the translation.
func affineInverse(m mgl64.Mat4) mgl64.Mat4 {
	inv := m.Mat3().Inv()
	t := inv.Mul3x1(translation(m)).Mul(-1)
	out := inv.Mat4()
	out.SetCol(3, t.Vec4(1))
	return out
}

// transformPoint applies m to a point (w = 1).
func transformPoint(m mgl64.Mat4, p mgl64.Vec3) mgl64.Vec3 {
	return m.Mul4x1(p.Vec4(1)).Vec3()
}

// transformDir applies m to a direction (w = 0).
func transformDir(m mgl64.Mat4, d mgl64.Vec3) mgl64.Vec3 {
	return m.Mul4x1(d.Vec4(0)).Vec3()
}

// headingOf returns the normalized horizontal projection of the device's
// forward direction. Looking straight up or down has no heading; -Z is
// returned instead.
func headingOf(deviceToTracking mgl64.Mat4) mgl64.Vec3 {
	d := transformPoint(deviceToTracking, forward).Sub(transformPoint(deviceToTracking, mgl64.Vec3{}))
	d[1] = 0
	if d.Len() < 1e-9 {
		return forward
	}
	return d.Normalize()
}

// yawTo returns the rotation about +Y that maps (0,0,-1) onto the horizontal
// unit vector heading.
func yawTo(heading mgl64.Vec3) mgl64.Mat4 {
	return mgl64.HomogRotate3DY(math.Atan2(-heading[0], -heading[2]))
}
