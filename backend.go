package willowvr

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
)

// Backend opens devices for one runtime family. Backends are registered
// with a Registry under an Api.
type Backend interface {
	// Name returns a short human-readable backend name.
	Name() string
	// Open connects to the device at deviceIndex.
	Open(opts SessionOptions, deviceIndex int) (Device, error)
	// Close releases runtime resources. Devices must be closed first.
	Close() error
}

// Device is the per-session driver boundary. All methods are called from
// the session's goroutine once per frame or less.
type Device interface {
	// Description returns the product name of the headset.
	Description() string

	// BeginFrame samples poses for the frame about to be rendered.
	BeginFrame(frameIndex uint64)
	// HeadPose returns the head pose sampled by the last BeginFrame.
	HeadPose() Pose
	// ControllerPose returns the pose of a controller sampled by the last
	// BeginFrame.
	ControllerPose(c *Controller) Pose

	// EyePose returns the eye transform relative to the head.
	EyePose(eye Eye) Pose
	// EyeProjection returns the projection matrix for an eye.
	EyeProjection(eye Eye, near, far float64) mgl64.Mat4
	// RenderTargetSize returns the side-by-side render target size in pixels.
	RenderTargetSize() (w, h int)
	// FullFov returns the vertical field of view in degrees used for the
	// combined mirror view.
	FullFov() float64

	SetTrackingOrigin(origin TrackingOrigin) error
	RecenterTrackingOrigin() error

	// ScanControllers reconciles the session's controllers with the devices
	// currently present.
	ScanControllers(s *Session)
	// ProcessEvents drains runtime events and feeds controller input.
	ProcessEvents(s *Session)

	// SubmitFrame hands the eye render target to the compositor. visible is
	// false while the compositor is not displaying the application.
	SubmitFrame(frameIndex uint64, target *ebiten.Image, viewports [EyeCount]Rect) (visible bool, err error)
	// MirrorTexture returns the compositor's distorted output, or nil.
	MirrorTexture() *ebiten.Image

	Close() error
}
