package willowvr

import (
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// Vec3 is a file-friendly three-component vector used in SessionOptions.
type Vec3 struct {
	X float64 `toml:"x" yaml:"x"`
	Y float64 `toml:"y" yaml:"y"`
	Z float64 `toml:"z" yaml:"z"`
}

// Mgl converts v to an mgl64 vector.
func (v Vec3) Mgl() mgl64.Vec3 { return mgl64.Vec3{v.X, v.Y, v.Z} }

// SessionOptions configures a session. Use DefaultSessionOptions as the base
// and override fields as needed.
type SessionOptions struct {
	VerticalSync   bool           `toml:"vertical_sync" yaml:"vertical_sync"`
	FrameRate      float64        `toml:"frame_rate" yaml:"frame_rate"`
	TrackingOrigin TrackingOrigin `toml:"tracking_origin" yaml:"tracking_origin"`
	OriginMode     OriginMode     `toml:"origin_mode" yaml:"origin_mode"`
	OriginOffset   Vec3           `toml:"origin_offset" yaml:"origin_offset"`
	MirrorMode     MirrorMode     `toml:"mirror_mode" yaml:"mirror_mode"`
	SampleCount    int            `toml:"sample_count" yaml:"sample_count"`
	MipLevels      int            `toml:"mip_levels" yaml:"mip_levels"`
	NearClip       float64        `toml:"near_clip" yaml:"near_clip"`
	FarClip        float64        `toml:"far_clip" yaml:"far_clip"`
	// ScreenPercentage scales the recommended render target size.
	ScreenPercentage float64 `toml:"screen_percentage" yaml:"screen_percentage"`
	// ControllerScanInterval is the re-scan period in seconds. Zero disables
	// re-scanning after the initial scan.
	ControllerScanInterval float64 `toml:"controller_scan_interval" yaml:"controller_scan_interval"`

	// Callbacks registered on the session at begin. Not part of the file format.
	ControllerConnected    func(*Controller) `toml:"-" yaml:"-"`
	ControllerDisconnected func(*Controller) `toml:"-" yaml:"-"`
}

// DefaultSessionOptions returns the stock session configuration.
func DefaultSessionOptions() SessionOptions {
	return SessionOptions{
		VerticalSync:     false,
		FrameRate:        90,
		TrackingOrigin:   TrackingOriginDeviceDefault,
		OriginMode:       OriginModeHmdOriented,
		OriginOffset:     Vec3{0, 0, -1},
		MirrorMode:       MirrorModeStereo,
		SampleCount:      1,
		MipLevels:        1,
		NearClip:         0.1,
		FarClip:          100,
		ScreenPercentage: 1,
	}
}

// SetControllerScanInterval sets the re-scan period, clamped to zero.
func (o *SessionOptions) SetControllerScanInterval(seconds float64) *SessionOptions {
	o.ControllerScanInterval = math.Max(0, seconds)
	return o
}

// ScanInterval returns the clamped re-scan period as a duration.
func (o SessionOptions) ScanInterval() time.Duration {
	if o.ControllerScanInterval <= 0 || math.IsNaN(o.ControllerScanInterval) {
		return 0
	}
	return time.Duration(o.ControllerScanInterval * float64(time.Second))
}

// normalized fills zero fields with defaults and clamps ranges.
func (o SessionOptions) normalized() SessionOptions {
	def := DefaultSessionOptions()
	if o.FrameRate <= 0 {
		o.FrameRate = def.FrameRate
	}
	if o.TrackingOrigin == 0 {
		o.TrackingOrigin = def.TrackingOrigin
	}
	if o.SampleCount < 1 {
		o.SampleCount = 1
	}
	if o.MipLevels < 1 {
		o.MipLevels = 1
	}
	if o.NearClip <= 0 {
		o.NearClip = def.NearClip
	}
	if o.FarClip <= o.NearClip {
		o.FarClip = math.Max(def.FarClip, o.NearClip*2)
	}
	if o.ScreenPercentage <= 0 {
		o.ScreenPercentage = 1
	}
	o.SetControllerScanInterval(o.ControllerScanInterval)
	return o
}
