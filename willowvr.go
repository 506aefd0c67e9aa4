package willowvr

import (
	"fmt"
	"strings"
)

// Api identifies a device runtime family. Values are bit flags so a session
// request can name several acceptable runtimes at once.
type Api uint32

const (
	ApiOculus  Api = 0x00000001
	ApiOpenVR  Api = 0x00000002
	ApiAuto    Api = 0x3FFFFFFF // any hardware runtime
	ApiCustom  Api = 0x40000000 // application-provided backends (the simulator lives here)
	ApiAny     Api = 0x7FFFFFFF
	ApiUnknown Api = 0xFFFFFFFF
)

// ApiSimulator is the api the built-in simulator backend registers under.
const ApiSimulator = ApiCustom

// String returns a human-readable api name.
func (a Api) String() string {
	switch a {
	case ApiOculus:
		return "oculus"
	case ApiOpenVR:
		return "openvr"
	case ApiAuto:
		return "auto"
	case ApiCustom:
		return "custom"
	case ApiAny:
		return "any"
	case ApiUnknown:
		return "unknown"
	}
	return fmt.Sprintf("api(0x%x)", uint32(a))
}

// matches reports whether a backend registered under a is acceptable for the
// requested flags.
func (a Api) matches(flags Api) bool {
	return a == flags&a
}

// TrackingOrigin selects the tracking space reported by the device runtime.
type TrackingOrigin uint8

const (
	TrackingOriginDeviceDefault TrackingOrigin = iota + 1 // whatever the runtime prefers
	TrackingOriginSeated                                  // eye level, recentered on demand
	TrackingOriginStanding                                // floor level
)

var trackingOriginNames = map[TrackingOrigin]string{
	TrackingOriginDeviceDefault: "device-default",
	TrackingOriginSeated:        "seated",
	TrackingOriginStanding:      "standing",
}

func (t TrackingOrigin) String() string { return enumString(trackingOriginNames, t) }

// MarshalText implements encoding.TextMarshaler.
func (t TrackingOrigin) MarshalText() ([]byte, error) { return enumMarshal(trackingOriginNames, t) }

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *TrackingOrigin) UnmarshalText(b []byte) error {
	return enumUnmarshal(trackingOriginNames, t, "tracking origin", b)
}

// CoordSys selects which space content drawn into an eye is expressed in.
type CoordSys uint8

const (
	CoordSysNone     CoordSys = iota // model matrix left untouched
	CoordSysDevice                   // locked to the headset
	CoordSysTracking                 // raw tracking space
	CoordSysWorld                    // anchored application world (origin then look)
)

var coordSysNames = map[CoordSys]string{
	CoordSysNone:     "none",
	CoordSysDevice:   "device",
	CoordSysTracking: "tracking",
	CoordSysWorld:    "world",
}

func (c CoordSys) String() string { return enumString(coordSysNames, c) }

// OriginMode selects how the origin matrix anchors the world in tracking space.
type OriginMode uint8

const (
	OriginModeDefault      OriginMode = iota // identity
	OriginModeOffsetted                      // translate by the offset verbatim
	OriginModeHmdOffsetted                   // translate by head depth plus offset
	OriginModeHmdOriented                    // face the head's heading, offset in its frame
)

var originModeNames = map[OriginMode]string{
	OriginModeDefault:      "default",
	OriginModeOffsetted:    "offsetted",
	OriginModeHmdOffsetted: "hmd-offsetted",
	OriginModeHmdOriented:  "hmd-oriented",
}

func (m OriginMode) String() string { return enumString(originModeNames, m) }

// MarshalText implements encoding.TextMarshaler.
func (m OriginMode) MarshalText() ([]byte, error) { return enumMarshal(originModeNames, m) }

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *OriginMode) UnmarshalText(b []byte) error {
	return enumUnmarshal(originModeNames, m, "origin mode", b)
}

// Eye names a render view.
type Eye uint32

const (
	EyeLeft  Eye = 0
	EyeRight Eye = 1
	EyeCount     = 2
	EyeHmd   Eye = 0x7FFFFFFF // combined view used for the desktop mirror
)

func (e Eye) String() string {
	switch e {
	case EyeLeft:
		return "left"
	case EyeRight:
		return "right"
	case EyeHmd:
		return "hmd"
	}
	return fmt.Sprintf("eye(%d)", uint32(e))
}

// MirrorMode selects how the eye buffers are composed into the desktop window.
type MirrorMode uint8

const (
	MirrorModeNone                 MirrorMode = iota // nothing drawn to the window
	MirrorModeStereo                                 // compositor output (distorted) or side by side
	MirrorModeUndistortedStereo                      // both eye buffers side by side
	MirrorModeUndistortedMonoLeft                    // left eye buffer only
	MirrorModeUndistortedMonoRight                   // right eye buffer only
)

var mirrorModeNames = map[MirrorMode]string{
	MirrorModeNone:                 "none",
	MirrorModeStereo:               "stereo",
	MirrorModeUndistortedStereo:    "undistorted-stereo",
	MirrorModeUndistortedMonoLeft:  "undistorted-mono-left",
	MirrorModeUndistortedMonoRight: "undistorted-mono-right",
}

func (m MirrorMode) String() string { return enumString(mirrorModeNames, m) }

// MarshalText implements encoding.TextMarshaler.
func (m MirrorMode) MarshalText() ([]byte, error) { return enumMarshal(mirrorModeNames, m) }

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *MirrorMode) UnmarshalText(b []byte) error {
	return enumUnmarshal(mirrorModeNames, m, "mirror mode", b)
}

// Undistorted reports whether the mode composes the raw eye buffers.
func (m MirrorMode) Undistorted() bool {
	return m >= MirrorModeUndistortedStereo
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Aspect returns Width/Height, or 1 for a degenerate rectangle.
func (r Rect) Aspect() float64 {
	if r.Height <= 0 {
		return 1
	}
	return r.Width / r.Height
}

func enumString[T comparable](names map[T]string, v T) string {
	if s, ok := names[v]; ok {
		return s
	}
	return fmt.Sprintf("%d", any(v))
}

func enumMarshal[T comparable](names map[T]string, v T) ([]byte, error) {
	s, ok := names[v]
	if !ok {
		return nil, fmt.Errorf("marshal: unknown value %d", any(v))
	}
	return []byte(s), nil
}

func enumUnmarshal[T comparable](names map[T]string, dst *T, kind string, b []byte) error {
	want := strings.ToLower(strings.TrimSpace(string(b)))
	want = strings.ReplaceAll(want, "_", "-")
	for v, s := range names {
		if s == want {
			*dst = v
			return nil
		}
	}
	return fmt.Errorf("unknown %s %q", kind, string(b))
}
