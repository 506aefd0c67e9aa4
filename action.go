package willowvr

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ButtonID identifies a button on a controller. Generic ids are bit values;
// vendor aliases below map physical labels onto them.
type ButtonID uint32

const (
	Button1  ButtonID = 1 << iota
	Button2
	Button3
	Button4
	Button5
	Button6
	Button7
	Button8
	Button9
	Button10
	Button11
	Button12
	Button13
	Button14
	Button15
	Button16
)

const (
	ButtonDpadLeft  ButtonID = 0x00010000
	ButtonDpadUp    ButtonID = 0x00020000
	ButtonDpadRight ButtonID = 0x00040000
	ButtonDpadDown  ButtonID = 0x00080000
	ButtonAppMenu   ButtonID = 0x00100000
	ButtonSystem    ButtonID = 0x00200000
	ButtonAny       ButtonID = 0x7FFFFFFF
	ButtonUnknown   ButtonID = 0xFFFFFFFF
)

// Remote buttons.
const (
	ButtonRemoteEnter = Button1
	ButtonRemoteBack  = Button2
)

// Xbox gamepad buttons.
const (
	ButtonXboxA         = Button1
	ButtonXboxB         = Button2
	ButtonXboxX         = Button3
	ButtonXboxY         = Button4
	ButtonXboxLThumb    = Button5
	ButtonXboxRThumb    = Button6
	ButtonXboxLShoulder = Button7
	ButtonXboxRShoulder = Button8
	ButtonXboxEnter     = Button9
	ButtonXboxMenu      = Button9
	ButtonXboxBack      = Button10
	ButtonXboxView      = Button10
	ButtonXboxHome      = Button11
)

// Touch hand-controller buttons.
const (
	ButtonTouchA      = Button1
	ButtonTouchB      = Button2
	ButtonTouchX      = Button3
	ButtonTouchY      = Button4
	ButtonTouchLThumb = Button5
	ButtonTouchRThumb = Button6
	ButtonTouchEnter  = Button9
)

// Vive hand-controller buttons.
const (
	ButtonViveAppMenu  = Button1
	ButtonViveGrip     = Button2
	ButtonViveTouchpad = Button3
	ButtonViveTrigger  = Button4
)

// TriggerID identifies an analog trigger on a controller.
type TriggerID uint32

const (
	Trigger1 TriggerID = 1 << iota
	Trigger2
	Trigger3
	Trigger4
	Trigger5
	Trigger6
	Trigger7
	Trigger8

	TriggerAny     TriggerID = 0x7FFFFFFF
	TriggerUnknown TriggerID = 0xFFFFFFFF
)

const (
	TriggerXboxLeft        = Trigger1
	TriggerXboxRight       = Trigger2
	TriggerTouchLeftIndex  = Trigger1
	TriggerTouchLeftHand   = Trigger2
	TriggerTouchRightIndex = Trigger3
	TriggerTouchRightHand  = Trigger4
	TriggerViveLeft        = Trigger1
	TriggerViveRight       = Trigger2
)

// AxisID identifies a two-dimensional analog input (thumbstick, touchpad).
type AxisID uint32

const (
	Axis1 AxisID = 1 << iota
	Axis2
	Axis3
	Axis4
	Axis5
	Axis6
	Axis7
	Axis8

	AxisAny     AxisID = 0x7FFFFFFF
	AxisUnknown AxisID = 0xFFFFFFFF
)

const (
	AxisXboxLThumb  = Axis1
	AxisXboxRThumb  = Axis2
	AxisTouchLThumb = Axis1
	AxisTouchRThumb = Axis2
	AxisViveLeft    = Axis1
	AxisViveRight   = Axis2
)

// State is the debounced state of a button. A button that has never been
// reported by the device is Unknown.
type State uint8

const (
	StateUnknown State = iota
	StateDown
	StateUp
)

func (s State) String() string {
	switch s {
	case StateDown:
		return "DOWN"
	case StateUp:
		return "UP"
	}
	return "UNKNOWN"
}

// --- Button ---

// Button is a two-state input. Changing state emits exactly one button down
// or button up event on the owning session.
type Button struct {
	controller *Controller
	id         ButtonID
	name       string
	mask       uint64
	state      State
}

// ID returns the button id.
func (b *Button) ID() ButtonID { return b.id }

// Name returns the display name.
func (b *Button) Name() string { return b.name }

// State returns the current state.
func (b *Button) State() State { return b.state }

// IsDown reports whether the button is held.
func (b *Button) IsDown() bool { return b.state == StateDown }

// Controller returns the owning controller.
func (b *Button) Controller() *Controller { return b.controller }

// Info returns a one-line description for logs and overlays.
func (b *Button) Info() string {
	return fmt.Sprintf("Name: %s, State: %s", b.name, b.state)
}

func (b *Button) setState(s State) {
	if b.state == s {
		return
	}
	b.state = s
	if b.controller != nil {
		b.controller.emitButton(b)
	}
}

// --- Trigger ---

// Trigger is a one-dimensional analog input remapped from the device's
// [Min, Max] range into [0, 1].
type Trigger struct {
	controller *Controller
	id         TriggerID
	name       string
	minLimit   float64
	maxLimit   float64
	value      float64
}

// ID returns the trigger id.
func (t *Trigger) ID() TriggerID { return t.id }

// Name returns the display name.
func (t *Trigger) Name() string { return t.name }

// Value returns the normalized value in [0, 1].
func (t *Trigger) Value() float64 { return t.value }

// Limits returns the raw range mapped onto [0, 1].
func (t *Trigger) Limits() (minLimit, maxLimit float64) { return t.minLimit, t.maxLimit }

// Controller returns the owning controller.
func (t *Trigger) Controller() *Controller { return t.controller }

// Info returns a one-line description for logs and overlays.
func (t *Trigger) Info() string {
	return fmt.Sprintf("Name: %s, Value: %g", t.name, t.value)
}

// normalize clamps raw into the trigger limits and maps it onto [0, 1].
func (t *Trigger) normalize(raw float64) float64 {
	span := t.maxLimit - t.minLimit
	if span <= 0 {
		return 0
	}
	clamped := math.Max(t.minLimit, math.Min(raw, t.maxLimit))
	return (clamped - t.minLimit) / span
}

// setValue stores a raw sample. NaN samples are dropped.
func (t *Trigger) setValue(raw float64) {
	if math.IsNaN(raw) {
		return
	}
	v := t.normalize(raw)
	if v == t.value {
		return
	}
	t.value = v
	if t.controller != nil {
		t.controller.emitTrigger(t)
	}
}

// --- Axis ---

// Axis is a two-dimensional analog input. Values are stored as reported;
// no deadzone is applied.
type Axis struct {
	controller *Controller
	id         AxisID
	name       string
	value      mgl64.Vec2
}

// ID returns the axis id.
func (a *Axis) ID() AxisID { return a.id }

// Name returns the display name.
func (a *Axis) Name() string { return a.name }

// Value returns the current value.
func (a *Axis) Value() mgl64.Vec2 { return a.value }

// Controller returns the owning controller.
func (a *Axis) Controller() *Controller { return a.controller }

// Info returns a one-line description for logs and overlays.
func (a *Axis) Info() string {
	return fmt.Sprintf("Name: %s, Value: (%g, %g)", a.name, a.value[0], a.value[1])
}

// setValue stores a sample. Samples with a non-finite component are
// dropped.
func (a *Axis) setValue(v mgl64.Vec2) {
	if !isFinite(v[0]) || !isFinite(v[1]) {
		return
	}
	if v.Sub(a.value).Len() <= 0 {
		return
	}
	a.value = v
	if a.controller != nil {
		a.controller.emitAxis(a)
	}
}

func isFinite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
