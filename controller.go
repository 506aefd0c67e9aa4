package willowvr

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// ControllerType is the device-type identity of a controller. A session holds
// at most one controller per type.
type ControllerType uint32

const (
	ControllerLeft        ControllerType = 0x00000001
	ControllerRight       ControllerType = 0x00000002
	ControllerRemote      ControllerType = 0x00000004
	ControllerXbox        ControllerType = 0x00000008
	ControllerCustomStart ControllerType = 0x00001000
	ControllerUnknown     ControllerType = 0xFFFFFFFF
)

func (t ControllerType) String() string {
	switch t {
	case ControllerLeft:
		return "left"
	case ControllerRight:
		return "right"
	case ControllerRemote:
		return "remote"
	case ControllerXbox:
		return "xbox"
	case ControllerUnknown:
		return "unknown"
	}
	return fmt.Sprintf("custom(0x%x)", uint32(t))
}

// ButtonSpec declares one button of a controller. Mask is the raw bit
// pattern the driver reports while the button is pressed.
type ButtonSpec struct {
	ID   ButtonID
	Name string
	Mask uint64
}

// TriggerSpec declares one analog trigger and the raw range mapped onto [0, 1].
type TriggerSpec struct {
	ID       TriggerID
	Name     string
	MinLimit float64
	MaxLimit float64
}

// AxisSpec declares one two-dimensional analog input.
type AxisSpec struct {
	ID   AxisID
	Name string
}

// ControllerSpec fixes the composition of a controller at construction.
type ControllerSpec struct {
	Type     ControllerType
	Name     string
	Buttons  []ButtonSpec
	Triggers []TriggerSpec
	Axes     []AxisSpec
	// InputRay is true for 6-DOF devices that can point.
	InputRay bool
}

// Controller is one physical input device. Its buttons, triggers, and axes
// are fixed at construction; their state is driven by the backend through
// the Process methods.
type Controller struct {
	session  *Session
	api      Api
	typ      ControllerType
	name     string
	buttons  []*Button
	triggers []*Trigger
	axes     []*Axis

	hasInputRay      bool
	inputRay         Ray
	deviceToTracking mgl64.Mat4
	trackingToDevice mgl64.Mat4
	poseValid        bool

	// deviceIndex is the backend's handle for the physical device.
	deviceIndex int
}

// NewController builds a controller from spec. s may be nil for a detached
// controller that emits no events.
func NewController(s *Session, api Api, spec ControllerSpec) *Controller {
	c := &Controller{
		session:          s,
		api:              api,
		typ:              spec.Type,
		name:             spec.Name,
		hasInputRay:      spec.InputRay,
		deviceToTracking: identity,
		trackingToDevice: identity,
		buttons:          make([]*Button, 0, len(spec.Buttons)),
		triggers:         make([]*Trigger, 0, len(spec.Triggers)),
		axes:             make([]*Axis, 0, len(spec.Axes)),
	}
	for _, b := range spec.Buttons {
		c.buttons = append(c.buttons, &Button{controller: c, id: b.ID, name: b.Name, mask: b.Mask})
	}
	for _, t := range spec.Triggers {
		c.triggers = append(c.triggers, &Trigger{controller: c, id: t.ID, name: t.Name, minLimit: t.MinLimit, maxLimit: t.MaxLimit})
	}
	for _, a := range spec.Axes {
		c.axes = append(c.axes, &Axis{controller: c, id: a.ID, name: a.Name})
	}
	return c
}

// Type returns the device-type identity.
func (c *Controller) Type() ControllerType { return c.typ }

// Api returns the runtime that created the controller.
func (c *Controller) Api() Api { return c.api }

// Name returns the display name.
func (c *Controller) Name() string { return c.name }

// Session returns the owning session, or nil for a detached controller.
func (c *Controller) Session() *Session { return c.session }

// Buttons returns the buttons in declaration order.
func (c *Controller) Buttons() []*Button { return c.buttons }

// Triggers returns the triggers in declaration order.
func (c *Controller) Triggers() []*Trigger { return c.triggers }

// Axes returns the axes in declaration order.
func (c *Controller) Axes() []*Axis { return c.axes }

// Button returns the button with the given id, or nil.
func (c *Controller) Button(id ButtonID) *Button {
	for _, b := range c.buttons {
		if b.id == id {
			return b
		}
	}
	return nil
}

// Trigger returns the trigger with the given id, or nil. TriggerAny returns
// the first trigger.
func (c *Controller) Trigger(id TriggerID) *Trigger {
	if id == TriggerAny {
		if len(c.triggers) > 0 {
			return c.triggers[0]
		}
		return nil
	}
	for _, t := range c.triggers {
		if t.id == id {
			return t
		}
	}
	return nil
}

// Axis returns the axis with the given id, or nil. AxisAny returns the first
// axis.
func (c *Controller) Axis(id AxisID) *Axis {
	if id == AxisAny {
		if len(c.axes) > 0 {
			return c.axes[0]
		}
		return nil
	}
	for _, a := range c.axes {
		if a.id == id {
			return a
		}
	}
	return nil
}

// ButtonName returns the display name of a button, or "" when absent.
func (c *Controller) ButtonName(id ButtonID) string {
	if b := c.Button(id); b != nil {
		return b.name
	}
	return ""
}

// TriggerName returns the display name of a trigger, or "" when absent.
func (c *Controller) TriggerName(id TriggerID) string {
	if t := c.Trigger(id); t != nil {
		return t.name
	}
	return ""
}

// AxisName returns the display name of an axis, or "" when absent.
func (c *Controller) AxisName(id AxisID) string {
	if a := c.Axis(id); a != nil {
		return a.name
	}
	return ""
}

// ProcessButtons decodes a raw pressed mask in two passes: every button whose
// mask is present goes down, then every known button whose mask is absent
// goes up. Buttons the device never reported stay Unknown.
func (c *Controller) ProcessButtons(pressed uint64) {
	for _, b := range c.buttons {
		if b.mask != 0 && pressed&b.mask == b.mask {
			b.setState(StateDown)
		}
	}
	for _, b := range c.buttons {
		if b.state == StateUnknown {
			continue
		}
		if b.mask == 0 || pressed&b.mask != b.mask {
			b.setState(StateUp)
		}
	}
}

// ProcessTrigger feeds a raw sample to the trigger with the given id.
// Unknown ids are ignored.
func (c *Controller) ProcessTrigger(id TriggerID, raw float64) {
	if t := c.Trigger(id); t != nil {
		t.setValue(raw)
	}
}

// ProcessAxis feeds a sample to the axis with the given id. Unknown ids are
// ignored.
func (c *Controller) ProcessAxis(id AxisID, v mgl64.Vec2) {
	if a := c.Axis(id); a != nil {
		a.setValue(v)
	}
}

// ProcessPose stores the device-to-tracking matrix for this frame and, for
// pointing devices, recomputes the input ray with the same composition the
// head uses.
func (c *Controller) ProcessPose(invLook, invOrigin, deviceToTracking mgl64.Mat4) {
	c.deviceToTracking = deviceToTracking
	c.trackingToDevice = affineInverse(deviceToTracking)
	c.poseValid = true
	if c.hasInputRay {
		c.inputRay = rayFrom(invLook, invOrigin, deviceToTracking)
	}
}

// HasInputRay reports whether the controller can point.
func (c *Controller) HasInputRay() bool { return c.hasInputRay }

// InputRay returns the pointing ray in world space. Controllers that cannot
// point return the empty ray.
func (c *Controller) InputRay() Ray {
	if !c.hasInputRay {
		return Ray{}
	}
	return c.inputRay
}

// DeviceToTracking returns the last valid device-to-tracking matrix.
func (c *Controller) DeviceToTracking() mgl64.Mat4 { return c.deviceToTracking }

// TrackingToDevice returns the inverse of DeviceToTracking.
func (c *Controller) TrackingToDevice() mgl64.Mat4 { return c.trackingToDevice }

// PoseValid reports whether a valid pose has been received.
func (c *Controller) PoseValid() bool { return c.poseValid }

func (c *Controller) emitButton(b *Button) {
	if c.session != nil {
		c.session.emitButton(b)
	}
}

func (c *Controller) emitTrigger(t *Trigger) {
	if c.session != nil {
		c.session.emitTrigger(t)
	}
}

func (c *Controller) emitAxis(a *Axis) {
	if c.session != nil {
		c.session.emitAxis(a)
	}
}
