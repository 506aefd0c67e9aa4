package willowvr

import "github.com/go-gl/mathgl/mgl64"

// EventType identifies a session-level controller event.
type EventType uint8

const (
	EventControllerConnected    EventType = iota // controller added to the session
	EventControllerDisconnected                  // controller about to be removed
	EventButtonDown                              // button went down
	EventButtonUp                                // button went up
	EventTrigger                                 // trigger value changed
	EventAxis                                    // axis value changed
)

func (e EventType) String() string {
	switch e {
	case EventControllerConnected:
		return "connected"
	case EventControllerDisconnected:
		return "disconnected"
	case EventButtonDown:
		return "button-down"
	case EventButtonUp:
		return "button-up"
	case EventTrigger:
		return "trigger"
	case EventAxis:
		return "axis"
	}
	return "unknown"
}

// EventSink receives a copy of every controller event a session emits.
// Set one with Session.SetEventSink to forward events to an ECS or a log.
type EventSink interface {
	EmitEvent(event ControllerEvent)
}

// ControllerEvent is the value form of a session event, for sinks that
// outlive the controller that produced it.
type ControllerEvent struct {
	Type       EventType
	Api        Api
	Controller ControllerType
	Name       string
	// Button fields (valid for EventButtonDown, EventButtonUp)
	Button ButtonID
	State  State
	// Trigger fields (valid for EventTrigger)
	Trigger TriggerID
	Value   float64
	// Axis fields (valid for EventAxis)
	Axis      AxisID
	AxisValue mgl64.Vec2
}

// --- Handler registry ---

type controllerHandler struct {
	id uint32
	fn func(*Controller)
}

type buttonHandler struct {
	id uint32
	fn func(*Button)
}

type triggerHandler struct {
	id uint32
	fn func(*Trigger)
}

type axisHandler struct {
	id uint32
	fn func(*Axis)
}

type handlerRegistry struct {
	connected    []controllerHandler
	disconnected []controllerHandler
	buttonDown   []buttonHandler
	buttonUp     []buttonHandler
	trigger      []triggerHandler
	axis         []axisHandler
	nextID       uint32
}

// CallbackHandle allows removing a registered session-level callback.
type CallbackHandle struct {
	id    uint32
	reg   *handlerRegistry
	event EventType
}

// Remove unregisters this callback so it no longer fires.
func (h CallbackHandle) Remove() {
	if h.reg == nil {
		return
	}
	switch h.event {
	case EventControllerConnected:
		h.reg.connected = removeHandler(h.reg.connected, h.id, func(e controllerHandler) uint32 { return e.id })
	case EventControllerDisconnected:
		h.reg.disconnected = removeHandler(h.reg.disconnected, h.id, func(e controllerHandler) uint32 { return e.id })
	case EventButtonDown:
		h.reg.buttonDown = removeHandler(h.reg.buttonDown, h.id, func(e buttonHandler) uint32 { return e.id })
	case EventButtonUp:
		h.reg.buttonUp = removeHandler(h.reg.buttonUp, h.id, func(e buttonHandler) uint32 { return e.id })
	case EventTrigger:
		h.reg.trigger = removeHandler(h.reg.trigger, h.id, func(e triggerHandler) uint32 { return e.id })
	case EventAxis:
		h.reg.axis = removeHandler(h.reg.axis, h.id, func(e axisHandler) uint32 { return e.id })
	}
}

// removeHandler returns s without the handler id. The result is a new
// slice so a dispatch ranging over s is unaffected.
func removeHandler[T any](s []T, id uint32, idOf func(T) uint32) []T {
	for i := range s {
		if idOf(s[i]) == id {
			out := make([]T, 0, len(s)-1)
			out = append(out, s[:i]...)
			return append(out, s[i+1:]...)
		}
	}
	return s
}

// --- Session-level event registration ---

// OnControllerConnected registers a callback fired after a controller is
// added to the session.
func (s *Session) OnControllerConnected(fn func(*Controller)) CallbackHandle {
	s.handlers.nextID++
	id := s.handlers.nextID
	s.handlers.connected = append(s.handlers.connected, controllerHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &s.handlers, event: EventControllerConnected}
}

// OnControllerDisconnected registers a callback fired before a controller is
// removed from the session.
func (s *Session) OnControllerDisconnected(fn func(*Controller)) CallbackHandle {
	s.handlers.nextID++
	id := s.handlers.nextID
	s.handlers.disconnected = append(s.handlers.disconnected, controllerHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &s.handlers, event: EventControllerDisconnected}
}

// OnButtonDown registers a callback for button down edges on any controller.
func (s *Session) OnButtonDown(fn func(*Button)) CallbackHandle {
	s.handlers.nextID++
	id := s.handlers.nextID
	s.handlers.buttonDown = append(s.handlers.buttonDown, buttonHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &s.handlers, event: EventButtonDown}
}

// OnButtonUp registers a callback for button up edges on any controller.
func (s *Session) OnButtonUp(fn func(*Button)) CallbackHandle {
	s.handlers.nextID++
	id := s.handlers.nextID
	s.handlers.buttonUp = append(s.handlers.buttonUp, buttonHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &s.handlers, event: EventButtonUp}
}

// OnTrigger registers a callback for trigger value changes.
func (s *Session) OnTrigger(fn func(*Trigger)) CallbackHandle {
	s.handlers.nextID++
	id := s.handlers.nextID
	s.handlers.trigger = append(s.handlers.trigger, triggerHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &s.handlers, event: EventTrigger}
}

// OnAxis registers a callback for axis value changes.
func (s *Session) OnAxis(fn func(*Axis)) CallbackHandle {
	s.handlers.nextID++
	id := s.handlers.nextID
	s.handlers.axis = append(s.handlers.axis, axisHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &s.handlers, event: EventAxis}
}

// --- Dispatch ---

func (s *Session) emitConnected(c *Controller) {
	for _, h := range s.handlers.connected {
		h.fn(c)
	}
	s.sink(EventControllerConnected, c, func(ev *ControllerEvent) {})
}

func (s *Session) emitDisconnected(c *Controller) {
	for _, h := range s.handlers.disconnected {
		h.fn(c)
	}
	s.sink(EventControllerDisconnected, c, func(ev *ControllerEvent) {})
}

func (s *Session) emitButton(b *Button) {
	typ := EventButtonUp
	list := s.handlers.buttonUp
	if b.state == StateDown {
		typ = EventButtonDown
		list = s.handlers.buttonDown
	}
	for _, h := range list {
		h.fn(b)
	}
	s.sink(typ, b.controller, func(ev *ControllerEvent) {
		ev.Button = b.id
		ev.State = b.state
	})
}

func (s *Session) emitTrigger(t *Trigger) {
	for _, h := range s.handlers.trigger {
		h.fn(t)
	}
	s.sink(EventTrigger, t.controller, func(ev *ControllerEvent) {
		ev.Trigger = t.id
		ev.Value = t.value
	})
}

func (s *Session) emitAxis(a *Axis) {
	for _, h := range s.handlers.axis {
		h.fn(a)
	}
	s.sink(EventAxis, a.controller, func(ev *ControllerEvent) {
		ev.Axis = a.id
		ev.AxisValue = a.value
	})
}

// sink forwards an event to the session's EventSink, if one is set.
func (s *Session) sink(typ EventType, c *Controller, fill func(*ControllerEvent)) {
	if s.store == nil {
		return
	}
	ev := ControllerEvent{Type: typ}
	if c != nil {
		ev.Api = c.api
		ev.Controller = c.typ
		ev.Name = c.name
	}
	fill(&ev)
	s.store.EmitEvent(ev)
}
