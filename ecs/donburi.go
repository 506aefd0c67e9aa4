// Package ecs provides ECS adapters for willowvr.
package ecs

import (
	"github.com/phanxgames/willowvr"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// ControllerEventType is the Donburi event type for willowvr controller events.
// Subscribe to this in your ECS systems to receive connect, button, trigger,
// and axis events.
var ControllerEventType = events.NewEventType[willowvr.ControllerEvent]()

type donburiSink struct {
	world donburi.World
}

// NewDonburiSink creates an EventSink backed by a Donburi world.
// Controller events are published to ControllerEventType and can be
// consumed with events.Subscribe and ProcessEvents.
func NewDonburiSink(world donburi.World) willowvr.EventSink {
	return &donburiSink{world: world}
}

func (s *donburiSink) EmitEvent(event willowvr.ControllerEvent) {
	ControllerEventType.Publish(s.world, event)
}
