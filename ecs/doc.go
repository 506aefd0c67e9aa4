// Package ecs provides ECS adapters for willowvr's controller events.
//
// The primary adapter is [NewDonburiSink], which bridges controller events
// (connect, disconnect, button, trigger, axis) into a [Donburi] world as
// typed events. Subscribe to [ControllerEventType] in your ECS systems to
// receive them.
//
// Usage:
//
//	sink := ecs.NewDonburiSink(world)
//	session.SetEventSink(sink)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
