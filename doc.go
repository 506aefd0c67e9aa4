// Package willowvr is a VR headset and controller abstraction for
// [Ebitengine].
//
// It hides the differences between Oculus-style runtimes (bitmask
// controller input, a single eye-fov layer) and OpenVR-style runtimes
// (per-device pose arrays, an event queue, per-eye submission) behind one
// session model: a headset with per-eye cameras and a pointing ray, and a
// set of controllers whose buttons, triggers, and axes emit change events.
//
// # Quick start
//
// Register a backend, begin a session, and hand it to [Run]:
//
//	reg := willowvr.NewRegistry()
//	reg.Register(willowvr.ApiSimulator, willowvr.NewSimBackend(), true)
//	defer reg.Close()
//
//	s, err := reg.BeginSession(willowvr.DefaultSessionOptions(), willowvr.ApiAny, 0)
//	if err != nil {
//		log.Fatal(err)
//	}
//	willowvr.Run(s, app, willowvr.RunConfig{Title: "My VR App"})
//
// For full control, implement [ebiten.Game] yourself and call
// [Session.Update] from Update, and [Hmd.Bind], [Hmd.EnableEye],
// [Hmd.Unbind], and [Hmd.DrawMirrored] from Draw.
//
// # Coordinate systems
//
// Poses arrive in tracking space. The origin matrix anchors the application
// world in tracking space according to the [OriginMode]; the look matrix
// moves the viewer inside the world. [Hmd.EnableEye] composes the model
// matrix for the requested [CoordSys] so content can be drawn in device,
// tracking, or world coordinates.
//
// # Controllers
//
// Controllers connect and disconnect as the runtime reports them. Subscribe
// with [Session.OnControllerConnected], [Session.OnButtonDown],
// [Session.OnTrigger], and friends; each returns a [CallbackHandle] whose
// Remove method unsubscribes. Events fire only when a value changes.
//
// # Overlays
//
// [DrawGrid], [DrawAxes], [Hmd.DrawControllers], and [DrawLabel3D] draw
// clipped 3D lines and text into an eye target for debugging scenes.
//
// # Simulation
//
// [NewSimBackend] runs a session on the desktop: the keyboard moves the
// head, the mouse and gamepad drive controllers. [SimRuntime] also accepts
// injected input, and [LoadScript] sequences injections and screenshots
// from JSON for automated runs.
//
// # ECS integration
//
// The willowvr/ecs submodule forwards controller events into a [Donburi]
// world through [Session.SetEventSink].
//
// [Ebitengine]: https://ebitengine.org
// [Donburi]: https://github.com/yohamta/donburi
package willowvr
