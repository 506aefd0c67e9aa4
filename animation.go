package willowvr

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// LookAtTween animates the look-at position of an Hmd. The session advances
// it from Update; Done is set once the target is reached or the animation
// is replaced by SetLookAt or another tween.
type LookAtTween struct {
	tweens [3]*gween.Tween
	Done   bool
}

// update advances the tween by dt seconds and applies the look position.
// Returns true when finished.
func (g *LookAtTween) update(h *Hmd, dt float32) bool {
	if g.Done {
		return true
	}
	var p mgl64.Vec3
	allDone := true
	for i, tw := range g.tweens {
		val, finished := tw.Update(dt)
		p[i] = float64(val)
		if !finished {
			allDone = false
		}
	}
	h.setLookPos(p)
	g.Done = allDone
	return allDone
}

// TweenLookAt animates the viewer to position over duration seconds. It is
// the animated form of SetLookAt and replaces any running look-at tween.
func (h *Hmd) TweenLookAt(position mgl64.Vec3, duration float32, fn ease.TweenFunc) *LookAtTween {
	if h.lookTween != nil {
		h.lookTween.Done = true
	}
	if fn == nil {
		fn = ease.Linear
	}
	to := position.Add(mgl64.Vec3{0, 0, h.originOffset[2]})
	g := &LookAtTween{}
	for i := range g.tweens {
		g.tweens[i] = gween.New(float32(h.lookPos[i]), float32(to[i]), duration, fn)
	}
	h.lookTween = g
	return g
}
