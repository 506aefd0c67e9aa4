package willowvr

import (
	"math"
	"testing"
)

func TestPerpendicular(t *testing.T) {
	tests := []struct {
		name           string
		x0, y0, x1, y1 float64
		wantX, wantY   float64
	}{
		{"rightward", 0, 0, 10, 0, 0, 1},
		{"downward", 0, 0, 0, 5, -1, 0},
		{"leftward", 3, 3, 1, 3, 0, -1},
		{"diagonal", 0, 0, 1, 1, -math.Sqrt2 / 2, math.Sqrt2 / 2},
		{"degenerate", 4, 4, 4, 4, 0, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			px, py := perpendicular(tt.x0, tt.y0, tt.x1, tt.y1)
			if !approxEqual(px, tt.wantX, epsilon) || !approxEqual(py, tt.wantY, epsilon) {
				t.Errorf("perpendicular = (%v, %v), want (%v, %v)", px, py, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestDrawGridRejectsBadSize(t *testing.T) {
	lineScratch.Reset()
	v := EyeView{View: identity, Projection: identity, Model: identity}
	DrawGrid(nil, v, 0, 1, axisColorX)
	DrawGrid(nil, v, 4, -1, axisColorX)
	if lineScratch.Len() != 0 {
		t.Errorf("Len = %d, want 0", lineScratch.Len())
	}
}
