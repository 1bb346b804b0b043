package stage

import (
	"math"
	"testing"
)

const epsilon = 1e-10

// near reports whether two coordinates match within floating-point
// tolerance.
func near(gx, gy, wx, wy float64) bool {
	return math.Abs(gx-wx) <= epsilon && math.Abs(gy-wy) <= epsilon
}

// TestIdentity verifies the identity transform.
func TestIdentity(t *testing.T) {
	m := Identity()
	if x, y := m.Apply(3, 7); x != 3 || y != 7 {
		t.Errorf("Identity().Apply(3, 7) = (%v, %v), want (3, 7)", x, y)
	}
}

// TestTranslateScale verifies basic constructors compose as expected.
func TestTranslateScale(t *testing.T) {
	m := Translate(10, 20).Mul(Scale(2, 3))
	if x, y := m.Apply(1, 1); x != 12 || y != 23 {
		t.Errorf("Apply(1, 1) = (%v, %v), want (12, 23)", x, y)
	}
}

// TestOrtho verifies the NDC mapping in both Y orientations.
func TestOrtho(t *testing.T) {
	tests := []struct {
		name  string
		flipY bool
		x, y  float64
		wantX float64
		wantY float64
	}{
		{"upward origin", false, 0, 0, -1, -1},
		{"upward extent", false, 200, 100, 1, 1},
		{"flipped origin", true, 0, 0, -1, 1},
		{"flipped extent", true, 200, 100, 1, -1},
	}
	for _, tt := range tests {
		m := Ortho(0, 0, 200, 100, tt.flipY)
		gx, gy := m.Apply(tt.x, tt.y)
		if !near(gx, gy, tt.wantX, tt.wantY) {
			t.Errorf("%s: Apply(%v, %v) = (%v, %v), want (%v, %v)",
				tt.name, tt.x, tt.y, gx, gy, tt.wantX, tt.wantY)
		}
	}
}

// TestOrthoOffset verifies that a nonzero viewport origin shifts the
// mapping.
func TestOrthoOffset(t *testing.T) {
	m := Ortho(10, 10, 100, 100, false)
	if gx, gy := m.Apply(10, 10); !near(gx, gy, -1, -1) {
		t.Errorf("Apply(10, 10) = (%v, %v), want (-1, -1)", gx, gy)
	}
	if gx, gy := m.Apply(110, 110); !near(gx, gy, 1, 1) {
		t.Errorf("Apply(110, 110) = (%v, %v), want (1, 1)", gx, gy)
	}
}
