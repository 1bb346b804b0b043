// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"math"
	"testing"

	"github.com/gogpu/stage"
)

const projEpsilon = 1e-10

// nearNDC reports whether a projected point matches within
// floating-point tolerance.
func nearNDC(gx, gy, wx, wy float64) bool {
	return math.Abs(gx-wx) <= projEpsilon && math.Abs(gy-wy) <= projEpsilon
}

// TestNewRenderTargetRequiresAttachment verifies the construction
// contract.
func TestNewRenderTargetRequiresAttachment(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("target with no color textures did not panic")
		}
	}()
	NewRenderTarget(TargetOptions{})
}

// TestTargetUIDsUnique verifies identifier allocation.
func TestTargetUIDsUnique(t *testing.T) {
	a := NewRenderTarget(TargetOptions{
		ColorTextures: []*stage.Texture{stage.NewTexture(newSource(8, 8, false))},
	})
	b := NewRenderTarget(TargetOptions{
		ColorTextures: []*stage.Texture{stage.NewTexture(newSource(8, 8, false))},
	})
	if a.UID() == b.UID() {
		t.Errorf("two targets share uid %d", a.UID())
	}
}

// TestTargetFollowsSource verifies that dimensions are always read live
// from the first color attachment.
func TestTargetFollowsSource(t *testing.T) {
	src := stage.NewTextureSource(stage.SourceOptions{
		Width: 100, Height: 50, Resolution: 2,
	})
	rt := NewRenderTarget(TargetOptions{
		ColorTextures: []*stage.Texture{stage.NewTexture(src)},
	})

	if rt.Width() != 100 || rt.Height() != 50 {
		t.Errorf("size = %dx%d, want 100x50", rt.Width(), rt.Height())
	}
	if rt.PixelWidth() != 200 || rt.PixelHeight() != 100 {
		t.Errorf("pixel size = %dx%d, want 200x100", rt.PixelWidth(), rt.PixelHeight())
	}

	src.Width = 300
	if rt.Width() != 300 {
		t.Errorf("Width() after source change = %d, want 300", rt.Width())
	}
	if rt.Resolution() != 2 {
		t.Errorf("Resolution() = %v, want 2", rt.Resolution())
	}
}

// TestProjectionTextureTarget verifies the orthographic mapping of a
// texture-backed target: Y stays upward so sampled results are not
// mirrored.
func TestProjectionTextureTarget(t *testing.T) {
	rt := NewRenderTarget(TargetOptions{
		ColorTextures: []*stage.Texture{stage.NewTexture(newSource(100, 100, false))},
	})
	m := rt.Projection()

	checks := []struct {
		x, y  float64
		wantX float64
		wantY float64
	}{
		{0, 0, -1, -1},
		{100, 100, 1, 1},
		{50, 50, 0, 0},
	}
	for _, c := range checks {
		gx, gy := m.Apply(c.x, c.y)
		if !nearNDC(gx, gy, c.wantX, c.wantY) {
			t.Errorf("Apply(%v, %v) = (%v, %v), want (%v, %v)",
				c.x, c.y, gx, gy, c.wantX, c.wantY)
		}
	}
}

// TestProjectionWindowTarget verifies that window-backed targets flip Y.
func TestProjectionWindowTarget(t *testing.T) {
	src := stage.NewTextureSource(stage.SourceOptions{
		Width: 100, Height: 100, Canvas: &fakeCanvas{w: 100, h: 100},
	})
	rt := NewRenderTarget(TargetOptions{
		ColorTextures: []*stage.Texture{stage.NewTexture(src)},
		IsRoot:        true,
	})
	m := rt.Projection()

	if gx, gy := m.Apply(0, 0); !nearNDC(gx, gy, -1, 1) {
		t.Errorf("Apply(0, 0) = (%v, %v), want (-1, 1)", gx, gy)
	}
	if gx, gy := m.Apply(100, 100); !nearNDC(gx, gy, 1, -1) {
		t.Errorf("Apply(100, 100) = (%v, %v), want (1, -1)", gx, gy)
	}
}

// TestProjectionTracksResize verifies the projection cache rebuilds when
// the target size changes.
func TestProjectionTracksResize(t *testing.T) {
	src := newSource(100, 100, false)
	rt := NewRenderTarget(TargetOptions{
		ColorTextures: []*stage.Texture{stage.NewTexture(src)},
	})

	first := rt.Projection()
	src.Width = 200
	second := rt.Projection()

	if first == second {
		t.Error("projection did not rebuild after resize")
	}
	if gx, _ := second.Apply(200, 0); math.Abs(gx-1) > projEpsilon {
		t.Errorf("Apply(200, 0).x = %v, want 1", gx)
	}
}
