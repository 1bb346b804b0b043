package blend

import (
	"strings"
	"testing"
)

// TestModeString verifies canonical names.
func TestModeString(t *testing.T) {
	tests := []struct {
		mode Mode
		want string
	}{
		{Normal, "normal"},
		{Add, "add"},
		{ColorDodge, "color-dodge"},
		{Exclusion, "exclusion"},
		{Mode(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.mode.String(); got != tt.want {
			t.Errorf("Mode(%d).String() = %q, want %q", tt.mode, got, tt.want)
		}
	}
}

// TestAdvanced verifies that every mode except Normal needs the
// backdrop pipeline.
func TestAdvanced(t *testing.T) {
	if Normal.Advanced() {
		t.Error("Normal.Advanced() = true, want false")
	}
	for _, m := range Modes() {
		if m == Normal {
			continue
		}
		if !m.Advanced() {
			t.Errorf("%s.Advanced() = false, want true", m)
		}
	}
}

// TestWGSLSnippets verifies every advanced mode carries a snippet that
// assigns the blended result.
func TestWGSLSnippets(t *testing.T) {
	for _, m := range Modes() {
		snippet := m.WGSL()
		if !m.Advanced() {
			if snippet != "" {
				t.Errorf("%s.WGSL() = %q, want empty for fixed-function mode", m, snippet)
			}
			continue
		}
		if snippet == "" {
			t.Errorf("%s.WGSL() is empty", m)
			continue
		}
		if !strings.Contains(snippet, "blended =") {
			t.Errorf("%s.WGSL() does not assign blended", m)
		}
	}
}

// TestModesOrder verifies declaration order and count.
func TestModesOrder(t *testing.T) {
	modes := Modes()
	if len(modes) != len(modeNames) {
		t.Fatalf("Modes() returned %d modes, want %d", len(modes), len(modeNames))
	}
	if modes[0] != Normal {
		t.Errorf("Modes()[0] = %v, want Normal", modes[0])
	}
	for i, m := range modes {
		if int(m) != i {
			t.Errorf("Modes()[%d] = %v, want %v", i, m, Mode(i))
		}
	}
}
