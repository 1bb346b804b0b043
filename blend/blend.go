// Package blend declares the blend modes of the engine and the WGSL
// snippet bodies the webgpu backend splices into its fragment shaders.
//
// The snippets are data, not logic: each body computes `blended` from a
// premultiplied source `src` and backdrop `dst` (both vec4<f32>) and is
// inserted verbatim into the pipeline template by backend/webgpu.
// Formulas follow the W3C Compositing and Blending Level 1
// specification.
package blend

// Mode identifies a blend mode.
type Mode int

// Blend modes. Normal is hardware-blendable; the remaining modes need a
// backdrop sample and run through the snippet pipeline.
const (
	Normal Mode = iota
	Add
	Multiply
	Screen
	Overlay
	Darken
	Lighten
	ColorDodge
	ColorBurn
	HardLight
	SoftLight
	Difference
	Exclusion
)

// String returns the canonical lower-case name of the mode.
func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return "unknown"
}

var modeNames = []string{
	"normal",
	"add",
	"multiply",
	"screen",
	"overlay",
	"darken",
	"lighten",
	"color-dodge",
	"color-burn",
	"hard-light",
	"soft-light",
	"difference",
	"exclusion",
}

// Advanced reports whether the mode needs a backdrop sample (i.e. it
// cannot be expressed as fixed-function hardware blending).
func (m Mode) Advanced() bool {
	return m != Normal
}

// WGSL returns the WGSL snippet body for the mode. The empty string is
// returned for modes handled by fixed-function blending.
func (m Mode) WGSL() string {
	return wgslSnippets[m]
}

// wgslSnippets holds the per-mode WGSL bodies. Inputs `src` and `dst`
// are premultiplied vec4<f32>; the snippet assigns `blended`.
var wgslSnippets = map[Mode]string{
	Add: `
    blended = vec4<f32>(src.rgb + dst.rgb, src.a);
`,
	Multiply: `
    blended = vec4<f32>(src.rgb * dst.rgb, src.a);
`,
	Screen: `
    blended = vec4<f32>(src.rgb + dst.rgb - src.rgb * dst.rgb, src.a);
`,
	Overlay: `
    let lo = 2.0 * src.rgb * dst.rgb;
    let hi = vec3<f32>(1.0) - 2.0 * (vec3<f32>(1.0) - src.rgb) * (vec3<f32>(1.0) - dst.rgb);
    blended = vec4<f32>(select(hi, lo, dst.rgb <= vec3<f32>(0.5)), src.a);
`,
	Darken: `
    blended = vec4<f32>(min(src.rgb, dst.rgb), src.a);
`,
	Lighten: `
    blended = vec4<f32>(max(src.rgb, dst.rgb), src.a);
`,
	ColorDodge: `
    let safe = min(vec3<f32>(1.0), dst.rgb / max(vec3<f32>(1e-6), vec3<f32>(1.0) - src.rgb));
    blended = vec4<f32>(select(safe, vec3<f32>(0.0), dst.rgb <= vec3<f32>(0.0)), src.a);
`,
	ColorBurn: `
    let safe = vec3<f32>(1.0) - min(vec3<f32>(1.0), (vec3<f32>(1.0) - dst.rgb) / max(vec3<f32>(1e-6), src.rgb));
    blended = vec4<f32>(select(safe, vec3<f32>(1.0), dst.rgb >= vec3<f32>(1.0)), src.a);
`,
	HardLight: `
    let lo = 2.0 * src.rgb * dst.rgb;
    let hi = vec3<f32>(1.0) - 2.0 * (vec3<f32>(1.0) - src.rgb) * (vec3<f32>(1.0) - dst.rgb);
    blended = vec4<f32>(select(hi, lo, src.rgb <= vec3<f32>(0.5)), src.a);
`,
	SoftLight: `
    let d = select(sqrt(dst.rgb), ((16.0 * dst.rgb - 12.0) * dst.rgb + 4.0) * dst.rgb, dst.rgb <= vec3<f32>(0.25));
    let lo = dst.rgb - (vec3<f32>(1.0) - 2.0 * src.rgb) * dst.rgb * (vec3<f32>(1.0) - dst.rgb);
    let hi = dst.rgb + (2.0 * src.rgb - vec3<f32>(1.0)) * (d - dst.rgb);
    blended = vec4<f32>(select(hi, lo, src.rgb <= vec3<f32>(0.5)), src.a);
`,
	Difference: `
    blended = vec4<f32>(abs(src.rgb - dst.rgb), src.a);
`,
	Exclusion: `
    blended = vec4<f32>(src.rgb + dst.rgb - 2.0 * src.rgb * dst.rgb, src.a);
`,
}

// Modes returns all declared modes in declaration order.
func Modes() []Mode {
	out := make([]Mode, len(modeNames))
	for i := range out {
		out[i] = Mode(i)
	}
	return out
}
