package stage

// Matrix represents a 2D affine transformation matrix.
// It uses a 2x3 matrix in row-major order:
//
//	| a  b  c |
//	| d  e  f |
//
// This represents the transformation:
//
//	x' = a*x + b*y + c
//	y' = d*x + e*y + f
type Matrix struct {
	A, B, C float64
	D, E, F float64
}

// Identity returns the identity transformation matrix.
func Identity() Matrix {
	return Matrix{
		A: 1, B: 0, C: 0,
		D: 0, E: 1, F: 0,
	}
}

// Translate creates a translation matrix.
func Translate(x, y float64) Matrix {
	return Matrix{
		A: 1, B: 0, C: x,
		D: 0, E: 1, F: y,
	}
}

// Scale creates a scaling matrix.
func Scale(x, y float64) Matrix {
	return Matrix{
		A: x, B: 0, C: 0,
		D: 0, E: y, F: 0,
	}
}

// Ortho returns the orthographic projection matrix mapping the rectangle
// (x, y, width, height) onto normalized device coordinates [-1, 1].
// When flipY is true the Y axis points downward in NDC, which is what
// window-backed targets need; texture-backed targets keep Y upward.
func Ortho(x, y, width, height float64, flipY bool) Matrix {
	a := 1 / width * 2
	d := 1 / height * 2
	ty := -1 - y*d
	if flipY {
		d = -d
		ty = 1 - y*d
	}
	return Matrix{
		A: a, B: 0, C: -1 - x*a,
		D: 0, E: d, F: ty,
	}
}

// Mul returns the matrix product m * other.
func (m Matrix) Mul(other Matrix) Matrix {
	return Matrix{
		A: m.A*other.A + m.B*other.D,
		B: m.A*other.B + m.B*other.E,
		C: m.A*other.C + m.B*other.F + m.C,
		D: m.D*other.A + m.E*other.D,
		E: m.D*other.B + m.E*other.E,
		F: m.D*other.C + m.E*other.F + m.F,
	}
}

// Apply transforms the point (x, y) by the matrix.
func (m Matrix) Apply(x, y float64) (float64, float64) {
	return m.A*x + m.B*y + m.C, m.D*x + m.E*y + m.F
}
