package math

import "github.com/chewxy/math32"

// Mat4 is a column-major 4x4 matrix, the layout OpenGL and glTF use.
// Element (row r, column c) is at index c*4+r.
type Mat4 [16]float32

// Identity returns the identity matrix.
func Identity() Mat4 {
	return Mat4{0: 1, 5: 1, 10: 1, 15: 1}
}

// Perspective returns an OpenGL projection. fovY is in radians.
func Perspective(fovY, aspect, near, far float32) Mat4 {
	f := 1 / math32.Tan(fovY/2)
	depth := near - far
	return Mat4{
		0:  f / aspect,
		5:  f,
		10: (far + near) / depth,
		11: -1,
		14: 2 * far * near / depth,
	}
}

// Ortho returns an orthographic projection, used for the shadow map.
func Ortho(left, right, bottom, top, near, far float32) Mat4 {
	w, h, d := right-left, top-bottom, far-near
	return Mat4{
		0:  2 / w,
		5:  2 / h,
		10: -2 / d,
		12: -(right + left) / w,
		13: -(top + bottom) / h,
		14: -(far + near) / d,
		15: 1,
	}
}

// LookAt returns the view matrix of an eye looking at center.
func LookAt(eye, center, up Vec3) Mat4 {
	fwd := center.Sub(eye).Normalize()
	side := fwd.Cross(up).Normalize()
	camUp := side.Cross(fwd)

	m := Identity()
	for i, axis := range [3]Vec3{side, camUp, fwd.Scale(-1)} {
		m[0*4+i] = axis.X
		m[1*4+i] = axis.Y
		m[2*4+i] = axis.Z
		m[3*4+i] = -axis.Dot(eye)
	}
	return m
}

// Translate returns a translation matrix.
func Translate(x, y, z float32) Mat4 {
	m := Identity()
	m[12], m[13], m[14] = x, y, z
	return m
}

// Scale returns a scale matrix.
func Scale(x, y, z float32) Mat4 {
	return Mat4{0: x, 5: y, 10: z, 15: 1}
}

// Compose builds T * R * S, the local matrix of a glTF node.
func Compose(t Vec3, r Quat, s Vec3) Mat4 {
	m := r.ToMat4()
	for col, k := range [3]float32{s.X, s.Y, s.Z} {
		for row := 0; row < 3; row++ {
			m[col*4+row] *= k
		}
	}
	m[12], m[13], m[14] = t.X, t.Y, t.Z
	return m
}

// FromFloat64 converts a glTF float64 matrix.
func FromFloat64(src [16]float64) Mat4 {
	var m Mat4
	for i, v := range src {
		m[i] = float32(v)
	}
	return m
}

// Mul returns m * o.
func (m Mat4) Mul(o Mat4) Mat4 {
	var out Mat4
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += m[k*4+r] * o[c*4+k]
			}
			out[c*4+r] = sum
		}
	}
	return out
}

// TransformVec3 transforms a point, dividing by w when it is not 1.
func (m Mat4) TransformVec3(v Vec3) Vec3 {
	p := m.TransformDirection(v).Add(m.Translation())
	w := m[3]*v.X + m[7]*v.Y + m[11]*v.Z + m[15]
	if w != 0 && w != 1 {
		return p.Scale(1 / w)
	}
	return p
}

// TransformDirection transforms a direction, ignoring translation.
func (m Mat4) TransformDirection(d Vec3) Vec3 {
	return Vec3{
		m[0]*d.X + m[4]*d.Y + m[8]*d.Z,
		m[1]*d.X + m[5]*d.Y + m[9]*d.Z,
		m[2]*d.X + m[6]*d.Y + m[10]*d.Z,
	}
}

// Translation returns the translation column.
func (m Mat4) Translation() Vec3 {
	return Vec3{m[12], m[13], m[14]}
}

// Ptr returns a pointer to the first element for glUniformMatrix4fv.
func (m *Mat4) Ptr() *float32 {
	return &m[0]
}

// Inverse returns the inverse by Gauss-Jordan elimination with partial
// pivoting. A singular matrix yields the identity.
func (m Mat4) Inverse() Mat4 {
	a, inv := m, Identity()
	for c := 0; c < 4; c++ {
		p := c
		for r := c + 1; r < 4; r++ {
			if math32.Abs(a[c*4+r]) > math32.Abs(a[c*4+p]) {
				p = r
			}
		}
		if math32.Abs(a[c*4+p]) < 1e-12 {
			return Identity()
		}
		a.swapRows(c, p)
		inv.swapRows(c, p)

		k := 1 / a[c*4+c]
		a.scaleRow(c, k)
		inv.scaleRow(c, k)

		for r := 0; r < 4; r++ {
			if f := a[c*4+r]; r != c && f != 0 {
				a.addRow(r, c, -f)
				inv.addRow(r, c, -f)
			}
		}
	}
	return inv
}

func (m *Mat4) swapRows(i, j int) {
	for c := 0; c < 4; c++ {
		m[c*4+i], m[c*4+j] = m[c*4+j], m[c*4+i]
	}
}

func (m *Mat4) scaleRow(i int, k float32) {
	for c := 0; c < 4; c++ {
		m[c*4+i] *= k
	}
}

// addRow adds k times row src to row dst.
func (m *Mat4) addRow(dst, src int, k float32) {
	for c := 0; c < 4; c++ {
		m[c*4+dst] += k * m[c*4+src]
	}
}
