package math

import "github.com/chewxy/math32"

// Quat is a rotation quaternion in glTF order: X, Y, Z, then the scalar W.
type Quat struct {
	X, Y, Z, W float32
}

// QuatIdentity returns the rotation that does nothing.
func QuatIdentity() Quat {
	return Quat{W: 1}
}

// QuatFromArray reads a glTF rotation (x, y, z, w).
func QuatFromArray(a [4]float32) Quat {
	return Quat{X: a[0], Y: a[1], Z: a[2], W: a[3]}
}

// QuatFromAxisAngle rotates angle radians around a unit axis.
func QuatFromAxisAngle(axis Vec3, angle float32) Quat {
	sin, cos := math32.Sin(angle/2), math32.Cos(angle/2)
	return Quat{X: axis.X * sin, Y: axis.Y * sin, Z: axis.Z * sin, W: cos}
}

// Array returns the components in glTF order.
func (q Quat) Array() [4]float32 {
	return [4]float32{q.X, q.Y, q.Z, q.W}
}

// Dot returns the 4D dot product.
func (q Quat) Dot(o Quat) float32 {
	return q.X*o.X + q.Y*o.Y + q.Z*o.Z + q.W*o.W
}

func (q Quat) scale(s float32) Quat {
	return Quat{X: q.X * s, Y: q.Y * s, Z: q.Z * s, W: q.W * s}
}

func (q Quat) add(o Quat) Quat {
	return Quat{X: q.X + o.X, Y: q.Y + o.Y, Z: q.Z + o.Z, W: q.W + o.W}
}

// Normalize returns q at unit length. Near-zero input, as produced by
// all-zero animation keys, becomes the identity.
func (q Quat) Normalize() Quat {
	n := math32.Sqrt(q.Dot(q))
	if n < 1e-4 {
		return QuatIdentity()
	}
	return q.scale(1 / n)
}

// Mul returns the rotation q applied after o.
func (q Quat) Mul(o Quat) Quat {
	return Quat{
		X: q.W*o.X + q.X*o.W + q.Y*o.Z - q.Z*o.Y,
		Y: q.W*o.Y - q.X*o.Z + q.Y*o.W + q.Z*o.X,
		Z: q.W*o.Z + q.X*o.Y - q.Y*o.X + q.Z*o.W,
		W: q.W*o.W - q.X*o.X - q.Y*o.Y - q.Z*o.Z,
	}
}

// Rotate applies q to v.
func (q Quat) Rotate(v Vec3) Vec3 {
	u := Vec3{q.X, q.Y, q.Z}
	t := u.Cross(v).Scale(2)
	return v.Add(t.Scale(q.W)).Add(u.Cross(t))
}

// Slerp interpolates along the shorter arc from q to o.
func (q Quat) Slerp(o Quat, t float32) Quat {
	cos := q.Dot(o)
	if cos < 0 {
		o = o.scale(-1)
		cos = -cos
	}

	// Nearly parallel keys: nlerp avoids dividing by sin(~0).
	if cos > 0.9995 {
		return q.add(o.add(q.scale(-1)).scale(t)).Normalize()
	}

	theta := math32.Acos(cos)
	sin := math32.Sin(theta)
	a := math32.Sin((1-t)*theta) / sin
	b := math32.Sin(t*theta) / sin
	return q.scale(a).add(o.scale(b))
}

// ToMat4 returns the column-major rotation matrix of q.
func (q Quat) ToMat4() Mat4 {
	q = q.Normalize()
	x2, y2, z2 := q.X+q.X, q.Y+q.Y, q.Z+q.Z
	xx, xy, xz := q.X*x2, q.X*y2, q.X*z2
	yy, yz, zz := q.Y*y2, q.Y*z2, q.Z*z2
	wx, wy, wz := q.W*x2, q.W*y2, q.W*z2

	return Mat4{
		1 - (yy + zz), xy + wz, xz - wy, 0,
		xy - wz, 1 - (xx + zz), yz + wx, 0,
		xz + wy, yz - wx, 1 - (xx + yy), 0,
		0, 0, 0, 1,
	}
}
