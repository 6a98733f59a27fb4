package geometry

import "math"

// Matrix3 is a 3x3 matrix in row-major order
type Matrix3 [3][3]float64

// Identity3 returns the identity matrix
func Identity3() Matrix3 {
	return Matrix3{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}
}

// RotationX returns a rotation matrix around the X axis by degrees
func RotationX(degrees float64) Matrix3 {
	rad := degrees * math.Pi / 180.0
	c, s := math.Cos(rad), math.Sin(rad)
	return Matrix3{
		{1, 0, 0},
		{0, c, -s},
		{0, s, c},
	}
}

// RotationY returns a rotation matrix around the Y axis by degrees
func RotationY(degrees float64) Matrix3 {
	rad := degrees * math.Pi / 180.0
	c, s := math.Cos(rad), math.Sin(rad)
	return Matrix3{
		{c, 0, s},
		{0, 1, 0},
		{-s, 0, c},
	}
}

// RotationZ returns a rotation matrix around the Z axis by degrees
func RotationZ(degrees float64) Matrix3 {
	rad := degrees * math.Pi / 180.0
	c, s := math.Cos(rad), math.Sin(rad)
	return Matrix3{
		{c, -s, 0},
		{s, c, 0},
		{0, 0, 1},
	}
}

// Mul returns the matrix product m * other
func (m Matrix3) Mul(other Matrix3) Matrix3 {
	var result Matrix3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				result[i][j] += m[i][k] * other[k][j]
			}
		}
	}
	return result
}

// MulVec applies the matrix to a vector
func (m Matrix3) MulVec(v Vector3) Vector3 {
	return Vector3{
		X: m[0][0]*v.X + m[0][1]*v.Y + m[0][2]*v.Z,
		Y: m[1][0]*v.X + m[1][1]*v.Y + m[1][2]*v.Z,
		Z: m[2][0]*v.X + m[2][1]*v.Y + m[2][2]*v.Z,
	}
}
