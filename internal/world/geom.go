package world

import "math"

// DefaultEyeHeight is used when an entity does not report its own.
const DefaultEyeHeight = 1.62

type Vec3i struct {
	X int
	Y int
	Z int
}

func (v Vec3i) ToArray() [3]int { return [3]int{v.X, v.Y, v.Z} }

func Vec3iFromArray(a [3]int) Vec3i { return Vec3i{X: a[0], Y: a[1], Z: a[2]} }

func (v Vec3i) Vec3() Vec3 { return Vec3{X: float64(v.X), Y: float64(v.Y), Z: float64(v.Z)} }

type Vec3 struct {
	X float64
	Y float64
	Z float64
}

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z} }

func (v Vec3) Scale(k float64) Vec3 { return Vec3{X: v.X * k, Y: v.Y * k, Z: v.Z * k} }

// Cell returns the voxel containing v.
func (v Vec3) Cell() Vec3i {
	return Vec3i{X: int(math.Floor(v.X)), Y: int(math.Floor(v.Y)), Z: int(math.Floor(v.Z))}
}

// Look is a viewing direction in degrees: yaw 0 looks along +X, yaw 90
// along +Z, positive pitch looks up.
type Look struct {
	Yaw   float64
	Pitch float64
}

// Dir returns the unit vector for l.
func (l Look) Dir() Vec3 {
	yaw := l.Yaw * math.Pi / 180
	pitch := l.Pitch * math.Pi / 180
	cp := math.Cos(pitch)
	return Vec3{
		X: cp * math.Cos(yaw),
		Y: math.Sin(pitch),
		Z: cp * math.Sin(yaw),
	}
}
