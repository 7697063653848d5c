package model

import "math"

// LogicalPosition is a tile's position and extent in the continuous 2-D
// logical coordinate space.
type LogicalPosition struct {
	PosX, PosY     float64
	Width, Height  float64
}

// LogicalPosition3d is a brick's position and extent in the continuous 3-D
// logical coordinate space.
type LogicalPosition3d struct {
	PosX, PosY, PosZ        float64
	Width, Height, Depth    float64
}

// Rectangle is an axis-aligned query rectangle in logical space.
type Rectangle struct {
	X, Y, W, H float64
}

// Cuboid is an axis-aligned query cuboid in logical space.
type Cuboid struct {
	X, Y, Z, W, H, D float64
}

// Plane is a plane expressed in normal-and-distance form: a point p lies on
// the plane iff Normal . p == Distance.
type Plane struct {
	NormalX, NormalY, NormalZ float64
	Distance                  float64
}

// Int32Interval is a [Min, Max] range of coordinate values. The zero value
// is invalid: a document with no tiles (or no tiles carrying a requested
// dimension) reports an invalid interval rather than a degenerate [0,0]
// one. Mirrors the original's Int32Interval.
type Int32Interval struct {
	Min, Max int32
	Valid    bool
}

// IsValid reports whether the interval carries real data.
func (i Int32Interval) IsValid() bool {
	return i.Valid
}

// Float64Interval is a [Min, Max] range of logical-space coordinates, with
// the same invalid-zero-value convention as Int32Interval.
type Float64Interval struct {
	Min, Max float64
	Valid    bool
}

// IsValid reports whether the interval carries real data.
func (i Float64Interval) IsValid() bool {
	return i.Valid
}

// PlaneFromPointAndNormal builds the normal-and-distance representation of
// the plane through point with the given (not necessarily normalized) normal.
func PlaneFromPointAndNormal(px, py, pz, nx, ny, nz float64) Plane {
	length := math.Sqrt(nx*nx + ny*ny + nz*nz)
	if length == 0 {
		return Plane{}
	}
	nx, ny, nz = nx/length, ny/length, nz/length
	return Plane{
		NormalX:  nx,
		NormalY:  ny,
		NormalZ:  nz,
		Distance: nx*px + ny*py + nz*pz,
	}
}
