package geom

import (
	"fmt"
	"math"
)

// Double is the scalar used by FBX material properties.
type Double = float64

// Double3 is an ordered triple. Index 0/1/2 is R/G/B for colors and X/Y/Z for vectors.
type Double3 [3]Double

// ShapeError reports a vector built from the wrong number of elements.
type ShapeError struct {
	Field    string
	Expected int
	Actual   int
}

func (e *ShapeError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("shape error: expected %d elements, got %d", e.Expected, e.Actual)
	}
	return fmt.Sprintf("%s: shape error: expected %d elements, got %d", e.Field, e.Expected, e.Actual)
}

func NewDouble3(x, y, z Double) Double3 {
	return Double3{x, y, z}
}

func NewDouble3FromSlice(v []Double) (Double3, error) {
	if len(v) != 3 {
		return Double3{}, &ShapeError{Expected: 3, Actual: len(v)}
	}
	return Double3{v[0], v[1], v[2]}, nil
}

func (v Double3) Scale(s Double) Double3 {
	return Double3{v[0] * s, v[1] * s, v[2] * s}
}

func (v Double3) Max() Double {
	return math.Max(v[0], math.Max(v[1], v[2]))
}

func (v Double3) IsFinite() bool {
	for _, e := range v {
		if math.IsNaN(e) || math.IsInf(e, 0) {
			return false
		}
	}
	return true
}

func (v Double3) ToArray32() [3]float32 {
	return [3]float32{float32(v[0]), float32(v[1]), float32(v[2])}
}

func (v Double3) Slice() []Double {
	return []Double{v[0], v[1], v[2]}
}
