package geom

import (
	"errors"
	"math"
	"testing"
)

func TestNewDouble3FromSlice(t *testing.T) {
	v, err := NewDouble3FromSlice([]Double{1, 2, 3})
	if err != nil {
		t.Fatal(err)
	}
	if v != NewDouble3(1, 2, 3) {
		t.Error("NewDouble3FromSlice() returns wrong vector", v)
	}

	for _, src := range [][]Double{nil, {1}, {1, 2}, {1, 2, 3, 4}} {
		_, err := NewDouble3FromSlice(src)
		var shapeErr *ShapeError
		if !errors.As(err, &shapeErr) {
			t.Errorf("len %d: expected ShapeError, got %v", len(src), err)
			continue
		}
		if shapeErr.Expected != 3 || shapeErr.Actual != len(src) {
			t.Error("ShapeError has wrong lengths", shapeErr)
		}
	}
}

func TestDouble3(t *testing.T) {
	v := NewDouble3(0.5, 1, 0.25)
	if v.Scale(2) != NewDouble3(1, 2, 0.5) {
		t.Error("Double3.Scale()")
	}
	if v.Max() != 1 {
		t.Error("Double3.Max()")
	}
	if v.ToArray32() != [3]float32{0.5, 1, 0.25} {
		t.Error("Double3.ToArray32()")
	}
	if !v.IsFinite() || NewDouble3(math.NaN(), 0, 0).IsFinite() || NewDouble3(0, math.Inf(1), 0).IsFinite() {
		t.Error("Double3.IsFinite()")
	}
}

func TestShapeErrorMessage(t *testing.T) {
	err := &ShapeError{Field: "raw.properties.diffuse.value", Expected: 3, Actual: 2}
	if err.Error() != "raw.properties.diffuse.value: shape error: expected 3 elements, got 2" {
		t.Error("unexpected message:", err.Error())
	}
}
