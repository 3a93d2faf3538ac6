package extras

import (
	"fmt"

	"github.com/binzume/fbxgltfextras/geom"
)

// ShapeError reports a vector with the wrong number of elements.
type ShapeError = geom.ShapeError

// InvalidFieldError reports a recognized field that is missing, null, of the
// wrong JSON type or out of its allowed range. Field is the dotted path
// relative to the FBX-glTF-conv extras object.
type InvalidFieldError struct {
	Field  string
	Reason string
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("invalid field %s: %s", e.Field, e.Reason)
}

// RangeError reports a negative texture index.
type RangeError struct {
	Field string
	Index int
}

func (e *RangeError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("texture index out of range: %d", e.Index)
	}
	return fmt.Sprintf("%s: texture index out of range: %d", e.Field, e.Index)
}

// DanglingReferenceError reports a texture index that does not exist in the
// texture collection it was resolved against.
type DanglingReferenceError struct {
	Index int
	Len   int
}

func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("dangling texture reference: index %d, %d textures", e.Index, e.Len)
}

func invalidField(field, format string, args ...interface{}) error {
	return &InvalidFieldError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
