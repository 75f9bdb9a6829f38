// Package shapes defines Shape, the axis dimensions of an n-dimensional
// array, and its basic operations.
//
// Shapes are pure metadata: they carry no element type and no data. The
// arrays they describe may hold elements that are expensive or impossible to
// touch directly (secret-shared values, device-resident buffers), which is
// why the rest of this module computes with shapes only.
//
// A Shape is an ordered list of non-negative axis lengths. A rank-0 shape is
// a scalar. Shapes with any negative dimension are invalid; Invalid() returns
// the canonical invalid shape used to mark "no value" results.
package shapes

import (
	"fmt"
	"slices"

	"github.com/pkg/errors"
)

// Shape holds the dimensions of an n-dimensional array, one entry per axis.
// Make() with no arguments creates a scalar shape.
//
// Shape is a small value type: pass it by value, and Clone it before mutating
// Dimensions if the original may still be in use elsewhere.
type Shape struct {
	Dimensions []int
}

// Make returns a Shape with the given dimensions. The dimensions are copied.
func Make(dimensions ...int) Shape {
	return Shape{Dimensions: slices.Clone(dimensions)}
}

// Invalid returns an invalid Shape, used to mark "no value" returns.
// It carries a negative dimension, which no valid shape can have, so
// Invalid().Ok() == false.
func Invalid() Shape {
	return Shape{Dimensions: []int{-1}}
}

// Ok reports whether the shape is valid: no negative dimensions.
// Zero-length dimensions are valid, they describe empty arrays.
func (s Shape) Ok() bool {
	for _, dim := range s.Dimensions {
		if dim < 0 {
			return false
		}
	}
	return true
}

// Rank returns the number of axes. A scalar has rank 0.
func (s Shape) Rank() int {
	return len(s.Dimensions)
}

// IsScalar reports whether the shape is valid and has rank 0.
func (s Shape) IsScalar() bool {
	return s.Ok() && s.Rank() == 0
}

// Dim returns the dimension of the given axis.
// A negative axis counts from the end: Dim(-1) is the last axis.
// It panics if the axis is out of range.
func (s Shape) Dim(axis int) int {
	adjustedAxis := axis
	if adjustedAxis < 0 {
		adjustedAxis += s.Rank()
	}
	if adjustedAxis < 0 || adjustedAxis >= s.Rank() {
		panic(errors.Errorf("shape %s has no axis %d, it has rank %d", s, axis, s.Rank()))
	}
	return s.Dimensions[adjustedAxis]
}

// Size returns the number of elements of an array of this shape, the product
// of its dimensions. A scalar has size 1; any zero dimension makes it 0.
func (s Shape) Size() int {
	size := 1
	for _, dim := range s.Dimensions {
		size *= dim
	}
	return size
}

// Equal reports whether both shapes have exactly the same dimensions.
func (s Shape) Equal(other Shape) bool {
	return slices.Equal(s.Dimensions, other.Dimensions)
}

// Clone returns a deep copy of the shape.
func (s Shape) Clone() Shape {
	return Shape{Dimensions: slices.Clone(s.Dimensions)}
}

// CheckDims checks that the shape has the given dimensions and returns a
// descriptive error if not.
func (s Shape) CheckDims(dimensions ...int) error {
	if !slices.Equal(s.Dimensions, dimensions) {
		return errors.Errorf("shape %s does not match the required dimensions %v", s, dimensions)
	}
	return nil
}

// String implements fmt.Stringer. Shapes print as "[5 6 7]", the scalar
// shape prints as "[]".
func (s Shape) String() string {
	return fmt.Sprintf("%v", s.Dimensions)
}
