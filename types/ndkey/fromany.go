package ndkey

import (
	"fmt"
	"reflect"

	"github.com/gomlx/ndindex/types/shapes"
	"github.com/pkg/errors"
)

// MaskFromAny converts a Go "any" value to a Mask component. Accepted values
// are a plain bool or slices (or multiple levels of slices) of bool.
//
// Example:
//
//	mask, err := ndkey.MaskFromAny([][]bool{{true, false, true}, {false, true, false}}) // Mask of shape [2 3]
func MaskFromAny(value any) (mask Mask, err error) {
	var shape shapes.Shape
	err = shapeFromAnyRecursive(&shape, reflect.ValueOf(value), reflect.TypeOf(value), isBoolKind, "a boolean mask")
	if err != nil {
		return
	}
	values := make([]bool, 0, shape.Size())
	flattenRecursive(reflect.ValueOf(value), func(v reflect.Value) {
		values = append(values, v.Bool())
	})
	return Mask{shape: shape, values: values}, nil
}

// IndexArrayFromAny converts a Go "any" value to an IndexArray component.
// Accepted values are a plain (signed) integer or slices (or multiple levels
// of slices) of integers.
//
// Example:
//
//	arr, err := ndkey.IndexArrayFromAny([][]int{{0, 1}, {2, 0}}) // IndexArray of shape [2 2]
func IndexArrayFromAny(value any) (arr IndexArray, err error) {
	var shape shapes.Shape
	err = shapeFromAnyRecursive(&shape, reflect.ValueOf(value), reflect.TypeOf(value), isIntKind, "an index array")
	if err != nil {
		return
	}
	values := make([]int, 0, shape.Size())
	flattenRecursive(reflect.ValueOf(value), func(v reflect.Value) {
		values = append(values, int(v.Int()))
	})
	return IndexArray{shape: shape, values: values}, nil
}

func isBoolKind(kind reflect.Kind) bool {
	return kind == reflect.Bool
}

func isIntKind(kind reflect.Kind) bool {
	switch kind {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func shapeFromAnyRecursive(shape *shapes.Shape, v reflect.Value, t reflect.Type, accepts func(reflect.Kind) bool, what string) error {
	if t == nil {
		return errors.Errorf("cannot build %s from a nil value", what)
	}
	if t.Kind() != reflect.Slice {
		// If it's not a slice, it must be a supported scalar type.
		if !accepts(t.Kind()) {
			return errors.Errorf("cannot build %s from type %q", what, t)
		}
		return nil
	}

	// Slice: recurse into its element type (again slices or a supported scalar).
	t = t.Elem()
	shape.Dimensions = append(shape.Dimensions, v.Len())
	if v.Len() == 0 {
		// An empty run of scalars is a valid zero-length axis, but an empty
		// slice of slices leaves the inner dimensions undetermined.
		if t.Kind() == reflect.Slice {
			return errors.Errorf("value with an empty slice of slices is not valid for %s: %v -- it wouldn't be possible to figure out the inner dimensions", what, v)
		}
		if !accepts(t.Kind()) {
			return errors.Errorf("cannot build %s from type %q", what, t)
		}
		return nil
	}
	shapePrefix := shape.Clone()

	// The first element is the reference.
	v0 := v.Index(0)
	err := shapeFromAnyRecursive(shape, v0, t, accepts, what)
	if err != nil {
		return err
	}

	// Test that other elements have the same shape as the first one.
	for ii := 1; ii < v.Len(); ii++ {
		shapeTest := shapePrefix.Clone()
		err = shapeFromAnyRecursive(&shapeTest, v.Index(ii), t, accepts, what)
		if err != nil {
			return err
		}
		if !shape.Equal(shapeTest) {
			return fmt.Errorf("sub-slices have irregular shapes, found shapes %q, and %q", shape, shapeTest)
		}
	}
	return nil
}

func flattenRecursive(v reflect.Value, visit func(reflect.Value)) {
	if v.Kind() != reflect.Slice {
		visit(v)
		return
	}
	for ii := 0; ii < v.Len(); ii++ {
		flattenRecursive(v.Index(ii), visit)
	}
}
