// Package dense implements a small in-memory n-dimensional array that
// actually performs the indexing the shapeinference package only sizes.
//
// It is the module's reference engine: a plain row-major implementation of
// basic and advanced indexing whose answers, and whose errors, are taken as
// authoritative. The root ndindex package replays failed keys against it to
// report them with this engine's wording, and the package tests compare
// every Index result against shapeinference.ItemShape.
//
// Arrays hold bool, int32, int64, float16, float32 or float64 elements.
// Indexing and construction errors panic with error values; use TryIndex to
// capture indexing errors.
package dense

import (
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/chewxy/math32"
	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/ndindex/types/shapes"
	"github.com/x448/float16"
)

// Supported constrains the Go element types dense arrays can hold.
type Supported interface {
	bool | int32 | int64 | float16.Float16 | float32 | float64
}

// Array is a dense n-dimensional array stored flat in row-major order.
type Array struct {
	dtype dtypes.DType
	shape shapes.Shape

	// flat is one of []bool, []int32, []int64, []float16.Float16,
	// []float32 or []float64, with shape.Size() elements.
	flat any
}

// DType returns the element type of the array.
func (a *Array) DType() dtypes.DType { return a.dtype }

// Shape returns the shape of the array. It is owned by the array and must
// not be modified.
func (a *Array) Shape() shapes.Shape { return a.shape }

// Rank returns the number of axes of the array.
func (a *Array) Rank() int { return a.shape.Rank() }

// Size returns the number of elements stored.
func (a *Array) Size() int { return a.shape.Size() }

// maxStringValues limits how many elements String prints.
const maxStringValues = 8

// String returns a compact description like "Float32[2 3]{0, 1, 2, ...}".
func (a *Array) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s%s", a.dtype, a.shape)
	flat := reflect.ValueOf(a.flat)
	n := min(flat.Len(), maxStringValues)
	b.WriteString("{")
	for i := range n {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%v", flat.Index(i).Interface())
	}
	if flat.Len() > n {
		b.WriteString(", ...")
	}
	b.WriteString("}")
	return b.String()
}

// Equal reports whether both arrays hold the same dtype, shape and elements.
// NaN elements never compare equal.
func (a *Array) Equal(other *Array) bool {
	if a.dtype != other.dtype || !a.shape.Equal(other.shape) {
		return false
	}
	return reflect.DeepEqual(a.flat, other.flat)
}

// newFlat allocates the flat storage for size elements of the given dtype.
func newFlat(dtype dtypes.DType, size int) any {
	switch dtype {
	case dtypes.Bool:
		return make([]bool, size)
	case dtypes.Int32:
		return make([]int32, size)
	case dtypes.Int64:
		return make([]int64, size)
	case dtypes.Float16:
		return make([]float16.Float16, size)
	case dtypes.Float32:
		return make([]float32, size)
	case dtypes.Float64:
		return make([]float64, size)
	}
	exceptions.Panicf("dense: dtype %s is not supported", dtype)
	return nil
}

// Zeros returns an array of the given dtype and shape with all elements set
// to the zero value.
func Zeros(dtype dtypes.DType, shape shapes.Shape) *Array {
	if !shape.Ok() {
		exceptions.Panicf("dense: cannot create an array with the invalid shape %s", shape)
	}
	return &Array{dtype: dtype, shape: shape.Clone(), flat: newFlat(dtype, shape.Size())}
}

// Empty returns an array whose contents are meant to be overwritten. Float
// elements are filled with NaN so reads of positions nothing wrote to show
// up in tests; other dtypes are left at zero.
func Empty(dtype dtypes.DType, shape shapes.Shape) *Array {
	a := Zeros(dtype, shape)
	switch flat := a.flat.(type) {
	case []float16.Float16:
		nan := float16.NaN()
		for i := range flat {
			flat[i] = nan
		}
	case []float32:
		nan := math32.NaN()
		for i := range flat {
			flat[i] = nan
		}
	case []float64:
		nan := math.NaN()
		for i := range flat {
			flat[i] = nan
		}
	}
	return a
}

// Iota returns an array counting 0, 1, 2, ... in row-major order. It
// supports the numeric dtypes only.
func Iota(dtype dtypes.DType, shape shapes.Shape) *Array {
	if dtype == dtypes.Bool {
		exceptions.Panicf("dense: Iota does not support dtype %s", dtype)
	}
	a := Zeros(dtype, shape)
	switch flat := a.flat.(type) {
	case []int32:
		for i := range flat {
			flat[i] = int32(i)
		}
	case []int64:
		for i := range flat {
			flat[i] = int64(i)
		}
	case []float16.Float16:
		for i := range flat {
			flat[i] = float16.Fromfloat32(float32(i))
		}
	case []float32:
		for i := range flat {
			flat[i] = float32(i)
		}
	case []float64:
		for i := range flat {
			flat[i] = float64(i)
		}
	}
	return a
}

// FromFlat returns an array of the given shape holding a copy of the given
// row-major values. The dtype is taken from the element type.
func FromFlat[T Supported](shape shapes.Shape, values []T) *Array {
	if !shape.Ok() {
		exceptions.Panicf("dense: cannot create an array with the invalid shape %s", shape)
	}
	if len(values) != shape.Size() {
		exceptions.Panicf("dense: shape %s has size %d, got %d values", shape, shape.Size(), len(values))
	}
	flat := make([]T, len(values))
	copy(flat, values)
	return &Array{dtype: dtypeFor[T](), shape: shape.Clone(), flat: flat}
}

// FlatData returns the flat row-major elements of the array. The slice is
// shared with the array and must not be modified.
func FlatData[T Supported](a *Array) []T {
	flat, ok := a.flat.([]T)
	if !ok {
		exceptions.Panicf("dense: array holds %s elements, requested %T", a.dtype, flat)
	}
	return flat
}

func dtypeFor[T Supported]() dtypes.DType {
	var zero T
	return dtypes.FromGoType(reflect.TypeOf(zero))
}

// rowMajorStrides returns the flat distance between consecutive positions
// of each axis. Zero-sized axes get the stride their size-1 sibling would.
func rowMajorStrides(dims []int) []int {
	strides := make([]int, len(dims))
	stride := 1
	for axis := len(dims) - 1; axis >= 0; axis-- {
		strides[axis] = stride
		stride *= max(dims[axis], 1)
	}
	return strides
}
