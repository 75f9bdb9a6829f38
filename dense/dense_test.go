package dense

import (
	"math"
	"strings"
	"testing"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/ndindex/types/shapes"
	"github.com/stretchr/testify/require"
	"github.com/x448/float16"
)

var S = shapes.Make

func TestZeros(t *testing.T) {
	a := Zeros(dtypes.Float64, S(2, 3))
	require.Equal(t, dtypes.Float64, a.DType())
	require.True(t, a.Shape().Equal(S(2, 3)))
	require.Equal(t, 6, a.Size())
	require.Equal(t, make([]float64, 6), FlatData[float64](a))

	require.Equal(t, []bool{false, false}, FlatData[bool](Zeros(dtypes.Bool, S(2))))

	err := exceptions.TryCatch[error](func() { Zeros(dtypes.Float32, shapes.Invalid()) })
	require.ErrorContains(t, err, "invalid shape")
}

func TestEmptyPoisonsFloats(t *testing.T) {
	for _, v := range FlatData[float64](Empty(dtypes.Float64, S(3))) {
		require.True(t, math.IsNaN(v))
	}
	for _, v := range FlatData[float32](Empty(dtypes.Float32, S(3))) {
		require.True(t, math.IsNaN(float64(v)))
	}
	for _, v := range FlatData[float16.Float16](Empty(dtypes.Float16, S(3))) {
		require.True(t, v.IsNaN())
	}

	// Non-float dtypes have no NaN and stay at zero.
	require.Equal(t, []int32{0, 0}, FlatData[int32](Empty(dtypes.Int32, S(2))))
}

func TestIota(t *testing.T) {
	require.Equal(t, []int64{0, 1, 2, 3, 4, 5}, FlatData[int64](Iota(dtypes.Int64, S(2, 3))))
	require.Equal(t, []float32{0, 1, 2}, FlatData[float32](Iota(dtypes.Float32, S(3))))
	require.Equal(t, float16.Fromfloat32(2), FlatData[float16.Float16](Iota(dtypes.Float16, S(3)))[2])

	err := exceptions.TryCatch[error](func() { Iota(dtypes.Bool, S(2)) })
	require.ErrorContains(t, err, "Iota does not support dtype Bool")
}

func TestFromFlatAndFlatData(t *testing.T) {
	a := FromFlat(S(2, 2), []int32{1, 2, 3, 4})
	require.Equal(t, dtypes.Int32, a.DType())
	require.True(t, a.Shape().Equal(S(2, 2)))

	// The array keeps its own copy of the values.
	values := []float64{1.5, 2.5}
	b := FromFlat(S(2), values)
	values[0] = -1
	require.Equal(t, []float64{1.5, 2.5}, FlatData[float64](b))

	err := exceptions.TryCatch[error](func() { FromFlat(S(3), []int32{1}) })
	require.ErrorContains(t, err, "size 3, got 1 values")

	err = exceptions.TryCatch[error](func() { FlatData[float32](a) })
	require.ErrorContains(t, err, "holds Int32 elements")
}

func TestStringAndEqual(t *testing.T) {
	a := Iota(dtypes.Int32, S(2, 3))
	require.Equal(t, "Int32[2 3]{0, 1, 2, 3, 4, 5}", a.String())
	require.True(t, strings.HasSuffix(Iota(dtypes.Int32, S(10)).String(), ", ...}"))

	require.True(t, a.Equal(Iota(dtypes.Int32, S(2, 3))))
	require.False(t, a.Equal(Iota(dtypes.Int64, S(2, 3))))
	require.False(t, a.Equal(Iota(dtypes.Int32, S(3, 2))))
	require.False(t, a.Equal(FromFlat(S(2, 3), []int32{0, 1, 2, 3, 4, 6})))
}

func TestRowMajorStrides(t *testing.T) {
	require.Equal(t, []int{12, 4, 1}, rowMajorStrides([]int{2, 3, 4}))
	require.Equal(t, []int{1}, rowMajorStrides([]int{5}))
	require.Empty(t, rowMajorStrides(nil))
}
