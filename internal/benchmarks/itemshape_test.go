package benchmarks

// Compares the shape-inference path against materializing the selection with
// the dense reference engine, over a spread of representative keys.
//
// The Benchmark* functions run with the standard tooling:
//
//	go test ./internal/benchmarks -test.bench=.
//
// The TestBench* functions use the go-benchmarks runner instead, for median
// and percentile latencies. They are disabled unless -bench_duration is set:
//
//	go test ./internal/benchmarks -run=TestBench -bench_duration=10s

import (
	"flag"
	"fmt"
	"testing"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/ndindex"
	"github.com/gomlx/ndindex/dense"
	"github.com/gomlx/ndindex/types/ndkey"
	"github.com/gomlx/ndindex/types/shapes"
	"github.com/janpfeifer/go-benchmarks"
	"github.com/janpfeifer/must"
)

var flagBenchDuration = flag.Duration("bench_duration", 0,
	"Benchmark duration, typically use 10 seconds. If left as 0, the TestBench* tests are disabled")

// benchShape is the source array shape all cases index into.
var benchShape = shapes.Make(64, 16, 8)

// stripedMask returns a mask of the given shape with every period-th entry set.
func stripedMask(shape shapes.Shape, period int) ndkey.Mask {
	values := make([]bool, shape.Size())
	for i := range values {
		values[i] = i%period == 0
	}
	return must.M1(ndkey.NewMask(shape, values))
}

// iotaInts returns a rank-1 array of n positions cycling through [0, dim).
func iotaInts(n, dim int) ndkey.IndexArray {
	values := make([]int, n)
	for i := range values {
		values[i] = i % dim
	}
	return ndkey.Ints(values...)
}

var itemShapeCases = []struct {
	name  string
	shape shapes.Shape
	key   ndkey.Key
}{
	{"int", benchShape, ndkey.Key{ndkey.Int(7)}},
	{"int+range", benchShape, ndkey.Key{ndkey.Int(7), ndkey.NewRange(2, 14)}},
	{"ellipsis", benchShape, ndkey.Key{ndkey.Int(1), ndkey.Ellipsis, ndkey.Int(-1)}},
	{"newaxis", benchShape, ndkey.Key{ndkey.NewAxis, ndkey.FullRange(), ndkey.Int(3)}},
	{"reversed", benchShape, ndkey.Key{ndkey.Range{Start: ndkey.Unbounded, Stop: ndkey.Unbounded, Step: -1}}},
	{"arrays-contiguous", benchShape, ndkey.Key{iotaInts(32, 64), iotaInts(32, 16)}},
	{"arrays-separated", benchShape, ndkey.Key{iotaInts(32, 64), ndkey.FullRange(), iotaInts(32, 8)}},
	{"mask-whole", benchShape, ndkey.Key{stripedMask(benchShape, 3)}},
	{"mask-leading", benchShape, ndkey.Key{stripedMask(shapes.Make(64), 4)}},
}

// benchSink keeps the compiler from eliding the calls under measurement.
var benchSink shapes.Shape

// verifyCases checks that inference and the reference engine agree on every
// benchmark case, so the timed loops measure agreeing implementations.
func verifyCases() {
	for _, tc := range itemShapeCases {
		want := dense.Iota(dtypes.Float64, tc.shape).Index(tc.key).Shape()
		got := must.M1(ndindex.ItemShape(tc.shape, tc.key))
		if !got.Equal(want) {
			exceptions.Panicf("inference sized %s%s as %s, the reference engine as %s", tc.shape, tc.key, got, want)
		}
	}
}

func BenchmarkItemShape(b *testing.B) {
	verifyCases()
	b.ResetTimer()
	for _, tc := range itemShapeCases {
		b.Run(tc.name, func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				var err error
				benchSink, err = ndindex.ItemShape(tc.shape, tc.key)
				if err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkDenseIndex(b *testing.B) {
	verifyCases()
	arrays := make([]*dense.Array, len(itemShapeCases))
	for i, tc := range itemShapeCases {
		arrays[i] = dense.Iota(dtypes.Float64, tc.shape)
	}
	b.ResetTimer()
	for i, tc := range itemShapeCases {
		b.Run(tc.name, func(b *testing.B) {
			for n := 0; n < b.N; n++ {
				benchSink = arrays[i].Index(tc.key).Shape()
			}
		})
	}
}

func TestBenchItemShape(t *testing.T) {
	if testing.Short() || *flagBenchDuration == 0 {
		t.SkipNow()
	}
	verifyCases()
	for ii, tc := range itemShapeCases {
		shape, key := tc.shape, tc.key
		testFn := benchmarks.NamedFunction{
			Name: fmt.Sprintf("ItemShape/%s", tc.name),
			Func: func() {
				benchSink = must.M1(ndindex.ItemShape(shape, key))
			},
		}
		benchmarks.New(testFn).
			WithWarmUps(128).
			WithDuration(*flagBenchDuration).
			WithHeader(ii == 0).
			Done()
	}
}

func TestBenchDenseIndex(t *testing.T) {
	if testing.Short() || *flagBenchDuration == 0 {
		t.SkipNow()
	}
	verifyCases()
	for ii, tc := range itemShapeCases {
		arr := dense.Iota(dtypes.Float64, tc.shape)
		key := tc.key
		testFn := benchmarks.NamedFunction{
			Name: fmt.Sprintf("DenseIndex/%s", tc.name),
			Func: func() {
				benchSink = arr.Index(key).Shape()
			},
		}
		benchmarks.New(testFn).
			WithWarmUps(16).
			WithDuration(*flagBenchDuration).
			WithHeader(ii == 0).
			Done()
	}
}
