package dense

import (
	"reflect"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/ndindex/shapeinference"
	"github.com/gomlx/ndindex/types/ndkey"
	"github.com/gomlx/ndindex/types/shapes"
	"github.com/pkg/errors"
)

// Index returns a new array holding a[key], with the data actually gathered,
// element by element. Basic keys (ints, ranges, new axes) copy a strided
// view; keys with masks or index arrays go through advanced indexing:
// every indexing array is broadcast to a common block and the block selects
// one source position per element.
//
// Invalid keys panic with error values; wherever the shapeinference package
// names a sentinel for the failure, the panic wraps the same sentinel.
// TryIndex converts the panics back to plain errors.
func (a *Array) Index(key ndkey.Key) *Array {
	key = a.expandKey(key)
	if shapeinference.IsBasic(key) {
		return a.basicGather(key)
	}
	return a.advancedGather(key)
}

// TryIndex calls Index and captures its panic, if any, as an error.
func (a *Array) TryIndex(key ndkey.Key) (output *Array, err error) {
	err = exceptions.TryCatch[error](func() { output = a.Index(key) })
	if err != nil {
		return nil, err
	}
	return output, nil
}

// expandKey replaces the single allowed Ellipsis by full ranges and rejects
// keys addressing more axes than the array has. Int, Range and IndexArray
// components address one source axis each, a Mask one per axis of its own
// shape, NewAxis components none.
func (a *Array) expandKey(key ndkey.Key) ndkey.Key {
	ellipsisPos := -1
	claimed := 0
	for pos, c := range key {
		switch c.Kind() {
		case ndkey.KindEllipsis:
			if ellipsisPos >= 0 {
				panic(errors.Wrap(shapeinference.ErrInvalidKey, "an index can only have a single ellipsis ('...')"))
			}
			ellipsisPos = pos
		case ndkey.KindInt, ndkey.KindRange, ndkey.KindIndexArray:
			claimed++
		case ndkey.KindMask:
			claimed += c.(ndkey.Mask).Rank()
		}
	}
	rank := a.shape.Rank()
	if claimed > rank {
		panic(errors.Wrapf(shapeinference.ErrKeyTooLong,
			"too many indices for array: array is %d-dimensional, but %d were indexed", rank, claimed))
	}
	if ellipsisPos < 0 {
		return key
	}
	delta := rank - claimed
	expanded := make(ndkey.Key, 0, len(key)-1+delta)
	expanded = append(expanded, key[:ellipsisPos]...)
	for range delta {
		expanded = append(expanded, ndkey.FullRange())
	}
	expanded = append(expanded, key[ellipsisPos+1:]...)
	return expanded
}

// axisSel selects the positions start, start+step, ..., n of them, along the
// source axis src. src is -1 for a new axis, which selects nothing.
type axisSel struct {
	src, start, step, n int
}

// basicGather copies the strided selection a basic key describes.
func (a *Array) basicGather(key ndkey.Key) *Array {
	rank := a.shape.Rank()
	srcStrides := rowMajorStrides(a.shape.Dimensions)
	offset := 0
	var sels []axisSel
	i := 0 // Source axis cursor.
	for _, c := range key {
		switch c.Kind() {
		case ndkey.KindInt:
			idx := int(c.(ndkey.Int))
			dim := a.shape.Dimensions[i]
			if idx < -dim || idx >= dim {
				exceptions.Panicf("index %d is out of bounds for axis %d with size %d", idx, i, dim)
			}
			if idx < 0 {
				idx += dim
			}
			offset += idx * srcStrides[i]
			i++
		case ndkey.KindRange:
			start, step, n, err := c.(ndkey.Range).Resolve(a.shape.Dimensions[i])
			if err != nil {
				panic(err)
			}
			sels = append(sels, axisSel{src: i, start: start, step: step, n: n})
			i++
		case ndkey.KindNewAxis:
			sels = append(sels, axisSel{src: -1, n: 1})
		}
	}
	for ; i < rank; i++ {
		sels = append(sels, axisSel{src: i, step: 1, n: a.shape.Dimensions[i]})
	}

	outDims := make([]int, len(sels))
	for axis, sel := range sels {
		outDims[axis] = sel.n
	}
	output := Empty(a.dtype, shapes.Make(outDims...))
	outSize := output.Size()
	if outSize == 0 {
		return output
	}
	srcFlat := reflect.ValueOf(a.flat)
	outFlat := reflect.ValueOf(output.flat)
	coords := make([]int, len(sels))
	for pos := range outSize {
		srcPos := offset
		for axis, sel := range sels {
			if sel.src < 0 {
				continue
			}
			srcPos += (sel.start + coords[axis]*sel.step) * srcStrides[sel.src]
		}
		outFlat.Index(pos).Set(srcFlat.Index(srcPos))
		for axis := len(coords) - 1; axis >= 0; axis-- {
			coords[axis]++
			if coords[axis] < sels[axis].n {
				break
			}
			coords[axis] = 0
		}
	}
	return output
}

// coordArray is one advanced-indexing coordinate array: values index the
// source axis srcAxis. srcAxis is -1 for the placeholder array of a scalar
// boolean, which indexes nothing. expanded caches values broadcast to the
// full block, bounds-checked and with negatives wrapped.
type coordArray struct {
	srcAxis  int
	shape    shapes.Shape
	values   []int
	expanded []int
}

// gatherStep is the per-component plan of an advanced key: either one
// array-producing component (whose output axes come from the shared
// broadcast block) or one axisSel.
type gatherStep struct {
	isArray bool
	sel     axisSel
}

// axisSource maps one output axis to an axis of the broadcast block
// (bAxis >= 0) or to an axisSel (bAxis == -1).
type axisSource struct {
	bAxis int
	sel   axisSel
}

// advancedGather handles keys holding masks or index arrays. Masks
// decompose into one coordinate array per axis of their shape via Nonzero,
// ints become rank-0 coordinate arrays, and everything is broadcast to a
// common block. The block lands at the position of the first array-producing
// component when they are contiguous in the key, in front of everything
// otherwise.
func (a *Array) advancedGather(key ndkey.Key) *Array {
	rank := a.shape.Rank()
	var (
		coordArrays  []coordArray
		steps        []gatherStep
		separated    bool
		lastArrayPos = -1
	)
	i := 0 // Source axis cursor.
	for pos, c := range key {
		kind := c.Kind()
		if shapeinference.ArrayProducingComponents.Has(kind) {
			if lastArrayPos >= 0 && lastArrayPos < pos-1 {
				separated = true
			}
			lastArrayPos = pos
		}
		switch kind {
		case ndkey.KindInt:
			idx := int(c.(ndkey.Int))
			dim := a.shape.Dimensions[i]
			if idx < -dim || idx >= dim {
				exceptions.Panicf("index %d is out of bounds for axis %d with size %d", idx, i, dim)
			}
			if idx < 0 {
				idx += dim
			}
			coordArrays = append(coordArrays, coordArray{srcAxis: i, shape: shapes.Make(), values: []int{idx}})
			steps = append(steps, gatherStep{isArray: true})
			i++
		case ndkey.KindIndexArray:
			arr := c.(ndkey.IndexArray)
			coordArrays = append(coordArrays, coordArray{srcAxis: i, shape: arr.Shape(), values: arr.Values()})
			steps = append(steps, gatherStep{isArray: true})
			i++
		case ndkey.KindMask:
			mask := c.(ndkey.Mask)
			for d := range mask.Rank() {
				maskDim := mask.Shape().Dimensions[d]
				srcDim := a.shape.Dimensions[i+d]
				if maskDim != srcDim {
					exceptions.Panicf("boolean index did not match indexed array along axis %d; size of axis is %d but size of corresponding boolean axis is %d",
						i+d, srcDim, maskDim)
				}
			}
			for d, coords := range mask.Nonzero() {
				srcAxis := i + d
				if mask.Rank() == 0 {
					srcAxis = -1
				}
				coordArrays = append(coordArrays, coordArray{srcAxis: srcAxis, shape: coords.Shape(), values: coords.Values()})
			}
			steps = append(steps, gatherStep{isArray: true})
			i += mask.Rank()
		case ndkey.KindRange:
			start, step, n, err := c.(ndkey.Range).Resolve(a.shape.Dimensions[i])
			if err != nil {
				panic(err)
			}
			steps = append(steps, gatherStep{sel: axisSel{src: i, start: start, step: step, n: n}})
			i++
		case ndkey.KindNewAxis:
			steps = append(steps, gatherStep{sel: axisSel{src: -1, n: 1}})
		default:
			panic(errors.Wrap(shapeinference.ErrInvalidKey,
				"only integers, slices (`:`), ellipsis (`...`), numpy.newaxis (`None`) and integer or boolean arrays are valid indices"))
		}
	}

	arrayShapes := make([]shapes.Shape, len(coordArrays))
	for k, ca := range coordArrays {
		arrayShapes[k] = ca.shape
	}
	broadcast, err := shapeinference.BroadcastShapes(arrayShapes...)
	if err != nil {
		panic(errors.WithMessagef(err, "advanced indexing key %s", key))
	}
	for k := range coordArrays {
		a.expandCoords(&coordArrays[k], broadcast)
	}

	// Assemble the output axes.
	var (
		outDims []int
		sources []axisSource
	)
	appendBlock := func() {
		for bAxis, dim := range broadcast.Dimensions {
			outDims = append(outDims, dim)
			sources = append(sources, axisSource{bAxis: bAxis})
		}
	}
	inserted := separated
	if separated {
		appendBlock()
	}
	for _, st := range steps {
		if st.isArray {
			if !inserted {
				appendBlock()
				inserted = true
			}
			continue
		}
		outDims = append(outDims, st.sel.n)
		sources = append(sources, axisSource{bAxis: -1, sel: st.sel})
	}
	for ; i < rank; i++ {
		outDims = append(outDims, a.shape.Dimensions[i])
		sources = append(sources, axisSource{bAxis: -1, sel: axisSel{src: i, step: 1, n: a.shape.Dimensions[i]}})
	}

	output := Empty(a.dtype, shapes.Make(outDims...))
	outSize := output.Size()
	if outSize == 0 {
		return output
	}
	srcStrides := rowMajorStrides(a.shape.Dimensions)
	srcFlat := reflect.ValueOf(a.flat)
	outFlat := reflect.ValueOf(output.flat)
	coords := make([]int, len(outDims))
	for pos := range outSize {
		bFlat := 0
		srcPos := 0
		for axis, src := range sources {
			coord := coords[axis]
			if src.bAxis >= 0 {
				bFlat = bFlat*broadcast.Dimensions[src.bAxis] + coord
				continue
			}
			if src.sel.src < 0 {
				continue
			}
			srcPos += (src.sel.start + coord*src.sel.step) * srcStrides[src.sel.src]
		}
		for _, ca := range coordArrays {
			if ca.srcAxis < 0 {
				continue
			}
			srcPos += ca.expanded[bFlat] * srcStrides[ca.srcAxis]
		}
		outFlat.Index(pos).Set(srcFlat.Index(srcPos))
		for axis := len(coords) - 1; axis >= 0; axis-- {
			coords[axis]++
			if coords[axis] < outDims[axis] {
				break
			}
			coords[axis] = 0
		}
	}
	return output
}

// expandCoords fills ca.expanded with the coordinate values broadcast to the
// block shape, wrapping negatives and bounds-checking against the source
// axis. Placeholder arrays of scalar booleans are expanded too, but only
// their broadcast participation matters.
func (a *Array) expandCoords(ca *coordArray, broadcast shapes.Shape) {
	blockSize := broadcast.Size()
	ca.expanded = make([]int, blockSize)
	if blockSize == 0 {
		return
	}
	dim := 1
	if ca.srcAxis >= 0 {
		dim = a.shape.Dimensions[ca.srcAxis]
	}
	fromStrides := rowMajorStrides(ca.shape.Dimensions)
	offset := broadcast.Rank() - ca.shape.Rank()
	coords := make([]int, broadcast.Rank())
	for b := range ca.expanded {
		srcIdx := 0
		for axis, d := range ca.shape.Dimensions {
			coord := coords[offset+axis]
			if d == 1 {
				coord = 0
			}
			srcIdx += coord * fromStrides[axis]
		}
		v := ca.values[srcIdx]
		if ca.srcAxis >= 0 {
			if v < -dim || v >= dim {
				exceptions.Panicf("index %d is out of bounds for axis %d with size %d", v, ca.srcAxis, dim)
			}
			if v < 0 {
				v += dim
			}
		}
		ca.expanded[b] = v
		for axis := broadcast.Rank() - 1; axis >= 0; axis-- {
			coords[axis]++
			if coords[axis] < broadcast.Dimensions[axis] {
				break
			}
			coords[axis] = 0
		}
	}
}
