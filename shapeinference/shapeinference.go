// Package shapeinference calculates the shape resulting from indexing an
// n-dimensional array, and validates the indexing key, without touching the
// array data.
//
// This is useful when the array elements are expensive to materialize or
// reach (secret-shared values, device-resident buffers): callers can pre-size
// an output before performing the actual selection.
//
// The entry point is ItemShape. It resolves the key in stages: a fast path
// for a whole-array boolean mask, ellipsis expansion (ExpandEllipsis),
// classification into basic or advanced indexing (IsBasic) and one calculator
// per class. BroadcastShapes implements the standard broadcasting rules and
// is shared with the dense reference engine.
//
// Errors wrap the package sentinels (ErrInvalidKey, ErrKeyTooLong,
// ErrZeroStep, ErrBroadcast) with call context, so callers can match them
// with errors.Is. The guarded entry point in the root ndindex package
// additionally replays failed keys against a placeholder array to report
// them with the reference engine's own errors.
package shapeinference

import (
	"github.com/gomlx/ndindex/internal/utils"
	"github.com/gomlx/ndindex/types/ndkey"
	"github.com/gomlx/ndindex/types/shapes"
	"github.com/pkg/errors"
)

var (
	// ErrInvalidKey marks keys that are structurally wrong (multiple
	// ellipses) or that hold components shape inference does not model
	// (Field, unknown kinds).
	ErrInvalidKey = errors.New("invalid indexing key")

	// ErrKeyTooLong marks keys addressing more source axes than the array
	// has.
	ErrKeyTooLong = errors.New("key too long for shape")

	// ErrBroadcast marks advanced-indexing arrays whose shapes cannot be
	// broadcast together.
	ErrBroadcast = errors.New("shape mismatch: indexing arrays could not be broadcast together")

	// ErrZeroStep is ndkey.ErrZeroStep, re-exported to complete the
	// taxonomy.
	ErrZeroStep = ndkey.ErrZeroStep
)

var (
	// BasicIndexingComponents are the component kinds handled by basic
	// indexing: they select by position only and never introduce
	// broadcasting.
	BasicIndexingComponents = utils.SetWith(
		ndkey.KindInt,
		ndkey.KindRange,
		ndkey.KindNewAxis,
	)

	// ArrayProducingComponents are the component kinds that advanced
	// indexing converts to indexing arrays. A bare Int becomes a rank-0
	// array; a rank-r Mask decomposes into r coordinate arrays.
	ArrayProducingComponents = utils.SetWith(
		ndkey.KindInt,
		ndkey.KindMask,
		ndkey.KindIndexArray,
	)
)

// ItemShape returns the shape of a[key] for an array of the given shape,
// touching no data.
//
// The key components may select more positions than the axes hold (out of
// bounds integers and index-array values are not checked here, since
// checking mask and array contents against the axes would cost as much as
// indexing); such keys return a shape as if they fit. Structural problems
// are reported wrapping the package sentinels.
func ItemShape(shape shapes.Shape, key ndkey.Key) (output shapes.Shape, err error) {
	if !shape.Ok() {
		return shapes.Invalid(), errors.Errorf("cannot infer an item shape for the invalid shape %s", shape)
	}

	// Fast path: a whole-array boolean mask selects one position per true
	// entry.
	if len(key) == 1 {
		if mask, ok := key[0].(ndkey.Mask); ok && mask.Shape().Equal(shape) {
			return shapes.Make(mask.CountTrue()), nil
		}
	}

	key, err = ExpandEllipsis(shape, key)
	if err != nil {
		return shapes.Invalid(), err
	}
	if IsBasic(key) {
		return basicItemShape(shape, key)
	}
	return advancedItemShape(shape, key)
}

// ExpandEllipsis returns the key with its single Ellipsis component replaced
// by as many full ranges as needed for the key to address all source axes.
// Int, Range and IndexArray components each address one axis, a Mask
// addresses one per axis of its own shape, NewAxis components address none.
// Keys without an Ellipsis are returned unchanged.
//
// It fails with ErrInvalidKey if the key has more than one Ellipsis.
func ExpandEllipsis(shape shapes.Shape, key ndkey.Key) (ndkey.Key, error) {
	ellipsisPos := -1
	claimed := 0
	for pos, c := range key {
		switch c.Kind() {
		case ndkey.KindEllipsis:
			if ellipsisPos >= 0 {
				return nil, errors.Wrapf(ErrInvalidKey, "only a single ellipsis allowed, got key %s", key)
			}
			ellipsisPos = pos
		case ndkey.KindInt, ndkey.KindRange, ndkey.KindIndexArray:
			claimed++
		case ndkey.KindMask:
			claimed += c.(ndkey.Mask).Rank()
		}
	}
	if ellipsisPos < 0 {
		return key, nil
	}

	// The ellipsis covers whatever part of the rank the other components
	// leave unaddressed.
	delta := max(0, shape.Rank()-claimed)
	expanded := make(ndkey.Key, 0, len(key)-1+delta)
	expanded = append(expanded, key[:ellipsisPos]...)
	for range delta {
		expanded = append(expanded, ndkey.FullRange())
	}
	expanded = append(expanded, key[ellipsisPos+1:]...)
	return expanded, nil
}

// IsBasic reports whether a key (after ellipsis expansion) uses basic
// indexing only: integers, ranges and new axes. Keys holding masks or index
// arrays use advanced indexing instead.
func IsBasic(key ndkey.Key) bool {
	for _, c := range key {
		if !BasicIndexingComponents.Has(c.Kind()) {
			return false
		}
	}
	return true
}

// basicItemShape walks the expanded key left to right with a source-axis
// cursor: ints consume an axis, ranges consume an axis and contribute their
// resolved length, new axes contribute a 1. Source axes past the key are
// kept unchanged.
func basicItemShape(shape shapes.Shape, key ndkey.Key) (shapes.Shape, error) {
	rank := shape.Rank()
	dims := make([]int, 0, rank+len(key))
	i := 0 // Source axis cursor.
	for _, c := range key {
		switch c.Kind() {
		case ndkey.KindInt:
			i++
		case ndkey.KindRange:
			if i >= rank {
				return shapes.Invalid(), errors.Wrapf(ErrKeyTooLong, "key %s addresses more axes than shape %s has", key, shape)
			}
			_, _, count, err := c.(ndkey.Range).Resolve(shape.Dimensions[i])
			if err != nil {
				return shapes.Invalid(), err
			}
			dims = append(dims, count)
			i++
		case ndkey.KindNewAxis:
			dims = append(dims, 1)
		}
	}
	if i > rank {
		return shapes.Invalid(), errors.Wrapf(ErrKeyTooLong, "key %s addresses %d axes, shape %s has only %d", key, i, shape, rank)
	}
	dims = append(dims, shape.Dimensions[i:]...)
	return shapes.Make(dims...), nil
}

// advancedItemShape handles keys with masks or index arrays. All indexing
// arrays (with masks decomposed into per-axis coordinate arrays) broadcast
// together to a single block of dimensions; that block lands at the position
// of the first array-producing component when they are contiguous in the
// key, or in front of everything when they are separated.
func advancedItemShape(shape shapes.Shape, key ndkey.Key) (shapes.Shape, error) {
	rank := shape.Rank()

	// Collect the shapes of all indexing arrays and detect separation.
	var arrayShapes []shapes.Shape
	separated := false
	lastArrayPos := -1
	for pos, c := range key {
		kind := c.Kind()
		if !ArrayProducingComponents.Has(kind) {
			if !BasicIndexingComponents.Has(kind) {
				return shapes.Invalid(), errors.Wrapf(ErrInvalidKey, "component %s (%s) is not supported by shape inference", c, kind)
			}
			continue
		}
		if lastArrayPos >= 0 && lastArrayPos < pos-1 {
			separated = true
		}
		lastArrayPos = pos
		switch kind {
		case ndkey.KindInt:
			arrayShapes = append(arrayShapes, shapes.Make())
		case ndkey.KindIndexArray:
			arrayShapes = append(arrayShapes, c.(ndkey.IndexArray).Shape())
		case ndkey.KindMask:
			for _, coords := range c.(ndkey.Mask).Nonzero() {
				arrayShapes = append(arrayShapes, coords.Shape())
			}
		}
	}

	broadcast, err := BroadcastShapes(arrayShapes...)
	if err != nil {
		return shapes.Invalid(), err
	}

	dims := make([]int, 0, rank+len(key)+broadcast.Rank())
	inserted := separated
	if separated {
		dims = append(dims, broadcast.Dimensions...)
	}
	i := 0 // Source axis cursor.
	for _, c := range key {
		switch kind := c.Kind(); kind {
		case ndkey.KindRange:
			if i >= rank {
				return shapes.Invalid(), errors.Wrapf(ErrKeyTooLong, "key %s addresses more axes than shape %s has", key, shape)
			}
			_, _, count, err := c.(ndkey.Range).Resolve(shape.Dimensions[i])
			if err != nil {
				return shapes.Invalid(), err
			}
			dims = append(dims, count)
			i++
		case ndkey.KindNewAxis:
			dims = append(dims, 1)
		default:
			// Array-producing component: the broadcast block lands at the
			// first one; the cursor advances by the source axes it consumes,
			// which for a mask is its rank (0 for a scalar boolean).
			if !inserted {
				dims = append(dims, broadcast.Dimensions...)
				inserted = true
			}
			if kind == ndkey.KindMask {
				mask := c.(ndkey.Mask)
				if i+mask.Rank() > rank {
					return shapes.Invalid(), errors.Wrapf(ErrKeyTooLong, "key %s addresses more axes than shape %s has", key, shape)
				}
				for d := range mask.Rank() {
					if mask.Shape().Dimensions[d] != shape.Dimensions[i+d] {
						return shapes.Invalid(), errors.Wrapf(ErrInvalidKey, "boolean mask shaped %s does not match the array axes %v it selects over", mask.Shape(), shape.Dimensions[i:i+mask.Rank()])
					}
				}
				i += mask.Rank()
			} else {
				i++
			}
		}
	}
	if i > rank {
		return shapes.Invalid(), errors.Wrapf(ErrKeyTooLong, "key %s addresses %d axes, shape %s has only %d", key, i, shape, rank)
	}
	dims = append(dims, shape.Dimensions[i:]...)
	return shapes.Make(dims...), nil
}

// BroadcastShapes returns the shape to which all the given shapes broadcast
// together, following the standard broadcasting rules: shapes align on their
// trailing axes and each aligned pair of dimensions must either match or
// have one side be 1. Called without arguments it returns the scalar shape.
//
// It fails with ErrBroadcast when a pair of dimensions is incompatible.
func BroadcastShapes(shapeList ...shapes.Shape) (output shapes.Shape, err error) {
	outputRank := 0
	for _, s := range shapeList {
		if !s.Ok() {
			return shapes.Invalid(), errors.Errorf("cannot broadcast the invalid shape %s", s)
		}
		outputRank = max(outputRank, s.Rank())
	}
	dims := make([]int, outputRank)
	for axis := range dims {
		dims[axis] = 1
	}
	for _, s := range shapeList {
		offset := outputRank - s.Rank()
		for axis, dim := range s.Dimensions {
			outAxis := offset + axis
			switch {
			case dims[outAxis] == dim || dim == 1:
				// Compatible, nothing to do.
			case dims[outAxis] == 1:
				dims[outAxis] = dim
			default:
				return shapes.Invalid(), errors.Wrapf(ErrBroadcast, "shape %s of axis %d is incompatible with the dimensions %v broadcast by its peers", s, axis, dims)
			}
		}
	}
	return shapes.Make(dims...), nil
}
