// Package ndkey models n-dimensional array indexing keys: the sequence of
// per-axis selectors written between the brackets of a[...].
//
// A Key is a sequence of Components, a closed set of variants dispatched on
// Kind():
//
//   - Int selects a single position and removes its axis.
//   - Range selects a start:stop:step run over one axis, resolved with
//     Python's clipping rules.
//   - NewAxis inserts a length-1 axis and consumes no source axis.
//   - Ellipsis stands for as many full ranges as needed to cover the rank.
//   - Mask is a boolean array selecting positions over the axes it spans.
//   - IndexArray is an integer array of positions, broadcast with its peers.
//   - Field names a field of a structured element type; it is carried but
//     never resolved by shape inference, only by the reference engine.
//
// Keys and their components are transient per-call values and are never
// mutated after construction.
package ndkey

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gomlx/ndindex/types/shapes"
	"github.com/pkg/errors"
)

// Kind discriminates the Component variants, so consumers can pattern-match
// without probing dynamic types.
type Kind int

//go:generate go tool enumer -type=Kind -trimprefix=Kind -output=gen_kind_enumer.go ndkey.go

const (
	KindInvalid Kind = iota
	KindInt
	KindRange
	KindNewAxis
	KindEllipsis
	KindMask
	KindIndexArray
	KindField
)

// Component is one entry of an indexing Key.
//
// The set of implementations in this package is closed; consumers treat any
// other Kind as an unsupported key and delegate it to the reference engine.
type Component interface {
	Kind() Kind
	String() string
}

// Key is an indexing expression: one Component per selector, in order.
// A single bare selector is written as a one-element Key.
type Key []Component

// String renders the key the way it would appear between brackets.
func (key Key) String() string {
	parts := make([]string, len(key))
	for i, c := range key {
		parts[i] = c.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// ErrZeroStep is returned when resolving a Range whose step is zero.
var ErrZeroStep = errors.New("slice step cannot be zero")

// Int selects a single position along one axis. Negative values count from
// the end of the axis, following the usual array-indexing convention.
type Int int

// Kind implements Component.
func (i Int) Kind() Kind { return KindInt }

// String implements fmt.Stringer.
func (i Int) String() string { return strconv.Itoa(int(i)) }

// Unbounded marks a Range bound as not set, the equivalent of an omitted
// bound in a start:stop:step expression.
const Unbounded = math.MinInt

// Range selects the start:stop:step run of one axis, following Python slice
// semantics: negative bounds count from the end of the axis and out-of-range
// bounds are clipped, so resolving a Range never fails for a too-short axis.
//
// Any of the three fields may be Unbounded. Note that the zero value selects
// an empty run with step zero, which is invalid; use FullRange for the
// whole-axis selector.
type Range struct {
	Start, Stop, Step int
}

// FullRange returns the Range that selects a whole axis, the ":" selector.
func FullRange() Range {
	return Range{Start: Unbounded, Stop: Unbounded, Step: Unbounded}
}

// NewRange returns the Range [start:stop] with step 1.
func NewRange(start, stop int) Range {
	return Range{Start: start, Stop: stop, Step: 1}
}

// Kind implements Component.
func (r Range) Kind() Kind { return KindRange }

// String implements fmt.Stringer, rendering the Python "start:stop:step"
// form with omitted unbounded fields.
func (r Range) String() string {
	var b strings.Builder
	if r.Start != Unbounded {
		b.WriteString(strconv.Itoa(r.Start))
	}
	b.WriteByte(':')
	if r.Stop != Unbounded {
		b.WriteString(strconv.Itoa(r.Stop))
	}
	if r.Step != Unbounded && r.Step != 1 {
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(r.Step))
	}
	return b.String()
}

// Resolve clamps the range against an axis of the given length and returns
// the concrete start position, the step and the number of selected positions.
// It implements Python's slice.indices clipping rules, including negative
// bounds and negative steps.
//
// It only fails for a zero step (ErrZeroStep).
func (r Range) Resolve(dim int) (start, step, count int, err error) {
	step = r.Step
	if step == Unbounded {
		step = 1
	}
	if step == 0 {
		err = errors.Wrapf(ErrZeroStep, "resolving range %q", r)
		return
	}

	var lower, upper int
	if step > 0 {
		lower, upper = 0, dim
	} else {
		lower, upper = -1, dim-1
	}

	start = r.Start
	switch {
	case start == Unbounded:
		if step > 0 {
			start = lower
		} else {
			start = upper
		}
	case start < 0:
		start = max(start+dim, lower)
	default:
		start = min(start, upper)
	}

	stop := r.Stop
	switch {
	case stop == Unbounded:
		if step > 0 {
			stop = upper
		} else {
			stop = lower
		}
	case stop < 0:
		stop = max(stop+dim, lower)
	default:
		stop = min(stop, upper)
	}

	if step > 0 {
		count = max(0, (stop-start+step-1)/step)
	} else {
		count = max(0, (stop-start+step+1)/step)
	}
	return
}

type newAxisMarker struct{}

func (newAxisMarker) Kind() Kind     { return KindNewAxis }
func (newAxisMarker) String() string { return "newaxis" }

// NewAxis inserts a new axis of length 1 at its position in the key. It
// consumes no source axis.
var NewAxis Component = newAxisMarker{}

type ellipsisMarker struct{}

func (ellipsisMarker) Kind() Kind     { return KindEllipsis }
func (ellipsisMarker) String() string { return "..." }

// Ellipsis expands to as many full-range selectors as needed for the key to
// address the whole rank of the array. At most one per key.
var Ellipsis Component = ellipsisMarker{}

// Mask is a boolean array used as an indexing component. It selects the
// positions where it is true over the axes it spans: a rank-r mask spans r
// consecutive source axes. The rank-0 mask (see Bool) spans no source axis
// and behaves like a length-1 (true) or length-0 (false) inserted axis.
type Mask struct {
	shape  shapes.Shape
	values []bool
}

// NewMask creates a Mask with the given shape from row-major values.
// len(values) must equal shape.Size().
func NewMask(shape shapes.Shape, values []bool) (Mask, error) {
	if !shape.Ok() {
		return Mask{}, errors.Errorf("cannot create a mask with the invalid shape %s", shape)
	}
	if len(values) != shape.Size() {
		return Mask{}, errors.Errorf("mask of shape %s requires %d values, got %d", shape, shape.Size(), len(values))
	}
	return Mask{shape: shape.Clone(), values: append([]bool(nil), values...)}, nil
}

// Bool returns the rank-0 Mask holding a single boolean.
func Bool(value bool) Mask {
	return Mask{shape: shapes.Make(), values: []bool{value}}
}

// Kind implements Component.
func (m Mask) Kind() Kind { return KindMask }

// Shape of the mask.
func (m Mask) Shape() shapes.Shape { return m.shape }

// Rank of the mask, the number of source axes it spans.
func (m Mask) Rank() int { return m.shape.Rank() }

// Values returns the row-major mask values. The returned slice is shared and
// must not be modified.
func (m Mask) Values() []bool { return m.values }

// CountTrue returns the number of true entries, which is the number of
// positions the mask selects.
func (m Mask) CountTrue() int {
	count := 0
	for _, v := range m.values {
		if v {
			count++
		}
	}
	return count
}

// Nonzero decomposes the mask into one coordinate array per spanned axis,
// each listing, in row-major order of the true entries, the position of that
// entry along the axis. All returned arrays are rank-1 with length
// CountTrue(). A rank-0 mask is treated as rank-1 of length 1, so it yields
// a single array of length CountTrue().
func (m Mask) Nonzero() []IndexArray {
	rank := max(1, m.Rank())
	dims := m.shape.Dimensions
	if m.Rank() == 0 {
		dims = []int{1}
	}
	count := m.CountTrue()
	coords := make([][]int, rank)
	for axis := range coords {
		coords[axis] = make([]int, 0, count)
	}
	pos := make([]int, rank)
	for _, v := range m.values {
		if v {
			for axis := range coords {
				coords[axis] = append(coords[axis], pos[axis])
			}
		}
		for axis := rank - 1; axis >= 0; axis-- {
			pos[axis]++
			if pos[axis] < dims[axis] {
				break
			}
			pos[axis] = 0
		}
	}
	arrays := make([]IndexArray, rank)
	for axis := range arrays {
		arrays[axis] = IndexArray{shape: shapes.Make(count), values: coords[axis]}
	}
	return arrays
}

// String implements fmt.Stringer. A rank-0 mask prints its boolean value.
func (m Mask) String() string {
	if m.Rank() == 0 {
		return strconv.FormatBool(m.values[0])
	}
	return fmt.Sprintf("mask%s", m.shape)
}

// IndexArray is an integer array used as an indexing component: each value
// is a position along the source axis the array consumes. During advanced
// indexing all IndexArray components (and the coordinate arrays masks
// decompose into) are broadcast together.
type IndexArray struct {
	shape  shapes.Shape
	values []int
}

// NewIndexArray creates an IndexArray with the given shape from row-major
// values. len(values) must equal shape.Size().
func NewIndexArray(shape shapes.Shape, values []int) (IndexArray, error) {
	if !shape.Ok() {
		return IndexArray{}, errors.Errorf("cannot create an index array with the invalid shape %s", shape)
	}
	if len(values) != shape.Size() {
		return IndexArray{}, errors.Errorf("index array of shape %s requires %d values, got %d", shape, shape.Size(), len(values))
	}
	return IndexArray{shape: shape.Clone(), values: append([]int(nil), values...)}, nil
}

// Ints returns the rank-1 IndexArray with the given values.
func Ints(values ...int) IndexArray {
	return IndexArray{shape: shapes.Make(len(values)), values: append([]int(nil), values...)}
}

// Kind implements Component.
func (a IndexArray) Kind() Kind { return KindIndexArray }

// Shape of the array.
func (a IndexArray) Shape() shapes.Shape { return a.shape }

// Rank of the array.
func (a IndexArray) Rank() int { return a.shape.Rank() }

// Values returns the row-major positions. The returned slice is shared and
// must not be modified.
func (a IndexArray) Values() []int { return a.values }

// String implements fmt.Stringer.
func (a IndexArray) String() string {
	if a.Rank() == 0 {
		return fmt.Sprintf("array(%d)", a.values[0])
	}
	return fmt.Sprintf("array%s", a.shape)
}

// Field selects a named field of a structured element type. Shape inference
// never resolves fields; keys holding one are delegated to the reference
// engine, which reports them with its own error.
type Field string

// Kind implements Component.
func (f Field) Kind() Kind { return KindField }

// String implements fmt.Stringer.
func (f Field) String() string { return fmt.Sprintf("field(%q)", string(f)) }
