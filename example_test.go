package ndindex_test

import (
	"fmt"

	"github.com/gomlx/ndindex"
	"github.com/gomlx/ndindex/types/ndkey"
	"github.com/gomlx/ndindex/types/shapes"
	"github.com/janpfeifer/must"
)

// Two integer arrays separated by a full range: their broadcast block moves
// to the front of the result.
func ExampleItemShape() {
	shape := shapes.Make(5, 6, 7)
	rows := ndkey.Ints(0, 2)
	output := must.M1(ndindex.ItemShape(shape, ndkey.Key{rows, ndkey.FullRange(), rows}))
	fmt.Println(output)
	// Output: [2 6]
}

// A boolean mask covering the whole array selects one position per true
// entry.
func ExampleItemShape_mask() {
	mask := must.M1(ndkey.MaskFromAny([][]bool{
		{true, false, true},
		{false, true, false},
	}))
	output := must.M1(ndindex.ItemShape(shapes.Make(2, 3), ndkey.Key{mask}))
	fmt.Println(output)
	// Output: [3]
}
