// Package ndindex computes the shape produced by indexing an n-dimensional
// array with a numpy-style key, without touching any array data.
//
// Among its features:
//
//   - Shape inference: ItemShape sizes basic and advanced indexing keys
//     (integers, ranges, new axes, an ellipsis, boolean masks and integer
//     index arrays) in time proportional to the key, not the array.
//   - Error fidelity: keys the inference cannot size are replayed against a
//     placeholder array of the dense reference engine, so the error reads
//     exactly as a real indexing call would report it.
//   - Written purely in Go, no C/C++ external dependencies.
//
// The unguarded stages live in the shapeinference package; the reference
// engine that actually gathers data lives in the dense package; keys and
// shapes are built with the types/ndkey and types/shapes packages.
package ndindex

import (
	"os"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/ndindex/dense"
	"github.com/gomlx/ndindex/shapeinference"
	"github.com/gomlx/ndindex/types/ndkey"
	"github.com/gomlx/ndindex/types/shapes"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

var (
	// Disabled turns ItemShape off: every call returns ErrDisabled and the
	// caller falls back to its own behavior. It is initialized at program
	// start from NDINDEX_DISABLE=1 and may be overridden by the embedding
	// runtime before any calls.
	Disabled = os.Getenv("NDINDEX_DISABLE") == "1"

	// ErrDisabled is returned by ItemShape while Disabled is set.
	ErrDisabled = errors.New("ndindex is disabled (NDINDEX_DISABLE=1)")

	// ErrInternal is returned when shape inference rejects a key that the
	// reference engine then accepts: one of the two is wrong, and the
	// mismatch should be reported rather than papered over.
	ErrInternal = errors.New("shape inference rejected a key the reference engine accepts")
)

// inferItemShape is replaced in tests to exercise the replay guard.
var inferItemShape = shapeinference.ItemShape

// ItemShape returns the shape of a[key] for an array of the given shape.
//
// Structural problems are reported with the shapeinference sentinels
// wrapped in; keys the inference cannot size are replayed against a
// placeholder dense array and the reference engine's own error is returned
// unchanged, so callers see the same message a real indexing call would
// produce. The replay allocates an array of the full shape; that cost is
// only paid on the error path.
func ItemShape(shape shapes.Shape, key ndkey.Key) (output shapes.Shape, err error) {
	if Disabled {
		return shapes.Invalid(), ErrDisabled
	}
	output, err = inferItemShape(shape, key)
	if err == nil {
		return output, nil
	}
	klog.V(2).Infof("ndindex: replaying key %s on shape %s after inference error: %v", key, shape, err)

	inferenceErr := err
	replayErr := exceptions.TryCatch[error](func() { dense.Empty(dtypes.Float64, shape).Index(key) })
	if replayErr != nil {
		return shapes.Invalid(), replayErr
	}
	return shapes.Invalid(), errors.Wrapf(ErrInternal, "inference of key %s on shape %s failed with %q, but the replay sized it", key, shape, inferenceErr)
}
