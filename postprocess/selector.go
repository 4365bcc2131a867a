package postprocess

import (
	"gonum.org/v1/gonum/floats"
)

// Selector defines the policy for choosing which anchor of the raw output
// tensor becomes the detection.  It is a swappable strategy so a future
// multi detection variant can replace the single subject policy without
// touching the rest of the pipeline.
type Selector interface {
	// Select returns the index of the winning anchor given the
	// objectness scores of all anchors
	Select(objectness []float32) int
}

// ArgMaxSelector picks the anchor with the highest objectness score.  No
// thresholding and no non-maximum suppression is applied, the system
// assumes at most one real subject per frame.  Ties are broken by the
// first occurrence in anchor order.
type ArgMaxSelector struct {
	// scratch is reused between runs for the float64 conversion
	scratch []float64
}

// NewArgMaxSelector returns an instance of the ArgMaxSelector
func NewArgMaxSelector() *ArgMaxSelector {
	return &ArgMaxSelector{}
}

// Select returns the index of the anchor holding the maximum objectness
// score
func (s *ArgMaxSelector) Select(objectness []float32) int {

	if cap(s.scratch) < len(objectness) {
		s.scratch = make([]float64, len(objectness))
	}

	s.scratch = s.scratch[:len(objectness)]

	for i, v := range objectness {
		s.scratch[i] = float64(v)
	}

	// MaxIdx returns the first index on equal maximum values which
	// keeps the scan stable for degenerate inputs
	return floats.MaxIdx(s.scratch)
}
