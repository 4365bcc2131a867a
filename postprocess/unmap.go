package postprocess

import (
	"github.com/swdee/go-poselite"
	"github.com/swdee/go-poselite/preprocess"
)

// Unmap rewrites a detection from model input pixel coordinates into
// source image pixel coordinates using the letterbox parameters the
// frame was preprocessed with.  Each coordinate is transformed
// independently by coord*scale - pad, the exact algebraic inverse of the
// pad then resize forward transform.  Confidence values pass through
// unchanged and a fresh Detection is returned, the input is not
// modified.  Coordinates are not clamped, a raw box extending past the
// padded region legitimately unmaps outside the source bounds.
func Unmap(det poselite.Detection, lb *preprocess.Letterbox) poselite.Detection {

	scale := lb.ScaleFactor()
	xPad := float32(lb.XPad())
	yPad := float32(lb.YPad())

	out := poselite.Detection{
		Box: poselite.Box{
			X1: det.Box.X1*scale - xPad,
			Y1: det.Box.Y1*scale - yPad,
			X2: det.Box.X2*scale - xPad,
			Y2: det.Box.Y2*scale - yPad,
		},
		Score:     det.Score,
		KeyPoints: make([]poselite.KeyPoint, len(det.KeyPoints)),
		ID:        det.ID,
	}

	for i, kp := range det.KeyPoints {
		out.KeyPoints[i] = poselite.KeyPoint{
			X:     kp.X*scale - xPad,
			Y:     kp.Y*scale - yPad,
			Score: kp.Score,
		}
	}

	return out
}
