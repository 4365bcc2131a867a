package render

import (
	"fmt"

	"github.com/swdee/go-poselite"
	"gocv.io/x/gocv"
)

/* skeleton keypoints
0: Nose
1: Left Eye
2: Right Eye
3: Left Ear
4: Right Ear
5: Left Shoulder
6: Right Shoulder
7: Left Elbow
8: Right Elbow
9: Left Wrist
10: Right Wrist
11: Left Hip
12: Right Hip
13: Left Knee
14: Right Knee
15: Left Ankle
16: Right Ankle
*/

// skeleton defines the pose skeleton points to draw lines between.  The
// numbers are paired, so (16,14) means draw line from right ankle to
// right knee.
var skeleton = [38]int{16, 14, 14, 12, 17, 15, 15, 13, 12, 13, 6, 12, 7, 13, 6, 7, 6, 8,
	7, 9, 8, 10, 9, 11, 2, 3, 1, 2, 1, 3, 2, 4, 3, 5, 4, 6, 5, 7}

// Pose renders a single pose detection onto a draw surface with
// confidence gating at two granularities.  The detection level score
// gates the whole frame, each keypoint is then gated by its own score
// against the same threshold.  The two comparisons are deliberately
// independent, collapsing them into one check changes behavior.
type Pose struct {
	// Font used for the score label
	Font Font
	// LineThickness of the bounding box and skeleton limbs
	LineThickness int
	// CircleRadius of the keypoint markers
	CircleRadius int
	// DrawSkeleton enables limb lines between keypoints that pass the
	// confidence gate
	DrawSkeleton bool
}

// NewPose returns a Pose renderer with default style settings
func NewPose() *Pose {
	return &Pose{
		Font:          DefaultFont(),
		LineThickness: 2,
		CircleRadius:  3,
		DrawSkeleton:  true,
	}
}

// Render draws the detection over the source image if its score passes
// the confidence threshold.  A score equal to the threshold is treated
// as below it and nothing is drawn, returning false.  Otherwise the
// surface is cleared to the source dimensions, the image drawn as
// background, the bounding box stroked with its score label, and each
// keypoint whose own score passes the threshold drawn as a marker.
func (p *Pose) Render(img gocv.Mat, det poselite.Detection,
	threshold float32, surface Surface) bool {

	// a score equal to the threshold counts as below it
	if det.Score <= threshold {
		// nothing to draw is a normal outcome, not an error
		return false
	}

	width := img.Cols()
	height := img.Rows()

	surface.Clear(width, height)
	surface.DrawImage(img, width, height)

	// bounding box with score label
	surface.StrokeRect(det.Box.X1, det.Box.Y1, det.Box.X2, det.Box.Y2,
		BoxColor, p.LineThickness)

	text := fmt.Sprintf("person %.2f", det.Score)
	surface.Label(text, det.Box.X1, det.Box.Y1, BoxColor, p.Font)

	// the skeleton pairs index the 17 COCO keypoints
	if p.DrawSkeleton && len(det.KeyPoints) >= poselite.KeyPointNum {
		// draw skeleton lines between keypoint pairs where both ends
		// pass the gate
		for j := 0; j < len(skeleton)/2; j++ {
			a := det.KeyPoints[skeleton[2*j]-1]
			b := det.KeyPoints[skeleton[2*j+1]-1]

			if a.Score > threshold && b.Score > threshold {
				surface.Line(a.X, a.Y, b.X, b.Y, limbColors[j], p.LineThickness)
			}
		}
	}

	// draw circles at skeleton joints
	for j, kp := range det.KeyPoints {
		if kp.Score > threshold {
			surface.FillCircle(kp.X, kp.Y, p.CircleRadius,
				keyPointColors[j%len(keyPointColors)])
		}
	}

	return true
}
