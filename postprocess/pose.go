package postprocess

import (
	"fmt"

	"github.com/swdee/go-poselite"
)

// Pose defines the struct for post processing the raw output of a single
// subject pose model
type Pose struct {
	// Params are the Model configuration parameters
	Params PoseParams
	// selector is the anchor selection policy
	selector Selector
	// idGen is a counter that increments and provides the next number
	// for each detection result ID
	idGen *idGenerator
	// anchor is a reusable buffer the winning anchors channel values are
	// copied into
	anchor []float32
}

// PoseParams defines the struct containing the pose model parameters to
// use for post processing operations
type PoseParams struct {
	// ChannelCount is the number of channels per anchor the Model emits
	ChannelCount int
	// AnchorCount is the number of candidate anchors the Model emits
	AnchorCount int
	// KeyPointsNumber is the number of COCO keypoints representing
	// different parts of the body the pose model is trained on
	KeyPointsNumber int
}

// PoseCOCOParams returns an instance of PoseParams configured with
// default values for a YOLOv8-pose Model trained on the COCO dataset
// featuring:
// - Channels: 56
// - Anchors: 8400
// - KeyPoints Number: 17
func PoseCOCOParams() PoseParams {
	return PoseParams{
		ChannelCount:    poselite.OutputChannels,
		AnchorCount:     poselite.OutputAnchors,
		KeyPointsNumber: poselite.KeyPointNum,
	}
}

// NewPose returns an instance of the Pose post processor using the
// ArgMax single subject selection policy
func NewPose(p PoseParams) *Pose {
	return NewPoseWithSelector(p, NewArgMaxSelector())
}

// NewPoseWithSelector returns an instance of the Pose post processor
// using the given anchor selection policy
func NewPoseWithSelector(p PoseParams, sel Selector) *Pose {
	return &Pose{
		Params:   p,
		selector: sel,
		idGen:    newIDGenerator(),
		anchor:   make([]float32, p.ChannelCount),
	}
}

// SelectBest takes the raw output tensor and extracts the single highest
// confidence detection in model input pixel coordinates.  The box is
// converted from center to corner format and the trailing channels into
// keypoint (x, y, score) triplets in verbatim network order.  A tensor
// whose shape does not match the configured channel and anchor counts is
// a contract violation of the inference collaborator and returns an
// error.
func (p *Pose) SelectBest(t *poselite.OutputTensor) (poselite.Detection, error) {

	if t.Channels() != p.Params.ChannelCount || t.Anchors() != p.Params.AnchorCount {
		return poselite.Detection{}, fmt.Errorf("%w: got [1,%d,%d], expected [1,%d,%d]",
			poselite.ErrShapeMismatch, t.Channels(), t.Anchors(),
			p.Params.ChannelCount, p.Params.AnchorCount)
	}

	// objectness scores of all anchors are contiguous in the channel
	// major layout, no data reordering is needed
	best := p.selector.Select(t.Channel(poselite.ChanObjectness))

	// copy the winning anchor out of the collaborator owned buffer
	p.anchor = t.Anchor(best, p.anchor)

	// center format to corner format, no clamping to image bounds at
	// this stage
	cx := p.anchor[poselite.ChanCenterX]
	cy := p.anchor[poselite.ChanCenterY]
	w := p.anchor[poselite.ChanWidth]
	h := p.anchor[poselite.ChanHeight]

	box := poselite.Box{
		X1: cx - w/2,
		Y1: cy - h/2,
	}
	box.X2 = box.X1 + w
	box.Y2 = box.Y1 + h

	keyPoints := make([]poselite.KeyPoint, p.Params.KeyPointsNumber)

	for j := 0; j < p.Params.KeyPointsNumber; j++ {
		keyPoints[j] = poselite.KeyPoint{
			X:     p.anchor[poselite.ChanKeyPoints+j*3],
			Y:     p.anchor[poselite.ChanKeyPoints+j*3+1],
			Score: p.anchor[poselite.ChanKeyPoints+j*3+2],
		}
	}

	return poselite.Detection{
		Box:       box,
		Score:     p.anchor[poselite.ChanObjectness],
		KeyPoints: keyPoints,
		ID:        p.idGen.GetNext(),
	}, nil
}
