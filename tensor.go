package poselite

import (
	"errors"
	"fmt"
)

const (
	// OutputChannels is the number of channels per anchor emitted by the
	// network, 4 box values + 1 objectness score + 17 keypoint triplets
	OutputChannels = 56
	// OutputAnchors is the number of candidate detection slots emitted
	// per inference
	OutputAnchors = 8400
	// KeyPointNum is the number of COCO keypoints the pose model is
	// trained on
	KeyPointNum = 17

	// channel layout within an anchor
	ChanCenterX    = 0
	ChanCenterY    = 1
	ChanWidth      = 2
	ChanHeight     = 3
	ChanObjectness = 4
	// ChanKeyPoints is the first keypoint channel, keypoints follow as
	// 17 (x, y, score) triplets
	ChanKeyPoints = 5
)

// ErrShapeMismatch is returned when an inference runtime hands back a
// tensor whose shape does not match the [1,56,8400] contract.  This is a
// configuration error of the collaborator, not a recoverable condition.
var ErrShapeMismatch = errors.New("output tensor shape mismatch")

// OutputTensor wraps the raw network output buffer in its [1,56,8400]
// channel major layout and provides strided access to anchor values
// without reordering the data.
type OutputTensor struct {
	// data is the flattened output buffer, channel major
	data []float32
	// channels per anchor
	channels int
	// anchors per inference
	anchors int
}

// NewOutputTensor wraps the given buffer as a [1,channels,anchors] tensor.
// The buffer length must match the shape exactly or ErrShapeMismatch is
// returned.
func NewOutputTensor(data []float32, channels, anchors int) (*OutputTensor, error) {

	if channels <= 0 || anchors <= 0 {
		return nil, fmt.Errorf("%w: non-positive shape [1,%d,%d]",
			ErrShapeMismatch, channels, anchors)
	}

	if len(data) != channels*anchors {
		return nil, fmt.Errorf("%w: have %d values, shape [1,%d,%d] requires %d",
			ErrShapeMismatch, len(data), channels, anchors, channels*anchors)
	}

	return &OutputTensor{
		data:     data,
		channels: channels,
		anchors:  anchors,
	}, nil
}

// At returns the value at the given channel and anchor
func (t *OutputTensor) At(channel, anchor int) float32 {
	return t.data[channel*t.anchors+anchor]
}

// Channel returns the contiguous slice of all anchor values for a single
// channel.  The slice aliases the tensor buffer and must not be modified.
func (t *OutputTensor) Channel(channel int) []float32 {
	return t.data[channel*t.anchors : (channel+1)*t.anchors]
}

// Anchor copies out all channel values for a single anchor.  The raw
// buffer is owned by the inference collaborator so values are copied
// before any further processing.
func (t *OutputTensor) Anchor(anchor int, dst []float32) []float32 {

	if cap(dst) < t.channels {
		dst = make([]float32, t.channels)
	}

	dst = dst[:t.channels]

	for c := 0; c < t.channels; c++ {
		dst[c] = t.data[c*t.anchors+anchor]
	}

	return dst
}

// Channels returns the number of channels per anchor
func (t *OutputTensor) Channels() int {
	return t.channels
}

// Anchors returns the number of anchors in the tensor
func (t *OutputTensor) Anchors() int {
	return t.anchors
}
