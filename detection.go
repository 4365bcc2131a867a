package poselite

// Box defines a bounding box in corner format.  Coordinates are not
// clamped to the image bounds, raw network output can produce corners
// outside the frame or with X2 < X1.
type Box struct {
	// X1 is the left coordinate
	X1 float32
	// Y1 is the top coordinate
	Y1 float32
	// X2 is the right coordinate
	X2 float32
	// Y2 is the bottom coordinate
	Y2 float32
}

// Width returns the box width
func (b Box) Width() float32 {
	return b.X2 - b.X1
}

// Height returns the box height
func (b Box) Height() float32 {
	return b.Y2 - b.Y1
}

// KeyPoint defines a single pose keypoint with its own confidence score.
// Score is in raw network units, conventionally near the [0,1] range but
// not guaranteed to be inside it.
type KeyPoint struct {
	// X coordinate of keypoint
	X float32
	// Y coordinate of keypoint
	Y float32
	// Score is the networks confidence of the keypoint
	Score float32
}

// Detection defines a single pose detection result.  A Detection is an
// immutable value, each processing stage returns a fresh copy rather than
// mutating in place.
type Detection struct {
	// Box is the bounding box around the detected subject
	Box Box
	// Score is the networks objectness confidence for the detection
	Score float32
	// KeyPoints are the pose keypoints in fixed network channel order
	KeyPoints []KeyPoint
	// ID is a unique detection result number
	ID int64
}
