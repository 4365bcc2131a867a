package preprocess

// Letterbox holds the precalculated parameters for mapping a source image
// into a square model input and back.  The source is centered on a virtual
// square canvas of side max(srcWidth, srcHeight) with zero valued padding,
// the canvas is then resized to the model input dimensions.  Scale is the
// ratio of the virtual square side to the model input width, the square
// model input policy means a single scale factor serves both axes.
type Letterbox struct {
	// srcWidth is the width of the source image
	srcWidth int
	// srcHeight is the height of the source image
	srcHeight int
	// destWidth is the width of the model input tensor
	destWidth int
	// destHeight is the height of the model input tensor
	destHeight int
	// square is the side of the virtual square canvas
	square int
	// letterbox parameters used in scaling
	xPad  int
	yPad  int
	scale float32
}

// NewLetterbox returns the letterbox parameters for scaling a source image
// of the given dimensions to the model input tensor size.  All dimensions
// must be positive, this is a precondition the caller guarantees from
// measured image dimensions.
func NewLetterbox(srcWidth, srcHeight, destWidth, destHeight int) *Letterbox {
	l := &Letterbox{
		srcWidth:   srcWidth,
		srcHeight:  srcHeight,
		destWidth:  destWidth,
		destHeight: destHeight,
	}

	// precalculate scaling parameters
	l.preCalc()

	return l
}

// preCalc the padding and scale factor
func (l *Letterbox) preCalc() {

	l.square = l.srcWidth

	if l.srcHeight > l.srcWidth {
		l.square = l.srcHeight
	}

	// pad the shorter axis, floor half before and the remainder after so
	// pad totals are exact with at most 1 pixel asymmetry on odd
	// differences
	l.xPad = (l.square - l.srcWidth) / 2
	l.yPad = (l.square - l.srcHeight) / 2

	// scale is derived from model width only, the padding strategy
	// assumes a square model input
	l.scale = float32(l.square) / float32(l.destWidth)
}

// ScaleFactor returns the scale factor of the letterbox resize, the ratio
// of the virtual square side to the model input width
func (l *Letterbox) ScaleFactor() float32 {
	return l.scale
}

// Square returns the side of the virtual square canvas the source is
// padded to before resizing
func (l *Letterbox) Square() int {
	return l.square
}

// XPad returns the left padding of the letterbox
func (l *Letterbox) XPad() int {
	return l.xPad
}

// YPad returns the top padding of the letterbox
func (l *Letterbox) YPad() int {
	return l.yPad
}

// XPadRight returns the right padding, the remainder after the floored
// left padding
func (l *Letterbox) XPadRight() int {
	return l.square - l.srcWidth - l.xPad
}

// YPadBottom returns the bottom padding, the remainder after the floored
// top padding
func (l *Letterbox) YPadBottom() int {
	return l.square - l.srcHeight - l.yPad
}

// SrcWidth returns the width of the source image
func (l *Letterbox) SrcWidth() int {
	return l.srcWidth
}

// SrcHeight returns the height of the source image
func (l *Letterbox) SrcHeight() int {
	return l.srcHeight
}

// DestWidth returns the width of the model input tensor
func (l *Letterbox) DestWidth() int {
	return l.destWidth
}

// DestHeight returns the height of the model input tensor
func (l *Letterbox) DestHeight() int {
	return l.destHeight
}
