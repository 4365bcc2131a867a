package render

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// Surface defines the capability set of a draw surface collaborator.
// Coordinates are in source image pixel space, values outside the surface
// bounds are legal and are clipped by the implementation.
type Surface interface {
	// Resize sets the surface dimensions
	Resize(width, height int)
	// Clear resets the surface to black at the given dimensions
	Clear(width, height int)
	// DrawImage draws the source image scaled to the given dimensions
	DrawImage(src gocv.Mat, width, height int)
	// StrokeRect strokes a rectangle outline between two corners
	StrokeRect(x1, y1, x2, y2 float32, clr color.RGBA, thickness int)
	// FillCircle draws a filled circle marker
	FillCircle(x, y float32, radius int, clr color.RGBA)
	// Line draws a line between two points
	Line(x1, y1, x2, y2 float32, clr color.RGBA, thickness int)
	// Label draws a text label with a filled background box, the given
	// point is the top left of the label
	Label(text string, x, y float32, clr color.RGBA, font Font)
}

// MatSurface is a Surface drawing onto a gocv Mat
type MatSurface struct {
	// mat is the destination image
	mat *gocv.Mat
}

// NewMatSurface returns a Surface that draws onto the given Mat
func NewMatSurface(mat *gocv.Mat) *MatSurface {
	return &MatSurface{
		mat: mat,
	}
}

// Resize sets the Mat dimensions, reallocating when they change
func (s *MatSurface) Resize(width, height int) {

	if s.mat.Cols() == width && s.mat.Rows() == height && !s.mat.Empty() {
		return
	}

	old := *s.mat
	*s.mat = gocv.NewMatWithSize(height, width, gocv.MatTypeCV8UC3)

	if !old.Empty() {
		old.Close()
	}
}

// Clear resets the Mat to black at the given dimensions
func (s *MatSurface) Clear(width, height int) {
	s.Resize(width, height)
	s.mat.SetTo(gocv.NewScalar(0, 0, 0, 0))
}

// DrawImage draws the source image scaled to the given dimensions
func (s *MatSurface) DrawImage(src gocv.Mat, width, height int) {

	s.Resize(width, height)

	if src.Cols() == width && src.Rows() == height {
		src.CopyTo(s.mat)
		return
	}

	gocv.Resize(src, s.mat, image.Pt(width, height), 0, 0,
		gocv.InterpolationLinear)
}

// StrokeRect strokes a rectangle outline between two corners
func (s *MatSurface) StrokeRect(x1, y1, x2, y2 float32, clr color.RGBA,
	thickness int) {

	rect := image.Rect(int(x1), int(y1), int(x2), int(y2))
	gocv.Rectangle(s.mat, rect, clr, thickness)
}

// FillCircle draws a filled circle marker
func (s *MatSurface) FillCircle(x, y float32, radius int, clr color.RGBA) {
	gocv.Circle(s.mat, image.Pt(int(x), int(y)), radius, clr, -1)
}

// Line draws a line between two points
func (s *MatSurface) Line(x1, y1, x2, y2 float32, clr color.RGBA,
	thickness int) {

	gocv.Line(s.mat, image.Pt(int(x1), int(y1)), image.Pt(int(x2), int(y2)),
		clr, thickness)
}

// Label draws a text label on a filled background box above the given
// point
func (s *MatSurface) Label(text string, x, y float32, clr color.RGBA,
	font Font) {

	textSize := gocv.GetTextSize(text, font.Face, font.Scale, font.Thickness)

	// box for placing text on
	bRect := image.Rect(int(x)-font.LeftPad,
		int(y)-textSize.Y-font.TopPad-font.BottomPad,
		int(x)+textSize.X+font.RightPad, int(y))

	gocv.Rectangle(s.mat, bRect, clr, -1)

	// draw the label over box
	gocv.PutTextWithParams(s.mat, text,
		image.Pt(int(x), int(y)-font.BottomPad),
		font.Face, font.Scale, font.Color, font.Thickness,
		font.LineType, false)
}
