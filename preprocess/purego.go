package preprocess

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/swdee/go-poselite"
	"golang.org/x/image/draw"
)

// PureResizer is a Resizer variant built on pure Go image processing for
// hosts without OpenCV.  It produces the same normalized [1,H,W,3] input
// buffer as Resizer, padding to the virtual square with black pixels
// before a bilinear resize to the model input dimensions.
type PureResizer struct {
	// letterbox parameters used in scaling
	letterbox *Letterbox
	// scaled holds the resized model input pixels between runs
	scaled *image.RGBA
	// pool bounds input buffer allocations across pipeline runs
	pool bufferProvider
}

// NewPureResizer returns a pure Go resizer that scales source images of
// the given dimensions to the model input tensor size
func NewPureResizer(srcWidth, srcHeight, destWidth, destHeight int,
	pool bufferProvider) (*PureResizer, error) {

	r := &PureResizer{
		letterbox: NewLetterbox(srcWidth, srcHeight, destWidth, destHeight),
		scaled:    image.NewRGBA(image.Rect(0, 0, destWidth, destHeight)),
		pool:      pool,
	}

	err := pool.Create(inputPoolName, destWidth*destHeight*3)

	if err != nil && !errors.Is(err, poselite.ErrPoolExists) {
		return nil, fmt.Errorf("error creating input buffer pool: %w", err)
	}

	return r, nil
}

// Letterbox returns the letterbox parameters used by the resizer
func (r *PureResizer) Letterbox() *Letterbox {
	return r.letterbox
}

// Preprocess converts the source image into the models input buffer.
// The returned buffer must be handed back via Release once the pipeline
// run completes.
func (r *PureResizer) Preprocess(src image.Image) ([]float32, error) {

	lb := r.letterbox

	bounds := src.Bounds()

	if bounds.Dx() != lb.SrcWidth() || bounds.Dy() != lb.SrcHeight() {
		return nil, fmt.Errorf("source dimensions %dx%d do not match resizer %dx%d",
			bounds.Dx(), bounds.Dy(), lb.SrcWidth(), lb.SrcHeight())
	}

	// center the source on a black square canvas
	canvas := imaging.New(lb.Square(), lb.Square(), color.NRGBA{A: 255})
	canvas = imaging.Paste(canvas, src, image.Pt(lb.XPad(), lb.YPad()))

	// bilinear resize of the square canvas to the model input size
	draw.BiLinear.Scale(r.scaled, r.scaled.Bounds(), canvas, canvas.Bounds(),
		draw.Src, nil)

	// normalize pixel intensities to [0,1] while filling the buffer
	buf := r.pool.Get(inputPoolName, lb.DestWidth()*lb.DestHeight()*3)

	i := 0
	for y := 0; y < lb.DestHeight(); y++ {
		row := r.scaled.Pix[y*r.scaled.Stride : y*r.scaled.Stride+lb.DestWidth()*4]

		for x := 0; x < lb.DestWidth(); x++ {
			buf[i] = float32(row[x*4]) / 255.0
			buf[i+1] = float32(row[x*4+1]) / 255.0
			buf[i+2] = float32(row[x*4+2]) / 255.0
			i += 3
		}
	}

	return buf, nil
}

// Release returns an input buffer obtained from Preprocess back to the
// pool
func (r *PureResizer) Release(buf []float32) {
	r.pool.Put(inputPoolName, buf)
}
