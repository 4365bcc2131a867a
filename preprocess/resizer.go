package preprocess

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/swdee/go-poselite"
	"gocv.io/x/gocv"
)

// input buffer pool name
const inputPoolName = "input"

// Resizer defines the struct used for converting a source image into the
// models normalized [1,H,W,3] float32 input buffer using gocv.  Padding
// to the virtual square happens before the resize so no aspect distortion
// is introduced.
type Resizer struct {
	// letterbox parameters used in scaling
	letterbox *Letterbox
	// padMat is a Mat holding the zero padded square canvas
	padMat gocv.Mat
	// resizeMat is a Mat holding the resized model input
	resizeMat gocv.Mat
	// floatMat is a Mat holding the normalized float32 pixels
	floatMat gocv.Mat
	// pool bounds input buffer allocations across pipeline runs
	pool bufferProvider
}

// bufferProvider is the subset of the poselite buffer pool used by
// resizers
type bufferProvider interface {
	Create(name string, maxSize int) error
	Get(name string, size int) []float32
	Put(name string, buf []float32)
}

// NewResizer returns a resizer that scales source images of the given
// dimensions to the model input tensor size.  Buffers for the produced
// input tensors are drawn from the given pool.
func NewResizer(srcWidth, srcHeight, destWidth, destHeight int,
	pool bufferProvider) (*Resizer, error) {

	r := &Resizer{
		letterbox: NewLetterbox(srcWidth, srcHeight, destWidth, destHeight),
		padMat:    gocv.NewMat(),
		resizeMat: gocv.NewMat(),
		floatMat:  gocv.NewMat(),
		pool:      pool,
	}

	// a resizer recreated for a new source size reuses the existing
	// registration, model input dimensions are fixed per model
	err := pool.Create(inputPoolName, destWidth*destHeight*3)

	if err != nil && !errors.Is(err, poselite.ErrPoolExists) {
		return nil, fmt.Errorf("error creating input buffer pool: %w", err)
	}

	return r, nil
}

// Close frees memory allocated during the resize process
func (r *Resizer) Close() error {

	if err := r.padMat.Close(); err != nil {
		return err
	}

	if err := r.resizeMat.Close(); err != nil {
		return err
	}

	return r.floatMat.Close()
}

// Letterbox returns the letterbox parameters used by the resizer, needed
// by post processing to unmap detection coordinates to source space
func (r *Resizer) Letterbox() *Letterbox {
	return r.letterbox
}

// Preprocess converts the source image into the models input buffer.
// The source is zero padded to the virtual square, resized to the model
// input dimensions with bilinear interpolation and normalized to [0,1]
// with a leading batch axis of 1.  The returned buffer must be handed
// back via Release once the pipeline run completes.
func (r *Resizer) Preprocess(src gocv.Mat) ([]float32, error) {

	lb := r.letterbox

	if src.Cols() != lb.SrcWidth() || src.Rows() != lb.SrcHeight() {
		return nil, fmt.Errorf("source dimensions %dx%d do not match resizer %dx%d",
			src.Cols(), src.Rows(), lb.SrcWidth(), lb.SrcHeight())
	}

	// pad shorter axis with zero pixels to center the source on the
	// square canvas
	gocv.CopyMakeBorder(src, &r.padMat, lb.YPad(), lb.YPadBottom(),
		lb.XPad(), lb.XPadRight(), gocv.BorderConstant,
		color.RGBA{R: 0, G: 0, B: 0, A: 255})

	// resize square canvas to model input size
	gocv.Resize(r.padMat, &r.resizeMat,
		image.Pt(lb.DestWidth(), lb.DestHeight()),
		0, 0, gocv.InterpolationLinear)

	// normalize pixel intensities to [0,1]
	r.resizeMat.ConvertToWithParams(&r.floatMat, gocv.MatTypeCV32FC3,
		1.0/255.0, 0)

	pixels, err := r.floatMat.DataPtrFloat32()

	if err != nil {
		return nil, fmt.Errorf("error reading normalized pixels: %w", err)
	}

	// copy into a pooled buffer so no Mat memory escapes this call.  the
	// Mat layout is interleaved HWC which is the [1,H,W,3] contract with
	// the batch axis implicit in the length
	buf := r.pool.Get(inputPoolName, lb.DestWidth()*lb.DestHeight()*3)
	copy(buf, pixels)

	return buf, nil
}

// Release returns an input buffer obtained from Preprocess back to the
// pool.  Failing to release buffers under continuous video operation is
// an unbounded leak.
func (r *Resizer) Release(buf []float32) {
	r.pool.Put(inputPoolName, buf)
}
