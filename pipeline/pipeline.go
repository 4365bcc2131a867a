// Package pipeline wires the per frame processing stages together,
// preprocess, inference, selection, unmapping and the gated render.
package pipeline

import (
	"fmt"
	"sync/atomic"

	"github.com/swdee/go-poselite"
	"github.com/swdee/go-poselite/postprocess"
	"github.com/swdee/go-poselite/preprocess"
	"github.com/swdee/go-poselite/render"
	"gocv.io/x/gocv"
)

// Preprocessor converts a source frame into the models input buffer
type Preprocessor interface {
	Preprocess(src gocv.Mat) ([]float32, error)
	Release(buf []float32)
	Letterbox() *preprocess.Letterbox
	Close() error
}

// Renderer draws a detection onto a surface if it passes the confidence
// gate
type Renderer interface {
	Render(img gocv.Mat, det poselite.Detection, threshold float32,
		surface render.Surface) bool
}

// Pipeline runs the synchronous per frame processing sequence.  Frames
// are processed one at a time, the caller schedules the next frame only
// after the current one returns which gives natural backpressure, slow
// inference throttles the frame rate with no queue buildup.  All
// intermediate buffers are returned to their pools before ProcessFrame
// returns so memory use is bounded under continuous operation.
type Pipeline struct {
	// Threshold is the confidence gate applied at render time
	Threshold float32

	// inferencer runs the model forward pass
	inferencer poselite.Inferencer
	// pose decodes the raw output tensor
	pose *postprocess.Pose
	// renderer draws gated detections
	renderer Renderer
	// surface receives the draw calls
	surface render.Surface
	// pre converts frames to input buffers, recreated when the source
	// dimensions change
	pre Preprocessor
	// newPre creates a preprocessor for a source size
	newPre func(srcWidth, srcHeight int) (Preprocessor, error)
	// pool bounds intermediate buffer allocations
	pool bufferProvider

	// stopped blocks any further draws once set
	stopped atomic.Bool
	// generation invalidates in flight frames on stop so a stale
	// callback cannot issue a draw
	generation atomic.Uint64
}

// bufferProvider is the subset of the poselite buffer pool passed to
// preprocessors
type bufferProvider interface {
	Create(name string, maxSize int) error
	Get(name string, size int) []float32
	Put(name string, buf []float32)
}

// New returns a Pipeline rendering detections from the given inferencer
// onto the given surface
func New(inf poselite.Inferencer, surface render.Surface,
	threshold float32) *Pipeline {

	p := &Pipeline{
		Threshold:  threshold,
		inferencer: inf,
		pose:       postprocess.NewPose(postprocess.PoseCOCOParams()),
		renderer:   render.NewPose(),
		surface:    surface,
		pool:       poselite.NewBufferPool(),
	}

	p.newPre = func(srcWidth, srcHeight int) (Preprocessor, error) {
		return preprocess.NewResizer(srcWidth, srcHeight,
			inf.InputWidth(), inf.InputHeight(), p.pool)
	}

	return p
}

// SetRenderer replaces the default pose renderer
func (p *Pipeline) SetRenderer(r Renderer) {
	p.renderer = r
}

// SetPreprocessorFactory replaces the default gocv resizer factory
func (p *Pipeline) SetPreprocessorFactory(
	f func(srcWidth, srcHeight int) (Preprocessor, error)) {
	p.newPre = f
}

// SetSelector replaces the anchor selection policy
func (p *Pipeline) SetSelector(sel postprocess.Selector) {
	p.pose = postprocess.NewPoseWithSelector(postprocess.PoseCOCOParams(), sel)
}

// ProcessFrame runs the full pipeline on one frame.  It returns the
// unmapped detection in source pixel space and whether it was drawn.  A
// stopped pipeline processes nothing and never draws, a Stop issued
// while the frame is in flight suppresses the draw of that frame.
func (p *Pipeline) ProcessFrame(img gocv.Mat) (poselite.Detection, bool, error) {

	if p.stopped.Load() {
		return poselite.Detection{}, false, nil
	}

	gen := p.generation.Load()

	if err := p.ensurePreprocessor(img.Cols(), img.Rows()); err != nil {
		return poselite.Detection{}, false, err
	}

	buf, err := p.pre.Preprocess(img)

	if err != nil {
		return poselite.Detection{}, false, fmt.Errorf("preprocess: %w", err)
	}

	// buffer lifetime is scoped to this run
	defer p.pre.Release(buf)

	tensor, err := p.inferencer.Run(buf)

	if err != nil {
		return poselite.Detection{}, false, fmt.Errorf("inference: %w", err)
	}

	det, err := p.pose.SelectBest(tensor)

	if err != nil {
		return poselite.Detection{}, false, fmt.Errorf("select: %w", err)
	}

	det = postprocess.Unmap(det, p.pre.Letterbox())

	// liveness check before rendering, no draw after stop
	if p.stopped.Load() || p.generation.Load() != gen {
		return det, false, nil
	}

	drawn := p.renderer.Render(img, det, p.Threshold, p.surface)

	return det, drawn, nil
}

// ensurePreprocessor creates or recreates the preprocessor when the
// source frame dimensions change
func (p *Pipeline) ensurePreprocessor(srcWidth, srcHeight int) error {

	if srcWidth <= 0 || srcHeight <= 0 {
		return fmt.Errorf("source dimensions %dx%d must be positive",
			srcWidth, srcHeight)
	}

	if p.pre != nil {
		lb := p.pre.Letterbox()

		if lb.SrcWidth() == srcWidth && lb.SrcHeight() == srcHeight {
			return nil
		}

		if err := p.pre.Close(); err != nil {
			return err
		}

		p.pre = nil
	}

	pre, err := p.newPre(srcWidth, srcHeight)

	if err != nil {
		return err
	}

	p.pre = pre
	return nil
}

// Stop prevents any further frames from being processed or drawn,
// including frames already in flight
func (p *Pipeline) Stop() {
	p.stopped.Store(true)
	p.generation.Add(1)
}

// Start resumes a stopped pipeline
func (p *Pipeline) Start() {
	p.generation.Add(1)
	p.stopped.Store(false)
}

// Stopped returns whether the pipeline is stopped
func (p *Pipeline) Stopped() bool {
	return p.stopped.Load()
}

// Close frees pipeline resources, the inferencer is owned by the caller
// and closed separately
func (p *Pipeline) Close() error {

	p.Stop()

	if p.pre != nil {
		return p.pre.Close()
	}

	return nil
}
