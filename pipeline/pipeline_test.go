package pipeline

import (
	"testing"

	"github.com/swdee/go-poselite"
	"github.com/swdee/go-poselite/preprocess"
	"github.com/swdee/go-poselite/render"
	"gocv.io/x/gocv"
)

// fakeInferencer returns a synthetic output tensor with a single winning
// anchor and can trigger a callback while a frame is in flight
type fakeInferencer struct {
	runs   int
	during func()
}

func (f *fakeInferencer) Run(input []float32) (*poselite.OutputTensor, error) {

	f.runs++

	if f.during != nil {
		f.during()
	}

	data := make([]float32, poselite.OutputChannels*poselite.OutputAnchors)

	idx := func(ch, anchor int) int {
		return ch*poselite.OutputAnchors + anchor
	}

	const winner = 1234

	data[idx(poselite.ChanObjectness, winner)] = 0.9
	data[idx(poselite.ChanCenterX, winner)] = 320
	data[idx(poselite.ChanCenterY, winner)] = 240
	data[idx(poselite.ChanWidth, winner)] = 100
	data[idx(poselite.ChanHeight, winner)] = 200

	for j := 0; j < poselite.KeyPointNum; j++ {
		data[idx(poselite.ChanKeyPoints+j*3, winner)] = 300
		data[idx(poselite.ChanKeyPoints+j*3+1, winner)] = 300
		data[idx(poselite.ChanKeyPoints+j*3+2, winner)] = 0.8
	}

	return poselite.NewOutputTensor(data, poselite.OutputChannels,
		poselite.OutputAnchors)
}

func (f *fakeInferencer) InputWidth() int  { return 640 }
func (f *fakeInferencer) InputHeight() int { return 640 }
func (f *fakeInferencer) Close() error     { return nil }

// fakePreprocessor hands out buffers without touching the source Mat
type fakePreprocessor struct {
	letterbox *preprocess.Letterbox
	released  int
	closed    bool
}

func (f *fakePreprocessor) Preprocess(src gocv.Mat) ([]float32, error) {
	return make([]float32, 640*640*3), nil
}

func (f *fakePreprocessor) Release(buf []float32) {
	f.released++
}

func (f *fakePreprocessor) Letterbox() *preprocess.Letterbox {
	return f.letterbox
}

func (f *fakePreprocessor) Close() error {
	f.closed = true
	return nil
}

// fakeRenderer records render calls
type fakeRenderer struct {
	calls int
	last  poselite.Detection
}

func (f *fakeRenderer) Render(img gocv.Mat, det poselite.Detection,
	threshold float32, surface render.Surface) bool {

	f.calls++
	f.last = det
	return det.Score > threshold
}

// newTestPipeline wires a pipeline from fakes, returning the fakes for
// assertions
func newTestPipeline() (*Pipeline, *fakeInferencer, *fakeRenderer, *fakePreprocessor) {

	inf := &fakeInferencer{}
	rend := &fakeRenderer{}
	pre := &fakePreprocessor{}

	pl := New(inf, nil, 0.5)
	pl.SetRenderer(rend)
	pl.SetPreprocessorFactory(func(srcWidth, srcHeight int) (Preprocessor, error) {
		pre.letterbox = preprocess.NewLetterbox(srcWidth, srcHeight, 640, 640)
		return pre, nil
	})

	return pl, inf, rend, pre
}

func TestProcessFrame(t *testing.T) {

	pl, inf, rend, pre := newTestPipeline()
	defer pl.Close()

	img := gocv.NewMatWithSize(240, 320, gocv.MatTypeCV8UC3)
	defer img.Close()

	det, drawn, err := pl.ProcessFrame(img)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if inf.runs != 1 || rend.calls != 1 {
		t.Fatalf("expected 1 inference and 1 render, got %d/%d",
			inf.runs, rend.calls)
	}

	if !drawn {
		t.Error("detection above threshold was not drawn")
	}

	// 320x240 source, square side 320, yPad 40, scale 0.5.  model box
	// center (320,240) size (100,200) unmaps to (135,30)-(185,130)
	if det.Box.X1 != 135 || det.Box.Y1 != 30 || det.Box.X2 != 185 || det.Box.Y2 != 130 {
		t.Errorf("unmapped box = %+v, want (135,30)-(185,130)", det.Box)
	}

	// input buffer returned to the pool before ProcessFrame returned
	if pre.released != 1 {
		t.Errorf("input buffer released %d times, want 1", pre.released)
	}
}

func TestProcessFrameWhenStopped(t *testing.T) {

	pl, inf, rend, _ := newTestPipeline()
	defer pl.Close()

	pl.Stop()

	img := gocv.NewMatWithSize(240, 320, gocv.MatTypeCV8UC3)
	defer img.Close()

	_, drawn, err := pl.ProcessFrame(img)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if drawn || inf.runs != 0 || rend.calls != 0 {
		t.Error("stopped pipeline processed a frame")
	}
}

func TestStopDuringInFlightFrame(t *testing.T) {

	// a stop issued while the frame is between inference and render must
	// suppress the stale draw
	pl, inf, rend, _ := newTestPipeline()
	defer pl.Close()

	inf.during = func() {
		pl.Stop()
	}

	img := gocv.NewMatWithSize(240, 320, gocv.MatTypeCV8UC3)
	defer img.Close()

	_, drawn, err := pl.ProcessFrame(img)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if drawn || rend.calls != 0 {
		t.Error("draw was issued after stop")
	}
}

func TestStartResumes(t *testing.T) {

	pl, _, rend, _ := newTestPipeline()
	defer pl.Close()

	pl.Stop()
	pl.Start()

	img := gocv.NewMatWithSize(240, 320, gocv.MatTypeCV8UC3)
	defer img.Close()

	_, drawn, err := pl.ProcessFrame(img)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !drawn || rend.calls != 1 {
		t.Error("restarted pipeline did not render")
	}
}

func TestPreprocessorRecreatedOnSourceChange(t *testing.T) {

	inf := &fakeInferencer{}
	rend := &fakeRenderer{}

	var created []*fakePreprocessor

	pl := New(inf, nil, 0.5)
	pl.SetRenderer(rend)
	pl.SetPreprocessorFactory(func(srcWidth, srcHeight int) (Preprocessor, error) {
		pre := &fakePreprocessor{
			letterbox: preprocess.NewLetterbox(srcWidth, srcHeight, 640, 640),
		}
		created = append(created, pre)
		return pre, nil
	})

	defer pl.Close()

	small := gocv.NewMatWithSize(240, 320, gocv.MatTypeCV8UC3)
	defer small.Close()

	large := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer large.Close()

	if _, _, err := pl.ProcessFrame(small); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, _, err := pl.ProcessFrame(small); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(created) != 1 {
		t.Fatalf("expected 1 preprocessor for constant source size, got %d",
			len(created))
	}

	if _, _, err := pl.ProcessFrame(large); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(created) != 2 {
		t.Fatalf("expected new preprocessor after source size change, got %d",
			len(created))
	}

	if !created[0].closed {
		t.Error("previous preprocessor was not closed")
	}
}
