// Package onnx provides an Inferencer collaborator backed by ONNX
// Runtime for running YOLOv8-pose model exports.
package onnx

import (
	"fmt"
	"runtime"

	"github.com/swdee/go-poselite"
	ort "github.com/yalue/onnxruntime_go"
)

// tensor names used by ultralytics ONNX exports
const (
	inputName  = "images"
	outputName = "output0"
)

// Init initializes the ONNX Runtime environment.  Call once before
// creating sessions.  libPath optionally points at the onnxruntime
// shared library, pass an empty string to use the platform default.
func Init(libPath string) error {

	if libPath != "" {
		ort.SetSharedLibraryPath(libPath)
	}

	return ort.InitializeEnvironment()
}

// Destroy the ONNX Runtime environment after all sessions are closed
func Destroy() error {
	return ort.DestroyEnvironment()
}

// Session runs the pose model forward pass with ONNX Runtime.  Input and
// output tensors are preallocated once, a session processes one frame at
// a time and is not safe for concurrent use, open one Session per worker
// via poselite.NewPool for that.
type Session struct {
	// session is the underlying ONNX runtime session
	session *ort.AdvancedSession
	// input is the [1,3,H,W] model input tensor
	input *ort.Tensor[float32]
	// output is the [1,56,8400] model output tensor
	output *ort.Tensor[float32]
	// inputWidth is the width of the model input tensor
	inputWidth int
	// inputHeight is the height of the model input tensor
	inputHeight int
}

// NewSession loads the given ONNX pose model and prepares it for
// inference with the fixed [1,56,8400] output contract
func NewSession(modelFile string, inputWidth, inputHeight int) (*Session, error) {

	options, err := ort.NewSessionOptions()

	if err != nil {
		return nil, fmt.Errorf("error creating session options: %w", err)
	}

	defer options.Destroy()

	if err := options.SetIntraOpNumThreads(runtime.NumCPU()); err != nil {
		return nil, fmt.Errorf("error setting intra op threads: %w", err)
	}

	if err := options.SetInterOpNumThreads(runtime.NumCPU()); err != nil {
		return nil, fmt.Errorf("error setting inter op threads: %w", err)
	}

	inputShape := ort.NewShape(1, 3, int64(inputHeight), int64(inputWidth))
	outputShape := ort.NewShape(1, poselite.OutputChannels, poselite.OutputAnchors)

	inputTensor, err := ort.NewEmptyTensor[float32](inputShape)

	if err != nil {
		return nil, fmt.Errorf("error creating input tensor: %w", err)
	}

	outputTensor, err := ort.NewEmptyTensor[float32](outputShape)

	if err != nil {
		inputTensor.Destroy()
		return nil, fmt.Errorf("error creating output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(
		modelFile,
		[]string{inputName},
		[]string{outputName},
		[]ort.ArbitraryTensor{inputTensor},
		[]ort.ArbitraryTensor{outputTensor},
		options,
	)

	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("error creating session: %w", err)
	}

	return &Session{
		session:     session,
		input:       inputTensor,
		output:      outputTensor,
		inputWidth:  inputWidth,
		inputHeight: inputHeight,
	}, nil
}

// Run performs inference on the given [1,H,W,3] normalized input buffer.
// The buffer is repacked into the channel major [1,3,H,W] layout the ONNX
// export expects, the raw output is copied out of the runtime owned
// tensor before being returned.
func (s *Session) Run(input []float32) (*poselite.OutputTensor, error) {

	want := s.inputWidth * s.inputHeight * 3

	if len(input) != want {
		return nil, fmt.Errorf("input buffer has %d values, [1,%d,%d,3] requires %d",
			len(input), s.inputHeight, s.inputWidth, want)
	}

	// repack NHWC to NCHW
	data := s.input.GetData()
	plane := s.inputWidth * s.inputHeight

	for i := 0; i < plane; i++ {
		data[i] = input[i*3]
		data[plane+i] = input[i*3+1]
		data[2*plane+i] = input[i*3+2]
	}

	if err := s.session.Run(); err != nil {
		return nil, fmt.Errorf("model inference: %w", err)
	}

	out := s.output.GetData()
	raw := make([]float32, len(out))
	copy(raw, out)

	return poselite.NewOutputTensor(raw, poselite.OutputChannels,
		poselite.OutputAnchors)
}

// InputWidth returns the width of the model input tensor
func (s *Session) InputWidth() int {
	return s.inputWidth
}

// InputHeight returns the height of the model input tensor
func (s *Session) InputHeight() int {
	return s.inputHeight
}

// Close frees the session and its tensors
func (s *Session) Close() error {

	if s.session != nil {
		s.session.Destroy()
	}

	if s.input != nil {
		s.input.Destroy()
	}

	if s.output != nil {
		s.output.Destroy()
	}

	return nil
}
