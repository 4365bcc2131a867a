package poselite

// Inferencer defines the interface for an inference runtime collaborator
// that runs the pose model forward pass.  The input is a [1,H,W,3] float32
// buffer with pixel intensities normalized to [0,1], the output is the
// raw [1,56,8400] tensor.  Both shapes are hard contracts of the model
// export, not runtime configurable.
type Inferencer interface {
	// Run performs inference on the given input buffer
	Run(input []float32) (*OutputTensor, error)
	// InputWidth returns the width of the model input tensor
	InputWidth() int
	// InputHeight returns the height of the model input tensor
	InputHeight() int
	// Close frees resources held by the runtime
	Close() error
}
