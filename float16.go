package poselite

import "github.com/x448/float16"

var f16LookupTable [65536]float32

func init() {
	// precompute float16 lookup table for faster conversion to float32
	for i := range f16LookupTable {
		f16 := float16.Frombits(uint16(i))
		f16LookupTable[i] = f16.Float32()
	}
}

// OutputTensorFromFloat16 converts a half precision output buffer, as
// produced by fp16 model exports, into a float32 OutputTensor.  Raw is
// the little endian bit pattern of each float16 value.
func OutputTensorFromFloat16(raw []uint16, channels, anchors int) (*OutputTensor, error) {

	data := make([]float32, len(raw))

	for i, bits := range raw {
		data[i] = f16LookupTable[bits]
	}

	return NewOutputTensor(data, channels, anchors)
}
