package audioconv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownmix(t *testing.T) {
	stereo := []float32{1, 0, 0.5, 0.5, -1, 1}
	mono := downmix(stereo, 2)

	require.Len(t, mono, 3)
	assert.InDelta(t, 0.5, mono[0], 1e-6)
	assert.InDelta(t, 0.5, mono[1], 1e-6)
	assert.InDelta(t, 0.0, mono[2], 1e-6)
}

func TestResampleHalvesRate(t *testing.T) {
	in := make([]float32, 320)
	for i := range in {
		in[i] = float32(i) / 320
	}

	out := resample(in, 32000, 16000)

	assert.Len(t, out, 160)
	assert.InDelta(t, in[10], out[5], 0.01, "values survive the rate change")
}

func TestResampleNoop(t *testing.T) {
	in := []float32{0.1, 0.2}
	assert.Equal(t, in, resample(in, 16000, 16000))
}

func TestInt16Scaling(t *testing.T) {
	out := int16sToFloat32([]int16{0, 16384, -32768})

	assert.InDelta(t, 0.0, out[0], 1e-6)
	assert.InDelta(t, 0.5, out[1], 1e-4)
	assert.InDelta(t, -1.0, out[2], 1e-6)
}

func TestIntScalingClamps(t *testing.T) {
	out := intsToFloat32([]int{32767, -32768}, 16)

	assert.LessOrEqual(t, out[0], float32(1.0))
	assert.GreaterOrEqual(t, out[1], float32(-1.0))
}

func TestDecodeRejectsShortPayload(t *testing.T) {
	_, err := Decode([]byte{0x52}, Options{})
	assert.Error(t, err)
}

func TestFinishCapsSamples(t *testing.T) {
	in := make([]float32, 100)
	out := finish(in, 1, targetRate, Options{MaxSamples: 10})
	assert.Len(t, out, 10)
}
