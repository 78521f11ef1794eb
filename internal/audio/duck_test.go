package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pactlOutput = `Sink Input #42
	Driver: protocol-native.c
	Volume: front-left: 45875 /  70% / -9.29 dB,   front-right: 45875 /  70% / -9.29 dB
	Properties:
		application.name = "Firefox"
		media.name = "AudioStream"
Sink Input #57
	Driver: protocol-native.c
	Volume: front-left: 65536 / 100% / 0.00 dB
	Properties:
		application.name = "synbi"
`

func TestParseSinkInputs(t *testing.T) {
	streams := parseSinkInputs(pactlOutput)

	require.Len(t, streams, 2)
	assert.Equal(t, sinkInput{id: 42, volume: 70, appName: "Firefox"}, streams[0])
	assert.Equal(t, sinkInput{id: 57, volume: 100, appName: "synbi"}, streams[1])
}

func TestParseSinkInputsEmpty(t *testing.T) {
	assert.Empty(t, parseSinkInputs("No sink inputs.\n"))
}

func TestDuckerSkipsOwnStream(t *testing.T) {
	d := NewDucker([]string{"synbi"}, 20)

	assert.True(t, d.isSelf(sinkInput{appName: "synbi"}))
	assert.False(t, d.isSelf(sinkInput{appName: "Firefox"}))
}
