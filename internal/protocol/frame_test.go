package protocol

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func wellFormedFrame(payload byte) []byte {
	frame := make([]byte, MinFrameLength)
	frame[0] = STX
	frame[1] = payload
	frame[MinFrameLength-1] = ETX
	return frame
}

func TestExtractFramesNoStartMarker(t *testing.T) {
	buf := []byte("no delimiters in here at all")

	frames, rest := ExtractFrames(buf)

	assert.Empty(t, frames)
	assert.Equal(t, buf, rest)
}

func TestExtractFramesSingleFrame(t *testing.T) {
	frame := wellFormedFrame('H')

	frames, rest := ExtractFrames(frame)

	assert.Len(t, frames, 1)
	assert.Equal(t, frame, frames[0])
	assert.Empty(t, rest)
}

func TestExtractFramesBackToBack(t *testing.T) {
	first := wellFormedFrame('C')
	second := wellFormedFrame('H')
	buf := append(append([]byte{}, first...), second...)

	frames, rest := ExtractFrames(buf)

	assert.Len(t, frames, 2)
	assert.Equal(t, first, frames[0])
	assert.Equal(t, second, frames[1])
	assert.Empty(t, rest)
}

func TestExtractFramesPartialFrameWaitsForMore(t *testing.T) {
	partial := wellFormedFrame('H')[:40] // start marker, no end marker

	frames, rest := ExtractFrames(partial)

	assert.Empty(t, frames)
	assert.Equal(t, partial, rest, "partial data must be kept for the next read")
}

func TestExtractFramesJunkBeforeFrame(t *testing.T) {
	frame := wellFormedFrame('H')
	buf := append([]byte{ETX, 0xFF, 0x41}, frame...) // stray ETX and noise first

	frames, rest := ExtractFrames(buf)

	assert.Len(t, frames, 1)
	assert.Equal(t, frame, frames[0])
	assert.Empty(t, rest)
}

func TestExtractFramesTrailingBytesKept(t *testing.T) {
	frame := wellFormedFrame('C')
	trailer := []byte{STX, 'H', 0x30}
	buf := append(append([]byte{}, frame...), trailer...)

	frames, rest := ExtractFrames(buf)

	assert.Len(t, frames, 1)
	assert.Equal(t, trailer, rest)
}

func TestExtractFramesDoesNotAliasInput(t *testing.T) {
	buf := append([]byte{}, wellFormedFrame('H')...)

	frames, _ := ExtractFrames(buf)
	copy(buf, bytes.Repeat([]byte{0xAA}, len(buf)))

	assert.Equal(t, byte(STX), frames[0][0], "extracted frame must not share storage with the input buffer")
	assert.Equal(t, byte('H'), frames[0][1])
}
