package protocol

import "bytes"

// Frame delimiters used by the MP-70 scoreboard controller.
const (
	STX = 0x02 // Start of Text
	ETX = 0x03 // End of Text
)

// MinFrameLength is the minimum valid frame size including delimiters.
const MinFrameLength = 80

// ExtractFrames scans an accumulated byte buffer for complete STX..ETX
// frames. It returns every complete frame found (delimiters included, in
// order) and the unconsumed remainder of the buffer. A start marker with
// no following end marker leaves the buffer untouched so the caller can
// retry once more bytes arrive.
func ExtractFrames(buf []byte) ([][]byte, []byte) {
	var frames [][]byte

	rest := buf
	for {
		start := bytes.IndexByte(rest, STX)
		if start < 0 {
			break
		}
		end := bytes.IndexByte(rest[start:], ETX)
		if end < 0 {
			break
		}

		frame := make([]byte, end+1)
		copy(frame, rest[start:start+end+1])
		frames = append(frames, frame)

		rest = rest[start+end+1:]
	}

	return frames, rest
}
