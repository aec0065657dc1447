package protocol

import (
	"fmt"
	"strings"
)

// Inverse encoder: builds wire-exact MP-70 frames from game state.
// Used by the simulator so the extractor/decoder path can be exercised
// end to end without controller hardware.

// EncodeClockFrame builds an 80-byte 'C' packet carrying the given
// "MM:SS" clock value.
func EncodeClockFrame(clock string) []byte {
	frame := newFrame('C')

	digits := strings.ReplaceAll(clock, ":", "")
	if len(digits) > timeFieldLen {
		digits = digits[:timeFieldLen]
	}
	copy(frame[offClock:offClock+timeFieldLen], padRight(digits, timeFieldLen))

	return frame
}

// EncodeStateFrame builds an 80-byte 'H' packet from a Snapshot. Unused
// penalty slots are left blank so they decode as omitted entries.
func EncodeStateFrame(s Snapshot) []byte {
	frame := newFrame('H')

	copy(frame[offHomeScore:], fmt.Sprintf("%2d ", s.HomeScore))
	copy(frame[offAwayScore:], fmt.Sprintf("%2d ", s.AwayScore))

	period := s.Period
	if period == "" {
		period = "1"
	}
	frame[offPeriod] = period[0]

	encodePenalty(frame, offHomePen1, s.HomePenalties, 0)
	encodePenalty(frame, offHomePen2, s.HomePenalties, 1)
	encodePenalty(frame, offAwayPen1, s.AwayPenalties, 0)
	encodePenalty(frame, offAwayPen2, s.AwayPenalties, 1)

	return frame
}

func newFrame(packetType byte) []byte {
	frame := make([]byte, MinFrameLength)
	frame[0] = STX
	frame[offType] = packetType
	frame[MinFrameLength-1] = ETX
	return frame
}

func encodePenalty(frame []byte, off int, penalties []int, idx int) {
	if idx >= len(penalties) || penalties[idx] <= 0 {
		copy(frame[off:off+timeFieldLen], "    ")
		return
	}
	secs := penalties[idx]
	copy(frame[off:off+timeFieldLen], fmt.Sprintf("%02d%02d", secs/60, secs%60))
}

func padRight(s string, width int) string {
	for len(s) < width {
		s += " "
	}
	return s
}
