package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildStateFrame hand-places fields so decoder offsets are verified
// independently of the encoder.
func buildStateFrame(home, away, period string, penalties map[int]string) []byte {
	frame := make([]byte, MinFrameLength)
	for i := range frame {
		frame[i] = ' '
	}
	frame[0] = STX
	frame[1] = 'H'
	frame[MinFrameLength-1] = ETX

	copy(frame[13:15], home)
	copy(frame[29:31], away)
	copy(frame[45:46], period)
	for off, value := range penalties {
		copy(frame[off:off+4], value)
	}
	return frame
}

func buildClockFrame(mmss string) []byte {
	frame := make([]byte, MinFrameLength)
	for i := range frame {
		frame[i] = ' '
	}
	frame[0] = STX
	frame[1] = 'C'
	frame[MinFrameLength-1] = ETX
	copy(frame[2:6], mmss)
	return frame
}

func TestDecodeScoreFrame(t *testing.T) {
	p := NewParser()
	frame := buildStateFrame(" 2", " 1", "2", map[int]string{
		52: "0205", // home penalty 1: 2:05
		62: "0500", // away penalty 1: 5:00
	})

	snap := p.Decode(frame)

	require.NotNil(t, snap)
	assert.Equal(t, 2, snap.HomeScore)
	assert.Equal(t, 1, snap.AwayScore)
	assert.Equal(t, "2", snap.Period)
	assert.Equal(t, []int{125}, snap.HomePenalties)
	assert.Equal(t, []int{300}, snap.AwayPenalties)
}

func TestDecodeClockStickiness(t *testing.T) {
	p := NewParser()
	assert.Equal(t, DefaultClock, p.LastClock())

	snap := p.Decode(buildClockFrame("0530"))
	assert.Nil(t, snap, "clock frames produce no snapshot")
	assert.Equal(t, "05:30", p.LastClock())

	snap = p.Decode(buildStateFrame(" 2", " 1", "2", nil))
	require.NotNil(t, snap)
	assert.Equal(t, "05:30", snap.Clock)

	// A second score frame with no intervening clock frame keeps the
	// last clock value.
	snap = p.Decode(buildStateFrame(" 3", " 1", "2", nil))
	require.NotNil(t, snap)
	assert.Equal(t, "05:30", snap.Clock)
}

func TestDecodeShortFrameRejected(t *testing.T) {
	p := NewParser()
	short := []byte{STX, 'C', '0', '5', '3', '0', ETX}

	snap := p.Decode(short)

	assert.Nil(t, snap)
	assert.Equal(t, DefaultClock, p.LastClock(), "short frames must not update the clock")
}

func TestDecodeUnknownTypeIgnored(t *testing.T) {
	p := NewParser()
	frame := buildStateFrame(" 2", " 1", "2", nil)
	frame[1] = 'X'

	assert.Nil(t, p.Decode(frame))
}

func TestDecodeBlankScoreDefaultsToZero(t *testing.T) {
	p := NewParser()
	frame := buildStateFrame(" 3", "  ", "1", map[int]string{52: "0130"})

	snap := p.Decode(frame)

	require.NotNil(t, snap, "blank away score must not drop the frame")
	assert.Equal(t, 3, snap.HomeScore)
	assert.Equal(t, 0, snap.AwayScore)
	assert.Equal(t, []int{90}, snap.HomePenalties)
}

func TestDecodeGarbledScoreDropsFrame(t *testing.T) {
	p := NewParser()
	frame := buildStateFrame("ZZ", " 1", "1", nil)

	assert.Nil(t, p.Decode(frame))
}

func TestDecodeBlankPeriodDefaultsToFirst(t *testing.T) {
	p := NewParser()
	frame := buildStateFrame(" 0", " 0", " ", nil)

	snap := p.Decode(frame)

	require.NotNil(t, snap)
	assert.Equal(t, "1", snap.Period)
}

func TestDecodeGarbledPenaltyOmitted(t *testing.T) {
	p := NewParser()
	frame := buildStateFrame(" 1", " 0", "1", map[int]string{
		52: "02A5", // garbled
		57: "0030",
	})

	snap := p.Decode(frame)

	require.NotNil(t, snap)
	assert.Equal(t, []int{30}, snap.HomePenalties, "bad penalty field is skipped, not fatal")
}

func TestDecodeBlankClockFieldKeepsLastValue(t *testing.T) {
	p := NewParser()
	p.Decode(buildClockFrame("1234"))
	require.Equal(t, "12:34", p.LastClock())

	p.Decode(buildClockFrame("    "))

	assert.Equal(t, "12:34", p.LastClock())
}

func TestParseMMSS(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		want  int
		valid bool
	}{
		{"ninety seconds", "0130", 90, true},
		{"five minutes", "0500", 300, true},
		{"zero", "0000", 0, true},
		{"blank", "    ", 0, false},
		{"letters", "ABCD", 0, false},
		{"mixed", "01A0", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseMMSS([]byte(tt.raw))
			assert.Equal(t, tt.valid, ok)
			if tt.valid {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestFormatClock(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"2000", "20:00"},
		{"0530", "05:30"},
		{"    ", ""},
		{"53", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, formatClock([]byte(tt.raw)))
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	p := NewParser()
	in := Snapshot{
		HomeScore:     4,
		AwayScore:     2,
		Period:        "3",
		HomePenalties: []int{125, 305},
		AwayPenalties: []int{90},
	}

	frame := EncodeStateFrame(in)
	require.Len(t, frame, MinFrameLength)
	assert.Equal(t, byte(STX), frame[0])
	assert.Equal(t, byte(ETX), frame[MinFrameLength-1])

	snap := p.Decode(frame)

	require.NotNil(t, snap)
	assert.Equal(t, in.HomeScore, snap.HomeScore)
	assert.Equal(t, in.AwayScore, snap.AwayScore)
	assert.Equal(t, in.Period, snap.Period)
	assert.Equal(t, in.HomePenalties, snap.HomePenalties)
	assert.Equal(t, in.AwayPenalties, snap.AwayPenalties)
}

func TestEncodeClockRoundTrip(t *testing.T) {
	p := NewParser()

	frame := EncodeClockFrame("17:45")
	require.Len(t, frame, MinFrameLength)

	assert.Nil(t, p.Decode(frame))
	assert.Equal(t, "17:45", p.LastClock())
}

func TestEncodedFramesSurviveExtraction(t *testing.T) {
	buf := append(EncodeClockFrame("12:00"), EncodeStateFrame(Snapshot{HomeScore: 1, Period: "1"})...)

	frames, rest := ExtractFrames(buf)

	assert.Len(t, frames, 2)
	assert.Empty(t, rest)
}

func TestPeriodDisplay(t *testing.T) {
	tests := []struct {
		period string
		want   string
	}{
		{"1", "1st"},
		{"2", "2nd"},
		{"3", "3rd"},
		{"OT", "OT"},
		{"4", "OT"},
		{"SO", "SO"},
		{"S", "SO"},
		{"9", "9"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, PeriodDisplay(tt.period))
	}
}
