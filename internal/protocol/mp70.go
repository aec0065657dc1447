// MP-70 protocol codec
// Decodes serial data from Trans-Lux FairPlay MP-70 scoreboard controllers.
//
// Packets are delimited by STX (0x02) and ETX (0x03), minimum 80 bytes.
// Two packet types, selected by the ASCII character at byte 1:
//   'C' - clock update only (bytes 2-5, ASCII MMSS)
//   'H' - full game state (scores, period, penalties at fixed offsets)

package protocol

import (
	"log"
	"strconv"
	"strings"
)

// Field offsets within an 'H' packet (0-indexed, end exclusive).
const (
	offType       = 1
	offClock      = 2 // 'C' packet, 4 bytes
	offHomeScore  = 13
	offAwayScore  = 29
	offPeriod     = 45
	offHomePen1   = 52
	offHomePen2   = 57
	offAwayPen1   = 62
	offAwayPen2   = 67
	timeFieldLen  = 4
	scoreFieldLen = 2
)

// DefaultClock is reported until the first clock packet arrives.
const DefaultClock = "20:00"

// Parser is a stateful MP-70 packet decoder.
//
// The controller sends the clock in separate packets from scores, so the
// parser keeps the last known clock value and stamps it onto every decoded
// Snapshot. A Parser is meant to be owned by a single reader loop; it is
// not safe for concurrent Decode calls.
type Parser struct {
	lastClock string
}

// NewParser returns a parser with the clock at its pre-game default.
func NewParser() *Parser {
	return &Parser{lastClock: DefaultClock}
}

// LastClock returns the last known clock value.
func (p *Parser) LastClock() string {
	return p.lastClock
}

// Decode parses one complete frame, delimiters included.
//
// Clock packets update the parser's internal clock and return nil. Score
// packets return a full Snapshot. Malformed or unrecognized frames are
// logged and return nil; Decode never fails hard, because scoreboard
// hardware is expected to emit occasional noise mid-broadcast.
func (p *Parser) Decode(frame []byte) *Snapshot {
	if len(frame) < MinFrameLength {
		log.Printf("[MP70] Frame too short: %d < %d", len(frame), MinFrameLength)
		return nil
	}

	switch frame[offType] {
	case 'C':
		if clock := formatClock(frame[offClock : offClock+timeFieldLen]); clock != "" {
			p.lastClock = clock
		}
		return nil

	case 'H':
		home, ok := parseScore(frame[offHomeScore : offHomeScore+scoreFieldLen])
		if !ok {
			log.Printf("[MP70] Failed to parse home score field")
			return nil
		}
		away, ok := parseScore(frame[offAwayScore : offAwayScore+scoreFieldLen])
		if !ok {
			log.Printf("[MP70] Failed to parse away score field")
			return nil
		}

		period := strings.TrimSpace(string(frame[offPeriod : offPeriod+1]))
		if period == "" {
			period = "1"
		}

		snap := &Snapshot{
			HomeScore: home,
			AwayScore: away,
			Period:    period,
			Clock:     p.lastClock,
		}

		// Blank or garbled penalty fields are omitted, never fatal.
		for _, off := range []int{offHomePen1, offHomePen2} {
			if secs, ok := parseMMSS(frame[off : off+timeFieldLen]); ok {
				snap.HomePenalties = append(snap.HomePenalties, secs)
			}
		}
		for _, off := range []int{offAwayPen1, offAwayPen2} {
			if secs, ok := parseMMSS(frame[off : off+timeFieldLen]); ok {
				snap.AwayPenalties = append(snap.AwayPenalties, secs)
			}
		}

		return snap
	}

	log.Printf("[MP70] Unknown packet type: %q", frame[offType])
	return nil
}

// parseMMSS converts a 4-byte ASCII MMSS field ("0130" = 1:30) to total
// seconds. Returns false for blank or non-numeric fields.
func parseMMSS(raw []byte) (int, bool) {
	text := strings.TrimSpace(string(raw))
	if len(text) < 3 {
		return 0, false
	}
	minutes, err := strconv.Atoi(text[:2])
	if err != nil {
		return 0, false
	}
	seconds, err := strconv.Atoi(text[2:])
	if err != nil {
		return 0, false
	}
	return minutes*60 + seconds, true
}

// formatClock reformats a 4-byte ASCII MMSS field as "MM:SS".
// Returns "" for blank or undersized fields.
func formatClock(raw []byte) string {
	text := strings.TrimSpace(string(raw))
	if len(text) < 4 {
		return ""
	}
	return text[:len(text)-2] + ":" + text[len(text)-2:]
}

// parseScore parses a space-padded ASCII score field. A blank field
// decodes as zero.
func parseScore(raw []byte) (int, bool) {
	text := strings.TrimSpace(string(raw))
	if text == "" {
		return 0, true
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, false
	}
	return n, true
}
