package protocol

// Snapshot is one fully decoded game state from an MP-70 score packet.
// The clock comes from the parser's last clock packet, not from the
// score packet itself.
type Snapshot struct {
	HomeScore     int    `json:"home"`
	AwayScore     int    `json:"away"`
	Period        string `json:"period"`
	Clock         string `json:"clock"`
	HomePenalties []int  `json:"home_penalties"`
	AwayPenalties []int  `json:"away_penalties"`
}

// PeriodDisplay returns a display-friendly period string ("1st", "OT", ...).
func (s Snapshot) PeriodDisplay() string {
	return PeriodDisplay(s.Period)
}

// PeriodDisplay maps a raw controller period code to broadcast text.
func PeriodDisplay(period string) string {
	switch period {
	case "1":
		return "1st"
	case "2":
		return "2nd"
	case "3":
		return "3rd"
	case "OT", "ot", "O", "o", "4":
		return "OT"
	case "SO", "so", "S", "s":
		return "SO"
	default:
		return period
	}
}
