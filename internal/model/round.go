package model

import "time"

// DateFormat is the single date layout accepted on scorecards.
const DateFormat = "2006-01-02"

// HoleScore is a player's recorded result on a single hole.
type HoleScore struct {
	HoleNumber        int   `json:"hole_number"`
	Strokes           *int  `json:"strokes,omitempty"`
	Putts             *int  `json:"putts,omitempty"`
	FairwayHit        *bool `json:"fairway_hit,omitempty"`
	GreenInRegulation *bool `json:"green_in_regulation,omitempty"`
	ParPlayed         *int  `json:"par_played,omitempty"`
	HandicapPlayed    *int  `json:"handicap_played,omitempty"`
}

// ToPar returns strokes relative to the par played, or nil when either is unknown.
func (s HoleScore) ToPar() *int {
	if s.Strokes == nil || s.ParPlayed == nil {
		return nil
	}
	rel := *s.Strokes - *s.ParPlayed
	return &rel
}

// ScoreName returns the conventional name for the hole result (birdie, bogey, ...),
// or "" when it cannot be determined.
func (s HoleScore) ScoreName() string {
	rel := s.ToPar()
	if rel == nil {
		return ""
	}
	switch {
	case *rel <= -3:
		return "albatross"
	case *rel == -2:
		return "eagle"
	case *rel == -1:
		return "birdie"
	case *rel == 0:
		return "par"
	case *rel == 1:
		return "bogey"
	case *rel == 2:
		return "double bogey"
	case *rel == 3:
		return "triple bogey"
	case *rel == 4:
		return "quadruple bogey"
	default:
		return "quintuple+"
	}
}

// Round is a round of golf played by a user, as recorded on a scorecard.
type Round struct {
	ID         string      `json:"id,omitempty"`
	UserID     string      `json:"user_id,omitempty"`
	Course     *Course     `json:"course,omitempty"`
	TeeColor   string      `json:"tee_color,omitempty"`
	Date       *time.Time  `json:"date,omitempty"`
	PlayerName string      `json:"player_name,omitempty"`
	HoleScores []HoleScore `json:"hole_scores"`
	Notes      string      `json:"notes,omitempty"`

	// TotalPutts is the card's recorded total; PuttsTotal falls back to
	// summing hole scores when it is absent.
	TotalPutts *int `json:"total_putts,omitempty"`
}

// PlayedTee returns the tee box used for this round, or nil.
func (r *Round) PlayedTee() *Tee {
	if r.Course == nil || r.TeeColor == "" {
		return nil
	}
	return r.Course.Tee(r.TeeColor)
}

// FillFromCourse copies par and handicap from the course layout onto hole
// scores that are missing them. Values already on the scores are kept.
func (r *Round) FillFromCourse(c *Course) {
	if c == nil {
		return
	}
	for i := range r.HoleScores {
		hole := c.Hole(r.HoleScores[i].HoleNumber)
		if hole == nil {
			continue
		}
		if r.HoleScores[i].ParPlayed == nil {
			r.HoleScores[i].ParPlayed = hole.Par
		}
		if r.HoleScores[i].HandicapPlayed == nil {
			r.HoleScores[i].HandicapPlayed = hole.Handicap
		}
	}
}

// TotalScore sums strokes over all holes, or nil when no hole has strokes.
func (r *Round) TotalScore() *int {
	return r.sumStrokes(1, 18)
}

// FrontNineScore sums strokes over holes 1-9.
func (r *Round) FrontNineScore() *int {
	return r.sumStrokes(1, 9)
}

// BackNineScore sums strokes over holes 10-18.
func (r *Round) BackNineScore() *int {
	return r.sumStrokes(10, 18)
}

func (r *Round) sumStrokes(lo, hi int) *int {
	total := 0
	found := false
	for _, s := range r.HoleScores {
		if s.HoleNumber < lo || s.HoleNumber > hi || s.Strokes == nil {
			continue
		}
		total += *s.Strokes
		found = true
	}
	if !found {
		return nil
	}
	return &total
}

// PuttsTotal returns the recorded total putts, or the sum over holes.
func (r *Round) PuttsTotal() *int {
	if r.TotalPutts != nil {
		return r.TotalPutts
	}
	total := 0
	found := false
	for _, s := range r.HoleScores {
		if s.Putts == nil {
			continue
		}
		total += *s.Putts
		found = true
	}
	if !found {
		return nil
	}
	return &total
}

// GIRCount counts holes with green in regulation, or nil when none recorded it.
func (r *Round) GIRCount() *int {
	total := 0
	found := false
	for _, s := range r.HoleScores {
		if s.GreenInRegulation == nil {
			continue
		}
		found = true
		if *s.GreenInRegulation {
			total++
		}
	}
	if !found {
		return nil
	}
	return &total
}

// IsComplete reports whether every expected hole has a stroke count.
// A card with more than 9 hole rows is expected to cover 18 holes.
func (r *Round) IsComplete() bool {
	if len(r.HoleScores) == 0 {
		return false
	}
	expected := 9
	if len(r.HoleScores) > 9 {
		expected = 18
	}
	scored := 0
	for _, s := range r.HoleScores {
		if s.Strokes != nil {
			scored++
		}
	}
	return scored == expected
}
