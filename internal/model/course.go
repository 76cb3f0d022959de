package model

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Course par bounds for construction. The lower bound admits 9-hole courses;
// the extraction validator applies a stricter 18-hole plausibility range.
const (
	MinCoursePar = 27
	MaxCoursePar = 80
)

// Hole is a single hole on a course's layout.
type Hole struct {
	Number   int  `json:"number"`
	Par      *int `json:"par,omitempty"`
	Handicap *int `json:"handicap,omitempty"`
}

// Tee is a tee box option with its ratings and per-hole yardages.
type Tee struct {
	Color        string      `json:"color,omitempty"`
	SlopeRating  *float64    `json:"slope_rating,omitempty"`
	CourseRating *float64    `json:"course_rating,omitempty"`
	HoleYardages map[int]int `json:"hole_yardages,omitempty"`
}

// TotalYardage sums the per-hole yardages, or nil when none are recorded.
func (t *Tee) TotalYardage() *int {
	if len(t.HoleYardages) == 0 {
		return nil
	}
	total := 0
	for _, yd := range t.HoleYardages {
		total += yd
	}
	return &total
}

// Yardage returns the yardage for a hole, or nil if not recorded.
func (t *Tee) Yardage(holeNumber int) *int {
	yd, ok := t.HoleYardages[holeNumber]
	if !ok {
		return nil
	}
	return &yd
}

// Course is a golf course with its hole layout and tee options.
type Course struct {
	ID       string `json:"id,omitempty"`
	UserID   string `json:"user_id,omitempty"`
	Name     string `json:"name,omitempty"`
	Location string `json:"location,omitempty"`
	Par      *int   `json:"par,omitempty"`
	Holes    []Hole `json:"holes,omitempty"`
	Tees     []Tee  `json:"tees,omitempty"`
}

// Tee returns the tee box with the given color (case-insensitive), or nil.
func (c *Course) Tee(color string) *Tee {
	for i := range c.Tees {
		if strings.EqualFold(c.Tees[i].Color, color) {
			return &c.Tees[i]
		}
	}
	return nil
}

// Hole returns the hole with the given number, or nil.
func (c *Course) Hole(number int) *Hole {
	for i := range c.Holes {
		if c.Holes[i].Number == number {
			return &c.Holes[i]
		}
	}
	return nil
}

// HolePar returns the par for a hole, or nil when the layout doesn't carry it.
func (c *Course) HolePar(number int) *int {
	if h := c.Hole(number); h != nil {
		return h.Par
	}
	return nil
}

// FrontNinePar sums par over holes 1-9, or nil if any is missing.
func (c *Course) FrontNinePar() *int {
	return c.parRange(1, 9)
}

// BackNinePar sums par over holes 10-18, or nil if any is missing.
func (c *Course) BackNinePar() *int {
	return c.parRange(10, 18)
}

func (c *Course) parRange(lo, hi int) *int {
	total := 0
	count := 0
	for _, h := range c.Holes {
		if h.Number < lo || h.Number > hi {
			continue
		}
		if h.Par == nil {
			return nil
		}
		total += *h.Par
		count++
	}
	if count == 0 {
		return nil
	}
	return &total
}

// Validate checks construction constraints on the course and its children.
func (c *Course) Validate() error {
	if c.Par != nil && (*c.Par < MinCoursePar || *c.Par > MaxCoursePar) {
		return eris.Errorf("course: par %d outside %d-%d", *c.Par, MinCoursePar, MaxCoursePar)
	}
	for _, h := range c.Holes {
		if h.Number < 1 || h.Number > 18 {
			return eris.Errorf("course: hole number %d outside 1-18", h.Number)
		}
	}
	for _, t := range c.Tees {
		for holeNum, yd := range t.HoleYardages {
			if holeNum < 1 || holeNum > 18 {
				return eris.Errorf("course: yardage for hole %d outside 1-18", holeNum)
			}
			if yd < 0 {
				return eris.Errorf("course: negative yardage %d on hole %d", yd, holeNum)
			}
		}
	}
	return nil
}
