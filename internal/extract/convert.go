package extract

import (
	"strconv"
	"strings"
	"time"

	"github.com/TuckerBrewer12/ScanScorecards/internal/model"
)

// buildCourseFromFull converts the course, hole-layout, and tee data of a full
// extraction into a domain Course.
func buildCourseFromFull(raw *RawFullExtraction) *model.Course {
	course := &model.Course{
		Par: raw.Course.Par.Value,
	}
	if raw.Course.Name.Value != nil {
		course.Name = *raw.Course.Name.Value
	}
	if raw.Course.Location.Value != nil {
		course.Location = *raw.Course.Location.Value
	}

	for i, rh := range raw.Holes {
		number := i + 1
		if rh.HoleNumber.Value != nil {
			number = *rh.HoleNumber.Value
		}
		course.Holes = append(course.Holes, model.Hole{
			Number:   number,
			Par:      rh.Par.Value,
			Handicap: rh.Handicap.Value,
		})
	}

	for _, rt := range raw.Tees {
		tee := model.Tee{
			SlopeRating:  rt.SlopeRating.Value,
			CourseRating: rt.CourseRating.Value,
		}
		if rt.Color.Value != nil {
			tee.Color = *rt.Color.Value
		}
		for _, yd := range rt.HoleYardages {
			if yd.Yardage.Value == nil {
				continue
			}
			if tee.HoleYardages == nil {
				tee.HoleYardages = make(map[int]int)
			}
			tee.HoleYardages[yd.HoleNumber] = *yd.Yardage.Value
		}
		course.Tees = append(course.Tees, tee)
	}

	return course
}

// buildRoundFromFull converts a full extraction into a domain Round.
func buildRoundFromFull(raw *RawFullExtraction) *model.Round {
	course := buildCourseFromFull(raw)

	round := &model.Round{
		Course:     course,
		Date:       parseDate(raw.Date.Value),
		TotalPutts: raw.Totals.TotalPutts.Value,
	}
	if raw.PlayerName.Value != nil {
		round.PlayerName = *raw.PlayerName.Value
	}
	if raw.Notes.Value != nil {
		round.Notes = *raw.Notes.Value
	}

	// Tee actually played, falling back to the first extracted tee's color.
	if raw.TeePlayed.Value != nil {
		round.TeeColor = *raw.TeePlayed.Value
	} else if len(raw.Tees) > 0 && raw.Tees[0].Color.Value != nil {
		round.TeeColor = *raw.Tees[0].Color.Value
	}

	for i, rh := range raw.Holes {
		number := i + 1
		if rh.HoleNumber.Value != nil {
			number = *rh.HoleNumber.Value
		}
		round.HoleScores = append(round.HoleScores, model.HoleScore{
			HoleNumber:        number,
			Strokes:           rh.Strokes.Value,
			Putts:             rh.Putts.Value,
			FairwayHit:        rh.FairwayHit.Value,
			GreenInRegulation: rh.GreenInRegulation.Value,
			ParPlayed:         rh.Par.Value,
			HandicapPlayed:    rh.Handicap.Value,
		})
	}

	return round
}

// buildRoundFromScores converts a scores-only extraction into a domain Round
// using the known course for pars and stroke conversion. Totals are always
// computed by summation over converted holes, never taken from the model.
func buildRoundFromScores(raw *RawScoresOnlyExtraction, course *model.Course) *model.Round {
	toPar := raw.ToParScoring.Value != nil && *raw.ToParScoring.Value

	round := &model.Round{
		Course: course,
		Date:   parseDate(raw.Date.Value),
	}
	if raw.PlayerName.Value != nil {
		round.PlayerName = *raw.PlayerName.Value
	}

	for i, rh := range raw.Holes {
		number := i + 1
		if rh.HoleNumber.Value != nil {
			number = *rh.HoleNumber.Value
		}
		par := course.HolePar(number)
		var handicap *int
		if h := course.Hole(number); h != nil {
			handicap = h.Handicap
		}
		round.HoleScores = append(round.HoleScores, model.HoleScore{
			HoleNumber:     number,
			Strokes:        convertWrittenScore(rh.Score.Value, toPar, par),
			Putts:          rh.Putts.Value,
			ParPlayed:      par,
			HandicapPlayed: handicap,
		})
	}

	return round
}

// convertWrittenScore converts a score exactly as written on the card into
// total strokes. In to-par mode the written value is relative to par; the
// conversion yields nil when the matching hole's par is unknown.
func convertWrittenScore(written *string, toPar bool, par *int) *int {
	if written == nil {
		return nil
	}
	s := strings.TrimSpace(*written)
	if s == "" {
		return nil
	}

	if toPar {
		if par == nil {
			return nil
		}
		rel, ok := parseRelativeScore(s)
		if !ok {
			return nil
		}
		strokes := *par + rel
		return &strokes
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

// parseRelativeScore parses to-par notation: "E" (even), "+2", "-1", or a
// bare signed integer.
func parseRelativeScore(s string) (int, bool) {
	if strings.EqualFold(s, "E") {
		return 0, true
	}
	n, err := strconv.Atoi(strings.TrimPrefix(s, "+"))
	if err != nil {
		return 0, false
	}
	return n, true
}

// parseDate parses the card's date against the one accepted layout.
// Unparsable or absent dates yield nil rather than an error.
func parseDate(s *string) *time.Time {
	if s == nil {
		return nil
	}
	t, err := time.Parse(model.DateFormat, *s)
	if err != nil {
		return nil
	}
	return &t
}
