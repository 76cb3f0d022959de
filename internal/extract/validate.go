package extract

import "fmt"

// fieldCheck is the outcome of rule-based validation for one field: a
// validation confidence in [0,1] and the flags of any triggered rules.
// Fields with no applicable rule keep the default confidence of 1.
type fieldCheck struct {
	confidence float64
	flags      []string
}

func passCheck() fieldCheck {
	return fieldCheck{confidence: 1.0}
}

// cap lowers the confidence to at most c (ceiling semantics: multiple
// triggered rules combine via min) and records the flag.
func (f *fieldCheck) cap(c float64, flag string) {
	if c < f.confidence {
		f.confidence = c
	}
	f.flags = append(f.flags, flag)
}

// validateHole runs the plausibility and cross-field checks on a single
// hole's raw data. expectedNumber is the 1-based sequential position on the
// card. Absent data never fails a rule.
func validateHole(raw RawHoleData, expectedNumber int) map[string]fieldCheck {
	results := map[string]fieldCheck{
		"hole_number":         passCheck(),
		"par":                 passCheck(),
		"handicap":            passCheck(),
		"strokes":             passCheck(),
		"putts":               passCheck(),
		"fairway_hit":         passCheck(),
		"green_in_regulation": passCheck(),
	}

	strokes := results["strokes"]
	if raw.Strokes.Value != nil {
		s := *raw.Strokes.Value
		if s < 1 || s > 15 {
			strokes.cap(0.0, fmt.Sprintf("Strokes %d outside valid range 1-15", s))
		} else if s > 10 {
			strokes.cap(0.7, fmt.Sprintf("Strokes %d is unusually high", s))
		}
	}

	putts := results["putts"]
	if raw.Putts.Value != nil {
		p := *raw.Putts.Value
		if p < 0 || p > 10 {
			putts.cap(0.0, fmt.Sprintf("Putts %d outside valid range 0-10", p))
		} else if p > 4 {
			putts.cap(0.8, fmt.Sprintf("Putts %d is unusually high", p))
		}
	}

	if raw.Putts.Value != nil && raw.Strokes.Value != nil && *raw.Putts.Value > *raw.Strokes.Value {
		msg := fmt.Sprintf("Putts (%d) > strokes (%d)", *raw.Putts.Value, *raw.Strokes.Value)
		putts.cap(0.0, msg)
		strokes.cap(0.3, msg)
	}
	results["strokes"] = strokes
	results["putts"] = putts

	if raw.Par.Value != nil {
		par := *raw.Par.Value
		if par < 3 || par > 6 {
			check := results["par"]
			check.cap(0.0, fmt.Sprintf("Par %d outside valid range 3-6", par))
			results["par"] = check
		}
	}

	if raw.Handicap.Value != nil {
		hc := *raw.Handicap.Value
		if hc < 1 || hc > 18 {
			check := results["handicap"]
			check.cap(0.0, fmt.Sprintf("Handicap %d outside valid range 1-18", hc))
			results["handicap"] = check
		}
	}

	if raw.HoleNumber.Value != nil && *raw.HoleNumber.Value != expectedNumber {
		check := results["hole_number"]
		check.cap(0.3, fmt.Sprintf("Expected hole %d, got %d", expectedNumber, *raw.HoleNumber.Value))
		results["hole_number"] = check
	}

	if raw.GreenInRegulation.Value != nil && raw.Strokes.Value != nil &&
		raw.Putts.Value != nil && raw.Par.Value != nil {
		shotsToGreen := *raw.Strokes.Value - *raw.Putts.Value
		expectedGIR := shotsToGreen <= *raw.Par.Value-2
		if *raw.GreenInRegulation.Value != expectedGIR {
			check := results["green_in_regulation"]
			check.cap(0.5, fmt.Sprintf("GIR=%t inconsistent with %d shots to green on par %d",
				*raw.GreenInRegulation.Value, shotsToGreen, *raw.Par.Value))
			results["green_in_regulation"] = check
		}
	}

	return results
}

// validateScoreHole runs the subset of hole checks that apply to the
// scores-only path: raw putts, the converted stroke count, their cross-check,
// and the hole sequence.
func validateScoreHole(raw RawScoreHole, strokes *int, expectedNumber int) map[string]fieldCheck {
	results := map[string]fieldCheck{
		"hole_number": passCheck(),
		"score":       passCheck(),
		"putts":       passCheck(),
	}

	score := results["score"]
	if strokes != nil {
		s := *strokes
		if s < 1 || s > 15 {
			score.cap(0.0, fmt.Sprintf("Strokes %d outside valid range 1-15", s))
		} else if s > 10 {
			score.cap(0.7, fmt.Sprintf("Strokes %d is unusually high", s))
		}
	}

	putts := results["putts"]
	if raw.Putts.Value != nil {
		p := *raw.Putts.Value
		if p < 0 || p > 10 {
			putts.cap(0.0, fmt.Sprintf("Putts %d outside valid range 0-10", p))
		} else if p > 4 {
			putts.cap(0.8, fmt.Sprintf("Putts %d is unusually high", p))
		}
	}

	if raw.Putts.Value != nil && strokes != nil && *raw.Putts.Value > *strokes {
		msg := fmt.Sprintf("Putts (%d) > strokes (%d)", *raw.Putts.Value, *strokes)
		putts.cap(0.0, msg)
		score.cap(0.3, msg)
	}
	results["score"] = score
	results["putts"] = putts

	if raw.HoleNumber.Value != nil && *raw.HoleNumber.Value != expectedNumber {
		check := results["hole_number"]
		check.cap(0.3, fmt.Sprintf("Expected hole %d, got %d", expectedNumber, *raw.HoleNumber.Value))
		results["hole_number"] = check
	}

	return results
}

// validateTotals cross-checks the card's printed totals against sums over the
// extracted holes.
func validateTotals(raw *RawFullExtraction) map[string]fieldCheck {
	results := map[string]fieldCheck{
		"total_score":      passCheck(),
		"front_nine_score": passCheck(),
		"back_nine_score":  passCheck(),
		"total_putts":      passCheck(),
	}

	sumStrokes := func(lo, hi int) (int, bool) {
		total, found := 0, false
		for i, h := range raw.Holes {
			if i < lo || i >= hi || h.Strokes.Value == nil {
				continue
			}
			total += *h.Strokes.Value
			found = true
		}
		return total, found
	}

	if raw.Totals.TotalScore.Value != nil {
		if calc, ok := sumStrokes(0, len(raw.Holes)); ok && calc != *raw.Totals.TotalScore.Value {
			check := results["total_score"]
			check.cap(0.2, fmt.Sprintf("Total score %d != sum of hole strokes %d", *raw.Totals.TotalScore.Value, calc))
			results["total_score"] = check
		}
	}

	if raw.Totals.FrontNineScore.Value != nil {
		if calc, ok := sumStrokes(0, 9); ok && calc != *raw.Totals.FrontNineScore.Value {
			check := results["front_nine_score"]
			check.cap(0.2, fmt.Sprintf("Front nine %d != sum of holes 1-9: %d", *raw.Totals.FrontNineScore.Value, calc))
			results["front_nine_score"] = check
		}
	}

	if raw.Totals.BackNineScore.Value != nil {
		if calc, ok := sumStrokes(9, 18); ok && calc != *raw.Totals.BackNineScore.Value {
			check := results["back_nine_score"]
			check.cap(0.2, fmt.Sprintf("Back nine %d != sum of holes 10-18: %d", *raw.Totals.BackNineScore.Value, calc))
			results["back_nine_score"] = check
		}
	}

	if raw.Totals.FrontNineScore.Value != nil && raw.Totals.BackNineScore.Value != nil &&
		raw.Totals.TotalScore.Value != nil {
		sumHalves := *raw.Totals.FrontNineScore.Value + *raw.Totals.BackNineScore.Value
		if sumHalves != *raw.Totals.TotalScore.Value {
			msg := fmt.Sprintf("Front (%d) + Back (%d) = %d != Total (%d)",
				*raw.Totals.FrontNineScore.Value, *raw.Totals.BackNineScore.Value,
				sumHalves, *raw.Totals.TotalScore.Value)
			for _, key := range []string{"total_score", "front_nine_score", "back_nine_score"} {
				check := results[key]
				check.cap(0.3, msg)
				results[key] = check
			}
		}
	}

	if raw.Totals.TotalPutts.Value != nil {
		total, found := 0, false
		for _, h := range raw.Holes {
			if h.Putts.Value == nil {
				continue
			}
			total += *h.Putts.Value
			found = true
		}
		if found && total != *raw.Totals.TotalPutts.Value {
			check := results["total_putts"]
			check.cap(0.2, fmt.Sprintf("Total putts %d != sum of hole putts %d", *raw.Totals.TotalPutts.Value, total))
			results["total_putts"] = check
		}
	}

	return results
}

// validateCourse checks course-level and per-tee fields. Tee field names are
// composed from the tee's label since the set of tee boxes is model-chosen.
func validateCourse(raw *RawFullExtraction) map[string]fieldCheck {
	results := map[string]fieldCheck{
		"name":     passCheck(),
		"location": passCheck(),
		"par":      passCheck(),
	}

	if raw.Course.Par.Value != nil {
		check := results["par"]
		par := *raw.Course.Par.Value

		calc, found := 0, false
		for _, h := range raw.Holes {
			if h.Par.Value == nil {
				continue
			}
			calc += *h.Par.Value
			found = true
		}
		if found && calc != par {
			check.cap(0.3, fmt.Sprintf("Course par %d != sum of hole pars %d", par, calc))
		}
		if par < 54 || par > 80 {
			check.cap(0.0, fmt.Sprintf("Course par %d outside 54-80", par))
		}
		results["par"] = check
	}

	for i, tee := range raw.Tees {
		label := teeLabel(tee, i)

		slope := passCheck()
		if tee.SlopeRating.Value != nil {
			sr := *tee.SlopeRating.Value
			if sr < 55 || sr > 155 {
				slope.cap(0.0, fmt.Sprintf("%s slope %g outside valid range 55-155", label, sr))
			}
		}
		results[label+"_slope_rating"] = slope

		rating := passCheck()
		if tee.CourseRating.Value != nil {
			cr := *tee.CourseRating.Value
			if cr < 55.0 || cr > 85.0 {
				rating.cap(0.0, fmt.Sprintf("%s course rating %g outside valid range 55.0-85.0", label, cr))
			}
		}
		results[label+"_course_rating"] = rating

		results[label+"_color"] = passCheck()

		for _, yd := range tee.HoleYardages {
			check := passCheck()
			if yd.Yardage.Value != nil {
				y := *yd.Yardage.Value
				if y < 50 || y > 700 {
					check.cap(0.0, fmt.Sprintf("Yardage %d outside plausible range 50-700", y))
				}
			}
			results[fmt.Sprintf("%s_hole_%d_yardage", label, yd.HoleNumber)] = check
		}
	}

	return results
}

// teeLabel names a tee for confidence reporting: its extracted color, or a
// positional fallback when the color was unreadable.
func teeLabel(tee RawTeeData, index int) string {
	if tee.Color.Value != nil && *tee.Color.Value != "" {
		return *tee.Color.Value
	}
	return fmt.Sprintf("tee_%d", index)
}
