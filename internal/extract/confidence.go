package extract

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Level buckets a final confidence score for human consumption.
type Level string

const (
	LevelHigh    Level = "HIGH"
	LevelMedium  Level = "MEDIUM"
	LevelLow     Level = "LOW"
	LevelVeryLow Level = "VERY_LOW"
)

func levelFor(final float64) Level {
	switch {
	case final >= 0.85:
		return LevelHigh
	case final >= 0.60:
		return LevelMedium
	case final >= 0.30:
		return LevelLow
	default:
		return LevelVeryLow
	}
}

// finalConfidence combines the model's self-reported confidence with the
// rule-based validation confidence. Validation is a ceiling, never a floor:
// a failed rule zeroes the score no matter how sure the model was.
func finalConfidence(model, validation float64) float64 {
	return math.Round(model*validation*10000) / 10000
}

// FieldConfidence is the trust assessment for a single extracted field.
type FieldConfidence struct {
	FieldName            string   `json:"field_name"`
	ModelConfidence      float64  `json:"model_confidence"`
	ValidationConfidence float64  `json:"validation_confidence"`
	ValidationFlags      []string `json:"validation_flags,omitempty"`
	FinalConfidence      float64  `json:"final_confidence"`
	Level                Level    `json:"level"`
}

// HoleConfidence aggregates one hole's field assessments. Overall is the
// minimum final confidence over fields the model actually extracted; a hole
// with no extracted fields scores zero.
type HoleConfidence struct {
	HoleNumber int                        `json:"hole_number"`
	Fields     map[string]FieldConfidence `json:"fields"`
	Overall    float64                    `json:"overall"`
	Level      Level                      `json:"level"`
}

// CourseConfidence aggregates course and tee-level field assessments. Tee
// field names carry the tee's label since the set of tee boxes varies per
// card.
type CourseConfidence struct {
	Fields  map[string]FieldConfidence `json:"fields"`
	Overall float64                    `json:"overall"`
	Level   Level                      `json:"level"`
}

// ExtractionConfidence is the full trust report for one extraction.
type ExtractionConfidence struct {
	HoleScores           []HoleConfidence           `json:"hole_scores"`
	Course               *CourseConfidence          `json:"course,omitempty"`
	RoundFields          map[string]FieldConfidence `json:"round_fields"`
	Overall              float64                    `json:"overall"`
	Level                Level                      `json:"level"`
	TotalFieldsExtracted int                        `json:"total_fields_extracted"`
	FieldsNeedingReview  []string                   `json:"fields_needing_review"`
}

// fieldGroup accumulates field assessments along with whether each field's
// source value was actually extracted. Presence drives aggregation: nulls
// never count toward an overall minimum.
type fieldGroup struct {
	fields  map[string]FieldConfidence
	present map[string]bool
}

func newFieldGroup() *fieldGroup {
	return &fieldGroup{
		fields:  make(map[string]FieldConfidence),
		present: make(map[string]bool),
	}
}

func addField[T any](g *fieldGroup, name string, a Annotated[T], check fieldCheck) {
	final := finalConfidence(a.Confidence, check.confidence)
	g.fields[name] = FieldConfidence{
		FieldName:            name,
		ModelConfidence:      a.Confidence,
		ValidationConfidence: check.confidence,
		ValidationFlags:      check.flags,
		FinalConfidence:      final,
		Level:                levelFor(final),
	}
	g.present[name] = !a.IsNull()
}

// overall is the minimum final confidence over present fields, or zero when
// nothing was extracted.
func (g *fieldGroup) overall() float64 {
	min, found := 0.0, false
	for name, fc := range g.fields {
		if !g.present[name] {
			continue
		}
		if !found || fc.FinalConfidence < min {
			min = fc.FinalConfidence
			found = true
		}
	}
	if !found {
		return 0
	}
	return min
}

// reviewLines returns one line per field at LOW or below. prefix gives the
// field its context, e.g. "Hole 7 ". Lines come out sorted by field name so
// reports are stable. withDetail appends the validation flags, or the fixed
// low-model-confidence phrase when no rule fired.
func (g *fieldGroup) reviewLines(prefix string, withDetail bool) []string {
	names := make([]string, 0, len(g.fields))
	for name := range g.fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var lines []string
	for _, name := range names {
		fc := g.fields[name]
		if fc.Level != LevelLow && fc.Level != LevelVeryLow {
			continue
		}
		if !withDetail {
			lines = append(lines, fmt.Sprintf("%s%s: %.2f", prefix, name, fc.FinalConfidence))
			continue
		}
		reason := "low model confidence"
		if len(fc.ValidationFlags) > 0 {
			reason = strings.Join(fc.ValidationFlags, ", ")
		}
		lines = append(lines, fmt.Sprintf("%s%s: %.2f (%s)", prefix, name, fc.FinalConfidence, reason))
	}
	return lines
}

// buildFullConfidence assembles the trust report for a full extraction.
func buildFullConfidence(raw *RawFullExtraction) *ExtractionConfidence {
	holes := make([]HoleConfidence, len(raw.Holes))
	holeGroups := make([]*fieldGroup, len(raw.Holes))
	for i, h := range raw.Holes {
		checks := validateHole(h, i+1)
		g := newFieldGroup()
		addField(g, "hole_number", h.HoleNumber, checks["hole_number"])
		addField(g, "par", h.Par, checks["par"])
		addField(g, "handicap", h.Handicap, checks["handicap"])
		addField(g, "strokes", h.Strokes, checks["strokes"])
		addField(g, "putts", h.Putts, checks["putts"])
		addField(g, "fairway_hit", h.FairwayHit, checks["fairway_hit"])
		addField(g, "green_in_regulation", h.GreenInRegulation, checks["green_in_regulation"])

		overall := g.overall()
		holes[i] = HoleConfidence{
			HoleNumber: i + 1,
			Fields:     g.fields,
			Overall:    overall,
			Level:      levelFor(overall),
		}
		holeGroups[i] = g
	}

	courseChecks := validateCourse(raw)
	cg := newFieldGroup()
	addField(cg, "name", raw.Course.Name, courseChecks["name"])
	addField(cg, "location", raw.Course.Location, courseChecks["location"])
	addField(cg, "par", raw.Course.Par, courseChecks["par"])
	for i, tee := range raw.Tees {
		label := teeLabel(tee, i)
		addField(cg, label+"_color", tee.Color, courseChecks[label+"_color"])
		addField(cg, label+"_slope_rating", tee.SlopeRating, courseChecks[label+"_slope_rating"])
		addField(cg, label+"_course_rating", tee.CourseRating, courseChecks[label+"_course_rating"])
		for _, yd := range tee.HoleYardages {
			name := fmt.Sprintf("%s_hole_%d_yardage", label, yd.HoleNumber)
			addField(cg, name, yd.Yardage, courseChecks[name])
		}
	}
	courseOverall := cg.overall()
	course := &CourseConfidence{
		Fields:  cg.fields,
		Overall: courseOverall,
		Level:   levelFor(courseOverall),
	}

	totalsChecks := validateTotals(raw)
	rg := newFieldGroup()
	addField(rg, "tee_played", raw.TeePlayed, passCheck())
	addField(rg, "date", raw.Date, passCheck())
	addField(rg, "player_name", raw.PlayerName, passCheck())
	addField(rg, "notes", raw.Notes, passCheck())
	addField(rg, "total_score", raw.Totals.TotalScore, totalsChecks["total_score"])
	addField(rg, "front_nine_score", raw.Totals.FrontNineScore, totalsChecks["front_nine_score"])
	addField(rg, "back_nine_score", raw.Totals.BackNineScore, totalsChecks["back_nine_score"])
	addField(rg, "total_putts", raw.Totals.TotalPutts, totalsChecks["total_putts"])

	return assembleExtraction(holes, holeGroups, course, cg, rg)
}

// buildScoresOnlyConfidence assembles the trust report for a scores-only
// extraction. strokes holds the converted stroke count per hole, aligned with
// raw.Holes. Course data came from the database, not the model, so course
// confidence is pinned at full trust.
func buildScoresOnlyConfidence(raw *RawScoresOnlyExtraction, strokes []*int) *ExtractionConfidence {
	holes := make([]HoleConfidence, len(raw.Holes))
	holeGroups := make([]*fieldGroup, len(raw.Holes))
	for i, h := range raw.Holes {
		var converted *int
		if i < len(strokes) {
			converted = strokes[i]
		}
		checks := validateScoreHole(h, converted, i+1)
		g := newFieldGroup()
		addField(g, "hole_number", h.HoleNumber, checks["hole_number"])
		addField(g, "score", h.Score, checks["score"])
		addField(g, "putts", h.Putts, checks["putts"])

		overall := g.overall()
		holes[i] = HoleConfidence{
			HoleNumber: i + 1,
			Fields:     g.fields,
			Overall:    overall,
			Level:      levelFor(overall),
		}
		holeGroups[i] = g
	}

	course := &CourseConfidence{
		Fields:  map[string]FieldConfidence{},
		Overall: 1.0,
		Level:   LevelHigh,
	}

	rg := newFieldGroup()
	addField(rg, "to_par_scoring", raw.ToParScoring, passCheck())
	addField(rg, "date", raw.Date, passCheck())
	addField(rg, "player_name", raw.PlayerName, passCheck())

	return assembleExtraction(holes, holeGroups, course, newFieldGroup(), rg)
}

func assembleExtraction(holes []HoleConfidence, holeGroups []*fieldGroup,
	course *CourseConfidence, courseGroup, roundGroup *fieldGroup) *ExtractionConfidence {

	min, found := 0.0, false
	track := func(v float64) {
		if !found || v < min {
			min = v
			found = true
		}
	}
	for _, h := range holes {
		track(h.Overall)
	}
	if course != nil {
		track(course.Overall)
	}
	for _, fc := range roundGroup.fields {
		track(fc.FinalConfidence)
	}
	overall := 0.0
	if found {
		overall = min
	}

	var review []string
	for i, h := range holes {
		review = append(review, holeGroups[i].reviewLines(fmt.Sprintf("Hole %d ", h.HoleNumber), true)...)
	}
	review = append(review, courseGroup.reviewLines("Course ", true)...)
	review = append(review, roundGroup.reviewLines("", false)...)

	total := len(courseGroup.fields) + len(roundGroup.fields)
	for _, g := range holeGroups {
		total += len(g.fields)
	}

	return &ExtractionConfidence{
		HoleScores:           holes,
		Course:               course,
		RoundFields:          roundGroup.fields,
		Overall:              overall,
		Level:                levelFor(overall),
		TotalFieldsExtracted: total,
		FieldsNeedingReview:  review,
	}
}
