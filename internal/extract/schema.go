package extract

// Annotated is a single extracted leaf value paired with the model's
// self-reported confidence that it was read correctly. A nil Value means the
// model could not read the field at all.
type Annotated[T any] struct {
	Value      *T      `json:"value"`
	Confidence float64 `json:"confidence"`
}

// IsNull reports whether the model returned no value for this field.
func (a Annotated[T]) IsNull() bool {
	return a.Value == nil
}

// Schema identifies which raw extraction shape a model call is expected to
// return. The dispatcher selects the schema; conversion and validation are
// exhaustive over this set.
type Schema string

const (
	SchemaFull       Schema = "full"
	SchemaScoresOnly Schema = "scores_only"
	SchemaCourseID   Schema = "course_identification"
)

// RawCourseData holds course-level fields from a full extraction.
type RawCourseData struct {
	Name     Annotated[string] `json:"name"`
	Location Annotated[string] `json:"location"`
	Par      Annotated[int]    `json:"par"`
}

// RawTeeYardage is one hole's yardage for a tee box.
type RawTeeYardage struct {
	HoleNumber int            `json:"hole_number"`
	Yardage    Annotated[int] `json:"yardage"`
}

// RawTeeData holds one tee box's fields from a full extraction.
type RawTeeData struct {
	Color        Annotated[string]  `json:"color"`
	SlopeRating  Annotated[float64] `json:"slope_rating"`
	CourseRating Annotated[float64] `json:"course_rating"`
	HoleYardages []RawTeeYardage    `json:"hole_yardages"`
}

// RawHoleData holds a single hole's fields from a full extraction.
type RawHoleData struct {
	HoleNumber        Annotated[int]  `json:"hole_number"`
	Par               Annotated[int]  `json:"par"`
	Handicap          Annotated[int]  `json:"handicap"`
	Strokes           Annotated[int]  `json:"strokes"`
	Putts             Annotated[int]  `json:"putts"`
	FairwayHit        Annotated[bool] `json:"fairway_hit"`
	GreenInRegulation Annotated[bool] `json:"green_in_regulation"`
}

// RawTotalsData holds the card's printed totals row.
type RawTotalsData struct {
	TotalScore     Annotated[int] `json:"total_score"`
	FrontNineScore Annotated[int] `json:"front_nine_score"`
	BackNineScore  Annotated[int] `json:"back_nine_score"`
	TotalPutts     Annotated[int] `json:"total_putts"`
}

// RawFullExtraction is the complete raw model output for the full schema,
// before domain conversion.
type RawFullExtraction struct {
	Course     RawCourseData     `json:"course"`
	Tees       []RawTeeData      `json:"tees"`
	TeePlayed  Annotated[string] `json:"tee_played"`
	Date       Annotated[string] `json:"date"`
	PlayerName Annotated[string] `json:"player_name"`
	Holes      []RawHoleData     `json:"holes"`
	Totals     RawTotalsData     `json:"totals"`
	Notes      Annotated[string] `json:"notes"`
}

// RawScoreHole is one hole of a scores-only extraction: the score exactly as
// written on the card (may be to-par notation like "+1" or "E") plus putts.
type RawScoreHole struct {
	HoleNumber Annotated[int]    `json:"hole_number"`
	Score      Annotated[string] `json:"score"`
	Putts      Annotated[int]    `json:"putts"`
}

// RawScoresOnlyExtraction is the raw model output for the scores-only schema,
// used when the course layout is already known.
type RawScoresOnlyExtraction struct {
	ToParScoring Annotated[bool]   `json:"to_par_scoring"`
	Date         Annotated[string] `json:"date"`
	PlayerName   Annotated[string] `json:"player_name"`
	Holes        []RawScoreHole    `json:"holes"`
}

// RawCourseIdentification is the raw model output for the cheap
// course-identification call used by the smart strategy.
type RawCourseIdentification struct {
	Name     Annotated[string] `json:"name"`
	Location Annotated[string] `json:"location"`
}
