package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/TuckerBrewer12/ScanScorecards/internal/model"
)

func TestBuildFullPromptHint(t *testing.T) {
	t.Parallel()

	assert.Equal(t, fullPrompt, buildFullPrompt(""))

	withHint := buildFullPrompt("My name is Tucker")
	assert.Contains(t, withHint, "ADDITIONAL CONTEXT FROM THE USER:\nMy name is Tucker")
	assert.True(t, strings.HasPrefix(withHint, fullPrompt))
}

func TestBuildScoresOnlyPromptEmbedsCourse(t *testing.T) {
	t.Parallel()

	course := &model.Course{
		Name:     "Muni North",
		Location: "Austin, TX",
		Par:      intp(36),
		Holes: []model.Hole{
			{Number: 1, Par: intp(4), Handicap: intp(7)},
		},
		Tees: []model.Tee{
			{Color: "Blue", SlopeRating: floatp(128), CourseRating: floatp(70.2)},
		},
	}

	prompt := buildScoresOnlyPrompt(course, "I record score to par")

	assert.Contains(t, prompt, "--- Known Course (database record, read-only) ---")
	assert.Contains(t, prompt, "Name: Muni North")
	assert.Contains(t, prompt, "Location: Austin, TX")
	assert.Contains(t, prompt, "Par: 36")
	assert.Contains(t, prompt, "Hole 1: par 4 handicap 7")
	assert.Contains(t, prompt, "ADDITIONAL CONTEXT FROM THE USER:\nI record score to par")
}

func TestFormatCourseContextNilCourse(t *testing.T) {
	t.Parallel()

	assert.Empty(t, FormatCourseContext(nil))
}

func TestBuildCourseIDPrompt(t *testing.T) {
	t.Parallel()

	prompt := buildCourseIDPrompt("")
	assert.Contains(t, prompt, "Identify the golf course")
	assert.NotContains(t, prompt, "ADDITIONAL CONTEXT")
}
