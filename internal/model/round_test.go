package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHoleScoreToPar(t *testing.T) {
	t.Parallel()

	s := HoleScore{HoleNumber: 1, Strokes: intp(5), ParPlayed: intp(4)}
	rel := s.ToPar()
	require.NotNil(t, rel)
	assert.Equal(t, 1, *rel)

	assert.Nil(t, HoleScore{Strokes: intp(5)}.ToPar())
	assert.Nil(t, HoleScore{ParPlayed: intp(4)}.ToPar())
}

func TestHoleScoreScoreName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		strokes int
		par     int
		want    string
	}{
		{1, 4, "albatross"},
		{2, 4, "eagle"},
		{3, 4, "birdie"},
		{4, 4, "par"},
		{5, 4, "bogey"},
		{6, 4, "double bogey"},
		{7, 4, "triple bogey"},
		{8, 4, "quadruple bogey"},
		{10, 4, "quintuple+"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()
			s := HoleScore{Strokes: intp(tt.strokes), ParPlayed: intp(tt.par)}
			assert.Equal(t, tt.want, s.ScoreName())
		})
	}

	assert.Equal(t, "", HoleScore{}.ScoreName())
}

func TestRoundTotals(t *testing.T) {
	t.Parallel()

	r := Round{}
	for i := 1; i <= 18; i++ {
		r.HoleScores = append(r.HoleScores, HoleScore{
			HoleNumber: i,
			Strokes:    intp(4),
			Putts:      intp(2),
		})
	}

	require.NotNil(t, r.TotalScore())
	assert.Equal(t, 72, *r.TotalScore())
	assert.Equal(t, 36, *r.FrontNineScore())
	assert.Equal(t, 36, *r.BackNineScore())
	assert.Equal(t, 36, *r.PuttsTotal())

	// A recorded total wins over the computed sum.
	r.TotalPutts = intp(34)
	assert.Equal(t, 34, *r.PuttsTotal())

	empty := Round{}
	assert.Nil(t, empty.TotalScore())
	assert.Nil(t, empty.PuttsTotal())
	assert.Nil(t, empty.GIRCount())
}

func TestRoundGIRCount(t *testing.T) {
	t.Parallel()

	r := Round{HoleScores: []HoleScore{
		{HoleNumber: 1, GreenInRegulation: boolp(true)},
		{HoleNumber: 2, GreenInRegulation: boolp(false)},
		{HoleNumber: 3, GreenInRegulation: boolp(true)},
		{HoleNumber: 4},
	}}

	count := r.GIRCount()
	require.NotNil(t, count)
	assert.Equal(t, 2, *count)
}

func TestRoundIsComplete(t *testing.T) {
	t.Parallel()

	r := Round{}
	assert.False(t, r.IsComplete())

	for i := 1; i <= 18; i++ {
		r.HoleScores = append(r.HoleScores, HoleScore{HoleNumber: i, Strokes: intp(4)})
	}
	assert.True(t, r.IsComplete())

	r.HoleScores[17].Strokes = nil
	assert.False(t, r.IsComplete())

	nine := Round{}
	for i := 1; i <= 9; i++ {
		nine.HoleScores = append(nine.HoleScores, HoleScore{HoleNumber: i, Strokes: intp(5)})
	}
	assert.True(t, nine.IsComplete())
}

func TestRoundFillFromCourse(t *testing.T) {
	t.Parallel()

	course := &Course{Holes: []Hole{
		{Number: 1, Par: intp(4), Handicap: intp(7)},
		{Number: 2, Par: intp(3)},
	}}
	r := Round{HoleScores: []HoleScore{
		{HoleNumber: 1, Strokes: intp(5), ParPlayed: intp(5)},
		{HoleNumber: 2, Strokes: intp(4)},
		{HoleNumber: 3, Strokes: intp(6)},
	}}

	r.FillFromCourse(course)

	assert.Equal(t, 5, *r.HoleScores[0].ParPlayed, "recorded par kept")
	assert.Equal(t, 7, *r.HoleScores[0].HandicapPlayed)
	assert.Equal(t, 3, *r.HoleScores[1].ParPlayed)
	assert.Nil(t, r.HoleScores[2].ParPlayed, "hole not on course layout")

	r.FillFromCourse(nil)
}

func TestRoundPlayedTee(t *testing.T) {
	t.Parallel()

	course := &Course{Tees: []Tee{{Color: "blue", SlopeRating: floatp(135)}}}
	r := Round{Course: course, TeeColor: "Blue"}

	tee := r.PlayedTee()
	require.NotNil(t, tee)
	assert.Equal(t, "blue", tee.Color)

	noTee := Round{Course: course}
	assert.Nil(t, noTee.PlayedTee())
	noCourse := Round{TeeColor: "blue"}
	assert.Nil(t, noCourse.PlayedTee())
}
