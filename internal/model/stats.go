package model

import (
	"math"
	"time"
)

// RoundSummary is a lightweight projection of a round for listings and
// dashboards.
type RoundSummary struct {
	ID         string     `json:"id"`
	CourseName string     `json:"course_name,omitempty"`
	Date       *time.Time `json:"date,omitempty"`
	TeeColor   string     `json:"tee_color,omitempty"`
	TotalScore *int       `json:"total_score,omitempty"`
	TotalPutts *int       `json:"total_putts,omitempty"`
	GIRCount   *int       `json:"gir_count,omitempty"`
}

// Summarize projects the round into its summary form.
func (r *Round) Summarize() RoundSummary {
	s := RoundSummary{
		ID:         r.ID,
		Date:       r.Date,
		TeeColor:   r.TeeColor,
		TotalScore: r.TotalScore(),
		TotalPutts: r.PuttsTotal(),
		GIRCount:   r.GIRCount(),
	}
	if r.Course != nil {
		s.CourseName = r.Course.Name
	}
	return s
}

// UserStats aggregates a player's recorded rounds into dashboard figures.
// Averages only cover rounds that recorded the underlying value.
type UserStats struct {
	TotalRounds     int            `json:"total_rounds"`
	ScoringAverage  *float64       `json:"scoring_average,omitempty"`
	BestRound       *int           `json:"best_round,omitempty"`
	BestRoundID     string         `json:"best_round_id,omitempty"`
	BestRoundCourse string         `json:"best_round_course,omitempty"`
	AveragePutts    *float64       `json:"average_putts,omitempty"`
	AverageGIR      *float64       `json:"average_gir,omitempty"`
	RecentRounds    []RoundSummary `json:"recent_rounds"`
}

// SummarizeRounds computes dashboard stats over rounds ordered newest first.
func SummarizeRounds(rounds []Round) UserStats {
	stats := UserStats{
		TotalRounds:  len(rounds),
		RecentRounds: []RoundSummary{},
	}

	var scores, putts, girs []int
	for i := range rounds {
		r := &rounds[i]
		if s := r.TotalScore(); s != nil {
			scores = append(scores, *s)
			if stats.BestRound == nil || *s < *stats.BestRound {
				stats.BestRound = s
				stats.BestRoundID = r.ID
				if r.Course != nil {
					stats.BestRoundCourse = r.Course.Name
				} else {
					stats.BestRoundCourse = ""
				}
			}
		}
		if p := r.PuttsTotal(); p != nil {
			putts = append(putts, *p)
		}
		if g := r.GIRCount(); g != nil {
			girs = append(girs, *g)
		}
	}

	stats.ScoringAverage = average(scores)
	stats.AveragePutts = average(putts)
	stats.AverageGIR = average(girs)

	recent := rounds
	if len(recent) > 5 {
		recent = recent[:5]
	}
	for i := range recent {
		stats.RecentRounds = append(stats.RecentRounds, recent[i].Summarize())
	}
	return stats
}

// average returns the mean rounded to one decimal, or nil for no samples.
func average(values []int) *float64 {
	if len(values) == 0 {
		return nil
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	avg := math.Round(float64(sum)/float64(len(values))*10) / 10
	return &avg
}
