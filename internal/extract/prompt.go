package extract

import (
	"fmt"
	"strings"

	"github.com/TuckerBrewer12/ScanScorecards/internal/model"
)

const fullPrompt = `You are an expert golf scorecard reader. Extract all visible data from this golf scorecard image/document.

SCORING FORMAT:
Golfers record scores in different ways. Unless the user specifies otherwise, assume scores are written as TOTAL STROKES (e.g., "5" on a par 4 means 5 strokes). Other common formats:
- Score to par: written as +1, -1, E (even) relative to the hole's par. Convert to total strokes using the hole's par (e.g., "+1" on a par 4 = 5 strokes).
- Circles/squares: some golfers circle birdies or better, square bogeys or worse. The number inside is still the stroke count.

ALWAYS output the "strokes" field as TOTAL STROKES regardless of how the score was written on the card.

MULTIPLE PLAYERS:
Scorecards often have rows for multiple players. If the user specifies their name, extract only that player's scores. Otherwise extract the first/top row of scores.

CONFIDENCE:
For EVERY field, provide both the value and your confidence (0.0 to 1.0) that you read it correctly.
- 1.0 = absolutely certain, clearly printed/written
- 0.7-0.9 = fairly confident, minor ambiguity
- 0.4-0.6 = uncertain, handwriting is messy or partially obscured
- 0.0-0.3 = guessing, very hard to read

Return a JSON object with this exact structure. Use null for any field you cannot read at all.
Extract ALL tee boxes visible on the scorecard (e.g., blue, white, red) as separate entries in the tees array, each with their own yardages per hole.
Do NOT guess values you cannot see; use null instead.

{
  "course": {
    "name": {"value": "string or null", "confidence": 0.0},
    "location": {"value": "string or null", "confidence": 0.0},
    "par": {"value": "int or null", "confidence": 0.0}
  },
  "tees": [
    {
      "color": {"value": "string or null", "confidence": 0.0},
      "slope_rating": {"value": "float or null", "confidence": 0.0},
      "course_rating": {"value": "float or null", "confidence": 0.0},
      "hole_yardages": [
        {"hole_number": 1, "yardage": {"value": "int or null", "confidence": 0.0}}
      ]
    }
  ],
  "tee_played": {"value": "string or null", "confidence": 0.0},
  "date": {"value": "YYYY-MM-DD or null", "confidence": 0.0},
  "player_name": {"value": "string or null", "confidence": 0.0},
  "holes": [
    {
      "hole_number": {"value": 1, "confidence": 1.0},
      "par": {"value": "int or null", "confidence": 0.0},
      "handicap": {"value": "int or null", "confidence": 0.0},
      "strokes": {"value": "int or null", "confidence": 0.0},
      "putts": {"value": "int or null", "confidence": 0.0},
      "fairway_hit": {"value": "bool or null", "confidence": 0.0},
      "green_in_regulation": {"value": "bool or null", "confidence": 0.0}
    }
  ],
  "totals": {
    "total_score": {"value": "int or null", "confidence": 0.0},
    "front_nine_score": {"value": "int or null", "confidence": 0.0},
    "back_nine_score": {"value": "int or null", "confidence": 0.0},
    "total_putts": {"value": "int or null", "confidence": 0.0}
  },
  "notes": {"value": "string or null", "confidence": 0.0}
}

Important rules:
1. Include entries for all 18 holes (or 9 if it's a 9-hole card). Use null values for holes not present.
2. hole_number should always be sequential (1-18) with confidence 1.0.
3. For handwritten scores, report lower confidence if the digit is ambiguous (e.g., a 4 that might be a 9).
4. If the scorecard has front/back nine subtotals, extract those into totals.
5. Par values are typically printed, so they should have high confidence unless obscured.
6. Strokes and putts are typically handwritten, so be especially careful with confidence.
7. "tee_played" is the tee box the player actually played from, if the card indicates it.`

const scoresOnlyPrompt = `You are an expert golf scorecard reader. The course on this scorecard is ALREADY KNOWN; its layout is provided below as read-only context. Extract ONLY the player's per-hole scoring marks, exactly as written.

Do NOT convert scores. Copy the written mark verbatim into "score": a plain number like "5", or to-par notation like "+1", "-2", or "E".

Set "to_par_scoring" to true if the card's written numbers are relative to par (+1, E, -1 style), false if they are total stroke counts.

CONFIDENCE:
For EVERY field, provide both the value and your confidence (0.0 to 1.0) that you read it correctly. Use null for anything you cannot read; do not guess.

Return a JSON object with this exact structure:

{
  "to_par_scoring": {"value": "bool or null", "confidence": 0.0},
  "date": {"value": "YYYY-MM-DD or null", "confidence": 0.0},
  "player_name": {"value": "string or null", "confidence": 0.0},
  "holes": [
    {
      "hole_number": {"value": 1, "confidence": 1.0},
      "score": {"value": "string or null", "confidence": 0.0},
      "putts": {"value": "int or null", "confidence": 0.0}
    }
  ]
}

Include entries for every hole on the card, sequential hole_number with confidence 1.0.
If the user specifies their name, extract only that player's row.`

const courseIDPrompt = `Identify the golf course on this scorecard. Return ONLY the course name and its location (city/state or region) as printed on the card.

Return a JSON object with this exact structure, with your confidence (0.0 to 1.0) for each field. Use null for anything not visible; do not guess.

{
  "name": {"value": "string or null", "confidence": 0.0},
  "location": {"value": "string or null", "confidence": 0.0}
}`

// buildFullPrompt returns the full-schema prompt, with the optional free-text
// user hint appended.
func buildFullPrompt(userHint string) string {
	return appendHint(fullPrompt, userHint)
}

// buildScoresOnlyPrompt returns the scores-only prompt with the known course's
// layout embedded as read-only context.
func buildScoresOnlyPrompt(course *model.Course, userHint string) string {
	prompt := scoresOnlyPrompt
	if ctx := FormatCourseContext(course); ctx != "" {
		prompt += "\n\n" + ctx
	}
	return appendHint(prompt, userHint)
}

// buildCourseIDPrompt returns the cheap course-identification prompt.
func buildCourseIDPrompt(userHint string) string {
	return appendHint(courseIDPrompt, userHint)
}

func appendHint(prompt, userHint string) string {
	if userHint == "" {
		return prompt
	}
	return prompt + "\n\nADDITIONAL CONTEXT FROM THE USER:\n" + userHint + "\n"
}

// FormatCourseContext formats a known course's layout into a context block for
// injection into the scores-only prompt. Returns "" for a nil course.
func FormatCourseContext(course *model.Course) string {
	if course == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("--- Known Course (database record, read-only) ---\n")
	if course.Name != "" {
		b.WriteString("Name: " + course.Name + "\n")
	}
	if course.Location != "" {
		b.WriteString("Location: " + course.Location + "\n")
	}
	if course.Par != nil {
		fmt.Fprintf(&b, "Par: %d\n", *course.Par)
	}
	for _, h := range course.Holes {
		fmt.Fprintf(&b, "Hole %d:", h.Number)
		if h.Par != nil {
			fmt.Fprintf(&b, " par %d", *h.Par)
		}
		if h.Handicap != nil {
			fmt.Fprintf(&b, " handicap %d", *h.Handicap)
		}
		b.WriteString("\n")
	}
	for _, t := range course.Tees {
		if t.Color == "" {
			continue
		}
		fmt.Fprintf(&b, "Tee %s:", t.Color)
		if t.SlopeRating != nil {
			fmt.Fprintf(&b, " slope %.0f", *t.SlopeRating)
		}
		if t.CourseRating != nil {
			fmt.Fprintf(&b, " rating %.1f", *t.CourseRating)
		}
		b.WriteString("\n")
	}
	return b.String()
}
