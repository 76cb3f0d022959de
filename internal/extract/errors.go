package extract

import "github.com/rotisserie/eris"

// Sentinel errors for the extraction pipeline. All are surfaced before any
// model call is made, except ErrParseResponse which wraps a response that does
// not conform to the requested schema.
var (
	ErrUnsupportedFile = eris.New("extract: unsupported file type")
	ErrFileNotFound    = eris.New("extract: file not found")
	ErrCourseRequired  = eris.New("extract: scores-only strategy requires a known course")
	ErrUnknownStrategy = eris.New("extract: unknown strategy")
	ErrParseResponse   = eris.New("extract: model response does not match requested schema")
)
