package extract

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/TuckerBrewer12/ScanScorecards/internal/model"
	"github.com/TuckerBrewer12/ScanScorecards/pkg/vision"
)

// Strategy selects how much work is delegated to the vision model versus
// recovered from already-known course data.
type Strategy string

const (
	// StrategyFull extracts everything from the card in one model call.
	StrategyFull Strategy = "full"
	// StrategyScoresOnly extracts only the player's scoring marks, using a
	// known course for layout. Requires a course.
	StrategyScoresOnly Strategy = "scores_only"
	// StrategySmart identifies the course with a cheap model call first,
	// then takes the scores-only path if the course is on record and the
	// full path otherwise.
	StrategySmart Strategy = "smart"
)

// ParseStrategy normalizes a user-supplied strategy name.
func ParseStrategy(s string) (Strategy, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	switch Strategy(normalized) {
	case StrategyFull, StrategyScoresOnly, StrategySmart:
		return Strategy(normalized), nil
	default:
		return "", eris.Wrapf(ErrUnknownStrategy, "%q", s)
	}
}

// CourseRepository is the course lookup consumed by the smart strategy. It
// must be safe for concurrent use.
type CourseRepository interface {
	FindCourseByName(ctx context.Context, name, location string) (*model.Course, error)
	GetCourse(ctx context.Context, id string) (*model.Course, error)
}

// Request is one scorecard extraction. Either Path or Document must be set;
// Path wins when both are.
type Request struct {
	Path     string
	Document *vision.Document

	Strategy    Strategy
	UserHint    string
	KnownCourse *model.Course
	IncludeRaw  bool
}

// Result is the outcome of one extraction: the converted round, its trust
// report, and optionally the verbatim raw model output for audit.
type Result struct {
	Round       *model.Round
	Course      *model.Course
	Confidence  *ExtractionConfidence
	RawResponse json.RawMessage
}

// Extractor runs the extraction pipeline: prompt build, one or two model
// calls, conversion, validation, confidence assembly. It holds no per-request
// state and is safe for concurrent use.
type Extractor struct {
	client  vision.Client
	courses CourseRepository
	log     *zap.Logger
}

func NewExtractor(client vision.Client, courses CourseRepository) *Extractor {
	return &Extractor{
		client:  client,
		courses: courses,
		log:     zap.L().Named("extract"),
	}
}

var mimeByExtension = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".heic": "image/heic",
	".pdf":  "application/pdf",
}

// SupportedFile reports whether the file's extension is an accepted scorecard
// document type.
func SupportedFile(path string) bool {
	_, ok := mimeByExtension[strings.ToLower(filepath.Ext(path))]
	return ok
}

func supportedMIME(mime string) bool {
	for _, m := range mimeByExtension {
		if m == mime {
			return true
		}
	}
	return false
}

// loadDocument resolves the request's document, reading it from disk when a
// path was given. Document type is judged against the allow-list before any
// model call, for byte documents and paths alike.
func loadDocument(req Request) (vision.Document, error) {
	if req.Path == "" {
		if req.Document == nil {
			return vision.Document{}, eris.Wrap(ErrFileNotFound, "no document provided")
		}
		if !supportedMIME(req.Document.MIMEType) {
			return vision.Document{}, eris.Wrapf(ErrUnsupportedFile, "%q", req.Document.MIMEType)
		}
		return *req.Document, nil
	}

	ext := strings.ToLower(filepath.Ext(req.Path))
	mime, ok := mimeByExtension[ext]
	if !ok {
		return vision.Document{}, eris.Wrapf(ErrUnsupportedFile, "%q", ext)
	}

	data, err := os.ReadFile(req.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return vision.Document{}, eris.Wrap(ErrFileNotFound, req.Path)
		}
		return vision.Document{}, eris.Wrap(err, "read document")
	}
	return vision.Document{Data: data, MIMEType: mime}, nil
}

// Extract runs one extraction request end to end. No retry, timeout, or
// cancellation is applied here; callers impose those via ctx.
func (e *Extractor) Extract(ctx context.Context, req Request) (*Result, error) {
	doc, err := loadDocument(req)
	if err != nil {
		return nil, err
	}

	switch req.Strategy {
	case StrategyFull:
		return e.extractFull(ctx, doc, req)
	case StrategyScoresOnly:
		if req.KnownCourse == nil {
			return nil, eris.Wrap(ErrCourseRequired, string(req.Strategy))
		}
		return e.extractScoresOnly(ctx, doc, req, req.KnownCourse)
	case StrategySmart:
		return e.extractSmart(ctx, doc, req)
	default:
		return nil, eris.Wrapf(ErrUnknownStrategy, "%q", req.Strategy)
	}
}

func (e *Extractor) extractFull(ctx context.Context, doc vision.Document, req Request) (*Result, error) {
	rawJSON, err := e.client.ExtractJSON(ctx, doc, buildFullPrompt(req.UserHint))
	if err != nil {
		return nil, eris.Wrap(err, "full extraction call")
	}

	var raw RawFullExtraction
	if err := json.Unmarshal(rawJSON, &raw); err != nil {
		e.log.Error("full extraction response did not decode", zap.Error(err))
		return nil, eris.Wrap(ErrParseResponse, err.Error())
	}

	course := buildCourseFromFull(&raw)
	round := buildRoundFromFull(&raw)
	round.Course = course
	confidence := buildFullConfidence(&raw)

	e.log.Info("full extraction complete",
		zap.Int("holes", len(raw.Holes)),
		zap.Float64("overall_confidence", confidence.Overall),
		zap.Int("fields_needing_review", len(confidence.FieldsNeedingReview)))

	result := &Result{Round: round, Course: course, Confidence: confidence}
	if req.IncludeRaw {
		result.RawResponse = rawJSON
	}
	return result, nil
}

func (e *Extractor) extractScoresOnly(ctx context.Context, doc vision.Document, req Request, course *model.Course) (*Result, error) {
	rawJSON, err := e.client.ExtractJSON(ctx, doc, buildScoresOnlyPrompt(course, req.UserHint))
	if err != nil {
		return nil, eris.Wrap(err, "scores-only extraction call")
	}

	var raw RawScoresOnlyExtraction
	if err := json.Unmarshal(rawJSON, &raw); err != nil {
		e.log.Error("scores-only extraction response did not decode", zap.Error(err))
		return nil, eris.Wrap(ErrParseResponse, err.Error())
	}

	round := buildRoundFromScores(&raw, course)
	strokes := make([]*int, len(round.HoleScores))
	for i, hs := range round.HoleScores {
		strokes[i] = hs.Strokes
	}
	confidence := buildScoresOnlyConfidence(&raw, strokes)

	e.log.Info("scores-only extraction complete",
		zap.String("course", course.Name),
		zap.Int("holes", len(raw.Holes)),
		zap.Float64("overall_confidence", confidence.Overall))

	result := &Result{Round: round, Course: course, Confidence: confidence}
	if req.IncludeRaw {
		result.RawResponse = rawJSON
	}
	return result, nil
}

// extractSmart identifies the course first, then delegates: scores-only when
// the course is on record, full otherwise. A caller-supplied known course
// skips identification. A lookup failure is logged and falls back to the full
// path rather than failing the extraction.
func (e *Extractor) extractSmart(ctx context.Context, doc vision.Document, req Request) (*Result, error) {
	if req.KnownCourse != nil {
		return e.extractScoresOnly(ctx, doc, req, req.KnownCourse)
	}

	idJSON, err := e.client.ExtractJSON(ctx, doc, buildCourseIDPrompt(req.UserHint))
	if err != nil {
		return nil, eris.Wrap(err, "course identification call")
	}

	var ident RawCourseIdentification
	if err := json.Unmarshal(idJSON, &ident); err != nil {
		e.log.Error("course identification response did not decode", zap.Error(err))
		return nil, eris.Wrap(ErrParseResponse, err.Error())
	}

	if ident.Name.Value == nil || e.courses == nil {
		e.log.Info("course not identified, using full extraction")
		return e.extractFull(ctx, doc, req)
	}

	location := ""
	if ident.Location.Value != nil {
		location = *ident.Location.Value
	}
	course, err := e.courses.FindCourseByName(ctx, *ident.Name.Value, location)
	if err != nil {
		e.log.Warn("course lookup failed, falling back to full extraction",
			zap.String("name", *ident.Name.Value), zap.Error(err))
		return e.extractFull(ctx, doc, req)
	}
	if course == nil {
		e.log.Info("course not on record, using full extraction",
			zap.String("name", *ident.Name.Value))
		return e.extractFull(ctx, doc, req)
	}

	e.log.Info("course identified",
		zap.String("name", course.Name), zap.String("id", course.ID))
	return e.extractScoresOnly(ctx, doc, req, course)
}
