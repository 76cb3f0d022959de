package main

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TuckerBrewer12/ScanScorecards/internal/config"
	"github.com/TuckerBrewer12/ScanScorecards/internal/extract"
	"github.com/TuckerBrewer12/ScanScorecards/internal/model"
	"github.com/TuckerBrewer12/ScanScorecards/internal/store"
	"github.com/TuckerBrewer12/ScanScorecards/pkg/vision"
)

// stubVision returns the same canned model response for every call.
type stubVision struct {
	response json.RawMessage
}

func (s stubVision) ExtractJSON(_ context.Context, _ vision.Document, _ string) (json.RawMessage, error) {
	return s.response, nil
}

const fullCardJSON = `{
	"course": {
		"name": {"value": "Lions Municipal", "confidence": 0.95},
		"location": {"value": "Austin, TX", "confidence": 0.9},
		"par": {"value": null, "confidence": 0}
	},
	"tees": [],
	"tee_played": {"value": "Blue", "confidence": 0.9},
	"date": {"value": "2025-06-14", "confidence": 0.9},
	"player_name": {"value": "Tucker", "confidence": 0.92},
	"holes": [
		{
			"hole_number": {"value": 1, "confidence": 0.99},
			"par": {"value": 4, "confidence": 0.95},
			"handicap": {"value": null, "confidence": 0},
			"strokes": {"value": 5, "confidence": 0.9},
			"putts": {"value": 2, "confidence": 0.85},
			"fairway_hit": {"value": null, "confidence": 0},
			"green_in_regulation": {"value": null, "confidence": 0}
		},
		{
			"hole_number": {"value": 2, "confidence": 0.99},
			"par": {"value": 4, "confidence": 0.95},
			"handicap": {"value": null, "confidence": 0},
			"strokes": {"value": 4, "confidence": 0.9},
			"putts": {"value": 1, "confidence": 0.85},
			"fairway_hit": {"value": null, "confidence": 0},
			"green_in_regulation": {"value": null, "confidence": 0}
		}
	],
	"totals": {
		"total_score": {"value": null, "confidence": 0},
		"front_nine_score": {"value": null, "confidence": 0},
		"back_nine_score": {"value": null, "confidence": 0},
		"total_putts": {"value": null, "confidence": 0}
	},
	"notes": {"value": null, "confidence": 0}
}`

func newTestAPI(t *testing.T) *apiServer {
	t.Helper()

	cfg = &config.Config{
		Extract: config.ExtractConfig{DefaultStrategy: "full", MaxConcurrent: 1},
	}

	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Migrate(context.Background()))

	return &apiServer{
		store:     st,
		extractor: extract.NewExtractor(stubVision{response: json.RawMessage(fullCardJSON)}, st),
		maxUpload: 20 << 20,
	}
}

// multipartScan builds a multipart request body with a JPEG file part and the
// given form fields.
func multipartScan(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {`form-data; name="file"; filename="card.jpg"`},
		"Content-Type":        {"image/jpeg"},
	})
	require.NoError(t, err)
	_, err = part.Write([]byte("not really a jpeg"))
	require.NoError(t, err)

	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestHealthz(t *testing.T) {
	api := newTestAPI(t)

	rr := httptest.NewRecorder()
	api.routes().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestScanEndpoint(t *testing.T) {
	api := newTestAPI(t)

	body, contentType := multipartScan(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/scan", body)
	req.Header.Set("Content-Type", contentType)

	rr := httptest.NewRecorder()
	api.routes().ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp scanResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotNil(t, resp.Round)
	assert.Equal(t, "Tucker", resp.Round.PlayerName)
	require.NotNil(t, resp.Course)
	assert.Equal(t, "Lions Municipal", resp.Course.Name)
	require.NotNil(t, resp.Confidence)
	assert.NotZero(t, resp.Confidence.Overall)
	assert.Empty(t, resp.Round.ID, "round not saved without save=true")
}

func TestScanEndpointSave(t *testing.T) {
	api := newTestAPI(t)

	body, contentType := multipartScan(t, map[string]string{
		"save":    "true",
		"user_id": "user1",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/scan", body)
	req.Header.Set("Content-Type", contentType)

	rr := httptest.NewRecorder()
	api.routes().ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp scanResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotNil(t, resp.Round)
	assert.NotEmpty(t, resp.Round.ID)
	require.NotNil(t, resp.Course)
	assert.NotEmpty(t, resp.Course.ID)

	// Round and course are visible on the list endpoints afterwards.
	rr = httptest.NewRecorder()
	api.routes().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/rounds?user_id=user1", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), resp.Round.ID)

	rr = httptest.NewRecorder()
	api.routes().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/courses?user_id=user1", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Lions Municipal")
}

func TestUserStatsEndpoint(t *testing.T) {
	api := newTestAPI(t)

	body, contentType := multipartScan(t, map[string]string{
		"save":    "true",
		"user_id": "user1",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/scan", body)
	req.Header.Set("Content-Type", contentType)

	rr := httptest.NewRecorder()
	api.routes().ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var scanned scanResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &scanned))

	rr = httptest.NewRecorder()
	api.routes().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/stats/user1", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var stats model.UserStats
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.TotalRounds)
	require.NotNil(t, stats.ScoringAverage)
	assert.InDelta(t, 9.0, *stats.ScoringAverage, 0.001)
	assert.Equal(t, scanned.Round.ID, stats.BestRoundID)
	assert.Equal(t, "Lions Municipal", stats.BestRoundCourse)
	require.Len(t, stats.RecentRounds, 1)
	assert.Equal(t, scanned.Round.ID, stats.RecentRounds[0].ID)

	// A user with no rounds gets zeroed stats, not an error.
	rr = httptest.NewRecorder()
	api.routes().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/stats/nobody", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var empty model.UserStats
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &empty))
	assert.Equal(t, 0, empty.TotalRounds)
	assert.Nil(t, empty.ScoringAverage)
}

func TestScanEndpointMissingFile(t *testing.T) {
	api := newTestAPI(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("strategy", "full"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/scan", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rr := httptest.NewRecorder()
	api.routes().ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "file field is required")
}

func TestScanEndpointUnsupportedUpload(t *testing.T) {
	api := newTestAPI(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {`form-data; name="file"; filename="notes.txt"`},
		"Content-Type":        {"text/plain"},
	})
	require.NoError(t, err)
	_, err = part.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/scan", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rr := httptest.NewRecorder()
	api.routes().ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rr.Code)
}

func TestScanEndpointUnknownStrategy(t *testing.T) {
	api := newTestAPI(t)

	body, contentType := multipartScan(t, map[string]string{"strategy": "psychic"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/scan", body)
	req.Header.Set("Content-Type", contentType)

	rr := httptest.NewRecorder()
	api.routes().ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetCourseNotFound(t *testing.T) {
	api := newTestAPI(t)

	rr := httptest.NewRecorder()
	api.routes().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/courses/missing", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestGetRoundNotFound(t *testing.T) {
	api := newTestAPI(t)

	rr := httptest.NewRecorder()
	api.routes().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/rounds/missing", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestUploadMIMEType(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "image/jpeg", uploadMIMEType("image/jpeg", "card.png"))
	assert.Equal(t, "image/png", uploadMIMEType("", "card.png"))
	assert.Equal(t, "image/png", uploadMIMEType("application/octet-stream", "card.png"))
}

func TestStatusFor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, http.StatusNotFound, statusFor(store.ErrNotFound))
	assert.Equal(t, http.StatusUnsupportedMediaType, statusFor(extract.ErrUnsupportedFile))
	assert.Equal(t, http.StatusBadRequest, statusFor(extract.ErrCourseRequired))
	assert.Equal(t, http.StatusBadRequest, statusFor(extract.ErrUnknownStrategy))
	assert.Equal(t, http.StatusUnprocessableEntity, statusFor(extract.ErrParseResponse))
	assert.Equal(t, http.StatusInternalServerError, statusFor(assert.AnError))
}
