package main

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/TuckerBrewer12/ScanScorecards/internal/extract"
	"github.com/TuckerBrewer12/ScanScorecards/internal/model"
	"github.com/TuckerBrewer12/ScanScorecards/internal/store"
	"github.com/TuckerBrewer12/ScanScorecards/pkg/vision"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the scorecard scanning API server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		client, err := initVision()
		if err != nil {
			return err
		}

		api := &apiServer{
			store:     st,
			extractor: extract.NewExtractor(client, st),
			maxUpload: cfg.Server.MaxUploadMiB << 20,
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: api.routes(),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// apiServer holds the shared dependencies of the HTTP handlers.
type apiServer struct {
	store     store.Store
	extractor *extract.Extractor
	maxUpload int64
}

// routes builds the HTTP router.
func (s *apiServer) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/scan", s.handleScan)
		r.Get("/courses", s.handleListCourses)
		r.Get("/courses/{id}", s.handleGetCourse)
		r.Get("/rounds", s.handleListRounds)
		r.Get("/rounds/{id}", s.handleGetRound)
		r.Get("/stats/{user}", s.handleUserStats)
	})
	return r
}

// scanResponse is the body returned by POST /api/v1/scan.
type scanResponse struct {
	Round       *model.Round                  `json:"round"`
	Course      *model.Course                 `json:"course,omitempty"`
	Confidence  *extract.ExtractionConfidence `json:"confidence"`
	RawResponse json.RawMessage               `json:"raw_response,omitempty"`
}

func (s *apiServer) handleScan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "read upload")
		return
	}

	strategyName := r.FormValue("strategy")
	if strategyName == "" {
		strategyName = cfg.Extract.DefaultStrategy
	}
	strategy, err := extract.ParseStrategy(strategyName)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var knownCourse *model.Course
	if id := r.FormValue("course_id"); id != "" {
		knownCourse, err = s.store.GetCourse(ctx, id)
		if err != nil {
			writeError(w, statusFor(err), "course not found")
			return
		}
	}

	result, err := s.extractor.Extract(ctx, extract.Request{
		Document: &vision.Document{
			Data:     data,
			MIMEType: uploadMIMEType(header.Header.Get("Content-Type"), header.Filename),
		},
		Strategy:    strategy,
		UserHint:    r.FormValue("hint"),
		KnownCourse: knownCourse,
		IncludeRaw:  r.FormValue("raw") == "true",
	})
	if err != nil {
		zap.L().Error("scan request failed", zap.String("file", header.Filename), zap.Error(err))
		writeError(w, statusFor(err), err.Error())
		return
	}

	userID := r.FormValue("user_id")
	if r.FormValue("save") == "true" {
		course, err := store.ResolveCourse(ctx, s.store, result.Course, userID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		result.Round.Course = course
		result.Round.FillFromCourse(course)
		result.Course = course

		saved, err := s.store.SaveRound(ctx, result.Round, userID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		result.Round = saved
	}

	zap.L().Info("scan request complete",
		zap.String("file", header.Filename),
		zap.Float64("confidence", result.Confidence.Overall),
		zap.String("level", string(result.Confidence.Level)),
	)

	writeJSON(w, http.StatusOK, scanResponse{
		Round:       result.Round,
		Course:      result.Course,
		Confidence:  result.Confidence,
		RawResponse: result.RawResponse,
	})
}

func (s *apiServer) handleListCourses(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	courses, err := s.store.ListCourses(r.Context(), store.CourseFilter{
		UserID:      q.Get("user_id"),
		MastersOnly: q.Get("masters") == "true",
		Search:      q.Get("search"),
		Limit:       queryInt(q.Get("limit")),
		Offset:      queryInt(q.Get("offset")),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"courses": courses})
}

func (s *apiServer) handleGetCourse(w http.ResponseWriter, r *http.Request) {
	course, err := s.store.GetCourse(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, course)
}

func (s *apiServer) handleListRounds(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rounds, err := s.store.ListRounds(r.Context(), store.RoundFilter{
		UserID:   q.Get("user_id"),
		CourseID: q.Get("course_id"),
		Limit:    queryInt(q.Get("limit")),
		Offset:   queryInt(q.Get("offset")),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rounds": rounds})
}

func (s *apiServer) handleGetRound(w http.ResponseWriter, r *http.Request) {
	round, err := s.store.GetRound(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, round)
}

func (s *apiServer) handleUserStats(w http.ResponseWriter, r *http.Request) {
	rounds, err := s.store.ListRounds(r.Context(), store.RoundFilter{
		UserID: chi.URLParam(r, "user"),
		Limit:  500,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, model.SummarizeRounds(rounds))
}

// uploadMIMEType picks the MIME type for an uploaded document, trusting the
// part header when present and falling back to the filename extension.
func uploadMIMEType(contentType, filename string) string {
	if contentType != "" && contentType != "application/octet-stream" {
		return contentType
	}
	return mime.TypeByExtension(filepath.Ext(filename))
}

// statusFor maps extraction and store errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case eris.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case eris.Is(err, extract.ErrUnsupportedFile):
		return http.StatusUnsupportedMediaType
	case eris.Is(err, extract.ErrUnknownStrategy),
		eris.Is(err, extract.ErrCourseRequired),
		eris.Is(err, extract.ErrFileNotFound):
		return http.StatusBadRequest
	case eris.Is(err, extract.ErrParseResponse):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func queryInt(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
