package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/TuckerBrewer12/ScanScorecards/internal/extract"
	"github.com/TuckerBrewer12/ScanScorecards/internal/model"
	"github.com/TuckerBrewer12/ScanScorecards/internal/store"
)

var (
	scanStrategy string
	scanHint     string
	scanCourseID string
	scanUser     string
	scanSave     bool
	scanRaw      bool
)

var scanCmd = &cobra.Command{
	Use:   "scan <file|dir>...",
	Short: "Extract rounds from scorecard images",
	Long:  "Reads one or more scorecard images or PDFs, extracts the round data, and prints each result with its confidence report. A directory argument scans every supported file in it; multiple files are processed concurrently.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("scan"); err != nil {
			return err
		}

		strategyName := scanStrategy
		if strategyName == "" {
			strategyName = cfg.Extract.DefaultStrategy
		}
		strategy, err := extract.ParseStrategy(strategyName)
		if err != nil {
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

		var knownCourse *model.Course
		if scanCourseID != "" {
			knownCourse, err = st.GetCourse(ctx, scanCourseID)
			if err != nil {
				return eris.Wrap(err, "load known course")
			}
		}

		extractor := extract.NewExtractor(client, st)

		files, err := expandScanArgs(args)
		if err != nil {
			return err
		}

		results := make([]scanResult, len(files))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(cfg.Extract.MaxConcurrent)

		for i, path := range files {
			g.Go(func() error {
				results[i] = scanOne(gctx, extractor, st, path, strategy, knownCourse)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		failed := 0
		for _, r := range results {
			if r.Error != "" {
				failed++
			}
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if len(results) == 1 {
			if err := enc.Encode(results[0]); err != nil {
				return eris.Wrap(err, "encode result")
			}
		} else if err := enc.Encode(results); err != nil {
			return eris.Wrap(err, "encode results")
		}

		if failed > 0 {
			return eris.Errorf("%d of %d scans failed", failed, len(results))
		}
		return nil
	},
}

// expandScanArgs resolves directory arguments to the supported scorecard files
// directly inside them; plain file arguments pass through untouched.
func expandScanArgs(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, eris.Wrap(err, "stat scan target")
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}

		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, eris.Wrap(err, "read scan directory")
		}
		found := 0
		for _, entry := range entries {
			if entry.IsDir() || !extract.SupportedFile(entry.Name()) {
				continue
			}
			files = append(files, filepath.Join(arg, entry.Name()))
			found++
		}
		if found == 0 {
			zap.L().Warn("no scorecard files in directory", zap.String("dir", arg))
		}
	}
	if len(files) == 0 {
		return nil, eris.New("no scorecard files to scan")
	}
	return files, nil
}

// scanResult is the per-file output of the scan command.
type scanResult struct {
	File         string                        `json:"file"`
	Round        *model.Round                  `json:"round,omitempty"`
	Course       *model.Course                 `json:"course,omitempty"`
	Confidence   *extract.ExtractionConfidence `json:"confidence,omitempty"`
	RawResponse  json.RawMessage               `json:"raw_response,omitempty"`
	SavedRoundID string                        `json:"saved_round_id,omitempty"`
	Error        string                        `json:"error,omitempty"`
}

func scanOne(ctx context.Context, extractor *extract.Extractor, st store.Store, path string, strategy extract.Strategy, knownCourse *model.Course) scanResult {
	out := scanResult{File: path}

	result, err := extractor.Extract(ctx, extract.Request{
		Path:        path,
		Strategy:    strategy,
		UserHint:    scanHint,
		KnownCourse: knownCourse,
		IncludeRaw:  scanRaw,
	})
	if err != nil {
		zap.L().Error("scan failed", zap.String("file", path), zap.Error(err))
		out.Error = err.Error()
		return out
	}

	out.Round = result.Round
	out.Course = result.Course
	out.Confidence = result.Confidence
	out.RawResponse = result.RawResponse

	zap.L().Info("scan complete",
		zap.String("file", path),
		zap.Float64("confidence", result.Confidence.Overall),
		zap.String("level", string(result.Confidence.Level)),
		zap.Int("fields_needing_review", len(result.Confidence.FieldsNeedingReview)),
	)

	if !scanSave {
		return out
	}

	course, err := store.ResolveCourse(ctx, st, result.Course, scanUser)
	if err != nil {
		zap.L().Error("course resolution failed", zap.String("file", path), zap.Error(err))
		out.Error = err.Error()
		return out
	}
	result.Round.Course = course
	result.Round.FillFromCourse(course)

	saved, err := st.SaveRound(ctx, result.Round, scanUser)
	if err != nil {
		zap.L().Error("save round failed", zap.String("file", path), zap.Error(err))
		out.Error = err.Error()
		return out
	}
	out.Round = saved
	out.Course = course
	out.SavedRoundID = saved.ID

	return out
}

func init() {
	scanCmd.Flags().StringVar(&scanStrategy, "strategy", "", "extraction strategy: full, scores_only, or smart (default from config)")
	scanCmd.Flags().StringVar(&scanHint, "hint", "", "free-text hint appended to the model prompt")
	scanCmd.Flags().StringVar(&scanCourseID, "course-id", "", "known course ID (required for scores_only)")
	scanCmd.Flags().StringVar(&scanUser, "user", "", "user ID to attribute saved rounds to")
	scanCmd.Flags().BoolVar(&scanSave, "save", false, "save extracted rounds to the store")
	scanCmd.Flags().BoolVar(&scanRaw, "raw", false, "include the raw model response in the output")
	rootCmd.AddCommand(scanCmd)
}
