package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/TuckerBrewer12/ScanScorecards/internal/model"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = eris.New("store: not found")

// CourseFilter specifies criteria for listing courses.
type CourseFilter struct {
	UserID      string `json:"user_id,omitempty"`
	MastersOnly bool   `json:"masters_only,omitempty"`
	Search      string `json:"search,omitempty"`
	Limit       int    `json:"limit,omitempty"`
	Offset      int    `json:"offset,omitempty"`
}

// RoundFilter specifies criteria for listing rounds.
type RoundFilter struct {
	UserID   string `json:"user_id,omitempty"`
	CourseID string `json:"course_id,omitempty"`
	Limit    int    `json:"limit,omitempty"`
	Offset   int    `json:"offset,omitempty"`
}

// Store defines the persistence interface for courses and rounds.
//
// A course with an empty UserID is a master record shared by everyone;
// user-owned courses shadow masters until promoted. The name lookups are
// tiered: exact case-insensitive, then substring, then token similarity.
type Store interface {
	// Courses
	CreateCourse(ctx context.Context, course *model.Course, userID string) (*model.Course, error)
	GetCourse(ctx context.Context, id string) (*model.Course, error)
	FindCourseByName(ctx context.Context, name, location string) (*model.Course, error)
	FindUserCourseByName(ctx context.Context, name, location, userID string) (*model.Course, error)
	FindAnyUserCourseByName(ctx context.Context, name, location string) (*model.Course, error)
	FillCourseGaps(ctx context.Context, courseID string, scanned *model.Course) error
	PromoteToMaster(ctx context.Context, courseID string) (*model.Course, error)
	ListCourses(ctx context.Context, filter CourseFilter) ([]model.Course, error)

	// Rounds
	SaveRound(ctx context.Context, round *model.Round, userID string) (*model.Round, error)
	GetRound(ctx context.Context, id string) (*model.Round, error)
	ListRounds(ctx context.Context, filter RoundFilter) ([]model.Round, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// New opens a store for the configured driver.
func New(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case "sqlite":
		return NewSQLite(dsn)
	case "postgres":
		return NewPostgres(ctx, dsn, nil)
	default:
		return nil, eris.Errorf("store: unknown driver %q", driver)
	}
}

// ResolveCourse finds or creates the course a scanned round was played on.
//
// Resolution is tiered:
//  1. A master course exists: use it as-is.
//  2. The user already owns a matching course: fill its gaps from the scan.
//  3. Another user owns a match: fill gaps, then promote it to master.
//  4. Nobody has it: create a user-owned course from the scan.
//
// A nil return with nil error means the scan carried no course name to
// resolve against.
func ResolveCourse(ctx context.Context, s Store, scanned *model.Course, userID string) (*model.Course, error) {
	if scanned == nil || scanned.Name == "" {
		return nil, nil
	}

	course, err := s.FindCourseByName(ctx, scanned.Name, scanned.Location)
	if err != nil {
		return nil, eris.Wrap(err, "resolve course: master lookup")
	}
	if course != nil {
		return course, nil
	}

	course, err = s.FindUserCourseByName(ctx, scanned.Name, scanned.Location, userID)
	if err != nil {
		return nil, eris.Wrap(err, "resolve course: user lookup")
	}
	if course != nil {
		if err := s.FillCourseGaps(ctx, course.ID, scanned); err != nil {
			return nil, eris.Wrap(err, "resolve course: fill gaps")
		}
		return s.GetCourse(ctx, course.ID)
	}

	course, err = s.FindAnyUserCourseByName(ctx, scanned.Name, scanned.Location)
	if err != nil {
		return nil, eris.Wrap(err, "resolve course: cross-user lookup")
	}
	if course != nil {
		if err := s.FillCourseGaps(ctx, course.ID, scanned); err != nil {
			return nil, eris.Wrap(err, "resolve course: fill gaps")
		}
		return s.PromoteToMaster(ctx, course.ID)
	}

	return s.CreateCourse(ctx, scanned, userID)
}
