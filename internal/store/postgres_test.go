package store

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TuckerBrewer12/ScanScorecards/internal/model"
)

func newMockStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgresWithPool(mock), mock
}

func courseRow(id, userID, name string) *pgxmock.Rows {
	var owner *string
	if userID != "" {
		owner = &userID
	}
	return pgxmock.NewRows([]string{"id", "user_id", "name", "location", "par", "holes", "tees"}).
		AddRow(id, owner, name, "Austin, TX", intp(72), []byte(`[{"number":1,"par":4}]`), []byte(`[]`))
}

func TestPostgresCreateCourse(t *testing.T) {
	t.Parallel()
	s, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO courses").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	created, err := s.CreateCourse(context.Background(), sampleCourse("Lions Municipal"), "user1")
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "user1", created.UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetCourse(t *testing.T) {
	t.Parallel()
	s, mock := newMockStore(t)

	mock.ExpectQuery(`FROM courses WHERE id = \$1`).
		WithArgs("course-1").
		WillReturnRows(courseRow("course-1", "", "Lions Municipal"))

	got, err := s.GetCourse(context.Background(), "course-1")
	require.NoError(t, err)
	assert.Equal(t, "Lions Municipal", got.Name)
	assert.Equal(t, 72, *got.Par)
	require.Len(t, got.Holes, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetCourseNotFound(t *testing.T) {
	t.Parallel()
	s, mock := newMockStore(t)

	mock.ExpectQuery(`FROM courses WHERE id = \$1`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetCourse(context.Background(), "missing")
	assert.True(t, eris.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresFindCourseByNameExact(t *testing.T) {
	t.Parallel()
	s, mock := newMockStore(t)

	mock.ExpectQuery(`LOWER\(name\) = LOWER\(\$1\) AND user_id IS NULL`).
		WithArgs("Pebble Beach").
		WillReturnRows(courseRow("course-1", "", "Pebble Beach"))

	got, err := s.FindCourseByName(context.Background(), "Pebble Beach", "")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresFindCourseByNameSimilarityTier(t *testing.T) {
	t.Parallel()
	s, mock := newMockStore(t)

	mock.ExpectQuery(`LOWER\(name\) = LOWER\(\$1\)`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(`name ILIKE \$1`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(`SELECT id, name FROM courses WHERE user_id IS NULL`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name"}).
			AddRow("course-1", "The Pebble Beach Golf Links").
			AddRow("course-2", "Augusta National"))
	mock.ExpectQuery(`FROM courses WHERE id = \$1`).
		WithArgs("course-1").
		WillReturnRows(courseRow("course-1", "", "The Pebble Beach Golf Links"))

	got, err := s.FindCourseByName(context.Background(), "Pebble Beach Links", "")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "course-1", got.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresFindCourseByNameNoMatch(t *testing.T) {
	t.Parallel()
	s, mock := newMockStore(t)

	mock.ExpectQuery(`LOWER\(name\) = LOWER\(\$1\)`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(`name ILIKE \$1`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(`SELECT id, name FROM courses`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name"}).
			AddRow("course-2", "Augusta National"))

	got, err := s.FindCourseByName(context.Background(), "Pebble Beach", "")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresFindUserCourseByName(t *testing.T) {
	t.Parallel()
	s, mock := newMockStore(t)

	mock.ExpectQuery(`LOWER\(name\) = LOWER\(\$1\) AND user_id = \$2`).
		WithArgs("Shadow Glen", "user1").
		WillReturnRows(courseRow("course-1", "user1", "Shadow Glen"))

	got, err := s.FindUserCourseByName(context.Background(), "Shadow Glen", "", "user1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "user1", got.UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresPromoteToMaster(t *testing.T) {
	t.Parallel()
	s, mock := newMockStore(t)

	mock.ExpectExec(`UPDATE courses SET user_id = NULL`).
		WithArgs(pgxmock.AnyArg(), "course-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectQuery(`FROM courses WHERE id = \$1`).
		WithArgs("course-1").
		WillReturnRows(courseRow("course-1", "", "Riverside"))

	got, err := s.PromoteToMaster(context.Background(), "course-1")
	require.NoError(t, err)
	assert.Empty(t, got.UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresPromoteToMasterNotFound(t *testing.T) {
	t.Parallel()
	s, mock := newMockStore(t)

	mock.ExpectExec(`UPDATE courses SET user_id = NULL`).
		WithArgs(pgxmock.AnyArg(), "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	_, err := s.PromoteToMaster(context.Background(), "missing")
	assert.True(t, eris.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSaveRound(t *testing.T) {
	t.Parallel()
	s, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO rounds").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCopyFrom(pgx.Identifier{"round_holes"},
		[]string{"round_id", "hole_number", "strokes", "putts", "fairway_hit", "green_in_regulation", "par_played", "handicap_played"}).
		WillReturnResult(2)

	round := &model.Round{
		PlayerName: "Tucker",
		HoleScores: []model.HoleScore{
			{HoleNumber: 1, Strokes: intp(5)},
			{HoleNumber: 2, Strokes: intp(4)},
		},
	}
	saved, err := s.SaveRound(context.Background(), round, "user1")
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetRound(t *testing.T) {
	t.Parallel()
	s, mock := newMockStore(t)

	mock.ExpectQuery(`FROM rounds WHERE id = \$1`).
		WithArgs("round-1").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "user_id", "course_id", "tee_color", "played_on", "player_name", "notes", "total_putts",
		}).AddRow("round-1", "user1", nil, "Blue", nil, "Tucker", "", intp(30)))
	mock.ExpectQuery(`FROM round_holes WHERE round_id = \$1`).
		WithArgs("round-1").
		WillReturnRows(pgxmock.NewRows([]string{
			"hole_number", "strokes", "putts", "fairway_hit", "green_in_regulation", "par_played", "handicap_played",
		}).
			AddRow(1, intp(5), intp(2), nil, nil, intp(4), nil).
			AddRow(2, intp(4), intp(1), nil, nil, intp(4), nil))

	got, err := s.GetRound(context.Background(), "round-1")
	require.NoError(t, err)
	assert.Equal(t, "Tucker", got.PlayerName)
	assert.Equal(t, 30, *got.TotalPutts)
	require.Len(t, got.HoleScores, 2)
	assert.Equal(t, 5, *got.HoleScores[0].Strokes)
	assert.Nil(t, got.Course)
	assert.NoError(t, mock.ExpectationsWereMet())
}
