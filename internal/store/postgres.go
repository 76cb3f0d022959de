package store

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/TuckerBrewer12/ScanScorecards/internal/db"
	"github.com/TuckerBrewer12/ScanScorecards/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	// Apply pool sizing from config with sensible defaults.
	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresWithPool wraps an existing pool. Used by tests with pgxmock.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, closeFn: func() {}}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS courses (
	id         UUID PRIMARY KEY,
	user_id    TEXT,
	name       TEXT NOT NULL,
	location   TEXT NOT NULL DEFAULT '',
	par        INT,
	holes      JSONB NOT NULL DEFAULT '[]',
	tees       JSONB NOT NULL DEFAULT '[]',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS rounds (
	id          UUID PRIMARY KEY,
	user_id     TEXT NOT NULL,
	course_id   UUID REFERENCES courses(id),
	tee_color   TEXT NOT NULL DEFAULT '',
	played_on   DATE,
	player_name TEXT NOT NULL DEFAULT '',
	notes       TEXT NOT NULL DEFAULT '',
	total_putts INT,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS round_holes (
	round_id            UUID NOT NULL REFERENCES rounds(id) ON DELETE CASCADE,
	hole_number         INT NOT NULL,
	strokes             INT,
	putts               INT,
	fairway_hit         BOOLEAN,
	green_in_regulation BOOLEAN,
	par_played          INT,
	handicap_played     INT,
	PRIMARY KEY (round_id, hole_number)
);

CREATE INDEX IF NOT EXISTS idx_courses_name ON courses(name);
CREATE INDEX IF NOT EXISTS idx_courses_user_id ON courses(user_id);
CREATE INDEX IF NOT EXISTS idx_rounds_user_id ON rounds(user_id);
CREATE INDEX IF NOT EXISTS idx_rounds_course_id ON rounds(course_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.closeFn()
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

func (s *PostgresStore) CreateCourse(ctx context.Context, course *model.Course, userID string) (*model.Course, error) {
	created := *course
	created.ID = uuid.New().String()
	created.UserID = userID

	holesJSON, teesJSON, err := marshalLayout(&created)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	_, err = s.pool.Exec(ctx,
		`INSERT INTO courses (id, user_id, name, location, par, holes, tees, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		created.ID, nullString(userID), created.Name, created.Location,
		created.Par, holesJSON, teesJSON, now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert course")
	}
	return &created, nil
}

const pgCourseCols = `SELECT id, user_id, name, location, par, holes, tees FROM courses`

func (s *PostgresStore) GetCourse(ctx context.Context, id string) (*model.Course, error) {
	course, err := s.scanCourseRow(s.pool.QueryRow(ctx, pgCourseCols+` WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, eris.Wrapf(ErrNotFound, "course %s", id)
	}
	return course, nil
}

func (s *PostgresStore) FindCourseByName(ctx context.Context, name, location string) (*model.Course, error) {
	return s.findCourse(ctx, name, location, "user_id IS NULL", nil)
}

func (s *PostgresStore) FindUserCourseByName(ctx context.Context, name, location, userID string) (*model.Course, error) {
	return s.findCourse(ctx, name, location, "user_id = $2", []any{userID})
}

func (s *PostgresStore) FindAnyUserCourseByName(ctx context.Context, name, location string) (*model.Course, error) {
	return s.findCourse(ctx, name, location, "user_id IS NOT NULL", nil)
}

// findCourse runs the tiered name lookup. ownerClause may reference $2 for a
// single owner argument; the location predicate picks up the next placeholder.
func (s *PostgresStore) findCourse(ctx context.Context, name, location, ownerClause string, ownerArgs []any) (*model.Course, error) {
	locPlaceholder := "$2"
	if len(ownerArgs) > 0 {
		locPlaceholder = "$3"
	}

	// Tier 1: exact, case-insensitive.
	query := pgCourseCols + ` WHERE LOWER(name) = LOWER($1) AND ` + ownerClause
	args := append([]any{name}, ownerArgs...)
	if location != "" {
		query += ` AND LOWER(location) = LOWER(` + locPlaceholder + `)`
		args = append(args, location)
	}
	course, err := s.scanCourseRow(s.pool.QueryRow(ctx, query+` LIMIT 1`, args...))
	if err != nil || course != nil {
		return course, err
	}

	// Tier 2: partial, case-insensitive.
	query = pgCourseCols + ` WHERE name ILIKE $1 AND ` + ownerClause
	args = append([]any{"%" + name + "%"}, ownerArgs...)
	if location != "" {
		query += ` AND location ILIKE ` + locPlaceholder
		args = append(args, "%"+location+"%")
	}
	course, err = s.scanCourseRow(s.pool.QueryRow(ctx, query+` LIMIT 1`, args...))
	if err != nil || course != nil {
		return course, err
	}

	// Tier 3: token similarity over candidate names.
	candQuery := `SELECT id, name FROM courses WHERE ` + ownerClause
	if len(ownerArgs) > 0 {
		candQuery = `SELECT id, name FROM courses WHERE user_id = $1`
	}
	rows, err := s.pool.Query(ctx, candQuery, ownerArgs...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: similarity candidates")
	}
	defer rows.Close()

	var ids, names []string
	for rows.Next() {
		var id, candidate string
		if err := rows.Scan(&id, &candidate); err != nil {
			return nil, eris.Wrap(err, "postgres: scan candidate")
		}
		ids = append(ids, id)
		names = append(names, candidate)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate candidates")
	}

	best := bestSimilarCourse(name, names)
	if best < 0 {
		return nil, nil
	}
	return s.GetCourse(ctx, ids[best])
}

func (s *PostgresStore) FillCourseGaps(ctx context.Context, courseID string, scanned *model.Course) error {
	course, err := s.GetCourse(ctx, courseID)
	if err != nil {
		return err
	}
	mergeCourseGaps(course, scanned)

	holesJSON, teesJSON, err := marshalLayout(course)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE courses SET par = $1, holes = $2, tees = $3, updated_at = $4 WHERE id = $5`,
		course.Par, holesJSON, teesJSON, time.Now().UTC(), courseID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: fill gaps %s", courseID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "course %s", courseID)
	}
	return nil
}

func (s *PostgresStore) PromoteToMaster(ctx context.Context, courseID string) (*model.Course, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE courses SET user_id = NULL, updated_at = $1 WHERE id = $2`,
		time.Now().UTC(), courseID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: promote course %s", courseID)
	}
	if tag.RowsAffected() == 0 {
		return nil, eris.Wrapf(ErrNotFound, "course %s", courseID)
	}
	return s.GetCourse(ctx, courseID)
}

func (s *PostgresStore) ListCourses(ctx context.Context, filter CourseFilter) ([]model.Course, error) {
	query := pgCourseCols + ` WHERE 1=1`
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return placeholder(len(args))
	}

	if filter.MastersOnly {
		query += ` AND user_id IS NULL`
	} else if filter.UserID != "" {
		query += ` AND (user_id IS NULL OR user_id = ` + arg(filter.UserID) + `)`
	}
	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		query += ` AND (name ILIKE ` + p + ` OR location ILIKE ` + p + `)`
	}
	query += ` ORDER BY name`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ` + arg(limit)
	if filter.Offset > 0 {
		query += ` OFFSET ` + arg(filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list courses")
	}
	defer rows.Close()

	var courses []model.Course
	for rows.Next() {
		c, err := s.scanCourseRow(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, *c)
	}
	return courses, eris.Wrap(rows.Err(), "postgres: list courses iterate")
}

func (s *PostgresStore) SaveRound(ctx context.Context, round *model.Round, userID string) (*model.Round, error) {
	saved := *round
	saved.ID = uuid.New().String()
	saved.UserID = userID

	var courseID *string
	if saved.Course != nil && saved.Course.ID != "" {
		courseID = &saved.Course.ID
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO rounds (id, user_id, course_id, tee_color, played_on, player_name, notes, total_putts, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		saved.ID, userID, courseID, saved.TeeColor, saved.Date,
		saved.PlayerName, saved.Notes, saved.TotalPutts, time.Now().UTC(),
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert round")
	}

	rows := make([][]any, 0, len(saved.HoleScores))
	for _, hs := range saved.HoleScores {
		rows = append(rows, []any{
			saved.ID, hs.HoleNumber, hs.Strokes, hs.Putts,
			hs.FairwayHit, hs.GreenInRegulation, hs.ParPlayed, hs.HandicapPlayed,
		})
	}
	if _, err := db.CopyFrom(ctx, s.pool, "round_holes",
		[]string{"round_id", "hole_number", "strokes", "putts", "fairway_hit", "green_in_regulation", "par_played", "handicap_played"},
		rows,
	); err != nil {
		return nil, eris.Wrapf(err, "postgres: insert holes for round %s", saved.ID)
	}

	return &saved, nil
}

const pgRoundCols = `SELECT id, user_id, course_id, tee_color, played_on, player_name, notes, total_putts FROM rounds`

func (s *PostgresStore) GetRound(ctx context.Context, id string) (*model.Round, error) {
	round, err := s.scanRoundRow(ctx, s.pool.QueryRow(ctx, pgRoundCols+` WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	if round == nil {
		return nil, eris.Wrapf(ErrNotFound, "round %s", id)
	}
	return round, nil
}

func (s *PostgresStore) ListRounds(ctx context.Context, filter RoundFilter) ([]model.Round, error) {
	query := pgRoundCols + ` WHERE 1=1`
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return placeholder(len(args))
	}

	if filter.UserID != "" {
		query += ` AND user_id = ` + arg(filter.UserID)
	}
	if filter.CourseID != "" {
		query += ` AND course_id = ` + arg(filter.CourseID)
	}
	query += ` ORDER BY played_on DESC NULLS LAST, created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ` + arg(limit)
	if filter.Offset > 0 {
		query += ` OFFSET ` + arg(filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list rounds")
	}
	defer rows.Close()

	var rounds []model.Round
	for rows.Next() {
		r, err := s.scanRoundRow(ctx, rows)
		if err != nil {
			return nil, err
		}
		rounds = append(rounds, *r)
	}
	return rounds, eris.Wrap(rows.Err(), "postgres: list rounds iterate")
}

func (s *PostgresStore) scanRoundRow(ctx context.Context, row pgx.Row) (*model.Round, error) {
	var r model.Round
	var courseID *string

	err := row.Scan(&r.ID, &r.UserID, &courseID, &r.TeeColor, &r.Date,
		&r.PlayerName, &r.Notes, &r.TotalPutts)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan round")
	}

	holes, err := s.pool.Query(ctx,
		`SELECT hole_number, strokes, putts, fairway_hit, green_in_regulation, par_played, handicap_played
		 FROM round_holes WHERE round_id = $1 ORDER BY hole_number`, r.ID)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query round holes")
	}
	defer holes.Close()

	for holes.Next() {
		var hs model.HoleScore
		if err := holes.Scan(&hs.HoleNumber, &hs.Strokes, &hs.Putts,
			&hs.FairwayHit, &hs.GreenInRegulation, &hs.ParPlayed, &hs.HandicapPlayed); err != nil {
			return nil, eris.Wrap(err, "postgres: scan round hole")
		}
		r.HoleScores = append(r.HoleScores, hs)
	}
	if err := holes.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate round holes")
	}

	if courseID != nil {
		course, err := s.GetCourse(ctx, *courseID)
		if err != nil && !eris.Is(err, ErrNotFound) {
			return nil, err
		}
		r.Course = course
	}
	return &r, nil
}

func (s *PostgresStore) scanCourseRow(row pgx.Row) (*model.Course, error) {
	var c model.Course
	var userID *string
	var holesJSON, teesJSON []byte

	err := row.Scan(&c.ID, &userID, &c.Name, &c.Location, &c.Par, &holesJSON, &teesJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan course")
	}

	if userID != nil {
		c.UserID = *userID
	}
	if err := json.Unmarshal(holesJSON, &c.Holes); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal holes")
	}
	if err := json.Unmarshal(teesJSON, &c.Tees); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal tees")
	}
	return &c, nil
}

func placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}
