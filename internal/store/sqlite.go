package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/TuckerBrewer12/ScanScorecards/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS courses (
	id         TEXT PRIMARY KEY,
	user_id    TEXT,
	name       TEXT NOT NULL,
	location   TEXT NOT NULL DEFAULT '',
	par        INTEGER,
	holes      TEXT NOT NULL DEFAULT '[]',
	tees       TEXT NOT NULL DEFAULT '[]',
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS rounds (
	id          TEXT PRIMARY KEY,
	user_id     TEXT NOT NULL,
	course_id   TEXT REFERENCES courses(id),
	tee_color   TEXT NOT NULL DEFAULT '',
	played_on   TEXT,
	player_name TEXT NOT NULL DEFAULT '',
	notes       TEXT NOT NULL DEFAULT '',
	total_putts INTEGER,
	hole_scores TEXT NOT NULL DEFAULT '[]',
	created_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_courses_name ON courses(name);
CREATE INDEX IF NOT EXISTS idx_courses_user_id ON courses(user_id);
CREATE INDEX IF NOT EXISTS idx_rounds_user_id ON rounds(user_id);
CREATE INDEX IF NOT EXISTS idx_rounds_course_id ON rounds(course_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateCourse(ctx context.Context, course *model.Course, userID string) (*model.Course, error) {
	created := *course
	created.ID = uuid.New().String()
	created.UserID = userID

	holesJSON, teesJSON, err := marshalLayout(&created)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO courses (id, user_id, name, location, par, holes, tees, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		created.ID, nullString(userID), created.Name, created.Location,
		nullInt(created.Par), holesJSON, teesJSON, now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert course")
	}
	return &created, nil
}

func (s *SQLiteStore) GetCourse(ctx context.Context, id string) (*model.Course, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, location, par, holes, tees FROM courses WHERE id = ?`, id)
	return scanCourse(row)
}

func (s *SQLiteStore) FindCourseByName(ctx context.Context, name, location string) (*model.Course, error) {
	return s.findCourse(ctx, name, location, "user_id IS NULL", nil)
}

func (s *SQLiteStore) FindUserCourseByName(ctx context.Context, name, location, userID string) (*model.Course, error) {
	return s.findCourse(ctx, name, location, "user_id = ?", []any{userID})
}

func (s *SQLiteStore) FindAnyUserCourseByName(ctx context.Context, name, location string) (*model.Course, error) {
	return s.findCourse(ctx, name, location, "user_id IS NOT NULL", nil)
}

// findCourse runs the tiered name lookup: exact case-insensitive, substring,
// then token similarity over the remaining candidates.
func (s *SQLiteStore) findCourse(ctx context.Context, name, location, ownerClause string, ownerArgs []any) (*model.Course, error) {
	const cols = `SELECT id, user_id, name, location, par, holes, tees FROM courses WHERE `

	// Tier 1: exact, case-insensitive.
	query := cols + `LOWER(name) = LOWER(?) AND ` + ownerClause
	args := append([]any{name}, ownerArgs...)
	if location != "" {
		query += ` AND LOWER(location) = LOWER(?)`
		args = append(args, location)
	}
	course, err := scanCourseOptional(s.db.QueryRowContext(ctx, query+` LIMIT 1`, args...))
	if err != nil || course != nil {
		return course, err
	}

	// Tier 2: substring.
	query = cols + `name LIKE ? AND ` + ownerClause
	args = append([]any{"%" + name + "%"}, ownerArgs...)
	if location != "" {
		query += ` AND location LIKE ?`
		args = append(args, "%"+location+"%")
	}
	course, err = scanCourseOptional(s.db.QueryRowContext(ctx, query+` LIMIT 1`, args...))
	if err != nil || course != nil {
		return course, err
	}

	// Tier 3: token similarity over candidate names.
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM courses WHERE `+ownerClause, ownerArgs...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: similarity candidates")
	}
	defer rows.Close()

	var ids, names []string
	for rows.Next() {
		var id, candidate string
		if err := rows.Scan(&id, &candidate); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan candidate")
		}
		ids = append(ids, id)
		names = append(names, candidate)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate candidates")
	}

	best := bestSimilarCourse(name, names)
	if best < 0 {
		return nil, nil
	}
	return s.GetCourse(ctx, ids[best])
}

func (s *SQLiteStore) FillCourseGaps(ctx context.Context, courseID string, scanned *model.Course) error {
	course, err := s.GetCourse(ctx, courseID)
	if err != nil {
		return err
	}
	mergeCourseGaps(course, scanned)

	holesJSON, teesJSON, err := marshalLayout(course)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE courses SET par = ?, holes = ?, tees = ?, updated_at = ? WHERE id = ?`,
		nullInt(course.Par), holesJSON, teesJSON, time.Now().UTC(), courseID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: fill gaps %s", courseID)
	}
	return checkRowsAffected(res, "course", courseID)
}

func (s *SQLiteStore) PromoteToMaster(ctx context.Context, courseID string) (*model.Course, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE courses SET user_id = NULL, updated_at = ? WHERE id = ?`,
		time.Now().UTC(), courseID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: promote course %s", courseID)
	}
	if err := checkRowsAffected(res, "course", courseID); err != nil {
		return nil, err
	}
	return s.GetCourse(ctx, courseID)
}

func (s *SQLiteStore) ListCourses(ctx context.Context, filter CourseFilter) ([]model.Course, error) {
	query := `SELECT id, user_id, name, location, par, holes, tees FROM courses WHERE 1=1`
	var args []any

	if filter.MastersOnly {
		query += ` AND user_id IS NULL`
	} else if filter.UserID != "" {
		query += ` AND (user_id IS NULL OR user_id = ?)`
		args = append(args, filter.UserID)
	}
	if filter.Search != "" {
		query += ` AND (name LIKE ? OR location LIKE ?)`
		args = append(args, "%"+filter.Search+"%", "%"+filter.Search+"%")
	}
	query += ` ORDER BY name`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list courses")
	}
	defer rows.Close()

	var courses []model.Course
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, *c)
	}
	return courses, eris.Wrap(rows.Err(), "sqlite: list courses iterate")
}

func (s *SQLiteStore) SaveRound(ctx context.Context, round *model.Round, userID string) (*model.Round, error) {
	saved := *round
	saved.ID = uuid.New().String()
	saved.UserID = userID

	scoresJSON, err := json.Marshal(saved.HoleScores)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal hole scores")
	}

	var courseID any
	if saved.Course != nil && saved.Course.ID != "" {
		courseID = saved.Course.ID
	}
	var playedOn any
	if saved.Date != nil {
		playedOn = saved.Date.Format(model.DateFormat)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO rounds (id, user_id, course_id, tee_color, played_on, player_name, notes, total_putts, hole_scores, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		saved.ID, userID, courseID, saved.TeeColor, playedOn,
		saved.PlayerName, saved.Notes, nullInt(saved.TotalPutts),
		string(scoresJSON), time.Now().UTC(),
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert round")
	}
	return &saved, nil
}

func (s *SQLiteStore) GetRound(ctx context.Context, id string) (*model.Round, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, course_id, tee_color, played_on, player_name, notes, total_putts, hole_scores
		 FROM rounds WHERE id = ?`, id)
	round, err := s.scanRound(ctx, row)
	if err != nil {
		return nil, err
	}
	if round == nil {
		return nil, eris.Wrapf(ErrNotFound, "round %s", id)
	}
	return round, nil
}

func (s *SQLiteStore) ListRounds(ctx context.Context, filter RoundFilter) ([]model.Round, error) {
	query := `SELECT id, user_id, course_id, tee_color, played_on, player_name, notes, total_putts, hole_scores
	          FROM rounds WHERE 1=1`
	var args []any

	if filter.UserID != "" {
		query += ` AND user_id = ?`
		args = append(args, filter.UserID)
	}
	if filter.CourseID != "" {
		query += ` AND course_id = ?`
		args = append(args, filter.CourseID)
	}
	query += ` ORDER BY played_on DESC, created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list rounds")
	}
	defer rows.Close()

	var rounds []model.Round
	for rows.Next() {
		r, err := s.scanRound(ctx, rows)
		if err != nil {
			return nil, err
		}
		rounds = append(rounds, *r)
	}
	return rounds, eris.Wrap(rows.Err(), "sqlite: list rounds iterate")
}

func (s *SQLiteStore) scanRound(ctx context.Context, row scannable) (*model.Round, error) {
	var r model.Round
	var courseID, playedOn sql.NullString
	var totalPutts sql.NullInt64
	var scoresJSON string

	err := row.Scan(&r.ID, &r.UserID, &courseID, &r.TeeColor, &playedOn,
		&r.PlayerName, &r.Notes, &totalPutts, &scoresJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan round")
	}

	if playedOn.Valid {
		t, err := time.Parse(model.DateFormat, playedOn.String)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: parse round date")
		}
		r.Date = &t
	}
	if totalPutts.Valid {
		n := int(totalPutts.Int64)
		r.TotalPutts = &n
	}
	if err := json.Unmarshal([]byte(scoresJSON), &r.HoleScores); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal hole scores")
	}
	if courseID.Valid {
		course, err := s.GetCourse(ctx, courseID.String)
		if err != nil && !eris.Is(err, ErrNotFound) {
			return nil, err
		}
		r.Course = course
	}
	return &r, nil
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "%s %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func marshalLayout(course *model.Course) (string, string, error) {
	holesJSON, err := json.Marshal(course.Holes)
	if err != nil {
		return "", "", eris.Wrap(err, "marshal holes")
	}
	teesJSON, err := json.Marshal(course.Tees)
	if err != nil {
		return "", "", eris.Wrap(err, "marshal tees")
	}
	return string(holesJSON), string(teesJSON), nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullInt(n *int) any {
	if n == nil {
		return nil
	}
	return *n
}

func scanCourse(row scannable) (*model.Course, error) {
	course, err := scanCourseOptional(row)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, eris.Wrap(ErrNotFound, "course")
	}
	return course, nil
}

func scanCourseOptional(row scannable) (*model.Course, error) {
	var c model.Course
	var userID sql.NullString
	var par sql.NullInt64
	var holesJSON, teesJSON string

	err := row.Scan(&c.ID, &userID, &c.Name, &c.Location, &par, &holesJSON, &teesJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "scan course")
	}

	if userID.Valid {
		c.UserID = userID.String
	}
	if par.Valid {
		n := int(par.Int64)
		c.Par = &n
	}
	if err := json.Unmarshal([]byte(holesJSON), &c.Holes); err != nil {
		return nil, eris.Wrap(err, "unmarshal holes")
	}
	if err := json.Unmarshal([]byte(teesJSON), &c.Tees); err != nil {
		return nil, eris.Wrap(err, "unmarshal tees")
	}
	return &c, nil
}

// mergeCourseGaps copies layout data from a scanned course into the stored
// one without overwriting anything already on record.
func mergeCourseGaps(course, scanned *model.Course) {
	if scanned == nil {
		return
	}
	if course.Par == nil {
		course.Par = scanned.Par
	}
	if course.Location == "" {
		course.Location = scanned.Location
	}

	for _, sh := range scanned.Holes {
		existing := course.Hole(sh.Number)
		if existing == nil {
			course.Holes = append(course.Holes, sh)
			continue
		}
		if existing.Par == nil {
			existing.Par = sh.Par
		}
		if existing.Handicap == nil {
			existing.Handicap = sh.Handicap
		}
	}

	for _, st := range scanned.Tees {
		existing := course.Tee(st.Color)
		if existing == nil {
			course.Tees = append(course.Tees, st)
			continue
		}
		if existing.SlopeRating == nil {
			existing.SlopeRating = st.SlopeRating
		}
		if existing.CourseRating == nil {
			existing.CourseRating = st.CourseRating
		}
		for hole, yards := range st.HoleYardages {
			if _, ok := existing.HoleYardages[hole]; ok {
				continue
			}
			if existing.HoleYardages == nil {
				existing.HoleYardages = make(map[int]int)
			}
			existing.HoleYardages[hole] = yards
		}
	}
}
