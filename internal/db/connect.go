package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// ParseDriver maps common aliases onto a supported driver.
func ParseDriver(s string) (Driver, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sqlite", "sqlite3":
		return DriverSQLite, nil
	case "postgres", "pg", "pgx", "pgsql":
		return DriverPostgres, nil
	default:
		return "", fmt.Errorf("unsupported driver: %s", s)
	}
}

// Open opens a DB, tunes the pool and ensures schema exists.
func Open(ctx context.Context, driver Driver, dsn string) (*sql.DB, error) {
	var drvName string
	switch driver {
	case DriverSQLite:
		drvName = "sqlite" // modernc driver
		if dsn == "" {
			dsn = "file:mindengage.db?mode=rwc"
		}
	case DriverPostgres:
		drvName = "pgx" // pgx stdlib driver
		if dsn == "" {
			dsn = "postgres://localhost:5432/mindengage?sslmode=disable"
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, fmt.Errorf("db: open: %w", err)
	}
	tunePool(driver, db)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db: ping: %w", err)
	}
	if driver == DriverSQLite {
		if err := applySQLitePragmas(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := ensureSchema(ctx, db, driver); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db: schema: %w", err)
	}
	return db, nil
}

func ensureSchema(ctx context.Context, db *sql.DB, driver Driver) error {
	var schema string
	switch driver {
	case DriverSQLite:
		schema = schemaSQLite
	case DriverPostgres:
		schema = schemaPostgres
	}
	// some drivers reject multi-statement scripts; retry one statement at a time
	if _, err := db.ExecContext(ctx, schema); err != nil {
		for _, stmt := range splitSQL(schema) {
			if _, e := db.ExecContext(ctx, stmt); e != nil {
				return fmt.Errorf("failed at %q: %w", firstLine(stmt), e)
			}
		}
	}
	return nil
}

func splitSQL(s string) []string {
	raw := strings.Split(s, ";")
	out := make([]string, 0, len(raw))
	for _, part := range raw {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part+";")
		}
	}
	return out
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

const schemaSQLite = `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  username TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL DEFAULT '',
  role TEXT NOT NULL,
  first_name TEXT NOT NULL DEFAULT '',
  father_name TEXT NOT NULL DEFAULT '',
  last_name TEXT NOT NULL DEFAULT '',
  created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS courses (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  instructor_id TEXT REFERENCES users(id),
  created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS activities (
  id TEXT PRIMARY KEY,
  course_id TEXT NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
  title TEXT NOT NULL,
  sort_order INTEGER NOT NULL,
  UNIQUE (course_id, sort_order)
);

-- kind: activity (activity quiz only), final (standalone final-exam),
-- shared (activity quiz question that is also part of the final exam)
CREATE TABLE IF NOT EXISTS questions (
  id TEXT PRIMARY KEY,
  kind TEXT NOT NULL CHECK (kind IN ('activity','final','shared')),
  activity_id TEXT REFERENCES activities(id) ON DELETE CASCADE,
  course_id TEXT REFERENCES courses(id) ON DELETE CASCADE,
  prompt TEXT NOT NULL DEFAULT '',
  correct_option_id TEXT,
  CHECK (
    (kind = 'activity' AND activity_id IS NOT NULL AND course_id IS NULL) OR
    (kind = 'final' AND activity_id IS NULL AND course_id IS NOT NULL) OR
    (kind = 'shared' AND activity_id IS NOT NULL AND course_id IS NOT NULL)
  )
);
CREATE INDEX IF NOT EXISTS idx_questions_activity ON questions(activity_id);
CREATE INDEX IF NOT EXISTS idx_questions_course ON questions(course_id);

CREATE TABLE IF NOT EXISTS question_options (
  id TEXT PRIMARY KEY,
  question_id TEXT NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
  label TEXT NOT NULL,
  sort_order INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_options_question ON question_options(question_id);

CREATE TABLE IF NOT EXISTS student_quizzes (
  id TEXT PRIMARY KEY,
  student_id TEXT NOT NULL,
  question_id TEXT NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
  is_final_exam INTEGER NOT NULL DEFAULT 0,
  taken_at INTEGER NOT NULL,
  UNIQUE (student_id, question_id, is_final_exam)
);

CREATE TABLE IF NOT EXISTS student_answers (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  student_quiz_id TEXT NOT NULL REFERENCES student_quizzes(id),
  option_id TEXT NOT NULL REFERENCES question_options(id),
  created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_answers_quiz ON student_answers(student_quiz_id);

CREATE TABLE IF NOT EXISTS certificates (
  id TEXT PRIMARY KEY,
  number TEXT NOT NULL UNIQUE,
  student_id TEXT NOT NULL,
  course_id TEXT NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
  percent REAL NOT NULL,
  bucket TEXT NOT NULL,
  issued_at INTEGER NOT NULL,
  UNIQUE (student_id, course_id)
);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  username TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL DEFAULT '',
  role TEXT NOT NULL,
  first_name TEXT NOT NULL DEFAULT '',
  father_name TEXT NOT NULL DEFAULT '',
  last_name TEXT NOT NULL DEFAULT '',
  created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS courses (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  instructor_id TEXT REFERENCES users(id),
  created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS activities (
  id TEXT PRIMARY KEY,
  course_id TEXT NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
  title TEXT NOT NULL,
  sort_order INTEGER NOT NULL,
  UNIQUE (course_id, sort_order)
);

CREATE TABLE IF NOT EXISTS questions (
  id TEXT PRIMARY KEY,
  kind TEXT NOT NULL CHECK (kind IN ('activity','final','shared')),
  activity_id TEXT REFERENCES activities(id) ON DELETE CASCADE,
  course_id TEXT REFERENCES courses(id) ON DELETE CASCADE,
  prompt TEXT NOT NULL DEFAULT '',
  correct_option_id TEXT,
  CHECK (
    (kind = 'activity' AND activity_id IS NOT NULL AND course_id IS NULL) OR
    (kind = 'final' AND activity_id IS NULL AND course_id IS NOT NULL) OR
    (kind = 'shared' AND activity_id IS NOT NULL AND course_id IS NOT NULL)
  )
);
CREATE INDEX IF NOT EXISTS idx_questions_activity ON questions(activity_id);
CREATE INDEX IF NOT EXISTS idx_questions_course ON questions(course_id);

CREATE TABLE IF NOT EXISTS question_options (
  id TEXT PRIMARY KEY,
  question_id TEXT NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
  label TEXT NOT NULL,
  sort_order INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_options_question ON question_options(question_id);

CREATE TABLE IF NOT EXISTS student_quizzes (
  id TEXT PRIMARY KEY,
  student_id TEXT NOT NULL,
  question_id TEXT NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
  is_final_exam BOOLEAN NOT NULL DEFAULT FALSE,
  taken_at BIGINT NOT NULL,
  UNIQUE (student_id, question_id, is_final_exam)
);

CREATE TABLE IF NOT EXISTS student_answers (
  id BIGSERIAL PRIMARY KEY,
  student_quiz_id TEXT NOT NULL REFERENCES student_quizzes(id),
  option_id TEXT NOT NULL REFERENCES question_options(id),
  created_at BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_answers_quiz ON student_answers(student_quiz_id);

CREATE TABLE IF NOT EXISTS certificates (
  id TEXT PRIMARY KEY,
  number TEXT NOT NULL UNIQUE,
  student_id TEXT NOT NULL,
  course_id TEXT NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
  percent DOUBLE PRECISION NOT NULL,
  bucket TEXT NOT NULL,
  issued_at BIGINT NOT NULL,
  UNIQUE (student_id, course_id)
);
`
