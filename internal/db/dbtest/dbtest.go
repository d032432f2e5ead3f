// Package dbtest opens throwaway SQLite databases with the application
// schema and seeds catalog rows for package tests.
package dbtest

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/mind-engage/mindengage-progression/internal/db"
)

// Open returns a fresh file-backed SQLite database under t.TempDir().
func Open(t *testing.T) *sql.DB {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") + "?mode=rwc"
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	dbh, err := db.Open(ctx, db.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = dbh.Close() })
	return dbh
}

// Seeder inserts catalog rows, failing the test on any error.
type Seeder struct {
	t  *testing.T
	db *sql.DB
}

func NewSeeder(t *testing.T, dbh *sql.DB) *Seeder {
	return &Seeder{t: t, db: dbh}
}

func (s *Seeder) exec(query string, args ...any) {
	s.t.Helper()
	if _, err := s.db.Exec(query, args...); err != nil {
		s.t.Fatalf("seed: %v\n%s", err, query)
	}
}

func (s *Seeder) User(id, username, role, first, father, last, passwordHash string) {
	s.t.Helper()
	s.exec(`INSERT INTO users (id, username, password_hash, role, first_name, father_name, last_name, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		id, username, passwordHash, role, first, father, last, time.Now().Unix())
}

func (s *Seeder) Course(id, title, instructorID string) {
	s.t.Helper()
	s.exec(`INSERT INTO courses (id, title, instructor_id, created_at) VALUES ($1,$2,$3,$4)`,
		id, title, nullable(instructorID), time.Now().Unix())
}

func (s *Seeder) Activity(id, courseID string, order int) {
	s.t.Helper()
	s.exec(`INSERT INTO activities (id, course_id, title, sort_order) VALUES ($1,$2,$3,$4)`,
		id, courseID, "Activity "+id, order)
}

// ActivityQuestion seeds a question that belongs to one activity quiz only.
func (s *Seeder) ActivityQuestion(id, activityID, correctOptionID string) {
	s.t.Helper()
	s.question(id, "activity", activityID, "", correctOptionID)
}

// FinalQuestion seeds a standalone final-exam question.
func (s *Seeder) FinalQuestion(id, courseID, correctOptionID string) {
	s.t.Helper()
	s.question(id, "final", "", courseID, correctOptionID)
}

// SharedQuestion seeds an activity question that is also on the final exam.
func (s *Seeder) SharedQuestion(id, activityID, courseID, correctOptionID string) {
	s.t.Helper()
	s.question(id, "shared", activityID, courseID, correctOptionID)
}

func (s *Seeder) question(id, kind, activityID, courseID, correctOptionID string) {
	s.t.Helper()
	s.exec(`INSERT INTO questions (id, kind, activity_id, course_id, prompt, correct_option_id)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		id, kind, nullable(activityID), nullable(courseID), "Prompt "+id, nullable(correctOptionID))
}

func (s *Seeder) Option(id, questionID, label string) {
	s.t.Helper()
	s.exec(`INSERT INTO question_options (id, question_id, label) VALUES ($1,$2,$3)`,
		id, questionID, label)
}

// Options seeds one option per id for questionID.
func (s *Seeder) Options(questionID string, ids ...string) {
	s.t.Helper()
	for _, id := range ids {
		s.Option(id, questionID, "Option "+id)
	}
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
