package certificate

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/mind-engage/mindengage-progression/internal/grading"
)

var ErrNotFound = errors.New("certificate not found")

// Record is a persisted certificate issuance. (StudentID, CourseID) is unique.
type Record struct {
	ID        string
	Number    string
	StudentID string
	CourseID  string
	Percent   float64
	Bucket    grading.Bucket
	IssuedAt  time.Time
}

type Store interface {
	// FindOrIssue inserts rec unless the student already holds a certificate
	// for the course, in which case the stored ID, Number and IssuedAt are
	// kept and only Percent and Bucket are updated. The stored row is returned.
	FindOrIssue(ctx context.Context, rec Record) (Record, error)
	GetByNumber(ctx context.Context, number string) (Record, error)
}

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) FindOrIssue(ctx context.Context, rec Record) (Record, error) {
	out := Record{StudentID: rec.StudentID, CourseID: rec.CourseID}
	var bucket string
	var issued int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO certificates (id, number, student_id, course_id, percent, bucket, issued_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)
		 ON CONFLICT (student_id, course_id) DO UPDATE SET percent=EXCLUDED.percent, bucket=EXCLUDED.bucket
		 RETURNING id, number, percent, bucket, issued_at`,
		rec.ID, rec.Number, rec.StudentID, rec.CourseID, rec.Percent, string(rec.Bucket), rec.IssuedAt.Unix()).
		Scan(&out.ID, &out.Number, &out.Percent, &bucket, &issued)
	if err != nil {
		return Record{}, err
	}
	out.Bucket = grading.Bucket(bucket)
	out.IssuedAt = time.Unix(issued, 0)
	return out, nil
}

func (s *SQLStore) GetByNumber(ctx context.Context, number string) (Record, error) {
	var r Record
	var bucket string
	var issued int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, number, student_id, course_id, percent, bucket, issued_at
		   FROM certificates WHERE number=$1`, number).
		Scan(&r.ID, &r.Number, &r.StudentID, &r.CourseID, &r.Percent, &bucket, &issued)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	r.Bucket = grading.Bucket(bucket)
	r.IssuedAt = time.Unix(issued, 0)
	return r, nil
}
