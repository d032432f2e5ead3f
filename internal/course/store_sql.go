package course

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type SQLCatalog struct {
	db *sql.DB
}

func NewSQLCatalog(db *sql.DB) *SQLCatalog {
	return &SQLCatalog{db: db}
}

func (s *SQLCatalog) GetCourse(ctx context.Context, id string) (Course, error) {
	var c Course
	var instructor sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, instructor_id FROM courses WHERE id=$1`, id).
		Scan(&c.ID, &c.Title, &instructor)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Course{}, ErrCourseNotFound
		}
		return Course{}, err
	}
	c.InstructorID = instructor.String
	return c, nil
}

func (s *SQLCatalog) GetActivity(ctx context.Context, id string) (Activity, error) {
	var a Activity
	err := s.db.QueryRowContext(ctx,
		`SELECT id, course_id, title, sort_order FROM activities WHERE id=$1`, id).
		Scan(&a.ID, &a.CourseID, &a.Title, &a.Order)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Activity{}, ErrActivityNotFound
		}
		return Activity{}, err
	}
	return a, nil
}

func (s *SQLCatalog) GetQuestion(ctx context.Context, id string) (Question, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, kind, activity_id, course_id, prompt, correct_option_id
		   FROM questions WHERE id=$1`, id)
	q, err := scanQuestion(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Question{}, ErrQuestionNotFound
		}
		return Question{}, err
	}
	return q, nil
}

func (s *SQLCatalog) ListActivities(ctx context.Context, courseID string) ([]Activity, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, course_id, title, sort_order
		   FROM activities
		  WHERE course_id=$1
		  ORDER BY sort_order ASC, id ASC`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Activity
	for rows.Next() {
		var a Activity
		if err := rows.Scan(&a.ID, &a.CourseID, &a.Title, &a.Order); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLCatalog) ActivityQuestionIDs(ctx context.Context, activityID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM questions
		  WHERE activity_id=$1 AND kind IN ('activity','shared')
		  ORDER BY id`, activityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *SQLCatalog) QuestionIDsByActivity(ctx context.Context, courseID string) (map[string][]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT q.activity_id, q.id
		   FROM questions q
		   JOIN activities a ON a.id = q.activity_id
		  WHERE a.course_id=$1 AND q.kind IN ('activity','shared')
		  ORDER BY q.activity_id, q.id`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string][]string{}
	for rows.Next() {
		var activityID, id string
		if err := rows.Scan(&activityID, &id); err != nil {
			return nil, err
		}
		out[activityID] = append(out[activityID], id)
	}
	return out, rows.Err()
}

func (s *SQLCatalog) FinalExamQuestions(ctx context.Context, courseID string) ([]Question, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, activity_id, course_id, prompt, correct_option_id
		   FROM questions
		  WHERE course_id=$1 AND kind IN ('final','shared')
		  ORDER BY id`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *SQLCatalog) GetPerson(ctx context.Context, idOrUsername string) (Person, error) {
	var p Person
	err := s.db.QueryRowContext(ctx,
		`SELECT id, first_name, father_name, last_name FROM users WHERE id=$1 OR username=$1`,
		idOrUsername).Scan(&p.ID, &p.FirstName, &p.FatherName, &p.LastName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Person{}, ErrPersonNotFound
		}
		return Person{}, err
	}
	return p, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuestion(r rowScanner) (Question, error) {
	var (
		q                            Question
		kind                         string
		activityID, courseID, answer sql.NullString
	)
	if err := r.Scan(&q.ID, &kind, &activityID, &courseID, &q.Prompt, &answer); err != nil {
		return Question{}, err
	}
	k, err := ParseQuestionKind(kind)
	if err != nil {
		return Question{}, fmt.Errorf("question %s: %w", q.ID, err)
	}
	q.Kind = k
	q.ActivityID = activityID.String
	q.CourseID = courseID.String
	q.CorrectOptionID = answer.String
	return q, nil
}
