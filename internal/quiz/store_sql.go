package quiz

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/mind-engage/mindengage-progression/internal/db"
)

type SQLStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLStore returns a Store over dbh. now defaults to time.Now.
func NewSQLStore(dbh *sql.DB, now func() time.Time) *SQLStore {
	if now == nil {
		now = time.Now
	}
	return &SQLStore{db: dbh, now: now}
}

func (s *SQLStore) SubmitAnswer(ctx context.Context, studentID, questionID, optionID string, isFinalExam bool) (Outcome, error) {
	var out Outcome
	err := db.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		var owner string
		err := tx.QueryRowContext(ctx,
			`SELECT question_id FROM question_options WHERE id=$1`, optionID).Scan(&owner)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return ErrInvalidOption
		case err != nil:
			return err
		case owner != questionID:
			return ErrInvalidOption
		}

		// The upsert locks the attempt row until commit, so concurrent
		// submissions for the same attempt serialize on the replace below.
		now := s.now().Unix()
		var attemptID string
		err = tx.QueryRowContext(ctx,
			`INSERT INTO student_quizzes (id, student_id, question_id, is_final_exam, taken_at)
			 VALUES ($1,$2,$3,$4,$5)
			 ON CONFLICT (student_id, question_id, is_final_exam) DO UPDATE SET taken_at=EXCLUDED.taken_at
			 RETURNING id`,
			uuid.NewString(), studentID, questionID, isFinalExam, now).Scan(&attemptID)
		if err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM student_answers WHERE student_quiz_id=$1`, attemptID)
		if err != nil {
			return err
		}
		removed, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO student_answers (student_quiz_id, option_id, created_at) VALUES ($1,$2,$3)`,
			attemptID, optionID, now); err != nil {
			return err
		}

		out = OutcomeInserted
		if removed > 0 {
			out = OutcomeReplaced
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return out, nil
}

func (s *SQLStore) ClearActivityAnswers(ctx context.Context, studentID, activityID string) error {
	return db.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		// answers first: they reference the attempts
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM student_answers
			  WHERE student_quiz_id IN (
			        SELECT sq.id
			          FROM student_quizzes sq
			          JOIN questions q ON q.id = sq.question_id
			         WHERE sq.student_id=$1 AND sq.is_final_exam=$2
			           AND q.activity_id=$3 AND q.kind IN ('activity','shared'))`,
			studentID, false, activityID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`DELETE FROM student_quizzes
			  WHERE student_id=$1 AND is_final_exam=$2
			    AND question_id IN (
			        SELECT id FROM questions
			         WHERE activity_id=$3 AND kind IN ('activity','shared'))`,
			studentID, false, activityID)
		return err
	})
}

func (s *SQLStore) CountAnswered(ctx context.Context, studentID string, questionIDs []string, isFinalExam bool) (int, error) {
	if len(questionIDs) == 0 {
		return 0, nil
	}
	args := make([]any, 0, len(questionIDs)+2)
	args = append(args, studentID, isFinalExam)
	for _, id := range questionIDs {
		args = append(args, id)
	}
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT question_id)
		   FROM student_quizzes
		  WHERE student_id=$1 AND is_final_exam=$2
		    AND question_id IN (`+db.Placeholders(3, len(questionIDs))+`)`,
		args...).Scan(&n)
	return n, err
}

func (s *SQLStore) LatestAnswers(ctx context.Context, studentID string, questionIDs []string, isFinalExam bool) (map[string]string, error) {
	out := map[string]string{}
	if len(questionIDs) == 0 {
		return out, nil
	}
	args := make([]any, 0, len(questionIDs)+2)
	args = append(args, studentID, isFinalExam)
	for _, id := range questionIDs {
		args = append(args, id)
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT sq.question_id, sa.option_id
		   FROM student_answers sa
		   JOIN student_quizzes sq ON sq.id = sa.student_quiz_id
		  WHERE sq.student_id=$1 AND sq.is_final_exam=$2
		    AND sq.question_id IN (`+db.Placeholders(3, len(questionIDs))+`)
		  ORDER BY sa.id DESC`,
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var qid, optionID string
		if err := rows.Scan(&qid, &optionID); err != nil {
			return nil, err
		}
		// newest row wins; older leftovers are ignored
		if _, seen := out[qid]; !seen {
			out[qid] = optionID
		}
	}
	return out, rows.Err()
}

func (s *SQLStore) GetAttempt(ctx context.Context, studentID, questionID string, isFinalExam bool) (Attempt, error) {
	a := Attempt{StudentID: studentID, QuestionID: questionID, IsFinalExam: isFinalExam}
	var takenAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, taken_at FROM student_quizzes
		  WHERE student_id=$1 AND question_id=$2 AND is_final_exam=$3`,
		studentID, questionID, isFinalExam).Scan(&a.ID, &takenAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Attempt{}, ErrAttemptNotFound
		}
		return Attempt{}, err
	}
	a.TakenAt = time.Unix(takenAt, 0)
	return a, nil
}

func (s *SQLStore) LiveAnswers(ctx context.Context, studentID, questionID string, isFinalExam bool) ([]Answer, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT sa.id, sa.student_quiz_id, sa.option_id, sa.created_at
		   FROM student_answers sa
		   JOIN student_quizzes sq ON sq.id = sa.student_quiz_id
		  WHERE sq.student_id=$1 AND sq.question_id=$2 AND sq.is_final_exam=$3
		  ORDER BY sa.id DESC`,
		studentID, questionID, isFinalExam)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Answer
	for rows.Next() {
		var a Answer
		var created int64
		if err := rows.Scan(&a.ID, &a.AttemptID, &a.OptionID, &created); err != nil {
			return nil, err
		}
		a.CreatedAt = time.Unix(created, 0)
		out = append(out, a)
	}
	return out, rows.Err()
}
