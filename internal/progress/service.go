package progress

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/mind-engage/mindengage-progression/internal/certificate"
	"github.com/mind-engage/mindengage-progression/internal/course"
	"github.com/mind-engage/mindengage-progression/internal/grading"
	"github.com/mind-engage/mindengage-progression/internal/quiz"
)

// Service is the student-facing progression API. Every operation takes the
// authenticated student ID explicitly; an empty ID is unauthenticated.
//
// Status operations never fail: problems are logged and reported as
// StatusError. All other operations return *Error.
type Service struct {
	catalog  course.Catalog
	answers  quiz.Store
	eval     *Evaluator
	unlocker *Unlocker
	grader   *grading.Engine
	certs    *certificate.Service
}

func NewService(catalog course.Catalog, answers quiz.Store, certs *certificate.Service) *Service {
	eval := NewEvaluator(answers)
	return &Service{
		catalog:  catalog,
		answers:  answers,
		eval:     eval,
		unlocker: NewUnlocker(catalog, eval),
		grader:   grading.NewEngine(catalog, answers),
		certs:    certs,
	}
}

// GetActivityQuizStatus reports how much of the activity's quiz the student
// has answered.
func (s *Service) GetActivityQuizStatus(ctx context.Context, studentID, activityID string) Status {
	if studentID == "" {
		return StatusError
	}
	if _, err := s.catalog.GetActivity(ctx, activityID); err != nil {
		if !errors.Is(err, course.ErrActivityNotFound) {
			log.Printf("progress: activity status %s: %v", activityID, err)
		}
		return StatusError
	}
	ids, err := s.catalog.ActivityQuestionIDs(ctx, activityID)
	if err != nil {
		log.Printf("progress: activity questions %s: %v", activityID, err)
		return StatusError
	}
	st, err := s.eval.Evaluate(ctx, studentID, ids, false)
	if err != nil {
		log.Printf("progress: evaluate activity %s: %v", activityID, err)
	}
	return st
}

// GetFinalExamStatus reports how much of the course's final exam the student
// has answered.
func (s *Service) GetFinalExamStatus(ctx context.Context, studentID, courseID string) Status {
	if studentID == "" {
		return StatusError
	}
	qs, err := s.catalog.FinalExamQuestions(ctx, courseID)
	if err != nil {
		log.Printf("progress: final exam questions %s: %v", courseID, err)
		return StatusError
	}
	if len(qs) == 0 {
		if _, err := s.catalog.GetCourse(ctx, courseID); err != nil {
			if !errors.Is(err, course.ErrCourseNotFound) {
				log.Printf("progress: final exam status %s: %v", courseID, err)
			}
			return StatusError
		}
	}
	st, err := s.eval.Evaluate(ctx, studentID, course.QuestionIDs(qs), true)
	if err != nil {
		log.Printf("progress: evaluate final exam %s: %v", courseID, err)
	}
	return st
}

// SaveStudentQuizAnswer stores the student's current answer to an activity
// quiz question, replacing any earlier one.
func (s *Service) SaveStudentQuizAnswer(ctx context.Context, studentID, questionID, optionID string) (quiz.Outcome, error) {
	return s.submit(ctx, studentID, questionID, optionID, false)
}

// SubmitFinalExamAnswer stores the student's current answer to a final-exam
// question, replacing any earlier one. The activity-scope answer to a shared
// question is left alone.
func (s *Service) SubmitFinalExamAnswer(ctx context.Context, studentID, questionID, optionID string) (quiz.Outcome, error) {
	return s.submit(ctx, studentID, questionID, optionID, true)
}

func (s *Service) submit(ctx context.Context, studentID, questionID, optionID string, final bool) (quiz.Outcome, error) {
	if studentID == "" {
		return 0, ErrUnauthenticated
	}
	questionID, optionID = strings.TrimSpace(questionID), strings.TrimSpace(optionID)
	if questionID == "" || optionID == "" {
		return 0, invalidData("question_id and option_id are required")
	}
	q, err := s.catalog.GetQuestion(ctx, questionID)
	if err != nil {
		if errors.Is(err, course.ErrQuestionNotFound) {
			return 0, invalidData("unknown question")
		}
		return 0, serverError("get question", err)
	}
	if final && !q.Kind.InFinalExam() {
		return 0, invalidData("question is not part of a final exam")
	}
	if !final && !q.Kind.InActivityQuiz() {
		return 0, invalidData("question is not part of an activity quiz")
	}

	out, err := s.answers.SubmitAnswer(ctx, studentID, questionID, optionID, final)
	if err != nil {
		if errors.Is(err, quiz.ErrInvalidOption) {
			return 0, ErrInvalidOption
		}
		return 0, serverError("submit answer", err)
	}
	return out, nil
}

// ClearActivityQuizAnswers removes the student's activity-quiz answers so the
// quiz can be retaken. Final-exam answers are kept.
func (s *Service) ClearActivityQuizAnswers(ctx context.Context, studentID, activityID string) error {
	if studentID == "" {
		return ErrUnauthenticated
	}
	if strings.TrimSpace(activityID) == "" {
		return invalidData("activity_id is required")
	}
	if _, err := s.catalog.GetActivity(ctx, activityID); err != nil {
		if errors.Is(err, course.ErrActivityNotFound) {
			return invalidData("unknown activity")
		}
		return serverError("get activity", err)
	}
	if err := s.answers.ClearActivityAnswers(ctx, studentID, activityID); err != nil {
		return serverError("clear activity answers", err)
	}
	return nil
}

// UnlockCourseProgression computes the course's lock map for the student.
func (s *Service) UnlockCourseProgression(ctx context.Context, studentID, courseID string) (UnlockMap, error) {
	if studentID == "" {
		return UnlockMap{}, ErrUnauthenticated
	}
	if err := s.requireCourse(ctx, courseID); err != nil {
		return UnlockMap{}, err
	}
	m, err := s.unlocker.Unlock(ctx, studentID, courseID)
	if err != nil {
		if errors.Is(err, ErrUnauthenticated) {
			return UnlockMap{}, ErrUnauthenticated
		}
		return UnlockMap{}, serverError("unlock", err)
	}
	return m, nil
}

// ReadyToCertification grades the student's final exam for the course.
func (s *Service) ReadyToCertification(ctx context.Context, studentID, courseID string) (grading.Result, error) {
	if studentID == "" {
		return grading.Result{}, ErrUnauthenticated
	}
	if err := s.requireCourse(ctx, courseID); err != nil {
		return grading.Result{}, err
	}
	res, err := s.grader.Grade(ctx, studentID, courseID)
	if err != nil {
		return grading.Result{}, serverError("grade", err)
	}
	return res, nil
}

// GetCertificateDetails grades the final exam and, when eligible, returns the
// student's certificate for the course.
func (s *Service) GetCertificateDetails(ctx context.Context, studentID, courseID string) (certificate.Payload, error) {
	res, err := s.ReadyToCertification(ctx, studentID, courseID)
	if err != nil {
		return certificate.Payload{}, err
	}
	p, err := s.certs.Details(ctx, studentID, courseID, res)
	if err != nil {
		switch {
		case errors.Is(err, certificate.ErrNotEligible):
			return certificate.Payload{}, ErrNotEligible
		case errors.Is(err, course.ErrCourseNotFound):
			return certificate.Payload{}, invalidData("unknown course")
		}
		return certificate.Payload{}, serverError("certificate", err)
	}
	return p, nil
}

func (s *Service) requireCourse(ctx context.Context, courseID string) error {
	if strings.TrimSpace(courseID) == "" {
		return invalidData("course_id is required")
	}
	if _, err := s.catalog.GetCourse(ctx, courseID); err != nil {
		if errors.Is(err, course.ErrCourseNotFound) {
			return invalidData("unknown course")
		}
		return serverError("get course", err)
	}
	return nil
}

// serverError logs the cause and hides it behind a generic message.
func serverError(op string, err error) error {
	log.Printf("progress: %s: %v", op, err)
	return &Error{Kind: KindServerError, Msg: ErrServer.Msg, Err: err}
}
