package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	authmw "github.com/mind-engage/mindengage-progression/internal/auth/middleware"
	"github.com/mind-engage/mindengage-progression/internal/certificate"
	"github.com/mind-engage/mindengage-progression/internal/grading"
	"github.com/mind-engage/mindengage-progression/internal/progress"
	"github.com/mind-engage/mindengage-progression/internal/quiz"
)

// Progress is the student-facing surface served by these handlers.
type Progress interface {
	GetActivityQuizStatus(ctx context.Context, studentID, activityID string) progress.Status
	GetFinalExamStatus(ctx context.Context, studentID, courseID string) progress.Status
	SaveStudentQuizAnswer(ctx context.Context, studentID, questionID, optionID string) (quiz.Outcome, error)
	SubmitFinalExamAnswer(ctx context.Context, studentID, questionID, optionID string) (quiz.Outcome, error)
	ClearActivityQuizAnswers(ctx context.Context, studentID, activityID string) error
	UnlockCourseProgression(ctx context.Context, studentID, courseID string) (progress.UnlockMap, error)
	ReadyToCertification(ctx context.Context, studentID, courseID string) (grading.Result, error)
	GetCertificateDetails(ctx context.Context, studentID, courseID string) (certificate.Payload, error)
}

type answerReq struct {
	QuestionID string `json:"question_id" validate:"notblank"`
	OptionID   string `json:"option_id" validate:"notblank"`
}

type answerResp struct {
	QuestionID string       `json:"question_id"`
	Outcome    quiz.Outcome `json:"outcome"`
}

type statusResp struct {
	Status progress.Status `json:"status"`
}

// GET /activities/{activityID}/quiz/status
func ActivityQuizStatusHandler(svc Progress) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := authmw.SubjectFromContext(r.Context())
		st := svc.GetActivityQuizStatus(r.Context(), sub, chi.URLParam(r, "activityID"))
		writeJSON(w, http.StatusOK, statusResp{Status: st})
	}
}

// GET /courses/{courseID}/final-exam/status
func FinalExamStatusHandler(svc Progress) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := authmw.SubjectFromContext(r.Context())
		st := svc.GetFinalExamStatus(r.Context(), sub, chi.URLParam(r, "courseID"))
		writeJSON(w, http.StatusOK, statusResp{Status: st})
	}
}

// POST /quiz/answers  { "question_id": "...", "option_id": "..." }
func SaveQuizAnswerHandler(svc Progress) http.HandlerFunc {
	return answerHandler(svc.SaveStudentQuizAnswer)
}

// POST /final-exam/answers  { "question_id": "...", "option_id": "..." }
func SubmitFinalExamAnswerHandler(svc Progress) http.HandlerFunc {
	return answerHandler(svc.SubmitFinalExamAnswer)
}

func answerHandler(submit func(ctx context.Context, studentID, questionID, optionID string) (quiz.Outcome, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req answerReq
		if !decode(w, r, &req) {
			return
		}
		sub := authmw.SubjectFromContext(r.Context())
		out, err := submit(r.Context(), sub, req.QuestionID, req.OptionID)
		if err != nil {
			writeError(w, err)
			return
		}
		code := http.StatusOK
		if out == quiz.OutcomeInserted {
			code = http.StatusCreated
		}
		writeJSON(w, code, answerResp{QuestionID: req.QuestionID, Outcome: out})
	}
}

// DELETE /activities/{activityID}/quiz/answers
func ClearActivityAnswersHandler(svc Progress) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := authmw.SubjectFromContext(r.Context())
		if err := svc.ClearActivityQuizAnswers(r.Context(), sub, chi.URLParam(r, "activityID")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// GET /courses/{courseID}/progression
func ProgressionHandler(svc Progress) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := authmw.SubjectFromContext(r.Context())
		m, err := svc.UnlockCourseProgression(r.Context(), sub, chi.URLParam(r, "courseID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, m)
	}
}

// GET /courses/{courseID}/certification
func CertificationHandler(svc Progress) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := authmw.SubjectFromContext(r.Context())
		res, err := svc.ReadyToCertification(r.Context(), sub, chi.URLParam(r, "courseID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// GET /courses/{courseID}/certificate
func CertificateHandler(svc Progress) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := authmw.SubjectFromContext(r.Context())
		p, err := svc.GetCertificateDetails(r.Context(), sub, chi.URLParam(r, "courseID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}
