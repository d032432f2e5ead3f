package certificate

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mind-engage/mindengage-progression/internal/course"
	"github.com/mind-engage/mindengage-progression/internal/grading"
)

// ErrNotEligible is returned when the grade does not allow a certificate.
var ErrNotEligible = errors.New("certificate not available")

// Payload is everything the certificate view renders.
type Payload struct {
	CertificateNumber string         `json:"certificate_number"`
	CourseID          string         `json:"course_id"`
	CourseTitle       string         `json:"course_title"`
	StudentName       string         `json:"student_name"`
	InstructorName    string         `json:"instructor_name"`
	Percent           float64        `json:"percent"`
	Bucket            grading.Bucket `json:"bucket"`
	IssuedAt          time.Time      `json:"issued_at"`
	QRCodeURL         string         `json:"qr_code_url"`
}

// Directory is the slice of course.Catalog used to label a certificate.
type Directory interface {
	GetCourse(ctx context.Context, id string) (course.Course, error)
	GetPerson(ctx context.Context, idOrUsername string) (course.Person, error)
}

type Service struct {
	dir     Directory
	store   Store
	baseURL string
	now     func() time.Time
}

// NewService builds a Service. baseURL prefixes QR verification links;
// now defaults to time.Now.
func NewService(dir Directory, store Store, baseURL string, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{dir: dir, store: store, baseURL: strings.TrimSuffix(baseURL, "/"), now: now}
}

// Details records the certificate on first call and returns its payload.
// Later calls keep the original number and issue time and refresh the grade.
func (s *Service) Details(ctx context.Context, studentID, courseID string, grade grading.Result) (Payload, error) {
	if grade.Kind != grading.ResultGraded || !grade.CertificateEligible {
		return Payload{}, ErrNotEligible
	}
	c, err := s.dir.GetCourse(ctx, courseID)
	if err != nil {
		return Payload{}, fmt.Errorf("course: %w", err)
	}
	rec, err := s.store.FindOrIssue(ctx, Record{
		ID:        uuid.NewString(),
		Number:    NewNumber(),
		StudentID: studentID,
		CourseID:  c.ID,
		Percent:   grade.Percent,
		Bucket:    grade.Bucket,
		IssuedAt:  s.now(),
	})
	if err != nil {
		return Payload{}, fmt.Errorf("issue: %w", err)
	}
	return s.payload(ctx, c, rec)
}

// Verify looks up an issued certificate by the number printed on it.
func (s *Service) Verify(ctx context.Context, number string) (Payload, error) {
	rec, err := s.store.GetByNumber(ctx, number)
	if err != nil {
		return Payload{}, err
	}
	c, err := s.dir.GetCourse(ctx, rec.CourseID)
	if err != nil {
		return Payload{}, fmt.Errorf("course: %w", err)
	}
	return s.payload(ctx, c, rec)
}

func (s *Service) payload(ctx context.Context, c course.Course, rec Record) (Payload, error) {
	studentName := rec.StudentID
	if p, err := s.dir.GetPerson(ctx, rec.StudentID); err == nil {
		if n := FormatStudentName(p.FirstName, p.FatherName, p.LastName); n != "" {
			studentName = n
		}
	} else if !errors.Is(err, course.ErrPersonNotFound) {
		return Payload{}, fmt.Errorf("student: %w", err)
	}

	var instructorName string
	if c.InstructorID != "" {
		p, err := s.dir.GetPerson(ctx, c.InstructorID)
		switch {
		case err == nil:
			instructorName = FormatStudentName(p.FirstName, p.FatherName, p.LastName)
		case errors.Is(err, course.ErrPersonNotFound):
			log.Printf("certificate: course %s instructor %s not found", c.ID, c.InstructorID)
		default:
			return Payload{}, fmt.Errorf("instructor: %w", err)
		}
	}

	return Payload{
		CertificateNumber: rec.Number,
		CourseID:          c.ID,
		CourseTitle:       c.Title,
		StudentName:       studentName,
		InstructorName:    instructorName,
		Percent:           rec.Percent,
		Bucket:            rec.Bucket,
		IssuedAt:          rec.IssuedAt,
		QRCodeURL:         QRTarget(s.baseURL, rec.Number),
	}, nil
}

// FormatStudentName joins the non-empty name parts with single spaces.
func FormatStudentName(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}

// QRTarget is the verification link encoded in the certificate QR code.
func QRTarget(baseURL, number string) string {
	return strings.TrimSuffix(baseURL, "/") + "/certificates/" + url.PathEscape(number) + "/verify"
}

// NewNumber returns a fresh certificate number, e.g. "CERT-1F0C2A9B4D7E4B1A".
func NewNumber() string {
	id := uuid.New()
	return "CERT-" + strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:16])
}
