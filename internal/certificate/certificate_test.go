package certificate_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mindengage-progression/internal/certificate"
	"github.com/mind-engage/mindengage-progression/internal/course"
	"github.com/mind-engage/mindengage-progression/internal/db/dbtest"
	"github.com/mind-engage/mindengage-progression/internal/grading"
)

func TestFormatStudentName(t *testing.T) {
	cases := []struct {
		first, father, last string
		want                string
	}{
		{"Ana", "Maria", "Lopez", "Ana Maria Lopez"},
		{"Ana", "", "Lopez", "Ana Lopez"},
		{"  Ana ", "  ", " Lopez", "Ana Lopez"},
		{"", "", "", ""},
		{"", "", "Lopez", "Lopez"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, certificate.FormatStudentName(tc.first, tc.father, tc.last))
	}
}

func TestQRTarget(t *testing.T) {
	assert.Equal(t, "https://lms.example.org/certificates/CERT-1/verify",
		certificate.QRTarget("https://lms.example.org/", "CERT-1"))
	assert.Equal(t, "/certificates/CERT-1/verify", certificate.QRTarget("", "CERT-1"))
}

func TestNewNumber(t *testing.T) {
	a, b := certificate.NewNumber(), certificate.NewNumber()
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a, "CERT-"))
	assert.Len(t, a, len("CERT-")+16)
}

type fixture struct {
	svc   *certificate.Service
	store *certificate.SQLStore
	now   time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dbh := dbtest.Open(t)
	s := dbtest.NewSeeder(t, dbh)
	s.User("inst", "jperez", "instructor", "Jorge", "", "Perez", "")
	s.User("stu", "student1", "student", "Ana", "Maria", "Lopez", "")
	s.User("anon", "student2", "student", "", "", "", "")
	s.Course("c1", "Algebra", "inst")
	s.Course("c2", "Geometry", "")

	f := &fixture{store: certificate.NewSQLStore(dbh), now: time.Unix(1_700_000_000, 0)}
	f.svc = certificate.NewService(course.NewSQLCatalog(dbh), f.store, "https://lms.example.org", func() time.Time { return f.now })
	return f
}

func graded(percent float64) grading.Result {
	return grading.Result{
		Kind:                grading.ResultGraded,
		Percent:             percent,
		Bucket:              grading.BucketFor(percent),
		CertificateEligible: true,
	}
}

func TestDetails_Issue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.svc.Details(ctx, "stu", "c1", graded(90))
	require.NoError(t, err)
	assert.Equal(t, "Algebra", p.CourseTitle)
	assert.Equal(t, "c1", p.CourseID)
	assert.Equal(t, "Ana Maria Lopez", p.StudentName)
	assert.Equal(t, "Jorge Perez", p.InstructorName)
	assert.Equal(t, 90.0, p.Percent)
	assert.Equal(t, grading.BucketExcellent, p.Bucket)
	assert.True(t, p.IssuedAt.Equal(f.now))
	assert.Equal(t, certificate.QRTarget("https://lms.example.org", p.CertificateNumber), p.QRCodeURL)

	rec, err := f.store.GetByNumber(ctx, p.CertificateNumber)
	require.NoError(t, err)
	assert.Equal(t, "stu", rec.StudentID)
	assert.Equal(t, "c1", rec.CourseID)

	v, err := f.svc.Verify(ctx, p.CertificateNumber)
	require.NoError(t, err)
	assert.Equal(t, p, v)
}

func TestDetails_ReissueKeepsNumberRefreshesGrade(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Details(ctx, "stu", "c1", graded(40))
	require.NoError(t, err)
	assert.Equal(t, grading.BucketPoor, first.Bucket)

	f.now = f.now.Add(48 * time.Hour)
	second, err := f.svc.Details(ctx, "stu", "c1", graded(75))
	require.NoError(t, err)
	assert.Equal(t, first.CertificateNumber, second.CertificateNumber)
	assert.True(t, second.IssuedAt.Equal(first.IssuedAt))
	assert.Equal(t, 75.0, second.Percent)
	assert.Equal(t, grading.BucketVeryGood, second.Bucket)
}

func TestDetails_NameFallbacks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.svc.Details(ctx, "anon", "c2", graded(60))
	require.NoError(t, err)
	assert.Equal(t, "anon", p.StudentName, "blank names fall back to the student id")
	assert.Empty(t, p.InstructorName)

	p, err = f.svc.Details(ctx, "ghost", "c2", graded(60))
	require.NoError(t, err)
	assert.Equal(t, "ghost", p.StudentName)
}

func TestDetails_NotEligible(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, res := range []grading.Result{
		{Kind: grading.ResultNoExam},
		{Kind: grading.ResultNotAttempted, TotalCount: 3},
	} {
		_, err := f.svc.Details(ctx, "stu", "c1", res)
		assert.ErrorIs(t, err, certificate.ErrNotEligible)
	}
	_, err := f.svc.Verify(ctx, "missing")
	assert.ErrorIs(t, err, certificate.ErrNotFound)
}

func TestDetails_UnknownCourse(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Details(context.Background(), "stu", "nope", graded(60))
	assert.ErrorIs(t, err, course.ErrCourseNotFound)
}
