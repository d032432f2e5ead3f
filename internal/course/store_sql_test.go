package course_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mindengage-progression/internal/course"
	"github.com/mind-engage/mindengage-progression/internal/db/dbtest"
)

func seedCatalog(t *testing.T) *course.SQLCatalog {
	t.Helper()
	dbh := dbtest.Open(t)
	s := dbtest.NewSeeder(t, dbh)
	s.User("u-inst", "inst", "instructor", "Abebe", "", "Kebede", "")
	s.Course("c1", "Go Basics", "u-inst")
	s.Activity("a2", "c1", 2)
	s.Activity("a1", "c1", 1)
	s.Activity("a3", "c1", 3)
	s.ActivityQuestion("q1", "a1", "o1")
	s.SharedQuestion("q2", "a1", "c1", "o2")
	s.ActivityQuestion("q3", "a2", "")
	s.FinalQuestion("f1", "c1", "of1")
	s.Options("q1", "o1", "o1b")
	return course.NewSQLCatalog(dbh)
}

func TestCatalog_ListActivitiesOrdered(t *testing.T) {
	cat := seedCatalog(t)
	acts, err := cat.ListActivities(context.Background(), "c1")
	require.NoError(t, err)
	require.Len(t, acts, 3)
	assert.Equal(t, []string{"a1", "a2", "a3"}, []string{acts[0].ID, acts[1].ID, acts[2].ID})
	assert.Equal(t, 1, acts[0].Order)
}

func TestCatalog_QuestionScopes(t *testing.T) {
	cat := seedCatalog(t)
	ctx := context.Background()

	ids, err := cat.ActivityQuestionIDs(ctx, "a1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"q1", "q2"}, ids)

	ids, err = cat.ActivityQuestionIDs(ctx, "a3")
	require.NoError(t, err)
	assert.Empty(t, ids)

	byAct, err := cat.QuestionIDsByActivity(ctx, "c1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"q1", "q2"}, byAct["a1"])
	assert.Equal(t, []string{"q3"}, byAct["a2"])
	assert.NotContains(t, byAct, "a3")

	final, err := cat.FinalExamQuestions(ctx, "c1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"f1", "q2"}, course.QuestionIDs(final))
}

func TestCatalog_GetQuestionKinds(t *testing.T) {
	cat := seedCatalog(t)
	ctx := context.Background()

	q, err := cat.GetQuestion(ctx, "q2")
	require.NoError(t, err)
	assert.Equal(t, course.KindShared, q.Kind)
	assert.Equal(t, "a1", q.ActivityID)
	assert.Equal(t, "c1", q.CourseID)
	assert.True(t, q.Kind.InActivityQuiz())
	assert.True(t, q.Kind.InFinalExam())

	q, err = cat.GetQuestion(ctx, "q3")
	require.NoError(t, err)
	assert.Equal(t, course.KindActivity, q.Kind)
	assert.Empty(t, q.CorrectOptionID)
	assert.False(t, q.Kind.InFinalExam())

	_, err = cat.GetQuestion(ctx, "nope")
	assert.ErrorIs(t, err, course.ErrQuestionNotFound)
}

func TestCatalog_NotFound(t *testing.T) {
	cat := seedCatalog(t)
	ctx := context.Background()

	_, err := cat.GetCourse(ctx, "missing")
	assert.ErrorIs(t, err, course.ErrCourseNotFound)
	_, err = cat.GetActivity(ctx, "missing")
	assert.ErrorIs(t, err, course.ErrActivityNotFound)
	_, err = cat.GetPerson(ctx, "missing")
	assert.ErrorIs(t, err, course.ErrPersonNotFound)
}

func TestCatalog_GetPersonByUsername(t *testing.T) {
	cat := seedCatalog(t)
	p, err := cat.GetPerson(context.Background(), "inst")
	require.NoError(t, err)
	assert.Equal(t, "u-inst", p.ID)
	assert.Equal(t, "Abebe", p.FirstName)
	assert.Equal(t, "Kebede", p.LastName)

	c, err := cat.GetCourse(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "u-inst", c.InstructorID)
}
