package quiz_test

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mindengage-progression/internal/db/dbtest"
	"github.com/mind-engage/mindengage-progression/internal/quiz"
)

type fixture struct {
	db    *sql.DB
	store *quiz.SQLStore
	clock *fakeClock
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// Course c1: activity a1 {q1, q2(shared)}, activity a2 {q3}, final {f1, q2}.
func newFixture(t *testing.T) fixture {
	t.Helper()
	dbh := dbtest.Open(t)
	s := dbtest.NewSeeder(t, dbh)
	s.Course("c1", "Course", "")
	s.Activity("a1", "c1", 1)
	s.Activity("a2", "c1", 2)
	s.ActivityQuestion("q1", "a1", "q1-a")
	s.SharedQuestion("q2", "a1", "c1", "q2-a")
	s.ActivityQuestion("q3", "a2", "q3-a")
	s.FinalQuestion("f1", "c1", "f1-a")
	s.Options("q1", "q1-a", "q1-b")
	s.Options("q2", "q2-a", "q2-b")
	s.Options("q3", "q3-a", "q3-b")
	s.Options("f1", "f1-a", "f1-b")

	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	return fixture{db: dbh, store: quiz.NewSQLStore(dbh, clock.Now), clock: clock}
}

func TestSubmitAnswer_InsertThenReplace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	out, err := f.store.SubmitAnswer(ctx, "s1", "q1", "q1-a", false)
	require.NoError(t, err)
	assert.Equal(t, quiz.OutcomeInserted, out)

	first, err := f.store.GetAttempt(ctx, "s1", "q1", false)
	require.NoError(t, err)

	f.clock.Advance(time.Minute)
	out, err = f.store.SubmitAnswer(ctx, "s1", "q1", "q1-b", false)
	require.NoError(t, err)
	assert.Equal(t, quiz.OutcomeReplaced, out)

	second, err := f.store.GetAttempt(ctx, "s1", "q1", false)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "attempt row is reused")
	assert.True(t, second.TakenAt.After(first.TakenAt), "taken_at refreshed")

	live, err := f.store.LiveAnswers(ctx, "s1", "q1", false)
	require.NoError(t, err)
	require.Len(t, live, 1)
	assert.Equal(t, "q1-b", live[0].OptionID)
}

func TestSubmitAnswer_ScopesAreSeparateAttempts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.store.SubmitAnswer(ctx, "s1", "q2", "q2-a", false)
	require.NoError(t, err)
	out, err := f.store.SubmitAnswer(ctx, "s1", "q2", "q2-b", true)
	require.NoError(t, err)
	assert.Equal(t, quiz.OutcomeInserted, out)

	act, err := f.store.LatestAnswers(ctx, "s1", []string{"q2"}, false)
	require.NoError(t, err)
	fin, err := f.store.LatestAnswers(ctx, "s1", []string{"q2"}, true)
	require.NoError(t, err)
	assert.Equal(t, "q2-a", act["q2"])
	assert.Equal(t, "q2-b", fin["q2"])
}

func TestSubmitAnswer_InvalidOptionLeavesStateUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.store.SubmitAnswer(ctx, "s1", "q1", "q1-a", false)
	require.NoError(t, err)
	before, err := f.store.GetAttempt(ctx, "s1", "q1", false)
	require.NoError(t, err)

	f.clock.Advance(time.Hour)
	_, err = f.store.SubmitAnswer(ctx, "s1", "q1", "q3-a", false) // option of another question
	assert.ErrorIs(t, err, quiz.ErrInvalidOption)
	_, err = f.store.SubmitAnswer(ctx, "s1", "q1", "does-not-exist", false)
	assert.ErrorIs(t, err, quiz.ErrInvalidOption)

	after, err := f.store.GetAttempt(ctx, "s1", "q1", false)
	require.NoError(t, err)
	assert.Equal(t, before.TakenAt, after.TakenAt)
	live, err := f.store.LiveAnswers(ctx, "s1", "q1", false)
	require.NoError(t, err)
	require.Len(t, live, 1)
	assert.Equal(t, "q1-a", live[0].OptionID)

	// no attempt is created for a rejected first submission either
	_, err = f.store.SubmitAnswer(ctx, "s1", "q3", "q1-a", false)
	assert.ErrorIs(t, err, quiz.ErrInvalidOption)
	_, err = f.store.GetAttempt(ctx, "s1", "q3", false)
	assert.ErrorIs(t, err, quiz.ErrAttemptNotFound)
}

func TestSubmitAnswer_ConcurrentSubmissionsLeaveOneAnswer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		opt := "q1-a"
		if i%2 == 1 {
			opt = "q1-b"
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.store.SubmitAnswer(ctx, "s1", "q1", opt, false)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	live, err := f.store.LiveAnswers(ctx, "s1", "q1", false)
	require.NoError(t, err)
	assert.Len(t, live, 1)
}

func TestCountAnswered(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	set := []string{"q1", "q2"}

	n, err := f.store.CountAnswered(ctx, "s1", set, false)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	_, err = f.store.SubmitAnswer(ctx, "s1", "q1", "q1-a", false)
	require.NoError(t, err)
	_, err = f.store.SubmitAnswer(ctx, "s1", "q1", "q1-b", false)
	require.NoError(t, err)
	n, err = f.store.CountAnswered(ctx, "s1", set, false)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "resubmission does not double count")

	// other scope and other students do not count
	_, err = f.store.SubmitAnswer(ctx, "s1", "q2", "q2-a", true)
	require.NoError(t, err)
	_, err = f.store.SubmitAnswer(ctx, "s2", "q2", "q2-a", false)
	require.NoError(t, err)
	n, err = f.store.CountAnswered(ctx, "s1", set, false)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = f.store.CountAnswered(ctx, "s1", nil, false)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestLatestAnswers_NewestRowWins(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.store.SubmitAnswer(ctx, "s1", "f1", "f1-a", true)
	require.NoError(t, err)
	a, err := f.store.GetAttempt(ctx, "s1", "f1", true)
	require.NoError(t, err)

	// leftover rows from an older append-only write path
	_, err = f.db.Exec(`INSERT INTO student_answers (student_quiz_id, option_id, created_at) VALUES ($1,$2,$3)`,
		a.ID, "f1-b", time.Now().Unix())
	require.NoError(t, err)

	latest, err := f.store.LatestAnswers(ctx, "s1", []string{"f1", "q2"}, true)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"f1": "f1-b"}, latest)

	// the next submission collapses the duplicates back to one row
	out, err := f.store.SubmitAnswer(ctx, "s1", "f1", "f1-a", true)
	require.NoError(t, err)
	assert.Equal(t, quiz.OutcomeReplaced, out)
	live, err := f.store.LiveAnswers(ctx, "s1", "f1", true)
	require.NoError(t, err)
	require.Len(t, live, 1)
	assert.Equal(t, "f1-a", live[0].OptionID)
}

func TestClearActivityAnswers_Scope(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	submit := func(student, q, opt string, final bool) {
		t.Helper()
		_, err := f.store.SubmitAnswer(ctx, student, q, opt, final)
		require.NoError(t, err)
	}
	submit("s1", "q1", "q1-a", false)
	submit("s1", "q2", "q2-a", false)
	submit("s1", "q2", "q2-b", true) // final-exam attempt on the shared question
	submit("s1", "q3", "q3-a", false) // other activity
	submit("s1", "f1", "f1-a", true)
	submit("s2", "q1", "q1-a", false) // other student

	require.NoError(t, f.store.ClearActivityAnswers(ctx, "s1", "a1"))

	n, err := f.store.CountAnswered(ctx, "s1", []string{"q1", "q2"}, false)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	live, err := f.store.LiveAnswers(ctx, "s1", "q1", false)
	require.NoError(t, err)
	assert.Empty(t, live)

	n, err = f.store.CountAnswered(ctx, "s1", []string{"q3"}, false)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = f.store.CountAnswered(ctx, "s1", []string{"q2", "f1"}, true)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	n, err = f.store.CountAnswered(ctx, "s2", []string{"q1"}, false)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestClearActivityAnswers_NoQuestionsIsNoop(t *testing.T) {
	f := newFixture(t)
	dbtest.NewSeeder(t, f.db).Activity("a-empty", "c1", 3)
	assert.NoError(t, f.store.ClearActivityAnswers(context.Background(), "s1", "a-empty"))
	assert.NoError(t, f.store.ClearActivityAnswers(context.Background(), "s1", "unknown"))
}
