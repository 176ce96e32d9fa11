package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lecture-quiz/api/internal/db"
	"lecture-quiz/api/internal/quiz"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func sampleSet(id, key string, at time.Time) quiz.Set {
	return quiz.Set{
		ID: id, RequestKey: key, Engine: "gemini", Model: "gemini-2.5-flash",
		NumQuestions: 2, Kinds: []quiz.Kind{quiz.Matching, quiz.ShortAnswer}, SourceName: "l1.pdf",
		CreatedAt: at,
		Items: []quiz.Item{
			{Kind: quiz.Matching, Question: "m", Pairs: quiz.Pairs{{Left: "b", Right: "2"}, {Left: "a", Right: "1"}}, Answer: "b-2, a-1"},
			{Kind: quiz.ShortAnswer, Question: "s", Answer: "go", Explanation: "e"},
		},
	}
}

// exerciseRepo runs the same behaviour checks against every implementation.
func exerciseRepo(t *testing.T, repo QuizRepo, c *clock) {
	ctx := context.Background()
	base := c.t

	_, err := repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	older := sampleSet("s1", "k", base.Add(-2*time.Hour))
	newer := sampleSet("s2", "k", base.Add(-time.Minute))
	other := sampleSet("s3", "other", base.Add(-48*time.Hour))
	for _, s := range []quiz.Set{older, newer, other} {
		require.NoError(t, repo.Save(ctx, s))
	}

	got, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, older.Items, got.Items)
	assert.Equal(t, older.Kinds, got.Kinds)
	assert.Equal(t, "l1.pdf", got.SourceName)
	assert.True(t, older.CreatedAt.Equal(got.CreatedAt))

	latest, err := repo.FindLatestByKey(ctx, "k", 0)
	require.NoError(t, err)
	assert.Equal(t, "s2", latest.ID)

	_, err = repo.FindLatestByKey(ctx, "k", 30*time.Second)
	assert.ErrorIs(t, err, ErrNotFound, "too old for maxAge")

	older.SourceName = "renamed.pdf"
	require.NoError(t, repo.Save(ctx, older))
	got, err = repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "renamed.pdf", got.SourceName)

	n, err := repo.PurgeOlderThan(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	_, err = repo.Get(ctx, "s3")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.PurgeOlderThan(ctx, 0)
	assert.Error(t, err)
	assert.Error(t, repo.Save(ctx, quiz.Set{}))
}

func TestMemoryRepo(t *testing.T) {
	c := &clock{t: time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)}
	repo := NewMemoryRepo()
	repo.now = c.now
	exerciseRepo(t, repo, c)
}

func TestSQLRepoSQLite(t *testing.T) {
	ctx := context.Background()
	dsn := "file:" + filepath.Join(t.TempDir(), "quiz.db") + "?_pragma=busy_timeout(5000)"
	conn, err := db.Open(ctx, db.DriverSQLite, dsn)
	require.NoError(t, err)
	defer conn.Close()

	c := &clock{t: time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)}
	repo := NewSQLRepo(conn)
	repo.now = c.now
	exerciseRepo(t, repo, c)
}

func TestSQLRepoPostgres(t *testing.T) {
	dsn := os.Getenv("QUIZ_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("QUIZ_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	conn, err := db.Open(ctx, db.DriverPostgres, dsn)
	require.NoError(t, err)
	defer conn.Close()
	_, err = conn.ExecContext(ctx, `delete from quiz_sets where id in ('s1','s2','s3')`)
	require.NoError(t, err)

	c := &clock{t: time.Now().UTC().Truncate(time.Millisecond)}
	repo := NewSQLRepo(conn)
	repo.now = c.now
	exerciseRepo(t, repo, c)
}
