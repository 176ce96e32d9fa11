package app

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lecture-quiz/api/internal/config"
	"lecture-quiz/api/internal/quiz"
	"lecture-quiz/api/internal/session"
	"lecture-quiz/api/internal/store"
)

func testConfig() *config.Config {
	return &config.Config{
		LLMEngine:        "gemini",
		GeminiAPIKey:     "test-key",
		MaxSourceChars:   3000,
		MinQuestions:     1,
		MaxQuestions:     10,
		DefaultQuestions: 5,
		QuizRetention:    time.Hour,
	}
}

func quietLog() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestNewInMemory(t *testing.T) {
	a, err := New(context.Background(), testConfig(), quietLog())
	require.NoError(t, err)
	defer a.Close()

	assert.IsType(t, &store.MemoryRepo{}, a.Repo)
	assert.Equal(t, []string{"gemini"}, a.Engines.Names())
	_, err = a.Engines.GetEngine("gpt")
	assert.Error(t, err, "openai is not configured without a key")
	assert.Empty(t, a.Checks())
	assert.Equal(t, session.Limits{Min: 1, Max: 10, Default: 5}, a.Limits())

	st, err := a.Sessions(context.Background())
	require.NoError(t, err)
	assert.IsType(t, &session.MemoryStore{}, st)
}

func TestNewWithSQLite(t *testing.T) {
	cfg := testConfig()
	cfg.DatabaseDriver = "sqlite"
	cfg.DatabaseURL = "file:" + filepath.Join(t.TempDir(), "quiz.db")

	a, err := New(context.Background(), cfg, quietLog())
	require.NoError(t, err)
	defer a.Close()

	assert.IsType(t, &store.SQLRepo{}, a.Repo)
	require.Contains(t, a.Checks(), "db")
	assert.NoError(t, a.Checks()["db"](context.Background()))
}

func TestExtraKinds(t *testing.T) {
	cfg := testConfig()
	cfg.ExtraKinds = "ordering:set, essay"
	a, err := New(context.Background(), cfg, quietLog())
	require.NoError(t, err)
	assert.Equal(t, quiz.RuleSet, a.Catalog.Rule("ordering"))
	assert.True(t, a.Generator.Catalog().Supports("essay"))

	cfg.ExtraKinds = "matching"
	_, err = New(context.Background(), cfg, quietLog())
	assert.ErrorContains(t, err, "QUIZ_EXTRA_KINDS")
}

func TestBadDriver(t *testing.T) {
	cfg := testConfig()
	cfg.DatabaseDriver = "oracle"
	_, err := New(context.Background(), cfg, quietLog())
	assert.Error(t, err)
}

func TestPurgeLoopStopsOnCancel(t *testing.T) {
	a, err := New(context.Background(), testConfig(), quietLog())
	require.NoError(t, err)

	old := quiz.Set{ID: "old", Items: []quiz.Item{{Kind: quiz.ShortAnswer, Question: "q", Answer: "a"}}, CreatedAt: time.Now().Add(-2 * time.Hour)}
	require.NoError(t, a.Repo.Save(context.Background(), old))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		a.PurgeLoop(ctx)
		close(done)
	}()
	require.Eventually(t, func() bool {
		_, err := a.Repo.Get(context.Background(), "old")
		return err != nil
	}, time.Second, 10*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("purge loop did not stop")
	}
}
