package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"lecture-quiz/api/internal/quiz"
)

var ErrNotFound = sql.ErrNoRows

type QuizRepo interface {
	Save(ctx context.Context, set quiz.Set) error
	Get(ctx context.Context, id string) (quiz.Set, error)
	// FindLatestByKey returns the newest set for key; maxAge <= 0 ignores age.
	FindLatestByKey(ctx context.Context, key string, maxAge time.Duration) (quiz.Set, error)
	PurgeOlderThan(ctx context.Context, olderThan time.Duration) (int64, error)
}

var errBadAge = errors.New("olderThan must be > 0")
