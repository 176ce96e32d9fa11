package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"lecture-quiz/api/internal/quiz"
)

type SQLRepo struct {
	DB  *sql.DB
	now func() time.Time
}

func NewSQLRepo(db *sql.DB) *SQLRepo { return &SQLRepo{DB: db, now: time.Now} }

// Save upserts by id.
func (r *SQLRepo) Save(ctx context.Context, set quiz.Set) error {
	if set.ID == "" {
		return errors.New("quiz set without id")
	}
	js, err := json.Marshal(set.Items)
	if err != nil {
		return fmt.Errorf("encode items: %w", err)
	}
	created := set.CreatedAt
	if created.IsZero() {
		created = r.now()
	}
	const q = `
insert into quiz_sets (id, request_key, engine, model, num_questions, kinds, source_name, items_json, created_at)
values ($1,$2,$3,$4,$5,$6,$7,$8,$9)
on conflict (id) do update
set request_key = excluded.request_key,
    engine = excluded.engine,
    model = excluded.model,
    num_questions = excluded.num_questions,
    kinds = excluded.kinds,
    source_name = excluded.source_name,
    items_json = excluded.items_json`
	_, err = r.DB.ExecContext(ctx, q,
		set.ID, set.RequestKey, set.Engine, set.Model, set.NumQuestions,
		joinKinds(set.Kinds), set.SourceName, string(js), created.UnixMilli(),
	)
	return err
}

const selectSet = `select id, request_key, engine, model, num_questions, kinds, source_name, items_json, created_at from quiz_sets`

func (r *SQLRepo) Get(ctx context.Context, id string) (quiz.Set, error) {
	return scanSet(r.DB.QueryRowContext(ctx, selectSet+` where id = $1`, id))
}

func (r *SQLRepo) FindLatestByKey(ctx context.Context, key string, maxAge time.Duration) (quiz.Set, error) {
	row := r.DB.QueryRowContext(ctx, selectSet+` where request_key = $1 order by created_at desc limit 1`, key)
	set, err := scanSet(row)
	if err != nil {
		return quiz.Set{}, err
	}
	if maxAge > 0 && r.now().Sub(set.CreatedAt) > maxAge {
		return quiz.Set{}, ErrNotFound
	}
	return set, nil
}

// PurgeOlderThan removes old sets so the table does not grow without bound.
func (r *SQLRepo) PurgeOlderThan(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, errBadAge
	}
	cutoff := r.now().Add(-olderThan).UnixMilli()
	res, err := r.DB.ExecContext(ctx, `delete from quiz_sets where created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	aff, _ := res.RowsAffected()
	return aff, nil
}

func scanSet(row *sql.Row) (quiz.Set, error) {
	var (
		set   quiz.Set
		kinds string
		js    string
		ms    int64
	)
	if err := row.Scan(&set.ID, &set.RequestKey, &set.Engine, &set.Model, &set.NumQuestions,
		&kinds, &set.SourceName, &js, &ms); err != nil {
		return quiz.Set{}, err
	}
	if err := json.Unmarshal([]byte(js), &set.Items); err != nil {
		// a broken row is treated as missing
		return quiz.Set{}, ErrNotFound
	}
	set.Kinds = splitKinds(kinds)
	set.CreatedAt = time.UnixMilli(ms).UTC()
	return set, nil
}

func joinKinds(ks []quiz.Kind) string {
	ss := make([]string, len(ks))
	for i, k := range ks {
		ss[i] = string(k)
	}
	return strings.Join(ss, ",")
}

func splitKinds(s string) []quiz.Kind {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]quiz.Kind, 0, len(parts))
	for _, p := range parts {
		out = append(out, quiz.Kind(p))
	}
	return out
}
