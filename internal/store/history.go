package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

// ErrNotFound is returned when an update or delete matches no row.
var ErrNotFound = errors.New("not found")

type historyRepo struct {
	db *sql.DB
}

func (r *historyRepo) Save(ctx context.Context, item *HistoryItem, keep int) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if keep > 0 {
		if err := trimHistory(ctx, tx, keep-1); err != nil {
			return err
		}
	}

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(tableHistory).
		Columns(
			"id", "created_at", "subject", "grade", "topic",
			"feat_rpp", "feat_materials", "feat_lkpd", "feat_assessment", "feat_question_bank",
			"full_data", "input_data",
		).
		Values(
			item.ID, item.CreatedAt.UnixMilli(), item.Subject, item.Grade, item.Topic,
			item.Features.RPP, item.Features.Materials, item.Features.LKPD,
			item.Features.Assessment, item.Features.QuestionBank,
			string(item.FullData), string(item.InputData),
		).
		Query()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return tx.Commit()
}

// trimHistory deletes the oldest rows so that at most remain are left.
func trimHistory(ctx context.Context, tx *sql.Tx, remain int) error {
	query, args := entsql.Dialect(dialect.SQLite).
		Select("id").
		From(entsql.Table(tableHistory)).
		OrderBy(entsql.Desc("created_at"), entsql.Desc("id")).
		Query()

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("list history ids: %w", err)
	}
	var stale []any
	for i := 0; rows.Next(); i++ {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return fmt.Errorf("scan history id: %w", err)
		}
		if i >= remain {
			stale = append(stale, id)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}
	if len(stale) == 0 {
		return nil
	}

	query, args = entsql.Dialect(dialect.SQLite).
		Delete(tableHistory).
		Where(entsql.In("id", stale...)).
		Query()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("trim history: %w", err)
	}
	return nil
}

func (r *historyRepo) Update(ctx context.Context, id string, fullData json.RawMessage, f Features) error {
	query, args := entsql.Dialect(dialect.SQLite).
		Update(tableHistory).
		Set("full_data", string(fullData)).
		Set("feat_rpp", f.RPP).
		Set("feat_materials", f.Materials).
		Set("feat_lkpd", f.LKPD).
		Set("feat_assessment", f.Assessment).
		Set("feat_question_bank", f.QuestionBank).
		Where(entsql.EQ("id", id)).
		Query()

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update history: %w", err)
	}
	return expectOne(res, id)
}

func (r *historyRepo) List(ctx context.Context, limit int) ([]HistoryItem, error) {
	sel := entsql.Dialect(dialect.SQLite).
		Select(
			"id", "created_at", "subject", "grade", "topic",
			"feat_rpp", "feat_materials", "feat_lkpd", "feat_assessment", "feat_question_bank",
		).
		From(entsql.Table(tableHistory)).
		OrderBy(entsql.Desc("created_at"), entsql.Desc("id"))
	if limit > 0 {
		sel.Limit(limit)
	}

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var out []HistoryItem
	for rows.Next() {
		var (
			it HistoryItem
			ts int64
		)
		err := rows.Scan(&it.ID, &ts, &it.Subject, &it.Grade, &it.Topic,
			&it.Features.RPP, &it.Features.Materials, &it.Features.LKPD,
			&it.Features.Assessment, &it.Features.QuestionBank)
		if err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		it.CreatedAt = time.UnixMilli(ts).UTC()
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *historyRepo) Get(ctx context.Context, id string) (*HistoryItem, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select(
			"id", "created_at", "subject", "grade", "topic",
			"feat_rpp", "feat_materials", "feat_lkpd", "feat_assessment", "feat_question_bank",
			"full_data", "input_data",
		).
		From(entsql.Table(tableHistory)).
		Where(entsql.EQ("id", id)).
		Query()

	var (
		it          HistoryItem
		ts          int64
		full, input string
	)
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&it.ID, &ts, &it.Subject, &it.Grade, &it.Topic,
		&it.Features.RPP, &it.Features.Materials, &it.Features.LKPD,
		&it.Features.Assessment, &it.Features.QuestionBank, &full, &input)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get history: %w", err)
	}
	it.CreatedAt = time.UnixMilli(ts).UTC()
	if full != "" {
		it.FullData = json.RawMessage(full)
	}
	if input != "" {
		it.InputData = json.RawMessage(input)
	}
	return &it, nil
}

func (r *historyRepo) Delete(ctx context.Context, id string) error {
	query, args := entsql.Dialect(dialect.SQLite).
		Delete(tableHistory).
		Where(entsql.EQ("id", id)).
		Query()

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete history: %w", err)
	}
	return expectOne(res, id)
}

func (r *historyRepo) PruneBefore(ctx context.Context, t time.Time) (int64, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Delete(tableHistory).
		Where(entsql.LT("created_at", t.UnixMilli())).
		Query()

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("prune history: %w", err)
	}
	return res.RowsAffected()
}

func expectOne(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("history %s: %w", id, ErrNotFound)
	}
	return nil
}
