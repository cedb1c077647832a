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
)

const draftRowID = 1

type draftRepo struct {
	db *sql.DB
}

func (r *draftRepo) Save(ctx context.Context, data json.RawMessage) error {
	query, args := entsql.Dialect(dialect.SQLite).
		Insert(tableDrafts).
		Columns("id", "updated_at", "data").
		Values(draftRowID, time.Now().UnixMilli(), string(data)).
		OnConflict(
			entsql.ConflictColumns("id"),
			entsql.ResolveWithNewValues(),
		).
		Query()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

func (r *draftRepo) Load(ctx context.Context) (*Draft, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select("updated_at", "data").
		From(entsql.Table(tableDrafts)).
		Where(entsql.EQ("id", draftRowID)).
		Query()

	var (
		ts   int64
		data string
	)
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&ts, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load draft: %w", err)
	}
	return &Draft{UpdatedAt: time.UnixMilli(ts).UTC(), Data: json.RawMessage(data)}, nil
}

func (r *draftRepo) Clear(ctx context.Context) error {
	query, args := entsql.Dialect(dialect.SQLite).
		Delete(tableDrafts).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("clear draft: %w", err)
	}
	return nil
}
