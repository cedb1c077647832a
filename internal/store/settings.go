package store

import (
	"context"
	"database/sql"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

const (
	settingPromoLink   = "promo_link"
	settingWhatsApp    = "whatsapp_number"
	settingSocialMedia = "social_media_link"
)

type settingsRepo struct {
	db *sql.DB
}

func (r *settingsRepo) Get(ctx context.Context, defaults AppSettings) (AppSettings, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select("key", "value").
		From(entsql.Table(tableSettings)).
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return defaults, fmt.Errorf("read settings: %w", err)
	}
	defer rows.Close()

	out := defaults
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return defaults, fmt.Errorf("scan setting: %w", err)
		}
		if v == "" {
			continue
		}
		switch k {
		case settingPromoLink:
			out.PromoLink = v
		case settingWhatsApp:
			out.WhatsAppNumber = v
		case settingSocialMedia:
			out.SocialMediaLink = v
		}
	}
	return out, rows.Err()
}

func (r *settingsRepo) Save(ctx context.Context, s AppSettings) error {
	query, args := entsql.Dialect(dialect.SQLite).
		Insert(tableSettings).
		Columns("key", "value").
		Values(settingPromoLink, s.PromoLink).
		Values(settingWhatsApp, s.WhatsAppNumber).
		Values(settingSocialMedia, s.SocialMediaLink).
		OnConflict(
			entsql.ConflictColumns("key"),
			entsql.ResolveWithNewValues(),
		).
		Query()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}
