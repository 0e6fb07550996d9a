package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/appcache/internal/app"
	"github.com/roach88/appcache/internal/ident"
	"github.com/roach88/appcache/internal/schema"
)

// UpsertOption adjusts a single Upsert call.
type UpsertOption func(*upsertConfig)

type upsertConfig struct {
	freshDays int
}

// FreshDays overrides the store's default freshness window for one call.
func FreshDays(days int) UpsertOption {
	return func(c *upsertConfig) {
		c.freshDays = days
	}
}

// UpsertResult reports the outcome of Upsert.
type UpsertResult struct {
	// Written is false when the stored row was fresher than the window and
	// nothing changed.
	Written bool

	// Attributes holds one result per supplied permission and category, in
	// input order. Empty when Written is false.
	Attributes []AttributeResult
}

// Abandoned returns the attribute results that could not be applied.
func (r UpsertResult) Abandoned() []AttributeResult {
	var out []AttributeResult
	for _, a := range r.Attributes {
		if a.Status == AttributeAbandoned {
			out = append(out, a)
		}
	}
	return out
}

// Upsert inserts item, or overwrites the stored row if it is at least
// FreshDays calendar days old.
//
// Optional fields missing from item mark the row partial and leave any stored
// value for those columns untouched. When the row is written, every known
// permission and category is cleared and the item's own attributes are
// asserted, adding columns as needed. A name that is empty once quotes and
// "--" are stripped never creates a column; it is reported abandoned.
// Attribute failures are reported in the result and logged; only failures of
// the primary write or the commit are returned as errors.
func (s *Store) Upsert(ctx context.Context, item app.Item, opts ...UpsertOption) (UpsertResult, error) {
	cfg := upsertConfig{freshDays: s.freshDays}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.freshDays < 0 {
		return UpsertResult{}, fmt.Errorf("upsert %s: fresh days must be >= 0, got %d", item.ID, cfg.freshDays)
	}
	if item.ID == "" {
		return UpsertResult{}, fmt.Errorf("upsert: %w: empty id", ErrInvalidItem)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return UpsertResult{}, ErrClosed
	}

	stmt := buildUpsert(item, s.registry, s.today(), cfg.freshDays)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return UpsertResult{}, fmt.Errorf("upsert %s: begin tx: %w", item.ID, err)
	}
	defer tx.Rollback() // No-op if committed

	res, err := tx.ExecContext(ctx, stmt.query, stmt.args...)
	if err != nil {
		return UpsertResult{}, fmt.Errorf("upsert %s: %w", item.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return UpsertResult{}, fmt.Errorf("upsert %s: rows affected: %w", item.ID, err)
	}
	if n == 0 {
		s.logger.Debug("app still fresh, skipped", "id", item.ID, "fresh_days", cfg.freshDays)
		return UpsertResult{}, nil
	}

	evolved := false
	results := make([]AttributeResult, 0, len(item.Permissions)+len(item.Categories))
	for _, p := range item.Permissions {
		r := s.assertAttribute(ctx, tx, item.ID, schema.Permission, p)
		evolved = evolved || r.Status == AttributeEvolved
		results = append(results, r)
	}
	for _, c := range item.Categories {
		r := s.assertAttribute(ctx, tx, item.ID, schema.Category, c)
		evolved = evolved || r.Status == AttributeEvolved
		results = append(results, r)
	}

	if err := tx.Commit(); err != nil {
		if evolved {
			// The added columns were rolled back with the transaction.
			if rerr := s.refresh(ctx, s.db); rerr != nil {
				s.logger.Error("refresh after failed commit", "error", rerr)
			}
		}
		return UpsertResult{}, fmt.Errorf("upsert %s: commit: %w", item.ID, err)
	}

	return UpsertResult{Written: true, Attributes: results}, nil
}

type upsertStatement struct {
	query string
	args  []any
}

// buildUpsert renders the freshness-gated upsert for item. The conflict
// branch clears every dynamic column known to reg.
func buildUpsert(item app.Item, reg *schema.Registry, today string, freshDays int) upsertStatement {
	cols := []string{"id", "name", "rating", "install_fee", "app_icon", "isPartialInfo", "updateDate"}
	args := []any{
		item.ID,
		item.AppName,
		nullable(item.Rating),
		item.InstallFee,
		item.AppIcon,
		item.IsPartial(),
		today,
	}

	if item.InAppPurchases != nil {
		cols = append(cols, "inAppPurchases")
		args = append(args, *item.InAppPurchases)
	}
	if item.ContainsAds != nil {
		cols = append(cols, "containsAds")
		args = append(args, *item.ContainsAds)
	}
	if item.NumReviews != nil {
		cols = append(cols, "num_reviews")
		args = append(args, *item.NumReviews)
	}

	var sets []string
	for _, c := range cols[1:] {
		sets = append(sets, c+" = excluded."+c)
	}
	for _, ns := range schema.Namespaces {
		for _, name := range reg.AllNames(ns) {
			sets = append(sets, ident.Quote(ns.Column(name))+" = 0")
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s)\n", tableName, strings.Join(cols, ", "))
	fmt.Fprintf(&b, "VALUES (%s)\n", placeholders(len(cols)))
	b.WriteString("ON CONFLICT(id) DO UPDATE SET\n  ")
	b.WriteString(strings.Join(sets, ",\n  "))
	fmt.Fprintf(&b, "\nWHERE julianday(excluded.updateDate) - julianday(%s.updateDate) >= ?", tableName)

	return upsertStatement{
		query: b.String(),
		args:  append(args, freshDays),
	}
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

// today is the day stamp written to updateDate.
func (s *Store) today() string {
	return s.clock.Now().UTC().Format(app.DateLayout)
}
