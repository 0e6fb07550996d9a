package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/roach88/appcache/internal/app"
	"github.com/roach88/appcache/internal/ident"
	"github.com/roach88/appcache/internal/schema"
)

// GetCompleteAppInfo returns the cached record for id, or nil if the id is
// unknown or its stored row is still partial. A nil record means the caller
// should fetch the application again.
func (s *Store) GetCompleteAppInfo(ctx context.Context, id string) (*app.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, ErrClosed
	}

	var (
		rec            = app.Record{ID: id}
		rating         sql.NullFloat64
		numReviews     sql.NullInt64
		inAppPurchases sql.NullBool
		containsAds    sql.NullBool
		updateDate     string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT name, rating, num_reviews, install_fee, inAppPurchases, containsAds,
		       app_icon, updateDate, isPartialInfo
		FROM App
		WHERE id = ? AND isPartialInfo = 0
	`, id).Scan(
		&rec.Name,
		&rating,
		&numReviews,
		&rec.InstallFee,
		&inAppPurchases,
		&containsAds,
		&rec.AppIcon,
		&updateDate,
		&rec.IsPartialInfo,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get app %s: %w", id, err)
	}

	rec.Rating = fromNullFloat(rating)
	rec.NumReviews = fromNullInt(numReviews)
	rec.InAppPurchases = fromNullBool(inAppPurchases)
	rec.ContainsAds = fromNullBool(containsAds)
	rec.UpdateDate, err = time.Parse(app.DateLayout, updateDate)
	if err != nil {
		return nil, fmt.Errorf("get app %s: parse updateDate %q: %w", id, updateDate, err)
	}

	rec.Permissions, err = s.readAttributes(ctx, schema.Permission, id)
	if err != nil {
		return nil, err
	}
	if rec.Permissions == nil {
		return nil, fmt.Errorf("get app %s: permissions: %w", id, ErrInconsistent)
	}
	rec.Categories, err = s.readAttributes(ctx, schema.Category, id)
	if err != nil {
		return nil, err
	}
	if rec.Categories == nil {
		return nil, fmt.Errorf("get app %s: categories: %w", id, ErrInconsistent)
	}

	return &rec, nil
}

// GetAppPermissions returns the permissions asserted for id in registry
// order. It returns nil if id does not exist, partial or not, and an empty
// non-nil slice if it exists without permissions.
func (s *Store) GetAppPermissions(ctx context.Context, id string) ([]schema.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, ErrClosed
	}
	return s.readAttributes(ctx, schema.Permission, id)
}

// GetAppCategories is the category counterpart of GetAppPermissions.
func (s *Store) GetAppCategories(ctx context.Context, id string) ([]schema.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, ErrClosed
	}
	return s.readAttributes(ctx, schema.Category, id)
}

// readAttributes selects every known column of ns for id. The registry's
// entry order is used both to build the select list and to decode the row.
func (s *Store) readAttributes(ctx context.Context, ns schema.Namespace, id string) ([]schema.Entry, error) {
	entries := s.registry.Entries(ns)

	cols := make([]string, 0, len(entries)+1)
	cols = append(cols, "id")
	for _, e := range entries {
		cols = append(cols, ident.Quote(ns.Column(e.Name)))
	}
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ?", strings.Join(cols, ", "), tableName)

	var gotID string
	values := make([]sql.NullInt64, len(entries))
	dest := make([]any, 0, len(entries)+1)
	dest = append(dest, &gotID)
	for i := range values {
		dest = append(dest, &values[i])
	}

	err := s.db.QueryRowContext(ctx, query, id).Scan(dest...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s attributes of %s: %w", ns, id, err)
	}

	out := []schema.Entry{}
	for i, e := range entries {
		if values[i].Valid && values[i].Int64 != 0 {
			out = append(out, e)
		}
	}
	return out, nil
}

// Count returns the number of cached applications. A missing App table
// counts as zero; any other failure is returned.
func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return 0, ErrClosed
	}

	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM App").Scan(&n)
	if isNoSuchTable(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("count apps: %w", err)
	}
	return n, nil
}

func fromNullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}

func fromNullInt(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return &v.Int64
}

func fromNullBool(v sql.NullBool) *bool {
	if !v.Valid {
		return nil
	}
	return &v.Bool
}
