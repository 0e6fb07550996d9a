package store

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/appcache/internal/app"
	"github.com/roach88/appcache/internal/testutil"
)

// day0 is the start of every test clock.
var day0 = time.Date(2026, time.March, 2, 8, 0, 0, 0, time.UTC)

var drivers = []string{DriverCGo, DriverPure}

// createTestStore opens a store in a temp dir with a controllable clock and
// discarded logs.
func createTestStore(t *testing.T, opts ...Option) (*Store, *testutil.DayClock) {
	t.Helper()
	clock := testutil.NewDayClock(day0)
	path := filepath.Join(t.TempDir(), "test.db")
	all := append([]Option{
		WithClock(clock),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}, opts...)
	s, err := Open(context.Background(), path, all...)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, clock
}

// captureLogs returns a logger option writing to the returned buffer.
func captureLogs() (Option, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return WithLogger(logger), buf
}

// completeItem creates an item with every optional field present.
func completeItem(id string) app.Item {
	return app.Item{
		ID:             id,
		AppName:        "App " + id,
		Rating:         app.Ptr(4.5),
		InstallFee:     0,
		AppIcon:        "https://example.com/" + id + ".png",
		InAppPurchases: app.Ptr(true),
		ContainsAds:    app.Ptr(false),
		NumReviews:     app.Ptr(int64(1200)),
	}
}

// partialItem creates an item missing num_reviews.
func partialItem(id string) app.Item {
	item := completeItem(id)
	item.NumReviews = nil
	return item
}

// columnNames returns the App table's column names in position order.
func columnNames(t *testing.T, s *Store) []string {
	t.Helper()
	rows, err := s.db.Query("SELECT name FROM pragma_table_info('App') ORDER BY cid")
	require.NoError(t, err)
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		require.NoError(t, rows.Scan(&n))
		names = append(names, n)
	}
	require.NoError(t, rows.Err())
	return names
}

// columnsWithPrefix filters columnNames by prefix.
func columnsWithPrefix(t *testing.T, s *Store, prefix string) []string {
	t.Helper()
	var out []string
	for _, n := range columnNames(t, s) {
		if strings.HasPrefix(n, prefix) {
			out = append(out, n)
		}
	}
	return out
}

// verifyPragma checks that a pragma is set to the expected value.
func verifyPragma(s *Store, name, expected string) error {
	var value string
	if err := s.db.QueryRow("PRAGMA " + name).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
