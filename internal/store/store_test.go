package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/appcache/internal/schema"
	"github.com/roach88/appcache/internal/testutil"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	for _, driver := range drivers {
		t.Run(driver, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "test.db")

			s, err := Open(context.Background(), path, WithDriver(driver))
			require.NoError(t, err)
			defer s.Close()

			_, err = os.Stat(path)
			assert.NoError(t, err, "database file was not created")

			assert.Equal(t, []string{
				"id", "name", "rating", "inAppPurchases", "containsAds", "num_reviews",
				"install_fee", "updateDate", "app_icon", "isPartialInfo",
			}, columnNames(t, s))
		})
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		s, err := Open(ctx, path)
		require.NoError(t, err, "Open() iteration %d", i)
		require.NoError(t, s.Close())
	}
}

func TestOpen_RediscoversDynamicColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()
	clock := testutil.NewDayClock(day0)

	s1, err := Open(ctx, path, WithClock(clock))
	require.NoError(t, err)
	item := completeItem("com.example.a")
	item.Permissions = []string{"camera", "location"}
	item.Categories = []string{"tools"}
	_, err = s1.Upsert(ctx, item)
	require.NoError(t, err)
	before := s1.Attributes(schema.Permission)
	require.NoError(t, s1.Close())

	s2, err := Open(ctx, path, WithClock(clock))
	require.NoError(t, err)
	defer s2.Close()

	assert.Equal(t, before, s2.Attributes(schema.Permission))
	assert.Equal(t, []string{"camera", "location"}, names(s2.Attributes(schema.Permission)))
	assert.Equal(t, []string{"tools"}, names(s2.Attributes(schema.Category)))

	perms, err := s2.GetAppPermissions(ctx, "com.example.a")
	require.NoError(t, err)
	assert.Equal(t, []string{"camera", "location"}, names(perms))
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open(context.Background(), "/nonexistent/dir/test.db")
	assert.Error(t, err)
}

func TestOpen_RejectsNegativeFreshDays(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	_, err := Open(context.Background(), path, WithFreshDays(-1))
	assert.ErrorContains(t, err, "fresh days")
}

func TestOpen_RejectsUnknownDriver(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	_, err := Open(context.Background(), path, WithDriver("postgres"))
	assert.ErrorContains(t, err, "unknown sqlite driver")
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{db: nil}
	assert.NoError(t, s.Close())
}

func TestClose_MultipleCalls(t *testing.T) {
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	assert.NoError(t, s.Close())
	assert.NoError(t, s.Close())
}

func TestClosedStore_ReturnsErrClosed(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = s.Upsert(ctx, completeItem("x"))
	assert.ErrorIs(t, err, ErrClosed)
	_, err = s.GetCompleteAppInfo(ctx, "x")
	assert.ErrorIs(t, err, ErrClosed)
	_, err = s.GetAppPermissions(ctx, "x")
	assert.ErrorIs(t, err, ErrClosed)
	_, err = s.Count(ctx)
	assert.ErrorIs(t, err, ErrClosed)
	_, err = s.Migrate(ctx, schema.Permission, "camera")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestDB_ReturnsUnderlyingConnection(t *testing.T) {
	s, _ := createTestStore(t)

	db := s.DB()
	require.NotNil(t, db)
	assert.NoError(t, db.Ping())
}

func TestPragmas(t *testing.T) {
	for _, driver := range drivers {
		t.Run(driver, func(t *testing.T) {
			s, _ := createTestStore(t, WithDriver(driver))

			assert.NoError(t, verifyPragma(s, "journal_mode", "wal"))
			assert.NoError(t, verifyPragma(s, "synchronous", "1")) // NORMAL = 1
			assert.NoError(t, verifyPragma(s, "busy_timeout", "5000"))
		})
	}
}

func TestFreshDays_Default(t *testing.T) {
	s, _ := createTestStore(t)
	assert.Equal(t, 0, s.FreshDays())

	s, _ = createTestStore(t, WithFreshDays(30))
	assert.Equal(t, 30, s.FreshDays())
}

func names(es []schema.Entry) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.Name
	}
	return out
}
