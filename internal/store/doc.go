// Package store provides the SQLite-backed cache of marketplace applications.
//
// The store owns a single table, App, whose fixed columns hold the primary
// application fields and whose dynamic columns (permission_<name>,
// category_<name>) are added at runtime the first time an attribute is seen.
//
// # Writes
//
// Upsert is one INSERT ... ON CONFLICT DO UPDATE statement gated by a
// freshness window measured in calendar days: an existing row is only
// overwritten when its updateDate is at least FreshDays days old. When the
// row is rewritten, every known dynamic column is cleared in the same
// statement and the attributes supplied with the item are then asserted one
// by one. Attribute assignment is best effort; each one yields an
// AttributeResult and failures are logged, never returned.
//
// # Schema evolution
//
// The in-memory schema.Registry mirrors the table's dynamic columns. It is
// rebuilt from PRAGMA table_info at open and after every Migrate, which is the
// only path that issues ALTER TABLE.
//
// # Database configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - One open connection; the store is a single writer
//
// Concurrent writers in other processes are not coordinated. A process that
// adds columns behind this store's back is only noticed on Refresh.
package store
