// Package schema tracks which dynamic attribute columns exist on the App table.
//
// Two namespaces are recognised by column prefix:
//   - permission_<name>
//   - category_<name>
//
// A Registry is a materialized view of the table structure for one store
// session. Entries carry the column's structural position as their ordinal
// and are always enumerated in ordinal order; the same ordered slice drives
// both SELECT-list construction and decoding of the returned row.
package schema
