package store

import (
	"errors"
	"strings"
)

// ErrInconsistent is returned when a row that was just read cannot be read
// again. It indicates concurrent modification outside this store.
var ErrInconsistent = errors.New("store: inconsistent read")

// ErrInvalidItem is returned by Upsert for items without an id.
var ErrInvalidItem = errors.New("store: invalid item")

// SQLite reports these conditions as generic SQLITE_ERROR, so both drivers
// are classified by message text.
func isNoSuchTable(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such table")
}

func isNoSuchColumn(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such column")
}

func isDuplicateColumn(err error) bool {
	return err != nil && strings.Contains(err.Error(), "duplicate column name")
}

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("store: closed")
