// Package app defines the marketplace application records held by the cache.
//
// Item is what an ingest component hands to the store; Record is what a
// complete read returns. Optional fields are pointers: nil means the field
// was absent (Item) or NULL (Record).
package app
