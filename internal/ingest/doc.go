// Package ingest decodes application item documents and validates them before
// they reach the store.
//
// A document is YAML (or JSON, which YAML accepts) holding either one item
// mapping or a sequence of them. Each item is checked against the embedded
// CUE definition #AppItem, which is closed: misspelled keys are rejected.
package ingest
