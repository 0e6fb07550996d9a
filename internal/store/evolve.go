package store

import (
	"context"
	"fmt"

	"github.com/roach88/appcache/internal/ident"
	"github.com/roach88/appcache/internal/schema"
)

// AttributeStatus is the outcome of asserting one attribute on a record.
type AttributeStatus string

const (
	// AttributeApplied means the column existed and was set.
	AttributeApplied AttributeStatus = "applied"
	// AttributeEvolved means the column was added, then set.
	AttributeEvolved AttributeStatus = "evolved"
	// AttributeAbandoned means the attribute was not set; see Reason.
	AttributeAbandoned AttributeStatus = "abandoned"
)

// AttributeResult reports what happened to one attribute during Upsert.
type AttributeResult struct {
	Namespace schema.Namespace `json:"namespace"`
	Name      string           `json:"name"`   // cleaned name actually stored
	Input     string           `json:"input"`  // name as supplied
	Status    AttributeStatus  `json:"status"`
	Reason    string           `json:"reason,omitempty"`
}

// Migrate ensures the column for name exists in the namespace and returns its
// registry entry. It is idempotent.
func (s *Store) Migrate(ctx context.Context, ns schema.Namespace, name string) (schema.Entry, error) {
	if !ns.Valid() {
		return schema.Entry{}, fmt.Errorf("migrate: unknown namespace %q", ns)
	}
	clean := ident.Clean(name)
	if clean == "" {
		return schema.Entry{}, fmt.Errorf("migrate %s: empty attribute name", ns)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return schema.Entry{}, ErrClosed
	}

	if e, ok := s.registry.Lookup(ns, clean); ok {
		return e, nil
	}
	if err := s.migrate(ctx, s.db, ns, clean); err != nil {
		return schema.Entry{}, err
	}
	e, ok := s.registry.Lookup(ns, clean)
	if !ok {
		return schema.Entry{}, fmt.Errorf("migrate %s: column %s missing after add", ns, ns.Column(clean))
	}
	return e, nil
}

// migrate adds the column for an already-cleaned name and registers it. A
// column added concurrently by another writer is not an error; the registry
// is rebuilt from the table instead.
func (s *Store) migrate(ctx context.Context, q queryer, ns schema.Namespace, name string) error {
	col := ident.Quote(ns.Column(name))
	_, err := q.ExecContext(ctx, fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s INTEGER", tableName, col))
	switch {
	case err == nil:
		ord := s.registry.Register(ns, name)
		s.logger.Info("column added", "column", ns.Column(name), "ordinal", ord)
		return nil
	case isDuplicateColumn(err):
		return s.refresh(ctx, q)
	default:
		return fmt.Errorf("add column %s: %w", col, err)
	}
}

// assertAttribute sets one attribute column to 1 for the record. It never
// fails the caller; problems are reported in the result and logged.
func (s *Store) assertAttribute(ctx context.Context, q queryer, id string, ns schema.Namespace, input string) AttributeResult {
	res := AttributeResult{
		Namespace: ns,
		Name:      ident.Clean(input),
		Input:     input,
		Status:    AttributeApplied,
	}

	if res.Name == "" {
		return s.abandon(id, res, "empty attribute name")
	}

	if _, ok := s.registry.Lookup(ns, res.Name); !ok {
		if err := s.migrate(ctx, q, ns, res.Name); err != nil {
			return s.abandon(id, res, err.Error())
		}
		res.Status = AttributeEvolved
	}

	err := setAttribute(ctx, q, id, ns, res.Name)
	if isNoSuchColumn(err) && res.Status != AttributeEvolved {
		// Registry was stale: the column disappeared since discovery.
		if merr := s.migrate(ctx, q, ns, res.Name); merr != nil {
			return s.abandon(id, res, merr.Error())
		}
		res.Status = AttributeEvolved
		err = setAttribute(ctx, q, id, ns, res.Name)
	}
	if err != nil {
		return s.abandon(id, res, err.Error())
	}

	s.logger.Debug("attribute set",
		"id", id,
		"column", ns.Column(res.Name),
		"status", res.Status,
	)
	return res
}

func setAttribute(ctx context.Context, q queryer, id string, ns schema.Namespace, name string) error {
	query := fmt.Sprintf("UPDATE %s SET %s = 1 WHERE id = ?", tableName, ident.Quote(ns.Column(name)))
	_, err := q.ExecContext(ctx, query, id)
	return err
}

func (s *Store) abandon(id string, res AttributeResult, reason string) AttributeResult {
	res.Status = AttributeAbandoned
	res.Reason = reason
	s.logger.Error("attribute assignment abandoned",
		"id", id,
		"namespace", res.Namespace,
		"input", res.Input,
		"reason", reason,
	)
	return res
}
