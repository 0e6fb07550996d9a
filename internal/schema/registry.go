package schema

import (
	"sort"
	"strings"
)

// Namespace identifies a family of dynamic attribute columns.
type Namespace string

const (
	Permission Namespace = "permission"
	Category   Namespace = "category"
)

// Namespaces lists every namespace in enumeration order.
var Namespaces = []Namespace{Permission, Category}

// Prefix returns the column-name prefix of the namespace, e.g. "permission_".
func (n Namespace) Prefix() string {
	return string(n) + "_"
}

// Column returns the physical column name for an attribute in this namespace.
func (n Namespace) Column(name string) string {
	return n.Prefix() + name
}

// Valid reports whether n is a known namespace.
func (n Namespace) Valid() bool {
	for _, ns := range Namespaces {
		if n == ns {
			return true
		}
	}
	return false
}

// Entry is one registered attribute.
type Entry struct {
	Ordinal int    `json:"ordinal"`
	Name    string `json:"name"`
}

// Column describes one physical column as reported by table metadata.
type Column struct {
	Position int
	Name     string
}

// Registry is the ordered set of known attributes, per namespace.
//
// Registry is not safe for concurrent use; the store serializes access.
type Registry struct {
	entries map[Namespace][]Entry
	next    int
}

// NewRegistry returns an empty registry whose first ordinal is 0.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[Namespace][]Entry)}
}

// Discover builds a registry from table metadata. Columns are visited in
// position order regardless of the order they are supplied in, so the
// resulting enumeration is reproducible.
func Discover(columns []Column) *Registry {
	sorted := make([]Column, len(columns))
	copy(sorted, columns)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Position < sorted[j].Position
	})

	r := NewRegistry()
	for _, c := range sorted {
		if c.Position >= r.next {
			r.next = c.Position + 1
		}
		for _, ns := range Namespaces {
			name, ok := strings.CutPrefix(c.Name, ns.Prefix())
			if !ok {
				continue
			}
			if _, dup := r.Lookup(ns, name); dup {
				break
			}
			r.entries[ns] = append(r.entries[ns], Entry{Ordinal: c.Position, Name: name})
			break
		}
	}
	return r
}

// Register adds name to the namespace and returns its ordinal. Registering a
// name that is already known returns the existing ordinal.
func (r *Registry) Register(ns Namespace, name string) int {
	if e, ok := r.Lookup(ns, name); ok {
		return e.Ordinal
	}
	ord := r.next
	r.next++
	r.entries[ns] = append(r.entries[ns], Entry{Ordinal: ord, Name: name})
	return ord
}

// Lookup finds name in the namespace. Matching folds ASCII letters only,
// which is how SQLite compares identifiers; "É" and "é" are distinct.
func (r *Registry) Lookup(ns Namespace, name string) (Entry, bool) {
	for _, e := range r.entries[ns] {
		if SameIdentifier(e.Name, name) {
			return e, true
		}
	}
	return Entry{}, false
}

// Entries returns a copy of the namespace's entries in ordinal order.
func (r *Registry) Entries(ns Namespace) []Entry {
	out := make([]Entry, len(r.entries[ns]))
	copy(out, r.entries[ns])
	return out
}

// AllNames returns the namespace's attribute names in ordinal order.
func (r *Registry) AllNames(ns Namespace) []string {
	es := r.entries[ns]
	names := make([]string, len(es))
	for i, e := range es {
		names[i] = e.Name
	}
	return names
}

// Len returns the number of attributes registered in the namespace.
func (r *Registry) Len(ns Namespace) int {
	return len(r.entries[ns])
}

// SameIdentifier reports whether a and b name the same SQLite column.
func SameIdentifier(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		if lowerASCII(a[i]) != lowerASCII(b[i]) {
			return false
		}
	}
	return true
}

func lowerASCII(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}
