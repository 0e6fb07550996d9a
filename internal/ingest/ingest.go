package ingest

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"

	"github.com/roach88/appcache/internal/app"
)

//go:embed item.cue
var itemSchema string

// ValidationError reports an item that does not satisfy #AppItem.
type ValidationError struct {
	Index   int    // position in the document, 0-based
	ID      string // item id, if one could be read
	Message string
}

func (e *ValidationError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("item %d (%s): %s", e.Index, e.ID, e.Message)
	}
	return fmt.Sprintf("item %d: %s", e.Index, e.Message)
}

// Validator checks decoded documents against #AppItem.
type Validator struct {
	ctx *cue.Context
	def cue.Value
}

// NewValidator compiles the embedded item schema.
func NewValidator() (*Validator, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(itemSchema, cue.Filename("item.cue"))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compile item schema: %w", err)
	}
	def := v.LookupPath(cue.ParsePath("#AppItem"))
	if !def.Exists() {
		return nil, fmt.Errorf("item schema: #AppItem not defined")
	}
	return &Validator{ctx: ctx, def: def}, nil
}

// Validate checks one generic item value, as produced by yaml.Unmarshal
// into an any.
func (v *Validator) Validate(item any) error {
	val := v.ctx.Encode(item)
	if err := val.Err(); err != nil {
		return errors.New(describe(err))
	}
	if err := v.def.Unify(val).Validate(cue.Concrete(true)); err != nil {
		return errors.New(describe(err))
	}
	return nil
}

// LoadFile reads and decodes the item document at path.
func LoadFile(path string) ([]app.Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read items file: %w", err)
	}
	return Decode(data)
}

// Decode validates and decodes an item document. Every item is validated
// before any is returned; the first invalid item is reported as a
// *ValidationError.
func Decode(data []byte) ([]app.Item, error) {
	var generic any
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	var raw []any
	single := false
	switch doc := generic.(type) {
	case nil:
		return nil, fmt.Errorf("no items in document")
	case []any:
		raw = doc
	case map[string]any:
		raw = []any{doc}
		single = true
	default:
		return nil, fmt.Errorf("items document must be a mapping or a sequence, got %T", generic)
	}

	validator, err := NewValidator()
	if err != nil {
		return nil, err
	}
	for i, item := range raw {
		if err := validator.Validate(item); err != nil {
			return nil, &ValidationError{Index: i, ID: rawID(item), Message: err.Error()}
		}
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if single {
		var item app.Item
		if err := decoder.Decode(&item); err != nil {
			return nil, fmt.Errorf("failed to decode item: %w", err)
		}
		return []app.Item{item}, nil
	}
	var items []app.Item
	if err := decoder.Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to decode items: %w", err)
	}
	return items, nil
}

func rawID(item any) string {
	m, ok := item.(map[string]any)
	if !ok {
		return ""
	}
	id, _ := m["id"].(string)
	return id
}

// describe renders the first of possibly many CUE errors as "path: message".
func describe(err error) string {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err.Error()
	}
	first := errs[0]
	format, args := first.Msg()
	msg := fmt.Sprintf(format, args...)
	if path := first.Path(); len(path) > 0 {
		return strings.Join(path, ".") + ": " + msg
	}
	return msg
}
