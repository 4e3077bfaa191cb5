package services

import (
	"path/filepath"
	"strings"

	"github.com/custodia-labs/reshelve/internal/core/domain"
)

// Transformer re-projects relative paths from the input schema onto the output schema.
// It is immutable after construction and safe to reuse for every file of a run.
type Transformer struct {
	schema domain.Schema
}

// NewTransformer validates schema and compiles it into a Transformer.
func NewTransformer(schema domain.Schema) (*Transformer, error) {
	if err := ValidateSchema(schema); err != nil {
		return nil, err
	}
	return &Transformer{schema: schema.Clone()}, nil
}

// Schema returns a copy of the compiled schema.
func (t *Transformer) Schema() domain.Schema {
	return t.schema.Clone()
}

// Bind captures one value per input segment from rel.
// rel must have exactly len(Input) non-empty components; a single
// leading separator is tolerated. Otherwise the second result is false.
func (t *Transformer) Bind(rel string) (domain.Binding, bool) {
	rel = filepath.ToSlash(rel)
	rel = strings.TrimPrefix(rel, "/")

	parts := strings.Split(rel, "/")
	if len(parts) != len(t.schema.Input) {
		return nil, false
	}

	binding := make(domain.Binding, len(parts))
	for i, part := range parts {
		if part == "" {
			return nil, false
		}
		binding[t.schema.Input[i]] = part
	}

	return binding, true
}

// Transform rebuilds rel under the output schema, always joined with "/".
// Returns false when rel does not match the input schema.
func (t *Transformer) Transform(rel string) (string, bool) {
	binding, ok := t.Bind(rel)
	if !ok {
		return "", false
	}
	return strings.Join(binding.Values(t.schema.Output), "/"), true
}
