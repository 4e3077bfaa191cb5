package services

import (
	"fmt"

	"github.com/custodia-labs/reshelve/internal/core/domain"
)

// ValidateSchema checks that every segment name is a well-formed identifier,
// that input names are unique, and that every output name exists in the input.
// It stops at the first violation.
func ValidateSchema(schema domain.Schema) error {
	seen := make(map[string]struct{}, len(schema.Input))
	for _, key := range schema.Input {
		if !isSegmentName(key) {
			return &domain.ConfigError{
				Key:    key,
				Reason: fmt.Sprintf("invalid character in input schema (in key '%s')", key),
			}
		}
		if _, dup := seen[key]; dup {
			return &domain.ConfigError{
				Key:    key,
				Reason: fmt.Sprintf("duplicate key '%s' in input schema", key),
			}
		}
		seen[key] = struct{}{}
	}

	for _, key := range schema.Output {
		if !isSegmentName(key) {
			return &domain.ConfigError{
				Key:    key,
				Reason: fmt.Sprintf("invalid character in output schema (in key '%s')", key),
			}
		}
		if _, ok := seen[key]; !ok {
			return &domain.ConfigError{
				Key:    key,
				Reason: fmt.Sprintf("'%s' doesn't exist in input schema", key),
			}
		}
	}

	if len(schema.Output) == 0 {
		return &domain.ConfigError{Reason: "output schema is empty"}
	}

	return nil
}

// isSegmentName reports whether s is one or more of [A-Za-z0-9_].
func isSegmentName(s string) bool {
	if s == "" {
		return false
	}

	for _, r := range s {
		if !isLetter(r) && !isDigit(r) && r != '_' {
			return false
		}
	}

	return true
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
