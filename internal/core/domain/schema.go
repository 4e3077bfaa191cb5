package domain

import "slices"

// Schema pairs the input and output segment orderings.
// Input decomposes a source-relative path, Output recomposes the destination path.
type Schema struct {
	// Input names each component of a source-relative path, left to right.
	// Names are unique.
	Input []string

	// Output lists the names, drawn from Input, that make up the rebuilt path.
	// A name may appear more than once.
	Output []string
}

// DefaultSchema returns the schema used when nothing is configured.
func DefaultSchema() Schema {
	return Schema{
		Input:  []string{"somePathPart", "name", "year", "fileName"},
		Output: []string{"year", "somePathPart", "name", "fileName"},
	}
}

// Clone returns a deep copy so callers can't mutate shared slices.
func (s Schema) Clone() Schema {
	return Schema{
		Input:  slices.Clone(s.Input),
		Output: slices.Clone(s.Output),
	}
}

// Inverse swaps Input and Output.
// Only defined when Output is a permutation of Input without repeats;
// otherwise the second return value is false.
func (s Schema) Inverse() (Schema, bool) {
	if len(s.Input) != len(s.Output) {
		return Schema{}, false
	}

	in := slices.Clone(s.Input)
	out := slices.Clone(s.Output)
	slices.Sort(in)
	slices.Sort(out)
	if !slices.Equal(in, out) || len(slices.Compact(out)) != len(s.Output) {
		return Schema{}, false
	}

	return Schema{
		Input:  slices.Clone(s.Output),
		Output: slices.Clone(s.Input),
	}, true
}

// Binding maps each input segment name to the value captured from one path.
type Binding map[string]string

// Values returns the bound values for names, in order.
func (b Binding) Values(names []string) []string {
	values := make([]string, 0, len(names))
	for _, name := range names {
		values = append(values, b[name])
	}
	return values
}
