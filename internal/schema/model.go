package schema

import (
	"encoding/json"
	"fmt"
	"regexp"
)

// FieldSpec describes one output column.
type FieldSpec struct {
	Name string  `json:"name"`
	Type SQLType `json:"sql_type"`

	// Source is the raw token the column reads from. Empty means Name.
	Source string `json:"source,omitempty"`

	Derive Derivation `json:"derive,omitempty"`
}

// SourceToken returns the raw token name this field reads from.
func (f FieldSpec) SourceToken() string {
	if f.Source == "" {
		return f.Name
	}
	return f.Source
}

// KeyColumn is the synthetic auto-increment primary key appended by every
// CREATE TABLE. No field may use the name.
const KeyColumn = "id"

var identRe = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// FieldModel is the ordered, immutable list of output columns. It is safe to
// share between goroutines.
type FieldModel struct {
	fields []FieldSpec
	index  map[string]int
}

// NewFieldModel validates specs and builds a model in the given order.
func NewFieldModel(specs ...FieldSpec) (*FieldModel, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("schema: field model needs at least one field")
	}

	m := &FieldModel{
		fields: make([]FieldSpec, len(specs)),
		index:  make(map[string]int, len(specs)),
	}
	for i, f := range specs {
		if !identRe.MatchString(f.Name) {
			return nil, fmt.Errorf("schema: field %d: invalid name %q", i, f.Name)
		}
		if f.Name == KeyColumn {
			return nil, fmt.Errorf("schema: field %q is reserved for the primary key", f.Name)
		}
		if _, dup := m.index[f.Name]; dup {
			return nil, fmt.Errorf("schema: duplicate field %q", f.Name)
		}
		if err := f.Type.validate(); err != nil {
			return nil, fmt.Errorf("schema: field %q: %w", f.Name, err)
		}
		if !f.Derive.valid() {
			return nil, fmt.Errorf("schema: field %q: unknown derivation %q", f.Name, string(f.Derive))
		}
		m.fields[i] = f
		m.index[f.Name] = i
	}
	return m, nil
}

// MustFieldModel is NewFieldModel for static models; it panics on error.
func MustFieldModel(specs ...FieldSpec) *FieldModel {
	m, err := NewFieldModel(specs...)
	if err != nil {
		panic(err)
	}
	return m
}

func (m *FieldModel) Len() int { return len(m.fields) }

// Field returns the i-th field in column order.
func (m *FieldModel) Field(i int) FieldSpec { return m.fields[i] }

// Lookup returns the field with the given name.
func (m *FieldModel) Lookup(name string) (FieldSpec, bool) {
	i, ok := m.index[name]
	if !ok {
		return FieldSpec{}, false
	}
	return m.fields[i], true
}

// Fields returns a copy of the fields in column order.
func (m *FieldModel) Fields() []FieldSpec {
	return append([]FieldSpec(nil), m.fields...)
}

// ColumnNames returns the field names in column order.
func (m *FieldModel) ColumnNames() []string {
	out := make([]string, len(m.fields))
	for i, f := range m.fields {
		out[i] = f.Name
	}
	return out
}

// SourceTokens returns the distinct raw tokens the model reads, in first-use order.
func (m *FieldModel) SourceTokens() []string {
	seen := make(map[string]bool, len(m.fields))
	var out []string
	for _, f := range m.fields {
		src := f.SourceToken()
		if seen[src] {
			continue
		}
		seen[src] = true
		out = append(out, src)
	}
	return out
}

func (m *FieldModel) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.fields)
}

// UnmarshalJSON rebuilds the model through NewFieldModel so decoded models
// obey the same rules as constructed ones.
func (m *FieldModel) UnmarshalJSON(b []byte) error {
	var specs []FieldSpec
	if err := json.Unmarshal(b, &specs); err != nil {
		return err
	}
	built, err := NewFieldModel(specs...)
	if err != nil {
		return err
	}
	*m = *built
	return nil
}
