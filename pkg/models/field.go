package models

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateField = errors.New("duplicate field name")
	ErrEmptyFieldName = errors.New("empty field name")
)

// Field is a named column of a schema. Type is an opaque tag carried
// through from wherever the schema was read.
type Field struct {
	Name string `json:"name" yaml:"name" bson:"name"`
	Type string `json:"type,omitempty" yaml:"type,omitempty" bson:"type,omitempty"`
}

// Schema is an ordered list of fields with constant time lookup by name.
// The zero value is an empty schema.
type Schema struct {
	fields []Field
	index  map[string]int
}

// NewSchema builds a schema from fields in the given order. Duplicate names
// are kept; lookups resolve to the first one. Use Validate to reject them.
func NewSchema(fields ...Field) Schema {
	s := Schema{
		fields: make([]Field, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	copy(s.fields, fields)
	for i, f := range s.fields {
		if _, seen := s.index[f.Name]; !seen {
			s.index[f.Name] = i
		}
	}
	return s
}

// SchemaFromNames is shorthand for a schema of untyped fields.
func SchemaFromNames(names ...string) Schema {
	fields := make([]Field, len(names))
	for i, n := range names {
		fields[i] = Field{Name: n}
	}
	return NewSchema(fields...)
}

func (s Schema) Len() int { return len(s.fields) }

// Field returns the i-th field. It panics if i is out of range, like a slice index.
func (s Schema) Field(i int) Field { return s.fields[i] }

// Fields returns a copy of the fields in schema order.
func (s Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

func (s Schema) Names() []string {
	out := make([]string, len(s.fields))
	for i, f := range s.fields {
		out[i] = f.Name
	}
	return out
}

// IndexOf returns the position of the first field named name, or -1.
// Matching is exact and case-sensitive.
func (s Schema) IndexOf(name string) int {
	if i, ok := s.index[name]; ok {
		return i
	}
	return -1
}

func (s Schema) Lookup(name string) (Field, bool) {
	i := s.IndexOf(name)
	if i < 0 {
		return Field{}, false
	}
	return s.fields[i], true
}

func (s Schema) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Validate reports the first empty or repeated field name.
func (s Schema) Validate() error {
	seen := make(map[string]struct{}, len(s.fields))
	for i, f := range s.fields {
		if f.Name == "" {
			return fmt.Errorf("field #%d: %w", i, ErrEmptyFieldName)
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("field %q: %w", f.Name, ErrDuplicateField)
		}
		seen[f.Name] = struct{}{}
	}
	return nil
}
