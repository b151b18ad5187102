// Package schema holds the static per-table definitions that drive the
// SheetSync validation pipeline.
package schema

import (
	"fmt"
	"sort"

	"github.com/dbsmedya/sheetsync/internal/clean"
)

// ColumnType is the declared type tag of a schema column.
type ColumnType string

const (
	TypeText    ColumnType = "text"
	TypeDecimal ColumnType = "decimal"
	TypeInteger ColumnType = "integer"
	TypeDate    ColumnType = "date"
)

// Valid reports whether the type tag is one of the supported tags.
func (t ColumnType) Valid() bool {
	switch t {
	case TypeText, TypeDecimal, TypeInteger, TypeDate:
		return true
	}
	return false
}

// Clean coerces a raw cell into this type's value representation.
// ok=false means the cleaned value is null.
func (t ColumnType) Clean(raw string) (interface{}, bool) {
	switch t {
	case TypeDecimal:
		v, ok := clean.Decimal(raw)
		return v, ok
	case TypeInteger:
		v, ok := clean.Integer(raw)
		return v, ok
	case TypeDate:
		v, ok := clean.Date(raw)
		return v, ok
	default:
		v, ok := clean.Text(raw)
		return v, ok
	}
}

// Table is the immutable definition of one target table: its expected columns
// in order, required columns, per-column types, optional primary key, and a
// map of foreign-key columns to the table they reference.
type Table struct {
	Name        string
	Sheet       string
	PrimaryKey  string
	Columns     []string
	Required    map[string]bool
	Types       map[string]ColumnType
	ForeignKeys map[string]string // FK column -> referenced table name
}

// Type returns the declared type of a column, defaulting to text.
func (t *Table) Type(column string) ColumnType {
	if typ, ok := t.Types[column]; ok {
		return typ
	}
	return TypeText
}

// IsRequired reports whether a column must be present and non-null.
func (t *Table) IsRequired(column string) bool {
	return t.Required[column]
}

// HasForeignKeys reports whether the table declares any FK columns.
func (t *Table) HasForeignKeys() bool {
	return len(t.ForeignKeys) > 0
}

// Registry is the process-wide set of table definitions, loaded once at start.
type Registry struct {
	tables map[string]*Table
}

// NewRegistry builds a registry from table definitions, validating each one
// structurally. All problems are collected into a single error.
func NewRegistry(tables []*Table) (*Registry, error) {
	r := &Registry{tables: make(map[string]*Table, len(tables))}

	for _, t := range tables {
		if t.Name == "" {
			return nil, fmt.Errorf("table with empty name in schema definitions")
		}
		if _, dup := r.tables[t.Name]; dup {
			return nil, fmt.Errorf("table %q defined twice", t.Name)
		}
		r.tables[t.Name] = t
	}

	for _, t := range r.tables {
		if err := r.validateTable(t); err != nil {
			return nil, err
		}
	}

	return r, nil
}

func (r *Registry) validateTable(t *Table) error {
	if len(t.Columns) == 0 {
		return fmt.Errorf("table %q: no columns defined", t.Name)
	}

	known := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		if known[c] {
			return fmt.Errorf("table %q: column %q listed twice", t.Name, c)
		}
		known[c] = true
	}

	for col, typ := range t.Types {
		if !known[col] {
			return fmt.Errorf("table %q: type declared for unknown column %q", t.Name, col)
		}
		if !typ.Valid() {
			return fmt.Errorf("table %q: column %q has unknown type %q", t.Name, col, typ)
		}
	}

	for col := range t.Required {
		if !known[col] {
			return fmt.Errorf("table %q: required column %q not in column list", t.Name, col)
		}
	}

	if t.PrimaryKey != "" && !known[t.PrimaryKey] {
		return fmt.Errorf("table %q: primary key %q not in column list", t.Name, t.PrimaryKey)
	}

	for col, ref := range t.ForeignKeys {
		if !known[col] {
			return fmt.Errorf("table %q: foreign key column %q not in column list", t.Name, col)
		}
		target, ok := r.tables[ref]
		if !ok {
			return fmt.Errorf("table %q: foreign key %q references undefined table %q", t.Name, col, ref)
		}
		// Key existence checks read the target's primary key column.
		if target.PrimaryKey == "" {
			return fmt.Errorf("table %q: foreign key %q references table %q which declares no primary key", t.Name, col, ref)
		}
	}

	return nil
}

// Get returns the definition for a table, or nil if unknown.
func (r *Registry) Get(name string) *Table {
	return r.tables[name]
}

// Has reports whether the registry defines a table.
func (r *Registry) Has(name string) bool {
	_, ok := r.tables[name]
	return ok
}

// Names returns all table names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tables))
	for name := range r.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of defined tables.
func (r *Registry) Len() int {
	return len(r.tables)
}
