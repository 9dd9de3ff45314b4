package timeline

import (
	"fmt"
	"maps"
	"slices"
)

// Record is one ordered row of a timeline. Columns keep their insertion
// order, and the set of columns is open: builders attach caller-declared
// extra columns next to the standard ones.
type Record struct {
	columns []string
	values  map[string]any
}

// NewRecord creates an empty record.
func NewRecord() Record {
	return Record{values: make(map[string]any)}
}

// Set stores a value under the given column, appending the column to the
// record's column order if it is new.
func (r *Record) Set(column string, value any) {
	if r.values == nil {
		r.values = make(map[string]any)
	}
	if _, ok := r.values[column]; !ok {
		r.columns = append(r.columns, column)
	}
	r.values[column] = value
}

// Get returns the value stored under column and whether it exists.
func (r Record) Get(column string) (any, bool) {
	v, ok := r.values[column]
	return v, ok
}

// Has reports whether the record has the given column.
func (r Record) Has(column string) bool {
	_, ok := r.values[column]
	return ok
}

// String returns the value under column formatted as a string,
// or "" if the column is absent.
func (r Record) String(column string) string {
	v, ok := r.values[column]
	if !ok {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Columns returns the record's column names in insertion order.
func (r Record) Columns() []string {
	return slices.Clone(r.columns)
}

// Len returns the number of columns.
func (r Record) Len() int {
	return len(r.columns)
}

// Clone returns a deep copy of the record. Values are copied by reference;
// records hold scalars, so this is sufficient.
func (r Record) Clone() Record {
	return Record{
		columns: slices.Clone(r.columns),
		values:  maps.Clone(r.values),
	}
}

// Map returns the record's values as a plain map, for encoders that do not
// care about column order.
func (r Record) Map() map[string]any {
	return maps.Clone(r.values)
}

// Timeline is an ordered sequence of records. Order is creation/file order,
// not a sorted index.
type Timeline []Record

// Columns returns the union of all record columns in first-seen order.
func (t Timeline) Columns() []string {
	var cols []string
	seen := make(map[string]bool)
	for _, r := range t {
		for _, c := range r.columns {
			if !seen[c] {
				seen[c] = true
				cols = append(cols, c)
			}
		}
	}
	return cols
}

// Strings extracts one column from every record, formatted as strings.
// Records missing the column contribute "".
func (t Timeline) Strings(column string) []string {
	out := make([]string, len(t))
	for i, r := range t {
		out[i] = r.String(column)
	}
	return out
}
