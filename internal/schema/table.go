package schema

// Row is one data row together with its 1-based position among the data rows.
type Row struct {
	Index int
	Cells []any
}

// Table is a fetched sheet whose header has been checked against its schema.
type Table struct {
	Schema Schema
	Header []any
	Rows   []Row
}

// NewTable validates values (row 0 = header) against s. An empty sheet yields
// an empty table rather than a schema error.
func NewTable(s Schema, values [][]any) (Table, error) {
	t := Table{Schema: s}
	if len(values) == 0 {
		return t, nil
	}
	t.Header = values[0]
	if err := s.Validate(t.Header); err != nil {
		return Table{}, err
	}
	t.Rows = make([]Row, 0, len(values)-1)
	for i, cells := range values[1:] {
		t.Rows = append(t.Rows, Row{Index: i + 1, Cells: cells})
	}
	return t, nil
}

// Len is the number of data rows.
func (t Table) Len() int { return len(t.Rows) }

// Limit keeps only the first n data rows. A non-positive n keeps everything.
func (t Table) Limit(n int) Table {
	if n <= 0 || len(t.Rows) <= n {
		return t
	}
	t.Rows = t.Rows[:n]
	return t
}

// Cell returns the raw value of field f in r, or nil when the row is short or
// the field is unmapped.
func (t Table) Cell(r Row, f Field) any {
	idx := t.Schema.Index(f)
	if idx < 0 || idx >= len(r.Cells) {
		return nil
	}
	return r.Cells[idx]
}

// Encode lays out named values as a row in this schema's column order. Unmapped
// fields are dropped and gaps are filled with empty strings.
func (s Schema) Encode(values map[Field]any) []any {
	row := make([]any, s.Width())
	for i := range row {
		row[i] = ""
	}
	for f, v := range values {
		if idx := s.Index(f); idx >= 0 {
			row[idx] = v
		}
	}
	return row
}
