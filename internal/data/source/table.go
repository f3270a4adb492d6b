package source

// Row is one extracted record keyed by column name. Values keep their
// relational type: int64, float64, string, bool, time.Time or nil.
type Row map[string]any

type Column struct {
	Name         string
	DatabaseType string
}

type Table struct {
	Name    string
	Columns []Column
	Rows    []Row
}

func (t *Table) HasColumn(name string) bool {
	if t == nil {
		return false
	}
	for _, c := range t.Columns {
		if c.Name == name {
			return true
		}
	}
	return false
}

// TableSpec names a table and the columns the mapper depends on. OrderBy
// defaults to the table's "id" column when empty.
type TableSpec struct {
	Name     string
	Required []string
	OrderBy  []string
}
