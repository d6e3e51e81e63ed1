// Package metadata models the relational schema that GraphQL synthesis runs
// over: tables, column descriptors, and relation edges discovered from
// MySQL's INFORMATION_SCHEMA. The model is immutable once loaded.
package metadata

// DataKind is the dialect-neutral category of a column's native type.
type DataKind int

const (
	// KindString covers char/varchar/text and enum/set literals.
	KindString DataKind = iota
	// KindNumber covers integer and floating/fixed-point numerics.
	KindNumber
	// KindBigInt covers 64-bit integers that need string transport.
	KindBigInt
	// KindBoolean covers bool and tinyint(1).
	KindBoolean
	// KindDate covers date/time/timestamp/year.
	KindDate
	// KindJSON covers native JSON, geometry points, and text-stored JSON.
	KindJSON
	// KindBuffer covers binary/blob payloads.
	KindBuffer
	// KindArray covers vector columns and element-typed arrays.
	KindArray
	// KindCustom is anything the classifier could not place. Mapping a
	// custom column is a hard error at synthesis time.
	KindCustom
)

func (k DataKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBigInt:
		return "bigint"
	case KindBoolean:
		return "boolean"
	case KindDate:
		return "date"
	case KindJSON:
		return "json"
	case KindBuffer:
		return "buffer"
	case KindArray:
		return "array"
	default:
		return "custom"
	}
}

// Column describes one table column. Table+Name form the column's identity
// and key the enum registry.
type Column struct {
	Table string
	Name  string
	Kind  DataKind
	// Subtype is the lowercased native data type ("int", "decimal",
	// "point", "vector", "text", ...) used for dialect-specific
	// disambiguation: integer width selection, geometry detection, and
	// marking text columns that store serialized JSON.
	Subtype    string
	Nullable   bool
	EnumValues []string
	HasDefault bool
	// HasGeneratedDefault is set for auto_increment and expression
	// defaults; such columns stay optional in create inputs even though
	// the column itself is NOT NULL.
	HasGeneratedDefault bool
	IsPrimaryKey        bool
	// Elem is the element descriptor for generic array columns. Vector
	// columns leave it nil and map to a flat float list instead.
	Elem    *Column
	Comment string
}

// Relation is a directed edge from the owning table to a target table.
// Cycles are expected (post -> author -> posts); nothing here recurses.
type Relation struct {
	Table  string
	Target string
	// Field is the GraphQL field name the edge is exposed under.
	Field string
	// HasMany distinguishes one-to-many from many-to-one cardinality.
	HasMany bool
	// LocalColumn/TargetColumn are the join columns on each side.
	LocalColumn  string
	TargetColumn string
}

// Table is one relation in the source model.
type Table struct {
	Name      string
	Comment   string
	Columns   []Column
	Relations []Relation
}

// Schema is the full introspected model handed to the synthesizer.
type Schema struct {
	Tables []Table
}

// TableByName returns the named table, if present.
func (s *Schema) TableByName(name string) (Table, bool) {
	for _, t := range s.Tables {
		if t.Name == name {
			return t, true
		}
	}
	return Table{}, false
}

// ColumnByName returns the named column, if present.
func (t Table) ColumnByName(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// PrimaryKeyColumns returns the table's primary key columns in column order.
func PrimaryKeyColumns(t Table) []Column {
	var cols []Column
	for _, c := range t.Columns {
		if c.IsPrimaryKey {
			cols = append(cols, c)
		}
	}
	return cols
}
