package metadata

import "strings"

// integerSubtypes are the fixed-width/serial subtypes that map to Int.
// Everything else numeric (decimal, float, double) maps to Float.
var integerSubtypes = map[string]struct{}{
	"tinyint":   {},
	"smallint":  {},
	"mediumint": {},
	"int":       {},
	"integer":   {},
	"serial":    {},
	"year":      {},
	"bit":       {},
}

// IsIntegerSubtype reports whether a native subtype selects integer width.
func IsIntegerSubtype(subtype string) bool {
	_, ok := integerSubtypes[strings.ToLower(subtype)]
	return ok
}

// Classify maps a MySQL DATA_TYPE/COLUMN_TYPE pair to a DataKind plus the
// native subtype tag. Size specifiers are stripped before matching.
func Classify(dataType, columnType string) (DataKind, string) {
	subtype := strings.ToLower(strings.TrimSpace(dataType))
	if idx := strings.Index(subtype, "("); idx != -1 {
		subtype = subtype[:idx]
	}

	switch subtype {
	case "bool", "boolean":
		return KindBoolean, subtype
	case "tinyint":
		// tinyint(1) is MySQL's conventional boolean spelling.
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(columnType)), "tinyint(1)") {
			return KindBoolean, subtype
		}
		return KindNumber, subtype
	case "smallint", "mediumint", "int", "integer", "serial",
		"decimal", "numeric", "float", "double", "bit":
		return KindNumber, subtype
	case "bigint":
		return KindBigInt, subtype
	case "date", "datetime", "timestamp", "time", "year":
		return KindDate, subtype
	case "char", "varchar", "tinytext", "text", "mediumtext", "longtext",
		"enum", "set":
		return KindString, subtype
	case "json":
		return KindJSON, subtype
	case "point":
		// Geometry points ride the JSON kind with a distinguishing subtype.
		return KindJSON, subtype
	case "binary", "varbinary", "tinyblob", "blob", "mediumblob", "longblob":
		return KindBuffer, subtype
	case "vector":
		return KindArray, subtype
	default:
		return KindCustom, subtype
	}
}
