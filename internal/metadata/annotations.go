package metadata

import (
	"fmt"
	"path"
	"sort"
	"strings"
)

// ApplySerializedJSONColumns marks text columns as JSON-kind based on SQL
// table/column glob patterns, matched case-insensitively. Only columns that
// already hold text can carry serialized JSON; anything else is rejected so
// a typo in the annotation fails the build instead of corrupting types.
//
// Marked columns keep their text subtype, which is what the type mapper
// uses to tell "serialized JSON in a text column" apart from native JSON.
func ApplySerializedJSONColumns(schema *Schema, patterns map[string][]string) error {
	if schema == nil || len(patterns) == 0 {
		return nil
	}
	for ti := range schema.Tables {
		table := &schema.Tables[ti]
		columnPatterns := mergePatterns(patterns, table.Name)
		if len(columnPatterns) == 0 {
			continue
		}
		for ci := range table.Columns {
			col := &table.Columns[ci]
			if !matchesAny(col.Name, columnPatterns) {
				continue
			}
			if col.Kind != KindString || len(col.EnumValues) > 0 {
				return fmt.Errorf("invalid serialized JSON mapping for %s.%s: %s column cannot store JSON text", table.Name, col.Name, col.Kind)
			}
			col.Kind = KindJSON
		}
	}
	return nil
}

func mergePatterns(patterns map[string][]string, table string) []string {
	tableLower := strings.ToLower(table)
	keys := make([]string, 0, len(patterns))
	for key := range patterns {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var combined []string
	for _, key := range keys {
		pattern := strings.ToLower(strings.TrimSpace(key))
		if pattern == "" {
			continue
		}
		matched, err := path.Match(pattern, tableLower)
		if err != nil || !matched {
			continue
		}
		combined = append(combined, patterns[key]...)
	}
	return combined
}

func matchesAny(value string, patterns []string) bool {
	value = strings.ToLower(value)
	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}
		ok, err := path.Match(strings.ToLower(pattern), value)
		if err != nil {
			continue
		}
		if ok {
			return true
		}
	}
	return false
}
