package metadata

import (
	"fmt"
	"strings"
)

// ParseEnumValues interprets INFORMATION_SCHEMA.COLUMNS.COLUMN_TYPE for
// enum columns ("enum('a','b')") without a DB round-trip. Literals may
// contain commas and escaped quotes, either doubled or backslashed.
func ParseEnumValues(columnType string) ([]string, error) {
	return parseLiteralList(columnType, "enum")
}

// ParseSetValues does the same for set columns ("set('a','b')").
func ParseSetValues(columnType string) ([]string, error) {
	return parseLiteralList(columnType, "set")
}

func parseLiteralList(columnType, keyword string) ([]string, error) {
	trimmed := strings.TrimSpace(columnType)
	lower := strings.ToLower(trimmed)
	prefix := keyword + "("
	if !strings.HasPrefix(lower, prefix) || !strings.HasSuffix(lower, ")") {
		return nil, fmt.Errorf("invalid %s definition %q", keyword, columnType)
	}

	body := trimmed[len(prefix) : len(trimmed)-1]
	var values []string
	i := 0
	for i < len(body) {
		for i < len(body) && (body[i] == ' ' || body[i] == ',') {
			i++
		}
		if i >= len(body) {
			break
		}
		if body[i] != '\'' {
			return nil, fmt.Errorf("expected quote at position %d in %q", i, columnType)
		}
		i++
		var sb strings.Builder
		for i < len(body) {
			ch := body[i]
			if ch == '\\' {
				if i+1 >= len(body) {
					return nil, fmt.Errorf("unterminated escape in %q", columnType)
				}
				sb.WriteByte(body[i+1])
				i += 2
				continue
			}
			if ch == '\'' {
				if i+1 < len(body) && body[i+1] == '\'' {
					sb.WriteByte('\'')
					i += 2
					continue
				}
				i++
				break
			}
			sb.WriteByte(ch)
			i++
		}
		values = append(values, sb.String())
	}

	if len(values) == 0 {
		return nil, fmt.Errorf("no %s values parsed from %q", keyword, columnType)
	}
	return values, nil
}
