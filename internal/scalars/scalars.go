// Package scalars provides the custom GraphQL scalar types used by the
// synthesized schema.
package scalars

import (
	"encoding/json"
	"log/slog"
	"math"
	"strconv"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"
)

// JSON returns a scalar for arbitrary JSON column values. Stored text is
// parsed on read; already-structured values pass through untouched. A
// malformed stored value degrades to the raw string rather than failing
// the response.
func JSON() *graphql.Scalar {
	return graphql.NewScalar(graphql.ScalarConfig{
		Name:        "JSON",
		Description: "Arbitrary JSON value. Stored text is parsed on read.",
		Serialize: func(value interface{}) interface{} {
			switch v := value.(type) {
			case nil:
				return nil
			case []byte:
				return parseOrRaw(string(v))
			case string:
				return parseOrRaw(v)
			default:
				return v
			}
		},
		ParseValue: func(value interface{}) interface{} {
			return value
		},
		ParseLiteral: func(valueAST ast.Value) interface{} {
			if sv, ok := valueAST.(*ast.StringValue); ok {
				return sv.Value
			}
			return nil
		},
	})
}

func parseOrRaw(raw string) interface{} {
	var parsed interface{}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		slog.Default().Warn("malformed stored JSON value, returning raw string",
			slog.String("error", err.Error()))
		return raw
	}
	return parsed
}

// StringList parses a stored JSON array of strings. Non-string elements
// are stringified; a malformed value degrades to an empty list.
func StringList(value interface{}) []string {
	var raw string
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		raw = string(v)
	case string:
		raw = v
	case []string:
		return v
	case []interface{}:
		return stringify(v)
	default:
		return nil
	}

	var parsed []interface{}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		slog.Default().Warn("malformed stored JSON list, returning empty list",
			slog.String("error", err.Error()))
		return []string{}
	}
	return stringify(parsed)
}

func stringify(values []interface{}) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			out = append(out, s)
			continue
		}
		serialized, err := json.Marshal(v)
		if err != nil {
			continue
		}
		out = append(out, string(serialized))
	}
	return out
}

// BigInt returns a scalar for 64-bit integers serialized as strings so
// values above 2^53 survive JSON transport.
func BigInt() *graphql.Scalar {
	return graphql.NewScalar(graphql.ScalarConfig{
		Name:        "BigInt",
		Description: "64-bit integer value serialized as a string.",
		Serialize: func(value interface{}) interface{} {
			switch v := value.(type) {
			case int:
				return strconv.FormatInt(int64(v), 10)
			case int32:
				return strconv.FormatInt(int64(v), 10)
			case int64:
				return strconv.FormatInt(v, 10)
			case uint64:
				return strconv.FormatUint(v, 10)
			case float64:
				if v != math.Trunc(v) {
					return nil
				}
				return strconv.FormatInt(int64(v), 10)
			case string:
				if _, err := strconv.ParseInt(v, 10, 64); err == nil {
					return v
				}
				return nil
			case []byte:
				strVal := string(v)
				if _, err := strconv.ParseInt(strVal, 10, 64); err == nil {
					return strVal
				}
				return nil
			default:
				return nil
			}
		},
		ParseValue: func(value interface{}) interface{} {
			switch v := value.(type) {
			case int:
				return int64(v)
			case int64:
				return v
			case float64:
				if v != math.Trunc(v) {
					return nil
				}
				return int64(v)
			case string:
				parsed, err := strconv.ParseInt(v, 10, 64)
				if err != nil {
					return nil
				}
				return parsed
			default:
				return nil
			}
		},
		ParseLiteral: func(valueAST ast.Value) interface{} {
			switch v := valueAST.(type) {
			case *ast.IntValue:
				parsed, err := strconv.ParseInt(v.Value, 10, 64)
				if err != nil {
					return nil
				}
				return parsed
			case *ast.StringValue:
				parsed, err := strconv.ParseInt(v.Value, 10, 64)
				if err != nil {
					return nil
				}
				return parsed
			default:
				return nil
			}
		},
	})
}
