package typemap

import (
	"encoding/json"
	"strings"

	"github.com/graphql-go/graphql"

	"mysql-graphql/internal/scalars"
)

// pointObject returns the shared output type for geometry point columns.
func (m *Mapper) pointObject() *graphql.Object {
	m.mu.RLock()
	cached := m.pointType
	m.mu.RUnlock()
	if cached != nil {
		return cached
	}

	point := graphql.NewObject(graphql.ObjectConfig{
		Name: "Point",
		Fields: graphql.Fields{
			"x": &graphql.Field{Type: graphql.Float},
			"y": &graphql.Field{Type: graphql.Float},
		},
	})

	m.mu.Lock()
	if m.pointType == nil {
		m.pointType = point
	}
	cached = m.pointType
	m.mu.Unlock()

	return cached
}

// pointInputObject returns the shared input counterpart of Point.
func (m *Mapper) pointInputObject() *graphql.InputObject {
	m.mu.RLock()
	cached := m.pointInput
	m.mu.RUnlock()
	if cached != nil {
		return cached
	}

	input := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "PointInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"x": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Float)},
			"y": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Float)},
		},
	})

	m.mu.Lock()
	if m.pointInput == nil {
		m.pointInput = input
	}
	cached = m.pointInput
	m.mu.Unlock()

	return cached
}

// resolvePoint accepts either an {x,y} map produced upstream or a stored
// GeoJSON point and returns the {x,y} shape. Anything unreadable resolves
// to null rather than failing the response.
func resolvePoint(p graphql.ResolveParams) (interface{}, error) {
	value := rowValue(p)
	switch v := value.(type) {
	case nil:
		return nil, nil
	case map[string]interface{}:
		if _, ok := v["x"]; ok {
			return v, nil
		}
		return pointFromGeoJSON(v), nil
	case []byte:
		return parseGeoJSONPoint(string(v)), nil
	case string:
		return parseGeoJSONPoint(v), nil
	default:
		return nil, nil
	}
}

func parseGeoJSONPoint(raw string) interface{} {
	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil
	}
	return pointFromGeoJSON(doc)
}

func pointFromGeoJSON(doc map[string]interface{}) interface{} {
	coords, ok := doc["coordinates"].([]interface{})
	if !ok || len(coords) < 2 {
		return nil
	}
	return map[string]interface{}{"x": coords[0], "y": coords[1]}
}

// resolveSetMembers splits a stored SET value into its member literals.
// MySQL stores the empty set as "", which resolves to an empty list.
func resolveSetMembers(p graphql.ResolveParams) (interface{}, error) {
	value := rowValue(p)
	var raw string
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []string:
		return v, nil
	case []interface{}:
		return v, nil
	case []byte:
		raw = string(v)
	case string:
		raw = v
	default:
		return nil, nil
	}
	if raw == "" {
		return []string{}, nil
	}
	return strings.Split(raw, ","), nil
}

// resolveStringList parses serialized JSON collections into string lists.
func resolveStringList(p graphql.ResolveParams) (interface{}, error) {
	value := rowValue(p)
	if value == nil {
		return nil, nil
	}
	return scalars.StringList(value), nil
}

// resolveBuffer exposes binary values as byte-value lists.
func resolveBuffer(p graphql.ResolveParams) (interface{}, error) {
	value := rowValue(p)
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []byte:
		out := make([]int, len(v))
		for i, b := range v {
			out[i] = int(b)
		}
		return out, nil
	case string:
		out := make([]int, len(v))
		for i := 0; i < len(v); i++ {
			out[i] = int(v[i])
		}
		return out, nil
	default:
		return value, nil
	}
}

// resolveVector parses vector columns stored as "[1.0,2.0]" text.
func resolveVector(p graphql.ResolveParams) (interface{}, error) {
	value := rowValue(p)
	var raw string
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []float64:
		return v, nil
	case []interface{}:
		return v, nil
	case []byte:
		raw = string(v)
	case string:
		raw = v
	default:
		return nil, nil
	}

	var parsed []float64
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, nil
	}
	return parsed, nil
}

// rowValue pulls the field's raw column value from the row map source.
func rowValue(p graphql.ResolveParams) interface{} {
	row, ok := p.Source.(map[string]interface{})
	if !ok {
		return nil
	}
	return row[p.Info.FieldName]
}
