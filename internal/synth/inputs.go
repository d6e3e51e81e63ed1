package synth

import (
	"fmt"

	"github.com/graphql-go/graphql"

	"mysql-graphql/internal/metadata"
	"mysql-graphql/internal/typemap"
)

// CreateInput builds the input object for inserts. Columns carrying a
// database default (including generated defaults such as auto-increment)
// are optional; everything else follows column nullability.
func (s *Synthesizer) CreateInput(table metadata.Table) (*graphql.InputObject, error) {
	return s.inputType(s.namer.CreateInputName(table.Name), table, typemap.Options{
		DefaultIsNullable: true,
	})
}

// UpdateInput builds the input object for updates. Every column is
// optional: an update supplies only the columns it changes.
func (s *Synthesizer) UpdateInput(table metadata.Table) (*graphql.InputObject, error) {
	return s.inputType(s.namer.UpdateInputName(table.Name), table, typemap.Options{
		ForceNullable: true,
	})
}

func (s *Synthesizer) inputType(name string, table metadata.Table, opts typemap.Options) (*graphql.InputObject, error) {
	s.mu.RLock()
	cached, ok := s.inputs[name]
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}

	fields := graphql.InputObjectConfigFieldMap{}
	for _, col := range table.Columns {
		mapped, err := s.mapper.MapColumn(col, opts)
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", table.Name, err)
		}
		if mapped.Input == nil {
			continue
		}
		fields[s.namer.FieldName(col.Name)] = &graphql.InputObjectFieldConfig{
			Type:        mapped.Input,
			Description: mapped.Description,
		}
	}

	input := graphql.NewInputObject(graphql.InputObjectConfig{
		Name:   name,
		Fields: fields,
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	if cached, ok := s.inputs[name]; ok {
		return cached, nil
	}
	s.inputs[name] = input
	return input, nil
}

// DeletePayload builds the result type for deletes: the removed row's
// primary key values and the affected-row count.
func (s *Synthesizer) DeletePayload(table metadata.Table) (*graphql.Object, error) {
	name := s.namer.DeletePayloadName(table.Name)

	s.mu.RLock()
	cached, ok := s.objects[name]
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}

	fields := graphql.Fields{
		"deletedCount": {
			Type:        graphql.NewNonNull(graphql.Int),
			Description: "number of rows removed",
		},
	}
	for _, col := range metadata.PrimaryKeyColumns(table) {
		mapped, err := s.mapper.MapColumn(col, typemap.Options{ForceNullable: true})
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", table.Name, err)
		}
		fields[s.namer.FieldName(col.Name)] = &graphql.Field{
			Type:        mapped.Type,
			Description: mapped.Description,
			Resolve:     mapped.Resolve,
		}
	}

	payload := graphql.NewObject(graphql.ObjectConfig{
		Name:   name,
		Fields: fields,
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	if cached, ok := s.objects[name]; ok {
		return cached, nil
	}
	s.objects[name] = payload
	return payload, nil
}
