// Package synth generates the GraphQL type graph from the table/relation
// model: one interface per table carrying every scalar column, and the
// concrete object types (relation-inclusive, relation-free, and
// per-relation-edge) that implement it.
//
// Synthesis runs once at schema-build time. Relation object types are
// registered by name first and their field maps populated lazily through
// field thunks, so cyclic relation graphs never recurse during
// construction.
package synth

import (
	"fmt"
	"sync"

	"github.com/graphql-go/graphql"

	"mysql-graphql/internal/metadata"
	"mysql-graphql/internal/naming"
	"mysql-graphql/internal/typemap"
)

// RelationResolverFactory supplies the data-fetch resolver for one
// relation edge. The synthesizer itself performs no I/O; the schema
// assembler injects fetch behavior here.
type RelationResolverFactory func(edge metadata.Relation) graphql.FieldResolveFn

// Synthesizer builds and caches the per-table type graph.
type Synthesizer struct {
	schema  *metadata.Schema
	namer   *naming.Namer
	mapper  *typemap.Mapper
	resolve RelationResolverFactory

	mu sync.RWMutex
	// scalarFields is the single source of truth for each table's field
	// set: the interface is built from it and every concrete type copies
	// it, so interface and implementers can never diverge.
	scalarFields map[string]graphql.Fields
	interfaces   map[string]*graphql.Interface
	objects      map[string]*graphql.Object
	inputs       map[string]*graphql.InputObject
	implementers map[string]map[string]struct{}
}

// New creates a Synthesizer over an immutable schema. The resolver
// factory may be nil when no data layer is attached (tests, SDL export).
func New(schema *metadata.Schema, namer *naming.Namer, mapper *typemap.Mapper, resolve RelationResolverFactory) *Synthesizer {
	if namer == nil {
		namer = naming.Default()
	}
	if mapper == nil {
		mapper = typemap.New(namer, nil)
	}
	return &Synthesizer{
		schema:       schema,
		namer:        namer,
		mapper:       mapper,
		resolve:      resolve,
		scalarFields: make(map[string]graphql.Fields),
		interfaces:   make(map[string]*graphql.Interface),
		objects:      make(map[string]*graphql.Object),
		inputs:       make(map[string]*graphql.InputObject),
		implementers: make(map[string]map[string]struct{}),
	}
}

// Build synthesizes the complete type graph. Mapping errors (unsupported
// column kinds) surface here, once, with the offending column named;
// nothing is served from a partially built schema.
func (s *Synthesizer) Build() error {
	// First pass: scalar field maps and interfaces. Field maps must exist
	// for every table before any concrete type's thunk can run.
	for _, table := range s.schema.Tables {
		if _, err := s.buildScalarFields(table); err != nil {
			return err
		}
		s.interfaceType(table)
	}

	// Second pass: concrete types. Registration order is irrelevant
	// because relation fields resolve their target types by name inside
	// field thunks.
	for _, table := range s.schema.Tables {
		s.selectItemType(table)
		s.itemType(table)
		for _, edge := range table.Relations {
			s.relationType(table, edge)
		}
	}
	return nil
}

// InterfaceType returns the synthesized interface for a table.
func (s *Synthesizer) InterfaceType(table metadata.Table) *graphql.Interface {
	return s.interfaceType(table)
}

// SelectItemType returns the relation-inclusive concrete type.
func (s *Synthesizer) SelectItemType(table metadata.Table) *graphql.Object {
	return s.selectItemType(table)
}

// ItemType returns the relation-free concrete type.
func (s *Synthesizer) ItemType(table metadata.Table) *graphql.Object {
	return s.itemType(table)
}

// MapColumn exposes the mapper for argument and input synthesis.
func (s *Synthesizer) MapColumn(col metadata.Column, opts typemap.Options) (typemap.Mapped, error) {
	return s.mapper.MapColumn(col, opts)
}

// Implementers returns the concrete type names conforming to a table's
// interface, used by selection extraction to accept fragment spreads.
func (s *Synthesizer) Implementers(table metadata.Table) map[string]struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]struct{}, len(s.implementers[table.Name]))
	for name := range s.implementers[table.Name] {
		out[name] = struct{}{}
	}
	return out
}

// buildScalarFields maps every column of a table once, caching the field
// map keyed by table name.
func (s *Synthesizer) buildScalarFields(table metadata.Table) (graphql.Fields, error) {
	s.mu.RLock()
	cached, ok := s.scalarFields[table.Name]
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}

	fields := graphql.Fields{}
	for _, col := range table.Columns {
		mapped, err := s.mapper.MapColumn(col, typemap.Options{})
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", table.Name, err)
		}
		fields[s.namer.FieldName(col.Name)] = &graphql.Field{
			Type:        mapped.Type,
			Description: mapped.Description,
			Resolve:     mapped.Resolve,
		}
	}

	s.mu.Lock()
	if cached, ok := s.scalarFields[table.Name]; ok {
		s.mu.Unlock()
		return cached, nil
	}
	s.scalarFields[table.Name] = fields
	s.mu.Unlock()

	return fields, nil
}

// cachedScalarFields returns a copy of the table's field map so callers
// can append relation fields without mutating the source of truth.
func (s *Synthesizer) cachedScalarFields(tableName string) graphql.Fields {
	s.mu.RLock()
	source := s.scalarFields[tableName]
	s.mu.RUnlock()

	fields := graphql.Fields{}
	for name, field := range source {
		fields[name] = field
	}
	return fields
}

func (s *Synthesizer) interfaceType(table metadata.Table) *graphql.Interface {
	name := s.namer.InterfaceName(table.Name)

	s.mu.RLock()
	cached, ok := s.interfaces[table.Name]
	s.mu.RUnlock()
	if ok {
		return cached
	}

	iface := graphql.NewInterface(graphql.InterfaceConfig{
		Name: name,
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return s.cachedScalarFields(table.Name)
		}),
		ResolveType: func(p graphql.ResolveTypeParams) *graphql.Object {
			return s.selectItemType(table)
		},
		Description: fmt.Sprintf("Scalar fields of the %s table.", table.Name),
	})

	s.mu.Lock()
	if cached, ok := s.interfaces[table.Name]; ok {
		s.mu.Unlock()
		return cached
	}
	s.interfaces[table.Name] = iface
	s.mu.Unlock()

	return iface
}

func (s *Synthesizer) selectItemType(table metadata.Table) *graphql.Object {
	name := s.namer.SelectItemName(table.Name)
	return s.objectType(name, table, func() graphql.Fields {
		fields := s.cachedScalarFields(table.Name)
		s.addRelationFields(fields, table)
		return fields
	})
}

func (s *Synthesizer) itemType(table metadata.Table) *graphql.Object {
	name := s.namer.ItemName(table.Name)
	return s.objectType(name, table, func() graphql.Fields {
		return s.cachedScalarFields(table.Name)
	})
}

// relationType builds the concrete type for one edge owned by owner. It
// implements the target table's interface and carries the target's scalar
// fields plus the target's own relation fields, resolved by name.
func (s *Synthesizer) relationType(owner metadata.Table, edge metadata.Relation) *graphql.Object {
	target, ok := s.schema.TableByName(edge.Target)
	if !ok {
		return nil
	}
	name := s.namer.RelationTypeName(owner.Name, edge.Field)
	return s.objectType(name, target, func() graphql.Fields {
		fields := s.cachedScalarFields(target.Name)
		s.addRelationFields(fields, target)
		return fields
	})
}

// addRelationFields appends one field per relation edge: a non-null list
// of non-null relation objects for many-cardinality, a nullable relation
// object for one-cardinality.
func (s *Synthesizer) addRelationFields(fields graphql.Fields, table metadata.Table) {
	for _, edge := range table.Relations {
		relType := s.relationType(table, edge)
		if relType == nil {
			continue
		}
		var fieldType graphql.Output = relType
		if edge.HasMany {
			fieldType = graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(relType)))
		}
		field := &graphql.Field{Type: fieldType}
		if s.resolve != nil {
			field.Resolve = s.resolve(edge)
		}
		fields[edge.Field] = field
	}
}

// objectType creates (or returns) a concrete type implementing the
// table's interface and records the conformance.
func (s *Synthesizer) objectType(name string, table metadata.Table, thunk func() graphql.Fields) *graphql.Object {
	s.mu.RLock()
	cached, ok := s.objects[name]
	s.mu.RUnlock()
	if ok {
		return cached
	}

	obj := graphql.NewObject(graphql.ObjectConfig{
		Name:       name,
		Fields:     graphql.FieldsThunk(thunk),
		Interfaces: []*graphql.Interface{s.interfaceType(table)},
	})

	s.mu.Lock()
	if cached, ok := s.objects[name]; ok {
		s.mu.Unlock()
		return cached
	}
	s.objects[name] = obj
	if s.implementers[table.Name] == nil {
		s.implementers[table.Name] = make(map[string]struct{})
	}
	s.implementers[table.Name][name] = struct{}{}
	s.mu.Unlock()

	return obj
}
