package synth

import (
	"mysql-graphql/internal/metadata"
	"mysql-graphql/internal/selection"
)

// Shape describes a table's type graph in the vocabulary selection
// extraction needs: the interface name, the concrete types conforming to
// it, and which GraphQL field names are columns versus relation edges.
func (s *Synthesizer) Shape(table metadata.Table) selection.TableShape {
	shape := selection.TableShape{
		Interface:    s.namer.InterfaceName(table.Name),
		Implementers: s.Implementers(table),
		Columns:      make(map[string]string, len(table.Columns)),
		Relations:    make(map[string]struct{}, len(table.Relations)),
	}
	for _, col := range table.Columns {
		shape.Columns[s.namer.FieldName(col.Name)] = col.Name
	}
	for _, edge := range table.Relations {
		shape.Relations[edge.Field] = struct{}{}
	}
	return shape
}
