package selection

// TableShape describes one table's field surface for extraction: its
// interface name, the names of the concrete types implementing that
// interface, and the classification of its GraphQL fields into columns
// and relations. The schema synthesizer supplies shapes to the assembler;
// this package never inspects synthesized types itself.
type TableShape struct {
	// Interface is the table's interface type name, e.g. "UserFields".
	Interface string
	// Implementers are the concrete type names conforming to Interface.
	Implementers map[string]struct{}
	// Columns maps GraphQL field names to underlying column names.
	Columns map[string]string
	// Relations is the set of relation field names.
	Relations map[string]struct{}
}

// Result is the minimal projection recovered from a selection: the column
// names to fetch and, per requested relation, the sub-selection to resolve
// recursively.
type Result struct {
	Columns   map[string]struct{}
	Relations map[string]*Node
}

// Extract resolves a selection node against a table shape. Direct fields
// and fragment-indirected fields are classified identically: entries
// naming a known column are collected, entries naming a known relation
// record their sub-node, and everything else is ignored for forward
// compatibility. Fragment buckets are merged only when their type
// condition is the table's interface or one of its implementers.
//
// Extract never fails: an absent or empty node yields an empty result,
// and the caller decides the fallback projection. Resolving the same node
// twice yields the same result.
func Extract(node *Node, shape TableShape) Result {
	result := Result{
		Columns:   make(map[string]struct{}),
		Relations: make(map[string]*Node),
	}
	if node.IsEmpty() {
		return result
	}

	for name, child := range node.Direct {
		classify(&result, shape, name, child)
	}
	for typeCondition, fields := range node.Spreads {
		if !appliesTo(shape, typeCondition) {
			continue
		}
		for name, child := range fields {
			classify(&result, shape, name, child)
		}
	}
	return result
}

func classify(result *Result, shape TableShape, fieldName string, child *Node) {
	if column, ok := shape.Columns[fieldName]; ok {
		result.Columns[column] = struct{}{}
		return
	}
	if _, ok := shape.Relations[fieldName]; ok {
		result.Relations[fieldName] = merge(result.Relations[fieldName], child)
	}
}

func appliesTo(shape TableShape, typeCondition string) bool {
	if typeCondition == shape.Interface {
		return true
	}
	_, ok := shape.Implementers[typeCondition]
	return ok
}
