// Package selection resolves a client's field-selection tree into the set
// of requested columns and sub-relations. A selection can name fields
// directly or through fragments spread on a table's interface; both shapes
// and any mix of the two produce identical results.
//
// The package is deliberately self-contained: it sees only the selection
// node built at the engine boundary and a description of the table's
// field surface supplied by the caller.
package selection

import (
	"github.com/graphql-go/graphql/language/ast"
)

// Node is the engine-neutral selection for one field invocation. Direct
// holds fields selected by name; Spreads holds fields selected through a
// fragment, keyed by the fragment's type-condition name. Nodes are built
// once per request and read-only afterwards.
type Node struct {
	Direct  map[string]*Node
	Spreads map[string]map[string]*Node
}

// IsEmpty reports whether the node selects nothing.
func (n *Node) IsEmpty() bool {
	return n == nil || (len(n.Direct) == 0 && len(n.Spreads) == 0)
}

// FromField converts a graphql-go field AST plus the request's fragment
// definitions into a Node. This is the single place that inspects AST
// shapes; everything downstream works on the tagged structure. A nil or
// selection-less field yields an empty node, never an error.
func FromField(field *ast.Field, fragments map[string]ast.Definition) *Node {
	node := &Node{}
	if field == nil || field.SelectionSet == nil {
		return node
	}
	visited := make(map[string]struct{})
	collect(node, field.SelectionSet.Selections, fragments, visited)
	return node
}

func collect(node *Node, selections []ast.Selection, fragments map[string]ast.Definition, visited map[string]struct{}) {
	for _, selection := range selections {
		switch sel := selection.(type) {
		case *ast.Field:
			if sel.Name == nil || sel.Name.Value == "__typename" {
				continue
			}
			addDirect(node, sel.Name.Value, FromField(sel, fragments))

		case *ast.InlineFragment:
			if sel.SelectionSet == nil {
				continue
			}
			if sel.TypeCondition == nil || sel.TypeCondition.Name == nil {
				// An untyped inline fragment is just grouping; its fields
				// belong to the enclosing selection.
				collect(node, sel.SelectionSet.Selections, fragments, visited)
				continue
			}
			collectSpread(node, sel.TypeCondition.Name.Value, sel.SelectionSet.Selections, fragments, visited)

		case *ast.FragmentSpread:
			if fragments == nil || sel.Name == nil {
				continue
			}
			name := sel.Name.Value
			if _, seen := visited[name]; seen {
				continue
			}
			def, ok := fragments[name]
			if !ok {
				continue
			}
			fragment, ok := def.(*ast.FragmentDefinition)
			if !ok || fragment.SelectionSet == nil {
				continue
			}
			visited[name] = struct{}{}
			typeCondition := ""
			if fragment.TypeCondition != nil && fragment.TypeCondition.Name != nil {
				typeCondition = fragment.TypeCondition.Name.Value
			}
			if typeCondition == "" {
				collect(node, fragment.SelectionSet.Selections, fragments, visited)
			} else {
				collectSpread(node, typeCondition, fragment.SelectionSet.Selections, fragments, visited)
			}
		}
	}
}

func collectSpread(node *Node, typeCondition string, selections []ast.Selection, fragments map[string]ast.Definition, visited map[string]struct{}) {
	for _, selection := range selections {
		switch sel := selection.(type) {
		case *ast.Field:
			if sel.Name == nil || sel.Name.Value == "__typename" {
				continue
			}
			addSpread(node, typeCondition, sel.Name.Value, FromField(sel, fragments))
		case *ast.InlineFragment:
			if sel.SelectionSet == nil {
				continue
			}
			if sel.TypeCondition == nil || sel.TypeCondition.Name == nil {
				// Condition-less grouping stays under the enclosing
				// condition; it must not leak fields into Direct.
				collectSpread(node, typeCondition, sel.SelectionSet.Selections, fragments, visited)
				continue
			}
			collectSpread(node, sel.TypeCondition.Name.Value, sel.SelectionSet.Selections, fragments, visited)
		case *ast.FragmentSpread:
			// Named fragments always carry their own type condition, so
			// they re-enter the normal walk and land under it.
			collect(node, []ast.Selection{selection}, fragments, visited)
		}
	}
}

func addDirect(node *Node, name string, child *Node) {
	if node.Direct == nil {
		node.Direct = make(map[string]*Node)
	}
	node.Direct[name] = merge(node.Direct[name], child)
}

func addSpread(node *Node, typeCondition, name string, child *Node) {
	if node.Spreads == nil {
		node.Spreads = make(map[string]map[string]*Node)
	}
	bucket := node.Spreads[typeCondition]
	if bucket == nil {
		bucket = make(map[string]*Node)
		node.Spreads[typeCondition] = bucket
	}
	bucket[name] = merge(bucket[name], child)
}

// merge combines two selections of the same field into a fresh node,
// leaving both inputs untouched.
func merge(a, b *Node) *Node {
	if a.IsEmpty() {
		return b
	}
	if b.IsEmpty() {
		return a
	}
	out := &Node{}
	for _, src := range []*Node{a, b} {
		for name, child := range src.Direct {
			addDirect(out, name, child)
		}
		for typeCondition, fields := range src.Spreads {
			for name, child := range fields {
				addSpread(out, typeCondition, name, child)
			}
		}
	}
	return out
}
