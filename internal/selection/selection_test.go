package selection

import (
	"testing"

	"github.com/graphql-go/graphql/language/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func field(name string, selections ...ast.Selection) *ast.Field {
	f := &ast.Field{Name: &ast.Name{Value: name}}
	if len(selections) > 0 {
		f.SelectionSet = &ast.SelectionSet{Selections: selections}
	}
	return f
}

func inlineFragment(typeCondition string, selections ...ast.Selection) *ast.InlineFragment {
	frag := &ast.InlineFragment{
		SelectionSet: &ast.SelectionSet{Selections: selections},
	}
	if typeCondition != "" {
		frag.TypeCondition = &ast.Named{Name: &ast.Name{Value: typeCondition}}
	}
	return frag
}

func fragmentSpread(name string) *ast.FragmentSpread {
	return &ast.FragmentSpread{Name: &ast.Name{Value: name}}
}

func fragmentDefinition(name, typeCondition string, selections ...ast.Selection) *ast.FragmentDefinition {
	return &ast.FragmentDefinition{
		Name:          &ast.Name{Value: name},
		TypeCondition: &ast.Named{Name: &ast.Name{Value: typeCondition}},
		SelectionSet:  &ast.SelectionSet{Selections: selections},
	}
}

func userShape() TableShape {
	return TableShape{
		Interface:    "UserFields",
		Implementers: map[string]struct{}{"UserSelectItem": {}, "UserItem": {}, "PostAuthorRelation": {}},
		Columns: map[string]string{
			"id":        "id",
			"name":      "name",
			"bio":       "bio",
			"createdAt": "created_at",
		},
		Relations: map[string]struct{}{"posts": {}},
	}
}

func TestFromField_DirectFields(t *testing.T) {
	root := field("users", field("id"), field("name"))

	node := FromField(root, nil)
	require.Len(t, node.Direct, 2)
	assert.Contains(t, node.Direct, "id")
	assert.Contains(t, node.Direct, "name")
	assert.Empty(t, node.Spreads)
}

func TestFromField_SkipsTypename(t *testing.T) {
	root := field("users", field("__typename"), field("id"))

	node := FromField(root, nil)
	assert.Len(t, node.Direct, 1)
	assert.Contains(t, node.Direct, "id")
}

func TestFromField_NilField(t *testing.T) {
	assert.True(t, FromField(nil, nil).IsEmpty())
	assert.True(t, FromField(field("leaf"), nil).IsEmpty())
}

func TestFromField_InlineFragment(t *testing.T) {
	root := field("users",
		inlineFragment("UserFields", field("id"), field("name")),
		field("bio"),
	)

	node := FromField(root, nil)
	assert.Contains(t, node.Direct, "bio")
	require.Contains(t, node.Spreads, "UserFields")
	assert.Contains(t, node.Spreads["UserFields"], "id")
	assert.Contains(t, node.Spreads["UserFields"], "name")
}

func TestFromField_UntypedInlineFragmentMergesIntoEnclosing(t *testing.T) {
	root := field("users", inlineFragment("", field("id")))

	node := FromField(root, nil)
	assert.Contains(t, node.Direct, "id")
	assert.Empty(t, node.Spreads)
}

func TestFromField_UntypedGroupInsideSpreadKeepsCondition(t *testing.T) {
	// A condition-less inline fragment nested inside a typed one stays
	// under the enclosing condition instead of escaping into Direct.
	root := field("users",
		inlineFragment("UnrelatedType",
			inlineFragment("", field("bio")),
		),
	)

	node := FromField(root, nil)
	assert.Empty(t, node.Direct)
	require.Contains(t, node.Spreads, "UnrelatedType")
	assert.Contains(t, node.Spreads["UnrelatedType"], "bio")

	// The same grouping under an applicable condition still contributes.
	result := Extract(node, userShape())
	assert.Empty(t, result.Columns)

	applicable := FromField(field("users",
		inlineFragment("UserFields",
			inlineFragment("", field("bio")),
		),
	), nil)
	result = Extract(applicable, userShape())
	assert.Contains(t, result.Columns, "bio")
}

func TestFromField_FragmentSpread(t *testing.T) {
	fragments := map[string]ast.Definition{
		"UserParts": fragmentDefinition("UserParts", "UserFields", field("id"), field("name")),
	}
	root := field("users", fragmentSpread("UserParts"), field("bio"))

	node := FromField(root, fragments)
	assert.Contains(t, node.Direct, "bio")
	require.Contains(t, node.Spreads, "UserFields")
	assert.Contains(t, node.Spreads["UserFields"], "id")
	assert.Contains(t, node.Spreads["UserFields"], "name")
}

func TestFromField_NestedFragmentKeepsOwnCondition(t *testing.T) {
	fragments := map[string]ast.Definition{
		"Outer": fragmentDefinition("Outer", "UserFields",
			field("id"),
			fragmentSpread("Inner"),
		),
		"Inner": fragmentDefinition("Inner", "UserSelectItem", field("name")),
	}
	root := field("users", fragmentSpread("Outer"))

	node := FromField(root, fragments)
	require.Contains(t, node.Spreads, "UserFields")
	assert.Contains(t, node.Spreads["UserFields"], "id")
	require.Contains(t, node.Spreads, "UserSelectItem")
	assert.Contains(t, node.Spreads["UserSelectItem"], "name")
}

func TestFromField_CyclicFragmentsTerminate(t *testing.T) {
	fragments := map[string]ast.Definition{
		"A": fragmentDefinition("A", "UserFields", field("id"), fragmentSpread("B")),
		"B": fragmentDefinition("B", "UserFields", field("name"), fragmentSpread("A")),
	}
	root := field("users", fragmentSpread("A"))

	node := FromField(root, fragments)
	require.Contains(t, node.Spreads, "UserFields")
	assert.Contains(t, node.Spreads["UserFields"], "id")
	assert.Contains(t, node.Spreads["UserFields"], "name")
}

func TestFromField_UnknownFragmentIgnored(t *testing.T) {
	root := field("users", fragmentSpread("Missing"), field("id"))

	node := FromField(root, map[string]ast.Definition{})
	assert.Contains(t, node.Direct, "id")
	assert.Empty(t, node.Spreads)
}

func TestExtract_DirectAndFragmentEquivalence(t *testing.T) {
	shape := userShape()

	direct := FromField(field("users", field("id"), field("name"), field("bio")), nil)
	mixed := FromField(field("users",
		inlineFragment("UserFields", field("id"), field("name")),
		field("bio"),
	), nil)

	wantColumns := map[string]struct{}{"id": {}, "name": {}, "bio": {}}
	assert.Equal(t, wantColumns, Extract(direct, shape).Columns)
	assert.Equal(t, wantColumns, Extract(mixed, shape).Columns)
}

func TestExtract_ImplementerTypeCondition(t *testing.T) {
	shape := userShape()

	node := FromField(field("author",
		inlineFragment("PostAuthorRelation", field("name")),
		inlineFragment("SomethingElse", field("bio")),
	), nil)

	result := Extract(node, shape)
	assert.Equal(t, map[string]struct{}{"name": {}}, result.Columns,
		"only buckets for the interface or its implementers apply")
}

func TestExtract_ColumnRenaming(t *testing.T) {
	node := FromField(field("users", field("createdAt")), nil)

	result := Extract(node, userShape())
	assert.Equal(t, map[string]struct{}{"created_at": {}}, result.Columns,
		"results carry column names, not field names")
}

func TestExtract_Relations(t *testing.T) {
	node := FromField(field("users",
		field("id"),
		field("posts", field("title")),
	), nil)

	result := Extract(node, userShape())
	assert.Equal(t, map[string]struct{}{"id": {}}, result.Columns)
	require.Contains(t, result.Relations, "posts")
	assert.Contains(t, result.Relations["posts"].Direct, "title")
}

func TestExtract_RepeatedRelationSelectionsMerge(t *testing.T) {
	node := FromField(field("users",
		field("posts", field("title")),
		field("posts", field("body")),
	), nil)

	result := Extract(node, userShape())
	require.Contains(t, result.Relations, "posts")
	assert.Contains(t, result.Relations["posts"].Direct, "title")
	assert.Contains(t, result.Relations["posts"].Direct, "body")
}

func TestExtract_UnknownFieldsIgnored(t *testing.T) {
	node := FromField(field("users", field("id"), field("notAColumn")), nil)

	result := Extract(node, userShape())
	assert.Equal(t, map[string]struct{}{"id": {}}, result.Columns)
	assert.Empty(t, result.Relations)
}

func TestExtract_Idempotent(t *testing.T) {
	node := FromField(field("users",
		inlineFragment("UserFields", field("id")),
		field("posts", field("title")),
	), nil)
	shape := userShape()

	first := Extract(node, shape)
	second := Extract(node, shape)
	assert.Equal(t, first.Columns, second.Columns)
	assert.Equal(t, len(first.Relations), len(second.Relations))
}

func TestExtract_EmptyNode(t *testing.T) {
	result := Extract(&Node{}, userShape())
	assert.Empty(t, result.Columns)
	assert.Empty(t, result.Relations)
}
