package typemap

import (
	"errors"
	"testing"

	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mysql-graphql/internal/metadata"
)

func column(name string, kind metadata.DataKind, subtype string) metadata.Column {
	return metadata.Column{Table: "users", Name: name, Kind: kind, Subtype: subtype}
}

func unwrapNonNull(t *testing.T, typ graphql.Output) graphql.Type {
	t.Helper()
	nn, ok := typ.(*graphql.NonNull)
	require.True(t, ok, "expected NonNull, got %T", typ)
	return nn.OfType
}

func TestNullability(t *testing.T) {
	m := New(nil, nil)
	base := column("email", metadata.KindString, "varchar")

	tests := []struct {
		name         string
		mutate       func(*metadata.Column)
		opts         Options
		wantNullable bool
	}{
		{"not-null column is non-null", func(c *metadata.Column) {}, Options{}, false},
		{"nullable column stays nullable", func(c *metadata.Column) { c.Nullable = true }, Options{}, true},
		{"force nullable wins", func(c *metadata.Column) {}, Options{ForceNullable: true}, true},
		{"default ignored without flag", func(c *metadata.Column) { c.HasDefault = true }, Options{}, false},
		{"default optional for create", func(c *metadata.Column) { c.HasDefault = true }, Options{DefaultIsNullable: true}, true},
		{"generated default optional for create", func(c *metadata.Column) { c.HasGeneratedDefault = true }, Options{DefaultIsNullable: true}, true},
		{"no default stays required for create", func(c *metadata.Column) {}, Options{DefaultIsNullable: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			col := base
			tt.mutate(&col)
			mapped, err := m.MapColumn(col, tt.opts)
			require.NoError(t, err)

			_, isNonNull := mapped.Type.(*graphql.NonNull)
			assert.Equal(t, tt.wantNullable, !isNonNull)
		})
	}
}

func TestEnumIdentity(t *testing.T) {
	m := New(nil, nil)
	col := column("status", metadata.KindString, "enum")
	col.EnumValues = []string{"active", "banned"}

	first, err := m.MapColumn(col, Options{})
	require.NoError(t, err)
	second, err := m.MapColumn(col, Options{ForceNullable: true})
	require.NoError(t, err)

	firstEnum := unwrapNonNull(t, first.Type).(*graphql.Enum)
	secondEnum, ok := second.Type.(*graphql.Enum)
	require.True(t, ok)
	assert.Same(t, firstEnum, secondEnum, "same column must yield the same enum object")
	assert.Equal(t, "UserStatusEnum", firstEnum.Name())

	// A same-named column on another table is a distinct type.
	other := col
	other.Table = "posts"
	mapped, err := m.MapColumn(other, Options{})
	require.NoError(t, err)
	otherEnum := unwrapNonNull(t, mapped.Type).(*graphql.Enum)
	assert.NotSame(t, firstEnum, otherEnum)
	assert.Equal(t, "PostStatusEnum", otherEnum.Name())
}

func TestEnumInvalidLiterals(t *testing.T) {
	m := New(nil, nil)
	col := column("status", metadata.KindString, "enum")
	col.EnumValues = []string{"valid_name", "has space", "2leading"}

	mapped, err := m.MapColumn(col, Options{})
	require.NoError(t, err)
	enum := unwrapNonNull(t, mapped.Type).(*graphql.Enum)

	names := make(map[string]interface{})
	for _, v := range enum.Values() {
		names[v.Name] = v.Value
	}
	assert.Equal(t, "valid_name", names["valid_name"])
	assert.Equal(t, "has space", names["Option1"], "invalid literal keeps its value under a positional name")
	assert.Equal(t, "2leading", names["Option2"])
}

func TestBooleanAndNumericWidth(t *testing.T) {
	m := New(nil, nil)

	mapped, err := m.MapColumn(column("active", metadata.KindBoolean, "tinyint"), Options{})
	require.NoError(t, err)
	assert.Equal(t, graphql.Boolean, unwrapNonNull(t, mapped.Type))

	mapped, err = m.MapColumn(column("age", metadata.KindNumber, "int"), Options{})
	require.NoError(t, err)
	assert.Equal(t, graphql.Int, unwrapNonNull(t, mapped.Type))

	mapped, err = m.MapColumn(column("price", metadata.KindNumber, "decimal"), Options{})
	require.NoError(t, err)
	assert.Equal(t, graphql.Float, unwrapNonNull(t, mapped.Type))

	mapped, err = m.MapColumn(column("views", metadata.KindBigInt, "bigint"), Options{})
	require.NoError(t, err)
	scalar, ok := unwrapNonNull(t, mapped.Type).(*graphql.Scalar)
	require.True(t, ok)
	assert.Equal(t, "BigInt", scalar.Name())
}

func TestDateMapsToStringWithDescription(t *testing.T) {
	m := New(nil, nil)
	mapped, err := m.MapColumn(column("created_at", metadata.KindDate, "datetime"), Options{})
	require.NoError(t, err)
	assert.Equal(t, graphql.String, unwrapNonNull(t, mapped.Type))
	assert.NotEmpty(t, mapped.Description)
}

func TestSerializedJSONCollectionHeuristic(t *testing.T) {
	m := New(nil, nil)

	// Annotated text columns with collection-like names become string lists.
	for _, name := range []string{"tags", "media_urls", "friend_ids", "watchlist"} {
		col := column(name, metadata.KindJSON, "text")
		mapped, err := m.MapColumn(col, Options{})
		require.NoError(t, err)

		list, ok := unwrapNonNull(t, mapped.Type).(*graphql.List)
		require.True(t, ok, "column %q should map to a list", name)
		assert.Equal(t, graphql.String, list.OfType)
		assert.NotNil(t, mapped.Resolve, "list coercion needs a resolver")
	}

	// Non-collection names stay generic JSON even when annotated.
	for _, name := range []string{"config", "data", "payload"} {
		col := column(name, metadata.KindJSON, "text")
		mapped, err := m.MapColumn(col, Options{})
		require.NoError(t, err)

		scalar, ok := unwrapNonNull(t, mapped.Type).(*graphql.Scalar)
		require.True(t, ok, "column %q should map to the JSON scalar", name)
		assert.Equal(t, "JSON", scalar.Name())
	}

	// Native JSON columns bypass the heuristic entirely.
	col := column("tags", metadata.KindJSON, "json")
	mapped, err := m.MapColumn(col, Options{})
	require.NoError(t, err)
	scalar, ok := unwrapNonNull(t, mapped.Type).(*graphql.Scalar)
	require.True(t, ok)
	assert.Equal(t, "JSON", scalar.Name())
}

func TestSetColumnMapsToEnumList(t *testing.T) {
	m := New(nil, nil)
	col := column("roles", metadata.KindString, "set")
	col.EnumValues = []string{"admin", "editor"}

	mapped, err := m.MapColumn(col, Options{})
	require.NoError(t, err)

	// A NOT NULL set is [UserRolesEnum!]!, never a bare enum: stored rows
	// hold comma-joined member lists an enum could not serialize.
	list, ok := unwrapNonNull(t, mapped.Type).(*graphql.List)
	require.True(t, ok, "set column should map to a list")
	inner, ok := list.OfType.(*graphql.NonNull)
	require.True(t, ok)
	enum, ok := inner.OfType.(*graphql.Enum)
	require.True(t, ok)
	assert.Equal(t, "UserRolesEnum", enum.Name())
	require.NotNil(t, mapped.Resolve)

	resolve := func(raw interface{}) interface{} {
		out, err := mapped.Resolve(graphql.ResolveParams{
			Source: map[string]interface{}{"roles": raw},
			Info:   graphql.ResolveInfo{FieldName: "roles"},
		})
		require.NoError(t, err)
		return out
	}
	assert.Equal(t, []string{"admin", "editor"}, resolve("admin,editor"))
	assert.Equal(t, []string{"editor"}, resolve([]byte("editor")))
	assert.Equal(t, []string{}, resolve(""), "empty set stores as the empty string")
	assert.Nil(t, resolve(nil))
}

func TestPointColumn(t *testing.T) {
	m := New(nil, nil)
	col := column("location", metadata.KindJSON, "point")

	mapped, err := m.MapColumn(col, Options{})
	require.NoError(t, err)

	obj, ok := unwrapNonNull(t, mapped.Type).(*graphql.Object)
	require.True(t, ok)
	assert.Equal(t, "Point", obj.Name())

	input, ok := mapped.Input.(*graphql.NonNull)
	require.True(t, ok)
	_, ok = input.OfType.(*graphql.InputObject)
	assert.True(t, ok)
}

func TestUnsupportedKind(t *testing.T) {
	m := New(nil, nil)
	col := column("shape", metadata.KindCustom, "geometry")

	_, err := m.MapColumn(col, Options{})
	require.Error(t, err)

	var unsupported *UnsupportedTypeError
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, "users", unsupported.Table)
	assert.Equal(t, "shape", unsupported.Column)
}

func TestOverridePrecedence(t *testing.T) {
	m := New(nil, map[string]Override{
		"users.secret": {Type: graphql.ID, Description: "opaque"},
	})

	// The override applies before any kind rule would.
	col := column("secret", metadata.KindCustom, "geometry")
	mapped, err := m.MapColumn(col, Options{})
	require.NoError(t, err)
	assert.Equal(t, graphql.ID, unwrapNonNull(t, mapped.Type))
	assert.Equal(t, "opaque", mapped.Description)

	// Other columns are untouched.
	_, err = m.MapColumn(column("shape", metadata.KindCustom, "geometry"), Options{})
	assert.Error(t, err)
}
