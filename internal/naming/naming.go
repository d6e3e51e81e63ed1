// Package naming derives the deterministic GraphQL names the synthesizer
// publishes. All names are functions of table/column names alone, so
// repeated builds over the same metadata produce byte-identical schemas.
package naming

import (
	"strings"

	"github.com/jinzhu/inflection"
)

// Config carries irregular-word overrides for pluralization.
type Config struct {
	PluralOverrides   map[string]string `mapstructure:"plural_overrides"`
	SingularOverrides map[string]string `mapstructure:"singular_overrides"`
}

// Namer converts SQL names into GraphQL type and field names.
type Namer struct {
	config Config
}

// New creates a Namer with the given configuration.
func New(cfg Config) *Namer {
	return &Namer{config: cfg}
}

// Default returns a Namer with no overrides.
func Default() *Namer {
	return New(Config{})
}

// Pluralize converts a singular word to its plural form, consulting
// overrides before the inflection library.
func (n *Namer) Pluralize(word string) string {
	if override, ok := n.config.PluralOverrides[word]; ok {
		return override
	}
	return inflection.Plural(word)
}

// Singularize converts a plural word to its singular form.
func (n *Namer) Singularize(word string) string {
	if override, ok := n.config.SingularOverrides[word]; ok {
		return override
	}
	return inflection.Singular(word)
}

// TypeBase returns the singular PascalCase base for a table's type names.
// Example: "user_profiles" -> "UserProfile".
func (n *Namer) TypeBase(tableName string) string {
	return toPascalCase(n.Singularize(tableName))
}

// InterfaceName names the per-table interface carrying all scalar columns.
// Example: "users" -> "UserFields".
func (n *Namer) InterfaceName(tableName string) string {
	return n.TypeBase(tableName) + "Fields"
}

// SelectItemName names the relation-inclusive concrete type.
func (n *Namer) SelectItemName(tableName string) string {
	return n.TypeBase(tableName) + "SelectItem"
}

// ItemName names the relation-free concrete type used in flat payloads.
func (n *Namer) ItemName(tableName string) string {
	return n.TypeBase(tableName) + "Item"
}

// RelationTypeName names the concrete type for one relation edge.
// Example: owner "users", field "posts" -> "UserPostsRelation".
func (n *Namer) RelationTypeName(ownerTable, field string) string {
	return n.TypeBase(ownerTable) + upperFirst(field) + "Relation"
}

// EnumTypeName names the synthesized enum for one enum-valued column.
// Example: ("users", "status") -> "UserStatusEnum".
func (n *Namer) EnumTypeName(tableName, columnName string) string {
	return n.TypeBase(tableName) + toPascalCase(columnName) + "Enum"
}

// CreateInputName names the insert input object for a table.
func (n *Namer) CreateInputName(tableName string) string {
	return n.TypeBase(tableName) + "CreateInput"
}

// UpdateInputName names the update input object for a table.
func (n *Namer) UpdateInputName(tableName string) string {
	return n.TypeBase(tableName) + "UpdateInput"
}

// DeletePayloadName names the delete mutation payload for a table.
func (n *Namer) DeletePayloadName(tableName string) string {
	return n.TypeBase(tableName) + "DeletePayload"
}

// ListQueryName returns the pluralized root field for list queries.
// Example: "user_profiles" -> "userProfiles".
func (n *Namer) ListQueryName(tableName string) string {
	return toCamelCase(n.Pluralize(n.Singularize(tableName)))
}

// SingleQueryName returns the singular root field for by-key lookups.
func (n *Namer) SingleQueryName(tableName string) string {
	return toCamelCase(n.Singularize(tableName))
}

// FieldName converts a column name to a GraphQL field name (camelCase).
func (n *Namer) FieldName(columnName string) string {
	return toCamelCase(columnName)
}

// ManyToOneFieldName derives the relation field for an FK column with
// common suffixes stripped. Example: "author_id" -> "author".
func (n *Namer) ManyToOneFieldName(fkColumn string) string {
	name := fkColumn
	for _, suffix := range []string{"_id", "_fk"} {
		if strings.HasSuffix(strings.ToLower(name), suffix) {
			name = name[:len(name)-len(suffix)]
			break
		}
	}
	return toCamelCase(name)
}

// OneToManyFieldName derives the reverse relation field from the
// referencing table. A lone FK uses the pluralized table name ("posts");
// when several FKs point at the same target the FK column prefixes the
// name so the fields stay distinct ("authorPosts", "editorPosts").
func (n *Namer) OneToManyFieldName(sourceTable, fkColumn string, isOnlyFK bool) string {
	plural := toCamelCase(n.Pluralize(n.Singularize(sourceTable)))
	if isOnlyFK {
		return plural
	}
	return n.ManyToOneFieldName(fkColumn) + upperFirst(plural)
}

// MutationName builds a root mutation field such as "createUser".
func (n *Namer) MutationName(verb, tableName string) string {
	return verb + n.TypeBase(tableName)
}

func toPascalCase(s string) string {
	parts := strings.Split(s, "_")
	for i, part := range parts {
		if len(part) > 0 {
			parts[i] = strings.ToUpper(part[:1]) + part[1:]
		}
	}
	return strings.Join(parts, "")
}

func toCamelCase(s string) string {
	parts := strings.Split(s, "_")
	for i := 1; i < len(parts); i++ {
		if len(parts[i]) > 0 {
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}
	return strings.Join(parts, "")
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
