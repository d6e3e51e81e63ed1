// Package typemap maps column descriptors to GraphQL types. Mapping rules
// run once at schema-build time; the mapper's caches guarantee a single
// type object per scalar and per enum column, which GraphQL engines
// require because they compare types by identity.
package typemap

import (
	"fmt"
	"strings"
	"sync"

	"github.com/graphql-go/graphql"

	"mysql-graphql/internal/metadata"
	"mysql-graphql/internal/naming"
)

// UnsupportedTypeError aborts schema construction: a column kind without a
// mapping rule must not silently degrade into a wrong client-visible type.
type UnsupportedTypeError struct {
	Table  string
	Column string
	Kind   metadata.DataKind
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported column type %s for %s.%s", e.Kind, e.Table, e.Column)
}

// Options control nullability inference for one mapping call.
type Options struct {
	// ForceNullable returns the resolved type as-is nullable, used for
	// update inputs where every column is optional.
	ForceNullable bool
	// DefaultIsNullable keeps columns with a stored or generated default
	// nullable, used for create inputs where defaults make columns
	// optional.
	DefaultIsNullable bool
}

// Override is an explicit per-column mapping consulted before the default
// rules, so no synthesized field is ever patched after construction.
type Override struct {
	Type        graphql.Output
	Input       graphql.Input
	Description string
	Resolve     graphql.FieldResolveFn
}

// Mapped is the result of mapping one column.
type Mapped struct {
	Type        graphql.Output
	Input       graphql.Input
	Description string
	// Resolve post-processes raw row values where the stored encoding
	// differs from the GraphQL shape (string lists, geometry points).
	Resolve graphql.FieldResolveFn
}

// Mapper resolves column descriptors to GraphQL types. Shared type objects
// are built lazily and cached under an insert-if-absent discipline.
type Mapper struct {
	namer     *naming.Namer
	overrides map[string]Override

	mu         sync.RWMutex
	enums      map[string]*graphql.Enum
	jsonType   *graphql.Scalar
	bigIntType *graphql.Scalar
	stringList graphql.Output
	bufferList graphql.Output
	vectorList graphql.Output
	pointType  *graphql.Object
	pointInput *graphql.InputObject
}

// New creates a Mapper. Overrides are keyed by "table.column".
func New(namer *naming.Namer, overrides map[string]Override) *Mapper {
	if namer == nil {
		namer = naming.Default()
	}
	return &Mapper{
		namer:     namer,
		overrides: overrides,
		enums:     make(map[string]*graphql.Enum),
	}
}

func columnKey(col metadata.Column) string {
	return col.Table + "." + col.Name
}

// MapColumn resolves one column to its GraphQL output/input types per the
// mapping rules, then applies nullability inference.
func (m *Mapper) MapColumn(col metadata.Column, opts Options) (Mapped, error) {
	mapped, err := m.mapBase(col)
	if err != nil {
		return Mapped{}, err
	}

	if !nullable(col, opts) {
		mapped.Type = graphql.NewNonNull(mapped.Type)
		if mapped.Input != nil {
			mapped.Input = graphql.NewNonNull(mapped.Input)
		}
	}
	return mapped, nil
}

// nullable implements the nullability law: unless forced nullable, a
// not-null column becomes non-null except when defaults make it optional.
func nullable(col metadata.Column, opts Options) bool {
	if opts.ForceNullable {
		return true
	}
	if col.Nullable {
		return true
	}
	if opts.DefaultIsNullable && (col.HasDefault || col.HasGeneratedDefault) {
		return true
	}
	return false
}

func (m *Mapper) mapBase(col metadata.Column) (Mapped, error) {
	if override, ok := m.overrides[columnKey(col)]; ok {
		input := override.Input
		if input == nil {
			if asInput, ok := override.Type.(graphql.Input); ok {
				input = asInput
			}
		}
		return Mapped{
			Type:        override.Type,
			Input:       input,
			Description: override.Description,
			Resolve:     override.Resolve,
		}, nil
	}

	switch col.Kind {
	case metadata.KindBoolean:
		return scalarPair(graphql.Boolean, ""), nil

	case metadata.KindJSON:
		return m.mapJSON(col), nil

	case metadata.KindDate:
		return scalarPair(graphql.String, fmt.Sprintf("%s value serialized as a string", col.Subtype)), nil

	case metadata.KindString:
		if len(col.EnumValues) > 0 {
			enum := m.enumType(col)
			if col.Subtype == "set" {
				// A SET row stores zero or more members joined by commas,
				// so the column surfaces as a list of the member enum.
				return Mapped{
					Type:        graphql.NewList(graphql.NewNonNull(enum)),
					Input:       graphql.NewList(graphql.NewNonNull(enum)),
					Description: "set column exposed as a list of its members",
					Resolve:     resolveSetMembers,
				}, nil
			}
			return Mapped{Type: enum, Input: enum}, nil
		}
		return scalarPair(graphql.String, ""), nil

	case metadata.KindBigInt:
		bigInt := m.bigIntScalar()
		return Mapped{
			Type:        bigInt,
			Input:       bigInt,
			Description: "64-bit integer transported as a string to preserve precision",
		}, nil

	case metadata.KindNumber:
		if metadata.IsIntegerSubtype(col.Subtype) {
			return scalarPair(graphql.Int, ""), nil
		}
		return scalarPair(graphql.Float, ""), nil

	case metadata.KindBuffer:
		return Mapped{
			Type:        m.bufferListType(),
			Input:       graphql.NewList(graphql.NewNonNull(graphql.Int)),
			Description: "binary column exposed as a list of byte values",
			Resolve:     resolveBuffer,
		}, nil

	case metadata.KindArray:
		return m.mapArray(col)

	default:
		return Mapped{}, &UnsupportedTypeError{Table: col.Table, Column: col.Name, Kind: col.Kind}
	}
}

func (m *Mapper) mapJSON(col metadata.Column) Mapped {
	if col.Subtype == "point" {
		return Mapped{
			Type:        m.pointObject(),
			Input:       m.pointInputObject(),
			Description: "geometry point with x/y coordinates",
			Resolve:     resolvePoint,
		}
	}

	// Text columns annotated as serialized JSON get the collection
	// heuristic; native JSON columns go straight to the generic scalar.
	if col.Subtype != "json" && looksLikeCollection(col.Name) {
		return Mapped{
			Type:        m.stringListType(),
			Input:       graphql.NewList(graphql.String),
			Description: "serialized JSON collection parsed into a list of strings",
			Resolve:     resolveStringList,
		}
	}

	jsonScalar := m.jsonScalar()
	return Mapped{
		Type:        jsonScalar,
		Input:       jsonScalar,
		Description: "JSON value parsed on read",
	}
}

func (m *Mapper) mapArray(col metadata.Column) (Mapped, error) {
	if col.Subtype == "vector" {
		return Mapped{
			Type:        m.vectorListType(),
			Input:       graphql.NewList(graphql.NewNonNull(graphql.Float)),
			Description: "vector column as a flat list of floats",
			Resolve:     resolveVector,
		}, nil
	}

	if col.Elem == nil {
		return Mapped{}, &UnsupportedTypeError{Table: col.Table, Column: col.Name, Kind: col.Kind}
	}
	elem, err := m.MapColumn(*col.Elem, Options{})
	if err != nil {
		return Mapped{}, err
	}
	mapped := Mapped{
		Type:        graphql.NewNonNull(graphql.NewList(elem.Type)),
		Description: "array column",
	}
	if elem.Input != nil {
		mapped.Input = graphql.NewNonNull(graphql.NewList(elem.Input))
	}
	return mapped, nil
}

// scalarPair drops the description for self-describing scalar kinds.
func scalarPair(scalar *graphql.Scalar, description string) Mapped {
	return Mapped{Type: scalar, Input: scalar, Description: description}
}

// collectionTokens are name fragments that mark a serialized JSON text
// column as a string collection. Name-based detection is a documented
// fallback; explicit per-column overrides take precedence.
var collectionTokens = []string{"ids", "urls", "tags", "items", "list", "set", "group", "batch"}

func looksLikeCollection(name string) bool {
	lower := strings.ToLower(name)
	for _, token := range collectionTokens {
		if strings.Contains(lower, token) {
			return true
		}
	}
	return strings.HasSuffix(lower, "s")
}
