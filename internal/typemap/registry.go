package typemap

import (
	"fmt"
	"regexp"

	"github.com/graphql-go/graphql"

	"mysql-graphql/internal/metadata"
	"mysql-graphql/internal/scalars"
)

var enumValueName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// enumType returns the canonical enum type for a column, keyed by the
// column's (table, name) identity. The first caller to observe a miss
// constructs and inserts the type; later callers always get the same
// object back, never a duplicate.
func (m *Mapper) enumType(col metadata.Column) *graphql.Enum {
	key := columnKey(col)

	m.mu.RLock()
	cached, ok := m.enums[key]
	m.mu.RUnlock()
	if ok {
		return cached
	}

	values := graphql.EnumValueConfigMap{}
	for i, literal := range col.EnumValues {
		name := literal
		if !enumValueName.MatchString(literal) {
			// Positional placeholder keeps naming deterministic when two
			// invalid literals would otherwise collapse to one name.
			name = fmt.Sprintf("Option%d", i)
		}
		values[name] = &graphql.EnumValueConfig{Value: literal}
	}

	enum := graphql.NewEnum(graphql.EnumConfig{
		Name:   m.namer.EnumTypeName(col.Table, col.Name),
		Values: values,
	})

	m.mu.Lock()
	if cached, ok := m.enums[key]; ok {
		m.mu.Unlock()
		return cached
	}
	m.enums[key] = enum
	m.mu.Unlock()

	return enum
}

func (m *Mapper) jsonScalar() *graphql.Scalar {
	m.mu.RLock()
	cached := m.jsonType
	m.mu.RUnlock()
	if cached != nil {
		return cached
	}

	scalar := scalars.JSON()

	m.mu.Lock()
	if m.jsonType == nil {
		m.jsonType = scalar
	}
	cached = m.jsonType
	m.mu.Unlock()

	return cached
}

func (m *Mapper) bigIntScalar() *graphql.Scalar {
	m.mu.RLock()
	cached := m.bigIntType
	m.mu.RUnlock()
	if cached != nil {
		return cached
	}

	scalar := scalars.BigInt()

	m.mu.Lock()
	if m.bigIntType == nil {
		m.bigIntType = scalar
	}
	cached = m.bigIntType
	m.mu.Unlock()

	return cached
}

func (m *Mapper) stringListType() graphql.Output {
	m.mu.RLock()
	cached := m.stringList
	m.mu.RUnlock()
	if cached != nil {
		return cached
	}

	listType := graphql.NewList(graphql.String)

	m.mu.Lock()
	if m.stringList == nil {
		m.stringList = listType
	}
	cached = m.stringList
	m.mu.Unlock()

	return cached
}

func (m *Mapper) bufferListType() graphql.Output {
	m.mu.RLock()
	cached := m.bufferList
	m.mu.RUnlock()
	if cached != nil {
		return cached
	}

	listType := graphql.NewList(graphql.NewNonNull(graphql.Int))

	m.mu.Lock()
	if m.bufferList == nil {
		m.bufferList = listType
	}
	cached = m.bufferList
	m.mu.Unlock()

	return cached
}

func (m *Mapper) vectorListType() graphql.Output {
	m.mu.RLock()
	cached := m.vectorList
	m.mu.RUnlock()
	if cached != nil {
		return cached
	}

	listType := graphql.NewList(graphql.NewNonNull(graphql.Float))

	m.mu.Lock()
	if m.vectorList == nil {
		m.vectorList = listType
	}
	cached = m.vectorList
	m.mu.Unlock()

	return cached
}
