// Package planner turns extracted selections into executable SQL. It
// decides the physical projection (requested columns widened with primary
// keys and relation join keys) and builds the statements with squirrel;
// it never touches a connection.
package planner

import (
	"fmt"
	"sort"

	sq "github.com/Masterminds/squirrel"

	"mysql-graphql/internal/metadata"
	"mysql-graphql/internal/selection"
)

// Query is a ready-to-run statement: SQL text, bind arguments, and the
// projected column names in SELECT order.
type Query struct {
	SQL     string
	Args    []interface{}
	Columns []string
}

// ListArgs are the pagination arguments of a list query. Zero values mean
// "not supplied".
type ListArgs struct {
	Limit  int
	Offset int
}

// Planner builds statements against one introspected schema.
type Planner struct {
	schema *metadata.Schema
}

func New(schema *metadata.Schema) *Planner {
	return &Planner{schema: schema}
}

// Projection widens the requested column set so the result rows stay
// addressable: primary keys are always fetched, and every requested
// relation edge contributes its local join column. The projection is
// sorted for stable SQL text.
func (p *Planner) Projection(table metadata.Table, res selection.Result) []string {
	want := make(map[string]struct{}, len(res.Columns)+2)
	for col := range res.Columns {
		want[col] = struct{}{}
	}
	for _, col := range metadata.PrimaryKeyColumns(table) {
		want[col.Name] = struct{}{}
	}
	for _, edge := range table.Relations {
		if _, ok := res.Relations[edge.Field]; ok {
			want[edge.LocalColumn] = struct{}{}
		}
	}
	if len(want) == 0 {
		// A selection of relations only, on a keyless table: project the
		// first column so the statement stays valid.
		if len(table.Columns) > 0 {
			want[table.Columns[0].Name] = struct{}{}
		}
	}

	cols := make([]string, 0, len(want))
	for col := range want {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}

// Select builds the list query for a table.
func (p *Planner) Select(table metadata.Table, res selection.Result, args ListArgs) (Query, error) {
	cols := p.Projection(table, res)
	builder := sq.Select(quoteAll(cols)...).From(quoteIdent(table.Name))
	if args.Limit > 0 {
		builder = builder.Limit(uint64(args.Limit))
	}
	if args.Offset > 0 {
		builder = builder.Offset(uint64(args.Offset))
	}
	return finish(builder, cols)
}

// SelectByKey builds the single-row query for a primary key lookup.
func (p *Planner) SelectByKey(table metadata.Table, res selection.Result, key map[string]interface{}) (Query, error) {
	if len(key) == 0 {
		return Query{}, fmt.Errorf("table %s: empty key lookup", table.Name)
	}
	cols := p.Projection(table, res)
	builder := sq.Select(quoteAll(cols)...).
		From(quoteIdent(table.Name)).
		Where(quotedEq(key))
	return finish(builder, cols)
}

// RelationBatch builds the fetch for one relation edge: all target rows
// whose join column matches any of the parent keys, in a single query.
func (p *Planner) RelationBatch(edge metadata.Relation, res selection.Result, keys []interface{}) (Query, error) {
	target, ok := p.schema.TableByName(edge.Target)
	if !ok {
		return Query{}, fmt.Errorf("relation %s.%s: unknown target table %s", edge.Table, edge.Field, edge.Target)
	}
	if len(keys) == 0 {
		return Query{}, fmt.Errorf("relation %s.%s: no parent keys", edge.Table, edge.Field)
	}

	cols := p.Projection(target, res)
	joinCol := edge.TargetColumn
	found := false
	for _, c := range cols {
		if c == joinCol {
			found = true
			break
		}
	}
	if !found {
		cols = append(cols, joinCol)
		sort.Strings(cols)
	}

	builder := sq.Select(quoteAll(cols)...).
		From(quoteIdent(target.Name)).
		Where(sq.Eq{quoteIdent(joinCol): keys})
	return finish(builder, cols)
}

// Insert builds an INSERT from column name to value.
func (p *Planner) Insert(table metadata.Table, values map[string]interface{}) (Query, error) {
	if len(values) == 0 {
		return Query{}, fmt.Errorf("table %s: insert with no values", table.Name)
	}
	builder := sq.Insert(quoteIdent(table.Name)).SetMap(quotedMap(values))
	return finish(builder, nil)
}

// Update builds an UPDATE of the given columns for one primary key.
func (p *Planner) Update(table metadata.Table, key, changes map[string]interface{}) (Query, error) {
	if len(changes) == 0 {
		return Query{}, fmt.Errorf("table %s: update with no changes", table.Name)
	}
	if len(key) == 0 {
		return Query{}, fmt.Errorf("table %s: update without key", table.Name)
	}
	builder := sq.Update(quoteIdent(table.Name)).
		SetMap(quotedMap(changes)).
		Where(quotedEq(key))
	return finish(builder, nil)
}

// Delete builds a DELETE for one primary key.
func (p *Planner) Delete(table metadata.Table, key map[string]interface{}) (Query, error) {
	if len(key) == 0 {
		return Query{}, fmt.Errorf("table %s: delete without key", table.Name)
	}
	builder := sq.Delete(quoteIdent(table.Name)).Where(quotedEq(key))
	return finish(builder, nil)
}

type sqlizer interface {
	ToSql() (string, []interface{}, error)
}

func finish(builder sqlizer, cols []string) (Query, error) {
	text, args, err := builder.ToSql()
	if err != nil {
		return Query{}, err
	}
	return Query{SQL: text, Args: args, Columns: cols}, nil
}

func quoteIdent(name string) string {
	return "`" + name + "`"
}

func quoteAll(names []string) []string {
	out := make([]string, len(names))
	for i, name := range names {
		out[i] = quoteIdent(name)
	}
	return out
}

func quotedEq(vals map[string]interface{}) sq.Eq {
	eq := make(sq.Eq, len(vals))
	for col, v := range vals {
		eq[quoteIdent(col)] = v
	}
	return eq
}

func quotedMap(vals map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(vals))
	for col, v := range vals {
		out[quoteIdent(col)] = v
	}
	return out
}
