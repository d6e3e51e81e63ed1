// Package resolver assembles the executable GraphQL schema: root query
// and mutation fields for every table, wired to the synthesized type
// graph, the selection extractor, the SQL planner, and an executor.
package resolver

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"

	"mysql-graphql/internal/dbexec"
	"mysql-graphql/internal/metadata"
	"mysql-graphql/internal/naming"
	"mysql-graphql/internal/planner"
	"mysql-graphql/internal/selection"
	"mysql-graphql/internal/synth"
	"mysql-graphql/internal/typemap"
)

// DefaultListLimit applies when a list query supplies no limit argument.
const DefaultListLimit = 100

// ArgRewriter is an optional hook that can adjust a root field's
// arguments before planning, e.g. to inject tenancy constraints.
type ArgRewriter func(table metadata.Table, args map[string]interface{}) map[string]interface{}

// Options configures schema assembly.
type Options struct {
	Naming        naming.Config
	TypeOverrides map[string]typemap.Override
	DefaultLimit  int
	MaxLimit      int
	RewriteArgs   ArgRewriter
	Logger        *slog.Logger
}

// Resolver builds and serves one GraphQL schema over one database schema.
type Resolver struct {
	executor     dbexec.QueryExecutor
	dbSchema     *metadata.Schema
	namer        *naming.Namer
	synth        *synth.Synthesizer
	planner      *planner.Planner
	defaultLimit int
	maxLimit     int
	rewriteArgs  ArgRewriter
	logger       *slog.Logger
}

// New creates a resolver over an introspected schema. The executor
// handles SQL execution; tests can supply a sqlmock-backed one.
func New(executor dbexec.QueryExecutor, dbSchema *metadata.Schema, opts Options) *Resolver {
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = DefaultListLimit
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	namer := naming.New(opts.Naming)
	mapper := typemap.New(namer, opts.TypeOverrides)

	r := &Resolver{
		executor:     executor,
		dbSchema:     dbSchema,
		namer:        namer,
		planner:      planner.New(dbSchema),
		defaultLimit: opts.DefaultLimit,
		maxLimit:     opts.MaxLimit,
		rewriteArgs:  opts.RewriteArgs,
		logger:       opts.Logger,
	}
	r.synth = synth.New(dbSchema, namer, mapper, r.relationResolver)
	return r
}

// BuildGraphQLSchema constructs the executable schema: all table types,
// list and by-primary-key queries, and create/update/delete mutations.
func (r *Resolver) BuildGraphQLSchema() (graphql.Schema, error) {
	if err := r.synth.Build(); err != nil {
		return graphql.Schema{}, err
	}

	queryFields := graphql.Fields{}
	for _, table := range r.dbSchema.Tables {
		if err := r.addTableQueries(queryFields, table); err != nil {
			return graphql.Schema{}, err
		}
	}

	// GraphQL requires at least one query field.
	if len(queryFields) == 0 {
		queryFields["_schema"] = &graphql.Field{
			Type:        graphql.String,
			Description: "Placeholder field when the database has no tables",
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return "No tables found in database", nil
			},
		}
	}

	schemaConfig := graphql.SchemaConfig{
		Query: graphql.NewObject(graphql.ObjectConfig{
			Name:   "Query",
			Fields: queryFields,
		}),
	}

	mutationFields := graphql.Fields{}
	for _, table := range r.dbSchema.Tables {
		if err := r.addTableMutations(mutationFields, table); err != nil {
			return graphql.Schema{}, err
		}
	}
	if len(mutationFields) > 0 {
		schemaConfig.Mutation = graphql.NewObject(graphql.ObjectConfig{
			Name:   "Mutation",
			Fields: mutationFields,
		})
	}

	return graphql.NewSchema(schemaConfig)
}

func (r *Resolver) addTableQueries(fields graphql.Fields, table metadata.Table) error {
	selectItem := r.synth.SelectItemType(table)

	fields[r.namer.ListQueryName(table.Name)] = &graphql.Field{
		Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(selectItem))),
		Args: graphql.FieldConfigArgument{
			"limit":  {Type: graphql.Int, Description: "maximum rows to return"},
			"offset": {Type: graphql.Int, Description: "rows to skip"},
		},
		Description: fmt.Sprintf("List rows from the %s table.", table.Name),
		Resolve:     r.resolveList(table),
	}

	pkCols := metadata.PrimaryKeyColumns(table)
	if len(pkCols) == 0 {
		return nil
	}
	args, err := r.primaryKeyArgs(table, pkCols)
	if err != nil {
		return err
	}
	fields[r.namer.SingleQueryName(table.Name)] = &graphql.Field{
		Type:        selectItem,
		Args:        args,
		Description: fmt.Sprintf("Fetch one %s row by primary key.", table.Name),
		Resolve:     r.resolveSingle(table, pkCols),
	}
	return nil
}

// primaryKeyArgs maps a table's primary key columns to required field
// arguments.
func (r *Resolver) primaryKeyArgs(table metadata.Table, pkCols []metadata.Column) (graphql.FieldConfigArgument, error) {
	args := graphql.FieldConfigArgument{}
	for _, col := range pkCols {
		mapped, err := r.synth.MapColumn(col, typemap.Options{})
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", table.Name, err)
		}
		input := mapped.Input
		if _, ok := input.(*graphql.NonNull); !ok {
			input = graphql.NewNonNull(input)
		}
		args[r.namer.FieldName(col.Name)] = &graphql.ArgumentConfig{Type: input}
	}
	return args, nil
}

func (r *Resolver) resolveList(table metadata.Table) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		res := r.extractSelection(p, table)
		args := r.arguments(table, p)

		listArgs := planner.ListArgs{Limit: r.defaultLimit}
		if v, ok := args["limit"].(int); ok && v > 0 {
			listArgs.Limit = v
		}
		if r.maxLimit > 0 && listArgs.Limit > r.maxLimit {
			listArgs.Limit = r.maxLimit
		}
		if v, ok := args["offset"].(int); ok && v > 0 {
			listArgs.Offset = v
		}

		query, err := r.planner.Select(table, res, listArgs)
		if err != nil {
			return nil, err
		}
		return r.fetchRows(p, table, query)
	}
}

func (r *Resolver) resolveSingle(table metadata.Table, pkCols []metadata.Column) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		res := r.extractSelection(p, table)
		args := r.arguments(table, p)

		key, err := r.primaryKeyValues(table, pkCols, args)
		if err != nil {
			return nil, err
		}
		query, err := r.planner.SelectByKey(table, res, key)
		if err != nil {
			return nil, err
		}
		rows, err := r.fetchRows(p, table, query)
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			return nil, nil
		}
		return rows[0], nil
	}
}

// relationResolver fetches the rows behind one relation edge. The parent
// row map carries the edge's local join value under its GraphQL field
// name.
func (r *Resolver) relationResolver(edge metadata.Relation) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		parent, ok := p.Source.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("relation %s.%s: unexpected parent type %T", edge.Table, edge.Field, p.Source)
		}
		localValue := parent[r.namer.FieldName(edge.LocalColumn)]
		if localValue == nil {
			if edge.HasMany {
				return []map[string]interface{}{}, nil
			}
			return nil, nil
		}

		target, ok := r.dbSchema.TableByName(edge.Target)
		if !ok {
			return nil, fmt.Errorf("relation %s.%s: unknown target table %s", edge.Table, edge.Field, edge.Target)
		}
		res := r.extractSelection(p, target)

		query, err := r.planner.RelationBatch(edge, res, []interface{}{localValue})
		if err != nil {
			return nil, err
		}
		rows, err := r.fetchRows(p, target, query)
		if err != nil {
			return nil, err
		}
		if edge.HasMany {
			return rows, nil
		}
		if len(rows) == 0 {
			return nil, nil
		}
		return rows[0], nil
	}
}

// extractSelection resolves the request's field AST, fragments included,
// against the table's type shape.
func (r *Resolver) extractSelection(p graphql.ResolveParams, table metadata.Table) selection.Result {
	node := selection.FromField(firstFieldAST(p), p.Info.Fragments)
	return selection.Extract(node, r.synth.Shape(table))
}

func (r *Resolver) arguments(table metadata.Table, p graphql.ResolveParams) map[string]interface{} {
	if r.rewriteArgs == nil {
		return p.Args
	}
	return r.rewriteArgs(table, p.Args)
}

// primaryKeyValues collects the key columns' argument values, erroring on
// any missing component.
func (r *Resolver) primaryKeyValues(table metadata.Table, pkCols []metadata.Column, args map[string]interface{}) (map[string]interface{}, error) {
	key := make(map[string]interface{}, len(pkCols))
	for _, col := range pkCols {
		fieldName := r.namer.FieldName(col.Name)
		value, ok := args[fieldName]
		if !ok || value == nil {
			return nil, fmt.Errorf("table %s: missing primary key argument %s", table.Name, fieldName)
		}
		key[col.Name] = value
	}
	return key, nil
}

func (r *Resolver) fetchRows(p graphql.ResolveParams, table metadata.Table, query planner.Query) ([]map[string]interface{}, error) {
	rows, err := r.executor.QueryContext(p.Context, query.SQL, query.Args...)
	if err != nil {
		r.logger.Error("query failed", "table", table.Name, "error", err)
		return nil, fmt.Errorf("table %s: query failed: %w", table.Name, err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil && cerr != sql.ErrConnDone {
			r.logger.Warn("closing rows", "table", table.Name, "error", cerr)
		}
	}()

	return dbexec.ScanRows(rows, query.Columns, r.namer.FieldName)
}

func firstFieldAST(p graphql.ResolveParams) *ast.Field {
	if len(p.Info.FieldASTs) == 0 {
		return nil
	}
	return p.Info.FieldASTs[0]
}
