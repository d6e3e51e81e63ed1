package resolver

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/graphql-go/graphql"

	"mysql-graphql/internal/metadata"
	"mysql-graphql/internal/selection"
)

func (r *Resolver) addTableMutations(fields graphql.Fields, table metadata.Table) error {
	createInput, err := r.synth.CreateInput(table)
	if err != nil {
		return err
	}
	fields[r.namer.MutationName("create", table.Name)] = &graphql.Field{
		Type: r.synth.ItemType(table),
		Args: graphql.FieldConfigArgument{
			"input": {Type: graphql.NewNonNull(createInput)},
		},
		Description: fmt.Sprintf("Insert one row into the %s table.", table.Name),
		Resolve:     r.resolveCreate(table),
	}

	// Update and delete address rows by primary key; keyless tables only
	// get create.
	pkCols := metadata.PrimaryKeyColumns(table)
	if len(pkCols) == 0 {
		return nil
	}

	updateInput, err := r.synth.UpdateInput(table)
	if err != nil {
		return err
	}
	updateArgs, err := r.primaryKeyArgs(table, pkCols)
	if err != nil {
		return err
	}
	updateArgs["input"] = &graphql.ArgumentConfig{Type: graphql.NewNonNull(updateInput)}
	fields[r.namer.MutationName("update", table.Name)] = &graphql.Field{
		Type:        r.synth.ItemType(table),
		Args:        updateArgs,
		Description: fmt.Sprintf("Update one %s row by primary key.", table.Name),
		Resolve:     r.resolveUpdate(table, pkCols),
	}

	deletePayload, err := r.synth.DeletePayload(table)
	if err != nil {
		return err
	}
	deleteArgs, err := r.primaryKeyArgs(table, pkCols)
	if err != nil {
		return err
	}
	fields[r.namer.MutationName("delete", table.Name)] = &graphql.Field{
		Type:        deletePayload,
		Args:        deleteArgs,
		Description: fmt.Sprintf("Delete one %s row by primary key.", table.Name),
		Resolve:     r.resolveDelete(table, pkCols),
	}
	return nil
}

func (r *Resolver) resolveCreate(table metadata.Table) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		input, ok := p.Args["input"].(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("table %s: missing input", table.Name)
		}
		values, err := r.columnValues(table, input)
		if err != nil {
			return nil, err
		}

		query, err := r.planner.Insert(table, values)
		if err != nil {
			return nil, err
		}
		result, err := r.executor.ExecContext(p.Context, query.SQL, query.Args...)
		if err != nil {
			r.logger.Error("insert failed", "table", table.Name, "error", err)
			return nil, fmt.Errorf("table %s: insert failed: %w", table.Name, err)
		}

		key := r.insertedKey(table, values, result)
		if len(key) == 0 {
			// Row is in but cannot be re-read without a key. Echo the
			// provided values so the client still sees what it wrote.
			return r.echoInput(table, values), nil
		}
		return r.fetchByKey(p, table, key)
	}
}

func (r *Resolver) resolveUpdate(table metadata.Table, pkCols []metadata.Column) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		input, ok := p.Args["input"].(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("table %s: missing input", table.Name)
		}
		key, err := r.primaryKeyValues(table, pkCols, p.Args)
		if err != nil {
			return nil, err
		}
		changes, err := r.columnValues(table, input)
		if err != nil {
			return nil, err
		}
		if len(changes) == 0 {
			return nil, fmt.Errorf("table %s: update with no changes", table.Name)
		}

		query, err := r.planner.Update(table, key, changes)
		if err != nil {
			return nil, err
		}
		if _, err := r.executor.ExecContext(p.Context, query.SQL, query.Args...); err != nil {
			r.logger.Error("update failed", "table", table.Name, "error", err)
			return nil, fmt.Errorf("table %s: update failed: %w", table.Name, err)
		}
		return r.fetchByKey(p, table, key)
	}
}

func (r *Resolver) resolveDelete(table metadata.Table, pkCols []metadata.Column) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		key, err := r.primaryKeyValues(table, pkCols, p.Args)
		if err != nil {
			return nil, err
		}

		query, err := r.planner.Delete(table, key)
		if err != nil {
			return nil, err
		}
		result, err := r.executor.ExecContext(p.Context, query.SQL, query.Args...)
		if err != nil {
			r.logger.Error("delete failed", "table", table.Name, "error", err)
			return nil, fmt.Errorf("table %s: delete failed: %w", table.Name, err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			affected = 0
		}
		payload := map[string]interface{}{"deletedCount": int(affected)}
		for col, value := range key {
			payload[r.namer.FieldName(col)] = value
		}
		return payload, nil
	}
}

// columnValues translates an input object keyed by GraphQL field names
// into a map keyed by column names, rejecting unknown fields.
func (r *Resolver) columnValues(table metadata.Table, input map[string]interface{}) (map[string]interface{}, error) {
	byField := make(map[string]metadata.Column, len(table.Columns))
	for _, col := range table.Columns {
		byField[r.namer.FieldName(col.Name)] = col
	}

	values := make(map[string]interface{}, len(input))
	for field, value := range input {
		col, ok := byField[field]
		if !ok {
			return nil, fmt.Errorf("table %s: unknown input field %s", table.Name, field)
		}
		values[col.Name] = storageValue(col, value)
	}
	return values, nil
}

// storageValue converts GraphQL input shapes back to the driver's storage
// form. SET columns arrive as member lists and persist comma-joined.
func storageValue(col metadata.Column, value interface{}) interface{} {
	if col.Subtype != "set" || len(col.EnumValues) == 0 {
		return value
	}
	members, ok := value.([]interface{})
	if !ok {
		return value
	}
	parts := make([]string, 0, len(members))
	for _, member := range members {
		parts = append(parts, fmt.Sprint(member))
	}
	return strings.Join(parts, ",")
}

// insertedKey reconstructs the new row's primary key: values supplied in
// the input win, and a single un-supplied integer key falls back to the
// driver's LastInsertId.
func (r *Resolver) insertedKey(table metadata.Table, values map[string]interface{}, result sql.Result) map[string]interface{} {
	pkCols := metadata.PrimaryKeyColumns(table)
	if len(pkCols) == 0 {
		return nil
	}

	key := make(map[string]interface{}, len(pkCols))
	var missing []metadata.Column
	for _, col := range pkCols {
		if v, ok := values[col.Name]; ok && v != nil {
			key[col.Name] = v
		} else {
			missing = append(missing, col)
		}
	}

	if len(missing) == 1 && missing[0].HasGeneratedDefault {
		if id, err := result.LastInsertId(); err == nil && id > 0 {
			key[missing[0].Name] = id
			return key
		}
	}
	if len(missing) > 0 {
		return nil
	}
	return key
}

// echoInput maps written column values back to field names for the rare
// keyless-insert response.
func (r *Resolver) echoInput(table metadata.Table, values map[string]interface{}) map[string]interface{} {
	row := make(map[string]interface{}, len(values))
	for col, value := range values {
		row[r.namer.FieldName(col)] = value
	}
	return row
}

func (r *Resolver) fetchByKey(p graphql.ResolveParams, table metadata.Table, key map[string]interface{}) (interface{}, error) {
	node := selection.FromField(firstFieldAST(p), p.Info.Fragments)
	res := selection.Extract(node, r.synth.Shape(table))

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
