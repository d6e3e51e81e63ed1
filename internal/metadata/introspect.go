package metadata

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"mysql-graphql/internal/naming"
)

// Queryer provides query access for schema introspection.
type Queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Introspect loads the table/relation model from MySQL's
// INFORMATION_SCHEMA. The namer resolves relation field names so edges
// carry their final GraphQL names.
func Introspect(ctx context.Context, db Queryer, databaseName string, namer *naming.Namer) (*Schema, error) {
	if namer == nil {
		namer = naming.Default()
	}

	schema := &Schema{}

	tableNames, err := getTables(ctx, db, databaseName)
	if err != nil {
		return nil, fmt.Errorf("failed to get tables: %w", err)
	}

	for _, info := range tableNames {
		columns, err := getColumns(ctx, db, databaseName, info.name)
		if err != nil {
			return nil, fmt.Errorf("failed to get columns for %s: %w", info.name, err)
		}

		primaryKeys, err := getPrimaryKeys(ctx, db, databaseName, info.name)
		if err != nil {
			return nil, fmt.Errorf("failed to get primary keys for %s: %w", info.name, err)
		}
		for i := range columns {
			for _, pk := range primaryKeys {
				if columns[i].Name == pk {
					columns[i].IsPrimaryKey = true
					break
				}
			}
		}

		schema.Tables = append(schema.Tables, Table{
			Name:    info.name,
			Comment: info.comment,
			Columns: columns,
		})
	}

	if err := buildRelations(ctx, db, databaseName, schema, namer); err != nil {
		return nil, fmt.Errorf("failed to build relations: %w", err)
	}

	return schema, nil
}

type tableInfo struct {
	name    string
	comment string
}

func getTables(ctx context.Context, db Queryer, databaseName string) ([]tableInfo, error) {
	query := `
		SELECT TABLE_NAME, TABLE_COMMENT
		FROM INFORMATION_SCHEMA.TABLES
		WHERE TABLE_SCHEMA = ?
		AND TABLE_TYPE = 'BASE TABLE'
		ORDER BY TABLE_NAME
	`

	rows, err := db.QueryContext(ctx, query, databaseName)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var tables []tableInfo
	for rows.Next() {
		var name string
		var comment sql.NullString
		if err := rows.Scan(&name, &comment); err != nil {
			return nil, err
		}
		tables = append(tables, tableInfo{
			name:    name,
			comment: strings.TrimSpace(comment.String),
		})
	}
	return tables, rows.Err()
}

func getColumns(ctx context.Context, db Queryer, databaseName, tableName string) ([]Column, error) {
	query := `
		SELECT
			COLUMN_NAME,
			DATA_TYPE,
			COLUMN_TYPE,
			COLUMN_COMMENT,
			IS_NULLABLE,
			COLUMN_DEFAULT,
			EXTRA
		FROM INFORMATION_SCHEMA.COLUMNS
		WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
		ORDER BY ORDINAL_POSITION
	`

	rows, err := db.QueryContext(ctx, query, databaseName, tableName)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var columns []Column
	for rows.Next() {
		var col Column
		var dataType, columnType, isNullable, extra string
		var comment, columnDefault sql.NullString
		if err := rows.Scan(&col.Name, &dataType, &columnType, &comment, &isNullable, &columnDefault, &extra); err != nil {
			return nil, err
		}
		col.Table = tableName
		col.Kind, col.Subtype = Classify(dataType, columnType)
		col.Comment = strings.TrimSpace(comment.String)
		col.Nullable = strings.EqualFold(isNullable, "YES")
		col.HasDefault = columnDefault.Valid

		extraLower := strings.ToLower(extra)
		col.HasGeneratedDefault = strings.Contains(extraLower, "auto_increment") ||
			strings.Contains(extraLower, "default_generated")

		switch strings.ToLower(dataType) {
		case "enum":
			values, err := ParseEnumValues(columnType)
			if err != nil {
				slog.Default().Warn("failed to parse enum values",
					slog.String("table", tableName),
					slog.String("column", col.Name),
					slog.String("error", err.Error()))
			} else {
				col.EnumValues = values
			}
		case "set":
			values, err := ParseSetValues(columnType)
			if err != nil {
				slog.Default().Warn("failed to parse set values",
					slog.String("table", tableName),
					slog.String("column", col.Name),
					slog.String("error", err.Error()))
			} else {
				col.EnumValues = values
			}
		}

		columns = append(columns, col)
	}
	return columns, rows.Err()
}

func getPrimaryKeys(ctx context.Context, db Queryer, databaseName, tableName string) ([]string, error) {
	query := `
		SELECT COLUMN_NAME
		FROM INFORMATION_SCHEMA.KEY_COLUMN_USAGE
		WHERE TABLE_SCHEMA = ?
		AND TABLE_NAME = ?
		AND CONSTRAINT_NAME = 'PRIMARY'
		ORDER BY ORDINAL_POSITION
	`

	rows, err := db.QueryContext(ctx, query, databaseName, tableName)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var primaryKeys []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		primaryKeys = append(primaryKeys, name)
	}
	return primaryKeys, rows.Err()
}

type foreignKey struct {
	table            string
	column           string
	referencedTable  string
	referencedColumn string
}

func getForeignKeys(ctx context.Context, db Queryer, databaseName string) ([]foreignKey, error) {
	query := `
		SELECT TABLE_NAME, COLUMN_NAME, REFERENCED_TABLE_NAME, REFERENCED_COLUMN_NAME
		FROM INFORMATION_SCHEMA.KEY_COLUMN_USAGE
		WHERE TABLE_SCHEMA = ?
			AND REFERENCED_TABLE_NAME IS NOT NULL
		ORDER BY TABLE_NAME, CONSTRAINT_NAME, ORDINAL_POSITION
	`

	rows, err := db.QueryContext(ctx, query, databaseName)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var fks []foreignKey
	for rows.Next() {
		var fk foreignKey
		if err := rows.Scan(&fk.table, &fk.column, &fk.referencedTable, &fk.referencedColumn); err != nil {
			return nil, err
		}
		fks = append(fks, fk)
	}
	return fks, rows.Err()
}

// buildRelations derives directed relation edges from foreign keys. Each FK
// produces a many-to-one edge on the owning table and a one-to-many edge on
// the referenced table; cycles fall out naturally and are fine because the
// synthesizer resolves relation types by name.
func buildRelations(ctx context.Context, db Queryer, databaseName string, schema *Schema, namer *naming.Namer) error {
	fks, err := getForeignKeys(ctx, db, databaseName)
	if err != nil {
		return err
	}

	tableByName := make(map[string]*Table, len(schema.Tables))
	for i := range schema.Tables {
		tableByName[schema.Tables[i].Name] = &schema.Tables[i]
	}

	// Count FKs per (owner, target) pair so reverse edges from a table
	// with several FKs to the same target get distinct field names.
	fkCount := make(map[string]map[string]int)
	for _, fk := range fks {
		if fkCount[fk.table] == nil {
			fkCount[fk.table] = make(map[string]int)
		}
		fkCount[fk.table][fk.referencedTable]++
	}

	for _, fk := range fks {
		owner, ok := tableByName[fk.table]
		if !ok {
			continue
		}
		target, ok := tableByName[fk.referencedTable]
		if !ok {
			slog.Default().Warn("foreign key references unknown table",
				slog.String("table", fk.table),
				slog.String("column", fk.column),
				slog.String("referenced", fk.referencedTable))
			continue
		}

		owner.Relations = append(owner.Relations, Relation{
			Table:        owner.Name,
			Target:       target.Name,
			Field:        namer.ManyToOneFieldName(fk.column),
			HasMany:      false,
			LocalColumn:  fk.column,
			TargetColumn: fk.referencedColumn,
		})
		isOnlyFK := fkCount[fk.table][fk.referencedTable] == 1
		target.Relations = append(target.Relations, Relation{
			Table:        target.Name,
			Target:       owner.Name,
			Field:        namer.OneToManyFieldName(owner.Name, fk.column, isOnlyFK),
			HasMany:      true,
			LocalColumn:  fk.referencedColumn,
			TargetColumn: fk.column,
		})
	}
	return nil
}
