package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/BartekS5/fieldmap/pkg/models"
)

var ErrTableNotFound = errors.New("table not found or has no columns")

const columnsQuery = `
SELECT COLUMN_NAME, DATA_TYPE, CHARACTER_MAXIMUM_LENGTH, NUMERIC_PRECISION, NUMERIC_SCALE
FROM INFORMATION_SCHEMA.COLUMNS
WHERE TABLE_SCHEMA = @p1 AND TABLE_NAME = @p2
ORDER BY ORDINAL_POSITION`

// LoadTableSchema reads the columns of a SQL Server table, in column order.
// table may be "name" (schema dbo) or "schema.name".
func LoadTableSchema(ctx context.Context, db *sql.DB, table string) (models.Schema, error) {
	schemaName, tableName := SplitTableName(table)

	rows, err := db.QueryContext(ctx, columnsQuery, schemaName, tableName)
	if err != nil {
		return models.Schema{}, fmt.Errorf("failed to read columns of %s: %w", table, err)
	}
	defer rows.Close()

	var fields []models.Field
	for rows.Next() {
		var (
			name, dataType   string
			length           sql.NullInt64
			precision, scale sql.NullInt64
		)
		if err := rows.Scan(&name, &dataType, &length, &precision, &scale); err != nil {
			return models.Schema{}, fmt.Errorf("failed to scan column of %s: %w", table, err)
		}
		fields = append(fields, models.Field{Name: name, Type: TypeTag(dataType, length, precision, scale)})
	}
	if err := rows.Err(); err != nil {
		return models.Schema{}, err
	}
	if len(fields) == 0 {
		return models.Schema{}, fmt.Errorf("%s: %w", table, ErrTableNotFound)
	}
	return models.NewSchema(fields...), nil
}

// SplitTableName splits "schema.table", defaulting the schema to dbo.
// Square brackets around either part are removed.
func SplitTableName(table string) (schema, name string) {
	schema, name = "dbo", table
	if i := strings.Index(table, "."); i >= 0 {
		schema, name = table[:i], table[i+1:]
	}
	return unbracket(schema), unbracket(name)
}

func unbracket(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		return s[1 : len(s)-1]
	}
	return s
}

// TypeTag renders a column type the way it is written in DDL, e.g.
// nvarchar(50), nvarchar(max), decimal(10,2).
func TypeTag(dataType string, length, precision, scale sql.NullInt64) string {
	switch strings.ToLower(dataType) {
	case "char", "nchar", "varchar", "nvarchar", "binary", "varbinary":
		if !length.Valid {
			return dataType
		}
		if length.Int64 == -1 {
			return dataType + "(max)"
		}
		return fmt.Sprintf("%s(%d)", dataType, length.Int64)
	case "decimal", "numeric":
		if precision.Valid && scale.Valid {
			return fmt.Sprintf("%s(%d,%d)", dataType, precision.Int64, scale.Int64)
		}
	}
	return dataType
}
