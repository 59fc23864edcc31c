package csvinfer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // registers the "sqlite" driver used by VerifyDDL
)

// RenderSQLite renders the columns of result as a SQLite CREATE TABLE statement.
// An empty tableName is derived from the source name, so "orders.csv.gz" becomes "orders".
// Columns that were never empty are declared NOT NULL.
func RenderSQLite(result *Result, tableName string) (string, error) {
	if result == nil {
		return "", errors.New("result cannot be nil")
	}
	if tableName == "" {
		tableName = tableNameFromPath(result.Source)
	}
	if tableName == "" {
		return "", fmt.Errorf("%w: table name cannot be empty", ErrInvalidConfig)
	}

	columns := make([]string, 0, len(result.Columns))
	for _, col := range result.Columns {
		def := fmt.Sprintf("  %s %s", quoteIdentifier(col.Name), col.Type.SQLiteType())
		if !col.Nullable {
			def += " NOT NULL"
		}
		columns = append(columns, def)
	}

	return fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (\n%s\n);\n",
		quoteIdentifier(tableName),
		strings.Join(columns, ",\n"),
	), nil
}

// VerifyDDL executes ddl against a throwaway in-memory SQLite database
func VerifyDDL(ctx context.Context, ddl string) (err error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return fmt.Errorf("failed to open in-memory database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("failed to close database: %w", closeErr))
		}
	}()

	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("%w: DDL rejected by SQLite: %w", ErrInvalidData, err)
	}
	return nil
}

// quoteIdentifier quotes a SQL identifier, doubling embedded quotes
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
