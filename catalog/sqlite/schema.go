package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/sagarc03/docsgate"
)

type columnInfo struct {
	name       string
	dataType   string
	isNullable bool
}

var objectsTableSchema = map[string]columnInfo{
	"id":           {"id", "text", false},
	"path":         {"path", "text", false},
	"content_type": {"content_type", "text", false},
	"etag":         {"etag", "text", false},
	"size_bytes":   {"size_bytes", "integer", false},
	"modified_at":  {"modified_at", "text", false},
	"indexed_at":   {"indexed_at", "text", false},
}

// ValidateSchema checks that the catalog tables exist with the expected columns.
func ValidateSchema(ctx context.Context, db *sql.DB, tables docsgate.Tables) error {
	if err := validateTableSchema(ctx, db, tables.Objects, objectsTableSchema); err != nil {
		return fmt.Errorf("validate schema %s: %w", tables.Objects, err)
	}
	return nil
}

func validateTableSchema(ctx context.Context, db *sql.DB, tableName string, expectedSchema map[string]columnInfo) error {
	if !docsgate.IsValidTableName(tableName) {
		return fmt.Errorf("validate table schema: invalid table name: %s", tableName)
	}

	exists, err := tableExists(ctx, db, tableName)
	if err != nil {
		return fmt.Errorf("validate table schema: %w", err)
	}

	if !exists {
		return fmt.Errorf("validate table schema: table %s does not exist", tableName)
	}

	// SQLite uses PRAGMA table_info to get column information
	query := fmt.Sprintf(`PRAGMA table_info(%s)`, quoteIdentifier(tableName))

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("validate table schema: query columns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	actualColumns := make(map[string]columnInfo)
	for rows.Next() {
		var cid int
		var name, dataType string
		var notNull int
		var dfltValue sql.NullString
		var pk int

		if err := rows.Scan(&cid, &name, &dataType, &notNull, &dfltValue, &pk); err != nil {
			return fmt.Errorf("validate table schema: scan column: %w", err)
		}
		actualColumns[name] = columnInfo{
			name:       name,
			dataType:   strings.ToLower(dataType),
			isNullable: notNull == 0,
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("validate table schema: rows error: %w", err)
	}

	var problems []string
	for colName, expected := range expectedSchema {
		actual, ok := actualColumns[colName]
		switch {
		case !ok:
			problems = append(problems, fmt.Sprintf("missing column %s", colName))
		case actual.dataType != expected.dataType:
			problems = append(problems, fmt.Sprintf("%s: expected %s, got %s", colName, expected.dataType, actual.dataType))
		case actual.isNullable != expected.isNullable:
			problems = append(problems, fmt.Sprintf("%s: expected nullable=%v, got nullable=%v", colName, expected.isNullable, actual.isNullable))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("table %s schema validation failed: %s", tableName, strings.Join(problems, "; "))
	}

	return nil
}

func tableExists(ctx context.Context, db *sql.DB, tableName string) (bool, error) {
	var name string
	query := `SELECT name FROM sqlite_master WHERE type='table' AND name=?`
	err := db.QueryRowContext(ctx, query, tableName).Scan(&name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check table exists: %w", err)
	}
	return true, nil
}
