package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/koustreak/pgdiscovery/internal/errs"
)

// ServerInfo identifies the catalog session a DB runs as.
type ServerInfo struct {
	Dialect string `json:"dialect" yaml:"dialect"`
	Version string `json:"version" yaml:"version"`
	User    string `json:"user" yaml:"user"`
	Schema  string `json:"schema" yaml:"schema"`
}

var infoColumns = []string{"version", "user", "schema"}

func infoQuery(d Dialect) string {
	if d == DialectMySQL {
		return "SELECT VERSION(), CURRENT_USER(), DATABASE()"
	}
	return "SELECT version(), current_user::text, current_schema()::text"
}

// Info reports the server version, session user and current schema of db.
// Schema is empty when the session has none selected.
func Info(ctx context.Context, db DB) (*ServerInfo, error) {
	row, err := db.QueryRow(ctx, infoQuery(db.Dialect()))
	if err != nil {
		return nil, err
	}

	vals, err := ScanRow(row, infoColumns)
	if err != nil {
		return nil, err
	}

	return &ServerInfo{
		Dialect: db.Dialect().String(),
		Version: asString(vals["version"]),
		User:    asString(vals["user"]),
		Schema:  asString(vals["schema"]),
	}, nil
}

// ScanRow reads a single row and returns it as a map keyed by columns.
// Errors already classified by the driver are returned unchanged.
func ScanRow(row Row, columns []string) (map[string]any, error) {
	dest := make([]any, len(columns))
	destPtrs := make([]any, len(columns))
	for i := range dest {
		destPtrs[i] = &dest[i]
	}

	if err := row.Scan(destPtrs...); err != nil {
		var e *errs.Error
		if errors.As(err, &e) {
			return nil, err
		}
		return nil, errs.Wrap(errs.ErrKindQueryFailed, "failed to scan single row", err)
	}

	result := make(map[string]any, len(columns))
	for i, col := range columns {
		result[col] = dest[i]
	}
	return result, nil
}

// asString normalises a scanned value; database/sql returns text as []byte
// when scanning into *any.
func asString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case []byte:
		return string(s)
	default:
		return fmt.Sprint(s)
	}
}
