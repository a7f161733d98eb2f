package postgres

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/koustreak/pgdiscovery/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want errs.ErrKind
	}{
		{"deadline", context.DeadlineExceeded, errs.ErrKindTimeout},
		{"canceled wrapped", fmt.Errorf("acquire: %w", context.Canceled), errs.ErrKindTimeout},
		{"no rows", pgx.ErrNoRows, errs.ErrKindNotFound},
		{"syntax error", &pgconn.PgError{Code: "42601", Message: "syntax error"}, errs.ErrKindQueryFailed},
		{"undefined table", &pgconn.PgError{Code: pgErrUndefinedTable}, errs.ErrKindQueryFailed},
		{"connection class", &pgconn.PgError{Code: "08006"}, errs.ErrKindConnectionFailed},
		{"bad password", &pgconn.PgError{Code: "28P01"}, errs.ErrKindPermissionDenied},
		{"insufficient privilege", &pgconn.PgError{Code: pgErrInsufficientPriv}, errs.ErrKindPermissionDenied},
		{"statement timeout", &pgconn.PgError{Code: pgErrQueryCanceled}, errs.ErrKindTimeout},
		{"unknown database", &pgconn.PgError{Code: pgErrInvalidCatalogName}, errs.ErrKindConnectionFailed},
		{"dial failure", &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}, errs.ErrKindConnectionFailed},
		{"dropped connection", fmt.Errorf("read: %w", io.ErrUnexpectedEOF), errs.ErrKindConnectionFailed},
		{"scan type mismatch", pgx.ScanArgError{ColumnIndex: 4, Err: errors.New("cannot scan text into *int64")}, errs.ErrKindQueryFailed},
		{"unclassified driver error", errors.New("conn busy"), errs.ErrKindQueryFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError(tt.err, "query failed")
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Kind)
			assert.ErrorIs(t, got, tt.err)
		})
	}
}

func TestMapError_Nil(t *testing.T) {
	assert.Nil(t, mapError(nil, "ignored"))
}

func TestMapError_IncludesServerMessage(t *testing.T) {
	got := mapError(&pgconn.PgError{Code: "42703", Message: `column "x" does not exist`}, "list columns")
	assert.Contains(t, got.Message, `list columns: column "x" does not exist`)
}

func TestMapError_ScanFailureIsNotConnectionFailure(t *testing.T) {
	err := mapError(fmt.Errorf("row 3: %w", pgx.ScanArgError{ColumnIndex: 2, Err: errors.New("bad type")}), "failed to scan row")
	assert.True(t, errs.IsQueryFailed(err))
	assert.False(t, errs.IsConnectionFailed(err))
}
