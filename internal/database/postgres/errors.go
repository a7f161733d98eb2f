package postgres

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/koustreak/pgdiscovery/internal/errs"
)

// PostgreSQL SQLSTATE codes that get a kind other than query_failed.
// Full list: https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	pgClassConnection       = "08"
	pgClassInvalidAuth      = "28"
	pgErrInsufficientPriv   = "42501"
	pgErrQueryCanceled      = "57014"
	pgErrAdminShutdown      = "57P01"
	pgErrCannotConnectNow   = "57P03"
	pgErrUndefinedTable     = "42P01"
	pgErrInvalidSchemaName  = "3F000"
	pgErrInvalidCatalogName = "3D000"
)

// mapError translates pgx / pgconn native errors into *errs.Error.
func mapError(err error, msg string) *errs.Error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return errs.Wrap(errs.ErrKindNotFound, msg, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return errs.Wrap(kindForCode(pgErr.Code), fmt.Sprintf("%s: %s", msg, pgErr.Message), err)
	}

	var scanErr pgx.ScanArgError
	if errors.As(err, &scanErr) {
		return errs.Wrap(errs.ErrKindQueryFailed, msg, err)
	}

	// connection-level errors (TLS, network, dial, dropped socket)
	var connErr *pgconn.ConnectError
	var netErr net.Error
	if errors.As(err, &connErr) || errors.As(err, &netErr) ||
		errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
	}

	return errs.Wrap(errs.ErrKindQueryFailed, msg, err)
}

func kindForCode(code string) errs.ErrKind {
	switch code {
	case pgErrInsufficientPriv:
		return errs.ErrKindPermissionDenied
	case pgErrQueryCanceled:
		return errs.ErrKindTimeout
	case pgErrAdminShutdown, pgErrCannotConnectNow, pgErrInvalidCatalogName:
		return errs.ErrKindConnectionFailed
	case pgErrUndefinedTable, pgErrInvalidSchemaName:
		return errs.ErrKindQueryFailed
	}
	if len(code) >= 2 {
		switch code[:2] {
		case pgClassConnection:
			return errs.ErrKindConnectionFailed
		case pgClassInvalidAuth:
			return errs.ErrKindPermissionDenied
		}
	}
	return errs.ErrKindQueryFailed
}
