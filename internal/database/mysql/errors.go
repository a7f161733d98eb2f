package mysql

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/koustreak/pgdiscovery/internal/errs"
)

// MySQL error numbers relevant to read-only catalog access.
// Full list: https://dev.mysql.com/doc/mysql-errors/8.0/en/server-error-reference.html
const (
	errAccessDenied       = 1045
	errDBAccessDenied     = 1044
	errTableAccessDenied  = 1142
	errUnknownDatabase    = 1049
	errBadFieldError      = 1054
	errParseError         = 1064
	errNoSuchTable        = 1146
	errConnRefused        = 2003
	errServerGone         = 2006
	errMaxExecTimeExceeds = 3024
)

// mapError converts a MySQL driver error into an *errs.Error.
func mapError(err error, msg string) *errs.Error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	}

	if errors.Is(err, sql.ErrNoRows) {
		return errs.Wrap(errs.ErrKindNotFound, msg, err)
	}

	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, gomysql.ErrInvalidConn) {
		return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
	}

	var mysqlErr *gomysql.MySQLError
	if errors.As(err, &mysqlErr) {
		full := fmt.Sprintf("%s: %s", msg, mysqlErr.Message)
		switch mysqlErr.Number {
		case errAccessDenied, errDBAccessDenied, errTableAccessDenied:
			return errs.Wrap(errs.ErrKindPermissionDenied, full, err)
		case errConnRefused, errServerGone, errUnknownDatabase:
			return errs.Wrap(errs.ErrKindConnectionFailed, full, err)
		case errMaxExecTimeExceeds:
			return errs.Wrap(errs.ErrKindTimeout, full, err)
		case errBadFieldError, errParseError, errNoSuchTable:
			return errs.Wrap(errs.ErrKindQueryFailed, full, err)
		}
		return errs.Wrap(errs.ErrKindQueryFailed, full, err)
	}

	return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
}
