package discovery

import (
	"strconv"

	"github.com/koustreak/pgdiscovery/internal/database"
)

// mysqlMaxRows is the documented "no limit" value for MySQL, which only
// accepts OFFSET as part of a LIMIT clause.
const mysqlMaxRows = "18446744073709551615"

// Paginate appends ORDER BY orderBy (when non-empty) and the OFFSET / LIMIT
// clauses requested by opts to sql. OFFSET is emitted whenever any paging
// option is set, LIMIT only when Limit is set. Both values are integers, so
// they are formatted inline rather than bound.
func Paginate(sql, orderBy string, opts *Options) string {
	if orderBy != "" {
		sql += " ORDER BY " + orderBy
	}
	if opts.paginated() {
		sql += " OFFSET " + strconv.Itoa(opts.StartOffset())
		if opts.Limit > 0 {
			sql += " LIMIT " + strconv.Itoa(opts.Limit)
		}
	}
	return sql
}

// paginateFor is Paginate in the clause order the dialect accepts.
func paginateFor(d database.Dialect, sql, orderBy string, opts *Options) string {
	if d != database.DialectMySQL {
		return Paginate(sql, orderBy, opts)
	}

	sql = Paginate(sql, orderBy, nil)
	if opts.paginated() {
		limit := mysqlMaxRows
		if opts.Limit > 0 {
			limit = strconv.Itoa(opts.Limit)
		}
		sql += " LIMIT " + limit + " OFFSET " + strconv.Itoa(opts.StartOffset())
	}
	return sql
}
