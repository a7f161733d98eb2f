package discovery

import (
	"context"
	"fmt"
	"sync"

	"github.com/koustreak/pgdiscovery/internal/database"
)

// fakeDB is an in-memory database.DB. respond decides the rows (or error)
// for each statement; every statement is recorded.
type fakeDB struct {
	dialect database.Dialect
	respond func(sql string, args []any) ([][]any, error)

	mu      sync.Mutex
	queries []Query
}

func newFakeDB(d database.Dialect, respond func(sql string, args []any) ([][]any, error)) *fakeDB {
	return &fakeDB{dialect: d, respond: respond}
}

func (f *fakeDB) Ping(context.Context) error { return nil }
func (f *fakeDB) Close()                     {}

func (f *fakeDB) Dialect() database.Dialect { return f.dialect }

func (f *fakeDB) Query(_ context.Context, sql string, args ...any) (database.Rows, error) {
	f.mu.Lock()
	f.queries = append(f.queries, Query{SQL: sql, Args: args})
	f.mu.Unlock()

	data, err := f.respond(sql, args)
	if err != nil {
		return nil, err
	}
	return &fakeRows{data: data, idx: -1}, nil
}

func (f *fakeDB) QueryRow(ctx context.Context, sql string, args ...any) (database.Row, error) {
	return nil, fmt.Errorf("QueryRow not supported by fakeDB")
}

func (f *fakeDB) recorded() []Query {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Query(nil), f.queries...)
}

type fakeRows struct {
	data    [][]any
	idx     int
	iterErr error
}

func (r *fakeRows) Next() bool {
	r.idx++
	return r.idx < len(r.data)
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.data[r.idx]
	if len(dest) != len(row) {
		return fmt.Errorf("scan: %d destinations for %d columns", len(dest), len(row))
	}
	for i := range dest {
		if err := assign(dest[i], row[i]); err != nil {
			return fmt.Errorf("scan column %d: %w", i, err)
		}
	}
	return nil
}

func (r *fakeRows) Columns() ([]string, error) { return nil, nil }
func (r *fakeRows) Close()                     {}
func (r *fakeRows) Err() error                 { return r.iterErr }

func assign(dst, src any) error {
	switch d := dst.(type) {
	case *string:
		s, ok := src.(string)
		if !ok {
			return fmt.Errorf("cannot scan %T into *string", src)
		}
		*d = s
	case *int:
		n, ok := src.(int)
		if !ok {
			return fmt.Errorf("cannot scan %T into *int", src)
		}
		*d = n
	case **int64:
		if src == nil {
			*d = nil
			return nil
		}
		n, ok := src.(int64)
		if !ok {
			return fmt.Errorf("cannot scan %T into **int64", src)
		}
		*d = &n
	case **string:
		if src == nil {
			*d = nil
			return nil
		}
		s, ok := src.(string)
		if !ok {
			return fmt.Errorf("cannot scan %T into **string", src)
		}
		*d = &s
	default:
		return fmt.Errorf("unsupported destination %T", dst)
	}
	return nil
}

func i64(n int64) *int64 { return &n }
