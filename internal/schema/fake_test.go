package schema

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/koustreak/pgdiscovery/internal/database"
	"github.com/koustreak/pgdiscovery/internal/discovery"
	"github.com/koustreak/pgdiscovery/internal/errs"
	"github.com/koustreak/pgdiscovery/internal/filestore"
)

// fakeDiscoverer serves a fixed catalog keyed by table name.
type fakeDiscoverer struct {
	defs    []discovery.TableDescriptor
	columns map[string][]discovery.ColumnDescriptor
	pks     map[string][]discovery.PrimaryKeyDescriptor
	fks     map[string][]discovery.ForeignKeyDescriptor
	failOn  string

	mu     sync.Mutex
	calls  []string
	owners map[string]string // "op:table" -> owner filter of the last call
}

func (f *fakeDiscoverer) Dialect() database.Dialect { return database.DialectPostgres }

func (f *fakeDiscoverer) record(op, table string, opts *discovery.Options) error {
	f.mu.Lock()
	f.calls = append(f.calls, op+":"+table)
	if f.owners == nil {
		f.owners = map[string]string{}
	}
	f.owners[op+":"+table] = opts.OwnerName()
	f.mu.Unlock()
	if f.failOn != "" && f.failOn == op+":"+table {
		return errs.New(errs.ErrKindQueryFailed, "boom")
	}
	return nil
}

func (f *fakeDiscoverer) DiscoverModelDefinitions(_ context.Context, opts *discovery.Options) ([]discovery.TableDescriptor, error) {
	if err := f.record("defs", "", opts); err != nil {
		return nil, err
	}
	return f.defs, nil
}

func (f *fakeDiscoverer) DiscoverModelProperties(_ context.Context, table string, opts *discovery.Options) ([]discovery.ColumnDescriptor, error) {
	if err := f.record("columns", table, opts); err != nil {
		return nil, err
	}
	return append([]discovery.ColumnDescriptor{}, f.columns[table]...), nil
}

func (f *fakeDiscoverer) DiscoverPrimaryKeys(_ context.Context, table string, opts *discovery.Options) ([]discovery.PrimaryKeyDescriptor, error) {
	if err := f.record("pks", table, opts); err != nil {
		return nil, err
	}
	return append([]discovery.PrimaryKeyDescriptor{}, f.pks[table]...), nil
}

func (f *fakeDiscoverer) DiscoverForeignKeys(_ context.Context, table string, opts *discovery.Options) ([]discovery.ForeignKeyDescriptor, error) {
	if err := f.record("fks", table, opts); err != nil {
		return nil, err
	}
	return append([]discovery.ForeignKeyDescriptor{}, f.fks[table]...), nil
}

func (f *fakeDiscoverer) DiscoverExportedForeignKeys(_ context.Context, table string, opts *discovery.Options) ([]discovery.ForeignKeyDescriptor, error) {
	if err := f.record("exported", table, opts); err != nil {
		return nil, err
	}
	out := []discovery.ForeignKeyDescriptor{}
	for _, fks := range f.fks {
		for _, fk := range fks {
			if fk.PKTableName == table {
				out = append(out, fk)
			}
		}
	}
	return out, nil
}

func (f *fakeDiscoverer) ownerOf(op, table string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	owner, ok := f.owners[op+":"+table]
	return owner, ok
}

func (f *fakeDiscoverer) called(op string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.calls {
		if strings.HasPrefix(c, op+":") {
			out = append(out, strings.TrimPrefix(c, op+":"))
		}
	}
	sort.Strings(out)
	return out
}

// memStore is an in-memory filestore.Store.
type memStore struct {
	mu      sync.Mutex
	buckets map[string]map[string]memObject
}

type memObject struct {
	data        []byte
	contentType string
}

func newMemStore() *memStore {
	return &memStore{buckets: map[string]map[string]memObject{}}
}

func (m *memStore) Ping(context.Context) error { return nil }
func (m *memStore) Close() error               { return nil }

func (m *memStore) EnsureBucket(_ context.Context, bucket string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.buckets[bucket]; !ok {
		m.buckets[bucket] = map[string]memObject{}
	}
	return nil
}

func (m *memStore) PutObject(_ context.Context, bucket, key string, r io.Reader, opts filestore.PutOptions) (*filestore.ObjectInfo, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.buckets[bucket]
	if !ok {
		return nil, errs.New(errs.ErrKindNotFound, "no such bucket")
	}
	b[key] = memObject{data: data, contentType: opts.ContentType}
	return &filestore.ObjectInfo{Key: key, Size: int64(len(data)), ContentType: opts.ContentType}, nil
}

func (m *memStore) ListObjects(_ context.Context, bucket string, opts filestore.ListOptions) ([]filestore.ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for k := range m.buckets[bucket] {
		if strings.HasPrefix(k, opts.Prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	out := []filestore.ObjectInfo{}
	for _, k := range keys {
		if opts.Limit > 0 && len(out) >= opts.Limit {
			break
		}
		out = append(out, filestore.ObjectInfo{Key: k, Size: int64(len(m.buckets[bucket][k].data))})
	}
	return out, nil
}

func (m *memStore) GetObject(_ context.Context, bucket, key string) (filestore.Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.buckets[bucket][key]
	if !ok {
		return nil, errs.New(errs.ErrKindNotFound, "no such key")
	}
	return &memReader{
		Reader: bytes.NewReader(o.data),
		info:   &filestore.ObjectInfo{Key: key, Size: int64(len(o.data)), ContentType: o.contentType},
	}, nil
}

func (m *memStore) PresignGetURL(_ context.Context, bucket, key string, ttl time.Duration) (string, error) {
	return "http://store.local/" + bucket + "/" + key + "?ttl=" + ttl.String(), nil
}

type memReader struct {
	*bytes.Reader
	info *filestore.ObjectInfo
}

func (r *memReader) Close() error                { return nil }
func (r *memReader) Info() *filestore.ObjectInfo { return r.info }
