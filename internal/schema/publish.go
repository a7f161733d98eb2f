package schema

import (
	"bytes"
	"context"
	"path"
	"strings"
	"time"

	"github.com/koustreak/pgdiscovery/internal/filestore"
)

const keyTimeFormat = "20060102T150405Z"

// ObjectKey is where s is stored under prefix:
// <prefix>/<dialect>/<owner>/<takenAt>.<ext>. The owner segment is "_all"
// for all-schema snapshots and "_current" for the session's schema.
func ObjectKey(prefix string, s *Snapshot, f Format) string {
	owner := s.Owner
	switch {
	case owner != "":
	case s.All:
		owner = "_all"
	default:
		owner = "_current"
	}

	dialect := s.Dialect
	if dialect == "" {
		dialect = "unknown"
	}

	name := s.TakenAt.UTC().Format(keyTimeFormat) + "." + f.Ext()
	return path.Join(strings.Trim(prefix, "/"), dialect, owner, name)
}

// Publisher writes snapshots to one bucket of an object store.
type Publisher struct {
	store  filestore.Store
	bucket string
	prefix string
}

// NewPublisher returns a Publisher for cfg's bucket and prefix.
func NewPublisher(store filestore.Store, cfg *filestore.Config) *Publisher {
	return &Publisher{store: store, bucket: cfg.Bucket, prefix: cfg.Prefix}
}

// Publish encodes s in format f and uploads it, creating the bucket when
// needed.
func (p *Publisher) Publish(ctx context.Context, s *Snapshot, f Format) (*filestore.ObjectInfo, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, f, s); err != nil {
		return nil, err
	}

	if err := p.store.EnsureBucket(ctx, p.bucket); err != nil {
		return nil, err
	}

	key := ObjectKey(p.prefix, s, f)
	return p.store.PutObject(ctx, p.bucket, key, &buf, filestore.PutOptions{
		Size:        int64(buf.Len()),
		ContentType: f.ContentType(),
	})
}

// List returns published snapshots in key order, skipping directory
// placeholders.
func (p *Publisher) List(ctx context.Context, limit int) ([]filestore.ObjectInfo, error) {
	prefix := strings.Trim(p.prefix, "/")
	if prefix != "" {
		prefix += "/"
	}

	objs, err := p.store.ListObjects(ctx, p.bucket, filestore.ListOptions{
		Prefix:    prefix,
		Recursive: true,
		Limit:     limit,
	})
	if err != nil {
		return nil, err
	}

	out := make([]filestore.ObjectInfo, 0, len(objs))
	for _, o := range objs {
		if !o.IsDir {
			out = append(out, o)
		}
	}
	return out, nil
}

// Fetch downloads and decodes the snapshot stored at key.
func (p *Publisher) Fetch(ctx context.Context, key string) (*Snapshot, error) {
	f, err := FormatFromKey(key)
	if err != nil {
		return nil, err
	}

	obj, err := p.store.GetObject(ctx, p.bucket, key)
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	var s Snapshot
	if err := Decode(obj, f, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// URL returns a presigned download link for key valid for ttl.
func (p *Publisher) URL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return p.store.PresignGetURL(ctx, p.bucket, key, ttl)
}
