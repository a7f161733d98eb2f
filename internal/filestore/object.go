package filestore

import (
	"io"
	"time"
)

// ObjectInfo describes a single object stored in a bucket.
type ObjectInfo struct {
	// Key is the full object path within the bucket
	// (e.g. "snapshots/postgres/public/20260101T000000Z.yaml").
	Key string `json:"key" yaml:"key"`

	// Size is the byte size of the object. -1 if unknown.
	Size int64 `json:"size" yaml:"size"`

	ContentType  string    `json:"contentType,omitempty" yaml:"contentType,omitempty"`
	ETag         string    `json:"etag,omitempty" yaml:"etag,omitempty"`
	LastModified time.Time `json:"lastModified" yaml:"lastModified"`

	// IsDir is true when the entry represents a virtual directory (prefix),
	// not an actual stored object.
	IsDir bool `json:"isDir,omitempty" yaml:"isDir,omitempty"`
}

// Object is a streaming handle to an object's content.
// The caller MUST call Close() after reading to avoid resource leaks.
type Object interface {
	io.ReadCloser

	// Info returns the metadata for this object.
	Info() *ObjectInfo
}

// ListOptions controls how ListObjects filters results.
type ListOptions struct {
	// Prefix restricts results to objects whose key starts with this string.
	Prefix string

	// Recursive, when true, lists all objects under the prefix without
	// grouping by virtual directories.
	Recursive bool

	// Limit caps the number of results returned. 0 means no cap.
	Limit int
}

// PutOptions describes an object being written.
type PutOptions struct {
	// Size is the content length, or -1 when unknown.
	Size int64

	ContentType string
}
