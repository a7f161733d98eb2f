package schema

import (
	"encoding/json"
	"io"
	"path"
	"strings"

	"github.com/koustreak/pgdiscovery/internal/errs"
	"go.yaml.in/yaml/v3"
)

// Format is an output encoding for snapshots and descriptor listings.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts "json", "yaml" or "yml" in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", errs.InvalidArgument("unsupported format %q (want json or yaml)", s)
	}
}

// FormatFromKey infers the format from an object key's extension.
func FormatFromKey(key string) (Format, error) {
	return ParseFormat(strings.TrimPrefix(path.Ext(key), "."))
}

// Ext is the file extension for f, without the dot.
func (f Format) Ext() string {
	return string(f)
}

// ContentType is the MIME type objects in f are stored with.
func (f Format) ContentType() string {
	if f == FormatYAML {
		return "application/yaml"
	}
	return "application/json"
}

// Encode writes v to w in format f.
func Encode(w io.Writer, f Format, v any) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return errs.InvalidArgument("unsupported format %q", f)
	}
}

// Decode reads a value in format f from r into v.
func Decode(r io.Reader, f Format, v any) error {
	var err error
	switch f {
	case FormatJSON:
		err = json.NewDecoder(r).Decode(v)
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(v)
	default:
		return errs.InvalidArgument("unsupported format %q", f)
	}
	if err != nil {
		return errs.Wrap(errs.ErrKindInvalidArgument, "failed to decode snapshot", err)
	}
	return nil
}
