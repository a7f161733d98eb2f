package discovery

import (
	"strings"

	"github.com/koustreak/pgdiscovery/internal/database"
	"github.com/koustreak/pgdiscovery/internal/errs"
)

// Options scopes and paginates a discovery call. The zero value lists the
// session's current schema without pagination.
type Options struct {
	// Owner restricts results to one schema. Schema is a synonym; Owner wins
	// when both are set.
	Owner  string `json:"owner,omitempty" yaml:"owner,omitempty"`
	Schema string `json:"schema,omitempty" yaml:"schema,omitempty"`

	// All lists tables and views of every schema when no owner is given.
	All bool `json:"all,omitempty" yaml:"all,omitempty"`

	// Views adds views after the tables in DiscoverModelDefinitions.
	Views bool `json:"views,omitempty" yaml:"views,omitempty"`

	// Offset is the number of rows to skip. Skip is a synonym; Offset wins
	// when both are set.
	Offset int `json:"offset,omitempty" yaml:"offset,omitempty"`
	Skip   int `json:"skip,omitempty" yaml:"skip,omitempty"`

	// Limit caps the number of rows returned. 0 means no limit.
	Limit int `json:"limit,omitempty" yaml:"limit,omitempty"`
}

// OwnerName resolves the Owner/Schema synonyms.
func (o *Options) OwnerName() string {
	if o == nil {
		return ""
	}
	if o.Owner != "" {
		return o.Owner
	}
	return o.Schema
}

// StartOffset resolves the Offset/Skip synonyms.
func (o *Options) StartOffset() int {
	if o == nil {
		return 0
	}
	if o.Offset > 0 {
		return o.Offset
	}
	return o.Skip
}

func (o *Options) paginated() bool {
	return o != nil && (o.Offset > 0 || o.Skip > 0 || o.Limit > 0)
}

// args is the resolved call shape shared by every per-table operation.
type args struct {
	owner string
	table string
	opts  *Options
}

// normalizeOptions defaults nil options and rejects negative paging values.
func normalizeOptions(opts *Options) (*Options, error) {
	if opts == nil {
		return &Options{}, nil
	}
	if opts.Offset < 0 || opts.Skip < 0 {
		return nil, errs.InvalidArgument("offset must be a non-negative integer: %d", min(opts.Offset, opts.Skip))
	}
	if opts.Limit < 0 {
		return nil, errs.InvalidArgument("limit must be a non-negative integer: %d", opts.Limit)
	}
	return opts, nil
}

// normalizeArgs validates the table name against the dialect's identifier
// rules, defaults the options and derives the owner.
func normalizeArgs(d database.Dialect, table string, opts *Options) (args, error) {
	if strings.TrimSpace(table) == "" {
		return args{}, errs.InvalidArgument("table is a required string argument: %q", table)
	}
	if strings.ContainsRune(table, 0) {
		return args{}, errs.InvalidArgument("table name contains a NUL byte: %q", table)
	}
	if len(table) > d.MaxIdentifierLength() {
		return args{}, errs.InvalidArgument("table name exceeds %d bytes: %q", d.MaxIdentifierLength(), table)
	}

	opts, err := normalizeOptions(opts)
	if err != nil {
		return args{}, err
	}

	return args{
		owner: opts.OwnerName(),
		table: table,
		opts:  opts,
	}, nil
}
