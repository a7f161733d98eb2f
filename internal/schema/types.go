package schema

import (
	"time"

	"github.com/koustreak/pgdiscovery/internal/discovery"
)

// Relation is one table or view with everything discovered about it.
// Views carry columns only.
type Relation struct {
	Type  string `json:"type,omitempty" yaml:"type,omitempty"`
	Name  string `json:"name" yaml:"name"`
	Owner string `json:"owner" yaml:"owner"`

	Columns             []discovery.ColumnDescriptor     `json:"columns" yaml:"columns"`
	PrimaryKeys         []discovery.PrimaryKeyDescriptor `json:"primaryKeys" yaml:"primaryKeys"`
	ForeignKeys         []discovery.ForeignKeyDescriptor `json:"foreignKeys" yaml:"foreignKeys"`
	ExportedForeignKeys []discovery.ForeignKeyDescriptor `json:"exportedForeignKeys" yaml:"exportedForeignKeys"`
}

// Snapshot is the full discovered catalog for one scope.
type Snapshot struct {
	Dialect string    `json:"dialect,omitempty" yaml:"dialect,omitempty"`
	Owner   string    `json:"owner,omitempty" yaml:"owner,omitempty"` // empty for the current schema or all schemas
	All     bool      `json:"all,omitempty" yaml:"all,omitempty"`
	TakenAt time.Time `json:"takenAt" yaml:"takenAt"`

	Relations []Relation `json:"relations" yaml:"relations"`
}

// Relation returns the relation named name, or nil.
func (s *Snapshot) Relation(owner, name string) *Relation {
	for i := range s.Relations {
		r := &s.Relations[i]
		if r.Name == name && (owner == "" || r.Owner == owner) {
			return r
		}
	}
	return nil
}
