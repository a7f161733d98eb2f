package discovery

// PortableType is the database-neutral type vocabulary column types are mapped to.
type PortableType string

const (
	TypeString  PortableType = "String"
	TypeBoolean PortableType = "Boolean"
	TypeBinary  PortableType = "Binary"
	TypeNumber  PortableType = "Number"
	TypeDate    PortableType = "Date"
)

// Relation types reported in TableDescriptor.Type.
const (
	RelationTable = "table"
	RelationView  = "view"
)

// TableDescriptor names one table or view.
type TableDescriptor struct {
	Type  string `json:"type" yaml:"type"` // RelationTable or RelationView
	Name  string `json:"name" yaml:"name"`
	Owner string `json:"owner" yaml:"owner"`
}

// ColumnDescriptor describes one column as reported by information_schema.columns.
// Length, precision and scale are nil when the catalog reports NULL.
type ColumnDescriptor struct {
	Owner         string       `json:"owner" yaml:"owner"`
	TableName     string       `json:"tableName" yaml:"tableName"`
	ColumnName    string       `json:"columnName" yaml:"columnName"`
	DataType      string       `json:"dataType" yaml:"dataType"`
	DataLength    *int64       `json:"dataLength" yaml:"dataLength"`
	DataPrecision *int64       `json:"dataPrecision" yaml:"dataPrecision"`
	DataScale     *int64       `json:"dataScale" yaml:"dataScale"`
	Nullable      bool         `json:"nullable" yaml:"nullable"`
	Type          PortableType `json:"type" yaml:"type"`
}

// PrimaryKeyDescriptor is one column of a primary key. KeySeq is 1-based.
type PrimaryKeyDescriptor struct {
	Owner      string `json:"owner" yaml:"owner"`
	TableName  string `json:"tableName" yaml:"tableName"`
	ColumnName string `json:"columnName" yaml:"columnName"`
	KeySeq     int    `json:"keySeq" yaml:"keySeq"`
	PKName     string `json:"pkName" yaml:"pkName"`
}

// ForeignKeyDescriptor is one column pair of a foreign key: the referencing
// (fk) column and the referenced (pk) column it points at. KeySeq is 1-based.
// PKName is empty when the catalog does not expose the referenced
// constraint's name.
type ForeignKeyDescriptor struct {
	FKOwner      string `json:"fkOwner" yaml:"fkOwner"`
	FKName       string `json:"fkName" yaml:"fkName"`
	FKTableName  string `json:"fkTableName" yaml:"fkTableName"`
	FKColumnName string `json:"fkColumnName" yaml:"fkColumnName"`
	KeySeq       int    `json:"keySeq" yaml:"keySeq"`
	PKOwner      string `json:"pkOwner" yaml:"pkOwner"`
	PKName       string `json:"pkName,omitempty" yaml:"pkName,omitempty"`
	PKTableName  string `json:"pkTableName" yaml:"pkTableName"`
	PKColumnName string `json:"pkColumnName" yaml:"pkColumnName"`
}
