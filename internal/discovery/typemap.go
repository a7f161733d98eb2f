package discovery

import "strings"

// nativeTypes maps lower-cased native type names, in both the MySQL and the
// PostgreSQL vocabulary, to portable types. CHAR-family names are absent:
// they depend on the byte length and are handled in MapType.
var nativeTypes = map[string]PortableType{
	// MySQL
	"varchar":    TypeString,
	"tinytext":   TypeString,
	"mediumtext": TypeString,
	"longtext":   TypeString,
	"text":       TypeString,
	"enum":       TypeString,
	"set":        TypeString,
	"tinyblob":   TypeBinary,
	"mediumblob": TypeBinary,
	"longblob":   TypeBinary,
	"blob":       TypeBinary,
	"binary":     TypeBinary,
	"varbinary":  TypeBinary,
	"bit":        TypeBinary,
	"tinyint":    TypeNumber,
	"smallint":   TypeNumber,
	"int":        TypeNumber,
	"mediumint":  TypeNumber,
	"year":       TypeNumber,
	"float":      TypeNumber,
	"double":     TypeNumber,
	"date":       TypeDate,
	"timestamp":  TypeDate,
	"datetime":   TypeDate,

	// PostgreSQL (information_schema.columns.data_type and udt names)
	"character varying":           TypeString,
	"name":                        TypeString,
	"citext":                      TypeString,
	"uuid":                        TypeString,
	"json":                        TypeString,
	"jsonb":                       TypeString,
	"xml":                         TypeString,
	"boolean":                     TypeBoolean,
	"bool":                        TypeBoolean,
	"bytea":                       TypeBinary,
	"bit varying":                 TypeBinary,
	"varbit":                      TypeBinary,
	"integer":                     TypeNumber,
	"bigint":                      TypeNumber,
	"int2":                        TypeNumber,
	"int4":                        TypeNumber,
	"int8":                        TypeNumber,
	"smallserial":                 TypeNumber,
	"serial":                      TypeNumber,
	"bigserial":                   TypeNumber,
	"numeric":                     TypeNumber,
	"decimal":                     TypeNumber,
	"real":                        TypeNumber,
	"double precision":            TypeNumber,
	"float4":                      TypeNumber,
	"float8":                      TypeNumber,
	"money":                       TypeNumber,
	"oid":                         TypeNumber,
	"timestamp without time zone": TypeDate,
	"timestamp with time zone":    TypeDate,
	"timestamptz":                 TypeDate,
}

// MapType maps a native column type name and its byte length to a portable
// type. Matching is case-insensitive; a single-byte CHAR is treated as a
// boolean flag. Unknown names map to TypeString.
func MapType(nativeType string, byteLength int64) PortableType {
	name := strings.ToLower(strings.TrimSpace(nativeType))

	switch name {
	case "char", "character", "bpchar":
		if byteLength == 1 {
			return TypeBoolean
		}
		return TypeString
	}

	if t, ok := nativeTypes[name]; ok {
		return t
	}
	return TypeString
}
