package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapType(t *testing.T) {
	tests := []struct {
		native string
		length int64
		want   PortableType
	}{
		{"CHAR", 1, TypeBoolean},
		{"CHAR", 10, TypeString},
		{"char", 1, TypeBoolean},
		{"VARCHAR", 255, TypeString},
		{"VARCHAR", 1, TypeString},
		{"TEXT", 0, TypeString},
		{"ENUM", 0, TypeString},
		{"SET", 0, TypeString},
		{"BLOB", 0, TypeBinary},
		{"varbinary", 16, TypeBinary},
		{"BIT", 1, TypeBinary},
		{"INT", 0, TypeNumber},
		{"tinyint", 0, TypeNumber},
		{"YEAR", 0, TypeNumber},
		{"DOUBLE", 0, TypeNumber},
		{"DATE", 0, TypeDate},
		{"DATETIME", 0, TypeDate},
		{"TIMESTAMP", 0, TypeDate},
		{"UNKNOWNTYPE", 0, TypeString},
		{"", 0, TypeString},

		{"character", 1, TypeBoolean},
		{"character", 4, TypeString},
		{"character varying", 1020, TypeString},
		{"boolean", 0, TypeBoolean},
		{"bytea", 0, TypeBinary},
		{"integer", 0, TypeNumber},
		{"bigint", 0, TypeNumber},
		{"numeric", 0, TypeNumber},
		{"double precision", 0, TypeNumber},
		{"timestamp without time zone", 0, TypeDate},
		{"Timestamp With Time Zone", 0, TypeDate},
		{"uuid", 0, TypeString},
		{"jsonb", 0, TypeString},
		{"USER-DEFINED", 0, TypeString},
		{"ARRAY", 0, TypeString},
	}

	for _, tt := range tests {
		t.Run(tt.native, func(t *testing.T) {
			assert.Equal(t, tt.want, MapType(tt.native, tt.length))
		})
	}
}

func TestMapType_AnyLengthForFixedTypes(t *testing.T) {
	for _, length := range []int64{0, 1, 2, 255, 1 << 20} {
		assert.Equal(t, TypeString, MapType("VARCHAR", length))
		assert.Equal(t, TypeBinary, MapType("BLOB", length))
		assert.Equal(t, TypeNumber, MapType("INT", length))
		assert.Equal(t, TypeDate, MapType("DATE", length))
		assert.Equal(t, TypeString, MapType("UNKNOWNTYPE", length))
	}
}
