package schema

import (
	"bytes"
	"testing"
	"time"

	"github.com/koustreak/pgdiscovery/internal/discovery"
	"github.com/koustreak/pgdiscovery/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"json", FormatJSON},
		{"JSON", FormatJSON},
		{"yaml", FormatYAML},
		{" yml ", FormatYAML},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseFormat("xml")
	assert.True(t, errs.IsInvalidArgument(err))
}

func TestFormatFromKey(t *testing.T) {
	f, err := FormatFromKey("snapshots/postgres/public/20260301T120000Z.yaml")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	_, err = FormatFromKey("snapshots/readme")
	assert.Error(t, err)
}

func TestEncode_YAMLFieldNames(t *testing.T) {
	length := int64(4)
	cols := []discovery.ColumnDescriptor{{
		Owner: "public", TableName: "orders", ColumnName: "flag",
		DataType: "character", DataLength: &length, Nullable: true, Type: discovery.TypeString,
	}}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, FormatYAML, cols))
	out := buf.String()
	assert.Contains(t, out, "tableName: orders")
	assert.Contains(t, out, "dataLength: 4")
	assert.Contains(t, out, "dataPrecision: null")
	assert.Contains(t, out, "type: String")
}

func TestEncode_JSONOmitsEmptyPKName(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, FormatJSON, discovery.ForeignKeyDescriptor{FKName: "fk", KeySeq: 1}))
	assert.NotContains(t, buf.String(), "pkName")
	assert.Contains(t, buf.String(), `"keySeq": 1`)
}

func TestEncode_UnknownFormat(t *testing.T) {
	err := Encode(&bytes.Buffer{}, Format("toml"), 1)
	assert.True(t, errs.IsInvalidArgument(err))
}

func TestDecode_SnapshotSurvivesBothFormats(t *testing.T) {
	snap := &Snapshot{
		Dialect: "mysql",
		Owner:   "shop",
		TakenAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Relations: []Relation{{
			Type: discovery.RelationTable, Name: "orders", Owner: "shop",
			Columns: []discovery.ColumnDescriptor{{Owner: "shop", TableName: "orders", ColumnName: "id", DataType: "int", Type: discovery.TypeNumber}},
		}},
	}

	for _, f := range []Format{FormatJSON, FormatYAML} {
		t.Run(string(f), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, f, snap))

			var got Snapshot
			require.NoError(t, Decode(&buf, f, &got))
			assert.Equal(t, snap.Owner, got.Owner)
			assert.True(t, snap.TakenAt.Equal(got.TakenAt))
			require.Len(t, got.Relations, 1)
			assert.Equal(t, snap.Relations[0].Columns, got.Relations[0].Columns)
		})
	}
}

func TestDecode_Garbage(t *testing.T) {
	var s Snapshot
	err := Decode(bytes.NewBufferString("{not json"), FormatJSON, &s)
	assert.True(t, errs.IsInvalidArgument(err))
}
