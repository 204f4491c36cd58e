package codegen

import (
	"bytes"
	"testing"

	"github.com/srg/attdb/internal/attdb"
	"github.com/srg/attdb/internal/dispatch"
	"github.com/srg/attdb/internal/dsl"
	"github.com/srg/attdb/internal/gatt"
	"github.com/srg/attdb/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const temperatureSource = `
temperature: { uuid: 0x1234, characteristics: {
    temp:     { uuid: 0x5678, permissions: (READ_ENABLED), length: 4, user_description: "Temp", read_handler: handlers::ReadTemp },
    setpoint: { uuid: 0x5679, permissions: (WRITE_ENABLED), length: 2, write_handler: handlers::WriteSetpoint },
} }
`

func compile(t *testing.T, src string) *attdb.Database {
	t.Helper()
	root, err := dsl.ParseRecords("temperature.attdb", []byte(src))
	require.NoError(t, err)
	services, err := gatt.ServicesFromRecords(root)
	require.NoError(t, err)
	db, err := attdb.Build(services)
	require.NoError(t, err)
	return db
}

func goOptions() Options {
	return Options{
		Package: "firmware",
		Prefix:  "Custs1",
		TaskID:  0x3F,
		Source:  "temperature.attdb",
		Imports: []string{"example.com/fw/handlers"},
	}
}

func TestEmitGoGolden(t *testing.T) {
	db := compile(t, temperatureSource)

	var buf bytes.Buffer
	require.NoError(t, EmitGo(&buf, db, dispatch.NewTable(db), goOptions()))
	testutils.NewTextAsserter(t).AssertGolden(buf.String(), "testdata/temperature.go.golden")
}

func TestEmitGoWithoutRoutes(t *testing.T) {
	list, err := dsl.ParseEntries("", []byte(`
{ etype: service, uuid16: 0x180f },
{ etype: characteristic, uuid16: 0x2a19, length: consts.LEVEL_LEN, perm: perms.LEVEL },
`))
	require.NoError(t, err)
	entries, err := gatt.EntriesFromRecords(list)
	require.NoError(t, err)
	db, err := attdb.NewBuilder().BuildEntries(entries)
	require.NoError(t, err)

	opts := goOptions()
	opts.Imports = []string{"example.com/fw/consts", "example.com/fw/perms"}

	var buf bytes.Buffer
	require.NoError(t, Emit(&buf, FormatGo, db, opts))
	out := buf.String()

	assert.Contains(t, out, "Perm: perms.LEVEL, MaxLength: 0x8000 | consts.LEVEL_LEN")
	assert.NotContains(t, out, "switch")
	assert.Contains(t, out, "return gatts.DefaultRead(req, rsp)")
	assert.Contains(t, out, "var Custs1Services = [2]uint8{0, 3}")
}

func TestEmitGoRejectsBadOptions(t *testing.T) {
	db := compile(t, temperatureSource)

	var buf bytes.Buffer
	err := EmitGo(&buf, db, dispatch.NewTable(db), Options{Prefix: "X"})
	require.ErrorIs(t, err, ErrInvalidOption)

	err = EmitGo(&buf, db, dispatch.NewTable(db), Options{Package: "p"})
	require.ErrorIs(t, err, ErrInvalidOption)

	opts := goOptions()
	opts.Package = "not a package"
	err = EmitGo(&buf, db, dispatch.NewTable(db), opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "format Go source")
	assert.Zero(t, buf.Len())
}

func TestEmitJSON(t *testing.T) {
	db := compile(t, temperatureSource)

	var buf bytes.Buffer
	require.NoError(t, Emit(&buf, FormatJSON, db, Options{Source: "temperature.attdb"}))

	testutils.NewJSONAsserter(t).Assert(buf.String(), `{
		"source": "temperature.attdb",
		"record_count": 6,
		"service_starts": [0, 6],
		"records": [
			{"index": 0, "kind": "service", "owner": "temperature", "uuid": "0x2800", "uuid_size": 2, "perm": 1, "max_length": 2, "trigger": false, "length": 2, "value": "3412"},
			{"index": 1, "kind": "char-decl", "owner": "temp", "uuid": "0x2803", "uuid_size": 2, "perm": 1, "max_length": 0, "trigger": false, "length": 0},
			{"index": 2, "kind": "char-value", "owner": "temp", "uuid": "0x5678", "uuid_size": 2, "perm": 1, "max_length": 32772, "trigger": true, "length": 0},
			{"index": 3, "kind": "user-desc", "owner": "temp", "uuid": "0x2901", "uuid_size": 2, "perm": 1, "max_length": 4, "trigger": false, "length": 4, "value": "54656d70"},
			{"index": 4, "kind": "char-decl", "owner": "setpoint", "uuid": "0x2803", "uuid_size": 2, "perm": 1, "max_length": 0, "trigger": false, "length": 0},
			{"index": 5, "kind": "char-value", "owner": "setpoint", "uuid": "0x5679", "uuid_size": 2, "perm": 8, "max_length": 32770, "trigger": true, "length": 0}
		],
		"characteristics": [{"name": "temp", "index": 2}, {"name": "setpoint", "index": 5}],
		"read": [{"index": 2, "handler": "handlers.ReadTemp", "characteristic": "temp"}],
		"write": [{"index": 5, "handler": "handlers.WriteSetpoint", "characteristic": "setpoint"}]
	}`)
}

func TestEmitYAML(t *testing.T) {
	db := compile(t, temperatureSource)

	var buf bytes.Buffer
	require.NoError(t, Emit(&buf, FormatYAML, db, Options{}))

	var got Artifact
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, 6, got.RecordCount)
	assert.Equal(t, []int{0, 6}, got.ServiceStarts)
	require.Len(t, got.Records, 6)
	require.NotNil(t, got.Records[2].MaxLength)
	assert.Equal(t, uint16(0x8004), *got.Records[2].MaxLength)
	assert.Equal(t, []NameEntry{{Name: "temp", Index: 2}, {Name: "setpoint", Index: 5}}, got.Characteristics)
	assert.Empty(t, got.Source)
}

func TestEmitTable(t *testing.T) {
	db := compile(t, temperatureSource)

	var buf bytes.Buffer
	require.NoError(t, Emit(&buf, FormatTable, db, Options{}))
	assert.Contains(t, buf.String(), "records: 6  services: [0, 6]")
}

func TestParseFormat(t *testing.T) {
	for _, name := range []string{"go", "JSON", "yaml", "table"} {
		_, err := ParseFormat(name)
		assert.NoError(t, err, name)
	}
	_, err := ParseFormat("xml")
	require.ErrorIs(t, err, ErrUnknownFormat)
	assert.Contains(t, err.Error(), "go, json, yaml, table")

	err = Emit(&bytes.Buffer{}, Format("xml"), compile(t, temperatureSource), Options{})
	require.ErrorIs(t, err, ErrUnknownFormat)
}
