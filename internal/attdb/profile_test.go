package attdb

import (
	"bytes"
	"testing"

	"github.com/go-ble/ble"
	"github.com/srg/attdb/internal/dsl"
	"github.com/srg/attdb/internal/gatt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const batterySource = `
battery: { uuid: 0x180f, characteristics: {
    level: { uuid: 0x2a19, permissions: (READ_ENABLED | NOTIFICATION_ENABLED), length: 1, user_description: "Level", read_handler: read_level },
    alert: { uuid: 0x2a06, permissions: (WRITE_ENABLED | WRITE_COMMAND_ACCEPTED), length: 1, write_handler: write_alert },
} }
`

func buildBattery(t *testing.T) *Database {
	t.Helper()
	root, err := dsl.ParseRecords("battery.attdb", []byte(batterySource))
	require.NoError(t, err)
	services, err := gatt.ServicesFromRecords(root)
	require.NoError(t, err)
	db, err := Build(services)
	require.NoError(t, err)
	return db
}

func TestProfile(t *testing.T) {
	db := buildBattery(t)
	profile := db.Profile()

	require.Len(t, profile.Services, 1)
	svc := profile.Services[0]
	assert.True(t, svc.UUID.Equal(ble.UUID16(0x180f)))
	assert.EqualValues(t, 0, svc.Handle)
	assert.EqualValues(t, 5, svc.EndHandle)

	require.Len(t, svc.Characteristics, 2)
	level := svc.Characteristics[0]
	assert.True(t, level.UUID.Equal(ble.UUID16(0x2a19)))
	assert.Equal(t, ble.CharRead|ble.CharNotify, level.Property)
	assert.EqualValues(t, 1, level.Handle)
	assert.EqualValues(t, 2, level.ValueHandle)
	assert.EqualValues(t, 3, level.EndHandle)
	require.Len(t, level.Descriptors, 1)
	assert.Equal(t, []byte("Level"), level.Descriptors[0].Value)

	alert := svc.Characteristics[1]
	assert.Equal(t, ble.CharWrite|ble.CharWriteNR, alert.Property)
	assert.EqualValues(t, 5, alert.ValueHandle)
	assert.Empty(t, alert.Descriptors)
}

func TestProfileHandlesFollowDeclarations(t *testing.T) {
	list, err := dsl.ParseEntries("", []byte(`
{ etype: service, uuid16: 0x1234 },
{ etype: characteristic, uuid16: 0x5678, length: 4, perm: (READ_ENABLED), user_description: "Temp" },
{ etype: service, uuid16: 0x180f },
{ etype: characteristic, uuid16: 0x2a19, length: 1, perm: (READ_ENABLED) },
`))
	require.NoError(t, err)
	entries, err := gatt.EntriesFromRecords(list)
	require.NoError(t, err)
	db, err := NewBuilder().BuildEntries(entries)
	require.NoError(t, err)

	profile := db.Profile()
	require.Len(t, profile.Services, 2)

	first, second := profile.Services[0], profile.Services[1]
	assert.True(t, first.UUID.Equal(ble.UUID16(0x1234)))
	assert.EqualValues(t, 0, first.Handle)
	assert.EqualValues(t, 3, first.EndHandle)
	assert.True(t, second.UUID.Equal(ble.UUID16(0x180f)))
	assert.EqualValues(t, 4, second.Handle)
	assert.EqualValues(t, 6, second.EndHandle)

	require.Len(t, second.Characteristics, 1)
	assert.EqualValues(t, 6, second.Characteristics[0].ValueHandle)
}

func TestDump(t *testing.T) {
	db := buildBattery(t)

	var buf bytes.Buffer
	require.NoError(t, Dump(&buf, db, DumpOptions{Names: true}))
	out := buf.String()

	assert.Contains(t, out, "idx")
	assert.Contains(t, out, "0x2800 (Primary Service)")
	assert.Contains(t, out, "0x2A19 (Battery Level)")
	assert.Contains(t, out, `"Level"`)
	assert.Contains(t, out, "[0F 18]")
	assert.Contains(t, out, "0x8001")
	assert.Contains(t, out, "records: 6  services: [0, 6]")
	assert.NotContains(t, out, "\x1b[", "colors are off unless requested")
}
