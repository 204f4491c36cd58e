package gatt

import (
	"errors"
	"testing"

	"github.com/go-ble/ble"
	"github.com/srg/attdb/internal/dsl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseServices(t *testing.T, src string) ([]*Service, error) {
	t.Helper()
	root, err := dsl.ParseRecords("test.attdb", []byte(src))
	require.NoError(t, err)
	return ServicesFromRecords(root)
}

func TestServicesFromRecords(t *testing.T) {
	services, err := parseServices(t, `
temperature: {
    uuid: 0x1234,
    characteristics: {
        temp: {
            uuid: 0x5678,
            permissions: (READ_ENABLED | NOTIFICATION_ENABLED),
            length: 4,
            user_description: "Temp",
            read_handler: handlers::ReadTemp,
        },
        setpoint: {
            uuid: "6e400002-b5a3-f393-e0a9-e50e24dcca9e",
            permissions: [WRITE_ENABLED],
            length: consts::SETPOINT_LEN,
            write_handler: handlers.WriteSetpoint,
        },
    },
},
`)
	require.NoError(t, err)
	require.Len(t, services, 1)

	svc := services[0]
	assert.Equal(t, "temperature", svc.Name)
	assert.True(t, svc.UUID.Equal(ble.UUID16(0x1234)))
	require.Len(t, svc.Characteristics, 2)
	assert.Equal(t, 6, svc.RecordCount())

	temp := svc.Characteristics[0]
	assert.Equal(t, "temp", temp.Name)
	assert.Equal(t, uint32(0x201), temp.Permissions.Encode())
	assert.Equal(t, LiteralLength(4), temp.Length)
	require.True(t, temp.HasUserDescription())
	assert.Equal(t, "Temp", *temp.UserDescription)
	assert.Equal(t, "handlers.ReadTemp", temp.ReadHandler)
	assert.Empty(t, temp.WriteHandler)
	assert.Equal(t, 3, temp.RecordCount())

	setpoint := svc.Characteristics[1]
	assert.Equal(t, UUIDLen128, setpoint.Permissions.UUIDLength)
	assert.True(t, setpoint.Length.IsDeferred())
	assert.Equal(t, "consts.SETPOINT_LEN", setpoint.Length.Ref())
	assert.Equal(t, "handlers.WriteSetpoint", setpoint.WriteHandler)
	assert.Equal(t, 2, setpoint.RecordCount())
}

func TestExplicitUUIDLengthWins(t *testing.T) {
	services, err := parseServices(t, `
s: { uuid: 0x1, characteristics: {
    c: { uuid: "6e400002-b5a3-f393-e0a9-e50e24dcca9e", permissions: (READ_ENABLED | UUID_LEN_32), length: 1, read_handler: r },
} }
`)
	require.NoError(t, err)
	assert.Equal(t, UUIDLen32, services[0].Characteristics[0].Permissions.UUIDLength)
}

func TestServicesFromRecordsErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		class   error
		wantMsg string
	}{
		{
			name:    "unknown service key",
			src:     "s: { uuid: 1, characteristics: {}, colour: 2 }",
			class:   ErrUnknownField,
			wantMsg: "test.attdb:1:36: unknown field `colour` in service `s`",
		},
		{
			name:    "missing service uuid",
			src:     "s: { characteristics: {} }",
			class:   ErrMissingField,
			wantMsg: "test.attdb:1:4: missing `uuid` in service `s`",
		},
		{
			name:    "unknown characteristic key",
			src:     "s: { uuid: 1, characteristics: { c: { uuid: 2, permissions: (), length: 1, handler: x } } }",
			class:   ErrUnknownField,
			wantMsg: "test.attdb:1:76: unknown field `handler` in characteristic `c`",
		},
		{
			name:    "missing length",
			src:     "s: { uuid: 1, characteristics: { c: { uuid: 2, permissions: () } } }",
			class:   ErrMissingField,
			wantMsg: "test.attdb:1:37: missing `length` in characteristic `c`",
		},
		{
			name:    "permissions is not a flag group",
			src:     "s: { uuid: 1, characteristics: { c: { uuid: 2, permissions: 3, length: 1 } } }",
			class:   ErrInvalidValue,
			wantMsg: "test.attdb:1:61: `permissions`: expected flags, got integer literal",
		},
		{
			name:  "unknown permission flag",
			src:   "s: { uuid: 1, characteristics: { c: { uuid: 2, permissions: (READ_ALWAYS), length: 1 } } }",
			class: ErrUnknownPermission,
		},
		{
			name:  "duplicate read level",
			src:   "s: { uuid: 1, characteristics: { c: { uuid: 2, permissions: (READ_ENABLED | READ_AUTH), length: 1 } } }",
			class: ErrDuplicatePermission,
		},
		{
			name:    "service is not a record",
			src:     "s: 5",
			class:   ErrInvalidValue,
			wantMsg: "test.attdb:1:4: `s`: expected record, got integer literal",
		},
		{
			name:  "length too wide",
			src:   "s: { uuid: 1, characteristics: { c: { uuid: 2, permissions: (), length: 0x10000 } } }",
			class: ErrInvalidValue,
		},
		{
			name:  "handler must be a path",
			src:   `s: { uuid: 1, characteristics: { c: { uuid: 2, permissions: (), length: 1, read_handler: "r" } } }`,
			class: ErrInvalidValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseServices(t, tt.src)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.class), "got %v", err)
			var positioned *dsl.Error
			assert.True(t, errors.As(err, &positioned))
			if tt.wantMsg != "" {
				assert.EqualError(t, err, tt.wantMsg)
			}
		})
	}
}
