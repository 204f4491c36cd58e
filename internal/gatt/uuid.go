package gatt

import (
	"fmt"
	"math"

	"github.com/go-ble/ble"
	"github.com/srg/attdb/internal/dsl"
)

// UUIDFromValue converts a parsed literal into a BLE UUID.
//
// Accepted forms:
//   - integer literal up to 0xFFFF: 16-bit UUID
//   - string literal: "180d" or "6e400001-b5a3-f393-e0a9-e50e24dcca9e"
//   - byte list of 2 or 16 elements, little-endian as stored on the wire
func UUIDFromValue(field string, v dsl.Value) (ble.UUID, error) {
	switch v.Kind {
	case dsl.KindInt:
		if v.Int > math.MaxUint16 {
			return nil, dsl.Errorf(v.Pos, ErrInvalidUUID, "`%s`: %s does not fit a 16-bit UUID", field, v.Raw)
		}
		return ble.UUID16(uint16(v.Int)), nil

	case dsl.KindString:
		u, err := ble.Parse(v.Str)
		if err != nil {
			return nil, dsl.Errorf(v.Pos, ErrInvalidUUID, "`%s`: cannot parse %q: %v", field, v.Str, err)
		}
		return u, nil

	case dsl.KindBytes:
		if len(v.Bytes) != 2 && len(v.Bytes) != 16 {
			return nil, dsl.Errorf(v.Pos, ErrInvalidUUID, "`%s`: UUID byte list must have 2 or 16 elements, got %d", field, len(v.Bytes))
		}
		u := make(ble.UUID, len(v.Bytes))
		copy(u, v.Bytes)
		return u, nil
	}
	return nil, dsl.Errorf(v.Pos, ErrInvalidValue, "`%s`: expected integer literal, string literal or byte list, got %s", field, v.Kind)
}

// Is128 reports whether u is a full 128-bit UUID.
func Is128(u ble.UUID) bool {
	return u.Len() == 16
}

// FormatUUID renders u as 0xXXXX for 16-bit UUIDs and in dashed form otherwise.
func FormatUUID(u ble.UUID) string {
	if u.Len() == 2 {
		return fmt.Sprintf("0x%04X", uint16(u[0])|uint16(u[1])<<8)
	}
	s := u.String()
	if len(s) != 32 {
		return s
	}
	return s[0:8] + "-" + s[8:12] + "-" + s[12:16] + "-" + s[16:20] + "-" + s[20:32]
}
