// Package codegen renders a compiled attribute database as Go source, as a
// JSON or YAML artifact, or as an inspection table.
package codegen

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/srg/attdb/internal/attdb"
	"github.com/srg/attdb/internal/dispatch"
)

var ErrUnknownFormat = errors.New("unknown output format")

// Format selects the artifact kind.
type Format string

const (
	FormatGo    Format = "go"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatTable Format = "table"
)

// Formats lists the supported formats in help order.
var Formats = []Format{FormatGo, FormatJSON, FormatYAML, FormatTable}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if string(f) == strings.ToLower(s) {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q (supported: %s)", ErrUnknownFormat, s, formatList())
}

func formatList() string {
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

// Options configures the emitters. Package, Prefix, TaskID and Imports only
// affect Go output; Color only affects the table.
type Options struct {
	Package string
	Prefix  string
	TaskID  uint16
	Source  string
	Imports []string
	Color   bool
}

// Emit writes db in the requested format.
func Emit(w io.Writer, format Format, db *attdb.Database, opts Options) error {
	switch format {
	case FormatGo:
		return EmitGo(w, db, dispatch.NewTable(db), opts)
	case FormatJSON:
		return EmitJSON(w, db, opts)
	case FormatYAML:
		return EmitYAML(w, db, opts)
	case FormatTable:
		return attdb.Dump(w, db, attdb.DumpOptions{Color: opts.Color, Names: true})
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}
