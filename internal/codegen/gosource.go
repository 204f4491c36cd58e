package codegen

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"go/format"
	"io"
	"strings"
	"text/template"

	"github.com/srg/attdb/internal/attdb"
	"github.com/srg/attdb/internal/dispatch"
	"github.com/srg/attdb/internal/gatt"
)

var ErrInvalidOption = errors.New("invalid codegen option")

//go:embed attdb.go.tmpl
var goTemplate string

var goTmpl = template.Must(template.New("attdb").Funcs(template.FuncMap{
	"join": func(ints []int) string {
		parts := make([]string, len(ints))
		for i, n := range ints {
			parts[i] = fmt.Sprint(n)
		}
		return strings.Join(parts, ", ")
	},
}).Parse(goTemplate))

type goFile struct {
	Options
	Records      []goRecord
	Starts       []int
	ServiceCount int
	Reads        []dispatch.Case
	Writes       []dispatch.Case
}

type goRecord struct {
	Index     int
	Comment   string
	PermDoc   []string
	UUID      string
	UUIDSize  int
	Perm      string
	MaxLength string
	Length    uint16
	Value     string
}

// EmitGo renders db as a gofmt'ed Go source file. Handler references are
// emitted verbatim; their packages must be listed in opts.Imports.
func EmitGo(w io.Writer, db *attdb.Database, table *dispatch.Table, opts Options) error {
	if opts.Package == "" {
		return fmt.Errorf("%w: package name is empty", ErrInvalidOption)
	}
	if opts.Prefix == "" {
		return fmt.Errorf("%w: symbol prefix is empty", ErrInvalidOption)
	}

	file := goFile{
		Options:      opts,
		Starts:       db.ServiceStarts(),
		ServiceCount: db.ServiceCount(),
		Reads:        table.ReadCases(),
		Writes:       table.WriteCases(),
	}
	for _, r := range db.Records() {
		file.Records = append(file.Records, newGoRecord(r))
	}

	var buf bytes.Buffer
	if err := goTmpl.Execute(&buf, file); err != nil {
		return fmt.Errorf("render Go source: %w", err)
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return fmt.Errorf("format Go source: %w", err)
	}
	_, err = w.Write(src)
	return err
}

func newGoRecord(r attdb.Record) goRecord {
	subject := r.UUID
	if r.Kind == attdb.ServiceDeclaration {
		subject = r.Value
	}
	g := goRecord{
		Index:     r.Index,
		Comment:   r.Kind.String() + " " + gatt.FormatUUID(subject),
		UUID:      byteLiteral(r.UUID),
		UUIDSize:  r.UUIDSize(),
		Perm:      r.Perm.String(),
		MaxLength: maxLengthExpr(r),
		Length:    r.Length,
	}
	if r.Owner != "" {
		g.Comment += " (" + r.Owner + ")"
	}
	if p, ok := r.Perm.Permissions(); ok && r.Kind == attdb.CharacteristicValue {
		g.PermDoc = []string{
			"Permissions: " + p.String(),
			fmt.Sprintf("Permissions: 0b%020b", r.Perm.Bits),
		}
	}
	if r.Value != nil {
		g.Value = byteLiteral(r.Value)
	}
	return g
}

func maxLengthExpr(r attdb.Record) string {
	length := r.MaxLength.String()
	if r.Trigger {
		return fmt.Sprintf("0x%04X | %s", attdb.TriggerIndication, length)
	}
	return length
}

func byteLiteral(b []byte) string {
	parts := make([]string, len(b))
	for i, v := range b {
		parts[i] = fmt.Sprintf("0x%02X", v)
	}
	return "[]byte{" + strings.Join(parts, ", ") + "}"
}
