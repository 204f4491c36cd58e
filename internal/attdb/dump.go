package attdb

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/srg/attdb/internal/bledb"
	"github.com/srg/attdb/internal/gatt"
)

// DumpOptions controls Dump output.
type DumpOptions struct {
	Color bool // colorize record kinds
	Names bool // append known UUID names
}

// Dump writes the attribute table as an aligned text table.
func Dump(w io.Writer, db *Database, opts DumpOptions) error {
	kindColors := map[Kind]*color.Color{
		ServiceDeclaration:        color.New(color.FgCyan, color.Bold),
		CharacteristicDeclaration: color.New(color.FgYellow),
		CharacteristicValue:       color.New(color.FgGreen),
		UserDescription:           color.New(color.FgMagenta),
	}
	for _, c := range kindColors {
		if opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "idx\tkind\ttype\tperm\tmax\tlen\tvalue")
	for _, r := range db.records {
		typ := gatt.FormatUUID(r.UUID)
		if opts.Names {
			if name := bledb.Lookup(r.UUID); name != "" {
				typ += " (" + name + ")"
			}
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%d\t%s\n",
			r.Index, kindColors[r.Kind].Sprint(r.Kind.String()), typ, r.Perm, r.maxLengthString(), r.Length, formatValue(r))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	starts := make([]string, len(db.serviceStarts))
	for i, s := range db.serviceStarts {
		starts[i] = fmt.Sprint(s)
	}
	_, err := fmt.Fprintf(w, "records: %d  services: [%s]\n", db.Len(), strings.Join(starts, ", "))
	return err
}

func formatValue(r *Record) string {
	switch {
	case r.Value == nil:
		return "-"
	case r.Kind == UserDescription:
		return fmt.Sprintf("%q", r.Value)
	default:
		return fmt.Sprintf("[% X]", r.Value)
	}
}
