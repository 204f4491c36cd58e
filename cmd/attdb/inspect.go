package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/go-ble/ble"
	"github.com/spf13/cobra"
	"github.com/srg/attdb/internal/attdb"
	"github.com/srg/attdb/internal/bledb"
	"github.com/srg/attdb/internal/gatt"
	"golang.org/x/term"
)

type inspectOptions struct {
	sourceFlags
	noColor   bool
	tableOnly bool
}

func newInspectCmd() *cobra.Command {
	opts := &inspectOptions{}
	cmd := &cobra.Command{
		Use:   "inspect <source>",
		Short: "Print the attribute table and GATT hierarchy of a source file",
		Long: `Compiles a source file and prints every attribute record followed by the
services, characteristics and descriptors the table describes. Known SIG UUIDs
are annotated with their names. Output is colorized when stdout is a terminal.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, args[0], opts)
		},
	}
	f := cmd.Flags()
	opts.register(f)
	f.BoolVar(&opts.noColor, "no-color", false, "Disable colorized output")
	f.BoolVar(&opts.tableOnly, "table-only", false, "Print the attribute table only")
	return cmd
}

func runInspect(cmd *cobra.Command, path string, opts *inspectOptions) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := opts.apply(cmd, cfg); err != nil {
		return err
	}
	cmd.SilenceUsage = true

	res, err := compileSource(path, cfg, configureLogger(cmd, cfg))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	colorize := !opts.noColor && isTerminal(out)
	if err := attdb.Dump(out, res.Database, attdb.DumpOptions{Color: colorize, Names: true}); err != nil {
		return err
	}
	if opts.tableOnly {
		return nil
	}
	fmt.Fprintln(out)
	return printProfile(out, res.Database.Profile(), colorize)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func describeUUID(u ble.UUID) string {
	s := gatt.FormatUUID(u)
	if name := bledb.Lookup(u); name != "" {
		s += " (" + name + ")"
	}
	return s
}

var propertyNames = []struct {
	prop ble.Property
	name string
}{
	{ble.CharBroadcast, "broadcast"},
	{ble.CharRead, "read"},
	{ble.CharWriteNR, "write-without-response"},
	{ble.CharWrite, "write"},
	{ble.CharNotify, "notify"},
	{ble.CharIndicate, "indicate"},
	{ble.CharSignedWrite, "signed-write"},
	{ble.CharExtended, "extended"},
}

func formatProperties(p ble.Property) string {
	var names []string
	for _, pn := range propertyNames {
		if p&pn.prop != 0 {
			names = append(names, pn.name)
		}
	}
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, ", ")
}

// printProfile writes the service hierarchy with attribute handles.
func printProfile(w io.Writer, p *ble.Profile, colorize bool) error {
	svcColor := color.New(color.FgCyan, color.Bold)
	charColor := color.New(color.FgGreen)
	for _, c := range []*color.Color{svcColor, charColor} {
		if colorize {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	for _, svc := range p.Services {
		if _, err := fmt.Fprintf(w, "%s  [%d-%d]\n",
			svcColor.Sprint("Service "+describeUUID(svc.UUID)), svc.Handle, svc.EndHandle); err != nil {
			return err
		}
		for _, char := range svc.Characteristics {
			fmt.Fprintf(w, "  %s  value %d  props: %s\n",
				charColor.Sprint("Characteristic "+describeUUID(char.UUID)), char.ValueHandle, formatProperties(char.Property))
			for _, desc := range char.Descriptors {
				fmt.Fprintf(w, "    Descriptor %s  handle %d  %q\n", describeUUID(desc.UUID), desc.Handle, desc.Value)
			}
		}
	}
	return nil
}
