package main

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/srg/attdb/internal/codegen"
	"github.com/srg/attdb/pkg/config"
)

type compileOptions struct {
	sourceFlags
	format  string
	output  string
	pkg     string
	prefix  string
	taskID  uint16
	imports []string
}

func newCompileCmd() *cobra.Command {
	opts := &compileOptions{}
	cmd := &cobra.Command{
		Use:   "compile <source>",
		Short: "Compile a source file into an attribute table artifact",
		Long: `Compiles a service description into an attribute table.

The go format emits a Go source file holding the attribute array, the service
index array, the dispatch switches and a profile value bound to --task-id.
json and yaml emit a data artifact; table prints an aligned text table.
Nothing is written when compilation fails.`,
		Example: `  attdb compile temperature.attdb --package firmware --prefix Custs1 --task-id 0x3F -o attdb_gen.go
  attdb compile temperature.attdb --format json --const consts::TEMP_LEN=4`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(cmd, args[0], opts)
		},
	}

	f := cmd.Flags()
	opts.register(f)
	f.StringVarP(&opts.format, "format", "f", "", "Output format: go, json, yaml or table (default from config)")
	f.StringVarP(&opts.output, "output", "o", "", "Output file (default: stdout)")
	f.StringVar(&opts.pkg, "package", "", "Go package of the generated file")
	f.StringVar(&opts.prefix, "prefix", "", "Symbol prefix of the generated declarations")
	f.Uint16Var(&opts.taskID, "task-id", 0, "Task id the generated profile registers under")
	f.StringSliceVar(&opts.imports, "import", nil, "Import path providing handler references (repeatable)")
	return cmd
}

func (o *compileOptions) apply(cmd *cobra.Command, cfg *config.Config) error {
	if err := o.sourceFlags.apply(cmd, cfg); err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.Format = o.format
	}
	if flags.Changed("output") {
		cfg.Output = o.output
	}
	if flags.Changed("package") {
		cfg.Package = o.pkg
	}
	if flags.Changed("prefix") {
		cfg.Prefix = o.prefix
	}
	if flags.Changed("task-id") {
		cfg.TaskID = o.taskID
	}
	if flags.Changed("import") {
		cfg.Imports = o.imports
	}
	return cfg.Validate()
}

func runCompile(cmd *cobra.Command, path string, opts *compileOptions) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := opts.apply(cmd, cfg); err != nil {
		return err
	}
	format, err := codegen.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}

	// All arguments validated - don't show usage on runtime errors
	cmd.SilenceUsage = true

	logger := configureLogger(cmd, cfg)
	res, err := compileSource(path, cfg, logger)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := codegen.Emit(&buf, format, res.Database, codegen.Options{
		Package: cfg.Package,
		Prefix:  cfg.Prefix,
		TaskID:  cfg.TaskID,
		Source:  filepath.Base(path),
		Imports: cfg.Imports,
	}); err != nil {
		return err
	}

	if cfg.Output == "" {
		_, err := cmd.OutOrStdout().Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(cfg.Output, buf.Bytes(), 0o644); err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{
		"output": cfg.Output,
		"format": format,
		"bytes":  buf.Len(),
	}).Info("Wrote artifact")
	return nil
}
