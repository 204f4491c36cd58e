// Package compiler turns attribute database source into a compiled Database.
//
// Two source grammars are accepted. The nested-record grammar declares named
// services and characteristics with handler references; the explicit-entry
// grammar lists anonymous service and characteristic entries in table order.
package compiler

import (
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/srg/attdb/internal/attdb"
	"github.com/srg/attdb/internal/dispatch"
	"github.com/srg/attdb/internal/dsl"
	"github.com/srg/attdb/internal/gatt"
)

// Grammar selects the source syntax.
type Grammar string

const (
	GrammarAuto    Grammar = "auto"
	GrammarRecords Grammar = "records"
	GrammarEntries Grammar = "entries"
)

var ErrUnknownGrammar = errors.New("unknown grammar")

// ParseGrammar validates a grammar name. The empty string means auto.
func ParseGrammar(s string) (Grammar, error) {
	switch Grammar(s) {
	case "", GrammarAuto:
		return GrammarAuto, nil
	case GrammarRecords, GrammarEntries:
		return Grammar(s), nil
	}
	return "", fmt.Errorf("%w: %q (must be auto, records or entries)", ErrUnknownGrammar, s)
}

// Options configures a compilation.
type Options struct {
	File      string
	Grammar   Grammar
	Constants map[string]uint16
	Logger    *logrus.Logger
}

// Result is the output of one compilation unit.
type Result struct {
	Grammar  Grammar
	Services []*gatt.Service // nested-record grammar only
	Entries  []*gatt.Entry   // explicit-entry grammar only
	Database *attdb.Database
	Dispatch *dispatch.Table
}

// DetectGrammar picks the grammar from the first significant token: `{`
// starts the explicit-entry grammar, anything else the nested-record one.
func DetectGrammar(file string, src []byte) (Grammar, error) {
	tok, err := dsl.FirstToken(file, src)
	if err != nil {
		return "", err
	}
	if tok.Kind == dsl.LBrace {
		return GrammarEntries, nil
	}
	return GrammarRecords, nil
}

// CompileFile reads and compiles path.
func CompileFile(path string, opts Options) (*Result, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}
	if opts.File == "" {
		opts.File = path
	}
	return Compile(src, opts)
}

// Compile parses, validates and builds src. Nothing is returned on error.
func Compile(src []byte, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.New()
		logger.SetLevel(logrus.PanicLevel)
	}

	grammar, err := ParseGrammar(string(opts.Grammar))
	if err != nil {
		return nil, err
	}
	if grammar == GrammarAuto {
		if grammar, err = DetectGrammar(opts.File, src); err != nil {
			return nil, err
		}
	}

	log := logger.WithFields(logrus.Fields{"file": opts.File, "grammar": grammar})
	log.Debug("Compiling attribute database")

	builder := attdb.NewBuilder(attdb.WithLogger(logger), attdb.WithConstants(opts.Constants))
	res := &Result{Grammar: grammar}

	switch grammar {
	case GrammarRecords:
		root, err := dsl.ParseRecords(opts.File, src)
		if err != nil {
			return nil, err
		}
		if res.Services, err = gatt.ServicesFromRecords(root); err != nil {
			return nil, err
		}
		if res.Database, err = builder.Build(res.Services); err != nil {
			return nil, err
		}
	case GrammarEntries:
		list, err := dsl.ParseEntries(opts.File, src)
		if err != nil {
			return nil, err
		}
		if res.Entries, err = gatt.EntriesFromRecords(list); err != nil {
			return nil, err
		}
		if res.Database, err = builder.BuildEntries(res.Entries); err != nil {
			return nil, err
		}
	}

	res.Dispatch = dispatch.NewTable(res.Database)
	log.WithFields(logrus.Fields{
		"records":  res.Database.Len(),
		"services": res.Database.ServiceCount(),
	}).Info("Compiled attribute database")
	return res, nil
}
