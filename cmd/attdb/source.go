package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/srg/attdb/compiler"
	"github.com/srg/attdb/pkg/config"
)

// sourceFlags are shared by every command that compiles a source file.
type sourceFlags struct {
	grammar string
	consts  []string
}

func (s *sourceFlags) register(f *pflag.FlagSet) {
	f.StringVar(&s.grammar, "grammar", "", "Source grammar: auto, records or entries (default from config)")
	f.StringArrayVar(&s.consts, "const", nil, "Value of a deferred length, NAME=N (repeatable)")
}

// apply overrides cfg with the flags the user actually set.
func (s *sourceFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	if cmd.Flags().Changed("grammar") {
		cfg.Grammar = s.grammar
	}
	for _, kv := range s.consts {
		name, value, ok := strings.Cut(kv, "=")
		name = strings.ReplaceAll(strings.TrimSpace(name), "::", ".")
		if !ok || name == "" {
			return fmt.Errorf("%w: --const %q (want NAME=N)", ErrInvalidFlag, kv)
		}
		n, err := strconv.ParseUint(strings.TrimSpace(value), 0, 16)
		if err != nil {
			return fmt.Errorf("%w: --const %q: value must fit 16 bits", ErrInvalidFlag, kv)
		}
		if cfg.Constants == nil {
			cfg.Constants = make(map[string]uint16)
		}
		cfg.Constants[name] = uint16(n)
	}
	return nil
}

func compileSource(path string, cfg *config.Config, logger *logrus.Logger) (*compiler.Result, error) {
	grammar, err := compiler.ParseGrammar(cfg.Grammar)
	if err != nil {
		return nil, err
	}
	return compiler.CompileFile(path, compiler.Options{
		Grammar:   grammar,
		Constants: cfg.Constants,
		Logger:    logger,
	})
}
