package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dhamidi/cstkit/ebnf"
	"github.com/dhamidi/cstkit/grammar"
)

// grammarFlags are the flags of every command that compiles a grammar.
type grammarFlags struct {
	file        string
	version     string
	trivia      []string
	identifier  string
	delimiters  []string
	terminators []string
}

func (f *grammarFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.file, "grammar", "g", "", "EBNF grammar file")
	cmd.Flags().StringVar(&f.version, "version", "1.0.0", "language version to compile the grammar for")
	cmd.Flags().StringSliceVar(&f.trivia, "trivia", nil, "lexical productions that are trivia")
	cmd.Flags().StringVar(&f.identifier, "identifier", "", "lexical production keywords are reserved from")
	cmd.Flags().StringSliceVar(&f.delimiters, "delimiters", nil, `delimiter pairs, separated by a space, as in "( ),[ ]"`)
	cmd.Flags().StringSliceVar(&f.terminators, "terminators", nil, "literals that end statements")
	cmd.MarkFlagRequired("grammar")
}

func (f *grammarFlags) options() ([]ebnf.Option, error) {
	opts := []ebnf.Option{
		ebnf.WithTrivia(f.trivia...),
		ebnf.WithTerminators(f.terminators...),
	}
	if f.identifier != "" {
		opts = append(opts, ebnf.WithIdentifier(f.identifier))
	}
	for _, pair := range f.delimiters {
		fields := strings.Fields(pair)
		if len(fields) != 2 {
			return nil, fmt.Errorf("delimiter pair %q: want an opening and a closing literal", pair)
		}
		opts = append(opts, ebnf.WithDelimiters(fields[0], fields[1]))
	}
	return opts, nil
}

func (f *grammarFlags) load() (*grammar.Grammar, error) {
	opts, err := f.options()
	if err != nil {
		return nil, err
	}
	g, err := ebnf.Load(f.file, opts...)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", f.file, err)
	}
	return g, nil
}

func (f *grammarFlags) compile(opts ...grammar.Option) (*grammar.Language, error) {
	g, err := f.load()
	if err != nil {
		return nil, err
	}
	lang, err := grammar.Compile(g, f.version, opts...)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", f.file, err)
	}
	return lang, nil
}
