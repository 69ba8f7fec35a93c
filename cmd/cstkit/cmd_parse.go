package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dhamidi/cstkit/cst"
	"github.com/dhamidi/cstkit/format"
	"github.com/dhamidi/cstkit/grammar"
	"github.com/dhamidi/cstkit/trace"
)

func newParseCmd(logs *logFlags) *cobra.Command {
	var flags grammarFlags
	var start string
	var outputFormat string
	var jobs int

	cmd := &cobra.Command{
		Use:   "parse <file>...",
		Short: "Parse files with a grammar and print the results",
		Long: `Parse files with a grammar and print the results.

A file named "-" is read from standard input. Files are parsed in
parallel and printed in the order given. The command fails if any file
has parse errors.`,
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var lang *grammar.Language
			var opts []grammar.Option
			if logs.trace {
				first := func(kind cst.RuleKind) []cst.TokenKind { return lang.FirstSet(kind) }
				opts = append(opts, grammar.WithTracer(trace.Default(trace.WithFirstSets(first))))
				jobs = 1
			}

			var err error
			lang, err = flags.compile(opts...)
			if err != nil {
				return err
			}
			kind := cst.RuleKind(start)
			if !lang.HasRule(kind) {
				return fmt.Errorf("grammar %s has no rule %s", lang.Name(), start)
			}

			enc, err := format.New(outputFormat, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			docs, err := parseFiles(cmd.Context(), lang, kind, args, jobs)
			if err != nil {
				return err
			}

			invalid := 0
			for _, doc := range docs {
				if err := enc.Encode(doc); err != nil {
					return fmt.Errorf("encode %s: %w", doc.Filename, err)
				}
				if !doc.Output.IsValid() {
					invalid++
				}
			}
			if invalid > 0 {
				return fmt.Errorf("%d of %d files have errors", invalid, len(docs))
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&start, "start", "s", "", "rule to parse each file as")
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "tree", "output format ("+strings.Join(format.Names, ", ")+")")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", runtime.NumCPU(), "number of files parsed at the same time")
	cmd.MarkFlagRequired("start")

	return cmd
}

func readSource(filename string) (string, error) {
	var data []byte
	var err error
	if filename == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(filename)
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", filename, err)
	}
	return string(data), nil
}

// parseFiles parses files with at most jobs parses running at once. The
// documents are returned in the order of files.
func parseFiles(ctx context.Context, lang *grammar.Language, kind cst.RuleKind, files []string, jobs int) ([]*format.Document, error) {
	docs := make([]*format.Document, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(jobs, 1))
	for i, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			src, err := readSource(file)
			if err != nil {
				return err
			}
			docs[i] = format.NewDocument(file, src, lang.Parse(kind, src))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}
