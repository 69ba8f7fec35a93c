package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dhamidi/cstkit/ebnf"
)

func newCheckCmd() *cobra.Command {
	var flags grammarFlags
	var verifyStart string

	cmd := &cobra.Command{
		Use:           "check",
		Short:         "Compile a grammar and list its rules with the tokens they start with",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if verifyStart != "" {
				if err := verifyFile(flags.file, verifyStart); err != nil {
					printErrors(out, err)
					return err
				}
			}

			lang, err := flags.compile()
			if err != nil {
				printErrors(out, err)
				return err
			}

			fmt.Fprintf(out, "%s %s: %d rules in %d lexical contexts\n",
				lang.Name(), lang.Version(), len(lang.Rules()), len(lang.Contexts()))
			for _, kind := range lang.Rules() {
				var first []string
				for _, k := range lang.FirstSet(kind) {
					first = append(first, string(k))
				}
				fmt.Fprintf(out, "%s\t%s\n", kind, strings.Join(first, " "))
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&verifyStart, "verify", "", "also check that every production is reachable from this one")

	return cmd
}

func verifyFile(filename, start string) error {
	f, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	return ebnf.Verify(filename, f, start)
}

// printErrors prints one line per error if err is, or wraps, a list of
// errors.
func printErrors(w io.Writer, err error) {
	for e := err; e != nil; e = errors.Unwrap(e) {
		v := reflect.ValueOf(e)
		if v.Kind() == reflect.Slice {
			for i := 0; i < v.Len(); i++ {
				fmt.Fprintln(w, v.Index(i).Interface())
			}
			return
		}
	}
	fmt.Fprintln(w, err)
}
