package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newKeywordsCmd() *cobra.Command {
	var flags grammarFlags

	cmd := &cobra.Command{
		Use:   "keywords",
		Short: "List the keywords of a grammar and whether they are enabled and reserved",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lang, err := flags.compile()
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CONTEXT\tKEYWORD\tKIND\tENABLED\tRESERVED")
			for _, ctx := range lang.Contexts() {
				for _, kw := range lang.Lexer(ctx).Keywords() {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%t\n", ctx, kw.Text, kw.Kind, kw.Enabled, kw.Reserved)
				}
			}
			return tw.Flush()
		},
	}

	flags.register(cmd)

	return cmd
}
