package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dhamidi/cstkit/cst"
	"github.com/dhamidi/cstkit/lsp"
)

func newLSPCmd() *cobra.Command {
	var flags grammarFlags
	var start string

	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Start a Language Server Protocol server reporting parse errors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lang, err := flags.compile()
			if err != nil {
				return err
			}
			if !lang.HasRule(cst.RuleKind(start)) {
				return fmt.Errorf("grammar %s has no rule %s", lang.Name(), start)
			}
			server := lsp.NewServer(lang, cst.RuleKind(start), "0.1.0")
			return server.RunStdio()
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&start, "start", "s", "", "rule to parse documents as")
	cmd.MarkFlagRequired("start")

	return cmd
}
