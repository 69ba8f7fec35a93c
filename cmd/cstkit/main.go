package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"
)

type logFlags struct {
	verbose int
	logFile string
	trace   bool
}

func (f *logFlags) register(cmd *cobra.Command) {
	cmd.PersistentFlags().CountVarP(&f.verbose, "verbose", "v", "increase log verbosity (repeatable)")
	cmd.PersistentFlags().StringVar(&f.logFile, "log", "", "write logs to this file instead of stderr")
	cmd.PersistentFlags().BoolVar(&f.trace, "trace", false, "log every rule call of every parse (implies -vv)")
}

func (f *logFlags) configure() {
	verbosity := f.verbose
	if f.trace {
		verbosity = max(verbosity, 2)
	}
	var path *string
	if f.logFile != "" {
		path = &f.logFile
	}
	commonlog.Configure(verbosity, path)
}

func newRootCmd() *cobra.Command {
	var logs logFlags

	rootCmd := &cobra.Command{
		Use:   "cstkit",
		Short: "Compile grammars into error tolerant, lossless parsers",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logs.configure()
		},
	}
	logs.register(rootCmd)

	rootCmd.AddCommand(newParseCmd(&logs))
	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newKeywordsCmd())
	rootCmd.AddCommand(newLSPCmd())
	rootCmd.AddCommand(newWatchCmd())

	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
