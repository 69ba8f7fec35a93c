package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	"github.com/dhamidi/cstkit/cst"
	"github.com/dhamidi/cstkit/format"
	"github.com/dhamidi/cstkit/grammar"
)

// settle is how long a watcher waits after a change for more changes to
// the same files.
const settle = 100 * time.Millisecond

func newWatchCmd() *cobra.Command {
	var flags grammarFlags
	var start string

	cmd := &cobra.Command{
		Use:   "watch <file>...",
		Short: "Parse files again whenever they or the grammar change",
		Long: `Parse files again whenever they or the grammar change.

Each file is reported with its parse errors after every change. A
change to the grammar recompiles it and reports all files.`,
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			w := &watcher{
				flags: &flags,
				start: cst.RuleKind(start),
				files: args,
				out:   cmd.OutOrStdout(),
				log:   commonlog.GetLogger("cstkit.watch"),
			}
			return w.run(ctx)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&start, "start", "s", "", "rule to parse each file as")
	cmd.MarkFlagRequired("start")

	return cmd
}

type watcher struct {
	flags *grammarFlags
	start cst.RuleKind
	files []string
	out   io.Writer
	log   commonlog.Logger

	lang *grammar.Language
}

func (w *watcher) run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	// Editors often replace files instead of writing them, so the
	// directories are watched rather than the files.
	var dirs []string
	for _, file := range append([]string{w.flags.file}, w.files...) {
		dir := filepath.Dir(file)
		if slices.Contains(dirs, dir) {
			continue
		}
		if err := fsw.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		dirs = append(dirs, dir)
	}

	w.reload()

	pending := map[string]bool{}
	timer := time.NewTimer(settle)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			name := filepath.Clean(event.Name)
			if w.watched(name) {
				pending[name] = true
				timer.Reset(settle)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Errorf("watch: %s", err)
		case <-timer.C:
			if pending[filepath.Clean(w.flags.file)] {
				w.reload()
			} else {
				for _, file := range w.files {
					if pending[filepath.Clean(file)] {
						w.report(file)
					}
				}
			}
			clear(pending)
		}
	}
}

func (w *watcher) watched(name string) bool {
	if name == filepath.Clean(w.flags.file) {
		return true
	}
	for _, file := range w.files {
		if name == filepath.Clean(file) {
			return true
		}
	}
	return false
}

// reload compiles the grammar and reports every file.
func (w *watcher) reload() {
	lang, err := w.flags.compile()
	if err != nil {
		fmt.Fprintln(w.out, "grammar:")
		printErrors(w.out, err)
		return
	}
	if !lang.HasRule(w.start) {
		fmt.Fprintf(w.out, "grammar %s has no rule %s\n", lang.Name(), w.start)
		return
	}
	w.lang = lang
	w.log.Infof("compiled %s %s", lang.Name(), lang.Version())
	for _, file := range w.files {
		w.report(file)
	}
}

func (w *watcher) report(file string) {
	if w.lang == nil {
		return
	}
	src, err := readSource(file)
	if err != nil {
		fmt.Fprintln(w.out, err)
		return
	}
	doc := format.NewDocument(file, src, w.lang.Parse(w.start, src))
	if err := format.NewReportEncoder(w.out).Encode(doc); err != nil {
		w.log.Errorf("report %s: %s", file, err)
	}
}
