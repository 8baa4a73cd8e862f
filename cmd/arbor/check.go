package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/arbor-lang/arbor/internal/diag"
	"github.com/arbor-lang/arbor/internal/validate"
	"github.com/arbor-lang/arbor/internal/workspace"
)

type checkOptions struct {
	watch       bool
	json        bool
	metricsFile string
	maxPasses   int
}

func newCheckCmd(root *rootOptions) *cobra.Command {
	var opts checkOptions
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Repair every location of the workspace and report what was fixed",
		Long: "Repair every location of the workspace and report what was fixed.\n" +
			"\n" +
			"Return types, dangling variable references and struct literals that\n" +
			"drifted from their definitions are repaired in memory. The workspace\n" +
			"file is never rewritten.\n" +
			"\n" +
			"Exit codes: 0 when nothing needed fixing, 1 when problems were found,\n" +
			"2 on error.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if opts.watch {
				return watchWorkspace(cmd.Context(), root, func() {
					if err := runCheck(cmd.Context(), out, root, opts); err != nil && !errors.Is(err, errProblems) {
						fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
					}
				})
			}
			return runCheck(cmd.Context(), out, root, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.watch, "watch", false,
		"Re-run whenever the workspace file changes")
	cmd.Flags().BoolVar(&opts.json, "json", false,
		"Print diagnostics as JSON")
	cmd.Flags().StringVar(&opts.metricsFile, "metrics-file", "",
		"Write Prometheus metrics to this file after each run")
	cmd.Flags().IntVar(&opts.maxPasses, "max-passes", validate.DefaultMaxPasses,
		"Fix passes per location before giving up")
	return cmd
}

func runCheck(ctx context.Context, out io.Writer, root *rootOptions, opts checkOptions) error {
	ws, err := root.load()
	if err != nil {
		if ds := workspace.Diagnostics(err); len(ds) > 1 {
			diag.NewFormatter(out).FormatAll(ds)
			return fmt.Errorf("%s: %d problems in workspace", root.workspace, len(ds))
		}
		return err
	}
	report, err := validate.Run(ctx, ws.Env, ws.Programs,
		validate.WithLogger(root.logger),
		validate.WithMaxPasses(opts.maxPasses))
	if err != nil {
		return err
	}

	if opts.json {
		ds := report.Diagnostics
		if ds == nil {
			ds = []diag.Diagnostic{}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(ds); err != nil {
			return fmt.Errorf("encode diagnostics: %w", err)
		}
	} else {
		diag.NewFormatter(out).FormatAll(report.Diagnostics)
	}

	if opts.metricsFile != "" {
		if err := prometheus.WriteToTextfile(opts.metricsFile, prometheus.DefaultGatherer); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}

	if len(report.Diagnostics) > 0 {
		return errProblems
	}
	return nil
}

// watchWorkspace calls run once, then again after every change to the
// workspace file, until ctx is done. The directory is watched so editors that
// replace the file on save are still seen.
func watchWorkspace(ctx context.Context, root *rootOptions, run func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	path, err := filepath.Abs(root.workspace)
	if err != nil {
		return fmt.Errorf("resolve workspace path: %w", err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}

	run()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !affectsFile(event, path) {
				continue
			}
			root.logger.Info("workspace changed", "path", event.Name, "op", event.Op.String())
			run()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			root.logger.Warn("watcher error", "err", err)
		}
	}
}

func affectsFile(event fsnotify.Event, path string) bool {
	if filepath.Clean(event.Name) != path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}
