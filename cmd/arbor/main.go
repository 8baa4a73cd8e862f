package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/arbor-lang/arbor/internal/program"
	"github.com/arbor-lang/arbor/internal/workspace"
)

var version = "dev"

// Exit codes.
const (
	exitOK       = 0
	exitProblems = 1
	exitError    = 2
)

// errProblems is returned by check when the workspace needed repairs.
var errProblems = errors.New("problems found")

// rootOptions holds the persistent flags.
type rootOptions struct {
	workspace string
	logLevel  string
	logger    *slog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "arbor",
		Short: "Structural code editor core",
		Long: "Structural code editor core.\n" +
			"\n" +
			"arbor loads a YAML workspace of typed code trees, repairs them, queries\n" +
			"the insert menu and serves editor sessions over JSON-RPC.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(cmd.ErrOrStderr(), opts.logLevel)
			if err != nil {
				return err
			}
			opts.logger = logger
			slog.SetDefault(logger)
			return nil
		},
	}
	cmd.PersistentFlags().StringVarP(&opts.workspace, "workspace", "w", "arbor.yaml",
		"Workspace file to load")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn",
		"Log level: debug, info, warn or error")

	cmd.AddCommand(newCheckCmd(opts))
	cmd.AddCommand(newOptionsCmd(opts))
	cmd.AddCommand(newDumpCmd(opts))
	cmd.AddCommand(newServeCmd(opts))
	return cmd
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("--log-level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

func (o *rootOptions) load() (*workspace.Workspace, error) {
	ws, err := workspace.Load(o.workspace)
	if err != nil {
		return nil, err
	}
	o.logger.Debug("workspace loaded", "path", o.workspace, "name", ws.Name,
		"locations", len(ws.Programs.Locations()))
	return ws, nil
}

// parseLocation reads "kind:name", e.g. "function:label".
func parseLocation(ws *workspace.Workspace, s string) (program.Location, error) {
	kind, name, ok := strings.Cut(s, ":")
	if !ok {
		return program.Location{}, fmt.Errorf("location %q: want kind:name", s)
	}
	loc, ok := ws.Programs.Find(program.Kind(kind), name)
	if !ok {
		return program.Location{}, fmt.Errorf("location %q: %w", s, program.ErrUnknownLocation)
	}
	return loc, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	switch {
	case err == nil:
		os.Exit(exitOK)
	case errors.Is(err, errProblems):
		os.Exit(exitProblems)
	default:
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(exitError)
	}
}
