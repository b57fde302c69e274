// Package cli wires the bingers commands to the tracker.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"bingers/internal/config"
	"bingers/internal/prompt"
	"bingers/internal/store"
	"bingers/internal/tracker"
	"bingers/internal/tvmaze"
	"bingers/internal/util"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const attribution = "Data provided by TVmaze.com (https://www.tvmaze.com)."

type globalOptions struct {
	configPath string
	dataDir    string
	verbose    bool
}

// app holds what a command needs once config is loaded.
type app struct {
	cfg     config.Config
	logger  zerolog.Logger
	store   *store.Store
	tracker *tracker.Tracker
}

// NewRootCmd builds the bingers command tree.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "bingers",
		Short: "Keep track of the TV shows you watch",
		Long: `bingers keeps a local list of the TV shows you follow and how far you got.

Shows are looked up on TVmaze. Subscriptions are stored in
$XDG_DATA_HOME/bingers/subscriptions.yaml unless data_dir says otherwise.

` + attribution,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/bingers/config.yaml)")
	root.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "", "directory holding the subscription file")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log HTTP requests and other diagnostics to stderr")

	root.AddCommand(
		newAddCmd(opts),
		newRemoveCmd(opts),
		newListCmd(opts),
		newWatchedCmd(opts),
		newUpdateCmd(opts),
	)
	return root
}

// Execute runs the command tree and prints any error in red on stderr.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRootCmd()
	err := root.ExecuteContext(ctx)
	if err != nil {
		printError(root.ErrOrStderr(), err)
	}
	return err
}

func printError(w io.Writer, err error) {
	var ambiguous *store.AmbiguousError
	switch {
	case errors.As(err, &ambiguous):
		fmt.Fprintf(w, "%s %v\n", util.RedBold("Error:"), err)
		fmt.Fprintln(w, util.Yellow("  Use a longer part of the title."))
	case errors.Is(err, tvmaze.ErrShowNotFound), errors.Is(err, store.ErrNotFound), errors.Is(err, tracker.ErrNoMatches):
		fmt.Fprintf(w, "%s %v\n", util.Red("Not found:"), err)
	default:
		fmt.Fprintf(w, "%s %v\n", util.RedBold("Error:"), err)
	}
}

// setup loads the config and opens the store. It runs inside each command
// so that help and completion work without a readable store.
func setup(cmd *cobra.Command, opts *globalOptions) (*app, error) {
	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.dataDir != "" {
		cfg.DataDir = opts.dataDir
	}

	logger, err := newLogger(cmd.ErrOrStderr(), cfg.Log.Level, opts.verbose)
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("data_dir", cfg.DataDir).Str("tvmaze", cfg.TVMaze.BaseURL).Msg("config loaded")

	st, err := store.Open(cfg.StorePath())
	if err != nil {
		return nil, err
	}

	client := tvmaze.NewClient(cfg, logger)
	p := prompt.New(cmd.InOrStdin(), cmd.OutOrStdout())
	tr := tracker.New(client, st, p, cmd.OutOrStdout(), logger, tracker.Options{
		Status:   cfg.Search.Status,
		Language: cfg.Search.Language,
		Activity: newActivity(cmd.ErrOrStderr()),
	})

	return &app{cfg: cfg, logger: logger, store: st, tracker: tr}, nil
}

// abortedOK turns a user abort into a plain message.
func abortedOK(cmd *cobra.Command, err error) error {
	if errors.Is(err, prompt.ErrAborted) {
		fmt.Fprintln(cmd.OutOrStdout(), util.Yellow("Aborted."))
		return nil
	}
	return err
}
