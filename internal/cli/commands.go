package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bingers/internal/scheduler"
	"bingers/internal/tracker"

	"github.com/spf13/cobra"
)

func newAddCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "add <SHOW>",
		Short:   "Search TVmaze for a show and subscribe to it",
		Example: "  bingers add \"the orville\"\n  bingers add severance",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			_, err = a.tracker.Add(cmd.Context(), strings.Join(args, " "))
			return abortedOK(cmd, err)
		},
	}
}

func newRemoveCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:               "remove <SHOW>",
		Aliases:           []string{"rm"},
		Short:             "Unsubscribe from a show",
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: subscriptionCompletion(opts),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			_, err = a.tracker.Remove(cmd.Context(), strings.Join(args, " "))
			return abortedOK(cmd, err)
		},
	}
}

func newListCmd(opts *globalOptions) *cobra.Command {
	var shows, episodes bool
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List subscriptions, or the episodes still to watch",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			if episodes {
				return a.tracker.ListEpisodes(cmd.Context())
			}
			return a.tracker.List(cmd.Context())
		},
	}
	cmd.Flags().BoolVar(&shows, "shows", false, "list subscribed shows (default)")
	cmd.Flags().BoolVar(&episodes, "episodes", false, "list aired episodes not watched yet")
	cmd.MarkFlagsMutuallyExclusive("shows", "episodes")
	return cmd
}

func newWatchedCmd(opts *globalOptions) *cobra.Command {
	var target tracker.WatchTarget
	cmd := &cobra.Command{
		Use:   "watched <SHOW>",
		Short: "Mark episodes of a show as watched",
		Long: `Moves the last-watched pointer of a show.

Without flags the next aired episode is marked. --season alone marks the
last aired episode of that season. --season with --episode marks exactly
that episode, which may also move the pointer back.`,
		Example:           "  bingers watched orville\n  bingers watched orville --season 2\n  bingers watched orville --season 1 --episode 4",
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: subscriptionCompletion(opts),
		RunE: func(cmd *cobra.Command, args []string) error {
			if target.Season < 0 || target.Episode < 0 {
				return errors.New("--season and --episode must be positive")
			}
			a, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			_, err = a.tracker.MarkWatched(cmd.Context(), strings.Join(args, " "), target)
			return abortedOK(cmd, err)
		},
	}
	cmd.Flags().IntVarP(&target.Season, "season", "s", 0, "season to mark")
	cmd.Flags().IntVarP(&target.Episode, "episode", "e", 0, "episode within --season to mark")
	return cmd
}

func newUpdateCmd(opts *globalOptions) *cobra.Command {
	var (
		force bool
		watch bool
		spec  string
	)
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Refresh show metadata from TVmaze",
		Long: `Refreshes network, status and runtime of every subscription.

Only shows TVmaze reports as changed are fetched unless --force is given.
With --watch the update repeats on the cron schedule from the config
(schedule.cron_spec) or --cron until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := setup(cmd, opts)
			if err != nil {
				return err
			}

			cronSpec := ""
			if watch || spec != "" {
				cronSpec = spec
				if cronSpec == "" {
					cronSpec = a.cfg.Schedule.CronSpec
				}
				if cronSpec == "" {
					return errors.New("--watch needs a cron spec: set schedule.cron_spec or pass --cron")
				}
			}

			job := func(ctx context.Context) error {
				if cronSpec != "" {
					if err := a.store.Reload(); err != nil {
						return err
					}
				}
				stats, err := a.tracker.Update(ctx, force)
				a.logger.Debug().Int("checked", stats.Checked).Int("changed", stats.Changed).Int("failed", stats.Failed).Msg("update finished")
				if err != nil {
					return fmt.Errorf("%d of %d shows failed to update: %w", stats.Failed, stats.Checked, err)
				}
				return nil
			}
			return scheduler.Run(cmd.Context(), cronSpec, job, cmd.OutOrStdout(), a.logger)
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "fetch every show, even when TVmaze reports no change")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "keep running and update on a schedule")
	cmd.Flags().StringVar(&spec, "cron", "", "cron spec for --watch (implies --watch)")
	return cmd
}

// subscriptionCompletion completes subscribed show titles.
func subscriptionCompletion(opts *globalOptions) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		a, err := setup(cmd, opts)
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		var titles []string
		for _, sub := range a.store.Subscriptions() {
			if strings.HasPrefix(strings.ToLower(sub.Title), strings.ToLower(toComplete)) {
				titles = append(titles, sub.Title)
			}
		}
		return titles, cobra.ShellCompDirectiveNoFileComp
	}
}
