// Package tracker implements the user-facing flows of bingers: adding,
// removing and listing subscriptions, and recording watch progress.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"bingers/internal/prompt"
	"bingers/internal/store"
	"bingers/internal/tvmaze"
	"bingers/internal/util"

	"github.com/rs/zerolog"
)

var ErrNoMatches = errors.New("no shows found")

// Catalog is the read-only show metadata source.
type Catalog interface {
	SearchShows(ctx context.Context, query string) ([]tvmaze.SearchResult, error)
	Show(ctx context.Context, id int) (tvmaze.Show, error)
	Episodes(ctx context.Context, showID int) ([]tvmaze.Episode, error)
	ShowUpdates(ctx context.Context, since string) (map[int]int64, error)
}

type Prompter interface {
	Confirm(question string, defaultYes bool) (bool, error)
	Choose(title string, options []string) (int, error)
	String(question string) (string, error)
}

type Options struct {
	// Search results are narrowed to this status and language when any
	// result matches; empty disables the filter.
	Status   string
	Language string

	Now func() time.Time
	// Activity is called around slow network calls; the returned func
	// ends the activity.
	Activity func(msg string) func()
}

type Tracker struct {
	catalog Catalog
	store   *store.Store
	prompt  Prompter
	out     io.Writer
	logger  zerolog.Logger
	opts    Options
	tables  tableRenderer
}

func New(catalog Catalog, st *store.Store, p Prompter, out io.Writer, logger zerolog.Logger, opts Options) *Tracker {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Activity == nil {
		opts.Activity = func(string) func() { return func() {} }
	}
	return &Tracker{catalog: catalog, store: st, prompt: p, out: out, logger: logger, opts: opts, tables: newTableRenderer(out)}
}

func (t *Tracker) printf(format string, args ...any) {
	fmt.Fprintf(t.out, format, args...)
}

// Add searches TVmaze for title, lets the user pick and confirm a show,
// optionally records already-watched episodes and persists the result.
func (t *Tracker) Add(ctx context.Context, title string) (store.Subscription, error) {
	done := t.opts.Activity(fmt.Sprintf("Searching TVmaze for '%s'...", title))
	results, err := t.catalog.SearchShows(ctx, title)
	done()
	if err != nil {
		return store.Subscription{}, fmt.Errorf("unable to search for show '%s': %w", title, err)
	}

	candidates := t.filterCandidates(results)
	if len(candidates) == 0 {
		return store.Subscription{}, fmt.Errorf("%w for '%s'", ErrNoMatches, title)
	}

	chosen := candidates[0]
	if len(candidates) > 1 {
		labels := make([]string, len(candidates))
		for i, show := range candidates {
			labels[i] = showLabel(show)
		}
		idx, err := t.prompt.Choose(fmt.Sprintf("Found %s matching '%s':", util.Plural(len(candidates), "show"), title), labels)
		if err != nil {
			return store.Subscription{}, err
		}
		chosen = candidates[idx]
	}

	if existing, ok := t.store.Get(chosen.ID); ok {
		return existing, fmt.Errorf("%w: '%s'", store.ErrAlreadySubscribed, existing.Title)
	}

	if summary := chosen.PlainSummary(); summary != "" {
		t.printf("%s\n", util.Gray(util.Truncate(summary, 200)))
	}
	ok, err := t.prompt.Confirm(fmt.Sprintf("Add '%s'?", showLabel(chosen)), true)
	if err != nil {
		return store.Subscription{}, err
	}
	if !ok {
		return store.Subscription{}, prompt.ErrAborted
	}

	sub := subscriptionFromShow(chosen)

	watched, err := t.prompt.Confirm(fmt.Sprintf("Have you already watched episodes of '%s'?", chosen.Name), false)
	if err != nil {
		return store.Subscription{}, err
	}
	if watched {
		ref, err := t.askLastWatched(ctx, chosen)
		if err != nil {
			return store.Subscription{}, err
		}
		sub.LastWatched = ref
	}

	if err := t.store.Add(sub); err != nil {
		return store.Subscription{}, err
	}
	if err := t.store.Save(); err != nil {
		return store.Subscription{}, err
	}

	t.logger.Debug().Int("id", sub.ID).Str("title", sub.Title).Msg("subscription added")
	t.printf("%s Added %s%s\n", util.GreenBold("✓"), util.Bold(sub.Title),
		util.Iif(sub.LastWatched != nil, fmt.Sprintf(" (watched up to %s)", progress(sub)), ""))
	return sub, nil
}

// Remove asks for confirmation and drops the subscription matching title.
func (t *Tracker) Remove(_ context.Context, title string) (store.Subscription, error) {
	sub, err := t.resolve(title)
	if err != nil {
		return store.Subscription{}, err
	}

	ok, err := t.prompt.Confirm(fmt.Sprintf("Remove '%s'?", sub.Title), false)
	if err != nil {
		return store.Subscription{}, err
	}
	if !ok {
		return store.Subscription{}, prompt.ErrAborted
	}

	removed, err := t.store.Remove(sub.ID)
	if err != nil {
		return store.Subscription{}, err
	}
	if err := t.store.Save(); err != nil {
		return store.Subscription{}, err
	}

	t.logger.Debug().Int("id", removed.ID).Str("title", removed.Title).Msg("subscription removed")
	t.printf("%s Removed %s\n", util.GreenBold("✓"), util.Bold(removed.Title))
	return removed, nil
}

// resolve finds a subscription by title, asking the user to pick when the
// title is ambiguous.
func (t *Tracker) resolve(title string) (store.Subscription, error) {
	sub, err := t.store.Find(title)
	var ambiguous *store.AmbiguousError
	if !errors.As(err, &ambiguous) {
		return sub, err
	}

	labels := make([]string, len(ambiguous.Matches))
	for i, m := range ambiguous.Matches {
		labels[i] = fmt.Sprintf("%s (%s)", m.Title, m.Network)
	}
	idx, err := t.prompt.Choose(fmt.Sprintf("'%s' matches several subscriptions:", title), labels)
	if err != nil {
		return store.Subscription{}, err
	}
	return ambiguous.Matches[idx], nil
}

func (t *Tracker) filterCandidates(results []tvmaze.SearchResult) []tvmaze.Show {
	all := make([]tvmaze.Show, 0, len(results))
	filtered := make([]tvmaze.Show, 0, len(results))
	for _, r := range results {
		all = append(all, r.Show)
		if t.opts.Status != "" && !strings.EqualFold(r.Show.Status, t.opts.Status) {
			continue
		}
		if t.opts.Language != "" && !strings.EqualFold(r.Show.Language, t.opts.Language) {
			continue
		}
		filtered = append(filtered, r.Show)
	}
	if len(filtered) == 0 && len(all) > 0 {
		t.logger.Debug().Str("status", t.opts.Status).Str("language", t.opts.Language).
			Msg("no search result passed the filter, showing all results")
		return all
	}
	return filtered
}

func (t *Tracker) askLastWatched(ctx context.Context, show tvmaze.Show) (*store.EpisodeRef, error) {
	done := t.opts.Activity(fmt.Sprintf("Fetching episodes of '%s'...", show.Name))
	episodes, err := t.catalog.Episodes(ctx, show.ID)
	done()
	if err != nil {
		return nil, fmt.Errorf("unable to fetch episodes of '%s': %w", show.Name, err)
	}

	aired := airedEpisodes(episodes, t.opts.Now())
	if len(aired) == 0 {
		t.printf("%s No episodes of '%s' have aired yet.\n", util.Yellow("[INFO]"), show.Name)
		return nil, nil
	}

	t.printf("%s\n", t.tables.episodes(aired))
	for attempt := 0; attempt < 3; attempt++ {
		answer, err := t.prompt.String("Last watched episode (e.g. S01E05, 'latest', empty for none):")
		if err != nil {
			return nil, err
		}
		switch strings.ToLower(answer) {
		case "":
			return nil, nil
		case "latest", "all":
			ref := refOf(aired[len(aired)-1])
			return &ref, nil
		}
		ref, err := store.ParseEpisodeRef(answer)
		if err != nil {
			t.printf("%s %v\n", util.Yellow("?"), err)
			continue
		}
		if _, ok := findEpisode(aired, ref); !ok {
			t.printf("%s %s is not an aired episode of '%s'.\n", util.Yellow("?"), ref, show.Name)
			continue
		}
		return &ref, nil
	}
	return nil, errors.New("no valid episode after 3 attempts")
}

func subscriptionFromShow(show tvmaze.Show) store.Subscription {
	return store.Subscription{
		ID:        show.ID,
		Title:     show.Name,
		Network:   show.NetworkName(),
		Status:    show.Status,
		Runtime:   show.RuntimeMinutes(),
		Language:  show.Language,
		Premiered: show.Premiered,
		Updated:   show.Updated,
	}
}

func showLabel(show tvmaze.Show) string {
	details := []string{show.NetworkName()}
	if year := show.PremieredYear(); year != "" {
		details = append(details, year)
	}
	if show.Status != "" {
		details = append(details, show.Status)
	}
	return fmt.Sprintf("%s (%s)", show.Name, strings.Join(details, ", "))
}

func progress(sub store.Subscription) string {
	if sub.LastWatched == nil {
		return "-"
	}
	return sub.LastWatched.String()
}
