package tracker

import (
	"context"
	"errors"
	"fmt"

	"bingers/internal/util"
)

// List prints the subscriptions as a table.
func (t *Tracker) List(_ context.Context) error {
	subs := t.store.Subscriptions()
	if len(subs) == 0 {
		t.printf("No subscriptions yet. Add one with %s.\n", util.Cyan("bingers add <SHOW>"))
		return nil
	}
	t.printf("%s\n", t.tables.subscriptions(subs))
	t.printf("%s\n", util.Gray(util.Plural(len(subs), "show")))
	return nil
}

// ListEpisodes prints, per subscription, the aired episodes after the
// last-watched pointer and the next upcoming one. A failing show does not
// stop the others; all failures are returned together.
func (t *Tracker) ListEpisodes(ctx context.Context) error {
	subs := t.store.Subscriptions()
	if len(subs) == 0 {
		t.printf("No subscriptions yet. Add one with %s.\n", util.Cyan("bingers add <SHOW>"))
		return nil
	}

	now := t.opts.Now()
	var errs []error
	total := 0
	for _, sub := range subs {
		done := t.opts.Activity(fmt.Sprintf("Fetching episodes of '%s'...", sub.Title))
		episodes, err := t.catalog.Episodes(ctx, sub.ID)
		done()

		t.printf("\n%s %s\n", util.BlueBold(sub.Title), util.Gray("("+sub.Network+")"))
		if err != nil {
			t.printf("  %s %v\n", util.RedBold("!!! ERROR"), err)
			errs = append(errs, fmt.Errorf("'%s': %w", sub.Title, err))
			continue
		}

		unwatched := unwatchedAired(episodes, sub.LastWatched, now)
		total += len(unwatched)
		if len(unwatched) == 0 {
			t.printf("  %s\n", util.Green("Up to date."))
		} else {
			t.printf("%s\n", t.tables.episodes(unwatched))
		}

		for _, ep := range episodes {
			if !ep.Aired(now) && !sub.Watched(refOf(ep)) {
				when := ep.Airdate
				if when == "" {
					when = "TBA"
				}
				t.printf("  Next: %s '%s' airs %s\n", util.Cyan(refOf(ep).String()), ep.Name, util.Yellow(when))
				break
			}
		}
	}

	t.printf("\n%s\n", util.Gray(util.Plural(total, "unwatched episode")))
	return errors.Join(errs...)
}
