package tracker

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"bingers/internal/store"
	"bingers/internal/tvmaze"
	"bingers/internal/util"
)

// UpdateStats summarises one Update run.
type UpdateStats struct {
	Checked int
	// Changed counts every subscription rewritten, noted or not.
	Changed int
	Failed  int
}

// Update refreshes the stored metadata of every subscription. Unless force
// is set, only shows whose TVmaze update stamp moved are fetched.
func (t *Tracker) Update(ctx context.Context, force bool) (UpdateStats, error) {
	var stats UpdateStats
	subs := t.store.Subscriptions()
	if len(subs) == 0 {
		return stats, nil
	}

	var stamps map[int]int64
	if !force {
		done := t.opts.Activity("Checking TVmaze for updates...")
		var err error
		stamps, err = t.catalog.ShowUpdates(ctx, "")
		done()
		if err != nil {
			return stats, fmt.Errorf("unable to fetch show updates: %w", err)
		}
	}

	var errs []error
	dirty := false
	for _, sub := range subs {
		if !force {
			if ts, ok := stamps[sub.ID]; ok && ts == sub.Updated {
				continue
			}
		}
		stats.Checked++

		done := t.opts.Activity(fmt.Sprintf("Updating '%s'...", sub.Title))
		show, err := t.catalog.Show(ctx, sub.ID)
		done()
		if err != nil {
			stats.Failed++
			t.printf("  %s %s: %v\n", util.RedBold("!!! ERROR"), sub.Title, err)
			errs = append(errs, fmt.Errorf("'%s': %w", sub.Title, err))
			continue
		}

		updated, notes := applyShow(sub, show)
		for _, note := range notes {
			t.printf("  %s %s\n", util.Cyan("[UPDATE]"), note)
		}
		if updated != sub {
			if err := t.store.Update(updated); err != nil {
				return stats, err
			}
			dirty = true
			stats.Changed++
		}
	}

	if dirty {
		if err := t.store.Save(); err != nil {
			return stats, err
		}
	}

	parts := []string{
		"Subscribed: " + util.BlueBold(strconv.Itoa(len(subs))),
		"Checked: " + util.Blue(strconv.Itoa(stats.Checked)),
		"Changed: " + util.GreenBold(strconv.Itoa(stats.Changed)),
	}
	if stats.Failed > 0 {
		parts = append(parts, "Failed: "+util.RedBold(strconv.Itoa(stats.Failed)))
	}
	t.printf("%s %s\n", util.Cyan("[Run Stats]"), strings.Join(parts, " | "))
	return stats, errors.Join(errs...)
}

// applyShow copies fresh metadata onto sub and describes the changes a
// user would care about. Watch progress is kept.
func applyShow(sub store.Subscription, show tvmaze.Show) (store.Subscription, []string) {
	fresh := subscriptionFromShow(show)
	fresh.LastWatched = sub.LastWatched

	var notes []string
	if fresh.Title != sub.Title {
		notes = append(notes, fmt.Sprintf("'%s' changed to '%s'", sub.Title, fresh.Title))
	}
	if fresh.Status != sub.Status {
		notes = append(notes, fmt.Sprintf("%s: changed from %s to %s", fresh.Title, util.Yellow(sub.Status), util.YellowBold(fresh.Status)))
	}
	if fresh.Network != sub.Network {
		notes = append(notes, fmt.Sprintf("%s: moved from %s to %s", fresh.Title, sub.Network, fresh.Network))
	}
	return fresh, notes
}
