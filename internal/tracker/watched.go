package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bingers/internal/store"
	"bingers/internal/tvmaze"
	"bingers/internal/util"
)

var (
	ErrEpisodeWithoutSeason = errors.New("an episode number requires a season")
	ErrEpisodeNotFound      = errors.New("episode not found")
	ErrNothingToMark        = errors.New("no unwatched aired episode left")
)

// WatchTarget selects what MarkWatched marks. Zero fields are unset:
// no fields marks the next episode, Season alone marks the whole season.
// Only an explicit Season and Episode may move the pointer back.
type WatchTarget struct {
	Season  int
	Episode int
}

// MarkWatched moves the last-watched pointer of the subscription matching
// title and returns the new pointer.
func (t *Tracker) MarkWatched(ctx context.Context, title string, target WatchTarget) (store.EpisodeRef, error) {
	if target.Episode > 0 && target.Season <= 0 {
		return store.EpisodeRef{}, ErrEpisodeWithoutSeason
	}

	sub, err := t.resolve(title)
	if err != nil {
		return store.EpisodeRef{}, err
	}

	done := t.opts.Activity(fmt.Sprintf("Fetching episodes of '%s'...", sub.Title))
	episodes, err := t.catalog.Episodes(ctx, sub.ID)
	done()
	if err != nil {
		return store.EpisodeRef{}, fmt.Errorf("unable to fetch episodes of '%s': %w", sub.Title, err)
	}

	ep, err := watchTarget(episodes, sub.LastWatched, target, t.opts.Now())
	if err != nil {
		return store.EpisodeRef{}, fmt.Errorf("'%s': %w", sub.Title, err)
	}

	ref := refOf(ep)
	sub.LastWatched = &ref
	if err := t.store.Update(sub); err != nil {
		return store.EpisodeRef{}, err
	}
	if err := t.store.Save(); err != nil {
		return store.EpisodeRef{}, err
	}

	t.printf("%s Marked %s %s %s as watched.\n", util.GreenBold("✓"), util.Bold(sub.Title), util.Cyan(ref.String()), util.Blue(fmt.Sprintf("'%s'", ep.Name)))
	if next, ok := nextUnwatched(episodes, &ref); ok {
		if next.Aired(t.opts.Now()) {
			t.printf("  Next up: %s '%s'\n", refOf(next), next.Name)
		} else if next.Airdate != "" {
			t.printf("  Next episode %s airs %s.\n", refOf(next), next.Airdate)
		}
	}
	return ref, nil
}

// watchTarget picks the episode the pointer should move to. episodes must
// be ordered by season and number.
func watchTarget(episodes []tvmaze.Episode, last *store.EpisodeRef, target WatchTarget, now time.Time) (tvmaze.Episode, error) {
	switch {
	case target.Season > 0 && target.Episode > 0:
		ref := store.EpisodeRef{Season: target.Season, Number: target.Episode}
		ep, ok := findEpisode(episodes, ref)
		if !ok {
			return tvmaze.Episode{}, fmt.Errorf("%w: %s", ErrEpisodeNotFound, ref)
		}
		return ep, nil

	case target.Season > 0:
		var (
			lastAired tvmaze.Episode
			found     bool
			inSeason  bool
		)
		for _, ep := range episodes {
			if ep.Season != target.Season {
				continue
			}
			inSeason = true
			if ep.Aired(now) {
				lastAired, found = ep, true
			}
		}
		if !inSeason {
			return tvmaze.Episode{}, fmt.Errorf("%w: season %d", ErrEpisodeNotFound, target.Season)
		}
		if !found {
			return tvmaze.Episode{}, fmt.Errorf("%w: season %d has not aired yet", ErrNothingToMark, target.Season)
		}
		if last != nil && !last.Less(refOf(lastAired)) {
			return tvmaze.Episode{}, fmt.Errorf("%w: season %d is already watched", ErrNothingToMark, target.Season)
		}
		return lastAired, nil

	default:
		next, ok := nextUnwatched(episodes, last)
		if !ok || !next.Aired(now) {
			return tvmaze.Episode{}, ErrNothingToMark
		}
		return next, nil
	}
}

// nextUnwatched returns the first episode after last, aired or not.
func nextUnwatched(episodes []tvmaze.Episode, last *store.EpisodeRef) (tvmaze.Episode, bool) {
	for _, ep := range episodes {
		if last == nil || last.Less(refOf(ep)) {
			return ep, true
		}
	}
	return tvmaze.Episode{}, false
}

func airedEpisodes(episodes []tvmaze.Episode, now time.Time) []tvmaze.Episode {
	aired := make([]tvmaze.Episode, 0, len(episodes))
	for _, ep := range episodes {
		if ep.Aired(now) {
			aired = append(aired, ep)
		}
	}
	return aired
}

// unwatchedAired returns aired episodes after last, oldest first.
func unwatchedAired(episodes []tvmaze.Episode, last *store.EpisodeRef, now time.Time) []tvmaze.Episode {
	var out []tvmaze.Episode
	for _, ep := range episodes {
		if last != nil && !last.Less(refOf(ep)) {
			continue
		}
		if ep.Aired(now) {
			out = append(out, ep)
		}
	}
	return out
}

func findEpisode(episodes []tvmaze.Episode, ref store.EpisodeRef) (tvmaze.Episode, bool) {
	for _, ep := range episodes {
		if ep.Season == ref.Season && ep.Number == ref.Number {
			return ep, true
		}
	}
	return tvmaze.Episode{}, false
}

func refOf(ep tvmaze.Episode) store.EpisodeRef {
	return store.EpisodeRef{Season: ep.Season, Number: ep.Number}
}
