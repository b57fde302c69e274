package tracker

import (
	"context"
	"testing"

	"bingers/internal/store"
	"bingers/internal/tvmaze"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func darkShow() tvmaze.Show {
	return tvmaze.Show{
		ID: 17861, Name: "Dark", Language: "German", Status: "Ended",
		Runtime: intPtr(60), Premiered: "2017-12-01", WebChannel: &tvmaze.Network{ID: 1, Name: "Netflix"},
		Updated: 200,
	}
}

func updateFixture(t *testing.T) (*Tracker, *store.Store, *fakeCatalog) {
	t.Helper()
	cat := &fakeCatalog{
		shows:   map[int]tvmaze.Show{20263: orvilleShow(), 17861: darkShow()},
		updates: map[int]int64{20263: 1590000000, 17861: 200},
	}
	tr, st, _ := newTestTracker(t, cat, "")

	require.NoError(t, st.Add(orvilleSub()))
	dark := subscriptionFromShow(darkShow())
	dark.Status = "Running"
	dark.Updated = 100
	dark.LastWatched = &store.EpisodeRef{Season: 3, Number: 2}
	require.NoError(t, st.Add(dark))
	return tr, st, cat
}

func TestUpdate_FetchesOnlyChangedShows(t *testing.T) {
	tr, st, cat := updateFixture(t)
	out := tr.out.(interface{ String() string })

	stats, err := tr.Update(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, UpdateStats{Checked: 1, Changed: 1}, stats)
	assert.Equal(t, []int{17861}, cat.showCalls)

	assert.Contains(t, out.String(), "Dark: changed from Running to Ended")
	assert.Contains(t, out.String(), "Subscribed: 2 | Checked: 1 | Changed: 1")

	dark, ok := reopen(t, st).Get(17861)
	require.True(t, ok)
	assert.Equal(t, "Ended", dark.Status)
	assert.Equal(t, int64(200), dark.Updated)
	require.NotNil(t, dark.LastWatched)
	assert.Equal(t, store.EpisodeRef{Season: 3, Number: 2}, *dark.LastWatched)
}

func TestUpdate_ForceFetchesEverything(t *testing.T) {
	tr, _, cat := updateFixture(t)

	stats, err := tr.Update(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Checked)
	assert.Equal(t, 1, stats.Changed)
	assert.ElementsMatch(t, []int{17861, 20263}, cat.showCalls)
}

func TestUpdate_SilentChangesAreCounted(t *testing.T) {
	tr, st, cat := updateFixture(t)
	orville := orvilleShow()
	orville.Runtime = intPtr(45)
	orville.Updated = 1600000000
	cat.shows[20263] = orville
	cat.updates[20263] = 1600000000
	cat.updates[17861] = 100
	out := tr.out.(interface{ String() string })

	stats, err := tr.Update(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, UpdateStats{Checked: 1, Changed: 1}, stats)
	assert.NotContains(t, out.String(), "[UPDATE]")
	assert.Contains(t, out.String(), "Changed: 1")

	sub, ok := reopen(t, st).Get(20263)
	require.True(t, ok)
	assert.Equal(t, 45, sub.Runtime)
	assert.Equal(t, int64(1600000000), sub.Updated)
}

func TestUpdate_ShowWithoutStampIsChecked(t *testing.T) {
	tr, _, cat := updateFixture(t)
	delete(cat.updates, 20263)

	stats, err := tr.Update(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Checked)
}

func TestUpdate_FailuresAreCounted(t *testing.T) {
	tr, st, cat := updateFixture(t)
	delete(cat.shows, 17861)
	out := tr.out.(interface{ String() string })

	stats, err := tr.Update(context.Background(), true)
	require.ErrorIs(t, err, tvmaze.ErrShowNotFound)
	assert.Equal(t, UpdateStats{Checked: 2, Failed: 1}, stats)
	assert.Contains(t, out.String(), "!!! ERROR Dark")
	assert.Contains(t, out.String(), "Failed: 1")

	dark, _ := st.Get(17861)
	assert.Equal(t, "Running", dark.Status)
}

func TestUpdate_NoSubscriptions(t *testing.T) {
	cat := &fakeCatalog{}
	tr, _, _ := newTestTracker(t, cat, "")
	stats, err := tr.Update(context.Background(), false)
	require.NoError(t, err)
	assert.Zero(t, stats)
}

func TestApplyShow_ReportsRename(t *testing.T) {
	sub := orvilleSub()
	sub.LastWatched = &store.EpisodeRef{Season: 1, Number: 1}
	show := orvilleShow()
	show.Name = "The Orville: New Horizons"
	show.Network = nil
	show.WebChannel = &tvmaze.Network{Name: "Hulu"}

	updated, notes := applyShow(sub, show)
	assert.Equal(t, "The Orville: New Horizons", updated.Title)
	assert.Equal(t, "Hulu", updated.Network)
	assert.Same(t, sub.LastWatched, updated.LastWatched)
	assert.Equal(t, []string{
		"'The Orville' changed to 'The Orville: New Horizons'",
		"The Orville: New Horizons: moved from FOX to Hulu",
	}, notes)
}
