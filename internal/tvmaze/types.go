package tvmaze

import (
	"time"
)

type Network struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Show struct {
	ID             int      `json:"id"`
	Name           string   `json:"name"`
	Language       string   `json:"language"`
	Status         string   `json:"status"`
	Runtime        *int     `json:"runtime"`
	AverageRuntime *int     `json:"averageRuntime"`
	Premiered      string   `json:"premiered"`
	Network        *Network `json:"network"`
	WebChannel     *Network `json:"webChannel"`
	Updated        int64    `json:"updated"`
	Summary        string   `json:"summary"`
}

// NetworkName prefers the broadcast network over the web channel.
func (s Show) NetworkName() string {
	if s.Network != nil && s.Network.Name != "" {
		return s.Network.Name
	}
	if s.WebChannel != nil && s.WebChannel.Name != "" {
		return s.WebChannel.Name
	}
	return "Unknown"
}

// RuntimeMinutes falls back to the average runtime for shows whose
// episodes vary in length. Zero means unknown.
func (s Show) RuntimeMinutes() int {
	if s.Runtime != nil {
		return *s.Runtime
	}
	if s.AverageRuntime != nil {
		return *s.AverageRuntime
	}
	return 0
}

func (s Show) PremieredYear() string {
	if len(s.Premiered) >= 4 {
		return s.Premiered[:4]
	}
	return ""
}

type SearchResult struct {
	Score float64 `json:"score"`
	Show  Show    `json:"show"`
}

type Episode struct {
	ID       int
	Season   int
	Number   int
	Name     string
	Airdate  string
	Airstamp time.Time
	Runtime  int
}

// Aired reports whether the episode has an air time at or before now.
// Episodes without any air information are treated as not aired.
func (e Episode) Aired(now time.Time) bool {
	if !e.Airstamp.IsZero() {
		return !e.Airstamp.After(now)
	}
	if e.Airdate == "" {
		return false
	}
	day, err := time.Parse(time.DateOnly, e.Airdate)
	if err != nil {
		return false
	}
	return !day.After(now)
}

type episodeJSON struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Season   int    `json:"season"`
	Number   *int   `json:"number"`
	Airdate  string `json:"airdate"`
	Airstamp string `json:"airstamp"`
	Runtime  *int   `json:"runtime"`
}

// toEpisode returns false for specials, which TVmaze lists without a number.
func (raw episodeJSON) toEpisode() (Episode, bool) {
	if raw.Number == nil {
		return Episode{}, false
	}
	ep := Episode{
		ID:      raw.ID,
		Season:  raw.Season,
		Number:  *raw.Number,
		Name:    raw.Name,
		Airdate: raw.Airdate,
	}
	if raw.Runtime != nil {
		ep.Runtime = *raw.Runtime
	}
	if raw.Airstamp != "" {
		if ts, err := time.Parse(time.RFC3339, raw.Airstamp); err == nil {
			ep.Airstamp = ts
		}
	}
	return ep, true
}
