package store

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var ErrInvalidEpisodeRef = errors.New("invalid episode reference")

// EpisodeRef identifies an episode by season and number within a show.
type EpisodeRef struct {
	Season int `yaml:"season"`
	Number int `yaml:"episode"`
}

func (r EpisodeRef) String() string {
	return fmt.Sprintf("S%02dE%02d", r.Season, r.Number)
}

func (r EpisodeRef) Less(o EpisodeRef) bool {
	if r.Season != o.Season {
		return r.Season < o.Season
	}
	return r.Number < o.Number
}

var episodeRefPattern = regexp.MustCompile(`(?i)^(?:s\s*(\d+)\s*e\s*(\d+)|(\d+)\s*[x.]\s*(\d+))$`)

// ParseEpisodeRef accepts S01E02, s1e2, 1x2 and 1.2.
func ParseEpisodeRef(s string) (EpisodeRef, error) {
	m := episodeRefPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return EpisodeRef{}, fmt.Errorf("%w: '%s' (expected e.g. S01E02 or 1x2)", ErrInvalidEpisodeRef, s)
	}
	seasonStr, numberStr := m[1], m[2]
	if seasonStr == "" {
		seasonStr, numberStr = m[3], m[4]
	}
	season, _ := strconv.Atoi(seasonStr)
	number, _ := strconv.Atoi(numberStr)
	if season < 0 || number < 1 {
		return EpisodeRef{}, fmt.Errorf("%w: '%s'", ErrInvalidEpisodeRef, s)
	}
	return EpisodeRef{Season: season, Number: number}, nil
}
