package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrUnknownSeason = errors.New("unknown season")

// Season tags the part of the year an item sells best in.
type Season string

const (
	NoSeason Season = ""
	Spring   Season = "spring"
	Summer   Season = "summer"
	Fall     Season = "fall"
	Winter   Season = "winter"
)

// ParseSeason accepts the season names case-insensitively. "autumn" is an alias for fall
// and an empty string yields NoSeason.
func ParseSeason(s string) (Season, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return NoSeason, nil
	case "spring":
		return Spring, nil
	case "summer":
		return Summer, nil
	case "fall", "autumn":
		return Fall, nil
	case "winter":
		return Winter, nil
	}
	return NoSeason, fmt.Errorf("%w: %q", ErrUnknownSeason, s)
}

// SeasonOf returns the meteorological (northern hemisphere) season of a date.
func SeasonOf(date time.Time) Season {
	switch date.Month() {
	case time.March, time.April, time.May:
		return Spring
	case time.June, time.July, time.August:
		return Summer
	case time.September, time.October, time.November:
		return Fall
	default:
		return Winter
	}
}
