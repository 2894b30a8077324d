//-------------------------------------------------------------------------
//
// pgEdge Retail Stats
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package datagen

import (
	"fmt"
	"sort"
	"time"
)

// Profile weights the calendar days orders are placed on.
type Profile interface {
	// Name returns the profile name.
	Name() string

	// Description returns a human-readable description.
	Description() string

	// DemandLevel returns the relative order volume for a day (1.0 is an
	// ordinary weekday).
	DemandLevel(day time.Time) float64
}

var profiles = make(map[string]func() Profile)

// RegisterProfile adds a profile constructor to the registry.
func RegisterProfile(name string, constructor func() Profile) {
	profiles[name] = constructor
}

// GetProfile retrieves a profile by name.
func GetProfile(name string) (Profile, error) {
	constructor, ok := profiles[name]
	if !ok {
		return nil, fmt.Errorf("unknown profile: %s", name)
	}
	return constructor(), nil
}

// Profiles returns all registered profile names, sorted.
func Profiles() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Steady spreads orders evenly over the calendar.
type Steady struct{}

func (Steady) Name() string { return "steady" }

func (Steady) Description() string { return "Flat demand every day" }

func (Steady) DemandLevel(time.Time) float64 { return 1.0 }

// WeekendPeak models a consumer store.
// Weekdays: 100%
// Friday: 120%
// Saturday, Sunday: 180%
type WeekendPeak struct{}

func (WeekendPeak) Name() string { return "weekend-peak" }

func (WeekendPeak) Description() string { return "Consumer store (weekend peak)" }

func (WeekendPeak) DemandLevel(day time.Time) float64 {
	switch day.Weekday() {
	case time.Saturday, time.Sunday:
		return 1.8
	case time.Friday:
		return 1.2
	}
	return 1.0
}

// YearEnd models gift season on top of the weekend pattern.
// December: 250%, ramping from 150% in late November
// Early January sales: 200% until the 7th
// Otherwise: weekend-peak
type YearEnd struct{}

func (YearEnd) Name() string { return "year-end" }

func (YearEnd) Description() string { return "Gift season (December peak)" }

func (YearEnd) DemandLevel(day time.Time) float64 {
	base := WeekendPeak{}.DemandLevel(day)

	switch {
	case day.Month() == time.December:
		return base * 2.5
	case day.Month() == time.November && day.Day() >= 20:
		return base * 1.5
	case day.Month() == time.January && day.Day() <= 7:
		return base * 2.0
	}
	return base
}

func init() {
	RegisterProfile("steady", func() Profile { return Steady{} })
	RegisterProfile("weekend-peak", func() Profile { return WeekendPeak{} })
	RegisterProfile("year-end", func() Profile { return YearEnd{} })
}
