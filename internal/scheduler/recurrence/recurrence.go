// Package recurrence computes when a schedule is next due.
package recurrence

import (
	"fmt"
	"time"

	"github.com/zonetune/zonetune/internal/domain/models"
)

// NextRun returns the next occurrence of a schedule anchored at anchor.
//
// A nil anchor means nothing is scheduled. An anchor in the future is the
// next occurrence itself. With no repeat configuration a past anchor has no
// further occurrence. Otherwise the anchor is advanced one repeat-sized
// step at a time until it reaches now; stepping from the original anchor
// rather than from now keeps occurrences on the anchor's grid, so
// execution time never accumulates drift.
func NextRun(anchor *time.Time, repeat *int, unit *models.RepeatUnit, now time.Time) (*time.Time, error) {
	if anchor == nil {
		return nil, nil
	}
	if anchor.After(now) {
		next := *anchor
		return &next, nil
	}
	if repeat == nil || unit == nil {
		return nil, nil
	}
	if *repeat <= 0 {
		return nil, fmt.Errorf("invalid repeat %d, must be > 0", *repeat)
	}
	if !unit.Valid() {
		return nil, fmt.Errorf("invalid repeat unit %q", *unit)
	}

	next := *anchor
	for next.Before(now) {
		next = step(next, *repeat, *unit)
	}
	return &next, nil
}

func step(t time.Time, repeat int, unit models.RepeatUnit) time.Time {
	switch unit {
	case models.RepeatDay:
		// Calendar days, so a daily schedule stays at the same wall-clock
		// time across DST transitions.
		return t.AddDate(0, 0, repeat)
	case models.RepeatHour:
		return t.Add(time.Duration(repeat) * time.Hour)
	case models.RepeatMinute:
		return t.Add(time.Duration(repeat) * time.Minute)
	}
	return t
}
