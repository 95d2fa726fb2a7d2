package models

import (
	"fmt"
	"strings"
	"time"
)

// RangePreset represents the selected date range for period queries.
type RangePreset int

const (
	// RangeToday covers the current calendar day.
	RangeToday RangePreset = iota
	// Range7Days covers today and the six days before it.
	Range7Days
	// Range30Days covers today and the twenty-nine days before it.
	Range30Days
)

// String returns the display name for a range preset.
func (r RangePreset) String() string {
	switch r {
	case RangeToday:
		return "Today"
	case Range7Days:
		return "7 Days"
	case Range30Days:
		return "30 Days"
	default:
		return "Unknown"
	}
}

// Key returns the short identifier used in config and saved filters.
func (r RangePreset) Key() string {
	switch r {
	case Range7Days:
		return "7d"
	case Range30Days:
		return "30d"
	default:
		return "today"
	}
}

// Days returns the number of calendar days covered by the preset.
func (r RangePreset) Days() int {
	switch r {
	case RangeToday:
		return 1
	case Range7Days:
		return 7
	case Range30Days:
		return 30
	default:
		return 1
	}
}

// Next cycles to the next range preset.
func (r RangePreset) Next() RangePreset {
	return (r + 1) % 3
}

// Bounds returns the inclusive start and end instants of the preset relative
// to now: midnight of the first day and 23:59:59 today.
func (r RangePreset) Bounds(now time.Time) (time.Time, time.Time) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	start := today.AddDate(0, 0, -(r.Days() - 1))
	end := today.AddDate(0, 0, 1).Add(-time.Second)
	return start, end
}

// ParseRangePreset parses "today", "7d" or "30d".
func ParseRangePreset(s string) (RangePreset, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today", "1d":
		return RangeToday, nil
	case "7d", "week":
		return Range7Days, nil
	case "30d", "month":
		return Range30Days, nil
	default:
		return RangeToday, fmt.Errorf("unknown range preset %q", s)
	}
}

// GroupType is the category dimension used to group channel statistics.
type GroupType string

const (
	// GroupModelType groups by model family.
	GroupModelType GroupType = "model_type"
	// GroupModel groups by exact model name.
	GroupModel GroupType = "model"
	// GroupChannel groups by upstream channel.
	GroupChannel GroupType = "channel"
)

// String returns the display name for a group type.
func (g GroupType) String() string {
	switch g {
	case GroupModelType:
		return "Model Type"
	case GroupModel:
		return "Model"
	case GroupChannel:
		return "Channel"
	default:
		return "Unknown"
	}
}

// Next cycles to the next group type.
func (g GroupType) Next() GroupType {
	switch g {
	case GroupModelType:
		return GroupModel
	case GroupModel:
		return GroupChannel
	default:
		return GroupModelType
	}
}

// ParseGroupType validates a group type string.
func ParseGroupType(s string) (GroupType, error) {
	switch g := GroupType(strings.TrimSpace(s)); g {
	case "":
		return GroupModelType, nil
	case GroupModelType, GroupModel, GroupChannel:
		return g, nil
	default:
		return GroupModelType, fmt.Errorf("unknown group type %q", s)
	}
}

// Query holds the filters applied to the analytics endpoints. A zero UserID
// selects gateway-wide statistics.
type Query struct {
	Group  GroupType
	Range  RangePreset
	UserID int
}

// DefaultQuery returns the query used before any filter is chosen.
func DefaultQuery() Query {
	return Query{Group: GroupModelType, Range: RangeToday}
}
