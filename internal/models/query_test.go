package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRangePreset_String(t *testing.T) {
	tests := []struct {
		name string
		r    RangePreset
		want string
	}{
		{"Today", RangeToday, "Today"},
		{"7Days", Range7Days, "7 Days"},
		{"30Days", Range30Days, "30 Days"},
		{"Unknown", RangePreset(99), "Unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.String(); got != tt.want {
				t.Errorf("RangePreset.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRangePreset_Next(t *testing.T) {
	assert.Equal(t, Range7Days, RangeToday.Next())
	assert.Equal(t, Range30Days, Range7Days.Next())
	assert.Equal(t, RangeToday, Range30Days.Next())
}

func TestRangePreset_Bounds(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 30, 0, 0, time.UTC)

	start, end := Range7Days.Bounds(now)
	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, "2024-03-10 23:59:59", end.Format("2006-01-02 15:04:05"))

	start, end = RangeToday.Bounds(now)
	assert.Equal(t, "2024-03-10", start.Format("2006-01-02"))
	assert.Equal(t, "2024-03-10", end.Format("2006-01-02"))
}

func TestParseRangePreset(t *testing.T) {
	for _, r := range []RangePreset{RangeToday, Range7Days, Range30Days} {
		got, err := ParseRangePreset(r.Key())
		assert.NoError(t, err)
		assert.Equal(t, r, got)
	}

	_, err := ParseRangePreset("fortnight")
	assert.Error(t, err)
}

func TestGroupType(t *testing.T) {
	assert.Equal(t, GroupModel, GroupModelType.Next())
	assert.Equal(t, GroupChannel, GroupModel.Next())
	assert.Equal(t, GroupModelType, GroupChannel.Next())
	assert.Equal(t, "Channel", GroupChannel.String())

	g, err := ParseGroupType("")
	assert.NoError(t, err)
	assert.Equal(t, GroupModelType, g)

	_, err = ParseGroupType("vendor")
	assert.Error(t, err)
}
