package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortUsersByRankThenName(t *testing.T) {
	users := []User{
		{ID: "1", Name: "zed", Rank: RankMember},
		{ID: "2", Name: "Bob", Rank: RankAdmiral},
		{ID: "3", Name: "alice", Rank: RankMember},
		{ID: "4", Name: "Anna", Rank: RankAdmiral},
		{ID: "5", Name: "Carl", Rank: RankMember},
	}
	SortUsers(users)

	var ids []string
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	assert.Equal(t, []string{"4", "2", "3", "5", "1"}, ids)

	for i := 1; i < len(users); i++ {
		prev, cur := users[i-1], users[i]
		require.LessOrEqual(t, prev.Rank, cur.Rank)
		if prev.Rank == cur.Rank {
			require.LessOrEqual(t, strings.ToUpper(prev.Name), strings.ToUpper(cur.Name))
		}
	}
}

func TestSortEventsByStart(t *testing.T) {
	base := time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC)
	events := []Event{
		{ID: "late", Start: base.Add(48 * time.Hour)},
		{ID: "early", Start: base},
		{ID: "mid", Start: base.Add(2 * time.Hour)},
	}
	SortEvents(events)
	assert.Equal(t, "early", events[0].ID)
	assert.Equal(t, "mid", events[1].ID)
	assert.Equal(t, "late", events[2].ID)
}

func TestFilterForRank(t *testing.T) {
	users := []User{
		{ID: "a", Rank: RankGuest},
		{ID: "b", Rank: RankRecruit},
		{ID: "c", Rank: RankGuest},
	}
	got := FilterForRank(RankGuest, users)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "c", got[1].ID)
	assert.Empty(t, FilterForRank(RankAdmiral, users))
}

func TestRankName(t *testing.T) {
	assert.Equal(t, "Admiral", RankName(1))
	assert.Equal(t, "Technician", RankName(5))
	assert.Equal(t, "Ally", RankName(9))
	assert.Equal(t, UnknownRankName, RankName(0))
	assert.Equal(t, UnknownRankName, RankName(99))
	assert.Len(t, Ranks, 9)
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", TruncateString("short", 10))
	assert.Equal(t, "exact", TruncateString("exact", 5))
	assert.Equal(t, "trunc...", TruncateString("truncated", 5))
}

func TestTruncateStringKeepsRunesWhole(t *testing.T) {
	got := TruncateString("Überfall auf Daymar", 1)
	assert.Equal(t, "Ü...", got)
	assert.True(t, utf8.ValidString(got))

	assert.Equal(t, "Überf...", TruncateString("Überfall auf Daymar", 5))
	assert.Equal(t, "日本語", TruncateString("日本語", 3))
	assert.Equal(t, "日本...", TruncateString("日本語", 2))
}

func TestEventSchedule(t *testing.T) {
	start := time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC)
	sameDay := Event{Start: start, End: start.Add(3 * time.Hour)}
	assert.Equal(t, "Mar 1, 2024 6:00 PM - 9:00 PM", sameDay.Schedule(time.UTC))

	overnight := Event{Start: start, End: start.Add(8 * time.Hour)}
	assert.Equal(t, "Mar 1, 2024 6:00 PM - Mar 2, 2024 2:00 AM", overnight.Schedule(time.UTC))
}

func TestEventPositionsTravelAsObject(t *testing.T) {
	ev := Event{
		ID:        "e1",
		Name:      "Mining op",
		Positions: []Position{{Key: "pilot", Value: 2}, {Key: "gunner", Value: 4}},
	}
	before := ev.Clone()

	data, err := json.Marshal(ev)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	positions, ok := raw["positions"].(map[string]any)
	require.True(t, ok, "positions should be a plain object, got %T", raw["positions"])
	assert.Equal(t, float64(2), positions["pilot"])
	assert.Equal(t, float64(4), positions["gunner"])
	assert.Equal(t, before, ev)

	var decoded Event
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, []Position{{Key: "gunner", Value: 4}, {Key: "pilot", Value: 2}}, decoded.Positions)
}
