package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRepositoryEntry_FullName(t *testing.T) {
	e := RepositoryEntry{Owner: Owner{Login: "octo"}, Name: "paint"}
	assert.Equal(t, "octo/paint", e.FullName())
}

func TestRepositoryEntry_Branch_Fallback(t *testing.T) {
	assert.Equal(t, "main", RepositoryEntry{}.Branch())
	assert.Equal(t, "trunk", RepositoryEntry{DefaultBranch: "trunk"}.Branch())
}

func TestDeriveTag(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	old := now.Add(-365 * 24 * time.Hour)

	tests := []struct {
		name      string
		createdAt time.Time
		updatedAt time.Time
		archived  bool
		want      Tag
	}{
		{"archived wins over new", now.Add(-24 * time.Hour), now, true, TagArchived},
		{"new within window", now.Add(-29 * 24 * time.Hour), old, false, TagNew},
		{"new wins over updated", now.Add(-24 * time.Hour), now, false, TagNew},
		{"updated within window", old, now.Add(-13 * 24 * time.Hour), false, TagUpdated},
		{"none when stale", old, old, false, TagNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveTag(tt.createdAt, tt.updatedAt, tt.archived, now))
		})
	}
}

func TestFormatCount(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1.0K"},
		{1234, "1.2K"},
		{999999, "1000.0K"},
		{3400000, "3.4M"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatCount(tt.in), "FormatCount(%d)", tt.in)
	}
}

func entriesByStars(stars ...int) []RepositoryEntry {
	entries := make([]RepositoryEntry, len(stars))
	for i, s := range stars {
		entries[i] = RepositoryEntry{ID: int64(i + 1), Name: "r", Stars: s}
	}
	return entries
}

func TestFeaturedRail_TopFiveByStars(t *testing.T) {
	entries := entriesByStars(10, 500, 30, 200, 90, 70, 60)

	rail := FeaturedRail(entries)

	assert.Len(t, rail, 5)
	assert.Equal(t, 500, rail[0].Stars)
	assert.Equal(t, 200, rail[1].Stars)
	// Input order is untouched.
	assert.Equal(t, 10, entries[0].Stars)
}

func TestPopularRail_SkipsFeatured(t *testing.T) {
	entries := entriesByStars(1, 2, 3, 4, 5, 6, 7, 8)

	rail := PopularRail(entries)

	// Top five by stars (8..4) belong to the featured rail.
	assert.Len(t, rail, 3)
	assert.Equal(t, 3, rail[0].Stars)
}

func TestPopularRail_SmallListFallsBack(t *testing.T) {
	entries := entriesByStars(5, 1, 3)

	rail := PopularRail(entries)

	assert.Len(t, rail, 3)
}

func TestNewestRail_SortsByCreatedAt(t *testing.T) {
	now := time.Now()
	entries := []RepositoryEntry{
		{ID: 1, CreatedAt: now.Add(-48 * time.Hour)},
		{ID: 2, CreatedAt: now},
		{ID: 3, CreatedAt: now.Add(-24 * time.Hour)},
	}

	rail := NewestRail(entries)

	assert.Equal(t, int64(2), rail[0].ID)
	assert.Equal(t, int64(3), rail[1].ID)
	assert.Equal(t, int64(1), rail[2].ID)
}
