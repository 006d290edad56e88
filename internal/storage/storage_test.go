package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func insertLog(t *testing.T, repo *LogRepo, userID int64, status, started, ended string) int64 {
	t.Helper()
	id, err := repo.Insert(context.Background(), CompletionLog{
		UserID:    userID,
		RoutineID: 1,
		Status:    status,
		StartedAt: started,
		EndedAt:   ended,
	})
	if err != nil {
		t.Fatalf("insert log: %v", err)
	}
	return id
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, Migrate(context.Background(), db))
}

func TestPetGetOrCreate(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, NewUserRepo(db).Ensure(ctx, 7))

	pets := NewPetRepo(db)
	p, err := pets.GetOrCreate(ctx, 7, PetState{Level: 1, XP: 0, NextLevelThreshold: 100})
	require.NoError(t, err)
	assert.Equal(t, PetState{UserID: 7, Level: 1, XP: 0, NextLevelThreshold: 100}, *p)

	p.XP = 40
	require.NoError(t, pets.Update(ctx, p))

	again, err := pets.GetOrCreate(ctx, 7, PetState{Level: 1, XP: 0, NextLevelThreshold: 100})
	require.NoError(t, err)
	assert.Equal(t, 40, again.XP)
}

func TestLogRecentOrdersByEndTimeDescending(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, NewUserRepo(db).Ensure(ctx, 1))
	logs := NewLogRepo(db)

	first := insertLog(t, logs, 1, "done", "2026-10-12T07:00:00", "2026-10-12T07:30:00")
	third := insertLog(t, logs, 1, "miss", "2026-10-14T07:00:00", "2026-10-14T07:30:00")
	second := insertLog(t, logs, 1, "late", "2026-10-13T07:00:00", "2026-10-13T07:30:00")

	got, err := logs.Recent(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, third, got[0].ID)
	assert.Equal(t, second, got[1].ID)

	all, err := logs.Recent(ctx, 1, 30)
	require.NoError(t, err)
	assert.Equal(t, first, all[2].ID)
}

func TestLogRecentOrdersMixedTimestampShapes(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, NewUserRepo(db).Ensure(ctx, 1))
	logs := NewLogRepo(db)

	tFormat := insertLog(t, logs, 1, "miss", "2026-10-14T07:00:00", "2026-10-14T07:30:00")
	spaced := insertLog(t, logs, 1, "done", "2026-10-14 08:00:00", "2026-10-14 08:30:00")
	offset := insertLog(t, logs, 1, "done", "2026-10-14T10:00:00+02:00", "2026-10-14T10:15:00+02:00")
	broken := insertLog(t, logs, 1, "done", "2026-10-15T07:00:00", "yesterday")
	short := insertLog(t, logs, 1, "late", "2026-10-13T07:00", "2026-10-13T07:30")

	got, err := logs.Recent(ctx, 1, 30)
	require.NoError(t, err)
	ids := make([]int64, len(got))
	for i, l := range got {
		ids[i] = l.ID
	}
	// 10:15+02:00 is 08:15 UTC, between the two naive readings.
	assert.Equal(t, []int64{spaced, offset, tFormat, short, broken}, ids)

	top, err := logs.Recent(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, spaced, top[0].ID)
}

func TestLogInWindowSkipsMalformedTimestamps(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, NewUserRepo(db).Ensure(ctx, 1))
	require.NoError(t, NewUserRepo(db).Ensure(ctx, 2))
	logs := NewLogRepo(db)

	inside := insertLog(t, logs, 1, "done", "2026-10-12T07:00:00", "2026-10-12T07:30:00")
	insertLog(t, logs, 1, "done", "not a time", "2026-10-12T07:30:00")
	insertLog(t, logs, 1, "done", "2026-10-19T00:00:00", "2026-10-19T00:30:00")
	insertLog(t, logs, 1, "done", "2026-10-11T23:59:59", "2026-10-12T00:10:00")
	insertLog(t, logs, 2, "done", "2026-10-13T07:00:00", "2026-10-13T07:30:00")
	lastDay := insertLog(t, logs, 1, "partial", "2026-10-18T21:00:00+09:00", "2026-10-18T22:00:00+09:00")

	start := time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC)
	got, err := logs.InWindow(ctx, 1, start, start.AddDate(0, 0, 7))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, inside, got[0].ID)
	assert.Equal(t, lastDay, got[1].ID)
}

func TestLogListClampsLimit(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, NewUserRepo(db).Ensure(ctx, 1))
	logs := NewLogRepo(db)
	for i := 0; i < 3; i++ {
		insertLog(t, logs, 1, "done", "2026-10-12T07:00:00", "2026-10-12T07:30:00")
	}

	got, err := logs.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Greater(t, got[0].ID, got[1].ID)
}

func TestStatsInsertFirstWriterWins(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	stats := NewStatsRepo(db)

	row := StatsCacheRow{UserID: 1, WeekStart: "2026-10-12", CompletionRate: 0.5, Streak: 2,
		BestSlotsJSON: `["morning"]`, InsightsJSON: `[]`, TipsJSON: `[]`}
	stored, err := stats.Insert(ctx, row)
	require.NoError(t, err)
	assert.True(t, stored)

	row.CompletionRate = 0.9
	stored, err = stats.Insert(ctx, row)
	require.NoError(t, err)
	assert.False(t, stored)

	got, err := stats.Get(ctx, 1, "2026-10-12")
	require.NoError(t, err)
	assert.Equal(t, 0.5, got.CompletionRate)

	require.NoError(t, stats.Replace(ctx, row))
	got, err = stats.Get(ctx, 1, "2026-10-12")
	require.NoError(t, err)
	assert.Equal(t, 0.9, got.CompletionRate)

	missing, err := stats.Get(ctx, 1, "2026-10-19")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRoutineDaysDecodeLegacyText(t *testing.T) {
	assert.Equal(t, []string{"Mon", "Wed"}, decodeDays(`["Mon","Wed"]`))
	assert.Equal(t, []string{"Mon", "Wed"}, decodeDays("Mon, Wed,"))
	assert.Equal(t, []string{}, decodeDays(""))
}

func TestParseTimestamp(t *testing.T) {
	cases := map[string]int{
		"2026-10-12T07:15:00":        7,
		"2026-10-12T19:15:00.123456": 19,
		"2026-10-12T07:15:00Z":       7,
		"2026-10-12T21:15:00+09:00":  21,
		"2026-10-12 13:00:00":        13,
		"2026-10-12T05:30":           5,
		"2026-10-12":                 0,
	}
	for in, hour := range cases {
		got, err := ParseTimestamp(in)
		require.NoError(t, err, in)
		assert.Equal(t, hour, got.Hour(), in)
	}

	_, err := ParseTimestamp("yesterday")
	assert.Error(t, err)
	_, err = ParseTimestamp("")
	assert.Error(t, err)
}
