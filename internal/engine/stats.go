package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"routinepet/internal/storage"
)

const (
	SlotMorning   = "morning"
	SlotNoon      = "noon"
	SlotAfternoon = "afternoon"
	SlotEvening   = "evening"
	SlotNight     = "night"

	maxBestSlots = 3

	// goodPacePercent splits the positive and the adjust-your-plan insight.
	goodPacePercent = 70.0

	weekStartLayout = "2006-01-02"
)

const (
	InsightGoodPace  = "You completed 70% or more this week. Keep up the good pace!"
	InsightSlowPace  = "Completion is below 70%. Try adjusting the routine's difficulty or time."
	TipReflect       = "Right after a routine, spend two minutes noting what you learned."
	TipRestDays      = "Boldly scheduling rest days makes consistency easier."
	tipBestSlotFmt   = "Your success rate is highest in the %s. Put your key routines there."
	insightDoneCount = "Routines completed: %d"
)

type WeeklyStats struct {
	CompletionRate float64  `json:"completion_rate"`
	Streak         int      `json:"streak"`
	BestSlots      []string `json:"best_slots"`
	Insights       []string `json:"insights"`
	Tips           []string `json:"tips"`
}

// WeekStart returns Monday of the week containing now's local date.
func WeekStart(now time.Time) time.Time {
	day := storage.CivilDate(now)
	offset := (int(now.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// WeeklyStats returns the cached summary for the current week, computing and
// storing it on the first request. A stored week is never recomputed, so
// completions made after that first request do not show up until next week.
func (s *Service) WeeklyStats(ctx context.Context, userID int64) (*WeeklyStats, error) {
	if userID < 1 {
		return nil, invalid("user_id", "must be >= 1")
	}
	weekStart := WeekStart(s.clock.Now())
	key := weekStart.Format(weekStartLayout)

	var out *WeeklyStats
	err := s.inTx(ctx, func(r txRepos) error {
		corrupt := false
		row, err := r.stats.Get(ctx, userID, key)
		switch {
		case err != nil:
			// The row exists but cannot be scanned; overwrite it below.
			corrupt = true
			s.logger.Warn("stats_cache_read_failed", "user_id", userID, "week_start", key, "error", err)
		case row != nil:
			cached, decodeErr := decodeStatsRow(row)
			if decodeErr == nil {
				out = cached
				return nil
			}
			corrupt = true
			s.logger.Warn("stats_cache_corrupt", "user_id", userID, "week_start", key, "error", decodeErr)
		}

		logs, err := r.logs.InWindow(ctx, userID, weekStart, weekStart.AddDate(0, 0, 7))
		if err != nil {
			return err
		}
		streak, err := streakFrom(ctx, r.logs, userID)
		if err != nil {
			return err
		}
		computed := ComputeWeekly(logs, streak)

		encoded, err := encodeStatsRow(userID, key, computed)
		if err != nil {
			return err
		}
		if corrupt {
			err = r.stats.Replace(ctx, encoded)
		} else {
			_, err = r.stats.Insert(ctx, encoded)
		}
		if err != nil {
			return err
		}
		out = &computed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ComputeWeekly derives the weekly summary from the window's events.
func ComputeWeekly(logs []storage.CompletionLog, streak int) WeeklyStats {
	done, half := 0, 0
	for _, l := range logs {
		switch Status(l.Status) {
		case StatusDone:
			done++
		case StatusPartial, StatusLate:
			half++
		}
	}
	rate := 0.0
	if len(logs) > 0 {
		rate = (float64(done) + 0.5*float64(half)) / float64(len(logs))
	}
	slots := BestSlots(logs)
	return WeeklyStats{
		CompletionRate: rate,
		Streak:         streak,
		BestSlots:      slots,
		Insights:       buildInsights(rate, done),
		Tips:           buildTips(slots),
	}
}

// SlotLabel buckets an hour of day.
func SlotLabel(hour int) string {
	switch {
	case hour >= 5 && hour < 11:
		return SlotMorning
	case hour >= 11 && hour < 14:
		return SlotNoon
	case hour >= 14 && hour < 18:
		return SlotAfternoon
	case hour >= 18 && hour < 22:
		return SlotEvening
	default:
		return SlotNight
	}
}

// BestSlots ranks the slots of done events by count. Ties keep the order in
// which the slots were first seen.
func BestSlots(logs []storage.CompletionLog) []string {
	counts := map[string]int{}
	var order []string
	for _, l := range logs {
		if Status(l.Status) != StatusDone {
			continue
		}
		started, err := storage.ParseTimestamp(l.StartedAt)
		if err != nil {
			continue
		}
		label := SlotLabel(started.Hour())
		if _, seen := counts[label]; !seen {
			order = append(order, label)
		}
		counts[label]++
	}
	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
	if len(order) > maxBestSlots {
		order = order[:maxBestSlots]
	}
	out := make([]string, 0, len(order))
	return append(out, order...)
}

func buildInsights(rate float64, doneCount int) []string {
	first := InsightSlowPace
	if rate*100 >= goodPacePercent {
		first = InsightGoodPace
	}
	return []string{first, fmt.Sprintf(insightDoneCount, doneCount)}
}

func buildTips(bestSlots []string) []string {
	tips := []string{TipReflect}
	if len(bestSlots) > 0 {
		tips = append(tips, fmt.Sprintf(tipBestSlotFmt, bestSlots[0]))
	}
	return append(tips, TipRestDays)
}

func encodeStatsRow(userID int64, weekStart string, ws WeeklyStats) (storage.StatsCacheRow, error) {
	slots, err := json.Marshal(ws.BestSlots)
	if err != nil {
		return storage.StatsCacheRow{}, fmt.Errorf("marshal best slots: %w", err)
	}
	insights, err := json.Marshal(ws.Insights)
	if err != nil {
		return storage.StatsCacheRow{}, fmt.Errorf("marshal insights: %w", err)
	}
	tips, err := json.Marshal(ws.Tips)
	if err != nil {
		return storage.StatsCacheRow{}, fmt.Errorf("marshal tips: %w", err)
	}
	return storage.StatsCacheRow{
		UserID:         userID,
		WeekStart:      weekStart,
		CompletionRate: ws.CompletionRate,
		Streak:         ws.Streak,
		BestSlotsJSON:  string(slots),
		InsightsJSON:   string(insights),
		TipsJSON:       string(tips),
	}, nil
}

func decodeStatsRow(row *storage.StatsCacheRow) (*WeeklyStats, error) {
	ws := &WeeklyStats{CompletionRate: row.CompletionRate, Streak: row.Streak}
	fields := []struct {
		name string
		raw  string
		dst  *[]string
	}{
		{"best_slots", row.BestSlotsJSON, &ws.BestSlots},
		{"insights", row.InsightsJSON, &ws.Insights},
		{"tips", row.TipsJSON, &ws.Tips},
	}
	for _, f := range fields {
		if err := json.Unmarshal([]byte(f.raw), f.dst); err != nil {
			return nil, fmt.Errorf("decode %s: %w", f.name, err)
		}
		if *f.dst == nil {
			return nil, fmt.Errorf("decode %s: not a list", f.name)
		}
	}
	if ws.CompletionRate < 0 || ws.CompletionRate > 1 || ws.Streak < 0 {
		return nil, fmt.Errorf("cached values out of range")
	}
	return ws, nil
}
