package coach

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

const (
	FallbackReply = "I'm having trouble reaching the coach right now. Keep logging your routines and the habit will build itself!"

	DefaultGoal = "Focus"
	maxPlans    = 3
	minDuration = 5
)

var slotTimes = map[string]string{
	"morning": "07:30",
	"noon":    "12:30",
	"evening": "19:00",
	"night":   "21:30",
}

type Plan struct {
	Title       string   `json:"title"`
	Days        []string `json:"days"`
	Time        string   `json:"time"`
	DurationMin int      `json:"duration_min"`
	Difficulty  string   `json:"difficulty"`
	Reason      string   `json:"reason"`
}

type RecommendRequest struct {
	UserID      int64            `json:"user_id"`
	Goals       []string         `json:"goals"`
	PreferSlots []string         `json:"prefer_slots"`
	Calendar    []map[string]any `json:"calendar"`
}

// Coach produces chat replies and routine plans. It never fails: when the
// generator is missing or errors, canned text is returned instead.
type Coach struct {
	gen    Generator
	logger *slog.Logger
}

func New(gen Generator, logger *slog.Logger) *Coach {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Coach{gen: gen, logger: logger}
}

func (c *Coach) Chat(ctx context.Context, userID int64, message string) string {
	prompt := "You are a wellness routine coach. Reply to the user's message with empathy in at most three sentences. " +
		"User message: " + message
	reply, err := c.generate(ctx, prompt)
	if err != nil {
		c.logger.Warn("coach_chat_fallback", "user_id", userID, "error", err)
		return FallbackReply
	}
	return reply
}

// Recommend asks the model for plans and falls back to three fixed plans
// when nothing usable comes back.
func (c *Coach) Recommend(ctx context.Context, req RecommendRequest) []Plan {
	raw, err := c.generate(ctx, buildRecommendPrompt(req))
	if err == nil {
		var parsed any
		parsed, err = ExtractJSONBlock(raw)
		if err == nil {
			if plans := parsePlans(parsed); len(plans) > 0 {
				return plans
			}
			err = fmt.Errorf("no valid plans in response")
		}
	}
	c.logger.Warn("recommend_fallback", "user_id", req.UserID, "error", err)
	return FallbackPlans(req)
}

func (c *Coach) generate(ctx context.Context, prompt string) (string, error) {
	if c.gen == nil {
		return "", ErrUnavailable
	}
	return c.gen.Generate(ctx, prompt)
}

func buildRecommendPrompt(req RecommendRequest) string {
	goals := strings.Join(req.Goals, ", ")
	if goals == "" {
		goals = "not set"
	}
	slots := strings.Join(req.PreferSlots, ", ")
	if slots == "" {
		slots = "not set"
	}
	return "You are a routine coach. Answer with JSON only. " +
		"User goals: " + goals + ". " +
		"Preferred time slots: " + slots + ". " +
		"Each routine must include title, days (array of strings), time (HH:MM), duration_min (integer), " +
		"difficulty (easy/mid/hard) and reason (short explanation). " +
		`The response must contain only JSON shaped like {"plans": [...]}.`
}

type planEntry struct {
	Title       *string   `json:"title"`
	Days        *[]string `json:"days"`
	Time        *string   `json:"time"`
	DurationMin *int      `json:"duration_min"`
	Difficulty  *string   `json:"difficulty"`
	Reason      *string   `json:"reason"`
}

// parsePlans accepts {"plans": [...]} or a bare list and drops invalid entries.
func parsePlans(v any) []Plan {
	if obj, ok := v.(map[string]any); ok {
		v = obj["plans"]
	}
	list, ok := v.([]any)
	if !ok {
		return nil
	}

	var plans []Plan
	for _, item := range list {
		if _, ok := item.(map[string]any); !ok {
			continue
		}
		data, err := json.Marshal(item)
		if err != nil {
			continue
		}
		var e planEntry
		if err := json.Unmarshal(data, &e); err != nil {
			continue
		}
		if e.Title == nil || e.Days == nil || e.Time == nil || e.DurationMin == nil || e.Difficulty == nil || e.Reason == nil {
			continue
		}
		if *e.DurationMin < minDuration {
			continue
		}
		plans = append(plans, Plan{
			Title:       *e.Title,
			Days:        *e.Days,
			Time:        *e.Time,
			DurationMin: *e.DurationMin,
			Difficulty:  *e.Difficulty,
			Reason:      *e.Reason,
		})
	}
	return plans
}

// FallbackPlans are used whenever the model gives nothing usable. The first
// plan follows the first preferred slot and the first goal.
func FallbackPlans(req RecommendRequest) []Plan {
	slotTime := slotTimes["morning"]
	if len(req.PreferSlots) > 0 {
		if t, ok := slotTimes[req.PreferSlots[0]]; ok {
			slotTime = t
		}
	}
	goal := DefaultGoal
	if len(req.Goals) > 0 {
		goal = req.Goals[0]
	}

	plans := []Plan{
		{
			Title:       goal + " routine warm-up",
			Days:        []string{"Mon", "Wed", "Fri"},
			Time:        slotTime,
			DurationMin: 25,
			Difficulty:  "easy",
			Reason:      "An easy routine that wakes up body and mind without pressure.",
		},
		{
			Title:       "Focused strength routine",
			Days:        []string{"Tue", "Thu"},
			Time:        "18:30",
			DurationMin: 30,
			Difficulty:  "mid",
			Reason:      "Wrap up the evening with a short strength session.",
		},
		{
			Title:       "Weekend reset stretching",
			Days:        []string{"Sat", "Sun"},
			Time:        "09:00",
			DurationMin: 20,
			Difficulty:  "easy",
			Reason:      "Loosen up and shake off the week's fatigue.",
		},
	}
	return plans[:maxPlans]
}
