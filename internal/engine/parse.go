package engine

import (
	"fmt"
	"strings"
	"time"
)

// ParseDifficulty parses user input to a Difficulty. Empty input yields the default.
func ParseDifficulty(input string) (Difficulty, error) {
	s := strings.TrimSpace(strings.ToLower(input))
	switch s {
	case "":
		return DefaultDifficulty, nil
	case "easy", "e":
		return DifficultyEasy, nil
	case "mid", "medium", "m":
		return DifficultyMid, nil
	case "hard", "h":
		return DifficultyHard, nil
	default:
		return "", fmt.Errorf("invalid difficulty: %q", input)
	}
}

var weekdayLabels = map[string]time.Weekday{
	"sun": time.Sunday,
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
}

// ParseWeekday accepts "Mon", "monday", "MON" and so on.
func ParseWeekday(label string) (time.Weekday, bool) {
	s := strings.TrimSpace(strings.ToLower(label))
	if len(s) < 3 {
		return 0, false
	}
	wd, ok := weekdayLabels[s[:3]]
	return wd, ok
}

// ParseDays splits a comma separated list such as "Mon,Wed,Fri" and
// normalizes each entry to its three letter label.
func ParseDays(input string) ([]string, error) {
	out := []string{}
	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		wd, ok := ParseWeekday(part)
		if !ok {
			return nil, fmt.Errorf("invalid weekday: %q", part)
		}
		out = append(out, wd.String()[:3])
	}
	return out, nil
}
