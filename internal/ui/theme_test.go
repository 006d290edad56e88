package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "[-----]", ProgressBar(0, 100, 5))
	assert.Equal(t, "[##---]", ProgressBar(40, 100, 5))
	assert.Equal(t, "[#####]", ProgressBar(500, 100, 5))
	assert.Equal(t, "[---]", ProgressBar(-3, 0, 1))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "75%", Percent(0.75))
	assert.Equal(t, "0%", Percent(0))
}

func TestStatusTextMentionsStatus(t *testing.T) {
	for _, s := range []string{"done", "partial", "late", "miss", "other"} {
		assert.Contains(t, StatusText(s), s)
	}
}
