package root

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"routinepet/internal/config"
	"routinepet/internal/engine"
)

func useTempDB(t *testing.T) {
	t.Helper()
	prev := flags
	flags = globalFlags{dbPath: filepath.Join(t.TempDir(), "rp.db"), userID: 1}
	t.Cleanup(func() { flags = prev })
}

func run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRoutineAddListComplete(t *testing.T) {
	useTempDB(t)

	out, err := run(t, newRoutineCmd(), "add", "Stretch", "-t", "07:30", "--days", "mon,wed")
	require.NoError(t, err)
	assert.Contains(t, out, "Stretch")

	out, err = run(t, newRoutineCmd(), "list")
	require.NoError(t, err)
	assert.Contains(t, out, "07:30")
	assert.Contains(t, out, "Mon,Wed")

	out, err = run(t, newCompleteCmd(), "1", "--minutes", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "+10 XP")

	out, err = run(t, newStatsCmd(), "--json")
	require.NoError(t, err)
	var ws engine.WeeklyStats
	require.NoError(t, json.Unmarshal([]byte(out), &ws))
	assert.Equal(t, 1.0, ws.CompletionRate)
	assert.Equal(t, 1, ws.Streak)
	assert.Len(t, ws.BestSlots, 1)
}

func TestCommandErrors(t *testing.T) {
	useTempDB(t)

	_, err := run(t, newCompleteCmd(), "1", "--status", "skipped")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid status")

	_, err = run(t, newCompleteCmd(), "abc")
	require.Error(t, err)

	_, err = run(t, newRoutineCmd(), "rm", "99")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	_, err = run(t, newRoutineCmd(), "add", "Bad", "-d", "extreme")
	require.Error(t, err)

	_, err = run(t, newPetCmd(), "set")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to set")

	_, err = run(t, newPetCmd(), "set", "--level", "0")
	require.Error(t, err)
}

func TestPetSet(t *testing.T) {
	useTempDB(t)

	_, err := run(t, newPetCmd(), "set", "--level", "3", "--xp", "40")
	require.NoError(t, err)

	a, cleanup, err := openApp(t.Context())
	require.NoError(t, err)
	defer cleanup()

	pet, err := a.svc.Pet(t.Context(), 1)
	require.NoError(t, err)
	assert.Equal(t, 3, pet.Level)
	assert.Equal(t, 40, pet.XP)
	assert.Equal(t, 100, pet.NextLevelThreshold)
}

func TestRewardsFromConfig(t *testing.T) {
	rc := config.Default().Rewards
	r := rewardsFromConfig(rc)
	assert.Equal(t, 10, r.XPFor(engine.StatusDone))
	assert.Equal(t, 6, r.XPFor(engine.StatusLate))
	assert.Equal(t, 0, r.XPFor(engine.StatusMiss))
	assert.Equal(t, 100, r.BaseThreshold)
	assert.Equal(t, 50, r.ThresholdStep)

	flat := 0
	rc.ThresholdStep = &flat
	assert.Equal(t, 0, rewardsFromConfig(rc).ThresholdStep)
}
