package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mww/fantasy_predictions/model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_defaults(t *testing.T) {
	chdir(t, t.TempDir()) // no .env file
	t.Setenv("SCORING_RULES_PATH", "")

	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, model.DefaultScoringRules, c.Rules)
	assert.Equal(t, 3000, c.Port)
	assert.Equal(t, 1, c.HoursToDeadline)
	assert.Equal(t, 7, c.NextMatchesDays)
	assert.Equal(t, "postgres", c.DBDriver)
	assert.Nil(t, c.CORSOrigins)
}

func TestLoad_env(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("EXACT_POINTS", "5")
	t.Setenv("TREND_POINTS", "2")
	t.Setenv("MATCH_WON_POINTS", "2")
	t.Setenv("PORT", "8080")
	t.Setenv("CORS_ORIGINS", "http://a.example, http://b.example,")
	t.Setenv("DB_DRIVER", "sqlite")

	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, int32(5), c.Rules.ExactPoints)
	assert.Equal(t, int32(2), c.Rules.TrendPoints)
	assert.Equal(t, int32(2), c.Rules.WonPoints)
	assert.Equal(t, 8080, c.Port)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, c.CORSOrigins)
	assert.Equal(t, "sqlite", c.DBDriver)
}

func TestLoad_invalidRules(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("EXACT_POINTS", "1")
	t.Setenv("TREND_POINTS", "1")

	_, err := Load()
	if !errors.Is(err, model.ErrValidation) {
		t.Errorf("expected a validation error, got %v", err)
	}
}

func TestLoad_malformedNumbers(t *testing.T) {
	tests := map[string]struct {
		key, value string
	}{
		"not a number":      {key: "EXACT_POINTS", value: "abc"},
		"int32 overflow":    {key: "TREND_POINTS", value: "4294967297"},
		"float port":        {key: "PORT", value: "30.5"},
		"bad rate limit":    {key: "WRITE_RATE_LIMIT", value: "fast"},
		"bad deadline":      {key: "HOURS_TO_DEADLINE", value: "1h"},
		"negative overflow": {key: "MATCH_LOST_POINTS", value: "-3000000000"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			chdir(t, t.TempDir())
			t.Setenv(tc.key, tc.value)

			_, err := Load()
			require.ErrorIs(t, err, model.ErrValidation)
			assert.Contains(t, err.Error(), tc.key)
		})
	}
}

func TestLoad_rulesFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	path := filepath.Join(dir, "rules.yaml")
	data := []byte("exact_points: 10\nstarred_bonus: 0\nhours_to_deadline: 2\n")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	t.Setenv("SCORING_RULES_PATH", path)
	t.Setenv("TREND_POINTS", "4")

	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, int32(10), c.Rules.ExactPoints)
	assert.Equal(t, int32(4), c.Rules.TrendPoints, "keys missing from the file keep the env value")
	assert.Equal(t, int32(0), c.Rules.StarredBonus)
	assert.Equal(t, 2, c.HoursToDeadline)
}

func TestLoadRulesFile_errors(t *testing.T) {
	_, err := LoadRulesFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("exact_points: [1, 2"), 0o600))
	_, err = LoadRulesFile(path)
	assert.Error(t, err)
}

func TestSetupLogging(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	SetupLogging("debug", false)
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	SetupLogging("nonsense", false)
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { require.NoError(t, os.Chdir(old)) })
}
