package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RulesFile is the YAML form of the game rules. Only the keys present in the
// file override the environment.
type RulesFile struct {
	ExactPoints     *int32 `yaml:"exact_points"`
	TrendPoints     *int32 `yaml:"trend_points"`
	StarredBonus    *int32 `yaml:"starred_bonus"`
	WonPoints       *int32 `yaml:"match_won_points"`
	TiePoints       *int32 `yaml:"match_tie_points"`
	LostPoints      *int32 `yaml:"match_lost_points"`
	HoursToDeadline *int   `yaml:"hours_to_deadline"`
	NextMatchesDays *int   `yaml:"next_matches_days"`
}

func LoadRulesFile(path string) (*RulesFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scoring rules: %w", err)
	}

	var f RulesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse scoring rules: %w", err)
	}
	return &f, nil
}

func (f *RulesFile) Apply(c *Config) {
	set(&c.Rules.ExactPoints, f.ExactPoints)
	set(&c.Rules.TrendPoints, f.TrendPoints)
	set(&c.Rules.StarredBonus, f.StarredBonus)
	set(&c.Rules.WonPoints, f.WonPoints)
	set(&c.Rules.TiePoints, f.TiePoints)
	set(&c.Rules.LostPoints, f.LostPoints)
	set(&c.HoursToDeadline, f.HoursToDeadline)
	set(&c.NextMatchesDays, f.NextMatchesDays)
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
