package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	domainconfig "symptocare-backend/domain/config"
)

// LoadAnalysisConfig reads the analysis thresholds from a YAML file laid
// over the defaults. An empty path yields the defaults. When the file
// names an episode_scale, that scale is applied first so thresholds set
// explicitly in the same file still win.
func LoadAnalysisConfig(path string) (*domainconfig.AnalysisConfig, error) {
	cfg := domainconfig.DefaultAnalysisConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read analysis config: %w", err)
	}

	var scale struct {
		EpisodeScale domainconfig.EpisodeScale `yaml:"episode_scale"`
	}
	if err := yaml.Unmarshal(data, &scale); err != nil {
		return nil, fmt.Errorf("failed to parse analysis config: %w", err)
	}
	if scale.EpisodeScale != "" {
		cfg.ApplyEpisodeScale(scale.EpisodeScale)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse analysis config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid analysis config: %w", err)
	}
	return cfg, nil
}

// ApplyAnalysisOverrides applies the analytics environment variables on
// top of a loaded analysis config
func (c *Config) ApplyAnalysisOverrides(cfg *domainconfig.AnalysisConfig) {
	if c.EpisodeScale != "" {
		cfg.ApplyEpisodeScale(domainconfig.EpisodeScale(c.EpisodeScale))
	}
	if c.AlertMissingDaysThreshold > 0 {
		cfg.AlertMissingDaysThreshold = c.AlertMissingDaysThreshold
	}
}

// AnalysisConfig loads the analysis file named by ANALYSIS_CONFIG_FILE and
// applies the environment overrides
func (c *Config) AnalysisConfig() (*domainconfig.AnalysisConfig, error) {
	cfg, err := LoadAnalysisConfig(c.AnalysisConfigFile)
	if err != nil {
		return nil, err
	}
	c.ApplyAnalysisOverrides(cfg)
	return cfg, nil
}
