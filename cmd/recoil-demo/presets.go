package main

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type springPreset struct {
	Name       string  `yaml:"name"`
	Tension    float64 `yaml:"tension"`
	Friction   float64 `yaml:"friction"`
	Mass       float64 `yaml:"mass"`
	DurationMS int     `yaml:"duration_ms,omitempty"`
}

func (p springPreset) duration() time.Duration {
	return time.Duration(p.DurationMS) * time.Millisecond
}

type presetConfig struct {
	Active  string         `yaml:"active,omitempty"`
	Presets []springPreset `yaml:"presets,omitempty"`
}

func defaultPresets() []springPreset {
	return []springPreset{
		{Name: "snappy", Tension: 342, Friction: 30, Mass: 1},
		{Name: "gentle", Tension: 120, Friction: 14, Mass: 1},
		{Name: "molasses", Tension: 60, Friction: 24, Mass: 2},
		{Name: "clocked", Tension: 342, Friction: 30, Mass: 1, DurationMS: 400},
	}
}

func loadPresetConfig() (*presetConfig, string) {
	configDir := resolveConfigDir()
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return &presetConfig{Presets: defaultPresets()}, filepath.Join(configDir, "presets.yaml")
	}
	path := filepath.Join(configDir, "presets.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		return &presetConfig{Presets: defaultPresets()}, path
	}
	var cfg presetConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return &presetConfig{Presets: defaultPresets()}, path
	}
	if len(cfg.Presets) == 0 {
		cfg.Presets = defaultPresets()
	}
	return &cfg, path
}

func savePresetConfig(cfg *presetConfig, path string) error {
	if cfg == nil {
		cfg = &presetConfig{}
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (c *presetConfig) indexOf(name string) int {
	name = strings.TrimSpace(name)
	for i, p := range c.Presets {
		if p.Name == name {
			return i
		}
	}
	return 0
}

func resolveConfigDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "recoil")
}
