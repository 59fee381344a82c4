package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mcuadros/go-defaults"
	"github.com/srg/btscan/internal/permissions"
	"gopkg.in/yaml.v3"
)

// fileConfig is the optional per-user configuration (~/.btscan.yaml).
// Granted capabilities live here because Linux has no runtime grant dialog;
// an empty list means everything is held.
type fileConfig struct {
	Mode            string   `yaml:"mode" default:"classic"`
	TimeoutSeconds  int      `yaml:"timeout_seconds" default:"12"`
	PlatformVersion int      `yaml:"platform_version" default:"31"`
	Granted         []string `yaml:"granted"`
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".btscan.yaml")
}

// loadConfig reads the config file at path, or the default location when
// path is empty. A missing default file yields the built-in defaults; a
// missing explicit file is an error.
func loadConfig(path string) (*fileConfig, error) {
	cfg := new(fileConfig)
	defaults.SetDefaults(cfg)

	explicit := path != ""
	if !explicit {
		path = defaultConfigPath()
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// grantedSet converts the configured grant list to a capability set. Nil
// means no runtime grant model: every capability is held.
func (c *fileConfig) grantedSet() permissions.Set {
	if c.Granted == nil {
		return permissions.NewSet(
			permissions.CapRadio, permissions.CapRadioAdmin,
			permissions.CapRadioScan, permissions.CapCoarseLocation)
	}
	caps := make([]permissions.Capability, 0, len(c.Granted))
	for _, g := range c.Granted {
		caps = append(caps, permissions.Capability(g))
	}
	return permissions.NewSet(caps...)
}
