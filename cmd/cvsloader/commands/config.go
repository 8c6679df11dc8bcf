package commands

import (
	"fmt"
	"os"

	"github.com/adamf123git/cvs-archive-loader/internal/visit"
	"gopkg.in/yaml.v3"
)

// VisitConfigFile is the YAML schema for a visit configuration file, the
// CLI's on-disk counterpart to the in-memory visit.Config the core takes.
type VisitConfigFile struct {
	Origin string `yaml:"origin"`

	Source struct {
		Kind     string `yaml:"kind"` // local, pserver, ssh
		Path     string `yaml:"path"`
		Module   string `yaml:"module"`
		Hostname string `yaml:"hostname"`
		Port     int    `yaml:"port"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
	} `yaml:"source"`

	Target struct {
		Path string `yaml:"path"`
	} `yaml:"target"`

	Options struct {
		FuzzWindowSeconds int64  `yaml:"fuzzWindowSeconds"`
		PlaceholderDomain string `yaml:"placeholderDomain"`
		Branch            string `yaml:"branch"`
	} `yaml:"options"`
}

// LoadVisitConfigFile reads and validates a visit configuration file.
func LoadVisitConfigFile(path string) (*VisitConfigFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config VisitConfigFile
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if config.Source.Path == "" {
		return nil, fmt.Errorf("source.path is required")
	}
	if config.Target.Path == "" {
		return nil, fmt.Errorf("target.path is required")
	}

	if config.Source.Kind == "" {
		config.Source.Kind = "local"
	}
	if config.Source.Kind != "local" && config.Source.Module == "" {
		return nil, fmt.Errorf("source.module is required for source.kind %q", config.Source.Kind)
	}
	if config.Origin == "" {
		config.Origin = config.Source.Path
	}

	return &config, nil
}

// ToVisitConfig converts the on-disk config shape into the Go struct
// internal/visit.Run takes.
func (c *VisitConfigFile) ToVisitConfig() visit.Config {
	return visit.Config{
		Origin:            c.Origin,
		SourceKind:        visit.SourceKind(c.Source.Kind),
		SourcePath:        c.Source.Path,
		Module:            c.Source.Module,
		Hostname:          c.Source.Hostname,
		Port:              c.Source.Port,
		Username:          c.Source.Username,
		Password:          c.Source.Password,
		TargetPath:        c.Target.Path,
		FuzzWindow:        c.Options.FuzzWindowSeconds,
		PlaceholderDomain: c.Options.PlaceholderDomain,
		Branch:            c.Options.Branch,
	}
}
