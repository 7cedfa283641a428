package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gnana997/apisync/pkg/emitter"
	"github.com/gnana997/apisync/pkg/patcher"
	"github.com/gnana997/apisync/pkg/pipeline"
	"github.com/gnana997/apisync/pkg/source"
)

const defaultConfigPath = ".apisync/config.yaml"

// ProjectConfig holds the contents of .apisync/config.yaml.
type ProjectConfig struct {
	Version      string            `yaml:"version"`
	Source       source.Config     `yaml:"source"`
	Target       string            `yaml:"target"`
	Anchor       patcher.Anchor    `yaml:"anchor"`
	Emit         emitter.Options   `yaml:"emit"`
	Lookahead    int               `yaml:"lookahead"`
	VerifySyntax *bool             `yaml:"verify_syntax"`
	Strict       bool              `yaml:"strict"`
	Descriptions map[string]string `yaml:"descriptions"`
	Log          struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// loadProjectConfig reads the project config. A missing file at the default
// location is not an error (nil config); a missing file the user named
// explicitly is.
func loadProjectConfig(path string, explicit bool) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) && !explicit {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// flagValues are the command-line overrides.
type flagValues struct {
	configPath string
	source     string
	target     string
	logLevel   string
	logFormat  string
	dryRun     bool
	strict     bool
	jsonOut    bool
}

// resolvePipelineConfig applies the fallback chain for every setting:
//  1. Explicit flag value (non-empty override)
//  2. Value from .apisync/config.yaml
//  3. Built-in default (api.js, src/extension.ts)
func resolvePipelineConfig(flags flagValues, project *ProjectConfig) pipeline.Config {
	cfg := pipeline.Config{
		Source:       source.Config{Path: source.DefaultPath},
		Target:       pipeline.DefaultTarget,
		VerifySyntax: true,
	}

	if project != nil {
		if project.Source.Path != "" || len(project.Source.Include) > 0 {
			cfg.Source = project.Source
		}
		if project.Target != "" {
			cfg.Target = project.Target
		}
		cfg.Anchor = project.Anchor
		cfg.Emit = project.Emit
		cfg.Lookahead = project.Lookahead
		cfg.Descriptions = project.Descriptions
		cfg.Strict = project.Strict
		if project.VerifySyntax != nil {
			cfg.VerifySyntax = *project.VerifySyntax
		}
	}

	if flags.source != "" {
		cfg.Source = source.Config{Path: flags.source}
	}
	if flags.target != "" {
		cfg.Target = flags.target
	}
	if flags.strict {
		cfg.Strict = true
	}
	cfg.DryRun = flags.dryRun

	return cfg
}

// resolveLogSettings returns the log level and format, flag over config.
func resolveLogSettings(flags flagValues, project *ProjectConfig) (level, format string) {
	level, format = flags.logLevel, flags.logFormat
	if project != nil {
		if level == "" {
			level = project.Log.Level
		}
		if format == "" {
			format = project.Log.Format
		}
	}
	return level, format
}
