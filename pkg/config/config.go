package config

import (
	"time"

	"github.com/arthur-debert/punktf/pkg/types"
)

// Config is the decoded application configuration.
type Config struct {
	Source  string        `koanf:"source"`
	Target  string        `koanf:"target"`
	Profile string        `koanf:"profile"`
	Deploy  DeployConfig  `koanf:"deploy"`
	Output  OutputConfig  `koanf:"output"`
	Logging LoggingConfig `koanf:"logging"`
	Hooks   HooksConfig   `koanf:"hooks"`
}

// DeployConfig holds execution defaults for deploy runs.
type DeployConfig struct {
	Merge  types.MergeStrategy `koanf:"merge"`
	DryRun bool                `koanf:"dry_run"`
}

type OutputConfig struct {
	Format string `koanf:"format"`
	Color  bool   `koanf:"color"`
}

type LoggingConfig struct {
	File bool `koanf:"file"`
}

type HooksConfig struct {
	ShellTimeout time.Duration `koanf:"shell_timeout"`
}
