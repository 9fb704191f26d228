package config

import (
	_ "embed"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/arthur-debert/punktf/pkg/errors"
	"github.com/arthur-debert/punktf/pkg/logging"
)

const (
	// EnvPrefix marks environment variables read as configuration.
	EnvPrefix = "PUNKTF_"
	// SourceFileName is the optional settings file at the source root.
	SourceFileName = "punktf.toml"
	appName        = "punktf"
)

// Sections whose keys may contain underscores themselves.
var sections = []string{"deploy", "output", "logging", "hooks"}

//go:embed embedded/defaults.toml
var defaultConfig []byte

// rawBytesProvider implements koanf provider for raw bytes
type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, stderrors.New("not implemented")
}

// Options selects the layers Load reads.
type Options struct {
	// UserConfigDir holds config.toml or config.yaml. Empty means
	// $XDG_CONFIG_HOME/punktf.
	UserConfigDir string
	// SourceDir is searched for punktf.toml. Empty means the source key
	// as configured by the lower layers.
	SourceDir string
	// Overrides are applied last, keyed by dotted path ("deploy.merge").
	Overrides map[string]interface{}
}

// DefaultContent returns the embedded default configuration.
func DefaultContent() string {
	return string(defaultConfig)
}

// Load builds the configuration from every layer in opts.
func Load(opts Options) (*Config, error) {
	logger := logging.GetLogger("config")

	userDir := opts.UserConfigDir
	if userDir == "" {
		userDir = filepath.Join(xdg.ConfigHome, appName)
	}

	// The source tree is only known once the lower layers are read.
	sourceDir := opts.SourceDir
	if sourceDir == "" {
		probe, err := loadLayers(userDir, "", opts.Overrides)
		if err != nil {
			return nil, err
		}
		sourceDir = probe.String("source")
	}

	k, err := loadLayers(userDir, sourceDir, opts.Overrides)
	if err != nil {
		return nil, err
	}

	cfg, err := decode(k)
	if err != nil {
		return nil, err
	}

	logger.Debug().
		Str("userConfigDir", userDir).
		Str("sourceDir", sourceDir).
		Str("merge", cfg.Deploy.Merge.String()).
		Str("format", cfg.Output.Format).
		Msg("Configuration loaded")
	return cfg, nil
}

func loadLayers(userDir, sourceDir string, overrides map[string]interface{}) (*koanf.Koanf, error) {
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to load defaults")
	}

	// 2. User config, first match wins
	for _, name := range []string{"config.toml", "config.yaml", "config.yml"} {
		path := filepath.Join(userDir, name)
		loaded, err := loadFile(k, path)
		if err != nil {
			return nil, err
		}
		if loaded {
			break
		}
	}

	// 3. Source tree settings
	if sourceDir != "" {
		if _, err := loadFile(k, filepath.Join(sourceDir, SourceFileName)); err != nil {
			return nil, err
		}
	}

	// 4. Environment
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment variables")
	}

	// 5. Overrides
	if len(overrides) > 0 {
		if err := k.Load(confmap.Provider(overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load overrides")
		}
	}

	return k, nil
}

// loadFile merges path into k when it exists, choosing the parser by
// extension.
func loadFile(k *koanf.Koanf, path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrapf(err, errors.ErrConfigLoad, "cannot access config %s", path).
			WithDetail("path", path)
	}
	if info.IsDir() {
		return false, errors.Newf(errors.ErrConfigLoad, "config %s is a directory", path).
			WithDetail("path", path)
	}

	var parser koanf.Parser = toml.Parser()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return false, errors.Wrapf(err, errors.ErrConfigParse, "failed to load config from %s", path).
			WithDetail("path", path)
	}
	return true, nil
}

func decode(k *koanf.Koanf) (*Config, error) {
	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.TextUnmarshallerHookFunc(),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to decode configuration")
	}
	return &cfg, nil
}

// envKey maps PUNKTF_DEPLOY_DRY_RUN to deploy.dry_run. Only the section
// separator becomes a dot.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	for _, section := range sections {
		if strings.HasPrefix(key, section+"_") {
			return section + "." + strings.TrimPrefix(key, section+"_")
		}
	}
	return key
}
