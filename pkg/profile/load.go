package profile

import (
	"bytes"
	"fmt"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/arthur-debert/punktf/pkg/errors"
	"github.com/arthur-debert/punktf/pkg/types"
	"github.com/go-viper/mapstructure/v2"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format is the document format of a profile file.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// Extensions lists the profile file extensions in lookup order.
var Extensions = []string{".yaml", ".yml", ".json", ".toml"}

// FormatForPath picks the document format from a file extension.
func FormatForPath(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, true
	case ".json":
		return FormatJSON, true
	case ".toml":
		return FormatTOML, true
	default:
		return "", false
	}
}

// Decode parses a profile document into a Layer named name.
func Decode(name string, data []byte, format Format) (Layer, error) {
	raw, err := parseRaw(data, format)
	if err != nil {
		return Layer{}, invalid(name, err)
	}

	// "extends" is the historical spelling of "imports".
	if extends, ok := raw["extends"]; ok {
		if _, both := raw["imports"]; both {
			return Layer{}, invalid(name, fmt.Errorf("both imports and extends are set"))
		}
		raw["imports"] = extends
		delete(raw, "extends")
	}

	layer := Layer{Name: name}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &layer,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			scalarStringHookFunc(),
			targetHookFunc(),
			mapstructure.TextUnmarshallerHookFunc(),
		),
	})
	if err != nil {
		return Layer{}, errors.Wrap(err, errors.ErrInternal, "failed to build profile decoder")
	}
	if err := decoder.Decode(raw); err != nil {
		return Layer{}, invalid(name, err)
	}

	if err := validate(layer); err != nil {
		return Layer{}, invalid(name, err)
	}
	return layer, nil
}

func parseRaw(data []byte, format Format) (map[string]interface{}, error) {
	raw := map[string]interface{}{}
	if len(bytes.TrimSpace(data)) == 0 {
		return raw, nil
	}

	switch format {
	case FormatYAML, FormatJSON:
		// JSON documents are valid YAML.
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	case FormatTOML:
		if err := toml.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported profile format %q", format)
	}
	if raw == nil {
		raw = map[string]interface{}{}
	}
	return raw, nil
}

// scalarStringHookFunc spells booleans and numbers the way they appear in
// the document when they decode into a string, so `DEBUG: true` yields
// "true" rather than the weak conversion's "1".
func scalarStringHookFunc() mapstructure.DecodeHookFuncType {
	return func(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		if t.Kind() != reflect.String {
			return data, nil
		}
		v := reflect.ValueOf(data)
		switch f.Kind() {
		case reflect.Bool:
			return strconv.FormatBool(v.Bool()), nil
		case reflect.Float32, reflect.Float64:
			return strconv.FormatFloat(v.Float(), 'f', -1, 64), nil
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return strconv.FormatInt(v.Int(), 10), nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return strconv.FormatUint(v.Uint(), 10), nil
		}
		return data, nil
	}
}

// targetHookFunc lets a dotfile target be written as a plain string, which
// is shorthand for an absolute path override.
func targetHookFunc() mapstructure.DecodeHookFuncType {
	targetType := reflect.TypeOf(types.Target{})
	return func(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		if t != targetType || f.Kind() != reflect.String {
			return data, nil
		}
		return map[string]interface{}{"path": data}, nil
	}
}

func validate(layer Layer) error {
	for i, d := range layer.Dotfiles {
		if strings.TrimSpace(d.Path) == "" {
			return fmt.Errorf("dotfiles[%d]: path is required", i)
		}
		if filepath.IsAbs(d.Path) {
			return fmt.Errorf("dotfiles[%d]: path %q must be relative to the dotfiles directory", i, d.Path)
		}
		clean := filepath.Clean(d.Path)
		if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
			return fmt.Errorf("dotfiles[%d]: path %q escapes the dotfiles directory", i, d.Path)
		}
		if d.Target != nil {
			if d.Target.Path != "" && d.Target.Alias != "" {
				return fmt.Errorf("dotfiles[%d]: target sets both path and alias", i)
			}
			if d.Target.Path != "" && !filepath.IsAbs(d.Target.Path) {
				return fmt.Errorf("dotfiles[%d]: target path %q must be absolute", i, d.Target.Path)
			}
		}
	}
	for i, imp := range layer.Imports {
		if err := validateName(imp); err != nil {
			return fmt.Errorf("imports[%d]: %w", i, err)
		}
	}
	return nil
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("profile name is empty")
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("profile name %q must not contain path separators", name)
	}
	return nil
}

func invalid(name string, err error) error {
	return errors.Wrapf(err, errors.ErrProfileInvalid, "invalid profile %q", name).
		WithDetail("profile", name)
}
