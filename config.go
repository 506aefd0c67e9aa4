package willowvr

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ConfigFormat names a session options file encoding.
type ConfigFormat string

const (
	FormatTOML ConfigFormat = "toml"
	FormatYAML ConfigFormat = "yaml"
)

// ErrUnknownFormat is returned for option files with an unrecognized extension.
var ErrUnknownFormat = errors.New("unknown config format")

// LoadSessionOptions reads session options from a .toml, .yaml, or .yml file.
// Fields missing from the file keep their DefaultSessionOptions values.
func LoadSessionOptions(path string) (SessionOptions, error) {
	var format ConfigFormat
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		format = FormatTOML
	case ".yaml", ".yml":
		format = FormatYAML
	default:
		return SessionOptions{}, fmt.Errorf("load session options %s: %w", path, ErrUnknownFormat)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return SessionOptions{}, fmt.Errorf("load session options: %w", err)
	}
	opts, err := ParseSessionOptions(data, format)
	if err != nil {
		return SessionOptions{}, fmt.Errorf("load session options %s: %w", path, err)
	}
	return opts, nil
}

// ParseSessionOptions decodes session options from memory.
func ParseSessionOptions(data []byte, format ConfigFormat) (SessionOptions, error) {
	opts := DefaultSessionOptions()
	switch format {
	case FormatTOML:
		if err := toml.Unmarshal(data, &opts); err != nil {
			return SessionOptions{}, fmt.Errorf("parse toml: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &opts); err != nil {
			return SessionOptions{}, fmt.Errorf("parse yaml: %w", err)
		}
	default:
		return SessionOptions{}, fmt.Errorf("parse %q: %w", format, ErrUnknownFormat)
	}
	return opts.normalized(), nil
}

// EncodeSessionOptions serializes options in the given format.
func EncodeSessionOptions(opts SessionOptions, format ConfigFormat) ([]byte, error) {
	switch format {
	case FormatTOML:
		return toml.Marshal(opts)
	case FormatYAML:
		return yaml.Marshal(opts)
	}
	return nil, fmt.Errorf("encode %q: %w", format, ErrUnknownFormat)
}
