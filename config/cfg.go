package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	// ReaderConfig holds options recognized by the reader core. Values here are
	// session defaults, settings saved with a previously opened book take
	// precedence over them.
	ReaderConfig struct {
		Storage     StorageMode `yaml:"storage" validate:"gte=0"`
		StoragePath string      `yaml:"storage_path"`
		// Online is nil when connectivity should be detected.
		Online     *bool `yaml:"online,omitempty"`
		Contained  bool  `yaml:"contained"`
		Width      int   `yaml:"width" validate:"gte=0"`
		Height     int   `yaml:"height" validate:"gte=0"`
		Spreads    bool  `yaml:"spreads"`
		Responsive bool  `yaml:"responsive"`
		Version    int   `yaml:"version" validate:"min=1"`
		Restore    bool  `yaml:"restore"`
		Prefetch   bool  `yaml:"prefetch"`
	}

	// TerminalConfig controls interactive reader.
	TerminalConfig struct {
		HeaderTemplate string `yaml:"header_template"`
	}

	Config struct {
		Version   int            `yaml:"version" validate:"eq=1"`
		Reader    ReaderConfig   `yaml:"reader"`
		Terminal  TerminalConfig `yaml:"terminal"`
		Logging   LoggingConfig  `yaml:"logging"`
		Reporting ReporterConfig `yaml:"reporting"`
	}

	TemplateFieldName string
)

// NOTE: must match yaml field name above
const HeaderTemplateFieldName TemplateFieldName = "header_template"

// template fields are expanded when used, not when configuration is loaded
var requiredOptions = append([]func(*gencfg.ProcessingOptions){},
	gencfg.WithDoNotExpandField(string(HeaderTemplateFieldName)),
)

// unmarshalConfig decodes data on top of cfg. Unknown fields are errors so
// misspelled options do not go unnoticed. Sanitizing and validation run only
// when process is set, that is for the last layer.
func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if !process {
		return cfg, nil
	}
	if err := gencfg.Sanitize(cfg); err != nil {
		return nil, err
	}
	if err := gencfg.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfiguration builds configuration in layers: expanded embedded
// template gives defaults, file at path (when not empty) overrides them.
// Result is sanitized and validated once, after the last layer.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	defaults, err := gencfg.Process(ConfigTmpl, append(requiredOptions, options...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}

	type layer struct {
		what string
		data []byte
	}
	layers := []layer{{"configuration template", defaults}}
	if len(path) > 0 {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		layers = append(layers, layer{"configuration file", data})
	}

	cfg := &Config{}
	for i, l := range layers {
		if _, err := unmarshalConfig(l.data, cfg, i == len(layers)-1); err != nil {
			return nil, fmt.Errorf("failed to process %s: %w", l.what, err)
		}
	}
	return cfg, nil
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl, requiredOptions...)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %v", err)
	}
	return data, nil
}
