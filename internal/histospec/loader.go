package histospec

import (
	"context"
	"fmt"
	"os"

	"dario.cat/mergo"
	"github.com/go-viper/mapstructure/v2"
	"github.com/goccy/go-yaml"

	"github.com/benw22022/FASER-2024-DQ-Analyis/internal/fileutil"
	"github.com/benw22022/FASER-2024-DQ-Analyis/internal/logger"
)

// LoadOptions contains options for loading a histogram configuration.
type LoadOptions struct {
	baseConfig string // optional shared configuration merged under the file
}

// LoadOption is a function type for setting LoadOptions.
type LoadOption func(*LoadOptions)

// WithBaseConfig sets a base configuration file whose histograms are merged
// under the loaded file; the loaded file wins on conflicts.
func WithBaseConfig(file string) LoadOption {
	return func(o *LoadOptions) {
		o.baseConfig = file
	}
}

// definition mirrors the raw YAML structure before validation.
type definition struct {
	Histograms map[string]histogramDef `yaml:"histograms"`
}

type histogramDef struct {
	Column string  `yaml:"column"`
	Label  string  `yaml:"label"`
	Bins   int     `yaml:"bins"`
	Low    float64 `yaml:"low"`
	High   float64 `yaml:"high"`
	// Scale is a pointer so an explicit zero is rejected rather than
	// mistaken for "not set".
	Scale *float64 `yaml:"scale"`
	Cut   *cutDef  `yaml:"cut"`
}

type cutDef struct {
	Expr  string `yaml:"expr"`
	Label string `yaml:"label"`
}

// Load reads the histogram configuration from the given file.
func Load(ctx context.Context, file string, opts ...LoadOption) (*Config, error) {
	var options LoadOptions
	for _, opt := range opts {
		opt(&options)
	}

	raw, err := readRaw(file)
	if err != nil {
		return nil, err
	}

	if options.baseConfig != "" && fileutil.FileExists(options.baseConfig) {
		base, err := readRaw(options.baseConfig)
		if err != nil {
			return nil, err
		}
		// The specific file overrides the base.
		if err := mergo.Merge(&raw, base); err != nil {
			return nil, fmt.Errorf("failed to merge base config %s: %w", options.baseConfig, err)
		}
		logger.Debug(ctx, "Merged base histogram config", "base", options.baseConfig)
	}

	cfg, err := build(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid histogram config %s: %w", file, err)
	}
	logger.Debug(ctx, "Loaded histogram config", "file", file, "histograms", len(cfg.Histograms))
	return cfg, nil
}

// LoadYAML loads the histogram configuration from YAML data.
func LoadYAML(_ context.Context, data []byte) (*Config, error) {
	raw, err := unmarshalData(data)
	if err != nil {
		return nil, err
	}
	return build(raw)
}

func readRaw(file string) (map[string]any, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read histogram config %s: %w", file, err)
	}
	raw, err := unmarshalData(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse histogram config %s: %w", file, err)
	}
	return raw, nil
}

func unmarshalData(data []byte) (map[string]any, error) {
	raw := map[string]any{}
	// Histogram names must be unique within a file; goccy/go-yaml rejects
	// duplicate mapping keys by default.
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// build decodes the raw map into typed definitions and validates them.
func build(raw map[string]any) (*Config, error) {
	var def definition
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &def,
		TagName:          "yaml",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode histogram config: %w", err)
	}

	cfg := &Config{Histograms: make(map[string]Histogram, len(def.Histograms))}
	for name, d := range def.Histograms {
		h := Histogram{
			Name:   name,
			Column: d.Column,
			Label:  d.Label,
			Bins:   d.Bins,
			Low:    d.Low,
			High:   d.High,
		}
		if d.Scale != nil {
			if *d.Scale <= 0 {
				return nil, fmt.Errorf("histogram %s: %w (got %g)", name, ErrInvalidScale, *d.Scale)
			}
			h.Scale = *d.Scale
		}
		if d.Cut != nil {
			h.Cut = &Cut{Expr: d.Cut.Expr, Label: d.Cut.Label}
		}
		cfg.Histograms[name] = h
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
