package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"

	"github.com/benw22022/FASER-2024-DQ-Analyis/internal/build"
	"github.com/benw22022/FASER-2024-DQ-Analyis/internal/fileutil"
)

// Load creates a new configuration by instantiating a Loader with the
// provided options and invoking its Load method.
func Load(opts ...LoaderOption) (*Config, error) {
	loader := NewLoader(opts...)
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// Loader reads and merges configuration from the config file and the
// environment.
type Loader struct {
	lock       sync.Mutex
	configFile string
	warnings   []string
}

// LoaderOption defines a functional option for configuring a Loader.
type LoaderOption func(*Loader)

// WithConfigFile sets an explicit configuration file path.
func WithConfigFile(configFile string) LoaderOption {
	return func(l *Loader) {
		l.configFile = configFile
	}
}

// NewLoader creates a new Loader instance and applies all given options.
func NewLoader(options ...LoaderOption) *Loader {
	loader := &Loader{}
	for _, option := range options {
		option(loader)
	}
	return loader
}

// Load initialises viper, reads the configuration file when present, and
// returns a fully built Config.
func (l *Loader) Load() (*Config, error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	v := viper.New()
	l.setupViper(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Running without a config file is fine; env and flags cover it.
	}

	var def Definition
	if err := v.Unmarshal(&def); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg, err := l.buildConfig(def)
	if err != nil {
		return nil, fmt.Errorf("failed to build config: %w", err)
	}

	cfg.Warnings = l.warnings
	cfg.Global.ConfigPath = v.ConfigFileUsed()
	return cfg, nil
}

func (l *Loader) setupViper(v *viper.Viper) {
	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join(xdg.ConfigHome, build.Slug))
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(strings.ToUpper(build.Slug))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults also register the keys for environment binding.
	v.SetDefault("debug", false)
	v.SetDefault("logFormat", "text")
	v.SetDefault("paths.filelistDir", "filelists")
	v.SetDefault("paths.grlDir", "grls")
	v.SetDefault("paths.outputDir", "output")
	v.SetDefault("paths.logDir", "")
	v.SetDefault("paths.histogramsFile", "histograms.yaml")
	v.SetDefault("paths.baseHistograms", "")
	v.SetDefault("paths.definesFile", "RDFDefines.h")
	v.SetDefault("analysis.executable", "faser_dq_rdf")
	v.SetDefault("analysis.tree", "nt")
	v.SetDefault("analysis.envFile", "")
	v.SetDefault("analysis.extraArgs", []string{})
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.prefix", "dq")
	v.SetDefault("storage.accessKey", "")
	v.SetDefault("storage.secretKey", "")
	v.SetDefault("storage.useTLS", true)
}

// buildConfig resolves the raw Definition into the final Config.
func (l *Loader) buildConfig(def Definition) (*Config, error) {
	var cfg Config

	cfg.Global = Global{
		Debug:     def.Debug,
		LogFormat: def.LogFormat,
	}

	var err error
	cfg.Paths.FilelistDir, err = fileutil.ResolvePath(def.Paths.FilelistDir)
	if err != nil {
		return nil, err
	}
	cfg.Paths.GRLDir, err = fileutil.ResolvePath(def.Paths.GRLDir)
	if err != nil {
		return nil, err
	}
	cfg.Paths.OutputDir, err = fileutil.ResolvePath(def.Paths.OutputDir)
	if err != nil {
		return nil, err
	}
	cfg.Paths.LogDir, err = fileutil.ResolvePath(def.Paths.LogDir)
	if err != nil {
		return nil, err
	}
	if cfg.Paths.LogDir == "" {
		cfg.Paths.LogDir = filepath.Join(cfg.Paths.OutputDir, "logs")
	}
	cfg.Paths.HistogramsFile, err = fileutil.ResolvePath(def.Paths.HistogramsFile)
	if err != nil {
		return nil, err
	}
	cfg.Paths.BaseHistograms, err = fileutil.ResolvePath(def.Paths.BaseHistograms)
	if err != nil {
		return nil, err
	}
	cfg.Paths.DefinesFile, err = fileutil.ResolvePath(def.Paths.DefinesFile)
	if err != nil {
		return nil, err
	}

	cfg.Analysis = Analysis{
		Executable: def.Analysis.Executable,
		Tree:       def.Analysis.Tree,
		EnvFile:    def.Analysis.EnvFile,
		ExtraArgs:  def.Analysis.ExtraArgs,
	}
	if cfg.Analysis.Tree == "" {
		cfg.Analysis.Tree = "nt"
	}

	cfg.Storage = Storage{
		Endpoint:  def.Storage.Endpoint,
		Bucket:    def.Storage.Bucket,
		Prefix:    def.Storage.Prefix,
		AccessKey: def.Storage.AccessKey,
		SecretKey: def.Storage.SecretKey,
		UseTLS:    def.Storage.UseTLS,
	}
	// The batch wrapper scripts exported the endpoint as a plain
	// environment variable; keep honouring it.
	if cfg.Storage.Endpoint == "" {
		cfg.Storage.Endpoint = os.Getenv("STORAGE_ENDPOINT")
	}
	if cfg.Storage.Endpoint != "" && cfg.Storage.Bucket == "" {
		l.warnings = append(l.warnings,
			"storage endpoint configured without a bucket; uploads are disabled")
	}

	return &cfg, nil
}
