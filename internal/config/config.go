// Package config loads the toolkit configuration: analysis input/output
// locations, the external analysis program, and the remote storage endpoint.
package config

// Config is the fully resolved toolkit configuration.
type Config struct {
	Global   Global
	Paths    Paths
	Analysis Analysis
	Storage  Storage

	// Warnings collected while resolving the configuration.
	Warnings []string
}

// Global holds settings that apply to every command.
type Global struct {
	Debug      bool
	LogFormat  string // "text" or "json"
	ConfigPath string // path of the config file actually used, if any
}

// Paths holds the directories and files the analysis reads and writes.
type Paths struct {
	FilelistDir    string // directory of NTuple filelist .txt files
	GRLDir         string // directory of Good Run List .json/.csv files
	OutputDir      string // default output directory for run artifacts
	LogDir         string // directory for job log files
	HistogramsFile string // YAML histogram configuration
	BaseHistograms string // optional shared histogram configuration
	DefinesFile    string // C++ defines header staged next to the analysis
}

// Analysis describes the external analysis program.
type Analysis struct {
	Executable string   // analysis program invoked once per run
	Tree       string   // NTuple tree name
	EnvFile    string   // optional dotenv file loaded before invocation
	ExtraArgs  []string // extra arguments forwarded verbatim
}

// Storage describes the remote object storage endpoint for run outputs.
// An empty endpoint disables uploads.
type Storage struct {
	Endpoint  string
	Bucket    string
	Prefix    string
	AccessKey string
	SecretKey string
	UseTLS    bool
}

// UploadEnabled reports whether run outputs should be uploaded.
func (s Storage) UploadEnabled() bool {
	return s.Endpoint != "" && s.Bucket != ""
}

// Definition mirrors the raw configuration file structure before
// resolution.
type Definition struct {
	Debug     bool   `mapstructure:"debug"`
	LogFormat string `mapstructure:"logFormat"`

	Paths struct {
		FilelistDir    string `mapstructure:"filelistDir"`
		GRLDir         string `mapstructure:"grlDir"`
		OutputDir      string `mapstructure:"outputDir"`
		LogDir         string `mapstructure:"logDir"`
		HistogramsFile string `mapstructure:"histogramsFile"`
		BaseHistograms string `mapstructure:"baseHistograms"`
		DefinesFile    string `mapstructure:"definesFile"`
	} `mapstructure:"paths"`

	Analysis struct {
		Executable string   `mapstructure:"executable"`
		Tree       string   `mapstructure:"tree"`
		EnvFile    string   `mapstructure:"envFile"`
		ExtraArgs  []string `mapstructure:"extraArgs"`
	} `mapstructure:"analysis"`

	Storage struct {
		Endpoint  string `mapstructure:"endpoint"`
		Bucket    string `mapstructure:"bucket"`
		Prefix    string `mapstructure:"prefix"`
		AccessKey string `mapstructure:"accessKey"`
		SecretKey string `mapstructure:"secretKey"`
		UseTLS    bool   `mapstructure:"useTLS"`
	} `mapstructure:"storage"`
}
