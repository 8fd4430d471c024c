package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/benw22022/FASER-2024-DQ-Analyis/internal/analysis"
	"github.com/benw22022/FASER-2024-DQ-Analyis/internal/config"
	"github.com/benw22022/FASER-2024-DQ-Analyis/internal/filelist"
	"github.com/benw22022/FASER-2024-DQ-Analyis/internal/grl"
	"github.com/benw22022/FASER-2024-DQ-Analyis/internal/logger"
	"github.com/benw22022/FASER-2024-DQ-Analyis/internal/storage"
)

// Context holds the configuration for a command.
type Context struct {
	context.Context

	Command *cobra.Command
	Flags   []commandLineFlag
	Config  *config.Config
	Quiet   bool
}

// NewContext initializes the application setup by loading configuration,
// setting up logger context, and logging any warnings.
func NewContext(cmd *cobra.Command, flags []commandLineFlag) (*Context, error) {
	ctx := cmd.Context()

	bindFlags(cmd, flags...)

	quiet, err := cmd.Flags().GetBool("quiet")
	if err != nil {
		return nil, fmt.Errorf("failed to get quiet flag: %w", err)
	}

	var loaderOpts []config.LoaderOption
	if cfgPath := viper.GetString("config"); cfgPath != "" {
		loaderOpts = append(loaderOpts, config.WithConfigFile(cfgPath))
	}

	cfg, err := config.Load(loaderOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	var opts []logger.Option
	if cfg.Global.Debug || os.Getenv("DEBUG") != "" {
		opts = append(opts, logger.WithDebug())
	}
	if quiet {
		opts = append(opts, logger.WithQuiet())
	}
	if cfg.Global.LogFormat != "" {
		opts = append(opts, logger.WithFormat(cfg.Global.LogFormat))
	}
	ctx = logger.WithLogger(ctx, logger.NewLogger(opts...))

	for _, w := range cfg.Warnings {
		logger.Warn(ctx, w)
	}

	return &Context{
		Context: ctx,
		Command: cmd,
		Flags:   flags,
		Config:  cfg,
		Quiet:   quiet,
	}, nil
}

// LogToFile adds a file writer to the logger context.
func (c *Context) LogToFile(f *os.File) {
	var opts []logger.Option
	if c.Config.Global.Debug {
		opts = append(opts, logger.WithDebug())
	}
	if c.Quiet {
		opts = append(opts, logger.WithQuiet())
	}
	if c.Config.Global.LogFormat != "" {
		opts = append(opts, logger.WithFormat(c.Config.Global.LogFormat))
	}
	if f != nil {
		opts = append(opts, logger.WithWriter(f))
	}
	c.Context = logger.WithLogger(c.Context, logger.NewLogger(opts...))
}

// StringParam retrieves a string flag value from the command.
func (c *Context) StringParam(name string) (string, error) {
	val, err := c.Command.Flags().GetString(name)
	if err != nil {
		return "", fmt.Errorf("failed to get flag %s: %w", name, err)
	}
	return val, nil
}

// Filelists loads the NTuple filelist directory from the configuration.
func (c *Context) Filelists() (*filelist.Index, error) {
	index, err := filelist.Load(c.Config.Paths.FilelistDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load filelists: %w", err)
	}
	return index, nil
}

// GRL loads the Good Run List directory from the configuration.
func (c *Context) GRL() (*grl.List, error) {
	list, err := grl.Load(c.Config.Paths.GRLDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load GRL: %w", err)
	}
	return list, nil
}

// Uploader returns the storage client when uploads are configured, nil
// otherwise.
func (c *Context) Uploader() (analysis.Uploader, error) {
	if !c.Config.Storage.UploadEnabled() {
		return nil, nil
	}
	client, err := storage.New(c.Config.Storage)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// NewCommand creates a new command instance with the given cobra command and run function.
func NewCommand(cmd *cobra.Command, flags []commandLineFlag, runFunc func(ctx *Context, args []string) error) *cobra.Command {
	initFlags(cmd, flags...)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		ctx, err := NewContext(cmd, flags)
		if err != nil {
			fmt.Printf("Initialization error: %v\n", err)
			os.Exit(1)
		}
		if err := runFunc(ctx, args); err != nil {
			logger.Error(ctx.Context, "Command failed", "err", err)
			os.Exit(1)
		}
		return nil
	}

	return cmd
}
