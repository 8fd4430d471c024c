package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type commandLineFlag struct {
	name, shorthand, defaultValue, usage string
	required                             bool
	isBool                               bool
}

var (
	configFlag = commandLineFlag{
		name:      "config",
		shorthand: "c",
		usage:     "config file (default is $XDG_CONFIG_HOME/faserdq/config.yaml)",
	}
	quietFlag = commandLineFlag{
		name:      "quiet",
		shorthand: "q",
		usage:     "suppress output to stderr",
		isBool:    true,
	}
	outputDirFlag = commandLineFlag{
		name:      "output-dir",
		shorthand: "o",
		usage:     "directory receiving the run output files",
	}
	dryRunFlag = commandLineFlag{
		name:   "dry-run",
		usage:  "write the submit artifacts but do not call condor_submit",
		isBool: true,
	}
	combinedFileFlag = commandLineFlag{
		name:         "output",
		shorthand:    "o",
		defaultValue: "combined.yoda",
		usage:        "path of the combined yield file",
	}
)

func initFlags(cmd *cobra.Command, addFlags ...commandLineFlag) {
	flags := append([]commandLineFlag{configFlag, quietFlag}, addFlags...)
	for _, flag := range flags {
		if flag.isBool {
			cmd.Flags().BoolP(flag.name, flag.shorthand, flag.defaultValue == "true", flag.usage)
		} else {
			cmd.Flags().StringP(flag.name, flag.shorthand, flag.defaultValue, flag.usage)
		}
		if flag.required {
			if err := cmd.MarkFlagRequired(flag.name); err != nil {
				fmt.Printf("failed to mark flag %s as required: %v\n", flag.name, err)
			}
		}
	}
}

func bindFlags(cmd *cobra.Command, addFlags ...commandLineFlag) {
	flags := append([]commandLineFlag{configFlag, quietFlag}, addFlags...)
	for _, flag := range flags {
		if err := viper.BindPFlag(flag.name, cmd.Flags().Lookup(flag.name)); err != nil {
			fmt.Printf("failed to bind flag %s: %v\n", flag.name, err)
		}
	}
}
