package cmd

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// CmdRuns creates and returns a cobra command listing the known runs.
func CmdRuns() *cobra.Command {
	return NewCommand(
		&cobra.Command{
			Use:   "runs",
			Short: "List runs known from the GRL and filelist directories",
			Long: `List runs known from the GRL and filelist directories.

For each run in the Good Run List the table shows the number of NTuple
files, the recorded luminosity, and the number of stable-beam windows.
Runs without a filelist are shown so missing inputs are easy to spot.
`,
			Args: cobra.NoArgs,
		}, nil, runRuns,
	)
}

func runRuns(ctx *Context, _ []string) error {
	index, err := ctx.Filelists()
	if err != nil {
		return err
	}
	list, err := ctx.GRL()
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.AppendHeader(table.Row{"Run", "Files", "Lumi [fb^-1]", "Stable Windows", "Excluded Windows"})

	var totalFiles int
	var totalLumi float64
	for _, run := range list.Runs() {
		files := len(index.Files(run))
		totalFiles += files

		lumiCell := "-"
		if lumi, ok := list.Lumi(run); ok {
			lumiCell = fmt.Sprintf("%.4f", lumi)
			totalLumi += lumi
		}
		t.AppendRow(table.Row{
			run,
			files,
			lumiCell,
			len(list.StableWindows(run)),
			len(list.ExcludedWindows(run)),
		})
	}
	t.AppendFooter(table.Row{"Total", totalFiles, fmt.Sprintf("%.4f", totalLumi), "", ""})

	fmt.Println(t.Render())
	return nil
}
