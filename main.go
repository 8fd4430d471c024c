package main

import (
	"os"

	"github.com/benw22022/FASER-2024-DQ-Analyis/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
