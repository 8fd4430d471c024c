package build

import "strings"

var (
	// Version is set at build time via -ldflags.
	Version = "dev"
	AppName = "FASER DQ"
	Slug    = ""
)

func init() {
	if Slug == "" {
		Slug = strings.ReplaceAll(strings.ToLower(AppName), " ", "")
	}
}
