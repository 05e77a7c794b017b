package main

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"

	"github.com/spf13/cobra"
)

// Set at build time with -ldflags "-X main.version=...".
var (
	version = ""
	commit  = ""
	date    = ""
)

// buildMeta describes the running binary.
type buildMeta struct {
	Version string
	Commit  string
	Date    string
}

// currentBuild resolves build metadata once. Values set through ldflags win
// over the module build info.
var currentBuild = sync.OnceValue(func() buildMeta {
	meta := buildMeta{Version: "(devel)", Commit: "unknown", Date: "unknown"}
	if info, ok := debug.ReadBuildInfo(); ok {
		if v := info.Main.Version; v != "" {
			meta.Version = v
		}
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				meta.Commit = s.Value[:min(len(s.Value), 7)]
			case "vcs.time":
				meta.Date = s.Value
			}
		}
	}
	for dst, src := range map[*string]string{&meta.Version: version, &meta.Commit: commit, &meta.Date: date} {
		if src != "" {
			*dst = src
		}
	}
	return meta
})

func getVersion() string { return currentBuild().Version }

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			meta := currentBuild()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "aicleaner version %s\n", meta.Version)
			fmt.Fprintf(out, "  commit: %s\n", meta.Commit)
			fmt.Fprintf(out, "  built:  %s\n", meta.Date)
			fmt.Fprintf(out, "  go:     %s\n", runtime.Version())
		},
	}
}
