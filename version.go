package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Set via -ldflags "-X main.gitRelease=... -X main.gitCommit=...".
var (
	gitRelease    = "dev"
	gitCommit     = "unknown"
	gitCommitDate = "unknown"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "promptist %s\n", gitRelease)
			fmt.Fprintf(w, "  Go:     %s\n", runtime.Version())
			fmt.Fprintf(w, "  Commit: %s\n", gitCommit)
			fmt.Fprintf(w, "  Date:   %s\n", gitCommitDate)
		},
	}
}
