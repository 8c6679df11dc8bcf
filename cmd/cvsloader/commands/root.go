package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information (set at build time)
	Version   = "dev"
	GitCommit = "none"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "cvsloader",
	Short: "Load CVS repository history into a content-addressed object store",
	Long: `cvsloader ingests a CVS repository's RCS history, clusters individual
file revisions into changesets, and materializes them as a linear chain of
synthetic commits over a content-addressed object model identical to Git's
blob/tree/commit encoding.`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Version = Version
}

func handleError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
