package commands

import (
	"fmt"
	"os"

	"github.com/adamf123git/cvs-archive-loader/internal/changeset"
	"github.com/adamf123git/cvs-archive-loader/internal/cvs"
	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Inspect a CVS repository without materializing anything",
	Long: `Walk a local CVS repository, cluster its revisions into changesets,
and report what a visit would do, without writing any objects to a sink.

This command is useful for sizing a visit before running it.`,
	RunE: runAnalyze,
}

var (
	analyzeSource     string
	analyzeFuzzWindow int64
)

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVarP(&analyzeSource, "source", "s", "", "Path to local CVS repository")
	analyzeCmd.Flags().Int64VarP(&analyzeFuzzWindow, "fuzz-window", "w", 300, "Seconds within which same-author/log revisions cluster into one changeset")
	if err := analyzeCmd.MarkFlagRequired("source"); err != nil {
		fmt.Fprintf(os.Stderr, "Error marking flag as required: %v\n", err)
		os.Exit(1)
	}
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	fmt.Printf("Analyzing CVS repository at: %s\n\n", analyzeSource)

	files, err := cvs.WalkRepository(analyzeSource)
	if err != nil {
		return fmt.Errorf("failed to walk repository: %w", err)
	}

	var revisions []cvs.FileRevision
	authors := make(map[string]struct{})
	branches := make(map[string]struct{})

	for _, f := range files {
		for _, rev := range f.FileRevisions() {
			revisions = append(revisions, rev)
			authors[rev.Author] = struct{}{}
		}
	}

	changesets := changeset.Cluster(revisions, analyzeFuzzWindow)
	for _, cs := range changesets {
		branches[cs.Branch] = struct{}{}
	}

	fmt.Println("Repository Analysis Results")
	fmt.Println("============================")
	fmt.Printf("Files:          %d\n", len(files))
	fmt.Printf("Revisions:      %d\n", len(revisions))
	fmt.Printf("Changesets:     %d\n", len(changesets))
	fmt.Printf("Branches:       %d\n", len(branches))
	fmt.Printf("Unique Authors: %d\n\n", len(authors))

	if len(branches) > 0 {
		fmt.Println("Branches:")
		for b := range branches {
			fmt.Printf("  - %s\n", b)
		}
		fmt.Println()
	}

	if len(authors) > 0 {
		fmt.Println("Authors:")
		for a := range authors {
			fmt.Printf("  - %s\n", a)
		}
		fmt.Println()
	}

	fmt.Println("Repository is ready for a visit.")

	return nil
}
