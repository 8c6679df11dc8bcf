package commands

import (
	"fmt"
	"os"
	"sort"

	"github.com/adamf123git/cvs-archive-loader/internal/cvs"
	"github.com/adamf123git/cvs-archive-loader/internal/materialize"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var authorsCmd = &cobra.Command{
	Use:   "authors",
	Short: "List distinct CVS author identities found during a walk",
	Long: `List every distinct author string found in a CVS repository's RCS
history, along with the Git-style identity cvsloader would synthesize for
each one during a visit.

The output can be plain text (one author per line) or YAML, a map from
each CVS author string to its synthesized identity.`,
	RunE: runAuthorsExtract,
}

var (
	authorsSource            string
	authorsFormat            string
	authorsPlaceholderDomain string
)

func init() {
	rootCmd.AddCommand(authorsCmd)

	authorsCmd.Flags().StringVarP(&authorsSource, "source", "s", "", "Path to local CVS repository")
	authorsCmd.Flags().StringVarP(&authorsFormat, "format", "f", "text", "Output format (text or yaml)")
	authorsCmd.Flags().StringVar(&authorsPlaceholderDomain, "placeholder-domain", "cvs.invalid", "Domain used to synthesize emails for bare usernames")
	if err := authorsCmd.MarkFlagRequired("source"); err != nil {
		fmt.Fprintf(os.Stderr, "Error marking flag as required: %v\n", err)
		os.Exit(1)
	}
}

func runAuthorsExtract(cmd *cobra.Command, args []string) error {
	if authorsFormat != "text" && authorsFormat != "yaml" {
		return fmt.Errorf("unsupported format: %s (supported: text, yaml)", authorsFormat)
	}

	files, err := cvs.WalkRepository(authorsSource)
	if err != nil {
		return fmt.Errorf("failed to walk repository: %w", err)
	}

	seen := make(map[string]struct{})
	for _, f := range files {
		for _, rev := range f.FileRevisions() {
			seen[rev.Author] = struct{}{}
		}
	}

	names := make([]string, 0, len(seen))
	for a := range seen {
		names = append(names, a)
	}
	sort.Strings(names)

	switch authorsFormat {
	case "text":
		for _, a := range names {
			person := materialize.PersonFromAuthor(a, authorsPlaceholderDomain)
			fmt.Printf("%s -> %s <%s>\n", a, person.Name, person.Email)
		}
	case "yaml":
		template := make(map[string]string, len(names))
		for _, a := range names {
			person := materialize.PersonFromAuthor(a, authorsPlaceholderDomain)
			template[a] = fmt.Sprintf("%s <%s>", person.Name, person.Email)
		}
		output, err := yaml.Marshal(template)
		if err != nil {
			return fmt.Errorf("failed to generate YAML: %w", err)
		}
		fmt.Print(string(output))
	}

	return nil
}
