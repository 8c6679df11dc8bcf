package materialize

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/adamf123git/cvs-archive-loader/internal/objects"
)

var authorPattern = regexp.MustCompile(`^(.+?)\s*<(.+?)>$`)

// PersonFromAuthor derives a commit Person directly from a raw CVS
// author string, with no external mapping file to maintain: "Name
// <email>" (already present on some CVSNT servers' commitid-aware
// rlog output) is used verbatim, and a bare username is synthesized
// into "username <username@placeholderDomain>", the same fallback
// git-cvsimport applies when run without an authors file.
func PersonFromAuthor(author, placeholderDomain string) objects.Person {
	trimmed := strings.TrimSpace(author)
	if m := authorPattern.FindStringSubmatch(trimmed); m != nil {
		return objects.Person{Name: m[1], Email: m[2]}
	}

	name := trimmed
	if name == "" {
		name = "unknown"
	}
	return objects.Person{Name: name, Email: fmt.Sprintf("%s@%s", name, placeholderDomain)}
}
