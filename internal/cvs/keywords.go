package cvs

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// keywordPattern matches a single "$Keyword$" or "$Keyword: value $"
// occurrence. RCS keywords are always a single identifier, optionally
// followed by ": " and an expansion value, delimited by dollar signs.
var keywordPattern = regexp.MustCompile(`\$([A-Za-z]+)(:[^$\n]*)?\$`)

// knownKeywords is the set of keywords RCS/CVS expand, plus a few
// vendor extensions (Name, Source) CVS adds on top of plain RCS.
var knownKeywords = map[string]bool{
	"Author":   true,
	"Date":     true,
	"Header":   true,
	"Id":       true,
	"Locker":   true,
	"Log":      true,
	"Name":     true,
	"RCSfile":  true,
	"Revision": true,
	"Source":   true,
	"State":    true,
}

// ExpansionContext carries everything needed to expand keywords for one
// revision of one file.
type ExpansionContext struct {
	Path     string // working-file path of the revision; no keyword value uses it
	RCSPath  string // path to the ,v file itself, for $RCSfile$, $Id$, $Header$, $Source$ and $Log$
	Revision RevisionNumber
	Date     time.Time
	Author   string
	State    string
	Locker   string // empty unless the revision is currently locked
	Mode     KeywordMode
}

func rcsDateString(t time.Time) string {
	return t.UTC().Format("2006/01/02 15:04:05")
}

func keywordValue(name string, ctx ExpansionContext) string {
	switch name {
	case "Author":
		return ctx.Author
	case "Date":
		return rcsDateString(ctx.Date)
	case "Header":
		s := fmt.Sprintf("%s %s %s %s %s",
			ctx.RCSPath, ctx.Revision.String(), rcsDateString(ctx.Date), ctx.Author, ctx.State)
		if ctx.Locker != "" {
			s += " " + ctx.Locker
		}
		return s
	case "Id":
		base := lastPathElement(ctx.RCSPath)
		s := fmt.Sprintf("%s %s %s %s %s",
			base, ctx.Revision.String(), rcsDateString(ctx.Date), ctx.Author, ctx.State)
		if ctx.Locker != "" {
			s += " " + ctx.Locker
		}
		return s
	case "Locker":
		return ctx.Locker
	case "Name":
		return ""
	case "RCSfile":
		return lastPathElement(ctx.RCSPath)
	case "Revision":
		return ctx.Revision.String()
	case "Source":
		return ctx.RCSPath
	case "State":
		return ctx.State
	default:
		return ""
	}
}

func lastPathElement(p string) string {
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		return p[i+1:]
	}
	return p
}

// ExpandKeywords replaces every recognized "$Keyword$"/"$Keyword: ... $"
// occurrence in text according to ctx.Mode. $Log$ lines are special: the
// "$Log$" or "$Log: ... $" token is rewritten to "$Log: <rcsfile> $" and
// the log message is inserted after that line, each inserted line
// prefixed with commentLeader (or, when it is empty, with the text that
// precedes "$Log" on the line). Log lines inserted by an earlier
// expansion are kept as they are, so expanding already-expanded text
// inserts the message a second time.
func ExpandKeywords(text string, ctx ExpansionContext, commentLeader, logMessage string) string {
	if ctx.Mode == KeywordModeOldKeyword || ctx.Mode == KeywordModeBinary {
		return text
	}

	lines := strings.SplitAfter(text, "\n")
	var out strings.Builder
	for _, line := range lines {
		out.WriteString(expandLine(line, ctx, commentLeader, logMessage))
	}
	return out.String()
}

func expandLine(line string, ctx ExpansionContext, commentLeader, logMessage string) string {
	if idx := strings.Index(line, "$Log"); idx >= 0 {
		return expandLogLine(line, ctx, commentLeader, logMessage)
	}

	return keywordPattern.ReplaceAllStringFunc(line, func(m string) string {
		sub := keywordPattern.FindStringSubmatch(m)
		name := sub[1]
		if !knownKeywords[name] {
			return m
		}
		value := keywordValue(name, ctx)
		switch ctx.Mode {
		case KeywordModeK:
			return "$" + name + "$"
		case KeywordModeValueOnly:
			return value
		case KeywordModeKVL:
			return "$" + name + ": " + value + " $"
		default:
			if value == "" {
				return "$" + name + "$"
			}
			return "$" + name + ": " + value + " $"
		}
	})
}

// expandLogLine re-expands a "$Log$" (or previously expanded "$Log: ...
// $") line into itself followed by one comment-prefixed line per line of
// logMessage, prefixed with commentLeader, or with the text that precedes
// the "$Log" token on the original line when commentLeader is empty.
func expandLogLine(line string, ctx ExpansionContext, commentLeader, logMessage string) string {
	idx := strings.Index(line, "$Log")
	prefix := line[:idx]
	rest := line[idx:]
	end := strings.Index(rest, "$\n")
	suffix := "\n"
	if end < 0 {
		if e2 := strings.IndexByte(rest, '$'); e2 >= 0 && e2+1 == len(rest) {
			suffix = ""
		}
	}

	leader := prefix
	if commentLeader != "" {
		leader = commentLeader
	}

	var b strings.Builder
	b.WriteString(prefix)
	b.WriteString("$Log: ")
	b.WriteString(lastPathElement(ctx.RCSPath))
	b.WriteString(" $")
	b.WriteString(suffix)

	for _, l := range strings.Split(logMessage, "\n") {
		if l == "" {
			b.WriteString(leader)
			b.WriteString("\n")
			continue
		}
		b.WriteString(leader)
		b.WriteString(l)
		b.WriteString("\n")
	}

	return b.String()
}
