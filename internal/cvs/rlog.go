package cvs

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// FileRevision is one revision of one file as reported by `cvs rlog` (or
// reconstructed from a local RCS walk): enough to place it into a
// changeset without needing the RCS file itself.
type FileRevision struct {
	Path      string // working-file path, relative to the module root
	RCSPath   string // path to the ,v file as reported by rlog
	Revision  RevisionNumber
	Date      time.Time
	Author    string
	State     string // "dead" marks a removal
	Log       string
	Branches  []RevisionNumber
	CommitID  string
	Symbols   map[string]RevisionNumber
	HeadDead  bool // the file's head revision is in state "dead" (Attic)
}

const (
	fileSeparator     = "============================================================================="
	revisionSeparator = "----------------------------"
)

var (
	reRevision = regexp.MustCompile(`^revision\s+([0-9.]+)`)
	reLogInfo  = regexp.MustCompile(`^date:\s*([^;]+);\s*author:\s*([^;]+);\s*state:\s*([^;]+);(.*)$`)
	reCommitID = regexp.MustCompile(`commitid:\s*([A-Za-z0-9]+)`)
	reSymbol   = regexp.MustCompile(`^\s*([^:]+):\s*([0-9.]+)\s*$`)

	reCVSNTError = regexp.MustCompile(`^cvs rlog: .*: No such file or directory$`)
	reLogError   = regexp.MustCompile(`^rlog(?:\[[0-9]+\])?: .*$`)
)

// ParseRlog reads the full textual output of `cvs rlog` (or `cvs -r rlog`
// over the wire protocol, after the MT-framing has been stripped) and
// returns every file revision it describes, in the order rlog printed
// them.
func ParseRlog(r io.Reader) ([]FileRevision, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	var out []FileRevision

	for scanner.Scan() {
		line := scanner.Text()

		if reCVSNTError.MatchString(line) || reLogError.MatchString(line) {
			continue
		}

		if strings.HasPrefix(line, "RCS file:") {
			revs, err := parseOneFile(scanner, line)
			if err != nil {
				return nil, err
			}
			out = append(out, revs...)
			continue
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return out, nil
}

// parseOneFile consumes one file's rlog record starting at its "RCS
// file:" line (already read into rcsLine) through the trailing "==="
// file separator, returning every revision entry found.
func parseOneFile(scanner *bufio.Scanner, rcsLine string) ([]FileRevision, error) {
	rcsPath := strings.TrimSpace(strings.TrimPrefix(rcsLine, "RCS file:"))

	var workingFile string
	symbols := make(map[string]RevisionNumber)
	headRev := RevisionNumber{}
	headState := ""

	inSymbols := false

	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case strings.HasPrefix(line, "Working file:"):
			workingFile = strings.TrimSpace(strings.TrimPrefix(line, "Working file:"))
			inSymbols = false

		case strings.HasPrefix(line, "head:"):
			rev := strings.TrimSpace(strings.TrimPrefix(line, "head:"))
			headRev, _ = ParseRevisionNumber(rev)
			inSymbols = false

		case strings.HasPrefix(line, "symbolic names:"):
			inSymbols = true

		case inSymbols && reSymbol.MatchString(line):
			m := reSymbol.FindStringSubmatch(line)
			rev, err := ParseRevisionNumber(strings.TrimSpace(m[2]))
			if err == nil {
				symbols[strings.TrimSpace(m[1])] = rev
			}

		case strings.HasPrefix(line, "keyword substitution:"),
			strings.HasPrefix(line, "total revisions:"),
			strings.HasPrefix(line, "access list:"),
			strings.HasPrefix(line, "locks:"),
			strings.HasPrefix(line, "description:"):
			inSymbols = false

		case line == revisionSeparator:
			entry, isLast, err := parseOneRevision(scanner, workingFile, rcsPath, symbols)
			if err != nil {
				return nil, err
			}
			if entry.Revision.Equal(headRev) {
				headState = entry.State
			}
			entries := []FileRevision{entry}
			for !isLast {
				var next FileRevision
				next, isLast, err = parseOneRevision(scanner, workingFile, rcsPath, symbols)
				if err != nil {
					return nil, err
				}
				if next.Revision.Equal(headRev) {
					headState = next.State
				}
				entries = append(entries, next)
			}
			for i := range entries {
				entries[i].HeadDead = headState == "dead"
			}
			return entries, nil

		case line == fileSeparator:
			return nil, nil
		}
	}

	return nil, nil
}

// parseOneRevision consumes one "revision N.N" block, stopping at the
// next revision separator (returning isLast=false) or the file separator
// (returning isLast=true).
func parseOneRevision(scanner *bufio.Scanner, workingFile, rcsPath string, symbols map[string]RevisionNumber) (FileRevision, bool, error) {
	entry := FileRevision{
		Path:    workingFile,
		RCSPath: rcsPath,
		Symbols: symbols,
	}

	if !scanner.Scan() {
		return entry, true, nil
	}
	revLine := scanner.Text()
	if m := reRevision.FindStringSubmatch(revLine); m != nil {
		entry.Revision, _ = ParseRevisionNumber(m[1])
	}

	if !scanner.Scan() {
		return entry, true, nil
	}
	infoLine := scanner.Text()
	if m := reLogInfo.FindStringSubmatch(infoLine); m != nil {
		entry.Date = cvsStrptime(strings.TrimSpace(m[1]))
		entry.Author = strings.TrimSpace(m[2])
		entry.State = strings.TrimSpace(m[3])
		if cm := reCommitID.FindStringSubmatch(m[4]); cm != nil {
			entry.CommitID = cm[1]
		}
	}

	var logLines []string
	for scanner.Scan() {
		line := scanner.Text()
		if line == revisionSeparator {
			entry.Log = strings.Join(logLines, "\n")
			return entry, false, nil
		}
		if line == fileSeparator {
			entry.Log = strings.Join(logLines, "\n")
			return entry, true, nil
		}
		logLines = append(logLines, line)
	}

	entry.Log = strings.Join(logLines, "\n")
	return entry, true, nil
}

// cvsStrptime parses the two date formats `cvs rlog` emits: the classic
// "YYYY/MM/DD HH:MM:SS" and the ISO-ish "YYYY-MM-DD HH:MM:SS +0000" used
// by newer CVS/CVSNT servers.
func cvsStrptime(s string) time.Time {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006/01/02 15:04:05", s); err == nil {
		return t.UTC()
	}
	if t, err := time.Parse("2006-01-02 15:04:05 -0700", s); err == nil {
		return t.UTC()
	}
	return time.Time{}
}

// GetLog seeks r to offset and returns the lines from there up to the
// next revision or file separator: the log message of one revision entry
// when offset is the byte position where that entry's log text begins.
// The caller supplies the offset; ParseRlog records no offsets and keeps
// each revision's message in FileRevision.Log instead.
func GetLog(r io.ReadSeeker, offset int64) (string, error) {
	if _, err := r.Seek(offset, io.SeekStart); err != nil {
		return "", err
	}
	scanner := bufio.NewScanner(r)
	var logLines []string
	for scanner.Scan() {
		line := scanner.Text()
		if line == revisionSeparator || line == fileSeparator {
			break
		}
		logLines = append(logLines, line)
	}
	return strings.Join(logLines, "\n"), scanner.Err()
}

// ParseRevisionCount extracts the "selected revisions" count from a
// "total revisions: N; selected revisions: M" line, used when reporting
// progress before a full rlog has been walked.
func ParseRevisionCount(line string) (int, bool) {
	idx := strings.Index(line, "selected revisions:")
	if idx < 0 {
		return 0, false
	}
	rest := strings.TrimSpace(line[idx+len("selected revisions:"):])
	rest = strings.TrimSuffix(rest, ";")
	n, err := strconv.Atoi(strings.TrimSpace(rest))
	if err != nil {
		return 0, false
	}
	return n, true
}
