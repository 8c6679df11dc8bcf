package cvs

import "time"

// KeywordMode selects how RCS keywords are expanded on checkout, set by
// the file's "expand" admin field (or overridden per-checkout by a CVS
// wire client's "-kb" option).
type KeywordMode int

const (
	// KeywordModeDefault expands keywords to "$Keyword: value $" (kv).
	KeywordModeDefault KeywordMode = iota
	// KeywordModeKVL is kv plus the locker name when the revision is locked.
	KeywordModeKVL
	// KeywordModeK emits only "$Keyword$", dropping the value.
	KeywordModeK
	// KeywordModeOldKeyword ("o") leaves keyword strings untouched.
	KeywordModeOldKeyword
	// KeywordModeBinary ("b") is like "o" and additionally marks the file
	// as binary, suppressing newline translation.
	KeywordModeBinary
	// KeywordModeValueOnly ("v") emits just the value, no keyword name or
	// delimiters; valid only for single-keyword lines such as $Id$.
	KeywordModeValueOnly
)

func parseKeywordMode(s string) KeywordMode {
	switch s {
	case "kv":
		return KeywordModeDefault
	case "kvl":
		return KeywordModeKVL
	case "k":
		return KeywordModeK
	case "o":
		return KeywordModeOldKeyword
	case "b":
		return KeywordModeBinary
	case "v":
		return KeywordModeValueOnly
	default:
		return KeywordModeDefault
	}
}

// Delta is one revision's metadata node in an RCS file's admin section:
// author, date, state, and links to neighbouring revisions. The delta's
// log message and text (full snapshot or ed-script diff against the
// previous revision) live separately in DeltaText, matching the RCS file
// grammar's own split between the two sections.
type Delta struct {
	Revision RevisionNumber
	Date     time.Time
	Author   string
	State    string
	Branches []RevisionNumber
	Next     RevisionNumber
	// CommitID is the RCS "commitid" extension field used by CVS and
	// CVSNT to group revisions across files that were committed together
	// in a single `cvs commit` invocation.
	CommitID string
}

// DeltaText carries a delta's log message and body text. Text is the
// literal content of the RCS "text" field: for the head revision it is a
// full snapshot; for every other revision it is an ed script describing
// how to derive that revision's text from the revision nearer the head
// on the same chain.
type DeltaText struct {
	Revision RevisionNumber
	Log      string
	Text     string
}

// RCSFile is a fully parsed ,v file: the admin header, the delta graph,
// and delta text/log bodies, kept as three maps exactly as the on-disk
// grammar separates them (admin phrases, then one node per delta, then
// one entry per delta's log+text).
type RCSFile struct {
	Head        RevisionNumber
	Branch      RevisionNumber
	Access      []string
	Symbols     map[string]RevisionNumber
	Locks       map[string]RevisionNumber
	StrictLocks bool
	Comment     string
	Expand      KeywordMode
	Description string

	Deltas     map[string]*Delta
	DeltaOrder []string // revision strings in file order, head first
	DeltaTexts map[string]*DeltaText
}

// newRCSFile returns an RCSFile with its maps initialized.
func newRCSFile() *RCSFile {
	return &RCSFile{
		Symbols:    make(map[string]RevisionNumber),
		Locks:      make(map[string]RevisionNumber),
		Deltas:     make(map[string]*Delta),
		DeltaTexts: make(map[string]*DeltaText),
	}
}

// Branches returns the symbolic names whose revision number is a branch
// number, e.g. {"vendorbranch": "1.1.1"}.
func (r *RCSFile) Branches() map[string]RevisionNumber {
	out := make(map[string]RevisionNumber)
	for sym, rev := range r.Symbols {
		if rev.IsBranch() {
			out[sym] = rev.Canonical()
		}
	}
	return out
}

// Tags returns the symbolic names that point directly at a revision
// rather than a branch.
func (r *RCSFile) Tags() map[string]RevisionNumber {
	out := make(map[string]RevisionNumber)
	for sym, rev := range r.Symbols {
		if !rev.IsBranch() {
			out[sym] = rev
		}
	}
	return out
}

// DeltaAt returns the delta node for rev, if any.
func (r *RCSFile) DeltaAt(rev RevisionNumber) (*Delta, bool) {
	d, ok := r.Deltas[rev.String()]
	return d, ok
}

// BranchPointOf finds the delta on the file's main chain (trunk or a
// branch's own chain) from which branch rev's chain departs, by scanning
// every delta's Branches list for an entry whose Branch() matches the
// branch number. Returns the zero revision if the branch is unreferenced
// (can happen for a branch tag on a path CVS never committed to).
func (r *RCSFile) BranchPointOf(branch RevisionNumber) (RevisionNumber, bool) {
	for _, rev := range r.DeltaOrder {
		d := r.Deltas[rev]
		for _, b := range d.Branches {
			if b.Branch().Equal(branch) {
				return d.Revision, true
			}
		}
	}
	return RevisionNumber{}, false
}
