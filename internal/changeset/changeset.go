// Package changeset clusters the per-file revisions produced by
// internal/cvs (via a local walk or an rlog fetch) into changesets: the
// same grouping `cvs commit` itself draws a single commit across many
// ,v files into, which CVS never stores explicitly anywhere on disk.
package changeset

import (
	"sort"

	"github.com/adamf123git/cvs-archive-loader/internal/cvs"
)

// FileChange is one file's contribution to a Changeset.
type FileChange struct {
	Path     string
	Revision cvs.RevisionNumber
	State    string // "dead" marks a removal
}

// Changeset is a cluster of FileRevisions judged to be one logical
// commit: same branch, same author, same log message, and close enough
// in time (or sharing an explicit RCS commitid) to belong together.
type Changeset struct {
	Branch   string // "HEAD", "VENDOR", or a named branch
	Author   string
	Log      string
	CommitID string
	MinTime  int64 // unix seconds of the earliest revision in the cluster
	MaxTime  int64 // unix seconds of the latest revision in the cluster
	Files    []FileChange
}

func (c *Changeset) merge(o *Changeset) {
	c.Files = append(c.Files, o.Files...)
	if o.MinTime < c.MinTime {
		c.MinTime = o.MinTime
	}
	if o.MaxTime > c.MaxTime {
		c.MaxTime = o.MaxTime
	}
}

// sameCluster reports whether o belongs in the same changeset as c:
// same branch/author/log always required. When both carry a non-empty
// commitid, the commitids alone decide (different ids never merge);
// otherwise o must arrive within fuzzWindow seconds of c's existing
// time span.
func (c *Changeset) sameCluster(o *Changeset, fuzzWindow int64) bool {
	if c.Branch != o.Branch || c.Author != o.Author || c.Log != o.Log {
		return false
	}
	if c.CommitID != "" && o.CommitID != "" {
		return c.CommitID == o.CommitID
	}
	if o.MinTime >= c.MinTime-fuzzWindow && o.MinTime <= c.MaxTime+fuzzWindow {
		return true
	}
	return o.MaxTime >= c.MinTime-fuzzWindow && o.MaxTime <= c.MaxTime+fuzzWindow
}

// branchLabel resolves the CVS-internal branch id string a revision
// belongs to ("HEAD" for the trunk, "VENDOR" for 1.1.1.x, or a symbolic
// branch tag name) the same way cvs2gitdump's rlog conversion does:
// scanning the file's symbol table for a tag whose (possibly magic)
// branch number matches.
func branchLabel(rev cvs.RevisionNumber, symbols map[string]cvs.RevisionNumber) string {
	branch := rev.Branch()
	if branch.String() == "1" {
		return "HEAD"
	}
	if branch.String() == "1.1.1" {
		return "VENDOR"
	}
	for name, symRev := range symbols {
		if !symRev.IsBranch() {
			continue
		}
		if symRev.Canonical().Equal(branch) {
			return name
		}
	}
	return branch.String()
}

// Cluster groups a module's flattened FileRevisions into Changesets,
// using fuzzWindow seconds as the maximum time gap allowed between two
// revisions with identical branch/author/log before they are treated
// as two separate commits. A default of 300s matches CVS's own
// convention (and cvs2gitdump's default) for how long a single `cvs
// commit` invocation may take to write out every file.
//
// Vendor-branch revisions are suppressed as skipRevision describes: a
// dead 1.1.1.1 is always dropped, as is a 1.1.1.1 arriving after the
// file's 1.1 was already accepted.
func Cluster(revisions []cvs.FileRevision, fuzzWindow int64) []*Changeset {
	byKey := make(map[clusterKey][]*Changeset)
	var order []clusterKey

	haveInitial := make(map[string]bool) // path -> a 1.1 or 1.1.1.1 already accepted
	novendor := make(map[string]bool)    // path -> trunk has diverged past 1.1

	sorted := make([]cvs.FileRevision, len(revisions))
	copy(sorted, revisions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	for _, rev := range sorted {
		if skipRevision(rev, haveInitial, novendor) {
			continue
		}

		branch := branchLabel(rev.Revision, rev.Symbols)
		cand := &Changeset{
			Branch:   branch,
			Author:   rev.Author,
			Log:      rev.Log,
			CommitID: rev.CommitID,
			MinTime:  rev.Date.Unix(),
			MaxTime:  rev.Date.Unix(),
			Files: []FileChange{{
				Path:     rev.Path,
				Revision: rev.Revision,
				State:    rev.State,
			}},
		}

		key := clusterKey{branch: branch, author: rev.Author, log: rev.Log}
		merged := false
		for _, existing := range byKey[key] {
			if existing.sameCluster(cand, fuzzWindow) {
				existing.merge(cand)
				merged = true
				break
			}
		}
		if !merged {
			byKey[key] = append(byKey[key], cand)
			order = append(order, key)
		}
	}

	seen := make(map[*Changeset]bool)
	var out []*Changeset
	for _, key := range order {
		for _, cs := range byKey[key] {
			if seen[cs] {
				continue
			}
			seen[cs] = true
			out = append(out, cs)
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].MinTime < out[j].MinTime })
	return out
}

type clusterKey struct {
	branch, author, log string
}

// skipRevision implements the vendor-branch suppression rules ported
// from RlogConv._process_rlog_entry: a 1.1.1.1 import is dropped once
// the file's 1.1 was already accepted, and a 1.1 once its 1.1.1.1 was;
// a dead 1.1.1.1 or a dead 1.1 is always dropped rather than becoming a
// pointless empty commit; later 1.1.1.x vendor revisions are dropped
// once trunk has moved past 1.1.
func skipRevision(rev cvs.FileRevision, haveInitial, novendor map[string]bool) bool {
	path := rev.Path
	r := rev.Revision

	switch {
	case r.String() == "1.1.1.1":
		if haveInitial[path] {
			return true
		}
		if rev.State == "dead" {
			return true
		}
		haveInitial[path] = true
		return false

	case r.Branch().String() == "1.1.1":
		return novendor[path]

	case r.OnTrunk():
		if r.String() == "1.1" {
			if haveInitial[path] {
				return true
			}
			if rev.State == "dead" {
				return true
			}
			haveInitial[path] = true
			return false
		}
		novendor[path] = true
		return false

	default:
		return false
	}
}
