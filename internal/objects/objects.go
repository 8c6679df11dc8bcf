// Package objects implements the content-addressed object model the
// materializer emits to a Sink: blobs, trees, commits and branch
// snapshots, hashed identically to Git's own object encoding via
// go-git's plumbing/object packages.
package objects

import (
	"time"

	"github.com/go-git/go-git/v5/plumbing"
)

// Content is a file's byte content, addressed by its Git blob hash.
type Content struct {
	Hash plumbing.Hash
	Data []byte
}

// SkippedContent stands in for a Content that was deliberately not
// hashed in full (e.g. a file over a size threshold), recording why.
type SkippedContent struct {
	Hash   plumbing.Hash
	Path   string
	Reason string
}

// EntryType distinguishes a directory entry pointing at a file from one
// pointing at a subdirectory.
type EntryType int

const (
	EntryFile EntryType = iota
	EntryDirectory
)

// DirectoryEntry is one named child of a Directory.
type DirectoryEntry struct {
	Name       string
	Type       EntryType
	Target     plumbing.Hash
	Executable bool
}

// Directory is a tree of named entries, addressed by its Git tree hash.
type Directory struct {
	Hash    plumbing.Hash
	Entries []DirectoryEntry
}

// Person identifies a commit's author or committer.
type Person struct {
	Name  string
	Email string
}

// Commit is one changeset materialized as a Git-identical commit
// object: a root directory, zero or more parents, and author/committer
// metadata.
type Commit struct {
	Hash      plumbing.Hash
	Directory plumbing.Hash
	Parents   []plumbing.Hash
	Author    Person
	Date      time.Time
	Message   string
}

// BranchTargetType identifies what a SnapshotBranch points at.
type BranchTargetType int

const (
	TargetCommit BranchTargetType = iota
	TargetAlias
)

// SnapshotBranch is one named ref in a Snapshot.
type SnapshotBranch struct {
	Target     plumbing.Hash
	TargetType BranchTargetType
	// AliasOf holds the branch name this one points at when
	// TargetType is TargetAlias (used for the symbolic HEAD branch).
	AliasOf string
}

// Snapshot is the full set of branch pointers for one origin at the end
// of a visit, the same role `git show-ref` output plays for a Git
// repository.
type Snapshot struct {
	Hash     plumbing.Hash
	Branches map[string]SnapshotBranch
}

// Sink is the destination a visit writes its content-addressed object
// graph to. Method names translate spec §6's "add_contents" etc. table
// into idiomatic Go; every Add* call must be idempotent, since a visit
// may observe the same content across more than one changeset.
type Sink interface {
	AddContents(contents []Content) error
	AddSkippedContents(skipped []SkippedContent) error
	AddDirectories(dirs []Directory) error
	AddCommits(commits []Commit) error
	AddSnapshot(snap Snapshot) error
	LatestSnapshot(origin string) (*Snapshot, error)
}
