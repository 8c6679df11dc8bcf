// Package materialize replays clustered CVS changesets onto a scratch
// working tree and turns the result into content-addressed commit
// objects, the same role `git commit` plays when cvs2gitdump or
// git-cvsimport replay a CVS history one changeset at a time.
package materialize

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5/plumbing"

	"github.com/adamf123git/cvs-archive-loader/internal/changeset"
	"github.com/adamf123git/cvs-archive-loader/internal/objects"
)

// Materializer applies one branch's ordered Changesets to a private
// scratch directory, hashing the tree after every changeset and handing
// the resulting blob/tree/commit objects to a Sink.
type Materializer struct {
	root   string
	source FileSource
	sink   objects.Sink
	parent plumbing.Hash
}

// New returns a Materializer rooted at a scratch working-tree directory
// (caller-owned, one per branch), writing to sink.
func New(root string, source FileSource, sink objects.Sink) *Materializer {
	return &Materializer{root: root, source: source, sink: sink, parent: plumbing.ZeroHash}
}

// Parent returns the hash of the last commit Apply produced, or the
// zero hash if none has been applied yet on this branch.
func (m *Materializer) Parent() plumbing.Hash {
	return m.parent
}

// SetParent seeds the materializer with an existing commit hash, which
// the next Apply uses as its parent.
func (m *Materializer) SetParent(hash plumbing.Hash) {
	m.parent = hash
}

// Apply replays one Changeset onto the working tree: writes or removes
// every FileChange, hashes the resulting tree, builds a commit on top
// of the branch's current parent, and emits contents, directories and
// the commit itself to the sink. It returns the new commit.
func (m *Materializer) Apply(cs *changeset.Changeset, author objects.Person, message string, date time.Time) (objects.Commit, error) {
	for _, fc := range cs.Files {
		if err := m.applyFileChange(fc); err != nil {
			return objects.Commit{}, fmt.Errorf("materialize %s: %w", fc.Path, err)
		}
	}

	contents, dirs, treeHash, err := objects.HashTree(m.root)
	if err != nil {
		return objects.Commit{}, fmt.Errorf("hash tree: %w", err)
	}
	if err := m.sink.AddContents(contents); err != nil {
		return objects.Commit{}, fmt.Errorf("add contents: %w", err)
	}
	if err := m.sink.AddDirectories(dirs); err != nil {
		return objects.Commit{}, fmt.Errorf("add directories: %w", err)
	}

	commit := objects.Commit{
		Directory: treeHash,
		Author:    author,
		Date:      date,
		Message:   message,
	}
	if m.parent != plumbing.ZeroHash {
		commit.Parents = []plumbing.Hash{m.parent}
	}

	hash, err := objects.HashCommit(&commit)
	if err != nil {
		return objects.Commit{}, fmt.Errorf("hash commit: %w", err)
	}
	commit.Hash = hash

	if err := m.sink.AddCommits([]objects.Commit{commit}); err != nil {
		return objects.Commit{}, fmt.Errorf("add commit: %w", err)
	}

	m.parent = hash
	return commit, nil
}

func (m *Materializer) applyFileChange(fc changeset.FileChange) error {
	full := filepath.Join(m.root, filepath.FromSlash(fc.Path))

	if fc.State == "dead" {
		if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
			return err
		}
		pruneEmptyDirs(m.root, filepath.Dir(full))
		return nil
	}

	data, err := m.source.Content(fc)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	return os.WriteFile(full, data, 0o644)
}

// pruneEmptyDirs removes dir and any now-empty ancestor up to (but not
// including) root, matching Git's own refusal to track empty
// directories: a CVS file removal should not leave a trail of empty
// directories a materialized commit's tree would otherwise need to
// special-case.
func pruneEmptyDirs(root, dir string) {
	for dir != root && len(dir) > len(root) {
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			return
		}
		if err := os.Remove(dir); err != nil {
			return
		}
		dir = filepath.Dir(dir)
	}
}
