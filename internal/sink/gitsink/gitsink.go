// Package gitsink implements internal/objects.Sink against a real
// on-disk Git repository, adapted from the teacher's internal/vcs/git
// Writer/Reader pair down to the same direct plumbing.MemoryObject
// encoding the teacher's CreateTag method uses for annotated tags: every
// object is written straight to the repository's object store, with no
// worktree and no staging area involved.
package gitsink

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"

	"github.com/adamf123git/cvs-archive-loader/internal/objects"
)

// Sink writes a visit's content-addressed object graph directly into a
// bare or non-bare Git repository on disk.
type Sink struct {
	path string
	repo *git.Repository

	mu       sync.Mutex
	storer   storer.EncodedObjectStorer
	latest   map[string]*objects.Snapshot
}

// Open opens an existing Git repository at path as a Sink target.
func Open(path string) (*Sink, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return nil, fmt.Errorf("gitsink: open %s: %w", path, err)
	}
	return newSink(path, repo)
}

// Init creates a new Git repository at path (non-bare, so the result
// can be inspected with an ordinary `git log`/`git show` afterwards)
// and returns it as a Sink target.
func Init(path string) (*Sink, error) {
	repo, err := git.PlainInit(path, false)
	if err != nil {
		return nil, fmt.Errorf("gitsink: init %s: %w", path, err)
	}
	return newSink(path, repo)
}

func newSink(path string, repo *git.Repository) (*Sink, error) {
	objStorer, ok := repo.Storer.(storer.EncodedObjectStorer)
	if !ok {
		return nil, fmt.Errorf("gitsink: repository storer does not support direct object writes")
	}
	return &Sink{
		path:   path,
		repo:   repo,
		storer: objStorer,
		latest: make(map[string]*objects.Snapshot),
	}, nil
}

// AddContents writes each Content's bytes as a loose blob object,
// skipping any hash already present in the store so a re-visited
// changeset does not re-write unchanged file content.
func (s *Sink) AddContents(contents []objects.Content) error {
	for _, c := range contents {
		if s.haveObject(c.Hash) {
			continue
		}
		obj := new(plumbing.MemoryObject)
		obj.SetType(plumbing.BlobObject)
		w, err := obj.Writer()
		if err != nil {
			return err
		}
		if _, err := w.Write(c.Data); err != nil {
			return err
		}
		if err := w.Close(); err != nil {
			return err
		}
		if _, err := s.storer.SetEncodedObject(obj); err != nil {
			return fmt.Errorf("gitsink: write blob %s: %w", c.Hash, err)
		}
	}
	return nil
}

// AddSkippedContents records nothing in the Git object store — a
// skipped content has no bytes to hash into a blob — but is kept as a
// no-op method so callers do not need to special-case a Sink that
// cannot represent the concept at all.
func (s *Sink) AddSkippedContents(_ []objects.SkippedContent) error {
	return nil
}

// AddDirectories writes each Directory as a Git tree object, in the
// same entry order internal/objects.HashTree already sorted them into,
// so the re-encoded bytes hash identically to the Directory's own Hash.
func (s *Sink) AddDirectories(dirs []objects.Directory) error {
	for _, d := range dirs {
		if s.haveObject(d.Hash) {
			continue
		}
		entries := make([]object.TreeEntry, len(d.Entries))
		for i, e := range d.Entries {
			mode := filemode.Regular
			switch {
			case e.Type == objects.EntryDirectory:
				mode = filemode.Dir
			case e.Executable:
				mode = filemode.Executable
			}
			entries[i] = object.TreeEntry{Name: e.Name, Mode: mode, Hash: e.Target}
		}
		tree := &object.Tree{Entries: entries}
		obj := new(plumbing.MemoryObject)
		if err := tree.Encode(obj); err != nil {
			return err
		}
		if _, err := s.storer.SetEncodedObject(obj); err != nil {
			return fmt.Errorf("gitsink: write tree %s: %w", d.Hash, err)
		}
	}
	return nil
}

// AddCommits writes each Commit as a Git commit object.
func (s *Sink) AddCommits(commits []objects.Commit) error {
	for _, c := range commits {
		if s.haveObject(c.Hash) {
			continue
		}
		oc := &object.Commit{
			Author:       object.Signature{Name: c.Author.Name, Email: c.Author.Email, When: c.Date},
			Committer:    object.Signature{Name: c.Author.Name, Email: c.Author.Email, When: c.Date},
			Message:      c.Message,
			TreeHash:     c.Directory,
			ParentHashes: c.Parents,
		}
		obj := new(plumbing.MemoryObject)
		if err := oc.Encode(obj); err != nil {
			return err
		}
		if _, err := s.storer.SetEncodedObject(obj); err != nil {
			return fmt.Errorf("gitsink: write commit %s: %w", c.Hash, err)
		}
	}
	return nil
}

// AddSnapshot updates refs/heads/<branch> for every commit-targeted
// branch and writes refs/heads/<branch> as a symbolic ref for every
// alias branch (so the snapshot's "HEAD" alias becomes refs/heads/HEAD;
// the repository's own HEAD is not touched), then caches the snapshot
// for LatestSnapshot.
func (s *Sink) AddSnapshot(snap objects.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for name, branch := range snap.Branches {
		refName := plumbing.ReferenceName("refs/heads/" + name)
		switch branch.TargetType {
		case objects.TargetCommit:
			ref := plumbing.NewHashReference(refName, branch.Target)
			if err := s.repo.Storer.SetReference(ref); err != nil {
				return fmt.Errorf("gitsink: set ref %s: %w", refName, err)
			}
		case objects.TargetAlias:
			aliasName := plumbing.ReferenceName("refs/heads/" + branch.AliasOf)
			ref := plumbing.NewSymbolicReference(refName, aliasName)
			if err := s.repo.Storer.SetReference(ref); err != nil {
				return fmt.Errorf("gitsink: set symbolic ref %s: %w", refName, err)
			}
		}
	}

	snapCopy := snap
	s.latest["origin"] = &snapCopy
	return nil
}

// LatestSnapshot returns the most recently recorded Snapshot for
// origin. It ignores the origin argument, since a Sink targets exactly one repository and therefore one origin
// per process lifetime.
func (s *Sink) LatestSnapshot(_ string) (*objects.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if snap, ok := s.latest["origin"]; ok {
		return snap, nil
	}

	branches := make(map[string]objects.SnapshotBranch)
	refs, err := s.repo.References()
	if err != nil {
		return nil, fmt.Errorf("gitsink: list refs: %w", err)
	}
	defer refs.Close()

	if err := refs.ForEach(func(ref *plumbing.Reference) error {
		if !ref.Name().IsBranch() {
			return nil
		}
		name := strings.TrimPrefix(ref.Name().String(), "refs/heads/")
		branches[name] = objects.SnapshotBranch{Target: ref.Hash(), TargetType: objects.TargetCommit}
		return nil
	}); err != nil {
		return nil, err
	}
	if len(branches) == 0 {
		return nil, nil
	}

	snap := objects.Snapshot{Hash: snapshotHash(branches), Branches: branches}
	s.latest["origin"] = &snap
	return &snap, nil
}

// haveObject reports whether hash is already present in the repository,
// making every Add* call idempotent across repeated visits of the same
// origin.
func (s *Sink) haveObject(hash plumbing.Hash) bool {
	_, err := s.storer.EncodedObject(plumbing.AnyObject, hash)
	return err == nil
}

// snapshotHash derives a stable identity hash for a branch map, sorted
// by name so the result does not depend on Go's randomized map
// iteration order. It is not a Git object hash; nothing in the
// repository's object store is addressed by it.
func snapshotHash(branches map[string]objects.SnapshotBranch) plumbing.Hash {
	names := make([]string, 0, len(branches))
	for name := range branches {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, "%s %s\n", name, branches[name].Target)
	}
	return plumbing.ComputeHash(plumbing.BlobObject, []byte(b.String()))
}
