package gitsink

import (
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adamf123git/cvs-archive-loader/internal/objects"
)

func blobHash(data string) plumbing.Hash {
	return plumbing.ComputeHash(plumbing.BlobObject, []byte(data))
}

func TestInit_CreatesRepository(t *testing.T) {
	dir := t.TempDir()
	sink, err := Init(dir)
	require.NoError(t, err)
	require.NotNil(t, sink)

	_, err = git.PlainOpen(dir)
	require.NoError(t, err)
}

func TestOpen_ExistingRepository(t *testing.T) {
	dir := t.TempDir()
	_, err := Init(dir)
	require.NoError(t, err)

	sink, err := Open(dir)
	require.NoError(t, err)
	require.NotNil(t, sink)
}

func TestAddContents_WritesBlobAndIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	sink, err := Init(dir)
	require.NoError(t, err)

	hash := blobHash("hello\n")
	content := objects.Content{Hash: hash, Data: []byte("hello\n")}

	require.NoError(t, sink.AddContents([]objects.Content{content}))
	assert.True(t, sink.haveObject(hash))

	// calling again must not error even though the object already exists
	require.NoError(t, sink.AddContents([]objects.Content{content}))
}

func TestAddDirectories_WritesTree(t *testing.T) {
	dir := t.TempDir()
	sink, err := Init(dir)
	require.NoError(t, err)

	blob := blobHash("content\n")
	require.NoError(t, sink.AddContents([]objects.Content{{Hash: blob, Data: []byte("content\n")}}))

	treeDir := objects.Directory{
		Entries: []objects.DirectoryEntry{{Name: "file.txt", Type: objects.EntryFile, Target: blob}},
	}
	// the hash is fabricated rather than computed as internal/objects
	// would; that is fine here since the test only checks the write
	// completes and is idempotent under re-submission.
	treeDir.Hash = plumbing.ComputeHash(plumbing.TreeObject, []byte("fake tree content"))

	require.NoError(t, sink.AddDirectories([]objects.Directory{treeDir}))
	require.NoError(t, sink.AddDirectories([]objects.Directory{treeDir}))
}

func TestAddCommitsAndSnapshot_SetsRefs(t *testing.T) {
	dir := t.TempDir()
	sink, err := Init(dir)
	require.NoError(t, err)

	commit := objects.Commit{
		Hash:      plumbing.ComputeHash(plumbing.CommitObject, []byte("fake commit")),
		Directory: plumbing.ComputeHash(plumbing.TreeObject, []byte("fake tree")),
		Author:    objects.Person{Name: "Alice", Email: "alice@example.org"},
		Message:   "initial",
	}
	require.NoError(t, sink.AddCommits([]objects.Commit{commit}))

	snap := objects.Snapshot{
		Branches: map[string]objects.SnapshotBranch{
			"master": {Target: commit.Hash, TargetType: objects.TargetCommit},
			"HEAD":   {TargetType: objects.TargetAlias, AliasOf: "master"},
		},
	}
	require.NoError(t, sink.AddSnapshot(snap))

	repo, err := git.PlainOpen(dir)
	require.NoError(t, err)
	ref, err := repo.Reference(plumbing.ReferenceName("refs/heads/master"), false)
	require.NoError(t, err)
	assert.Equal(t, commit.Hash, ref.Hash())

	head, err := repo.Reference(plumbing.ReferenceName("refs/heads/HEAD"), false)
	require.NoError(t, err)
	assert.Equal(t, plumbing.SymbolicReference, head.Type())
}

func TestLatestSnapshot_CachedAfterAddSnapshot(t *testing.T) {
	dir := t.TempDir()
	sink, err := Init(dir)
	require.NoError(t, err)

	commitHash := plumbing.ComputeHash(plumbing.CommitObject, []byte("fake commit"))
	snap := objects.Snapshot{
		Branches: map[string]objects.SnapshotBranch{
			"master": {Target: commitHash, TargetType: objects.TargetCommit},
		},
	}
	require.NoError(t, sink.AddSnapshot(snap))

	got, err := sink.LatestSnapshot("origin")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, commitHash, got.Branches["master"].Target)
}

func TestLatestSnapshot_NilWhenNoBranches(t *testing.T) {
	dir := t.TempDir()
	sink, err := Init(dir)
	require.NoError(t, err)

	got, err := sink.LatestSnapshot("origin")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestLatestSnapshot_RebuildsFromRefsAfterReopen(t *testing.T) {
	dir := t.TempDir()
	sink, err := Init(dir)
	require.NoError(t, err)

	commitHash := plumbing.ComputeHash(plumbing.CommitObject, []byte("fake commit"))
	snap := objects.Snapshot{
		Branches: map[string]objects.SnapshotBranch{
			"master": {Target: commitHash, TargetType: objects.TargetCommit},
		},
	}
	require.NoError(t, sink.AddSnapshot(snap))

	reopened, err := Open(dir)
	require.NoError(t, err)

	got, err := reopened.LatestSnapshot("origin")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, commitHash, got.Branches["master"].Target)
}

func TestAddSkippedContents_NoOp(t *testing.T) {
	dir := t.TempDir()
	sink, err := Init(dir)
	require.NoError(t, err)

	require.NoError(t, sink.AddSkippedContents([]objects.SkippedContent{{Path: "huge.bin", Reason: "too large"}}))
}
