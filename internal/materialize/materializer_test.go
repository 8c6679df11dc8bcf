package materialize

import (
	"testing"
	"time"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adamf123git/cvs-archive-loader/internal/changeset"
	"github.com/adamf123git/cvs-archive-loader/internal/cvs"
	"github.com/adamf123git/cvs-archive-loader/internal/objects"
	"github.com/adamf123git/cvs-archive-loader/internal/sink/gitsink"
)

type fakeSource struct {
	byPath map[string]string
}

func (f fakeSource) Content(fc changeset.FileChange) ([]byte, error) {
	return []byte(f.byPath[fc.Path]), nil
}

func rev(t *testing.T, s string) cvs.RevisionNumber {
	t.Helper()
	r, err := cvs.ParseRevisionNumber(s)
	require.NoError(t, err)
	return r
}

func TestMaterializer_ApplyAddsFile(t *testing.T) {
	root := t.TempDir()
	target := t.TempDir()

	sink, err := gitsink.Init(target)
	require.NoError(t, err)

	source := fakeSource{byPath: map[string]string{"README": "hello world\n"}}
	m := New(root, source, sink)

	cs := &changeset.Changeset{
		Branch: "HEAD",
		Author: "alice",
		Log:    "initial import",
		Files:  []changeset.FileChange{{Path: "README", Revision: rev(t, "1.1")}},
	}

	commit, err := m.Apply(cs, objects.Person{Name: "Alice", Email: "alice@example.org"}, cs.Log, time.Unix(1000, 0))
	require.NoError(t, err)
	assert.NotEqual(t, plumbing.ZeroHash, commit.Hash)
	assert.Empty(t, commit.Parents)
	assert.Equal(t, commit.Hash, m.Parent())
}

func TestMaterializer_ApplyChainsParents(t *testing.T) {
	root := t.TempDir()
	target := t.TempDir()

	sink, err := gitsink.Init(target)
	require.NoError(t, err)

	source := fakeSource{byPath: map[string]string{"a.txt": "first\n", "b.txt": "second\n"}}
	m := New(root, source, sink)

	cs1 := &changeset.Changeset{
		Branch: "HEAD", Author: "alice", Log: "add a",
		Files: []changeset.FileChange{{Path: "a.txt", Revision: rev(t, "1.1")}},
	}
	cs2 := &changeset.Changeset{
		Branch: "HEAD", Author: "bob", Log: "add b",
		Files: []changeset.FileChange{{Path: "b.txt", Revision: rev(t, "1.1")}},
	}

	c1, err := m.Apply(cs1, objects.Person{Name: "Alice", Email: "alice@example.org"}, cs1.Log, time.Unix(1000, 0))
	require.NoError(t, err)
	c2, err := m.Apply(cs2, objects.Person{Name: "Bob", Email: "bob@example.org"}, cs2.Log, time.Unix(2000, 0))
	require.NoError(t, err)

	require.Len(t, c2.Parents, 1)
	assert.Equal(t, c1.Hash, c2.Parents[0])
}

func TestMaterializer_DeadFileRemovesAndPrunesEmptyDir(t *testing.T) {
	root := t.TempDir()
	target := t.TempDir()

	sink, err := gitsink.Init(target)
	require.NoError(t, err)

	source := fakeSource{byPath: map[string]string{"sub/file.txt": "content\n"}}
	m := New(root, source, sink)

	add := &changeset.Changeset{
		Branch: "HEAD", Author: "alice", Log: "add",
		Files: []changeset.FileChange{{Path: "sub/file.txt", Revision: rev(t, "1.1")}},
	}
	_, err = m.Apply(add, objects.Person{Name: "Alice", Email: "alice@example.org"}, add.Log, time.Unix(1000, 0))
	require.NoError(t, err)

	remove := &changeset.Changeset{
		Branch: "HEAD", Author: "alice", Log: "remove",
		Files: []changeset.FileChange{{Path: "sub/file.txt", Revision: rev(t, "1.2"), State: "dead"}},
	}
	commit, err := m.Apply(remove, objects.Person{Name: "Alice", Email: "alice@example.org"}, remove.Log, time.Unix(2000, 0))
	require.NoError(t, err)

	// the removal's tree has no entries left, so its directory hash
	// is an empty tree's hash.
	assert.Equal(t, "4b825dc642cb6eb9a060e54bf8d69288fbee4904", commit.Directory.String())
}

func TestMaterializer_SetParentSeedsChain(t *testing.T) {
	root := t.TempDir()
	target := t.TempDir()

	sink, err := gitsink.Init(target)
	require.NoError(t, err)

	source := fakeSource{byPath: map[string]string{"a.txt": "content\n"}}
	m := New(root, source, sink)

	seed := plumbing.ComputeHash(plumbing.CommitObject, []byte("pretend previous commit"))
	m.SetParent(seed)
	assert.Equal(t, seed, m.Parent())

	cs := &changeset.Changeset{
		Branch: "HEAD", Author: "alice", Log: "continue",
		Files: []changeset.FileChange{{Path: "a.txt", Revision: rev(t, "1.1")}},
	}
	commit, err := m.Apply(cs, objects.Person{Name: "Alice", Email: "alice@example.org"}, cs.Log, time.Unix(1000, 0))
	require.NoError(t, err)
	require.Len(t, commit.Parents, 1)
	assert.Equal(t, seed, commit.Parents[0])
}
