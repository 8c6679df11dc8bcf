package objects

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// HashTree walks a working-tree directory bottom-up, modeled on
// swh.model.from_disk's directory walk, and returns every Content
// (regular file) and Directory (tree level) object found, plus the
// root Directory's hash. Hashes are computed with go-git's own object
// encoder so they are byte-identical to what `git write-tree` would
// produce for the same working tree.
func HashTree(root string) ([]Content, []Directory, plumbing.Hash, error) {
	var contents []Content
	var dirs []Directory

	rootHash, err := hashDir(root, &contents, &dirs)
	if err != nil {
		return nil, nil, plumbing.ZeroHash, err
	}
	return contents, dirs, rootHash, nil
}

func hashDir(path string, contents *[]Content, dirs *[]Directory) (plumbing.Hash, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return plumbing.ZeroHash, err
	}

	treeEntries := make([]object.TreeEntry, 0, len(entries))
	for _, e := range entries {
		childPath := filepath.Join(path, e.Name())

		if e.IsDir() {
			hash, err := hashDir(childPath, contents, dirs)
			if err != nil {
				return plumbing.ZeroHash, err
			}
			treeEntries = append(treeEntries, object.TreeEntry{
				Name: e.Name(),
				Mode: filemode.Dir,
				Hash: hash,
			})
			continue
		}

		info, err := e.Info()
		if err != nil {
			return plumbing.ZeroHash, err
		}
		data, err := os.ReadFile(childPath)
		if err != nil {
			return plumbing.ZeroHash, err
		}

		hash := plumbing.ComputeHash(plumbing.BlobObject, data)
		*contents = append(*contents, Content{Hash: hash, Data: data})

		mode := filemode.Regular
		if info.Mode()&0111 != 0 {
			mode = filemode.Executable
		}
		treeEntries = append(treeEntries, object.TreeEntry{
			Name: e.Name(),
			Mode: mode,
			Hash: hash,
		})
	}

	// Git's tree object format requires entries sorted by name, with
	// directory names compared as though they carried a trailing "/",
	// so "foo.c" sorts before the directory "foo".
	sort.Slice(treeEntries, func(i, j int) bool {
		return treeEntryLess(treeEntries[i], treeEntries[j])
	})

	tree := &object.Tree{Entries: treeEntries}
	obj := new(plumbing.MemoryObject)
	if err := tree.Encode(obj); err != nil {
		return plumbing.ZeroHash, err
	}
	dirHash := obj.Hash()

	dirEntries := make([]DirectoryEntry, len(treeEntries))
	for i, te := range treeEntries {
		entry := DirectoryEntry{
			Name:       te.Name,
			Target:     te.Hash,
			Executable: te.Mode == filemode.Executable,
			Type:       EntryFile,
		}
		if te.Mode == filemode.Dir {
			entry.Type = EntryDirectory
		}
		dirEntries[i] = entry
	}
	*dirs = append(*dirs, Directory{Hash: dirHash, Entries: dirEntries})

	return dirHash, nil
}

func treeEntryLess(a, b object.TreeEntry) bool {
	an, bn := a.Name, b.Name
	if a.Mode == filemode.Dir {
		an += "/"
	}
	if b.Mode == filemode.Dir {
		bn += "/"
	}
	return an < bn
}
