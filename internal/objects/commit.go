package objects

import (
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// HashCommit encodes c the same way go-git's own storage layer encodes a
// commit object, and returns its hash. It does not modify c; callers set
// c.Hash themselves once the hash is known, the same two-step dance
// go-git's CreateTag-style direct object writes use.
func HashCommit(c *Commit) (plumbing.Hash, error) {
	oc := &object.Commit{
		Author:       object.Signature{Name: c.Author.Name, Email: c.Author.Email, When: c.Date},
		Committer:    object.Signature{Name: c.Author.Name, Email: c.Author.Email, When: c.Date},
		Message:      c.Message,
		TreeHash:     c.Directory,
		ParentHashes: c.Parents,
	}

	obj := new(plumbing.MemoryObject)
	if err := oc.Encode(obj); err != nil {
		return plumbing.ZeroHash, err
	}
	return obj.Hash(), nil
}
