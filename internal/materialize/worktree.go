package materialize

import (
	"github.com/adamf123git/cvs-archive-loader/internal/changeset"
	"github.com/adamf123git/cvs-archive-loader/internal/cvs"
)

// FileSource resolves one FileChange's byte content for writing into
// the scratch working tree.
type FileSource interface {
	Content(fc changeset.FileChange) ([]byte, error)
}

// LocalSource serves content from RCS files already parsed off a local
// repository walk (internal/cvs.WalkRepository), checking out and
// expanding each revision on demand the way `co` would.
type LocalSource struct {
	Files map[string]*cvs.RCSFile // path -> parsed ,v file
}

// Content implements FileSource.
func (s LocalSource) Content(fc changeset.FileChange) ([]byte, error) {
	rcs, ok := s.Files[fc.Path]
	if !ok {
		return nil, &cvs.NotFoundError{Path: fc.Path}
	}

	text, err := rcs.Checkout(fc.Revision)
	if err != nil {
		return nil, err
	}

	ctx := cvs.ExpansionContext{
		Path:     fc.Path,
		RCSPath:  fc.Path + ",v",
		Revision: fc.Revision,
		Mode:     rcs.Expand,
	}
	log := ""
	if delta, ok := rcs.DeltaAt(fc.Revision); ok {
		ctx.Date = delta.Date
		ctx.Author = delta.Author
		ctx.State = delta.State
	}
	if dt, ok := rcs.DeltaTexts[fc.Revision.String()]; ok {
		log = dt.Log
	}

	expanded := cvs.ExpandKeywords(text, ctx, "", log)
	return []byte(expanded), nil
}

// RemoteSource serves content over a live CVS connection with `co -kb`,
// so the server returns raw bytes and no local keyword expansion is
// applied — a wire checkout never exposes a file's admin "expand" mode,
// only its content, so a remote visit cannot reproduce keyword
// expansion the way a local walk can (recorded as an Open Question in
// DESIGN.md).
type RemoteSource struct {
	Client *cvs.WireClient
}

// Content implements FileSource.
func (s RemoteSource) Content(fc changeset.FileChange) ([]byte, error) {
	return s.Client.Checkout(fc.Path, fc.Revision.String())
}
