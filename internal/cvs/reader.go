package cvs

import (
	"log"
	"os"
	"path/filepath"
	"strings"
)

// LocalFile pairs a parsed RCS file with the working-file path it was
// found at, relative to the repository root, with any "Attic/" path
// element already stripped (Attic only marks storage location for dead
// files, not the logical file path).
type LocalFile struct {
	Path string
	RCS  *RCSFile
}

// WalkRepository walks a local (file:// or rsync-fetched) CVS repository
// rooted at path, parsing every ",v" file it finds. CVSROOT itself is
// skipped, and Attic/ directories are descended into rather than
// skipped, so revisions of files that were later removed are still
// reconstructable — required for scenarios where a file is removed and
// later re-added under the same name.
func WalkRepository(root string) ([]LocalFile, error) {
	var files []LocalFile

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if filepath.Base(path) == "CVSROOT" {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ",v") {
			return nil
		}

		f, err := os.Open(path)
		if err != nil {
			return nil
		}
		defer func() {
			if cerr := f.Close(); cerr != nil {
				log.Printf("Warning: failed to close RCS file %s: %v", path, cerr)
			}
		}()

		rcs, err := NewRCSParser(f).Parse()
		if err != nil {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		rel = strings.TrimSuffix(rel, ",v")
		rel = stripAttic(rel)

		files = append(files, LocalFile{Path: filepath.ToSlash(rel), RCS: rcs})
		return nil
	})

	return files, err
}

// stripAttic removes a trailing "Attic/" path element, the directory CVS
// moves a file's ,v into once every branch's tip revision for that file
// is "dead" (removed).
func stripAttic(path string) string {
	dir, file := filepath.Split(path)
	dir = strings.TrimSuffix(dir, string(filepath.Separator))
	if filepath.Base(dir) == "Attic" {
		return filepath.Join(filepath.Dir(dir), file)
	}
	return path
}

// FileRevisions flattens a LocalFile's delta graph into the same
// FileRevision shape ParseRlog produces from a remote rlog stream, so
// the changeset clusterer can treat a local walk and a remote rlog
// fetch identically.
func (f LocalFile) FileRevisions() []FileRevision {
	rcs := f.RCS
	symbols := rcs.Symbols

	headState := ""
	if d, ok := rcs.DeltaAt(rcs.Head); ok {
		headState = d.State
	}

	var out []FileRevision
	for _, revStr := range rcs.DeltaOrder {
		d := rcs.Deltas[revStr]
		dt := rcs.DeltaTexts[revStr]
		log := ""
		if dt != nil {
			log = dt.Log
		}
		out = append(out, FileRevision{
			Path:     f.Path,
			Revision: d.Revision,
			Date:     d.Date,
			Author:   d.Author,
			State:    d.State,
			Log:      log,
			Branches: d.Branches,
			CommitID: d.CommitID,
			Symbols:  symbols,
			HeadDead: headState == "dead",
		})
	}
	return out
}
