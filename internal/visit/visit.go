// Package visit orchestrates one pass over a CVS origin: gather every
// file revision, cluster them into changesets, materialize the trunk
// onto a content-addressed Git sink, and record the resulting
// snapshot. A visit is stateless between runs — the only state it
// consults is whatever snapshot the sink itself already holds — which
// is why, unlike the teacher's resumable core.Migrator, there is no
// on-disk migration-state file anywhere in this package.
package visit

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adamf123git/cvs-archive-loader/internal/changeset"
	"github.com/adamf123git/cvs-archive-loader/internal/cvs"
	"github.com/adamf123git/cvs-archive-loader/internal/materialize"
	"github.com/adamf123git/cvs-archive-loader/internal/objects"
	"github.com/adamf123git/cvs-archive-loader/internal/progress"
	"github.com/adamf123git/cvs-archive-loader/internal/sink/gitsink"
)

// SourceKind selects how a visit reaches the CVS origin.
type SourceKind string

const (
	SourceLocal   SourceKind = "local"
	SourcePserver SourceKind = "pserver"
	SourceSSH     SourceKind = "ssh"
)

// Config describes one visit: where the CVS history comes from and
// where the materialized Git history should land.
type Config struct {
	Origin     string
	SourceKind SourceKind

	// SourcePath is a local repository root for SourceLocal, or the
	// CVSROOT path (e.g. "/cvsroot") for SourcePserver/SourceSSH.
	SourcePath string
	Module     string // required for SourcePserver/SourceSSH

	Hostname string
	Port     int
	Username string
	Password string // only meaningful for SourcePserver

	TargetPath string // Git repository directory the sink writes to

	// FuzzWindow is the changeset clustering window in seconds;
	// defaults to 300 (see internal/changeset.Cluster).
	FuzzWindow int64
	// PlaceholderDomain is used to synthesize an email address for a
	// bare CVS username with no "Name <email>" form.
	PlaceholderDomain string
	// Branch is the CVS branch label to materialize; only "HEAD" (the
	// trunk) is supported, per the Non-goal that rules out
	// materializing CVS side branches.
	Branch string

	Progress *progress.Reporter // optional
}

// Status is the outcome of a visit, mirroring the same vocabulary a
// Software Heritage loader reports for one origin visit.
type Status string

const (
	Eventful   Status = "eventful"   // new history was materialized
	Uneventful Status = "uneventful" // origin reached, nothing new to add
	Failed     Status = "failed"
	NotFound   Status = "not_found" // origin does not exist or is empty
)

// Result is what Run reports once a visit completes.
type Result struct {
	Status   Status
	Snapshot *objects.Snapshot
	Err      error
}

// Run performs one visit: it is safe to call repeatedly against the
// same origin and TargetPath, since every visit replays the whole trunk
// from an empty parent (so unchanged history yields the same commits)
// and every Sink.Add* method is idempotent. The visit is Uneventful
// when the resulting master tip equals the one in the sink's latest
// snapshot.
func Run(ctx context.Context, cfg Config) (Result, error) {
	if cfg.Branch == "" {
		cfg.Branch = "HEAD"
	}
	if cfg.FuzzWindow == 0 {
		cfg.FuzzWindow = 300
	}
	if cfg.PlaceholderDomain == "" {
		cfg.PlaceholderDomain = "cvs.invalid"
	}

	revisions, source, closeSource, err := gatherRevisions(cfg)
	if err != nil {
		if _, ok := err.(*cvs.NotFoundError); ok {
			return Result{Status: NotFound, Err: err}, nil
		}
		return Result{Status: Failed, Err: err}, err
	}
	if closeSource != nil {
		defer closeSource()
	}
	if len(revisions) == 0 {
		return Result{Status: NotFound}, nil
	}

	changesets := changeset.Cluster(revisions, cfg.FuzzWindow)
	var trunk []*changeset.Changeset
	for _, cs := range changesets {
		if cs.Branch == cfg.Branch {
			trunk = append(trunk, cs)
		}
	}
	if len(trunk) == 0 {
		return Result{Status: Uneventful}, nil
	}

	sink, err := openSink(cfg.TargetPath)
	if err != nil {
		return Result{Status: Failed, Err: err}, err
	}

	worktree, err := os.MkdirTemp("", "cvsloader-visit-*")
	if err != nil {
		return Result{Status: Failed, Err: err}, err
	}
	defer os.RemoveAll(worktree)

	m := materialize.New(worktree, source, sink)
	prev, _ := sink.LatestSnapshot(cfg.Origin)

	if cfg.Progress != nil {
		cfg.Progress.SetOperation("materializing changesets")
		cfg.Progress.Start()
	}

	var last objects.Commit
	for _, cs := range trunk {
		select {
		case <-ctx.Done():
			return Result{Status: Failed, Err: ctx.Err()}, ctx.Err()
		default:
		}

		author := materialize.PersonFromAuthor(cs.Author, cfg.PlaceholderDomain)
		date := time.Unix(cs.MinTime, 0).UTC()
		commit, err := m.Apply(cs, author, cs.Log, date)
		if err != nil {
			return Result{Status: Failed, Err: err}, err
		}
		last = commit

		if cfg.Progress != nil {
			cfg.Progress.Increment()
		}
	}

	snap := objects.Snapshot{
		Branches: map[string]objects.SnapshotBranch{
			"master": {Target: last.Hash, TargetType: objects.TargetCommit},
			"HEAD":   {TargetType: objects.TargetAlias, AliasOf: "master"},
		},
	}
	if err := sink.AddSnapshot(snap); err != nil {
		return Result{Status: Failed, Err: err}, err
	}

	status := Eventful
	if prev != nil {
		if b, ok := prev.Branches["master"]; ok && b.Target == last.Hash {
			status = Uneventful
		}
	}
	return Result{Status: status, Snapshot: &snap}, nil
}

// gatherRevisions connects to the configured origin and returns every
// file revision found, a FileSource the materializer can read content
// from, and an optional cleanup func for a live connection.
func gatherRevisions(cfg Config) ([]cvs.FileRevision, materialize.FileSource, func(), error) {
	switch cfg.SourceKind {
	case SourceLocal, "":
		files, err := cvs.WalkRepository(cfg.SourcePath)
		if err != nil {
			return nil, nil, nil, err
		}
		if len(files) == 0 {
			return nil, nil, nil, &cvs.NotFoundError{Path: cfg.SourcePath}
		}

		byPath := make(map[string]*cvs.RCSFile, len(files))
		var revisions []cvs.FileRevision
		for _, f := range files {
			byPath[f.Path] = f.RCS
			revisions = append(revisions, f.FileRevisions()...)
		}
		return revisions, materialize.LocalSource{Files: byPath}, nil, nil

	case SourcePserver:
		client, err := cvs.DialPserver(cfg.Hostname, cfg.Port, cfg.Username, cfg.Password, cfg.SourcePath, cfg.Module)
		if err != nil {
			return nil, nil, nil, err
		}
		revisions, err := fetchRevisions(client)
		if err != nil {
			_ = client.Close()
			return nil, nil, nil, err
		}
		return revisions, materialize.RemoteSource{Client: client}, func() { _ = client.Close() }, nil

	case SourceSSH:
		client, err := cvs.DialSSH(cfg.Hostname, cfg.Port, cfg.Username, cfg.SourcePath, cfg.Module)
		if err != nil {
			return nil, nil, nil, err
		}
		revisions, err := fetchRevisions(client)
		if err != nil {
			_ = client.Close()
			return nil, nil, nil, err
		}
		return revisions, materialize.RemoteSource{Client: client}, func() { _ = client.Close() }, nil

	default:
		return nil, nil, nil, fmt.Errorf("visit: unknown source kind %q", cfg.SourceKind)
	}
}

func fetchRevisions(client *cvs.WireClient) ([]cvs.FileRevision, error) {
	rlog, err := client.FetchRlog()
	if err != nil {
		return nil, err
	}
	return cvs.ParseRlog(rlog)
}

func openSink(targetPath string) (*gitsink.Sink, error) {
	if _, err := os.Stat(filepath.Join(targetPath, ".git")); err == nil {
		return gitsink.Open(targetPath)
	}
	return gitsink.Init(targetPath)
}
