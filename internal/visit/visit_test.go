package visit

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adamf123git/cvs-archive-loader/internal/progress"
)

const fixtureRCS = `head	1.2;
access;
symbols;
locks; strict;
comment	@# @;
1.2
date	2023.12.01.10.30.00;	author alice;	state Exp;
branches;
next	1.1;
1.1
date	2023.01.01.00.00.00;	author bob;	state Exp;
branches;
next	;

desc
@Fixture@

1.2
log
@second revision@
text
@updated content
@
1.1
log
@initial revision@
text
@initial content
@
`

func writeFixtureRepo(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "README.txt,v"), []byte(fixtureRCS), 0o644))
	return root
}

func TestRun_LocalSourceMaterializesTrunk(t *testing.T) {
	source := writeFixtureRepo(t)
	target := t.TempDir()

	reporter := progress.NewReporter(0)

	cfg := Config{
		Origin:     source,
		SourceKind: SourceLocal,
		SourcePath: source,
		TargetPath: target,
		Progress:   reporter,
	}

	result, err := Run(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, Eventful, result.Status)
	require.NotNil(t, result.Snapshot)

	master, ok := result.Snapshot.Branches["master"]
	require.True(t, ok)
	assert.NotEmpty(t, master.Target.String())

	head, ok := result.Snapshot.Branches["HEAD"]
	require.True(t, ok)
	assert.Equal(t, "master", head.AliasOf)
}

func TestRun_SecondVisitIsUneventfulWithoutNewHistory(t *testing.T) {
	source := writeFixtureRepo(t)
	target := t.TempDir()

	cfg := Config{Origin: source, SourceKind: SourceLocal, SourcePath: source, TargetPath: target}

	first, err := Run(context.Background(), cfg)
	require.NoError(t, err)
	require.Equal(t, Eventful, first.Status)

	second, err := Run(context.Background(), cfg)
	require.NoError(t, err)
	require.Equal(t, Uneventful, second.Status)

	assert.Equal(t, first.Snapshot.Branches["master"].Target, second.Snapshot.Branches["master"].Target)
}

func TestRun_EmptySourceReturnsNotFound(t *testing.T) {
	source := t.TempDir()
	target := t.TempDir()

	cfg := Config{Origin: source, SourceKind: SourceLocal, SourcePath: source, TargetPath: target}

	result, err := Run(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, NotFound, result.Status)
}

func TestRun_DefaultsAppliedWhenUnset(t *testing.T) {
	source := writeFixtureRepo(t)
	target := t.TempDir()

	cfg := Config{Origin: source, SourcePath: source, TargetPath: target}

	result, err := Run(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, Eventful, result.Status)
}

func TestRun_ContextCancellationStopsPartway(t *testing.T) {
	source := writeFixtureRepo(t)
	target := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := Config{Origin: source, SourceKind: SourceLocal, SourcePath: source, TargetPath: target}
	result, err := Run(ctx, cfg)
	require.Error(t, err)
	assert.Equal(t, Failed, result.Status)
}
