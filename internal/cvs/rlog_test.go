package cvs

import (
	"strings"
	"testing"
)

const sampleRlog = `RCS file: /cvsroot/proj/file.c,v
Working file: file.c
head: 1.2
branch:
locks: strict
access list:
symbolic names:
	REL_1_0: 1.1
keyword substitution: kv
total revisions: 2;	selected revisions: 2
description:
----------------------------
revision 1.2
date: 2024/03/01 12:00:00;  author: joe;  state: Exp;  lines: +1 -0;  commitid: abc123;
second commit
----------------------------
revision 1.1
date: 2024/02/01 09:00:00;  author: joe;  state: Exp;
initial revision
=============================================================================
`

func TestParseRlogBasic(t *testing.T) {
	revs, err := ParseRlog(strings.NewReader(sampleRlog))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(revs) != 2 {
		t.Fatalf("got %d revisions, want 2", len(revs))
	}

	head := revs[0]
	if head.Path != "file.c" {
		t.Errorf("Path = %q, want file.c", head.Path)
	}
	if head.Revision.String() != "1.2" {
		t.Errorf("Revision = %s, want 1.2", head.Revision)
	}
	if head.Author != "joe" {
		t.Errorf("Author = %q, want joe", head.Author)
	}
	if head.CommitID != "abc123" {
		t.Errorf("CommitID = %q, want abc123", head.CommitID)
	}
	if head.Log != "second commit" {
		t.Errorf("Log = %q, want %q", head.Log, "second commit")
	}
	if head.HeadDead {
		t.Errorf("HeadDead = true, want false")
	}

	rel, ok := head.Symbols["REL_1_0"]
	if !ok || rel.String() != "1.1" {
		t.Errorf("Symbols[REL_1_0] = %v, ok=%v, want 1.1", rel, ok)
	}

	tail := revs[1]
	if tail.Revision.String() != "1.1" {
		t.Errorf("Revision = %s, want 1.1", tail.Revision)
	}
	if tail.Log != "initial revision" {
		t.Errorf("Log = %q, want %q", tail.Log, "initial revision")
	}
}

func TestParseRlogDeadHead(t *testing.T) {
	const deadRlog = `RCS file: /cvsroot/proj/gone.c,v
Working file: gone.c
head: 1.3
branch:
locks: strict
access list:
symbolic names:
keyword substitution: kv
total revisions: 1;	selected revisions: 1
description:
----------------------------
revision 1.3
date: 2024/04/01 00:00:00;  author: joe;  state: dead;
file removed
=============================================================================
`
	revs, err := ParseRlog(strings.NewReader(deadRlog))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(revs) != 1 {
		t.Fatalf("got %d revisions, want 1", len(revs))
	}
	if !revs[0].HeadDead {
		t.Errorf("HeadDead = false, want true")
	}
}

func TestCvsStrptimeFormats(t *testing.T) {
	a := cvsStrptime("2024/03/01 12:00:00")
	if a.IsZero() {
		t.Errorf("classic format failed to parse")
	}
	b := cvsStrptime("2024-03-01 12:00:00 +0000")
	if b.IsZero() {
		t.Errorf("iso format failed to parse")
	}
	if !a.Equal(b) {
		t.Errorf("a = %v, b = %v, want equal", a, b)
	}
}

func TestParseRevisionCount(t *testing.T) {
	n, ok := ParseRevisionCount("total revisions: 5;	selected revisions: 3")
	if !ok || n != 3 {
		t.Fatalf("got (%d, %v), want (3, true)", n, ok)
	}
	if _, ok := ParseRevisionCount("nothing here"); ok {
		t.Fatalf("expected ok=false for a line with no selected revisions")
	}
}
