package cvs

import "testing"

func TestRevisionNumberOrdering(t *testing.T) {
	a := MustParseRevisionNumber("1.2")
	b := MustParseRevisionNumber("1.10")
	if !a.Less(b) {
		t.Fatalf("expected 1.2 < 1.10 numerically, got %s >= %s", a, b)
	}
}

func TestRevisionNumberCanonical(t *testing.T) {
	magic := MustParseRevisionNumber("1.4.0.2")
	got := magic.Canonical()
	want := MustParseRevisionNumber("1.4.2")
	if !got.Equal(want) {
		t.Fatalf("Canonical(1.4.0.2) = %s, want %s", got, want)
	}
}

func TestRevisionNumberIsBranch(t *testing.T) {
	if !MustParseRevisionNumber("1.4.2").IsBranch() {
		t.Fatalf("1.4.2 should be a branch number")
	}
	if MustParseRevisionNumber("1.4.2.1").IsBranch() {
		t.Fatalf("1.4.2.1 should not be a branch number")
	}
	if MustParseRevisionNumber("1.4").IsBranch() {
		t.Fatalf("1.4 should not be a branch number")
	}
}

func TestRevisionNumberBranch(t *testing.T) {
	rev := MustParseRevisionNumber("1.4.2.3")
	got := rev.Branch()
	want := MustParseRevisionNumber("1.4.2")
	if !got.Equal(want) {
		t.Fatalf("Branch() = %s, want %s", got, want)
	}
}

func TestRevisionNumberOnTrunk(t *testing.T) {
	if !MustParseRevisionNumber("1.9").OnTrunk() {
		t.Fatalf("1.9 should be on trunk")
	}
	if MustParseRevisionNumber("1.9.2.1").OnTrunk() {
		t.Fatalf("1.9.2.1 should not be on trunk")
	}
}
