package cvs

import (
	"strconv"
	"strings"
)

// Checkout reconstructs the full text of rev by walking the file's delta
// chain and applying ed scripts, exactly as `co` does. Trunk revisions
// are stored as reverse deltas hung off the head (full) text; branch
// revisions are stored as forward deltas hung off their branch point, so
// the two chains are walked in opposite directions.
func (r *RCSFile) Checkout(rev RevisionNumber) (string, error) {
	if rev.OnTrunk() || rev.Equal(r.Head) {
		return r.checkoutTrunk(rev)
	}
	return r.checkoutBranch(rev)
}

// checkoutTrunk reconstructs a trunk revision by starting at the head's
// full text and walking the "next" chain (which decreases towards 1.1).
// Each delta-text entry is keyed by the revision it produces, holding
// the diff needed to derive that revision's text from its neighbour
// nearer the head, so the script applied at every step is the one
// belonging to the revision being moved *to*, not the one moved from.
func (r *RCSFile) checkoutTrunk(rev RevisionNumber) (string, error) {
	headText, ok := r.DeltaTexts[r.Head.String()]
	if !ok {
		return "", &UnknownRevisionError{Revision: r.Head.String()}
	}

	text := headText.Text
	cur := r.Head
	for !cur.Equal(rev) {
		delta, ok := r.Deltas[cur.String()]
		if !ok {
			return "", &UnknownRevisionError{Revision: cur.String()}
		}
		if delta.Next.IsZero() {
			return "", &UnknownRevisionError{Revision: rev.String()}
		}
		dt, ok := r.DeltaTexts[delta.Next.String()]
		if !ok {
			return "", &UnknownRevisionError{Revision: delta.Next.String()}
		}
		var err error
		text, err = applyEdScript(text, dt.Text)
		if err != nil {
			return "", err
		}
		cur = delta.Next
	}
	return text, nil
}

// checkoutBranch reconstructs the text of a revision on a branch: it
// first reconstructs the branch point (recursing through Checkout, since
// the point itself might be on a further-nested branch), then walks
// forward along the branch applying each delta's forward diff.
func (r *RCSFile) checkoutBranch(rev RevisionNumber) (string, error) {
	branch := rev.Branch()
	branchPoint, ok := r.BranchPointOf(branch)
	if !ok {
		return "", &UnknownRevisionError{Revision: rev.String()}
	}

	text, err := r.Checkout(branchPoint)
	if err != nil {
		return "", err
	}

	root, ok := r.firstRevisionOnBranch(branchPoint, branch)
	if !ok {
		return "", &UnknownRevisionError{Revision: rev.String()}
	}

	cur := root
	for {
		dt, ok := r.DeltaTexts[cur.String()]
		if !ok {
			return "", &UnknownRevisionError{Revision: cur.String()}
		}
		text, err = applyEdScript(text, dt.Text)
		if err != nil {
			return "", err
		}
		if cur.Equal(rev) {
			return text, nil
		}
		delta, ok := r.Deltas[cur.String()]
		if !ok || delta.Next.IsZero() {
			return "", &UnknownRevisionError{Revision: rev.String()}
		}
		cur = delta.Next
	}
}

// firstRevisionOnBranch finds the revision number recorded in
// branchPoint's own delta.Branches list that departs onto branch.
func (r *RCSFile) firstRevisionOnBranch(branchPoint, branch RevisionNumber) (RevisionNumber, bool) {
	delta, ok := r.Deltas[branchPoint.String()]
	if !ok {
		return RevisionNumber{}, false
	}
	for _, b := range delta.Branches {
		if b.Branch().Equal(branch) {
			return b, true
		}
	}
	return RevisionNumber{}, false
}

// Log returns the commit log message recorded for rev.
func (r *RCSFile) Log(rev RevisionNumber) (string, error) {
	dt, ok := r.DeltaTexts[rev.String()]
	if !ok {
		return "", &UnknownRevisionError{Revision: rev.String()}
	}
	return dt.Log, nil
}

// applyEdScript applies an RCS-style ed script (a sequence of "aLINE
// COUNT" / "dLINE COUNT" commands, in ascending original-line order as
// RCS always emits them) to base text, returning the derived text.
func applyEdScript(base, script string) (string, error) {
	origLines := splitKeepNewline(base)
	var out []string

	origIdx := 0 // next unconsumed index into origLines (0-based)
	lines := strings.Split(script, "\n")

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 || len(fields[0]) < 2 {
			return "", &ParseError{Kind: "ed-script", Detail: line}
		}
		op := fields[0][:1]
		lineNo, err := strconv.Atoi(fields[0][1:])
		if err != nil {
			return "", &ParseError{Kind: "ed-script", Detail: line}
		}
		count, err := strconv.Atoi(fields[1])
		if err != nil {
			return "", &ParseError{Kind: "ed-script", Detail: line}
		}

		switch op {
		case "d":
			if origIdx < lineNo-1 {
				out = append(out, origLines[origIdx:lineNo-1]...)
			}
			origIdx = lineNo - 1 + count

		case "a":
			if origIdx < lineNo {
				out = append(out, origLines[origIdx:lineNo]...)
				origIdx = lineNo
			}
			for n := 0; n < count && i+1 < len(lines); n++ {
				i++
				if i == len(lines)-1 {
					// the script's final line carries no newline of its own
					out = append(out, lines[i])
				} else {
					out = append(out, lines[i]+"\n")
				}
			}

		default:
			return "", &ParseError{Kind: "ed-script", Detail: line}
		}
	}

	if origIdx < len(origLines) {
		out = append(out, origLines[origIdx:]...)
	}

	result := strings.Join(out, "")
	return result, nil
}

// splitKeepNewline splits s into lines, keeping the trailing "\n" on
// every line but the (possibly absent) final one, so ed-script line
// numbers (which count newline-terminated lines) line up with slice
// indices.
func splitKeepNewline(s string) []string {
	if s == "" {
		return nil
	}
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i+1])
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}
