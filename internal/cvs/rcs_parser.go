package cvs

import (
	"io"
	"strconv"
	"strings"
	"time"
)

// RCSParser parses the RCS file grammar into an RCSFile, keeping the
// admin block, the delta graph, and delta text/log bodies as distinct
// sections the way the on-disk format does.
type RCSParser struct {
	lexer *rcsLexer
	token Token
}

// NewRCSParser creates a parser reading from r.
func NewRCSParser(r io.Reader) *RCSParser {
	lexer := newRCSLexer(r)
	return &RCSParser{
		lexer: lexer,
		token: lexer.NextToken(),
	}
}

func (p *RCSParser) advance() {
	p.token = p.lexer.NextToken()
}

// parseRCSDate parses the RCS "YY.MM.DD.HH.MM.SS" (or "YYYY.MM.DD...")
// date format. A two-digit year below 100 is shifted into the 1900s,
// matching RCS's own convention (and cvs_strptime in the reference
// client) for files written before the Y2K-safe four-digit year change.
func parseRCSDate(s string) time.Time {
	parts := strings.Split(s, ".")
	if len(parts) != 6 {
		return time.Time{}
	}
	year, _ := strconv.Atoi(parts[0])
	month, _ := strconv.Atoi(parts[1])
	day, _ := strconv.Atoi(parts[2])
	hour, _ := strconv.Atoi(parts[3])
	minute, _ := strconv.Atoi(parts[4])
	second, _ := strconv.Atoi(parts[5])

	if year < 100 {
		year += 1900
	}

	return time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC)
}

func parseRevisionList(fields []string) []RevisionNumber {
	out := make([]RevisionNumber, 0, len(fields))
	for _, f := range fields {
		rev, err := ParseRevisionNumber(f)
		if err == nil {
			out = append(out, rev)
		}
	}
	return out
}

// Parse reads the whole file and returns its parsed form.
func (p *RCSParser) Parse() (*RCSFile, error) {
	rcs := newRCSFile()

	p.parseHeader(rcs)
	p.parseDeltas(rcs)
	p.parseDesc(rcs)
	p.parseDeltaTexts(rcs)

	return rcs, nil
}

func (p *RCSParser) parseHeader(rcs *RCSFile) {
	for p.token.Type != TokenEOF {
		if p.token.Type != TokenIdent {
			break
		}

		switch p.token.Value {
		case "head":
			p.advance()
			if p.token.Type == TokenNumber {
				rcs.Head, _ = ParseRevisionNumber(p.token.Value)
				p.advance()
			}
			p.skipSemicolon()

		case "branch":
			p.advance()
			if p.token.Type == TokenNumber {
				rcs.Branch, _ = ParseRevisionNumber(p.token.Value)
				p.advance()
			}
			p.skipSemicolon()

		case "access":
			p.advance()
			for p.token.Type == TokenIdent {
				rcs.Access = append(rcs.Access, p.token.Value)
				p.advance()
			}
			p.skipSemicolon()

		case "symbols":
			p.advance()
			for p.token.Type == TokenIdent {
				sym := p.token.Value
				p.advance()
				if p.token.Type == TokenColon {
					p.advance()
					if p.token.Type == TokenNumber {
						rev, _ := ParseRevisionNumber(p.token.Value)
						rcs.Symbols[sym] = rev
						p.advance()
					}
				}
			}
			p.skipSemicolon()

		case "locks":
			p.advance()
			for p.token.Type == TokenIdent {
				lock := p.token.Value
				p.advance()
				if p.token.Type == TokenColon {
					p.advance()
					if p.token.Type == TokenNumber {
						rev, _ := ParseRevisionNumber(p.token.Value)
						rcs.Locks[lock] = rev
						p.advance()
					}
				}
			}
			p.skipSemicolon()

		case "strict":
			rcs.StrictLocks = true
			p.advance()
			p.skipSemicolon()

		case "comment":
			p.advance()
			if p.token.Type == TokenString {
				rcs.Comment = p.token.Value
				p.advance()
			}
			p.skipSemicolon()

		case "expand":
			p.advance()
			if p.token.Type == TokenString {
				rcs.Expand = parseKeywordMode(p.token.Value)
				p.advance()
			}
			p.skipSemicolon()

		default:
			// Unknown field, or we've reached the delta list. Leave the
			// token in place for the caller.
			return
		}

		if p.token.Type == TokenNumber {
			break
		}
	}
}

func (p *RCSParser) skipSemicolon() {
	if p.token.Type == TokenSemicolon {
		p.advance()
	}
}

func (p *RCSParser) parseDeltas(rcs *RCSFile) {
	for p.token.Type != TokenEOF {
		if p.token.Type == TokenIdent && p.token.Value == "desc" {
			break
		}
		if p.token.Type != TokenNumber {
			break
		}

		revStr := p.token.Value
		rev, _ := ParseRevisionNumber(revStr)
		p.advance()
		delta := &Delta{Revision: rev}

		for p.token.Type != TokenEOF {
			if p.token.Type == TokenNumber {
				break
			}
			if p.token.Type == TokenIdent && p.token.Value == "desc" {
				break
			}

			if p.token.Type != TokenIdent {
				p.advance()
				continue
			}

			switch p.token.Value {
			case "date":
				p.advance()
				if p.token.Type == TokenNumber {
					delta.Date = parseRCSDate(p.token.Value)
					p.advance()
				}
				p.skipSemicolon()

			case "author":
				p.advance()
				if p.token.Type == TokenIdent {
					delta.Author = p.token.Value
					p.advance()
				}
				p.skipSemicolon()

			case "state":
				p.advance()
				if p.token.Type == TokenIdent {
					delta.State = p.token.Value
					p.advance()
				}
				p.skipSemicolon()

			case "branches":
				p.advance()
				var fields []string
				for p.token.Type == TokenNumber {
					fields = append(fields, p.token.Value)
					p.advance()
				}
				delta.Branches = parseRevisionList(fields)
				p.skipSemicolon()

			case "next":
				p.advance()
				if p.token.Type == TokenNumber {
					delta.Next, _ = ParseRevisionNumber(p.token.Value)
					p.advance()
				}
				p.skipSemicolon()

			case "commitid":
				p.advance()
				if p.token.Type == TokenIdent || p.token.Type == TokenNumber {
					delta.CommitID = p.token.Value
					p.advance()
				}
				p.skipSemicolon()

			default:
				p.advance()
				for p.token.Type != TokenEOF && p.token.Type != TokenSemicolon {
					p.advance()
				}
				p.skipSemicolon()
			}
		}

		rcs.Deltas[revStr] = delta
		rcs.DeltaOrder = append(rcs.DeltaOrder, revStr)
	}
}

func (p *RCSParser) parseDesc(rcs *RCSFile) {
	if p.token.Type == TokenIdent && p.token.Value == "desc" {
		p.advance()
		if p.token.Type == TokenString {
			rcs.Description = p.token.Value
			p.advance()
		}
	}
}

func (p *RCSParser) parseDeltaTexts(rcs *RCSFile) {
	for p.token.Type != TokenEOF {
		if p.token.Type != TokenNumber {
			p.advance()
			continue
		}

		revStr := p.token.Value
		rev, _ := ParseRevisionNumber(revStr)
		p.advance()

		dt := &DeltaText{Revision: rev}

		for p.token.Type != TokenEOF && p.token.Type != TokenNumber {
			if p.token.Type == TokenIdent {
				switch p.token.Value {
				case "log":
					p.advance()
					if p.token.Type == TokenString {
						dt.Log = p.token.Value
						p.advance()
					}

				case "text":
					p.advance()
					if p.token.Type == TokenString {
						dt.Text = p.token.Value
						p.advance()
					}

				default:
					p.advance()
				}
			} else {
				p.advance()
			}
		}

		rcs.DeltaTexts[revStr] = dt
	}
}
