package cvs

import "fmt"

// ParseError reports a malformed RCS file or rlog stream.
type ParseError struct {
	Kind   string // e.g. "revision", "admin", "delta"
	Detail string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cvs: parse error (%s): %s", e.Kind, e.Detail)
}

// UnknownRevisionError is returned when a checkout or log lookup names a
// revision that does not exist in the file's delta chain.
type UnknownRevisionError struct {
	Path     string
	Revision string
}

func (e *UnknownRevisionError) Error() string {
	return fmt.Sprintf("cvs: unknown revision %s for %s", e.Revision, e.Path)
}

// ProtocolError reports an unexpected response from a CVS pserver/ssh
// server, mirroring CVSProtocolError in the original rlog client.
type ProtocolError struct {
	Message string
}

func (e *ProtocolError) Error() string {
	return "cvs: protocol error: " + e.Message
}

// NotFoundError reports that the requested repository, module, or path
// does not exist at the origin.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return "cvs: not found: " + e.Path
}
