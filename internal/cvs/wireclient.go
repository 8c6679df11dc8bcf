package cvs

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"net"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

// validResponses is the set of response verbs a CVS server may send
// during the initial handshake and data transfer, exactly as listed in
// the reference client.
var validResponses = []string{
	"ok", "error", "Valid-requests", "Checked-in",
	"New-entry", "Checksum", "Copy-file", "Updated", "Created",
	"Update-existing", "Merged", "Patched", "Rcs-diff", "Mode",
	"Removed", "Remove-entry", "Template", "Notified", "Module-expansion",
	"Wrapper-rcsOption", "M", "Mbinary", "E", "F", "MT",
}

// scrambleShifts is the CVS pserver password "scramble" substitution
// table (scheme "A"). It is not encryption, only obfuscation against
// casual shoulder-surfing, and the table is fixed by the protocol.
var scrambleShifts = [256]byte{
	0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15,
	16, 17, 18, 19, 20, 21, 22, 23, 24, 25, 26, 27, 28, 29, 30, 31,
	114, 120, 53, 79, 96, 109, 72, 108, 70, 64, 76, 67, 116, 74, 68, 87,
	111, 52, 75, 119, 49, 34, 82, 81, 95, 65, 112, 86, 118, 110, 122, 105,
	41, 57, 83, 43, 46, 102, 40, 89, 38, 103, 45, 50, 42, 123, 91, 35,
	125, 55, 54, 66, 124, 126, 59, 47, 92, 71, 115, 78, 88, 107, 106, 56,
	36, 121, 117, 104, 101, 100, 69, 73, 99, 63, 94, 93, 39, 37, 61, 48,
	58, 113, 32, 90, 44, 98, 60, 51, 33, 97, 62, 77, 84, 80, 85, 223,
	225, 216, 187, 166, 229, 189, 222, 188, 141, 249, 148, 200, 184, 136, 248, 190,
	199, 170, 181, 204, 138, 232, 218, 183, 255, 234, 220, 247, 213, 203, 226, 193,
	174, 172, 228, 252, 217, 201, 131, 230, 197, 211, 145, 238, 161, 179, 160, 212,
	207, 221, 254, 173, 202, 146, 224, 151, 140, 196, 205, 130, 135, 133, 143, 246,
	192, 159, 244, 239, 185, 168, 215, 144, 139, 165, 180, 157, 147, 186, 214, 176,
	227, 231, 219, 169, 175, 156, 206, 198, 129, 164, 150, 210, 154, 177, 134, 127,
	182, 128, 158, 208, 162, 132, 167, 209, 149, 241, 153, 251, 237, 236, 171, 195,
	243, 233, 253, 240, 194, 250, 191, 155, 142, 137, 245, 235, 163, 242, 178, 152,
}

// ScramblePassword obfuscates a pserver password with the "A" scramble
// scheme used by `cvs login`/pserver auth.
func ScramblePassword(password string) string {
	var b strings.Builder
	b.WriteByte('A')
	for i := 0; i < len(password); i++ {
		b.WriteByte(scrambleShifts[password[i]])
	}
	return b.String()
}

var reKBOpt = regexp.MustCompile(`/-kb/`)

// conn abstracts the two transports a WireClient can ride: a raw TCP
// socket (pserver) or a child process's stdin/stdout pipe (ssh, or a
// locally spawned `cvs server` for tests).
type conn interface {
	io.Writer
	io.Reader
	Close() error
}

// WireClient speaks the CVS client/server protocol well enough to fetch
// an rlog and check out individual file revisions, mirroring
// cvsclient.CVSClient.
type WireClient struct {
	conn       conn
	reader     *bufio.Reader
	cvsroot    string
	module     string
}

// DialPserver connects to a CVS pserver, authenticates, and performs the
// initial Root/Valid-requests handshake.
func DialPserver(hostname string, port int, user, password, cvsroot, module string) (*WireClient, error) {
	if port == 0 {
		port = 2401
	}
	c, err := net.Dial("tcp", fmt.Sprintf("%s:%d", hostname, port))
	if err != nil {
		return nil, &NotFoundError{Path: fmt.Sprintf("%s:%d", hostname, port)}
	}

	request := fmt.Sprintf("BEGIN AUTH REQUEST\n%s/%s\n%s\n%s\nEND AUTH REQUEST\n",
		cvsroot, module, user, ScramblePassword(password))
	if _, err := c.Write([]byte(request)); err != nil {
		return nil, err
	}

	reply := make([]byte, 11)
	if _, err := io.ReadFull(c, reply); err != nil {
		return nil, &ProtocolError{Message: "no response to auth request"}
	}
	if string(reply) != "I LOVE YOU\n" {
		return nil, &NotFoundError{Path: fmt.Sprintf("pserver authentication failed for %s:%d", hostname, port)}
	}

	return newWireClient(c, cvsroot, module)
}

// processConn adapts an *exec.Cmd's stdin/stdout pipes to the conn
// interface.
type processConn struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser
}

func (p *processConn) Write(b []byte) (int, error) { return p.stdin.Write(b) }
func (p *processConn) Read(b []byte) (int, error)  { return p.stdout.Read(b) }
func (p *processConn) Close() error {
	_ = p.stdin.Close()
	if p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
	}
	return p.cmd.Wait()
}

// DialSSH runs `ssh [-l user] [-p port] -o StrictHostKeyChecking=accept-new
// -o BatchMode=yes -- hostname cvs server` and speaks the CVS protocol
// over its pipes.
func DialSSH(hostname string, port int, user, cvsroot, module string) (*WireClient, error) {
	args := []string{}
	if user != "" {
		args = append(args, "-l", user)
	}
	if port != 0 {
		args = append(args, "-p", strconv.Itoa(port))
	}
	args = append(args,
		"-o", "StrictHostKeyChecking=accept-new",
		"-o", "BatchMode=yes",
		"--", hostname, "cvs", "server")

	cmd := exec.Command("ssh", args...) //nolint:gosec
	return dialProcess(cmd, cvsroot, module)
}

// DialFake spawns a local `cvs server` process, used by tests and by
// fake:// origins as a transport-less stand-in for a real server.
func DialFake(cvsroot, module string) (*WireClient, error) {
	cmd := exec.Command("cvs", "server")
	return dialProcess(cmd, cvsroot, module)
}

func dialProcess(cmd *exec.Cmd, cvsroot, module string) (*WireClient, error) {
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return newWireClient(&processConn{cmd: cmd, stdin: stdin, stdout: stdout}, cvsroot, module)
}

func newWireClient(c conn, cvsroot, module string) (*WireClient, error) {
	wc := &WireClient{
		conn:    c,
		reader:  bufio.NewReaderSize(c, 8192),
		cvsroot: cvsroot,
		module:  module,
	}

	handshake := fmt.Sprintf("Root %s\nValid-responses %s\nvalid-requests\nUseUnchanged\n",
		cvsroot, strings.Join(validResponses, " "))
	if err := wc.writeStr(handshake); err != nil {
		return nil, err
	}

	line, err := wc.readLine()
	if err != nil {
		return nil, &ProtocolError{Message: "no response from CVS server"}
	}
	if !strings.HasPrefix(line, "Valid-requests ") {
		return nil, &ProtocolError{Message: "invalid response from CVS server: " + line}
	}
	line, err = wc.readLine()
	if err != nil || line != "ok\n" {
		return nil, &ProtocolError{Message: "invalid response from CVS server: " + line}
	}

	return wc, nil
}

func (c *WireClient) writeStr(s string) error {
	_, err := c.conn.Write([]byte(s))
	return err
}

func (c *WireClient) readLine() (string, error) {
	return c.reader.ReadString('\n')
}

// Close releases the underlying connection or ssh/cvs subprocess.
func (c *WireClient) Close() error {
	return c.conn.Close()
}

// FetchRlog issues `rlog` over the module and returns the de-framed
// textual rlog output, stripping the "M "/"MT text "/"MT newline"
// line-oriented response framing described by the protocol.
func (c *WireClient) FetchRlog() (io.Reader, error) {
	if err := c.writeStr(fmt.Sprintf("Global_option -q\nArgument --\nArgument %s\nrlog\n", c.module)); err != nil {
		return nil, err
	}

	var raw bytes.Buffer
	for {
		line, err := c.readLine()
		if err != nil {
			return nil, &ProtocolError{Message: "no response from CVS server"}
		}
		if strings.HasPrefix(line, "E ") {
			return nil, &ProtocolError{Message: "error response from CVS server: " + line}
		}
		raw.WriteString(line)
		if line == "ok\n" {
			break
		}
	}

	return deframeResponse(&raw)
}

// deframeResponse strips the line-oriented CVS response protocol markers
// ("M ", "MT text ", "MT date ", "MT newline", blank "M" lines) from a
// captured response stream, yielding the plain rlog text underneath.
func deframeResponse(r io.Reader) (io.Reader, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	var out bytes.Buffer
	expectError := false
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case expectError:
			return nil, &ProtocolError{Message: "CVS server error: " + line}
		case line == "ok":
			return &out, nil
		case line == "M ":
			out.WriteByte('\n')
		case strings.HasPrefix(line, "M "):
			out.WriteString(line[2:])
			out.WriteByte('\n')
		case strings.HasPrefix(line, "MT text "):
			out.WriteString(line[8:])
		case strings.HasPrefix(line, "MT date "):
			out.WriteString(line[8:])
		case strings.HasPrefix(line, "MT newline"):
			out.WriteByte('\n')
		case strings.HasPrefix(line, "error  "):
			expectError = true
		default:
			return nil, &ProtocolError{Message: "bad CVS protocol response: " + line}
		}
	}
	return &out, scanner.Err()
}

// Checkout fetches the byte-for-byte (no keyword substitution, "-kb")
// content of path at rev, following the Directory/Argument/"co" request
// sequence and the skip-line/bytecount response state machine of the
// reference checkout implementation.
func (c *WireClient) Checkout(path, rev string) ([]byte, error) {
	dir := ""
	if idx := strings.LastIndexByte(path, '/'); idx >= 0 {
		dir = path[:idx]
	}
	if dir != "" {
		if err := c.writeStr(fmt.Sprintf("Directory %s\n%s\n", dir, dir)); err != nil {
			return nil, err
		}
	}

	req := fmt.Sprintf("Directory %s\n%s\nGlobal_option -q\nArgument -r%s\nArgument -kb\nArgument --\nArgument %s\nco \n",
		c.module, c.module, rev, path)
	if err := c.writeStr(req); err != nil {
		return nil, err
	}

	var (
		out             bytes.Buffer
		skipLine        bool
		expectModeline  bool
		expectByteCount bool
		haveByteCount   bool
		byteCount       int
	)

	for {
		var (
			response string
			err      error
		)
		if haveByteCount && byteCount > 0 {
			response, err = c.readChunk(byteCount)
			if err != nil {
				return nil, &ProtocolError{Message: "incomplete response from CVS server"}
			}
			out.WriteString(response)
			byteCount -= len(response)
			if byteCount < 0 {
				return nil, &ProtocolError{Message: "overlong response from CVS server"}
			}
			continue
		}

		response, err = c.readLine()
		if err != nil {
			return nil, &ProtocolError{Message: "incomplete response from CVS server"}
		}

		if strings.HasPrefix(response, "E ") {
			return nil, &ProtocolError{Message: "error from CVS server: " + response}
		}
		if haveByteCount && byteCount == 0 && response == "ok\n" {
			break
		}

		switch {
		case skipLine:
			skipLine = false
		case expectByteCount:
			n, convErr := strconv.Atoi(strings.TrimSuffix(response, "\n"))
			if convErr != nil {
				return nil, &ProtocolError{Message: "bad CVS protocol response: " + response}
			}
			byteCount = n
			haveByteCount = true
			expectByteCount = false
		case response == "M \n", response == "MT +updated\n", response == "MT -updated\n":
		case strings.HasPrefix(response, "MT fname "):
		case strings.HasPrefix(response, "Created "):
			skipLine = true
		case strings.HasPrefix(response, "/") && reKBOpt.MatchString(response):
			expectModeline = true
		case expectModeline && strings.HasPrefix(response, "u="):
			expectModeline = false
			expectByteCount = true
		case strings.HasPrefix(response, "M "):
		case strings.HasPrefix(response, "MT text "):
		case strings.HasPrefix(response, "MT newline"):
		default:
			return nil, &ProtocolError{Message: "bad CVS protocol response: " + response}
		}
	}

	return out.Bytes(), nil
}

// readChunk reads exactly up to n bytes without requiring a trailing
// newline, for the raw file-content portion of a checkout response.
func (c *WireClient) readChunk(n int) (string, error) {
	buf := make([]byte, n)
	read, err := io.ReadFull(c.reader, buf)
	if err != nil && err != io.ErrUnexpectedEOF {
		return "", err
	}
	return string(buf[:read]), nil
}
