// Package smtpwire speaks the minimal SMTP dialogue needed to probe a
// recipient: banner, EHLO/HELO, MAIL FROM, RCPT TO and QUIT. A Session
// owns exactly one connection and is never reused.
package smtpwire

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// QuitTimeout bounds the best-effort QUIT exchange on Close.
const QuitTimeout = 2 * time.Second

// Reply is a (possibly multi-line) SMTP response.
type Reply struct {
	Code int
	Text string // all lines joined with " | ", codes included
}

func (r Reply) String() string {
	return r.Text
}

// Session is a single SMTP conversation over conn.
type Session struct {
	conn   net.Conn
	reader *bufio.Reader
	writer *bufio.Writer
	closed bool
}

// NewSession wraps an established connection.
func NewSession(conn net.Conn) *Session {
	return &Session{
		conn:   conn,
		reader: bufio.NewReader(conn),
		writer: bufio.NewWriter(conn),
	}
}

// SetDeadline bounds every following read and write.
func (s *Session) SetDeadline(t time.Time) error {
	return s.conn.SetDeadline(t)
}

// Banner reads the server greeting.
func (s *Session) Banner() (Reply, error) {
	r, err := readReply(s.reader)
	if err != nil {
		return Reply{}, fmt.Errorf("read banner: %w", err)
	}
	return r, nil
}

// Cmd sends one command line and reads the reply.
func (s *Session) Cmd(format string, args ...any) (Reply, error) {
	line := fmt.Sprintf(format, args...)
	if strings.ContainsAny(line, "\r\n") {
		return Reply{}, errors.New("smtpwire: command contains line break")
	}
	if _, err := s.writer.WriteString(line + "\r\n"); err != nil {
		return Reply{}, err
	}
	if err := s.writer.Flush(); err != nil {
		return Reply{}, err
	}
	return readReply(s.reader)
}

// Hello greets with EHLO and falls back to HELO when EHLO is not accepted.
func (s *Session) Hello(domain string) (Reply, error) {
	r, err := s.Cmd("EHLO %s", domain)
	if err != nil || r.Code == 250 {
		return r, err
	}
	return s.Cmd("HELO %s", domain)
}

// Close sends QUIT (ignoring any failure) and closes the connection.
// It is safe to call more than once.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true

	_ = s.conn.SetDeadline(time.Now().Add(QuitTimeout))
	if _, err := s.writer.WriteString("QUIT\r\n"); err == nil {
		if s.writer.Flush() == nil {
			_, _ = readReply(s.reader)
		}
	}
	_ = s.conn.Close()
}

// readReply reads a (possibly multi-line) SMTP response.
func readReply(r *bufio.Reader) (Reply, error) {
	var lines []string
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return Reply{}, fmt.Errorf("read SMTP reply: %w", err)
		}
		line = strings.TrimRight(line, "\r\n")
		if len(line) < 3 {
			return Reply{}, fmt.Errorf("SMTP reply line too short: %q", line)
		}
		lines = append(lines, line)
		// A '-' after the code marks a continuation line.
		if len(line) < 4 || line[3] != '-' {
			break
		}
	}

	last := lines[len(lines)-1]
	code, err := strconv.Atoi(last[:3])
	if err != nil {
		return Reply{}, fmt.Errorf("invalid SMTP reply code %q", last[:3])
	}
	return Reply{Code: code, Text: strings.Join(lines, " | ")}, nil
}
