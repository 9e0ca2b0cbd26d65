// Package history keeps the newline-delimited log of shell commands.
package history

import (
	stderrors "errors"
	"os"
	"regexp"
	"strings"

	"github.com/hpungsan/shelldash/internal/errors"
	"github.com/hpungsan/shelldash/internal/fsutil"
)

const (
	// FileName is the history file name inside the data directory.
	FileName = "shell_history.txt"
	// DefaultTail is how many lines the history command shows.
	DefaultTail = 50
)

// Log is an append-only command history backed by a single text file.
type Log struct {
	path string
}

// NewLog creates a Log at path. The file is created on first Append.
func NewLog(path string) *Log {
	return &Log{path: path}
}

// Path returns the backing file path.
func (l *Log) Path() string {
	return l.path
}

// Append adds one command line. Commands are expected to be trimmed and non-empty.
// Embedded line breaks are folded to a single space.
func (l *Log) Append(command string) error {
	if err := fsutil.AppendLine(l.path, SingleLine(command), 0600); err != nil {
		return errors.NewStorage("append", l.path, err)
	}
	return nil
}

var lineBreaks = regexp.MustCompile(`[\r\n]+`)

// SingleLine replaces each run of CR/LF characters in s with one space.
func SingleLine(s string) string {
	return lineBreaks.ReplaceAllString(s, " ")
}

// Tail returns at most n most recent lines, oldest first.
// A missing file yields no lines.
func (l *Log) Tail(n int) ([]string, error) {
	data, err := fsutil.ReadFile(l.path)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.NewStorage("read", l.path, err)
	}

	lines := splitLines(string(data))
	if n >= 0 && len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines, nil
}

// splitLines splits on \n, \r\n or \r, dropping the final terminator.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.TrimSuffix(s, "\n")
	return strings.Split(s, "\n")
}
