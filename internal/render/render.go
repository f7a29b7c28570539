// Package render implements line-anchored rewriting of plain-text
// configuration documents. Documents are treated as ordered sequences
// of lines; rewriting replaces the value on targeted lines only and
// leaves every other line byte-for-byte unchanged, including comments,
// blank lines, and ordering.
package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

// Recognized key prefixes of the deployed configuration document.
// The canonical schema is upper-case env-file style so the systemd
// unit can load the document through EnvironmentFile=.
const (
	KeyPeers    = "PEERS="
	KeyInterval = "INTERVAL="
	KeyEmail    = "EMAIL="
	KeyLogFile  = "LOGFILE="
	KeyTimeout  = "TIMEOUT="
	KeySMTP     = "SMTP_SERVER="
)

// Assignment pairs a key prefix with the value that replaces
// everything after the prefix on matching lines.
type Assignment struct {
	Key   string
	Value string
}

// RewriteLine returns a copy of lines where every line beginning with
// keyPrefix is replaced by keyPrefix immediately followed by newValue.
// All other lines are returned unchanged. The second return value is
// the number of lines replaced.
func RewriteLine(lines []string, keyPrefix, newValue string) ([]string, int) {
	out := make([]string, len(lines))
	replaced := 0
	for i, line := range lines {
		if strings.HasPrefix(line, keyPrefix) {
			out[i] = keyPrefix + newValue
			replaced++
		} else {
			out[i] = line
		}
	}
	return out, replaced
}

// RewritePathPrefix returns a copy of lines where every line beginning
// with oldPath begins with newPath instead, preserving the remainder of
// the line. Lines already beginning with newPath count toward the match
// total, which keeps repeat runs idempotent.
func RewritePathPrefix(lines []string, oldPath, newPath string) ([]string, int) {
	out := make([]string, len(lines))
	matched := 0
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, oldPath):
			out[i] = newPath + line[len(oldPath):]
			matched++
		case strings.HasPrefix(line, newPath):
			out[i] = line
			matched++
		default:
			out[i] = line
		}
	}
	return out, matched
}

// RenderFile applies assignments to the document at path in place.
// Every assignment must match at least one line; a key with no
// matching line is an error, since the deployed agent would otherwise
// run with a stale value. The file must exist and be writable before
// any rewriting happens.
func RenderFile(path string, assignments []Assignment) error {
	lines, err := readLines(path)
	if err != nil {
		return err
	}

	for _, a := range assignments {
		var replaced int
		lines, replaced = RewriteLine(lines, a.Key, a.Value)
		if replaced == 0 {
			return fmt.Errorf("render: %s: no line matches key %q", path, a.Key)
		}
	}

	return writeLines(path, lines)
}

// RenderPathLine rewrites the single line of the document at path that
// begins with oldPath so it begins with newPath, preserving the rest of
// the line.
func RenderPathLine(path, oldPath, newPath string) error {
	lines, err := readLines(path)
	if err != nil {
		return err
	}

	lines, matched := RewritePathPrefix(lines, oldPath, newPath)
	if matched == 0 {
		return fmt.Errorf("render: %s: no line matches path %q", path, oldPath)
	}

	return writeLines(path, lines)
}

// readLines loads the document at path as an ordered line sequence.
// The document must be writable, since every read here precedes an
// in-place rewrite.
func readLines(path string) ([]string, error) {
	if err := unix.Access(path, unix.W_OK); err != nil {
		return nil, fmt.Errorf("render: %s is not writable: %w", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("render: read %s: %w", path, err)
	}
	return strings.Split(string(data), "\n"), nil
}

// writeLines stores the line sequence back to path atomically via a
// temp file and rename, preserving the file's current permissions.
// Readers never observe a partially-written document.
func writeLines(path string, lines []string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("render: stat %s: %w", path, err)
	}

	dir, name := filepath.Split(path)
	tmpPath := filepath.Join(dir, ".tmp-"+name)

	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("render: write %s: %w", path, err)
	}
	defer os.Remove(tmpPath) // clean up on error

	if _, err := f.WriteString(strings.Join(lines, "\n")); err != nil {
		f.Close()
		return fmt.Errorf("render: write %s: %w", path, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("render: sync %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("render: close %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("render: replace %s: %w", path, err)
	}
	return nil
}
