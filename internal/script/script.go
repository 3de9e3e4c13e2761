// Package script implements the local TSV store of dialogue lines.
//
// A script file holds one record per line with three tab-separated fields:
// character attribution (empty for narration), original text, and translation.
// The literal "#" in the translation field is reserved to mean "no translation
// yet" and is mapped to the empty string in memory.
package script

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Sentinel is the serialized marker for an untranslated line.
const Sentinel = "#"

// ErrReservedSentinel is returned when a record's translation is the literal
// sentinel string, which can never be real content.
var ErrReservedSentinel = errors.New("translation is the reserved string \"#\"")

// FormatError describes a record that does not parse as three tab-separated
// fields.
type FormatError struct {
	Line   int // 1-based record number
	Fields int // number of fields found
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("line %d: expected 3 tab-separated fields, got %d", e.Line, e.Fields)
}

// Line is one dialogue record. Character is empty for narration lines and
// Translation is empty while the line is untranslated. Neither field may
// contain a tab or a newline.
type Line struct {
	Character   string
	Original    string
	Translation string
}

// validate rejects field content that cannot survive the TSV encoding.
func (l Line) validate() error {
	if l.Translation == Sentinel {
		return ErrReservedSentinel
	}
	for _, f := range []string{l.Character, l.Original, l.Translation} {
		if strings.ContainsAny(f, "\t\n") {
			return fmt.Errorf("field contains a tab or newline: %q", f)
		}
	}
	return nil
}

// Decode parses TSV records from r. The sentinel translation is mapped to the
// empty string. A record that does not split into exactly three fields is a
// *FormatError.
func Decode(r io.Reader) ([]Line, error) {
	var lines []Line
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	n := 0
	for scanner.Scan() {
		n++
		fields := strings.Split(scanner.Text(), "\t")
		if len(fields) != 3 {
			return nil, &FormatError{Line: n, Fields: len(fields)}
		}
		trans := fields[2]
		if trans == Sentinel {
			trans = ""
		}
		lines = append(lines, Line{
			Character:   fields[0],
			Original:    fields[1],
			Translation: trans,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}
	return lines, nil
}

// Encode writes lines to w in the TSV format, mapping empty translations to
// the sentinel. Returns ErrReservedSentinel if a record carries the literal
// sentinel as its translation.
func Encode(w io.Writer, lines []Line) error {
	bw := bufio.NewWriter(w)
	for i, l := range lines {
		if err := l.validate(); err != nil {
			return fmt.Errorf("line %d: %w", i+1, err)
		}
		trans := l.Translation
		if trans == "" {
			trans = Sentinel
		}
		if _, err := fmt.Fprintf(bw, "%s\t%s\t%s\n", l.Character, l.Original, trans); err != nil {
			return fmt.Errorf("failed to write line %d: %w", i+1, err)
		}
	}
	return bw.Flush()
}

// Load reads a script file from disk.
func Load(path string) ([]Line, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open script file %s: %w", path, err)
	}
	defer f.Close()

	lines, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse script file %s: %w", path, err)
	}
	return lines, nil
}

// Save writes a script file to disk atomically via a temp file and rename, so
// a crash mid-write never leaves a half-written file behind.
func Save(path string, lines []Line) error {
	var buf bytes.Buffer
	if err := Encode(&buf, lines); err != nil {
		return fmt.Errorf("failed to encode script file %s: %w", path, err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// Equal reports whether two record sequences are identical.
func Equal(a, b []Line) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
