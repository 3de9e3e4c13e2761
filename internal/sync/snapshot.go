package sync

import (
	"fmt"
	"log"
	"strings"

	"github.com/vntt-tools/vntsync/internal/script"
	"github.com/vntt-tools/vntsync/internal/vnt"
)

// Row is one remote line normalized into the local record shape, with the
// metadata reconciliation needs kept alongside.
type Row struct {
	// Line is the record as it would appear in the local file. Its
	// Translation is the line's current translation, empty when the line
	// has none.
	Line script.Line

	// ID is the stable remote identifier, used as the upload target key.
	ID int64

	// LineNumber is the 1-based line number on the service. Diagnostics
	// only; it plays no part in alignment.
	LineNumber int

	// History holds every translation the service has recorded for this
	// line, current first. Append-only on the service side.
	History []string

	// Author is the username that created the current translation, empty
	// when the line is untranslated.
	Author string
}

// Snapshot normalizes remote lines into rows, validating per-line textual
// constraints. The current translation is the first history entry if any.
//
// Fatal conditions (a *ValidationError aborting the whole file): a current
// translation equal to the reserved sentinel, or an internal newline in
// original or translation text. Leading and trailing newlines are trimmed
// with a warning instead, matching what the codec can persist.
func Snapshot(lines []vnt.Line, logger *log.Logger) ([]Row, error) {
	if logger == nil {
		logger = defaultLogger()
	}

	rows := make([]Row, 0, len(lines))
	for i, line := range lines {
		pos := i + 1
		lineNo := line.LineNumber + 1

		trans := ""
		author := ""
		if len(line.Translations) > 0 {
			trans = line.Translations[0].Translation
			author = line.Translations[0].CreatedBy.Username
			if trans == script.Sentinel {
				return nil, &ValidationError{
					Position:   pos,
					LineNumber: lineNo,
					Reason:     fmt.Sprintf("translation is the reserved string %q", script.Sentinel),
				}
			}
		}

		orig := line.Original
		if strings.Contains(strings.Trim(orig, "\n"), "\n") ||
			strings.Contains(strings.Trim(trans, "\n"), "\n") {
			return nil, &ValidationError{
				Position:   pos,
				LineNumber: lineNo,
				Reason:     "original or translated text contains an internal newline",
			}
		}
		if strings.Trim(orig, "\n") != orig || strings.Trim(trans, "\n") != trans {
			logger.Printf("WARNING: stripping leading or trailing newline(s) from text at line %d (%d on the service)", pos, lineNo)
			orig = strings.Trim(orig, "\n")
			trans = strings.Trim(trans, "\n")
		}

		history := make([]string, 0, len(line.Translations))
		for _, tr := range line.Translations {
			history = append(history, tr.Translation)
		}

		rows = append(rows, Row{
			Line: script.Line{
				Character:   line.CharacterName,
				Original:    orig,
				Translation: trans,
			},
			ID:         line.ID,
			LineNumber: lineNo,
			History:    history,
			Author:     author,
		})
	}

	return rows, nil
}

// Records extracts the plain record sequence from a snapshot, for writing
// the initial download or the recovery file.
func Records(rows []Row) []script.Line {
	lines := make([]script.Line, len(rows))
	for i, row := range rows {
		lines[i] = row.Line
	}
	return lines
}
