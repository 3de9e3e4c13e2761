package sync

import (
	"errors"
	"fmt"
)

// Common errors returned by sync operations.
//
// These can be checked with errors.Is():
//
//	if errors.Is(err, sync.ErrAborted) {
//	    // the operator chose to stop; not a system fault
//	}
var (
	// ErrAborted is returned when the operator declines a confirmation
	// gate. Work already committed (rewritten files, sent chunks) stands.
	ErrAborted = errors.New("operation aborted")

	// ErrMisaligned is returned when the local file and the remote script
	// disagree on line count or on character/original text at some
	// position. No merge is attempted; the operator must fix the local
	// file by hand and rerun.
	ErrMisaligned = errors.New("local file and remote script are misaligned")
)

// ValidationError reports remote line content the engine refuses to sync:
// the reserved sentinel used as a real translation, or text with internal
// newlines. These indicate corrupt or unexpected remote data and abort the
// whole file before any merge decision is made.
type ValidationError struct {
	Position   int // 1-based position in the script
	LineNumber int // 1-based line number on the service, for diagnostics
	Reason     string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("line %d (%d on the service): %s", e.Position, e.LineNumber, e.Reason)
}
