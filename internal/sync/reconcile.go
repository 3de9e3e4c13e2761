package sync

import (
	"fmt"

	"github.com/vntt-tools/vntsync/internal/script"
	"github.com/vntt-tools/vntsync/internal/vnt"
)

// Conflict is a novel local translation that would overwrite a non-empty
// current remote translation. The JSON tags match the shape operators comb
// through with jq when the conflict gate prints details.
type Conflict struct {
	Position     int    `json:"line"`
	LineNumber   int    `json:"line_no"`
	Character    string `json:"char"`
	Original     string `json:"orig"`
	Local        string `json:"local"`
	Remote       string `json:"vnt"`
	RemoteAuthor string `json:"vnt-author"`
}

// Result is the outcome of a reconciliation. When Conflicts is non-empty the
// caller must obtain operator confirmation before acting on Merged and
// Updates; discarding the whole Result is the abort path.
type Result struct {
	// Merged is the new local record sequence.
	Merged []script.Line

	// Updates are the translations to upload, in script order.
	Updates []vnt.Update

	// Conflicts lists the positions where an upload would overwrite
	// existing remote content.
	Conflicts []Conflict
}

// Reconcile aligns a local record sequence against a remote snapshot and
// decides, per position, whether to keep the local translation, adopt the
// remote one, or schedule an upload.
//
// The sequences must be the same length with byte-identical character and
// original text at every position; any mismatch returns an error wrapping
// ErrMisaligned and no merge is attempted, since position is the only
// correlation mechanism and a shifted alignment would corrupt every
// subsequent line.
//
// Per position, in order:
//
//  1. Identical translations: keep as is.
//  2. Local empty: adopt remote.
//  3. Local differs but appears anywhere in the remote history: the remote
//     has already moved past this exact value, so local is stale; adopt
//     remote.
//  4. Local differs and is absent from history: local is novel; keep it and
//     schedule an upload. If the current remote translation is non-empty
//     this is a true overwrite and a Conflict is recorded.
//
// Comparisons are exact string equality; no normalization is applied.
// Reconcile performs no I/O and never mutates its inputs.
func Reconcile(local []script.Line, remote []Row) (*Result, error) {
	if len(local) != len(remote) {
		return nil, fmt.Errorf(
			"different number of lines in local file (%d) and remote script (%d); please reconcile and rerun: %w",
			len(local), len(remote), ErrMisaligned)
	}

	for i := range local {
		l, r := local[i], remote[i].Line
		if l.Character != r.Character || l.Original != r.Original {
			return nil, fmt.Errorf(
				"local file and remote script differ in original text at line %d:\n"+
					"  local:  char=%q, orig=%q\n"+
					"  remote: char=%q, orig=%q\n%w",
				i+1, l.Character, l.Original, r.Character, r.Original, ErrMisaligned)
		}
	}

	result := &Result{Merged: make([]script.Line, len(local))}
	for i := range local {
		merged := local[i]
		localTrans := local[i].Translation
		remoteTrans := remote[i].Line.Translation

		switch {
		case localTrans == remoteTrans:
			// In sync; nothing to do.
		case localTrans == "" || inHistory(remote[i].History, localTrans):
			merged.Translation = remoteTrans
		default:
			result.Updates = append(result.Updates, vnt.Update{
				LineID:      remote[i].ID,
				Translation: localTrans,
			})
			if remoteTrans != "" {
				result.Conflicts = append(result.Conflicts, Conflict{
					Position:     i + 1,
					LineNumber:   remote[i].LineNumber,
					Character:    local[i].Character,
					Original:     local[i].Original,
					Local:        localTrans,
					Remote:       remoteTrans,
					RemoteAuthor: remote[i].Author,
				})
			}
		}

		result.Merged[i] = merged
	}

	return result, nil
}

func inHistory(history []string, trans string) bool {
	for _, h := range history {
		if h == trans {
			return true
		}
	}
	return false
}
