// Package sync reconciles local TSV script files with the translation
// service's per-line state.
//
// The engine is deliberately split in layers:
//
//   - Snapshot normalizes the service's line objects into the same record
//     shape the local files use, keeping the remote ID and translation
//     history alongside each record.
//   - Reconcile is pure: it aligns a local and a remote sequence
//     positionally and computes a merged sequence, pending uploads, and any
//     overwrite conflicts. It performs no I/O and never prompts.
//   - Uploader partitions pending uploads into bounded chunks and submits
//     them, honoring dry-run before every chunk.
//   - ProjectSyncer drives a full project sync file by file, owns the
//     recovery-file protocol, and routes all human decisions through a
//     Prompter so the engine stays testable without a terminal.
//
// Position is the only join key between the two sides: reconciliation
// refuses to run unless both sequences have the same length and identical
// character/original text at every position.
package sync
