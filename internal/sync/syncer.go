package sync

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/vntt-tools/vntsync/internal/script"
	"github.com/vntt-tools/vntsync/internal/vnt"
)

// RecoverySuffix is appended to a script's filename for the reference dump
// written when reconciliation fails.
const RecoverySuffix = ".1"

// Client is the remote surface the syncer consumes.
type Client interface {
	ProjectID(ctx context.Context, codename string) (int64, error)
	ScriptFiles(ctx context.Context, projectID int64) ([]vnt.ScriptFile, error)
	ScriptLines(ctx context.Context, fileID int64) ([]vnt.Line, error)
	Submitter
}

// Prompter answers the two human-confirmation gates. Implementations own the
// blocking terminal I/O; the engine only sees the decision.
type Prompter interface {
	// ConfirmOverwrites presents overwrite conflicts to the operator.
	// Returning nil accepts all pending uploads, including the flagged
	// ones; returning ErrAborted (or any other error) discards the whole
	// file's merge and upload decisions. There is no per-line override.
	ConfirmOverwrites(conflicts []Conflict) error

	// ConfirmUpload asks for the final go-ahead before uploading count
	// accumulated updates. Returning false aborts the upload but leaves
	// already-rewritten local files intact.
	ConfirmUpload(count int) (bool, error)
}

// Options configures a ProjectSyncer.
type Options struct {
	// Directory holds the local TSV files. Defaults to ".".
	Directory string

	// ChunkSize bounds each upload batch. Zero means DefaultChunkSize.
	ChunkSize int

	// DryRun reports what would be uploaded instead of transmitting.
	DryRun bool

	// Prompter answers the confirmation gates. Required.
	Prompter Prompter

	// RunLog records per-file outcomes and chunks. Nil disables it.
	RunLog RunLog

	// Logger receives progress output. Nil means a stderr default.
	Logger *log.Logger
}

// ProjectSyncer drives one full project sync: enumerate remote script files,
// pair each with its local TSV file, reconcile, persist, and finally submit
// the accumulated uploads behind a single confirmation gate.
type ProjectSyncer struct {
	client Client
	opts   Options
}

// NewProjectSyncer creates a ProjectSyncer.
func NewProjectSyncer(client Client, opts Options) *ProjectSyncer {
	if opts.Directory == "" {
		opts.Directory = "."
	}
	if opts.Logger == nil {
		opts.Logger = defaultLogger()
	}
	return &ProjectSyncer{client: client, opts: opts}
}

// Sync synchronizes every script file of the project identified by codename.
//
// Per file: empty files are skipped; a missing local file gets the remote
// snapshot written verbatim as its initial download; otherwise the local
// file is reconciled against the snapshot. On reconciliation failure
// (misalignment or operator abort) the unmodified snapshot is written to a
// sibling recovery file before the error propagates, so the operator has a
// reference copy to reconcile against by hand.
//
// Uploads from all files are accumulated and submitted only after one final
// operator confirmation. Declining returns ErrAborted; local files already
// rewritten stay rewritten.
func (s *ProjectSyncer) Sync(ctx context.Context, codename string) error {
	logger := s.opts.Logger

	projectID, err := s.client.ProjectID(ctx, codename)
	if err != nil {
		return err
	}

	files, err := s.client.ScriptFiles(ctx, projectID)
	if err != nil {
		return err
	}
	if err := checkFilenames(files); err != nil {
		return err
	}

	var allUpdates []vnt.Update
	for _, file := range files {
		updates, err := s.syncFile(ctx, file)
		if err != nil {
			return fmt.Errorf("failed to sync %s: %w", file.OriginalFilename, err)
		}
		allUpdates = append(allUpdates, updates...)
	}

	if len(allUpdates) == 0 {
		logger.Printf("Nothing to upload; done.")
		return nil
	}

	ok, err := s.opts.Prompter.ConfirmUpload(len(allUpdates))
	if err != nil {
		return err
	}
	if !ok {
		logger.Printf("Aborting upload of %d updates.", len(allUpdates))
		return fmt.Errorf("upload declined: %w", ErrAborted)
	}

	logger.Printf("Uploading %d updated translations...", len(allUpdates))
	uploader := NewUploader(s.client, s.opts.ChunkSize, s.opts.DryRun, s.opts.RunLog, logger)
	if err := uploader.Submit(ctx, allUpdates); err != nil {
		return err
	}
	logger.Printf("Done.")
	return nil
}

// syncFile processes one remote script file and returns its pending uploads.
func (s *ProjectSyncer) syncFile(ctx context.Context, file vnt.ScriptFile) ([]vnt.Update, error) {
	logger := s.opts.Logger
	tsvName := localName(file.OriginalFilename)
	tsvPath := filepath.Join(s.opts.Directory, tsvName)

	if file.LineCount == 0 {
		logger.Printf("Skipping %s because it is empty.", file.OriginalFilename)
		s.recordFile(tsvName, "skipped", "empty on the service")
		return nil, nil
	}
	logger.Printf("Syncing %s on the service to %s on disk.", file.OriginalFilename, tsvName)

	lines, err := s.client.ScriptLines(ctx, file.ID)
	if err != nil {
		s.recordFile(tsvName, "failed", err.Error())
		return nil, err
	}

	rows, err := Snapshot(lines, logger)
	if err != nil {
		s.recordFile(tsvName, "failed", err.Error())
		return nil, err
	}

	if _, err := os.Stat(tsvPath); os.IsNotExist(err) {
		logger.Printf("Initial download of %s.", tsvName)
		if err := script.Save(tsvPath, Records(rows)); err != nil {
			s.recordFile(tsvName, "failed", err.Error())
			return nil, err
		}
		s.recordFile(tsvName, "downloaded", fmt.Sprintf("%d lines", len(rows)))
		return nil, nil
	}

	local, err := script.Load(tsvPath)
	if err != nil {
		s.recordFile(tsvName, "failed", err.Error())
		return nil, err
	}

	result, err := Reconcile(local, rows)
	if err == nil && len(result.Conflicts) > 0 {
		err = s.opts.Prompter.ConfirmOverwrites(result.Conflicts)
	}
	if err != nil {
		// Give the operator a reference copy of the remote state to
		// reconcile against by hand, then propagate.
		recoveryPath := tsvPath + RecoverySuffix
		logger.Printf("Dumping remote script %s to %s.", file.OriginalFilename, filepath.Base(recoveryPath))
		if dumpErr := script.Save(recoveryPath, Records(rows)); dumpErr != nil {
			logger.Printf("WARNING: failed to write recovery file %s: %v", recoveryPath, dumpErr)
		}
		s.recordFile(tsvName, "failed", err.Error())
		return nil, err
	}

	changed := 0
	for i := range local {
		if local[i].Translation != result.Merged[i].Translation {
			changed++
		}
	}
	logger.Printf("Updating %d translations in %s.", changed, tsvName)
	if changed > 0 {
		if err := script.Save(tsvPath, result.Merged); err != nil {
			s.recordFile(tsvName, "failed", err.Error())
			return nil, err
		}
		s.recordFile(tsvName, "merged", fmt.Sprintf("%d local updates, %d uploads queued", changed, len(result.Updates)))
	} else {
		s.recordFile(tsvName, "unchanged", fmt.Sprintf("%d uploads queued", len(result.Updates)))
	}

	logger.Printf("Queueing %d translations to upload from %s.", len(result.Updates), tsvName)
	return result.Updates, nil
}

func (s *ProjectSyncer) recordFile(name, outcome, detail string) {
	if s.opts.RunLog == nil {
		return
	}
	if err := s.opts.RunLog.RecordFile(name, outcome, detail); err != nil {
		s.opts.Logger.Printf("WARNING: failed to record file outcome in journal: %v", err)
	}
}

// localName maps a remote filename to its local TSV counterpart.
func localName(remote string) string {
	return strings.TrimSuffix(remote, filepath.Ext(remote)) + ".tsv"
}

// checkFilenames rejects file listings whose names would clash or escape the
// store directory once mapped to local TSV names.
func checkFilenames(files []vnt.ScriptFile) error {
	seen := make(map[string]string, len(files))
	for _, f := range files {
		if strings.Contains(f.OriginalFilename, "/") {
			return fmt.Errorf("remote filename %q contains a path separator", f.OriginalFilename)
		}
		name := localName(f.OriginalFilename)
		if prev, ok := seen[name]; ok {
			return fmt.Errorf("remote filenames %q and %q both map to %q", prev, f.OriginalFilename, name)
		}
		seen[name] = f.OriginalFilename
	}
	return nil
}
