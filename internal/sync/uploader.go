package sync

import (
	"context"
	"fmt"
	"log"

	"github.com/vntt-tools/vntsync/internal/vnt"
)

// DefaultChunkSize is how many translation upserts go into one batch
// request.
const DefaultChunkSize = 25

// Submitter posts one batch of translation upserts to the service.
type Submitter interface {
	SubmitTranslations(ctx context.Context, updates []vnt.Update) error
}

// RunLog captures per-file outcomes and submitted chunks for post-run
// auditing. A nil RunLog disables recording.
type RunLog interface {
	RecordFile(name, outcome, detail string) error
	RecordChunk(index, size int, dryRun bool) error
}

// Uploader submits pending translation updates in bounded, order-preserving
// chunks.
type Uploader struct {
	submitter Submitter
	chunkSize int
	dryRun    bool
	runLog    RunLog
	logger    *log.Logger
}

// NewUploader creates an Uploader. A chunkSize of zero or less falls back to
// DefaultChunkSize. In dry-run mode nothing is transmitted; each chunk's
// contents are reported instead.
func NewUploader(submitter Submitter, chunkSize int, dryRun bool, runLog RunLog, logger *log.Logger) *Uploader {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if logger == nil {
		logger = defaultLogger()
	}
	return &Uploader{
		submitter: submitter,
		chunkSize: chunkSize,
		dryRun:    dryRun,
		runLog:    runLog,
		logger:    logger,
	}
}

// Submit partitions updates into chunks and transmits each as one batch.
// Dry-run is checked before every chunk, so interleaving real and dry
// invocations stays safe. There is no retry: the first transport failure
// aborts the remaining chunks and is returned; chunks already sent stand.
func (u *Uploader) Submit(ctx context.Context, updates []vnt.Update) error {
	total := (len(updates) + u.chunkSize - 1) / u.chunkSize
	for i := 0; len(updates) > 0; i++ {
		n := u.chunkSize
		if n > len(updates) {
			n = len(updates)
		}
		chunk := updates[:n]
		updates = updates[n:]

		if u.dryRun {
			u.logger.Printf("The following %d lines would have been uploaded (chunk %d/%d):", len(chunk), i+1, total)
			for _, update := range chunk {
				u.logger.Printf("  %d: %s", update.LineID, update.Translation)
			}
			u.record(i, len(chunk), true)
			continue
		}

		if err := u.submitter.SubmitTranslations(ctx, chunk); err != nil {
			return fmt.Errorf("failed to upload chunk %d/%d: %w", i+1, total, err)
		}
		u.logger.Printf("Uploaded chunk %d/%d (%d lines)", i+1, total, len(chunk))
		u.record(i, len(chunk), false)
	}
	return nil
}

func (u *Uploader) record(index, size int, dryRun bool) {
	if u.runLog == nil {
		return
	}
	if err := u.runLog.RecordChunk(index, size, dryRun); err != nil {
		u.logger.Printf("WARNING: failed to record chunk in journal: %v", err)
	}
}
