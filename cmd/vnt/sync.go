package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/vntt-tools/vntsync/internal/config"
	"github.com/vntt-tools/vntsync/internal/journal"
	"github.com/vntt-tools/vntsync/internal/sync"
	"github.com/vntt-tools/vntsync/internal/ui"
	"github.com/vntt-tools/vntsync/internal/vcs"
	"github.com/vntt-tools/vntsync/internal/vnt"
)

var (
	syncDirectory string
	syncEndpoint  string
	syncLanguage  string
	syncDryRun    bool
	syncYes       bool
	syncNoJournal bool
)

var syncCmd = &cobra.Command{
	Use:   "sync <project-codename>",
	Short: "Sync a project's script files with the service",
	Long: `Download all of a project's script files into the store directory as TSV
files. Files that already exist locally are reconciled line by line against
the remote state; novel local translations are queued for upload behind a
final confirmation gate.

On a reconciliation failure the remote snapshot is dumped next to the local
file with a ".1" suffix so you can fix the local file by hand and rerun.

The project codename is the identifier seen in the service's UI URLs.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runSync(cmd, args[0]); err != nil {
			if errors.Is(err, sync.ErrAborted) {
				fmt.Fprintf(os.Stderr, "%s %v\n", ui.RenderWarn("Aborted:"), err)
			} else {
				fmt.Fprintf(os.Stderr, "%s %v\n", ui.RenderFail("Error:"), err)
			}
			os.Exit(1)
		}
	},
}

func init() {
	syncCmd.Flags().StringVarP(&syncDirectory, "directory", "d", "", "directory holding the local TSV files")
	syncCmd.Flags().StringVar(&syncEndpoint, "endpoint", "", "API base URL")
	syncCmd.Flags().StringVar(&syncLanguage, "language", "", "target language code")
	syncCmd.Flags().BoolVarP(&syncDryRun, "dry-run", "n", false, "report uploads instead of transmitting them")
	syncCmd.Flags().BoolVarP(&syncYes, "yes", "y", false, "skip the final upload confirmation")
	syncCmd.Flags().BoolVar(&syncNoJournal, "no-journal", false, "disable the run journal")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, codename string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("directory") {
		cfg.Directory = syncDirectory
	}
	if cmd.Flags().Changed("endpoint") {
		cfg.Endpoint = syncEndpoint
	}
	if cmd.Flags().Changed("language") {
		cfg.Language = syncLanguage
	}
	if syncDryRun {
		cfg.DryRun = true
	}
	if syncNoJournal {
		cfg.Journal = false
	}

	// Both gates block on terminal input; better to fail now than hang
	// inside a pipeline.
	if !ui.IsInteractive() {
		return fmt.Errorf("sync requires an interactive terminal for its confirmation gates")
	}

	logger := cfg.NewLogger()
	warnIfDirty(cfg.Directory, logger)

	client, err := vnt.NewClient(cfg.Endpoint, cfg.Language)
	if err != nil {
		return err
	}

	var runLog sync.RunLog
	var j *journal.Journal
	if cfg.Journal {
		j, err = journal.Open(cfg.JournalPath())
		if err != nil {
			return err
		}
		defer j.Close()
		if err := j.BeginRun(codename, cfg.DryRun); err != nil {
			return err
		}
		runLog = j
	}

	syncer := sync.NewProjectSyncer(client, sync.Options{
		Directory: cfg.Directory,
		ChunkSize: cfg.ChunkSize,
		DryRun:    cfg.DryRun,
		Prompter:  &ui.ConsolePrompter{AssumeYes: syncYes},
		RunLog:    runLog,
		Logger:    logger,
	})

	syncErr := syncer.Sync(context.Background(), codename)

	if j != nil {
		status := "ok"
		switch {
		case errors.Is(syncErr, sync.ErrAborted):
			status = "aborted"
		case syncErr != nil:
			status = "failed"
		}
		if err := j.FinishRun(status); err != nil {
			logger.Printf("WARNING: failed to finish journal run: %v", err)
		}
	}

	if syncErr == nil {
		fmt.Printf("%s Sync of %s complete.\n", ui.RenderPass("✓"), codename)
	}
	return syncErr
}

// warnIfDirty nags when the store directory has uncommitted changes, since
// adopting remote translations over local edits is not undoable.
func warnIfDirty(dir string, logger *log.Logger) {
	typ, root := vcs.Detect(dir)
	if typ == vcs.TypeNone {
		return
	}
	dirty, err := vcs.IsDirty(typ, root)
	if err != nil || !dirty {
		return
	}
	logger.Printf("WARNING: %s repository at %s has uncommitted changes; commit before syncing so adopted remote translations can be reviewed", typ, root)
}
