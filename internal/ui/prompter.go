package ui

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"

	"github.com/vntt-tools/vntsync/internal/sync"
)

// ConsolePrompter answers the sync engine's confirmation gates on the
// terminal. Both gates block until a recognized answer is given; Ctrl-C
// counts as abort.
type ConsolePrompter struct {
	// AssumeYes skips the final upload confirmation. The overwrite gate
	// is never skippable: ambiguous provenance always needs a human.
	AssumeYes bool

	// Out receives conflict details. Defaults to stdout.
	Out io.Writer
}

func (p *ConsolePrompter) out() io.Writer {
	if p.Out != nil {
		return p.Out
	}
	return os.Stdout
}

// ConfirmOverwrites presents overwrite conflicts and loops until the
// operator picks abort or proceed. "Print" dumps the conflicts as one JSON
// object per line (comb it with jq) and re-prompts. The decision covers the
// whole list; there is no per-line override.
func (p *ConsolePrompter) ConfirmOverwrites(conflicts []sync.Conflict) error {
	fmt.Fprintf(p.out(),
		"%s In %d cases a local translation neither matches the remote translation nor exists in its history.\n"+
			"These are assumed to be novel and would overwrite the corresponding remote translations.\n",
		RenderWarn("WARNING:"), len(conflicts))

	for {
		var action string
		form := huh.NewForm(huh.NewGroup(
			huh.NewSelect[string]().
				Title("What should we do?").
				Options(
					huh.NewOption("Abort the sync", "abort"),
					huh.NewOption("Print conflict details", "print"),
					huh.NewOption("Proceed with all uploads", "proceed"),
				).
				Value(&action),
		))
		if err := form.Run(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return sync.ErrAborted
			}
			return fmt.Errorf("conflict prompt failed: %w", err)
		}

		switch action {
		case "abort":
			return sync.ErrAborted
		case "print":
			for _, c := range conflicts {
				data, err := json.Marshal(c)
				if err != nil {
					return fmt.Errorf("failed to render conflict: %w", err)
				}
				fmt.Fprintln(p.out(), string(data))
			}
		case "proceed":
			return nil
		}
	}
}

// ConfirmUpload asks for the final go-ahead before uploading count updates.
func (p *ConsolePrompter) ConfirmUpload(count int) (bool, error) {
	if p.AssumeYes {
		return true, nil
	}

	var ok bool
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(fmt.Sprintf("Submit %d updated translations?", count)).
			Affirmative("Yes").
			Negative("No").
			Value(&ok),
	))
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, fmt.Errorf("upload prompt failed: %w", err)
	}
	return ok, nil
}
