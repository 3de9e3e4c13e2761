// Package vcs detects whether the local store directory lives in a version
// control repository and whether it has uncommitted changes.
//
// Adopting a remote translation over a stale local one is not undoable, so
// the sync command warns when it is about to reconcile uncommitted edits.
// Everything here is best-effort: no repo, or no git/jj binary, just means
// no warning.
package vcs

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Type identifies the detected version control system.
type Type string

const (
	TypeNone Type = ""
	TypeGit  Type = "git"
	TypeJJ   Type = "jj"
)

// Detect walks up from dir looking for a .jj or .git marker. When both are
// present (colocated repo), jj wins since its working-copy view subsumes
// git's. Returns TypeNone when no repository is found.
func Detect(dir string) (Type, string) {
	current, err := filepath.Abs(dir)
	if err != nil {
		return TypeNone, ""
	}

	for {
		if info, err := os.Stat(filepath.Join(current, ".jj")); err == nil && info.IsDir() {
			return TypeJJ, current
		}
		if _, err := os.Stat(filepath.Join(current, ".git")); err == nil {
			return TypeGit, current
		}

		parent := filepath.Dir(current)
		if parent == current {
			return TypeNone, ""
		}
		current = parent
	}
}

// IsDirty reports whether the repository at root has uncommitted changes,
// by shelling out to the VCS binary.
func IsDirty(vcsType Type, root string) (bool, error) {
	var cmd *exec.Cmd
	switch vcsType {
	case TypeGit:
		cmd = exec.Command("git", "-C", root, "status", "--porcelain")
	case TypeJJ:
		cmd = exec.Command("jj", "-R", root, "diff", "--name-only")
	default:
		return false, nil
	}

	out, err := cmd.Output()
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(string(out)) != "", nil
}
