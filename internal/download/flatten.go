package download

import (
	"fmt"
	"os"
	"path"
	"path/filepath"

	"gsport/internal/models"
)

// Flatten walks a directory tree depth-first and produces one download
// target per file, in the order the portal returned the entries. Local
// directories are created as the walk encounters them; a directory
// that already exists is fine, workers flattening sibling trees may
// race on the same parents. Files the portal reports as 0 bytes get a
// size of 1 so rate and ETA math never divides by zero; the real byte
// count written to disk is unaffected.
//
// The traversal uses an explicit stack: portal trees can be deep and
// their depth is not under our control.
func Flatten(entries []models.DirectoryEntry, localBase, remoteBase string) ([]models.DownloadTarget, error) {
	if localBase == "" {
		localBase = "."
	}
	if err := os.MkdirAll(localBase, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", localBase, err)
	}

	type node struct {
		entry     models.DirectoryEntry
		localDir  string
		remoteDir string
	}

	stack := make([]node, 0, len(entries))
	push := func(entries []models.DirectoryEntry, localDir, remoteDir string) {
		for i := len(entries) - 1; i >= 0; i-- {
			stack = append(stack, node{entries[i], localDir, remoteDir})
		}
	}
	push(entries, localBase, remoteBase)

	var targets []models.DownloadTarget
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if n.entry.IsDir() {
			dir := filepath.Join(n.localDir, n.entry.Name)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
			}
			push(n.entry.Children, dir, path.Join(n.remoteDir, n.entry.Name))
			continue
		}

		size := n.entry.Size
		if size == 0 {
			size = 1
		}
		targets = append(targets, models.DownloadTarget{
			RemotePath: path.Join(n.remoteDir, n.entry.Name),
			LocalPath:  filepath.Join(n.localDir, n.entry.Name),
			Size:       size,
		})
	}

	return targets, nil
}
