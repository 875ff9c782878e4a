package download

import (
	"os"
	"path/filepath"
	"testing"

	"gsport/internal/models"
)

func sampleTree() []models.DirectoryEntry {
	return []models.DirectoryEntry{
		{
			Name: "Analysis",
			Type: models.EntryDirectory,
			Children: []models.DirectoryEntry{
				{
					Name: "sample1",
					Type: models.EntryDirectory,
					Children: []models.DirectoryEntry{
						{Name: "reads.fastq.gz", Type: models.EntryFile, Size: 2048},
						{Name: "report.html", Type: models.EntryFile, Size: 512},
					},
				},
				{Name: "summary.txt", Type: models.EntryFile, Size: 0},
			},
		},
		{Name: "README.txt", Type: models.EntryFile, Size: 10},
		{Name: "Raw", Type: models.EntryDirectory, Children: []models.DirectoryEntry{}},
	}
}

func countFiles(entries []models.DirectoryEntry) int {
	count := 0
	for _, e := range entries {
		if e.IsDir() {
			count += countFiles(e.Children)
		} else {
			count++
		}
	}
	return count
}

func TestFlatten(t *testing.T) {
	base := t.TempDir()

	targets, err := Flatten(sampleTree(), base, "/")
	if err != nil {
		t.Fatalf("Flatten() error = %v", err)
	}

	if len(targets) != countFiles(sampleTree()) {
		t.Fatalf("Flatten() produced %d targets, want %d", len(targets), countFiles(sampleTree()))
	}

	wantOrder := []string{
		"/Analysis/sample1/reads.fastq.gz",
		"/Analysis/sample1/report.html",
		"/Analysis/summary.txt",
		"/README.txt",
	}
	for i, want := range wantOrder {
		if targets[i].RemotePath != want {
			t.Errorf("targets[%d].RemotePath = %s, want %s", i, targets[i].RemotePath, want)
		}
	}

	wantLocal := filepath.Join(base, "Analysis", "sample1", "reads.fastq.gz")
	if targets[0].LocalPath != wantLocal {
		t.Errorf("targets[0].LocalPath = %s, want %s", targets[0].LocalPath, wantLocal)
	}

	for _, dir := range []string{
		filepath.Join(base, "Analysis", "sample1"),
		filepath.Join(base, "Raw"),
	} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Errorf("expected directory %s to exist, err = %v", dir, err)
		}
	}
}

func TestFlattenZeroSizeBecomesOne(t *testing.T) {
	targets, err := Flatten(sampleTree(), t.TempDir(), "/")
	if err != nil {
		t.Fatalf("Flatten() error = %v", err)
	}

	for _, target := range targets {
		if target.RemotePath == "/Analysis/summary.txt" {
			if target.Size != 1 {
				t.Errorf("zero-size target Size = %d, want 1", target.Size)
			}
			return
		}
	}
	t.Fatal("zero-size file missing from targets")
}

func TestFlattenIdempotent(t *testing.T) {
	base := t.TempDir()

	first, err := Flatten(sampleTree(), base, "/")
	if err != nil {
		t.Fatalf("first Flatten() error = %v", err)
	}

	// Running again over the already-materialized tree must not fail
	// and must produce the same targets.
	second, err := Flatten(sampleTree(), base, "/")
	if err != nil {
		t.Fatalf("second Flatten() error = %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("target counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("targets[%d] differ: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestFlattenEmptyTree(t *testing.T) {
	targets, err := Flatten(nil, t.TempDir(), "/")
	if err != nil {
		t.Fatalf("Flatten() error = %v", err)
	}
	if len(targets) != 0 {
		t.Errorf("Flatten(nil) produced %d targets, want 0", len(targets))
	}
}

func TestFlattenDeepTree(t *testing.T) {
	// A pathologically deep tree must not exhaust the stack.
	const depth = 1000

	leaf := models.DirectoryEntry{Name: "file.bin", Type: models.EntryFile, Size: 1}
	tree := []models.DirectoryEntry{leaf}
	for i := 0; i < depth; i++ {
		tree = []models.DirectoryEntry{{Name: "d", Type: models.EntryDirectory, Children: tree}}
	}

	targets, err := Flatten(tree, t.TempDir(), "/")
	if err != nil {
		t.Fatalf("Flatten() error = %v", err)
	}
	if len(targets) != 1 {
		t.Fatalf("Flatten() produced %d targets, want 1", len(targets))
	}
}
