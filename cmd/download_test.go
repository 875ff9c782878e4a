package cmd

import (
	"path/filepath"
	"testing"

	"gsport/internal/models"
)

func TestFindTarget(t *testing.T) {
	entries := []models.DirectoryEntry{
		{Name: "reads.fastq.gz", Type: models.EntryFile, Size: 2048},
		{Name: "report.html", Type: models.EntryFile, Size: 512},
	}

	tests := []struct {
		name       string
		filename   string
		remoteDir  string
		localDir   string
		wantRemote string
		wantLocal  string
		wantSize   int64
	}{
		{"Root directory", "report.html", "", "", "report.html", "report.html", 512},
		{"With remote directory", "report.html", "Analysis", "", "Analysis/report.html", "report.html", 512},
		{"Nested remote directory", "reads.fastq.gz", "Raw_data/s1", "", "Raw_data/s1/reads.fastq.gz", "reads.fastq.gz", 2048},
		{"With local directory", "report.html", "Analysis", "out", "Analysis/report.html", filepath.Join("out", "report.html"), 512},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := findTarget(entries, tt.filename, tt.remoteDir, tt.localDir)
			if target == nil {
				t.Fatalf("findTarget(%q, %q) = nil", tt.filename, tt.remoteDir)
			}
			if target.RemotePath != tt.wantRemote {
				t.Errorf("RemotePath = %q, want %q", target.RemotePath, tt.wantRemote)
			}
			if target.LocalPath != tt.wantLocal {
				t.Errorf("LocalPath = %q, want %q", target.LocalPath, tt.wantLocal)
			}
			if target.Size != tt.wantSize {
				t.Errorf("Size = %d, want %d", target.Size, tt.wantSize)
			}
		})
	}
}

func TestFindTargetMissing(t *testing.T) {
	entries := []models.DirectoryEntry{
		{Name: "report.html", Type: models.EntryFile, Size: 512},
	}

	if target := findTarget(entries, "missing.txt", "", ""); target != nil {
		t.Errorf("findTarget() for absent file = %+v, want nil", target)
	}
}

func TestFindTargetClampsZeroSize(t *testing.T) {
	entries := []models.DirectoryEntry{
		{Name: "empty.txt", Type: models.EntryFile, Size: 0},
	}

	target := findTarget(entries, "empty.txt", "", "")
	if target == nil {
		t.Fatal("findTarget() = nil")
	}
	if target.Size != 1 {
		t.Errorf("Size = %d, want 1 for a zero-byte file", target.Size)
	}
}
