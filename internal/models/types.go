package models

// EntryType distinguishes file and directory nodes in a listing.
type EntryType string

const (
	EntryFile      EntryType = "file"
	EntryDirectory EntryType = "directory"
)

// DirectoryEntry is one node of a portal listing. Directories carry
// Children (possibly empty), files carry Size. The portal reports a
// size of 0 for some files; callers clamp that to 1 before doing
// rate or ETA math.
type DirectoryEntry struct {
	Name     string           `json:"name"`
	Type     EntryType        `json:"type"`
	Size     int64            `json:"size,omitempty"`
	Children []DirectoryEntry `json:"children,omitempty"`
}

// IsDir reports whether the entry is a directory node.
func (e DirectoryEntry) IsDir() bool {
	return e.Type == EntryDirectory
}

// DownloadTarget is one resolved file queued for transfer. Immutable
// once created; consumed exactly once by the scheduler.
type DownloadTarget struct {
	RemotePath string `json:"remote_path"`
	LocalPath  string `json:"local_path"`
	URL        string `json:"-"`
	Size       int64  `json:"size"`
}

// ProgressEvent is the unit of cross-worker reporting. A worker sends
// either an incremental byte count (Done false) or a terminal
// completion signal (Done true, Bytes 0); a failed transfer carries
// its error on the terminal event so the scheduler reports it without
// workers writing to the terminal. The channel carrying these is the
// only mutable state shared between workers and the scheduler.
type ProgressEvent struct {
	Bytes int64
	Done  bool
	Err   error
}

type ErrorResponse struct {
	Error     string `json:"error"`
	Timestamp string `json:"timestamp"`
	Command   string `json:"command"`
}

type DownloadResult struct {
	Project          string           `json:"project"`
	RemoteDir        string           `json:"remote_dir,omitempty"`
	Targets          []DownloadTarget `json:"targets"`
	TotalFiles       int              `json:"total_files"`
	TotalSizeBytes   int64            `json:"total_size_bytes"`
	TotalSizeHuman   string           `json:"total_size_human"`
	OperationTime    string           `json:"operation_time"`
	DownloadDuration string           `json:"download_duration"`
}

type ExportItem struct {
	LocalPath  string `json:"local_path"`
	RemotePath string `json:"remote_path"`
	Size       int64  `json:"size"`
	IsArchived bool   `json:"is_archived"`
}

type ExportResult struct {
	BucketName      string       `json:"bucket_name"`
	DestinationPath string       `json:"destination_path"`
	Items           []ExportItem `json:"items"`
	TotalFiles      int          `json:"total_files"`
	TotalSizeBytes  int64        `json:"total_size_bytes"`
	TotalSizeHuman  string       `json:"total_size_human"`
	OperationTime   string       `json:"operation_time"`
	ArchiveCreated  bool         `json:"archive_created"`
	ArchivePath     string       `json:"archive_path,omitempty"`
	ExportDuration  string       `json:"export_duration"`
}

type ArchiveInfo struct {
	ArchivePath      string   `json:"archive_path"`
	OriginalPaths    []string `json:"original_paths"`
	CompressedSize   int64    `json:"compressed_size"`
	OriginalSize     int64    `json:"original_size"`
	CompressionRatio float64  `json:"compression_ratio"`
}
