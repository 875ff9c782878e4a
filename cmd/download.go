package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"gsport/internal/download"
	"gsport/internal/models"
	"gsport/internal/portal"
)

var downloadCmd = &cobra.Command{
	Use:   "download <filename>",
	Short: "Download a single file from a project",
	Long: `Download a single file from the current remote directory of a
project. The file is saved under the directory given with --dir, or
the working directory by default.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		project := requireProject(cmd, "download")
		remoteDir := getRemoteDir(cmd)
		localDir, _ := cmd.Flags().GetString("dir")
		filename := args[0]

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		session, err := newSession(ctx, cmd)
		if err != nil {
			fatal(err, "download")
		}

		client := portal.NewClient(session, project)

		entries, err := client.List(ctx, remoteDir, false)
		if err != nil {
			fatal(err, "download")
		}

		target := findTarget(entries, filename, remoteDir, localDir)
		if target == nil {
			fatal(fmt.Errorf("file %s not found in project %s", filename, project), "download")
		}

		target.URL, err = client.ResolveDownloadURL(ctx, target.RemotePath)
		if err != nil {
			fatal(err, "download")
		}

		downloader := download.New(client, download.Options{Workers: 1})
		if err := downloader.Run(ctx, []models.DownloadTarget{*target}); err != nil {
			fatal(err, "download")
		}
	},
}

func init() {
	downloadCmd.Flags().String("dir", "", "Local directory to save the file in")
}

// findTarget locates filename in a flat listing and builds its download
// target. The remote path carries the remote directory, the token
// endpoint resolves files by their full portal path.
func findTarget(entries []models.DirectoryEntry, filename, remoteDir, localDir string) *models.DownloadTarget {
	for _, entry := range entries {
		if entry.Name != filename {
			continue
		}
		size := entry.Size
		if size == 0 {
			size = 1
		}
		return &models.DownloadTarget{
			RemotePath: path.Join(remoteDir, filename),
			LocalPath:  filepath.Join(localDir, filename),
			Size:       size,
		}
	}
	return nil
}
