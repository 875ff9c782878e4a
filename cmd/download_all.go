package cmd

import (
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"gsport/internal/download"
	"gsport/internal/models"
	"gsport/internal/portal"
	"gsport/pkg/utils"
)

var downloadAllCmd = &cobra.Command{
	Use:   "download-all",
	Short: "Download every file of a project",
	Long: `Download every file of the current remote directory, or the whole
tree below it with --recursive. Files are transferred concurrently by
a bounded pool of workers; the remote directory layout is recreated
locally.`,
	Run: func(cmd *cobra.Command, args []string) {
		project := requireProject(cmd, "download-all")
		remoteDir := getRemoteDir(cmd)
		localDir, _ := cmd.Flags().GetString("dir")
		recursive, _ := cmd.Flags().GetBool("recursive")
		workers, _ := cmd.Flags().GetInt("workers")
		limitFlag, _ := cmd.Flags().GetString("limit")

		rateLimit, err := utils.ParseBytes(limitFlag)
		if err != nil {
			fatal(err, "download-all")
		}
		if workers < 1 {
			workers = cfg.Workers
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		session, err := newSession(ctx, cmd)
		if err != nil {
			fatal(err, "download-all")
		}

		client := portal.NewClient(session, project)

		localBase := localDir
		if remoteDir != "" {
			localBase = filepath.Join(localDir, filepath.FromSlash(remoteDir))
		}

		var targets []models.DownloadTarget
		if recursive {
			root, err := client.ListRecursive(ctx, remoteDir)
			if err != nil {
				fatal(err, "download-all")
			}
			targets, err = download.Flatten(root.Children, localBase, remoteDir)
			if err != nil {
				fatal(err, "download-all")
			}
		} else {
			entries, err := client.List(ctx, remoteDir, false)
			if err != nil {
				fatal(err, "download-all")
			}
			targets, err = download.Flatten(entries, localBase, remoteDir)
			if err != nil {
				fatal(err, "download-all")
			}
		}

		startTime := time.Now()

		// Tokens are single-use, so each is resolved exactly once,
		// immediately before its target is queued.
		for i := range targets {
			targets[i].URL, err = client.ResolveDownloadURL(ctx, targets[i].RemotePath)
			if err != nil {
				fatal(err, "download-all")
			}
		}

		downloader := download.New(client, download.Options{
			Workers:   workers,
			RateLimit: rateLimit,
		})
		if err := downloader.Run(ctx, targets); err != nil {
			fatal(err, "download-all")
		}

		if isVerbose(cmd) {
			var totalSize int64
			for _, t := range targets {
				totalSize += t.Size
			}
			utils.PrintJSON(models.DownloadResult{
				Project:          project,
				RemoteDir:        remoteDir,
				Targets:          targets,
				TotalFiles:       len(targets),
				TotalSizeBytes:   totalSize,
				TotalSizeHuman:   utils.FormatBytes(totalSize),
				OperationTime:    utils.FormatTime(startTime),
				DownloadDuration: time.Since(startTime).String(),
			})
		}
	},
}

func init() {
	downloadAllCmd.Flags().BoolP("recursive", "r", false, "Download the whole tree under the remote directory")
	downloadAllCmd.Flags().IntP("workers", "t", 0, "Number of concurrent transfers (default: CPU count)")
	downloadAllCmd.Flags().String("limit", "", "Cap aggregate download speed, e.g. 4MB for 4 MB/sec")
	downloadAllCmd.Flags().String("dir", "", "Local directory to save files in")
}
