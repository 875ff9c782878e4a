package cmd

import (
	"github.com/spf13/cobra"

	"gsport/internal/s3client"
	"gsport/pkg/utils"
)

var exportCmd = &cobra.Command{
	Use:   "export <path> [path...]",
	Short: "Export downloaded data to an S3 bucket",
	Long: `Export downloaded files or directories to the configured S3 bucket.
Directories are walked and uploaded file by file, preserving their
layout under the destination prefix. With --archive everything is
zipped first and uploaded as a single object.

The bucket and credentials come from BUCKET_NAME, ACCESS_KEY,
SECRET_KEY and the related environment variables.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		destination, _ := cmd.Flags().GetString("destination")
		shouldArchive, _ := cmd.Flags().GetBool("archive")

		client, err := s3client.New(cfg)
		if err != nil {
			fatal(err, "export")
		}

		result, err := client.Export(cmd.Context(), args, destination, shouldArchive, cfg.Workers)
		if err != nil {
			fatal(err, "export")
		}

		if err := utils.PrintJSON(result); err != nil {
			fatal(err, "export")
		}
	},
}

func init() {
	exportCmd.Flags().StringP("destination", "d", "", "Destination prefix inside the bucket")
	exportCmd.Flags().Bool("archive", false, "Zip everything into a single object before uploading")
}
