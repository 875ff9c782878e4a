package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"gsport/internal/models"
	"gsport/internal/portal"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the files of a project",
	Long: `List the files of a project on the portal. By default only the
files of the current remote directory are shown; use --cd to descend
into a subdirectory, --dirs to list directories instead of files, and
--recursive to print the whole tree.`,
	Run: func(cmd *cobra.Command, args []string) {
		project := requireProject(cmd, "list")
		dirs, _ := cmd.Flags().GetBool("dirs")
		recursive, _ := cmd.Flags().GetBool("recursive")
		remoteDir := getRemoteDir(cmd)

		ctx := cmd.Context()

		session, err := newSession(ctx, cmd)
		if err != nil {
			fatal(err, "list")
		}

		client := portal.NewClient(session, project)

		if recursive {
			root, err := client.ListRecursive(ctx, remoteDir)
			if err != nil {
				fatal(err, "list")
			}
			renderTree(os.Stdout, root.Children, 0)
			return
		}

		entries, err := client.List(ctx, remoteDir, dirs)
		if err != nil {
			fatal(err, "list")
		}
		for _, entry := range entries {
			fmt.Println(entry.Name)
		}
	},
}

func init() {
	listCmd.Flags().Bool("dirs", false, "List directories instead of files")
	listCmd.Flags().BoolP("recursive", "r", false, "List the whole tree under the remote directory")
}

// renderTree prints a directory tree the way the portal's web UI shows
// it: directories prefixed with a corner, files with a tee and their
// reported size, four spaces of indent per level.
func renderTree(w io.Writer, entries []models.DirectoryEntry, depth int) {
	indent := strings.Repeat("    ", depth)
	for _, entry := range entries {
		if entry.IsDir() {
			fmt.Fprintf(w, "%s└── %s\n", indent, entry.Name)
			renderTree(w, entry.Children, depth+1)
		} else {
			fmt.Fprintf(w, "%s├── %s Size: %d bytes\n", indent, entry.Name, entry.Size)
		}
	}
}
