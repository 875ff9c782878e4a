package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"gsport/config"
	"gsport/internal/portal"
	"gsport/pkg/utils"
)

// Version is set via ldflags during release builds.
var Version = "2.1.0"

var (
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "gsport",
	Short: "Command-line tool for the GenomeScan customer portal",
	Long: `gsport is a command-line tool for accessing the GenomeScan customer
portal. It lists and downloads the files and directory trees belonging
to a project, and can export downloaded results to an S3 bucket.

The portal host and defaults are loaded from a .env file or environment
variables.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute(config *config.Config) error {
	cfg = config
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(downloadAllCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(logoutCmd)

	rootCmd.PersistentFlags().StringP("project", "p", "", "Project number on the portal")
	rootCmd.PersistentFlags().StringP("host", "H", "", "Override portal host from config")
	rootCmd.PersistentFlags().String("cd", "", "Remote directory, components separated by forward slashes")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
}

func getProject(cmd *cobra.Command) string {
	project, _ := cmd.Flags().GetString("project")
	return project
}

func requireProject(cmd *cobra.Command, command string) string {
	project := getProject(cmd)
	if project == "" {
		fatal(errors.New("a project is required, use --project"), command)
	}
	return project
}

func getHost(cmd *cobra.Command) string {
	if host, _ := cmd.Flags().GetString("host"); host != "" {
		return host
	}
	return cfg.Host
}

func getRemoteDir(cmd *cobra.Command) string {
	dir, _ := cmd.Flags().GetString("cd")
	return strings.Trim(dir, "/")
}

func isVerbose(cmd *cobra.Command) bool {
	verbose, _ := cmd.Flags().GetBool("verbose")
	return verbose
}

// fatal reports an error and exits non-zero. Listing decode failures
// echo the portal's raw response so the operator can see what came
// back instead of JSON.
func fatal(err error, command string) {
	var decodeErr *portal.DecodeError
	if errors.As(err, &decodeErr) {
		fmt.Fprintf(os.Stderr, "[%s] Error reading response: %s\n", command, decodeErr.Body)
	} else {
		utils.PrintError(err, command)
	}
	os.Exit(1)
}

// newSession opens the portal session, running the interactive login
// handshake when no valid session exists yet.
func newSession(ctx context.Context, cmd *cobra.Command) (*portal.Session, error) {
	session, err := portal.NewSession(getHost(cmd), cfg.CookieFile)
	if err != nil {
		return nil, err
	}

	loggedIn, err := session.LoggedIn(ctx)
	if err != nil {
		return nil, err
	}
	if loggedIn {
		return session, nil
	}

	fmt.Println("[session] login required!")

	reader := bufio.NewReader(os.Stdin)

	fmt.Print("Username: ")
	username, err := reader.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read username: %w", err)
	}
	username = strings.TrimSpace(username)

	fmt.Print("Password: ")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}

	if err := session.Login(ctx, username, string(password)); err != nil {
		return nil, err
	}

	fmt.Print("Token: ")
	token, err := reader.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read token: %w", err)
	}

	if err := session.SubmitToken(ctx, strings.TrimSpace(token)); err != nil {
		return nil, err
	}

	return session, nil
}
