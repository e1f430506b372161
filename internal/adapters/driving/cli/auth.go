package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var loginToken string

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the stored GitHub credential",
	Long: `Sign in with a GitHub personal access token to raise the API rate
limit from 60 to 5000 requests per hour.

The token is validated against the API before being stored, encrypted, in
the local vault. No scopes are required for public catalog browsing.`,
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Validate and store a GitHub token",
	Long: `Validates a personal access token against the GitHub API and stores
it in the encrypted vault.

Examples:
  # Prompt for the token (input is hidden)
  repostore auth login

  # Non-interactive
  repostore auth login --token ghp_xxx`,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored credential",
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE:  runWhoami,
}

func init() {
	loginCmd.Flags().StringVar(&loginToken, "token", "", "personal access token (prompted when omitted)")

	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(authCmd)
}

func runLogin(cmd *cobra.Command, _ []string) error {
	token := strings.TrimSpace(loginToken)
	if token == "" {
		var err error
		token, err = promptToken(cmd)
		if err != nil {
			return err
		}
	}
	if token == "" {
		return errors.New("no token provided")
	}

	cred, err := authService.SignIn(cmd.Context(), token)
	if err != nil {
		return fmt.Errorf("sign in failed: %w", err)
	}
	resetCatalogClient()

	name := cred.DisplayName
	if name == "" {
		name = cred.Login
	}
	cmd.Printf("Signed in as %s (@%s).\n", name, cred.Login)
	return nil
}

// promptToken reads the token without echo when stdin is a terminal, and
// falls back to a plain line read when it is piped.
func promptToken(cmd *cobra.Command) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		cmd.Print("GitHub token: ")
		raw, err := term.ReadPassword(fd)
		cmd.Println()
		if err != nil {
			return "", fmt.Errorf("reading token: %w", err)
		}
		return strings.TrimSpace(string(raw)), nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading token: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func runLogout(cmd *cobra.Command, _ []string) error {
	if err := authService.SignOut(cmd.Context()); err != nil {
		return fmt.Errorf("sign out failed: %w", err)
	}
	resetCatalogClient()
	cmd.Println("Signed out.")
	return nil
}

// resetCatalogClient drops the client's cached credential so the next
// request runs under the identity that was just stored or cleared.
func resetCatalogClient() {
	if r, ok := catalogClient.(interface{ Reset() }); ok {
		r.Reset()
	}
}

func runWhoami(cmd *cobra.Command, _ []string) error {
	cred, err := authService.Current(cmd.Context())
	if err != nil {
		return err
	}
	if cred == nil || !cred.IsAuthenticated() {
		cmd.Println("Not signed in. Browsing anonymously (60 requests/hour).")
		return nil
	}

	cmd.Printf("Signed in as @%s", cred.Login)
	if cred.DisplayName != "" {
		cmd.Printf(" (%s)", cred.DisplayName)
	}
	cmd.Println()

	state := catalogClient.RateState()
	if state.Limit > 0 {
		cmd.Printf("Rate limit: %d/%d remaining\n", state.Remaining, state.Limit)
	}
	return nil
}
