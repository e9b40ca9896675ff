package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/tripkeeper/pkg/authenticator"
	"github.com/doodlesbykumbi/tripkeeper/pkg/authenticator/basic"
)

// userCheckCmd represents the user check command
var userCheckCmd = &cobra.Command{
	Use:   "check <username>",
	Short: "Check a user's password",
	Long: `Check a username and password the way the server's Basic
authentication does. Exits non-zero when the check fails.

Example:
  tripctl user check doge --password 'such secret'`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		username := args[0]

		password, err := readPassword(cmd, os.Stdin)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		documents, err := userStore()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		res := basic.New(documents).Authenticate(context.Background(), authenticator.Input{
			Login:       username,
			Credentials: []byte(password),
			ClientIP:    "127.0.0.1",
		})
		if !res.OK() {
			fmt.Fprintf(os.Stderr, "Authentication failed for %s: %s\n", username, res.Reason())
			os.Exit(1)
		}
		fmt.Printf("Authenticated %s\n", res.Username())
	},
}

func init() {
	userCmd.AddCommand(userCheckCmd)
	userCheckCmd.Flags().String("password", "", "password to check (read from stdin when empty)")
}
