package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/tripkeeper/pkg/model"
)

// userCreateCmd represents the user create command
var userCreateCmd = &cobra.Command{
	Use:   "create <username>",
	Short: "Register a new user",
	Long: `Register a new user with a password.

The password is taken from --password or read from stdin. The identifier
of the new user is printed to stdout.

Example:
  tripctl user create doge --password 'such secret'
  echo 'such secret' | tripctl user create doge`,
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

		id, err := model.Register(documents, username, password)
		if errors.Is(err, model.ErrUsernameTaken) {
			fmt.Fprintf(os.Stderr, "Username already in use: %s\n", username)
			os.Exit(1)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create user %s: %v\n", username, err)
			os.Exit(1)
		}
		fmt.Println(id)
	},
}

func init() {
	userCmd.AddCommand(userCreateCmd)
	userCreateCmd.Flags().String("password", "", "password for the new user (read from stdin when empty)")
}
