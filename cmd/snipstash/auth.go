// Account commands for the snipstash CLI.
package main

import (
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	registerName  string
	registerEmail string
	loginEmail    string
)

// promptPassword reads a password without echoing when stdin is a
// terminal; otherwise it reads a line (for scripting and tests).
func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	if term.IsTerminal(int(syscall.Stdin)) {
		b, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}

	var password string
	if _, err := fmt.Fscanln(os.Stdin, &password); err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return password, nil
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and log in",
	RunE: func(cmd *cobra.Command, args []string) error {
		if registerName == "" || registerEmail == "" {
			return fmt.Errorf("--name and --email are required")
		}
		password, err := promptPassword("Password: ")
		if err != nil {
			return err
		}

		result, err := newClient().Register(cmd.Context(), registerName, registerEmail, password)
		if err != nil {
			return err
		}

		cfg.Set(cfgKeyToken, result.Token)
		if err := saveConfig(); err != nil {
			return err
		}
		fmt.Printf("registered as %s (%s)\n", result.User.Name, result.User.Email)
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and save the token",
	RunE: func(cmd *cobra.Command, args []string) error {
		if loginEmail == "" {
			return fmt.Errorf("--email is required")
		}
		password, err := promptPassword("Password: ")
		if err != nil {
			return err
		}

		result, err := newClient().Login(cmd.Context(), loginEmail, password)
		if err != nil {
			return err
		}

		cfg.Set(cfgKeyToken, result.Token)
		if err := saveConfig(); err != nil {
			return err
		}
		fmt.Printf("logged in as %s\n", result.User.Email)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the saved token",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg.Set(cfgKeyToken, "")
		if err := saveConfig(); err != nil {
			return err
		}
		fmt.Println("logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireAuth()
		if err != nil {
			return err
		}
		user, err := c.Me(cmd.Context())
		if err != nil {
			return err
		}
		if flagJSON {
			return printJSON(user)
		}
		fmt.Printf("%s <%s>\n", user.Name, user.Email)
		return nil
	},
}

func init() {
	registerCmd.Flags().StringVar(&registerName, "name", "", "display name")
	registerCmd.Flags().StringVar(&registerEmail, "email", "", "email address")
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "email address")
}
