package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Global flag values.
var (
	flagServer string
	flagJSON   bool
)

// cfg holds the loaded config (server URL and saved token). Set by
// PersistentPreRunE so all subcommands can use it.
var cfg *viper.Viper

var rootCmd = &cobra.Command{
	Use:   "snipstash",
	Short: "SnipStash is a personal code snippet manager",
	Long: `SnipStash stores your code snippets on a SnipStash server, tags them
automatically by scanning the code, and lets you search by text, language,
or tag. Log in once; the token is saved to ~/.snipstash/config.yaml.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := loadConfig()
		if err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagServer, "server", "", "server URL (default: config value or http://localhost:8080)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")

	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(browseCmd)
}
