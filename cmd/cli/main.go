package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/myrjola/entangled/cmd/cli/pool"
	"github.com/myrjola/entangled/cmd/cli/user"
	"github.com/spf13/cobra"
)

func init() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	rootCmd.AddGroup(pool.Group)
	rootCmd.AddCommand(pool.Seed)
	rootCmd.AddCommand(pool.List)
	rootCmd.AddGroup(user.Group)
	rootCmd.AddCommand(user.Inspect)
}

var rootCmd = &cobra.Command{
	Use:  "entangled-cli",
	Long: `Command line utilities for Entangled https://github.com/myrjola/entangled`,
	Run: func(cmd *cobra.Command, args []string) {
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
