package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "quest",
	Short: "Gamified stock portfolio tracker",
	Long: `quest tracks your equity holdings and turns portfolio care into a game:
adding stocks, refreshing prices and exporting reports earn experience,
levels and achievements.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to config file")

	rootCmd.AddCommand(
		addCmd,
		removeCmd,
		listCmd,
		refreshCmd,
		importCmd,
		exportCmd,
		templateCmd,
		saveCmd,
		statusCmd,
		tradeCmd,
		renameCmd,
		reviewCmd,
		syncCmd,
		serveCmd,
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
