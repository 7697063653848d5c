// Command imgdoc2 is a CLI front-end over the imgdoc2go engine: create and
// inspect tiled-image/brick documents, add and query tiles, and manage the
// document-metadata forest, all against a single SQLite file.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/imgdoc2/imgdoc2go/internal/config"
)

var rootCmd = &cobra.Command{
	Use:           "imgdoc2",
	Short:         "Inspect and manipulate imgdoc2 tiled-image documents",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return config.Initialize()
	},
}

func init() {
	rootCmd.PersistentFlags().String("file", "", "path to the .imgdoc2 document file")
}

func documentPath(cmd *cobra.Command) (string, error) {
	path, _ := cmd.Flags().GetString("file")
	if path == "" {
		return "", fmt.Errorf("--file is required")
	}
	return path, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
