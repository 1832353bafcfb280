package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	invindex "github.com/arclight-data/invertix/index"
)

var archiveCmd = &cobra.Command{
	Use:   "archive <index-dir> <archive-path>",
	Short: "Bundle a built index directory into a single lz4-compressed archive.",
	Args:  cobra.ExactArgs(2),
	Run: func(_ *cobra.Command, args []string) {
		manifest, err := invindex.Archive(args[0], args[1], time.Now().UTC().Format(time.RFC3339))
		if err != nil {
			die("archive: %v", err)
		}
		fmt.Printf("wrote archive %s (session %s)\n", args[1], manifest.SessionID)
		for _, f := range manifest.Files {
			fmt.Printf("  %s\n", f.Name)
		}
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore <archive-path> <index-dir>",
	Short: "Unpack an lz4 index archive created by \"invertix archive\".",
	Args:  cobra.ExactArgs(2),
	Run: func(_ *cobra.Command, args []string) {
		manifest, err := invindex.Restore(args[0], args[1])
		if err != nil {
			die("restore: %v", err)
		}
		fmt.Printf("restored index from session %s created %s\n", manifest.SessionID, manifest.CreatedAt)
		for _, f := range manifest.Files {
			fmt.Printf("  %s (%d bytes)\n", f.Name, f.Size)
		}
	},
}

func init() {
	rootCmd.AddCommand(archiveCmd)
	rootCmd.AddCommand(restoreCmd)
}
