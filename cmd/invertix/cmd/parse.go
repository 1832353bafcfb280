package cmd

import (
	"bufio"
	"os"
	"strings"

	"github.com/spf13/cobra"

	invindex "github.com/arclight-data/invertix/index"
	"github.com/arclight-data/invertix/internal/parser"
)

var (
	parseChunkSize     int
	parseMaxDocs       int
	parseSubsetIDsPath string
	parseQuiet         bool
)

var parseCmd = &cobra.Command{
	Use:   "parse <collection.tsv> <postings-dir>",
	Short: "Stream a docID<TAB>text corpus into sorted posting chunk files.",
	Args:  cobra.ExactArgs(2),
	Run: func(_ *cobra.Command, args []string) {
		opts := parser.Options{
			ChunkSize: parseChunkSize,
			MaxDocs:   parseMaxDocs,
			Progress:  !parseQuiet,
		}
		if parseSubsetIDsPath != "" {
			ids, err := loadSubsetIDs(parseSubsetIDsPath)
			if err != nil {
				die("load subset ids: %v", err)
			}
			opts.SubsetIDs = ids
		}
		if err := parser.Run(args[0], args[1], opts); err != nil {
			die("parse: %v", err)
		}
	},
}

func loadSubsetIDs(path string) (map[string]struct{}, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ids := make(map[string]struct{})
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		ids[line] = struct{}{}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

func init() {
	parseCmd.Flags().IntVar(&parseChunkSize, "chunk-size", invindex.DefaultChunkSize, "Postings buffered per chunk file before flushing.")
	parseCmd.Flags().IntVar(&parseMaxDocs, "max-docs", 0, "Stop after this many accepted documents (0 = unlimited).")
	parseCmd.Flags().StringVar(&parseSubsetIDsPath, "subset-ids-path", "", "Optional file of docIDs (one per line) to restrict parsing to.")
	parseCmd.Flags().BoolVar(&parseQuiet, "quiet", false, "Suppress the progress bar.")
	rootCmd.AddCommand(parseCmd)
}
