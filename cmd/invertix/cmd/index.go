package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	invindex "github.com/arclight-data/invertix/index"
)

var (
	indexBlockSize      int
	indexK1             float64
	indexB              float64
	indexLexiconBackend string
)

var indexCmd = &cobra.Command{
	Use:   "index <postings-dir> <index-dir>",
	Short: "Multi-way merge posting chunks into a compressed inverted index.",
	Args:  cobra.ExactArgs(2),
	Run: func(_ *cobra.Command, args []string) {
		postingsDir, outDir := args[0], args[1]

		merger, err := invindex.OpenMerger(postingsDir)
		if err != nil {
			die("open merger: %v", err)
		}
		defer merger.Close()

		res, err := invindex.WriteIndex(merger, outDir, invindex.BuildIndexOptions{
			BlockSize: indexBlockSize,
			K1:        indexK1,
			B:         indexB,
		})
		if err != nil {
			die("write index: %v", err)
		}

		if indexLexiconBackend == "sqlite" {
			dbPath := filepath.Join(outDir, "lexicon.sqlite")
			if err := invindex.WriteLexiconSQLite(dbPath, res.Lexicon); err != nil {
				die("write sqlite lexicon: %v", err)
			}
		}

		fmt.Printf("wrote index: %d terms, %d docs, avg_len=%.3f\n", len(res.Lexicon), res.Stats.TotalDocs, res.Stats.AvgLen)
	},
}

func init() {
	indexCmd.Flags().IntVar(&indexBlockSize, "block-size", invindex.DefaultBlockSize, "Postings per fixed-size block.")
	indexCmd.Flags().Float64Var(&indexK1, "k1", invindex.DefaultK1, "BM25 k1 parameter.")
	indexCmd.Flags().Float64Var(&indexB, "b", invindex.DefaultB, "BM25 b parameter.")
	indexCmd.Flags().StringVar(&indexLexiconBackend, "lexicon-backend", "json", `Additional lexicon export: "json" (default, always written) or "sqlite".`)
	rootCmd.AddCommand(indexCmd)
}
