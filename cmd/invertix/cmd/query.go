package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	invindex "github.com/arclight-data/invertix/index"
)

var (
	queryCacheCapacity int
	queryTopK          int
	queryK1            float64
	queryB             float64
)

var queryCmd = &cobra.Command{
	Use:   "query <index-dir>",
	Short: "Interactive BM25 query REPL over a built index.",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		ctx, err := invindex.LoadStartupContext(args[0])
		if err != nil {
			die("load index: %v", err)
		}
		sess, err := invindex.NewSession(ctx, queryCacheCapacity, queryK1, queryB)
		if err != nil {
			die("start session: %v", err)
		}
		defer sess.Close()

		runREPL(sess, os.Stdin, os.Stdout)
	},
}

func runREPL(sess *invindex.Session, in *os.File, out *os.File) {
	sessionID := uuid.NewString()
	fmt.Fprintf(out, "invertix query session %s\n", sessionID)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "Enter query: ")
		if !scanner.Scan() {
			return
		}
		query := strings.TrimSpace(scanner.Text())
		if query == "+exit" {
			return
		}
		if query == "" {
			continue
		}

		fmt.Fprint(out, "Conjunctive or Disjunctive [MaxScore: or, Block Max WAND: bwand-or]? [and/or/bwand-or]: ")
		if !scanner.Scan() {
			return
		}
		modeStr := strings.TrimSpace(scanner.Text())

		qr, err := sess.RunQuery(query, invindex.Mode(modeStr), queryTopK)
		if err != nil {
			color.New(color.FgRed).Fprintf(out, "error: %v\n", err)
			continue
		}

		for i, r := range qr.Results {
			line := fmt.Sprintf("%d) DocID: %d  Score: %.6f", i+1, r.DocID, r.Score)
			if i == 0 {
				color.New(color.FgGreen).Fprintln(out, line)
			} else {
				fmt.Fprintln(out, line)
			}
		}

		dim := color.New(color.Faint)
		dim.Fprintf(out, "\n[Timing]\n")
		dim.Fprintf(out, "  Data gathering : %s\n", qr.Timing.Gather)
		dim.Fprintf(out, "  Opening lists  : %s\n", qr.Timing.Open)
		dim.Fprintf(out, "  Traversal      : %s\n", qr.Timing.Traversal)
		dim.Fprintf(out, "  Total          : %s\n", qr.Timing.Total)

		hits, misses := sess.CacheStats()
		dim.Fprintf(out, "[Cache] hits=%d misses=%d\n\n", hits, misses)
	}
}

func init() {
	queryCmd.Flags().IntVar(&queryCacheCapacity, "cache-capacity", invindex.DefaultCacheCapacity, "LRU list cache capacity.")
	queryCmd.Flags().IntVar(&queryTopK, "top-k", invindex.DefaultTopK, "Number of ranked results to return per query.")
	queryCmd.Flags().Float64Var(&queryK1, "k1", invindex.DefaultK1, "BM25 k1 parameter.")
	queryCmd.Flags().Float64Var(&queryB, "b", invindex.DefaultB, "BM25 b parameter.")
	rootCmd.AddCommand(queryCmd)
}
