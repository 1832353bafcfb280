package cmd

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	invindex "github.com/arclight-data/invertix/index"
)

var infoCmd = &cobra.Command{
	Use:   "info <index-dir>",
	Short: "Print summary statistics for a built index.",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		ctx, err := invindex.LoadStartupContext(args[0])
		if err != nil {
			die("load index: %v", err)
		}
		printInfo(os.Stdout, ctx)
	},
}

// printInfo renders a summary table the way go/cli/mcap/cmd/info.go's
// printSummaryRows does: tablewriter with borders off, left-aligned,
// no column separator, with its characteristic leading-space quirk
// trimmed out via strings.TrimLeft on each rendered line.
func printInfo(w *os.File, ctx *invindex.StartupContext) {
	totalPostings := 0
	totalBlocks := 0
	for _, entry := range ctx.Lexicon {
		totalPostings += entry.DF
		totalBlocks += entry.BlockCount
	}
	avgPostingsPerBlock := 0.0
	if totalBlocks > 0 {
		avgPostingsPerBlock = float64(totalPostings) / float64(totalBlocks)
	}

	var size int64
	if info, err := os.Stat(ctx.IndexPath); err == nil {
		size = info.Size()
	}

	rows := [][]string{
		{"terms", fmt.Sprintf("%d", len(ctx.Lexicon))},
		{"total postings", fmt.Sprintf("%d", totalPostings)},
		{"total blocks", fmt.Sprintf("%d", totalBlocks)},
		{"avg postings/block", fmt.Sprintf("%.2f", avgPostingsPerBlock)},
		{"total docs", fmt.Sprintf("%d", ctx.TotalDocs)},
		{"avg doc length", fmt.Sprintf("%.3f", ctx.AvgLen)},
		{"index file", filepath.Base(ctx.IndexPath)},
		{"index bytes", fmt.Sprintf("%d", size)},
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"field", "value"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetColumnSeparator("")
	table.AppendBulk(rows)
	table.Render()

	scanner := bufio.NewScanner(&buf)
	for scanner.Scan() {
		fmt.Fprintln(w, strings.TrimLeft(scanner.Text(), " "))
	}
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
