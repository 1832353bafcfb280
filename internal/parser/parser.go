// Package parser implements C3 (spec.md §4.3): it streams a TSV corpus
// of docID<TAB>text records into sorted, chunked posting files consumed
// later by the multi-way merger (index.Merger).
package parser

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/schollz/progressbar/v3"

	"github.com/arclight-data/invertix/internal/tokenize"
)

// Options configures a parser run. ChunkSize and MaxDocs mirror
// shared/config.py's CHUNK_SIZE/MAX_DOCS in original_source/; SubsetIDs
// mirrors parser.py's optional subset_ids_path filter (SPEC_FULL.md
// "Supplemented features").
type Options struct {
	ChunkSize int
	MaxDocs   int // 0 means unlimited
	SubsetIDs map[string]struct{}
	Progress  bool
}

// postingLine is an intermediate "term docID freq" record awaiting
// sort-and-flush into the next chunk file.
type postingLine struct {
	term  string
	docID int64
	freq  int
}

// Run streams datasetPath and writes chunk<N>.txt files to outputDir in
// creation order, sorted within each chunk by (term, docID) per
// spec.md §3/§4.3.
func Run(datasetPath, outputDir string, opts Options) error {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = 2_000_000
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create postings dir: %w", err)
	}

	f, err := os.Open(datasetPath)
	if err != nil {
		return fmt.Errorf("open corpus: %w", err)
	}
	defer f.Close()

	var bar *progressbar.ProgressBar
	if opts.Progress {
		bar = progressbar.NewOptions64(-1,
			progressbar.OptionSetDescription("parsing corpus"),
			progressbar.OptionShowCount(),
		)
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var buffer []postingLine
	chunkID := 0
	docsAccepted := 0

	flush := func() error {
		if len(buffer) == 0 {
			return nil
		}
		if err := writeChunk(outputDir, chunkID, buffer); err != nil {
			return err
		}
		chunkID++
		buffer = buffer[:0]
		return nil
	}

	for scanner.Scan() {
		if opts.MaxDocs > 0 && docsAccepted >= opts.MaxDocs {
			break
		}
		line := scanner.Text()
		if line == "" {
			continue
		}
		tabIdx := strings.IndexByte(line, '\t')
		if tabIdx < 0 {
			continue // malformed line: skipped silently (spec.md §4.3)
		}
		docIDStr, text := line[:tabIdx], line[tabIdx+1:]
		if opts.SubsetIDs != nil {
			if _, ok := opts.SubsetIDs[docIDStr]; !ok {
				continue
			}
		}
		docID, err := strconv.ParseInt(docIDStr, 10, 64)
		if err != nil {
			continue // malformed docID: skipped silently
		}

		freqs := parseDocument(text)
		for term, freq := range freqs {
			buffer = append(buffer, postingLine{term: term, docID: docID, freq: freq})
		}
		docsAccepted++
		if bar != nil {
			_ = bar.Add(1)
		}

		if len(buffer) >= opts.ChunkSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read corpus: %w", err)
	}
	if err := flush(); err != nil {
		return err
	}
	if bar != nil {
		_ = bar.Finish()
	}
	return nil
}

// parseDocument tokenizes text and counts term frequencies.
func parseDocument(text string) map[string]int {
	freqs := make(map[string]int)
	for _, term := range tokenize.Tokenize(text) {
		freqs[term]++
	}
	return freqs
}

// writeChunk sorts postings by (term, docID) and writes them as
// "term docID freq" lines to chunk<N>.txt.
func writeChunk(outputDir string, chunkID int, postings []postingLine) error {
	sort.Slice(postings, func(i, j int) bool {
		if postings[i].term != postings[j].term {
			return postings[i].term < postings[j].term
		}
		return postings[i].docID < postings[j].docID
	})

	path := filepath.Join(outputDir, fmt.Sprintf("chunk%d.txt", chunkID))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chunk file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, p := range postings {
		if _, err := fmt.Fprintf(w, "%s %d %d\n", p.term, p.docID, p.freq); err != nil {
			return fmt.Errorf("write chunk file: %w", err)
		}
	}
	return w.Flush()
}
