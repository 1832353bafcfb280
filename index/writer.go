package index

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
)

// RecordSource yields merged postings one at a time in non-decreasing
// (term, docID) order; *Merger implements it, and tests may supply a
// slice-backed fake.
type RecordSource interface {
	Next() (term string, docID uint64, freq uint64, ok bool, err error)
}

// sliceSource is a trivial in-memory RecordSource used by tests and by
// callers that already have a merged stream materialized.
type sliceSource struct {
	recs []Posting3
	i    int
}

// Posting3 is a (term, docID, freq) triple, the unit the index writer
// consumes from a RecordSource.
type Posting3 struct {
	Term  string
	DocID uint64
	Freq  uint64
}

func NewSliceSource(recs []Posting3) RecordSource { return &sliceSource{recs: recs} }

func (s *sliceSource) Next() (string, uint64, uint64, bool, error) {
	if s.i >= len(s.recs) {
		return "", 0, 0, false, nil
	}
	r := s.recs[s.i]
	s.i++
	return r.Term, r.DocID, r.Freq, true, nil
}

// BuildIndexResult bundles the three sidecar structures written
// alongside inverted_index.bin (spec.md §6).
type BuildIndexResult struct {
	Lexicon   Lexicon
	PageTable PageTable
	Stats     CollectionStats
}

// BuildIndexOptions configures a WriteIndex run.
type BuildIndexOptions struct {
	BlockSize int
	K1        float64
	B         float64
}

func (o BuildIndexOptions) withDefaults() BuildIndexOptions {
	if o.BlockSize <= 0 {
		o.BlockSize = DefaultBlockSize
	}
	if o.K1 == 0 {
		o.K1 = DefaultK1
	}
	if o.B == 0 {
		o.B = DefaultB
	}
	return o
}

// WriteIndex is the C5 index writer (spec.md §4.5): it consumes src,
// groups postings by term, and streams compressed fixed-size blocks to
// outDir/inverted_index.bin, then serializes the lexicon, page table,
// and collection stats as JSON.
func WriteIndex(src RecordSource, outDir string, opts BuildIndexOptions) (*BuildIndexResult, error) {
	opts = opts.withDefaults()
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create index dir: %w", err)
	}

	indexPath := filepath.Join(outDir, "inverted_index.bin")
	f, err := os.Create(indexPath)
	if err != nil {
		return nil, fmt.Errorf("create index file: %w", err)
	}
	defer f.Close()

	lexicon := make(Lexicon)
	pageTable := make(map[uint64]int)
	distinctDocs := make(map[uint64]struct{})

	var totalLen int64
	avgLenEstimate := 1.0

	var currentTerm string
	var offset int64
	var docIDs, freqs []uint64

	flush := func() error {
		if len(docIDs) == 0 {
			return nil
		}
		n := len(distinctDocs)
		entry, bytesWritten, err := writeTerm(f, opts.BlockSize, offset, docIDs, freqs, pageTable, avgLenEstimate, n, opts.K1, opts.B)
		if err != nil {
			return err
		}
		lexicon[currentTerm] = entry
		offset += int64(bytesWritten)
		docIDs = docIDs[:0]
		freqs = freqs[:0]
		return nil
	}

	for {
		term, docID, freq, ok, err := src.Next()
		if err != nil {
			return nil, fmt.Errorf("read merged stream: %w", err)
		}
		if !ok {
			break
		}

		pageTable[docID] += int(freq)
		totalLen += int64(freq)
		distinctDocs[docID] = struct{}{}
		if len(distinctDocs) > 0 {
			avgLenEstimate = float64(totalLen) / float64(len(distinctDocs))
		}

		if currentTerm != "" && term != currentTerm {
			if err := flush(); err != nil {
				return nil, err
			}
		}
		currentTerm = term
		docIDs = append(docIDs, docID)
		freqs = append(freqs, freq)
	}
	if err := flush(); err != nil {
		return nil, err
	}

	totalDocsCount := len(distinctDocs)
	avgLen := 1.0
	if totalDocsCount > 0 {
		avgLen = float64(totalLen) / float64(totalDocsCount)
	}
	stats := CollectionStats{TotalDocs: totalDocsCount, AvgLen: avgLen}

	jsonPageTable := make(PageTable, len(pageTable))
	for docID, length := range pageTable {
		jsonPageTable[strconv.FormatUint(docID, 10)] = PageTableEntry{Length: length}
	}

	if err := writeJSON(filepath.Join(outDir, "lexicon.json"), lexicon); err != nil {
		return nil, err
	}
	if err := writeJSON(filepath.Join(outDir, "page_table.json"), jsonPageTable); err != nil {
		return nil, err
	}
	if err := writeJSON(filepath.Join(outDir, "collection_stats.json"), stats); err != nil {
		return nil, err
	}

	return &BuildIndexResult{Lexicon: lexicon, PageTable: jsonPageTable, Stats: stats}, nil
}

// writeTerm implements spec.md §4.5's write_term: partitions doc_ids
// and freqs into blockSize-sized slices, gap-encodes and varbyte-
// encodes each, writes them to f, and computes per-block BM25 upper
// bounds using the *running* N/avgLen available at flush time
// (spec.md §9 Open Question 1 — preserved rather than recomputed in a
// second pass).
func writeTerm(
	f *os.File,
	blockSize int,
	baseOffset int64,
	docIDs, freqs []uint64,
	pageTable map[uint64]int,
	avgLen float64,
	n int,
	k1, b float64,
) (LexiconEntry, int, error) {
	df := len(docIDs)
	idf := computeIDF(df, n)

	var blocks []BlockMeta
	var buf []byte
	current := baseOffset
	totalBytes := 0

	for i := 0; i < len(docIDs); i += blockSize {
		end := i + blockSize
		if end > len(docIDs) {
			end = len(docIDs)
		}
		blockDocIDs := docIDs[i:end]
		blockFreqs := freqs[i:end]

		gaps := make([]uint64, len(blockDocIDs))
		gaps[0] = blockDocIDs[0]
		for j := 1; j < len(blockDocIDs); j++ {
			gaps[j] = blockDocIDs[j] - blockDocIDs[j-1]
		}

		buf = buf[:0]
		buf = EncodeVarByte(buf, gaps)
		bytesDocIDs := len(buf)
		buf = EncodeVarByte(buf, blockFreqs)
		bytesFreqs := len(buf) - bytesDocIDs

		if _, err := f.Write(buf); err != nil {
			return LexiconEntry{}, 0, fmt.Errorf("write block: %w", err)
		}

		blockMaxScore := 0.0
		for k, docID := range blockDocIDs {
			docLen := 1
			if l, ok := pageTable[docID]; ok {
				docLen = l
			}
			score := bm25(idf, float64(blockFreqs[k]), float64(docLen), avgLen, k1, b)
			if score > blockMaxScore {
				blockMaxScore = score
			}
		}

		bytesBlock := bytesDocIDs + bytesFreqs
		blocks = append(blocks, BlockMeta{
			Offset:        current,
			BytesBlock:    bytesBlock,
			BytesDocIDs:   bytesDocIDs,
			BytesFreqs:    bytesFreqs,
			LastDocID:     blockDocIDs[len(blockDocIDs)-1],
			BlockMaxScore: blockMaxScore,
		})
		current += int64(bytesBlock)
		totalBytes += bytesBlock
	}

	entry := LexiconEntry{
		Offset:     baseOffset,
		DF:         df,
		BlockCount: len(blocks),
		Blocks:     blocks,
		Bytes:      totalBytes,
	}
	return entry, totalBytes, nil
}

// computeIDF implements spec.md §4.5/§4.6's IDF formula.
func computeIDF(df, n int) float64 {
	num := float64(n) - float64(df) + 0.5
	den := float64(df) + 0.5
	return math.Log(num/den + 1.0)
}

// bm25 implements the Robertson/Sparck-Jones BM25 scoring formula from
// spec.md §4.5/§4.6.
func bm25(idf, freq, docLen, avgLen, k1, b float64) float64 {
	denom := freq + k1*(1-b+b*(docLen/avgLen))
	if denom == 0 {
		return 0.0
	}
	return idf * (freq * (k1 + 1.0) / denom)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
