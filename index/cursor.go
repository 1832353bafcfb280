package index

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
)

// InvertedList is the C6 lazily-paged posting cursor (spec.md §4.6). It
// retains its own file handle on the index file (spec.md §9, "Per-
// cursor file handle") and decodes one block at a time.
type InvertedList struct {
	term      string
	indexPath string
	f         *os.File
	entry     LexiconEntry
	pageTable PageTable
	n         int
	avgLen    float64
	k1, b     float64

	blockLastDocIDs []uint64
	blockMaxScores  []float64
	maxScore        float64

	currBlockIdx    int
	currBlockDocIDs []uint64
	currBlockFreqs  []uint64
	currIdx         int

	// DocID is the cursor's current position, or INFDocID once
	// exhausted. Read-only to callers outside this package.
	DocID uint64
}

// OpenInvertedList opens a cursor for term. It returns (nil, nil) if
// term is absent from the lexicon (spec.md §4.6 "open(term) → cursor |
// None"); callers should treat that as ErrLexiconMiss-equivalent and
// simply drop the term, not as a fatal error.
func OpenInvertedList(term, indexPath string, lexicon Lexicon, pageTable PageTable, n int, avgLen, k1, b float64) (*InvertedList, error) {
	entry, ok := lexicon[term]
	if !ok {
		return nil, nil
	}

	f, err := os.Open(indexPath)
	if err != nil {
		return nil, fmt.Errorf("open index file: %w", err)
	}

	blockLastDocIDs := make([]uint64, len(entry.Blocks))
	blockMaxScores := make([]float64, len(entry.Blocks))
	maxScore := 0.0
	for i, bm := range entry.Blocks {
		blockLastDocIDs[i] = bm.LastDocID
		blockMaxScores[i] = bm.BlockMaxScore
		if bm.BlockMaxScore > maxScore {
			maxScore = bm.BlockMaxScore
		}
	}

	c := &InvertedList{
		term:            term,
		indexPath:       indexPath,
		f:               f,
		entry:           entry,
		pageTable:       pageTable,
		n:               n,
		avgLen:          avgLen,
		k1:              k1,
		b:               b,
		blockLastDocIDs: blockLastDocIDs,
		blockMaxScores:  blockMaxScores,
		maxScore:        maxScore,
	}
	if len(entry.Blocks) == 0 {
		c.DocID = INFDocID
		return c, nil
	}
	if err := c.loadBlock(0); err != nil {
		f.Close()
		return nil, err
	}
	return c, nil
}

// Term returns the cursor's term.
func (c *InvertedList) Term() string { return c.term }

// DF returns the term's document frequency.
func (c *InvertedList) DF() int { return c.entry.DF }

// MaxScore returns the maximum block_max_score across all blocks.
func (c *InvertedList) MaxScore() float64 { return c.maxScore }

// Reset repositions the cursor to block 0, index 0 (spec.md §4.6).
func (c *InvertedList) Reset() error {
	if len(c.entry.Blocks) == 0 {
		c.DocID = INFDocID
		return nil
	}
	return c.loadBlock(0)
}

// loadBlock seeks to block idx's byte range, decodes it, and positions
// the cursor on its first posting. idx >= block_count exhausts the
// cursor.
func (c *InvertedList) loadBlock(idx int) error {
	if idx >= len(c.entry.Blocks) {
		c.currBlockIdx = idx
		c.currBlockDocIDs = nil
		c.currBlockFreqs = nil
		c.currIdx = 0
		c.DocID = INFDocID
		return nil
	}

	bm := c.entry.Blocks[idx]
	buf := make([]byte, bm.BytesBlock)
	sr := io.NewSectionReader(c.f, bm.Offset, int64(bm.BytesBlock))
	n, err := io.ReadFull(sr, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return fmt.Errorf("read block %d of term %q: %w", idx, c.term, err)
	}
	if n != bm.BytesBlock {
		return &ErrTruncatedBlock{Term: c.term, BlockIdx: idx, ExpectedLen: bm.BytesBlock, ActualLen: n}
	}

	gaps, err := DecodeVarByte(buf[:bm.BytesDocIDs])
	if err != nil {
		return err
	}
	freqs, err := DecodeVarByte(buf[bm.BytesDocIDs:])
	if err != nil {
		return err
	}
	if len(gaps) == 0 {
		return &ErrBadBlockMeta{Term: c.term, Reason: "empty block"}
	}

	docIDs := make([]uint64, len(gaps))
	docIDs[0] = gaps[0]
	for i := 1; i < len(gaps); i++ {
		docIDs[i] = docIDs[i-1] + gaps[i]
	}

	c.currBlockIdx = idx
	c.currBlockDocIDs = docIDs
	c.currBlockFreqs = freqs
	c.currIdx = 0
	c.DocID = docIDs[0]
	return nil
}

// NextGEQ advances DocID to the smallest docID >= k among remaining
// postings, or INFDocID if none remain (spec.md §4.6, P5). It never
// decreases DocID between calls without an intervening Reset.
func (c *InvertedList) NextGEQ(k uint64) (uint64, error) {
	for c.currBlockIdx < len(c.blockLastDocIDs) && c.blockLastDocIDs[c.currBlockIdx] < k {
		if err := c.loadBlock(c.currBlockIdx + 1); err != nil {
			return 0, err
		}
	}
	if c.currBlockIdx >= len(c.blockLastDocIDs) {
		c.DocID = INFDocID
		return INFDocID, nil
	}

	idx := gallopingSearch(c.currBlockDocIDs, k, c.currIdx)
	if idx >= len(c.currBlockDocIDs) {
		// Should not happen given last_doc_id >= k, but guards against a
		// corrupt lexicon (I4 violation) rather than panicking.
		if err := c.loadBlock(c.currBlockIdx + 1); err != nil {
			return 0, err
		}
		return c.NextGEQ(k)
	}
	c.currIdx = idx
	c.DocID = c.currBlockDocIDs[idx]
	return c.DocID, nil
}

// GetScore returns the BM25 score of docID d if the cursor is
// currently positioned on it, else 0.0 (spec.md §4.6, P7).
func (c *InvertedList) GetScore(d uint64) float64 {
	if c.DocID != d || c.currBlockDocIDs == nil {
		return 0.0
	}
	if c.currIdx >= len(c.currBlockDocIDs) || c.currBlockDocIDs[c.currIdx] != d {
		return 0.0
	}
	freq := c.currBlockFreqs[c.currIdx]
	docLen := 1
	if e, ok := c.pageTable[strconv.FormatUint(d, 10)]; ok {
		docLen = e.Length
	}
	idf := computeIDF(c.entry.DF, c.n)
	return bm25(idf, float64(freq), float64(docLen), c.avgLen, c.k1, c.b)
}

// CurrBlockMax returns the precomputed block_max_score of the block
// the cursor is currently positioned in, or 0.0 if exhausted.
func (c *InvertedList) CurrBlockMax() float64 {
	if c.currBlockIdx >= 0 && c.currBlockIdx < len(c.blockMaxScores) {
		return c.blockMaxScores[c.currBlockIdx]
	}
	return 0.0
}

// AdvanceToNextBlock jumps to the next block, setting DocID to its
// first docID or INFDocID if none remain.
func (c *InvertedList) AdvanceToNextBlock() error {
	return c.loadBlock(c.currBlockIdx + 1)
}

// Close releases the cursor's file handle.
func (c *InvertedList) Close() error {
	if c.f == nil {
		return nil
	}
	return c.f.Close()
}

// gallopingSearch finds the smallest index i >= start such that
// arr[i] >= k, using exponential probing to bound a window and a
// binary search (sort.Search) within it — the Go-idiomatic equivalent
// of the original implementation's doubling-step-plus-bisect approach.
// Returns len(arr) if no such index exists.
func gallopingSearch(arr []uint64, k uint64, start int) int {
	if start >= len(arr) {
		return len(arr)
	}
	if arr[start] >= k {
		return start
	}
	step := 1
	idx := start
	for idx < len(arr) && arr[idx] < k {
		idx += step
		step *= 2
	}
	lo := idx - step/2
	if lo < start {
		lo = start
	}
	hi := idx
	if hi > len(arr) {
		hi = len(arr)
	}
	offset := sort.Search(hi-lo, func(i int) bool { return arr[lo+i] >= k })
	return lo + offset
}
