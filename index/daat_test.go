package index

import (
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arclight-data/invertix/internal/tokenize"
)

// buildCorpusIndex tokenizes docs (docID -> text) the way the parser
// and merger would, then writes an index directly from the resulting
// sorted postings.
func buildCorpusIndex(t *testing.T, docs map[uint64]string, blockSize int) (string, *BuildIndexResult) {
	t.Helper()
	var recs []Posting3
	for docID, text := range docs {
		freqs := map[string]int{}
		for _, term := range tokenize.Tokenize(text) {
			freqs[term]++
		}
		for term, freq := range freqs {
			recs = append(recs, Posting3{Term: term, DocID: docID, Freq: uint64(freq)})
		}
	}
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].Term != recs[j].Term {
			return recs[i].Term < recs[j].Term
		}
		return recs[i].DocID < recs[j].DocID
	})
	dir := t.TempDir()
	res, err := WriteIndex(NewSliceSource(recs), dir, BuildIndexOptions{BlockSize: blockSize, K1: DefaultK1, B: DefaultB})
	require.NoError(t, err)
	return filepath.Join(dir, "inverted_index.bin"), res
}

func openQueryCursors(t *testing.T, indexPath string, res *BuildIndexResult, terms []string) []*InvertedList {
	t.Helper()
	var lists []*InvertedList
	for _, term := range terms {
		cur, err := OpenInvertedList(term, indexPath, res.Lexicon, res.PageTable, res.Stats.TotalDocs, res.Stats.AvgLen, DefaultK1, DefaultB)
		require.NoError(t, err)
		if cur != nil && cur.DocID < INFDocID {
			lists = append(lists, cur)
		}
	}
	return lists
}

func closeAll(lists []*InvertedList) {
	for _, lp := range lists {
		_ = lp.Close()
	}
}

// S5 from spec.md §8.
func TestDAATConjunctive(t *testing.T) {
	docs := map[uint64]string{1: "alpha beta", 2: "alpha", 3: "beta"}
	indexPath, res := buildCorpusIndex(t, docs, 128)

	lists := openQueryCursors(t, indexPath, res, []string{"alpha", "beta"})
	defer closeAll(lists)

	results, err := DAATConjunctive(lists, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, uint64(1), results[0].DocID)
	require.Greater(t, results[0].Score, 0.0)
}

// S6 from spec.md §8.
func TestDAATDisjunctiveEnginesAgree(t *testing.T) {
	docs := map[uint64]string{1: "alpha beta", 2: "alpha", 3: "beta"}
	indexPath, res := buildCorpusIndex(t, docs, 128)

	listsMax := openQueryCursors(t, indexPath, res, []string{"alpha", "beta"})
	defer closeAll(listsMax)
	resultsMax, err := DAATDisjunctiveMaxScore(listsMax, 10)
	require.NoError(t, err)

	listsBwand := openQueryCursors(t, indexPath, res, []string{"alpha", "beta"})
	defer closeAll(listsBwand)
	resultsBwand, err := DAATDisjunctiveBlockMaxWAND(listsBwand, 10)
	require.NoError(t, err)

	require.Len(t, resultsMax, 3)
	require.Equal(t, resultsMax, resultsBwand)

	var docIDs []uint64
	for _, r := range resultsMax {
		docIDs = append(docIDs, r.DocID)
	}
	sort.Slice(docIDs, func(i, j int) bool { return docIDs[i] < docIDs[j] })
	require.Equal(t, []uint64{1, 2, 3}, docIDs)
}

func TestDAATDisjunctiveMaxScoreMatchesExhaustiveScan(t *testing.T) {
	docs := map[uint64]string{
		1: "the quick brown fox",
		2: "the lazy dog",
		3: "quick fox jumps",
		4: "brown dog sleeps",
		5: "the the the fox fox",
	}
	indexPath, res := buildCorpusIndex(t, docs, 2) // force many small blocks

	lists := openQueryCursors(t, indexPath, res, []string{"the", "fox", "dog"})
	defer closeAll(lists)
	results, err := DAATDisjunctiveMaxScore(lists, 10)
	require.NoError(t, err)

	// Exhaustive scan: score every doc against fresh cursors per term.
	want := map[uint64]float64{}
	for docID := range docs {
		for _, term := range []string{"the", "fox", "dog"} {
			cur, err := OpenInvertedList(term, indexPath, res.Lexicon, res.PageTable, res.Stats.TotalDocs, res.Stats.AvgLen, DefaultK1, DefaultB)
			require.NoError(t, err)
			if cur == nil {
				continue
			}
			d, err := cur.NextGEQ(docID)
			require.NoError(t, err)
			if d == docID {
				want[docID] += cur.GetScore(docID)
			}
			cur.Close()
		}
	}

	require.Len(t, results, len(want))
	for _, r := range results {
		require.InDelta(t, want[r.DocID], r.Score, 1e-9)
	}
}

func TestDAATEmptyListsReturnEmpty(t *testing.T) {
	for _, fn := range []func([]*InvertedList, int) ([]Result, error){
		DAATConjunctive, DAATDisjunctiveMaxScore, DAATDisjunctiveBlockMaxWAND,
	} {
		results, err := fn(nil, 10)
		require.NoError(t, err)
		require.Empty(t, results)
	}
}

func TestDAATConjunctiveNoIntersection(t *testing.T) {
	docs := map[uint64]string{1: "alpha", 2: "beta"}
	indexPath, res := buildCorpusIndex(t, docs, 128)
	lists := openQueryCursors(t, indexPath, res, []string{"alpha", "beta"})
	defer closeAll(lists)

	results, err := DAATConjunctive(lists, 10)
	require.NoError(t, err)
	require.Empty(t, results)
}
