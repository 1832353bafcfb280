package index

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func buildTestIndex(t *testing.T, recs []Posting3, blockSize int) (string, *BuildIndexResult) {
	t.Helper()
	dir := t.TempDir()
	res, err := WriteIndex(NewSliceSource(recs), dir, BuildIndexOptions{BlockSize: blockSize, K1: DefaultK1, B: DefaultB})
	require.NoError(t, err)
	return filepath.Join(dir, "inverted_index.bin"), res
}

// S4 from spec.md §8, with a block size of 2 so NextGEQ(3) has to move
// from the first block into the second.
func TestCursorNextGEQAcrossBlocks(t *testing.T) {
	recs := []Posting3{
		{Term: "t", DocID: 1, Freq: 1},
		{Term: "t", DocID: 2, Freq: 2},
		{Term: "t", DocID: 130, Freq: 1},
		{Term: "t", DocID: 131, Freq: 3},
	}
	indexPath, res := buildTestIndex(t, recs, 2)

	cur, err := OpenInvertedList("t", indexPath, res.Lexicon, res.PageTable, res.Stats.TotalDocs, res.Stats.AvgLen, DefaultK1, DefaultB)
	require.NoError(t, err)
	require.NotNil(t, cur)
	defer cur.Close()

	require.Equal(t, uint64(1), cur.DocID)

	d, err := cur.NextGEQ(3)
	require.NoError(t, err)
	require.Equal(t, uint64(130), d)

	d, err = cur.NextGEQ(132)
	require.NoError(t, err)
	require.Equal(t, INFDocID, d)
}

func TestCursorMonotonicNextGEQ(t *testing.T) {
	var recs []Posting3
	for i := uint64(1); i <= 300; i++ {
		recs = append(recs, Posting3{Term: "t", DocID: i, Freq: 1})
	}
	indexPath, res := buildTestIndex(t, recs, 32)

	cur, err := OpenInvertedList("t", indexPath, res.Lexicon, res.PageTable, res.Stats.TotalDocs, res.Stats.AvgLen, DefaultK1, DefaultB)
	require.NoError(t, err)
	defer cur.Close()

	var prev uint64
	for _, target := range []uint64{5, 5, 10, 40, 300, 301} {
		d, err := cur.NextGEQ(target)
		require.NoError(t, err)
		require.GreaterOrEqual(t, d, prev)
		if d != INFDocID {
			require.GreaterOrEqual(t, d, target)
		}
		prev = d
	}
}

func TestCursorLexiconMissReturnsNil(t *testing.T) {
	indexPath, res := buildTestIndex(t, []Posting3{{Term: "t", DocID: 1, Freq: 1}}, 128)
	cur, err := OpenInvertedList("missing", indexPath, res.Lexicon, res.PageTable, res.Stats.TotalDocs, res.Stats.AvgLen, DefaultK1, DefaultB)
	require.NoError(t, err)
	require.Nil(t, cur)
}

func TestCursorGetScoreOnlyAtCurrentPosition(t *testing.T) {
	recs := []Posting3{
		{Term: "t", DocID: 1, Freq: 2},
		{Term: "t", DocID: 5, Freq: 1},
	}
	indexPath, res := buildTestIndex(t, recs, 128)
	cur, err := OpenInvertedList("t", indexPath, res.Lexicon, res.PageTable, res.Stats.TotalDocs, res.Stats.AvgLen, DefaultK1, DefaultB)
	require.NoError(t, err)
	defer cur.Close()

	require.Equal(t, 0.0, cur.GetScore(5)) // not positioned there yet
	require.Greater(t, cur.GetScore(1), 0.0)

	d, err := cur.NextGEQ(5)
	require.NoError(t, err)
	require.Equal(t, uint64(5), d)
	require.Greater(t, cur.GetScore(5), 0.0)
	require.Equal(t, 0.0, cur.GetScore(1))
}

func TestCursorResetRewinds(t *testing.T) {
	recs := []Posting3{
		{Term: "t", DocID: 1, Freq: 1},
		{Term: "t", DocID: 2, Freq: 1},
	}
	indexPath, res := buildTestIndex(t, recs, 128)
	cur, err := OpenInvertedList("t", indexPath, res.Lexicon, res.PageTable, res.Stats.TotalDocs, res.Stats.AvgLen, DefaultK1, DefaultB)
	require.NoError(t, err)
	defer cur.Close()

	_, err = cur.NextGEQ(2)
	require.NoError(t, err)
	require.Equal(t, uint64(2), cur.DocID)

	require.NoError(t, cur.Reset())
	require.Equal(t, uint64(1), cur.DocID)
}

func TestCursorCurrBlockMaxAndAdvance(t *testing.T) {
	var recs []Posting3
	for i := uint64(1); i <= 200; i++ {
		recs = append(recs, Posting3{Term: "t", DocID: i, Freq: 1})
	}
	indexPath, res := buildTestIndex(t, recs, 64)
	cur, err := OpenInvertedList("t", indexPath, res.Lexicon, res.PageTable, res.Stats.TotalDocs, res.Stats.AvgLen, DefaultK1, DefaultB)
	require.NoError(t, err)
	defer cur.Close()

	require.GreaterOrEqual(t, cur.CurrBlockMax(), 0.0)
	require.NoError(t, cur.AdvanceToNextBlock())
	require.Equal(t, uint64(65), cur.DocID)
}
