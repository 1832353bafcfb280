package index

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLexiconSQLiteRoundTrip(t *testing.T) {
	recs := []Posting3{
		{Term: "alpha", DocID: 1, Freq: 2},
		{Term: "alpha", DocID: 2, Freq: 1},
		{Term: "beta", DocID: 3, Freq: 5},
	}
	dir := t.TempDir()
	res, err := WriteIndex(NewSliceSource(recs), dir, BuildIndexOptions{BlockSize: 1})
	require.NoError(t, err)

	dbPath := filepath.Join(dir, "lexicon.sqlite")
	require.NoError(t, WriteLexiconSQLite(dbPath, res.Lexicon))

	loaded, err := LoadLexiconSQLite(dbPath)
	require.NoError(t, err)
	require.Len(t, loaded, len(res.Lexicon))

	for term, want := range res.Lexicon {
		got, ok := loaded[term]
		require.True(t, ok, term)
		require.Equal(t, want.Offset, got.Offset)
		require.Equal(t, want.DF, got.DF)
		require.Equal(t, want.BlockCount, got.BlockCount)
		require.Equal(t, want.Bytes, got.Bytes)
		require.Len(t, got.Blocks, len(want.Blocks))
		for i := range want.Blocks {
			require.Equal(t, want.Blocks[i], got.Blocks[i])
		}
	}
}
