package index

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSessionRunQueryConjunctive(t *testing.T) {
	docs := map[uint64]string{1: "alpha beta", 2: "alpha", 3: "beta"}
	indexPath, res := buildCorpusIndex(t, docs, 128)
	ctx := &StartupContext{
		IndexPath: indexPath,
		Lexicon:   res.Lexicon,
		PageTable: res.PageTable,
		TotalDocs: res.Stats.TotalDocs,
		AvgLen:    res.Stats.AvgLen,
	}
	sess, err := NewSession(ctx, 10, DefaultK1, DefaultB)
	require.NoError(t, err)
	defer sess.Close()

	qr, err := sess.RunQuery("alpha beta", ModeAnd, 10)
	require.NoError(t, err)
	require.Len(t, qr.Results, 1)
	require.Equal(t, uint64(1), qr.Results[0].DocID)

	hits, misses := sess.CacheStats()
	require.Equal(t, 0, hits)
	require.Equal(t, 2, misses)

	// Re-running the same query should hit the cache for both terms.
	_, err = sess.RunQuery("alpha beta", ModeOr, 10)
	require.NoError(t, err)
	hits, misses = sess.CacheStats()
	require.Equal(t, 2, hits)
	require.Equal(t, 2, misses)
}

func TestSessionRunQueryUnknownMode(t *testing.T) {
	indexPath, res := buildTestIndex(t, []Posting3{{Term: "t", DocID: 1, Freq: 1}}, 128)
	ctx := &StartupContext{
		IndexPath: indexPath,
		Lexicon:   res.Lexicon,
		PageTable: res.PageTable,
		TotalDocs: res.Stats.TotalDocs,
		AvgLen:    res.Stats.AvgLen,
	}
	sess, err := NewSession(ctx, 10, DefaultK1, DefaultB)
	require.NoError(t, err)
	defer sess.Close()

	_, err = sess.RunQuery("t", Mode("bogus"), 10)
	require.ErrorIs(t, err, ErrUnknownMode)
}

func TestSessionRunQuerySkipsTermsNotInLexicon(t *testing.T) {
	indexPath, res := buildTestIndex(t, []Posting3{{Term: "t", DocID: 1, Freq: 1}}, 128)
	ctx := &StartupContext{
		IndexPath: indexPath,
		Lexicon:   res.Lexicon,
		PageTable: res.PageTable,
		TotalDocs: res.Stats.TotalDocs,
		AvgLen:    res.Stats.AvgLen,
	}
	sess, err := NewSession(ctx, 10, DefaultK1, DefaultB)
	require.NoError(t, err)
	defer sess.Close()

	qr, err := sess.RunQuery("t nonexistent", ModeOr, 10)
	require.NoError(t, err)
	require.Len(t, qr.Results, 1)
}

func TestLoadStartupContextRoundTrip(t *testing.T) {
	dir := t.TempDir()
	var recs []Posting3
	recs = append(recs, Posting3{Term: "alpha", DocID: 1, Freq: 1}, Posting3{Term: "alpha", DocID: 2, Freq: 1}, Posting3{Term: "beta", DocID: 1, Freq: 1})
	_, err := WriteIndex(NewSliceSource(recs), dir, BuildIndexOptions{BlockSize: 128})
	require.NoError(t, err)

	ctx, err := LoadStartupContext(dir)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "inverted_index.bin"), ctx.IndexPath)
	require.Equal(t, 2, ctx.TotalDocs)
	require.Len(t, ctx.Lexicon, 2)
}

func TestLoadStartupContextPrefersSQLiteLexicon(t *testing.T) {
	dir := t.TempDir()
	recs := []Posting3{
		{Term: "alpha", DocID: 1, Freq: 1},
		{Term: "beta", DocID: 2, Freq: 1},
	}
	res, err := WriteIndex(NewSliceSource(recs), dir, BuildIndexOptions{BlockSize: 128})
	require.NoError(t, err)

	// Corrupt lexicon.json and write a correct lexicon.sqlite alongside
	// it: LoadStartupContext must read the SQLite mirror, not the JSON.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lexicon.json"), []byte("not json"), 0o644))
	require.NoError(t, WriteLexiconSQLite(filepath.Join(dir, "lexicon.sqlite"), res.Lexicon))

	ctx, err := LoadStartupContext(dir)
	require.NoError(t, err)
	require.Len(t, ctx.Lexicon, 2)
	require.Equal(t, res.Lexicon["alpha"].DF, ctx.Lexicon["alpha"].DF)
	require.Equal(t, res.Lexicon["beta"].Blocks, ctx.Lexicon["beta"].Blocks)
}

func TestLoadStartupContextMissingFiles(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadStartupContext(dir)
	require.ErrorIs(t, err, ErrIndexNotBuilt)
}
