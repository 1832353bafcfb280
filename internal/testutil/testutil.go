// Package testutil provides shared fixtures for exercising the CLI and
// higher-level packages without re-deriving a corpus and index in
// every test file.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arclight-data/invertix/index"
	"github.com/arclight-data/invertix/internal/parser"
)

// SampleCorpus is a small TSV corpus: three short documents sharing
// overlapping vocabulary, matching the style of spec.md's S5/S6
// scenarios.
const SampleCorpus = "1\talpha beta\n2\talpha\n3\tbeta\n"

// BuildSampleIndex parses SampleCorpus and writes a complete index
// directory, returning the index dir path and the build result.
func BuildSampleIndex(t *testing.T) (string, *index.BuildIndexResult) {
	t.Helper()
	dir := t.TempDir()

	corpusPath := filepath.Join(dir, "collection.tsv")
	if err := os.WriteFile(corpusPath, []byte(SampleCorpus), 0o644); err != nil {
		t.Fatalf("write corpus: %v", err)
	}

	postingsDir := filepath.Join(dir, "postings")
	if err := parser.Run(corpusPath, postingsDir, parser.Options{ChunkSize: 100}); err != nil {
		t.Fatalf("run parser: %v", err)
	}

	merger, err := index.OpenMerger(postingsDir)
	if err != nil {
		t.Fatalf("open merger: %v", err)
	}
	defer merger.Close()

	indexDir := filepath.Join(dir, "index")
	res, err := index.WriteIndex(merger, indexDir, index.BuildIndexOptions{BlockSize: 128})
	if err != nil {
		t.Fatalf("write index: %v", err)
	}
	return indexDir, res
}
