package index

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// StartupContext is C9 (spec.md §4.9): it loads the lexicon, page
// table, and collection stats once per process and owns the path to
// the index file. Lifetime: one query session.
type StartupContext struct {
	IndexPath string
	Lexicon   Lexicon
	PageTable PageTable
	TotalDocs int
	AvgLen    float64
}

// LoadStartupContext loads the lexicon, page_table.json, and
// collection_stats.json from indexDir, failing fatally (IoError, per
// spec.md §7) if any required file is missing or malformed. If
// lexicon.sqlite is present alongside the canonical lexicon.json, it is
// preferred: that is the whole point of the SQLite lexicon mirror
// (SPEC_FULL.md "Domain stack") for collections too large to
// comfortably parse as one JSON document.
func LoadStartupContext(indexDir string) (*StartupContext, error) {
	lexicon, err := loadLexicon(indexDir)
	if err != nil {
		return nil, err
	}
	var pageTable PageTable
	if err := loadJSON(filepath.Join(indexDir, "page_table.json"), &pageTable); err != nil {
		return nil, err
	}
	var stats CollectionStats
	if err := loadJSON(filepath.Join(indexDir, "collection_stats.json"), &stats); err != nil {
		return nil, err
	}

	avgLen := stats.AvgLen
	if avgLen == 0 {
		avgLen = 1.0
	}

	return &StartupContext{
		IndexPath: filepath.Join(indexDir, "inverted_index.bin"),
		Lexicon:   lexicon,
		PageTable: pageTable,
		TotalDocs: stats.TotalDocs,
		AvgLen:    avgLen,
	}, nil
}

// loadLexicon reads indexDir's lexicon, preferring lexicon.sqlite over
// lexicon.json when the SQLite mirror exists.
func loadLexicon(indexDir string) (Lexicon, error) {
	sqlitePath := filepath.Join(indexDir, "lexicon.sqlite")
	if _, err := os.Stat(sqlitePath); err == nil {
		lexicon, err := LoadLexiconSQLite(sqlitePath)
		if err != nil {
			return nil, fmt.Errorf("load sqlite lexicon: %w", err)
		}
		return lexicon, nil
	}

	var lexicon Lexicon
	if err := loadJSON(filepath.Join(indexDir, "lexicon.json"), &lexicon); err != nil {
		return nil, err
	}
	return lexicon, nil
}

func loadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrIndexNotBuilt, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return nil
}
