// Optional SQLite lexicon mirror (SPEC_FULL.md "Domain stack"). The
// on-disk canonical lexicon remains lexicon.json (spec.md §6); this
// file adds an additional export for collections whose lexicon is too
// large to comfortably hold as one JSON document, modeled on
// go/mcap's direct dependency on github.com/mattn/go-sqlite3 for an
// indexed SQLite export of message data.
package index

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"
)

const lexiconSQLiteSchema = `
CREATE TABLE IF NOT EXISTS terms (
	term        TEXT PRIMARY KEY,
	offset      INTEGER NOT NULL,
	df          INTEGER NOT NULL,
	block_count INTEGER NOT NULL,
	bytes       INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS blocks (
	term            TEXT NOT NULL,
	block_idx       INTEGER NOT NULL,
	offset          INTEGER NOT NULL,
	bytes_block     INTEGER NOT NULL,
	bytes_doc_ids   INTEGER NOT NULL,
	bytes_freqs     INTEGER NOT NULL,
	last_doc_id     INTEGER NOT NULL,
	block_max_score REAL NOT NULL,
	PRIMARY KEY (term, block_idx)
);
`

// WriteLexiconSQLite mirrors lexicon into a SQLite database at path,
// overwriting any existing file.
func WriteLexiconSQLite(path string, lexicon Lexicon) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing lexicon sqlite db: %w", err)
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("open lexicon sqlite db: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(lexiconSQLiteSchema); err != nil {
		return fmt.Errorf("create lexicon sqlite schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin lexicon sqlite tx: %w", err)
	}

	termStmt, err := tx.Prepare(`INSERT INTO terms(term, offset, df, block_count, bytes) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare term insert: %w", err)
	}
	defer termStmt.Close()

	blockStmt, err := tx.Prepare(`INSERT INTO blocks(term, block_idx, offset, bytes_block, bytes_doc_ids, bytes_freqs, last_doc_id, block_max_score) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare block insert: %w", err)
	}
	defer blockStmt.Close()

	for term, entry := range lexicon {
		if _, err := termStmt.Exec(term, entry.Offset, entry.DF, entry.BlockCount, entry.Bytes); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert term %q: %w", term, err)
		}
		for idx, bm := range entry.Blocks {
			if _, err := blockStmt.Exec(term, idx, bm.Offset, bm.BytesBlock, bm.BytesDocIDs, bm.BytesFreqs, bm.LastDocID, bm.BlockMaxScore); err != nil {
				tx.Rollback()
				return fmt.Errorf("insert block %d of term %q: %w", idx, term, err)
			}
		}
	}

	return tx.Commit()
}

// LoadLexiconSQLite reads a lexicon previously written with
// WriteLexiconSQLite back into memory.
func LoadLexiconSQLite(path string) (Lexicon, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open lexicon sqlite db: %w", err)
	}
	defer db.Close()

	termRows, err := db.Query(`SELECT term, offset, df, block_count, bytes FROM terms`)
	if err != nil {
		return nil, fmt.Errorf("query terms: %w", err)
	}
	defer termRows.Close()

	lexicon := make(Lexicon)
	for termRows.Next() {
		var term string
		var entry LexiconEntry
		if err := termRows.Scan(&term, &entry.Offset, &entry.DF, &entry.BlockCount, &entry.Bytes); err != nil {
			return nil, fmt.Errorf("scan term row: %w", err)
		}
		lexicon[term] = entry
	}
	if err := termRows.Err(); err != nil {
		return nil, err
	}

	blockRows, err := db.Query(`SELECT term, block_idx, offset, bytes_block, bytes_doc_ids, bytes_freqs, last_doc_id, block_max_score FROM blocks ORDER BY term, block_idx`)
	if err != nil {
		return nil, fmt.Errorf("query blocks: %w", err)
	}
	defer blockRows.Close()

	perTerm := make(map[string][]BlockMeta)
	for blockRows.Next() {
		var term string
		var idx int
		var bm BlockMeta
		if err := blockRows.Scan(&term, &idx, &bm.Offset, &bm.BytesBlock, &bm.BytesDocIDs, &bm.BytesFreqs, &bm.LastDocID, &bm.BlockMaxScore); err != nil {
			return nil, fmt.Errorf("scan block row: %w", err)
		}
		perTerm[term] = append(perTerm[term], bm)
	}
	if err := blockRows.Err(); err != nil {
		return nil, err
	}

	for term, blocks := range perTerm {
		entry := lexicon[term]
		entry.Blocks = blocks
		lexicon[term] = entry
	}
	return lexicon, nil
}
