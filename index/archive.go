// Additive archive/restore of an index directory (SPEC_FULL.md
// "Domain stack"), using github.com/pierrec/lz4/v4 the way
// go/mcap/writer.go and
// other_examples/.../indexer-sorter.go.go wrap an lz4 stream around
// their own framing. This never touches the per-block byte layout
// inside inverted_index.bin — it only wraps the four index-directory
// files as a single distributable unit.
package index

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pierrec/lz4/v4"
)

// archiveFiles is the fixed set of files an index directory always
// contains (spec.md §6, "Directory layout").
var archiveFiles = []string{
	"inverted_index.bin",
	"lexicon.json",
	"page_table.json",
	"collection_stats.json",
}

// ArchiveManifest describes an archive's contents and provenance.
type ArchiveManifest struct {
	SessionID string             `json:"session_id"`
	CreatedAt string             `json:"created_at"`
	Files     []archiveFileEntry `json:"files"`
}

type archiveFileEntry struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// Archive compresses indexDir's four required files into a single
// lz4-framed archive at archivePath: a newline-terminated JSON
// manifest followed by each file's raw bytes, in manifest order.
func Archive(indexDir, archivePath, createdAt string) (*ArchiveManifest, error) {
	manifest := ArchiveManifest{
		SessionID: uuid.NewString(),
		CreatedAt: createdAt,
	}
	for _, name := range archiveFiles {
		info, err := os.Stat(filepath.Join(indexDir, name))
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrIndexNotBuilt, err)
		}
		manifest.Files = append(manifest.Files, archiveFileEntry{Name: name, Size: info.Size()})
	}

	out, err := os.Create(archivePath)
	if err != nil {
		return nil, fmt.Errorf("create archive: %w", err)
	}
	defer out.Close()

	zw := lz4.NewWriter(out)
	defer zw.Close()

	manifestBytes, err := json.Marshal(manifest)
	if err != nil {
		return nil, fmt.Errorf("marshal archive manifest: %w", err)
	}
	manifestBytes = append(manifestBytes, '\n')
	if _, err := zw.Write(manifestBytes); err != nil {
		return nil, fmt.Errorf("write archive manifest: %w", err)
	}

	for _, entry := range manifest.Files {
		f, err := os.Open(filepath.Join(indexDir, entry.Name))
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", entry.Name, err)
		}
		_, copyErr := io.Copy(zw, f)
		f.Close()
		if copyErr != nil {
			return nil, fmt.Errorf("archive %s: %w", entry.Name, copyErr)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close lz4 writer: %w", err)
	}
	return &manifest, nil
}

// Restore decompresses an archive produced by Archive into outDir,
// recreating the four index-directory files.
func Restore(archivePath, outDir string) (*ArchiveManifest, error) {
	in, err := os.Open(archivePath)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer in.Close()

	zr := lz4.NewReader(in)
	br := bufio.NewReader(zr)

	line, err := br.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("read archive manifest: %w", err)
	}
	var manifest ArchiveManifest
	if err := json.Unmarshal([]byte(line), &manifest); err != nil {
		return nil, fmt.Errorf("parse archive manifest: %w", err)
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create restore dir: %w", err)
	}

	for _, entry := range manifest.Files {
		f, err := os.Create(filepath.Join(outDir, entry.Name))
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", entry.Name, err)
		}
		_, copyErr := io.CopyN(f, br, entry.Size)
		f.Close()
		if copyErr != nil {
			return nil, fmt.Errorf("restore %s: %w", entry.Name, copyErr)
		}
	}

	return &manifest, nil
}
