package index

import (
	"bufio"
	"container/heap"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// mergeRecord is one posting awaiting emission from the merge heap,
// tagged with the source chunk file it came from so Merger can pull the
// next line from the same file once it is popped.
type mergeRecord struct {
	term   string
	docID  uint64
	freq   uint64
	source int
}

// postingHeap is a container/heap.Interface ordering mergeRecords by
// (term ascending, docID ascending), the model being mcap's
// rangeIndexHeap (range_index_heap.go): a thin slice wrapper exposing
// only the methods heap.Interface requires.
type postingHeap []mergeRecord

func (h postingHeap) Len() int { return len(h) }
func (h postingHeap) Less(i, j int) bool {
	if h[i].term != h[j].term {
		return h[i].term < h[j].term
	}
	return h[i].docID < h[j].docID
}
func (h postingHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *postingHeap) Push(x any) {
	*h = append(*h, x.(mergeRecord))
}

func (h *postingHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}

// Merger performs the C4 k-way merge (spec.md §4.4): it opens every
// chunk file in a postings directory and produces records one at a
// time in non-decreasing (term, docID) order, the lazy pull-based
// sequence spec.md §9 calls for.
type Merger struct {
	files    []*os.File
	scanners []*bufio.Scanner
	h        postingHeap
}

// OpenMerger opens every chunk<N>.txt file in dir (sorted by file name
// for determinism, per spec.md §4.4) and seeds the merge heap with each
// file's first record.
func OpenMerger(dir string) (*Merger, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read postings dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), "chunk") && strings.HasSuffix(e.Name(), ".txt") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	if len(names) == 0 {
		return nil, ErrChunkDirEmpty
	}

	m := &Merger{}
	for i, name := range names {
		f, err := os.Open(filepath.Join(dir, name))
		if err != nil {
			m.Close()
			return nil, fmt.Errorf("open chunk %s: %w", name, err)
		}
		m.files = append(m.files, f)
		sc := bufio.NewScanner(f)
		sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
		m.scanners = append(m.scanners, sc)

		rec, ok, err := readRecord(sc, i)
		if err != nil {
			m.Close()
			return nil, err
		}
		if ok {
			m.h = append(m.h, rec)
		}
	}
	heap.Init(&m.h)
	return m, nil
}

// readRecord pulls the next "term docID freq" line from a chunk
// scanner, skipping malformed lines silently (spec.md §4.3 applies
// equally to the chunk reader side of the merger).
func readRecord(sc *bufio.Scanner, source int) (mergeRecord, bool, error) {
	for sc.Scan() {
		line := sc.Text()
		fields := strings.Fields(line)
		if len(fields) != 3 {
			continue
		}
		docID, err1 := strconv.ParseUint(fields[1], 10, 64)
		freq, err2 := strconv.ParseUint(fields[2], 10, 64)
		if err1 != nil || err2 != nil {
			continue
		}
		return mergeRecord{term: fields[0], docID: docID, freq: freq, source: source}, true, nil
	}
	if err := sc.Err(); err != nil {
		return mergeRecord{}, false, fmt.Errorf("read chunk: %w", err)
	}
	return mergeRecord{}, false, nil
}

// Next pops the smallest (term, docID) record, pushes the next record
// from the same source file, and returns the popped record. ok is
// false once the merge is exhausted.
func (m *Merger) Next() (term string, docID uint64, freq uint64, ok bool, err error) {
	if m.h.Len() == 0 {
		return "", 0, 0, false, nil
	}
	rec := heap.Pop(&m.h).(mergeRecord)

	next, hasNext, err := readRecord(m.scanners[rec.source], rec.source)
	if err != nil {
		return "", 0, 0, false, err
	}
	if hasNext {
		heap.Push(&m.h, next)
	}
	return rec.term, rec.docID, rec.freq, true, nil
}

// Close closes every open chunk file, including on error paths.
func (m *Merger) Close() error {
	var firstErr error
	for _, f := range m.files {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
