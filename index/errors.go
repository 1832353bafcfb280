package index

import (
	"errors"
	"fmt"
	"io"
)

// IoError-class sentinels (stage-fatal per spec.md §7).
var ErrChunkDirEmpty = errors.New("no chunk files found in postings directory")
var ErrIndexNotBuilt = errors.New("index directory is missing required files")

// ErrLexiconMiss indicates a term absent from the lexicon on open().
// Recovered locally: callers treat a LexiconMiss as "no such list" rather
// than propagating it.
var ErrLexiconMiss = errors.New("term not present in lexicon")

// ErrUnknownMode is a UserError: an invalid DAAT mode string in the REPL.
var ErrUnknownMode = errors.New("unknown query mode")

// ErrCodecOverflow indicates a decoded varbyte integer exceeded the
// implementation's integer width.
var ErrCodecOverflow = errors.New("varbyte value exceeds maximum integer width")

// ErrMalformedPosting indicates a chunk or merge-stream line did not
// parse as "term docID freq". No code path in this module returns it:
// the parser and merger skip malformed lines, and WriteIndex consumes
// already-parsed records from a RecordSource.
type ErrMalformedPosting struct {
	Line string
}

func (e *ErrMalformedPosting) Error() string {
	return fmt.Sprintf("malformed posting line: %q", e.Line)
}

func (e *ErrMalformedPosting) Is(target error) bool {
	var err *ErrMalformedPosting
	return errors.As(target, &err)
}

// ErrTruncatedBlock indicates fewer bytes were available than the
// lexicon's BlockMeta promised for a block (its bytes_block length).
type ErrTruncatedBlock struct {
	Term        string
	BlockIdx    int
	ExpectedLen int
	ActualLen   int
}

func (e *ErrTruncatedBlock) Error() string {
	return fmt.Sprintf(
		"truncated block %d for term %q: expected %d bytes, read %d",
		e.BlockIdx, e.Term, e.ExpectedLen, e.ActualLen,
	)
}

func (e *ErrTruncatedBlock) Unwrap() error {
	return io.ErrUnexpectedEOF
}

// ErrBadBlockMeta indicates a lexicon BlockMeta entry does not describe
// a usable block. The cursor returns it when a block's docID segment
// decodes to no docIDs; last_doc_id order and byte counts are not
// checked.
type ErrBadBlockMeta struct {
	Term   string
	Reason string
}

func (e *ErrBadBlockMeta) Error() string {
	return fmt.Sprintf("bad block metadata for term %q: %s", e.Term, e.Reason)
}

func (e *ErrBadBlockMeta) Is(target error) bool {
	var err *ErrBadBlockMeta
	return errors.As(target, &err)
}
