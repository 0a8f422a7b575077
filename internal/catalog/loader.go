package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/niveshhub/fundsearch/internal/fund"
)

const defaultChunkSize = 64 * 1024

// FileSource streams a JSON file containing a top-level array of raw fund
// objects. The file is read in fixed-size byte chunks; complete {...} spans
// are carved out by brace-depth counting and decoded one at a time, so the
// whole catalog is never held in memory at once.
//
// The brace scan is deliberately naive: it does not special-case braces
// inside quoted strings. Scheme records in the feed do not contain brace
// characters in string values.
type FileSource struct {
	path      string
	chunkSize int
	logger    *slog.Logger
}

// NewFileSource creates a FileSource for the given path. A non-positive
// chunkSize selects the default.
func NewFileSource(path string, chunkSize int) *FileSource {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	return &FileSource{
		path:      path,
		chunkSize: chunkSize,
		logger:    slog.Default().With("component", "catalog-loader"),
	}
}

// Stream reads the catalog file chunk by chunk, emitting every parseable
// object. Spans that fail to decode are dropped and counted. A missing or
// unreadable file is returned as an error.
func (s *FileSource) Stream(ctx context.Context, emit EmitFunc) (Stats, error) {
	var stats Stats

	f, err := os.Open(s.path)
	if err != nil {
		return stats, fmt.Errorf("opening catalog file %s: %w", s.path, err)
	}
	defer f.Close()

	chunk := make([]byte, s.chunkSize)
	var carry []byte
	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		n, readErr := f.Read(chunk)
		if n > 0 {
			carry = append(carry, chunk[:n]...)
			var emitErr error
			carry, emitErr = s.drainObjects(carry, emit, &stats)
			if emitErr != nil {
				return stats, emitErr
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return stats, fmt.Errorf("reading catalog file %s: %w", s.path, readErr)
		}
	}

	s.logger.Info("catalog stream complete",
		"path", s.path,
		"emitted", stats.Emitted,
		"malformed", stats.Malformed,
	)
	return stats, nil
}

// drainObjects scans buf for balanced {...} spans, decodes and emits each
// complete one, and returns the unconsumed tail (a trailing partial object
// plus any array punctuation before the next object).
func (s *FileSource) drainObjects(buf []byte, emit EmitFunc, stats *Stats) ([]byte, error) {
	depth := 0
	start := -1
	consumed := 0
	for i, c := range buf {
		switch c {
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				if err := s.emitSpan(buf[start:i+1], emit, stats); err != nil {
					return nil, err
				}
				consumed = i + 1
				start = -1
			}
		}
	}
	if start >= 0 {
		// Keep the partial object for the next chunk.
		return append(buf[:0:0], buf[start:]...), nil
	}
	return append(buf[:0:0], buf[consumed:]...), nil
}

func (s *FileSource) emitSpan(span []byte, emit EmitFunc, stats *Stats) error {
	var rec fund.RawRecord
	if err := json.Unmarshal(span, &rec); err != nil {
		stats.Malformed++
		s.logger.Debug("dropping malformed catalog record", "error", err)
		return nil
	}
	if err := emit(rec); err != nil {
		return err
	}
	stats.Emitted++
	return nil
}
