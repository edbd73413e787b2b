package persistence

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// TraceWriter appends JSON lines to a zstd-compressed file. One record per
// line; the stream is only complete after Close.
type TraceWriter struct {
	mu    sync.Mutex
	path  string
	f     *os.File
	enc   *zstd.Encoder
	w     *bufio.Writer
	lines int
}

// NewTraceWriter creates (or truncates) the trace file at path.
func NewTraceWriter(path string) (*TraceWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("trace dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open trace: %w", err)
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("trace encoder: %w", err)
	}
	return &TraceWriter{
		path: path,
		f:    f,
		enc:  enc,
		w:    bufio.NewWriterSize(enc, 128*1024),
	}, nil
}

// Write encodes v as one JSON line.
func (t *TraceWriter) Write(v any) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.w == nil {
		return fmt.Errorf("trace %s: closed", t.path)
	}

	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode trace record: %w", err)
	}
	if _, err := t.w.Write(b); err != nil {
		return err
	}
	if err := t.w.WriteByte('\n'); err != nil {
		return err
	}
	t.lines++
	return t.w.Flush()
}

// Lines returns how many records were written.
func (t *TraceWriter) Lines() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lines
}

// Close flushes and closes the file. Closing twice is a no-op.
func (t *TraceWriter) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	var err error
	if t.w != nil {
		err = t.w.Flush()
		t.w = nil
	}
	if t.enc != nil {
		if cerr := t.enc.Close(); err == nil {
			err = cerr
		}
		t.enc = nil
	}
	if t.f != nil {
		if cerr := t.f.Close(); err == nil {
			err = cerr
		}
		t.f = nil
	}
	return err
}
