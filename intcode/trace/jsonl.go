package trace

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"
	"os"
	"sync"
)

// JSONLWriter writes Step records as JSON Lines (one JSON object per line).
// It is safe for concurrent use by multiple goroutines.
type JSONLWriter struct {
	mu     sync.Mutex
	enc    *json.Encoder
	buf    *bufio.Writer
	closer io.Closer // only set when we own the underlying writer
	closed bool

	limit   uint64 // 0 means unlimited
	written uint64
	dropped uint64
}

// ErrWriterClosed is returned when WriteStep is called after Close.
var ErrWriterClosed = errors.New("jsonl trace writer is closed")

func newJSONLWriter(w io.Writer, size int, closer io.Closer) *JSONLWriter {
	buf := bufio.NewWriterSize(w, size)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	return &JSONLWriter{enc: enc, buf: buf, closer: closer}
}

// NewJSONLWriter wraps w. Close flushes but does not close w.
func NewJSONLWriter(w io.Writer) *JSONLWriter {
	return newJSONLWriter(w, 64*1024, nil)
}

// NewJSONLWriterFile creates (or truncates) path. Close flushes and closes the file.
func NewJSONLWriterFile(path string) (*JSONLWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return newJSONLWriter(f, 64*1024, f), nil
}

// NewJSONLWriterStdout writes to stdout with a small buffer.
func NewJSONLWriterStdout() *JSONLWriter {
	return newJSONLWriter(os.Stdout, 4*1024, nil)
}

// SetLimit caps the number of steps written. Later steps are counted as
// dropped so a long run can be traced by its prefix. Zero removes the cap.
func (w *JSONLWriter) SetLimit(n uint64) {
	w.mu.Lock()
	w.limit = n
	w.mu.Unlock()
}

// Counts reports how many steps were written and how many the limit dropped.
func (w *JSONLWriter) Counts() (written, dropped uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.written, w.dropped
}

// WriteStep encodes a single Step followed by a newline.
func (w *JSONLWriter) WriteStep(step *Step) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWriterClosed
	}
	if w.limit > 0 && w.written >= w.limit {
		w.dropped++
		return nil
	}
	if err := w.enc.Encode(step); err != nil {
		return err
	}
	w.written++
	return nil
}

// Flush forces buffered data to be written to the underlying writer.
func (w *JSONLWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWriterClosed
	}
	return w.buf.Flush()
}

// Close flushes any buffered data and closes the file if the writer owns it.
func (w *JSONLWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	if err := w.buf.Flush(); err != nil {
		if w.closer != nil {
			_ = w.closer.Close()
		}
		return err
	}
	if w.closer != nil {
		return w.closer.Close()
	}
	return nil
}
