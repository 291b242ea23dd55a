// Package protocol implements the Content-Length framed JSON-RPC transport
// spoken by language clients, plus the LSP payload types the session uses.
package protocol

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
)

// MaxBodySize bounds a single message body.
const MaxBodySize = 64 << 20

// ErrBadHeader is returned for a frame whose header block has no usable
// Content-Length. The reader has consumed the header block; the caller may
// keep reading.
var ErrBadHeader = errors.New("protocol: missing or invalid Content-Length")

// Reader reads framed message bodies.
type Reader struct {
	r *bufio.Reader
}

// NewReader wraps r.
func NewReader(r io.Reader) *Reader {
	if br, ok := r.(*bufio.Reader); ok {
		return &Reader{r: br}
	}
	return &Reader{r: bufio.NewReader(r)}
}

// Read returns the next message body. Header names are matched
// case-insensitively and lines may end in "\r\n" or "\n". Lines that are
// not headers are skipped. io.EOF is returned when the input ends inside
// or before a header block.
func (r *Reader) Read() ([]byte, error) {
	length := -1
	sawHeader := false
	for {
		line, err := r.r.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("protocol: read header: %w", err)
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			if !sawHeader {
				continue
			}
			break
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		sawHeader = true
		if strings.EqualFold(strings.TrimSpace(name), "Content-Length") {
			n, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil || n < 0 {
				length = -1
				continue
			}
			length = n
		}
	}

	if length < 0 || length > MaxBodySize {
		return nil, ErrBadHeader
	}
	body := make([]byte, length)
	if _, err := io.ReadFull(r.r, body); err != nil {
		return nil, fmt.Errorf("protocol: read body: %w", err)
	}
	return body, nil
}

// Writer writes framed messages. It is safe for concurrent use.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriter wraps w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write frames body and writes it in one call.
func (w *Writer) Write(body []byte) error {
	var b bytes.Buffer
	b.Grow(len(body) + 32)
	fmt.Fprintf(&b, "Content-Length: %d\r\n\r\n", len(body))
	b.Write(body)

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.w.Write(b.Bytes()); err != nil {
		return fmt.Errorf("protocol: write: %w", err)
	}
	return nil
}
