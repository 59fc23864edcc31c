package csvinfer

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
)

const (
	// readBufferSize is the buffer used in front of every text input
	readBufferSize = 64 * 1024
	// sniffSize is how much of the input is inspected for binary content
	sniffSize = 512
)

// utf8BOM is the byte order mark some Windows programs put at the start of text files
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// newTextReader prepares a delimited text stream for tokenizing.
// A leading UTF-8 BOM is dropped, and a NUL byte in the first sniffSize bytes
// rejects the input as binary since no delimited text contains one.
func newTextReader(r io.Reader) (*bufio.Reader, error) {
	br := bufio.NewReaderSize(r, readBufferSize)

	head, err := br.Peek(sniffSize)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	if bytes.IndexByte(head, 0) >= 0 {
		return nil, fmt.Errorf("%w: binary content in the first %d bytes", ErrInvalidData, len(head))
	}

	if bytes.HasPrefix(head, utf8BOM) {
		if _, err := br.Discard(len(utf8BOM)); err != nil {
			return nil, fmt.Errorf("failed to skip byte order mark: %w", err)
		}
	}
	return br, nil
}
