package csvinfer

import (
	"context"
	"fmt"
	"io"
)

// countBufferSize is the read buffer of the row counter
const countBufferSize = 32 * 1024

// CountRows counts the data rows of a delimited text stream without parsing fields.
//
// Every line terminator ("\n", "\r\n" or a lone "\r") ends one line, and trailing bytes after
// the last terminator form one more line. The first line is the header and is not counted, so
// the result is never negative. The stream is consumed to EOF.
//
// Quoted fields that contain line breaks make the count larger than the number of records.
// Memory use is constant. On any read error CountRows returns 0 and the error, never a partial count.
func CountRows(ctx context.Context, r io.Reader) (int64, error) {
	var counter lineCounter
	if err := drain(ctx, io.TeeReader(r, &counter)); err != nil {
		return 0, err
	}
	return counter.dataRows(), nil
}

// lineCounter counts line terminators in the bytes written to it
type lineCounter struct {
	lines      int64
	prevCR     bool
	seenAny    bool
	terminated bool
}

// Write implements io.Writer; it never fails
func (c *lineCounter) Write(p []byte) (int, error) {
	if len(p) > 0 {
		c.seenAny = true
	}
	for _, b := range p {
		switch b {
		case '\n':
			if !c.prevCR {
				c.lines++
			}
			c.prevCR = false
			c.terminated = true
		case '\r':
			c.lines++
			c.prevCR = true
			c.terminated = true
		default:
			c.prevCR = false
			c.terminated = false
		}
	}
	return len(p), nil
}

// dataRows returns the line count without the header line
func (c *lineCounter) dataRows() int64 {
	lines := c.lines
	if c.seenAny && !c.terminated {
		lines++
	}
	return max(0, lines-1)
}

// drain reads r to EOF, checking ctx before every read
func drain(ctx context.Context, r io.Reader) error {
	buf := make([]byte, countBufferSize)
	for {
		if err := ctx.Err(); err != nil {
			return cancelledError(err)
		}

		_, err := r.Read(buf)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to count rows: %w", err)
		}
	}
}
