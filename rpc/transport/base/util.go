package base

import (
	"bufio"
	"errors"
	"io"
)

// ErrLineTooLong is returned by lineReader when a line exceeds the configured limit
var ErrLineTooLong = errors.New("line exceeds maximum length")

// lineReader reads newline-terminated lines. The internal buffer of the bufio.Reader
// stays small, longer lines are assembled in a growing slice up to maxLen bytes.
type lineReader struct {
	r      *bufio.Reader
	maxLen int
	buf    []byte
}

func newLineReader(r io.Reader, maxLen int) *lineReader {
	return &lineReader{
		r:      bufio.NewReader(r),
		maxLen: maxLen,
	}
}

// ReadLine returns the next line without the trailing '\n'.
// A final line that is not terminated by '\n' is discarded and io.EOF is returned.
func (l *lineReader) ReadLine() (string, error) {
	l.buf = l.buf[:0]
	for {
		chunk, err := l.r.ReadSlice('\n')
		if l.maxLen > 0 && len(l.buf)+len(chunk) > l.maxLen+1 { // +1 for the newline
			return "", ErrLineTooLong
		}
		l.buf = append(l.buf, chunk...)

		switch {
		case err == nil:
			return string(l.buf[:len(l.buf)-1]), nil
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		default:
			return "", err
		}
	}
}

// writeLine writes s followed by '\n' and flushes the writer
func writeLine(w *bufio.Writer, s string) error {
	if _, err := w.WriteString(s); err != nil {
		return err
	}
	if err := w.WriteByte('\n'); err != nil {
		return err
	}
	return w.Flush()
}
