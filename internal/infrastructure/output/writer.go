package output

import (
	"bufio"
	"io"

	"github.com/zinrai/netenum-go/internal/domain"
)

// LineWriter writes one address per line.
type LineWriter struct {
	w   *bufio.Writer
	buf []byte
}

func NewLineWriter(w io.Writer) *LineWriter {
	return &LineWriter{w: bufio.NewWriter(w), buf: make([]byte, 0, 64)}
}

func (lw *LineWriter) WriteAddress(addr domain.Address) error {
	lw.buf = addr.Addr().AppendTo(lw.buf[:0])
	lw.buf = append(lw.buf, '\n')
	_, err := lw.w.Write(lw.buf)
	return err
}

func (lw *LineWriter) Flush() error {
	return lw.w.Flush()
}
