package source

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// maxLineSize bounds a single input line.
const maxLineSize = 16 << 20

// LineReader reads one range per line, skipping blank lines.
type LineReader struct {
	r io.Reader
}

func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{r: r}
}

func (lr *LineReader) Ranges(ctx context.Context) ([]string, error) {
	return ReadLines(ctx, lr.r)
}

// ReadLines returns the trimmed non-empty lines of r.
func ReadLines(ctx context.Context, r io.Reader) ([]string, error) {
	var ranges []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), maxLineSize)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		ranges = append(ranges, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return ranges, nil
}

// Static is a fixed list of ranges, e.g. from command line arguments.
type Static []string

func (s Static) Ranges(context.Context) ([]string, error) {
	out := make([]string, 0, len(s))
	for _, r := range s {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out, nil
}
