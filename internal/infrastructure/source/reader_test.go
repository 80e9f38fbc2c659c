package source

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineReader(t *testing.T) {
	tests := map[string]struct {
		input string
		want  []string
	}{
		"two lines": {
			input: "192.168.0.0/24\n10.0.0.0/8\n",
			want:  []string{"192.168.0.0/24", "10.0.0.0/8"},
		},
		"empty input": {
			input: "",
			want:  nil,
		},
		"whitespace and blank lines": {
			input: "  192.168.0.0/24  \n  \n  10.0.0.0/8  ",
			want:  []string{"192.168.0.0/24", "10.0.0.0/8"},
		},
		"crlf": {
			input: "2001:db8::/120\r\n\r\n",
			want:  []string{"2001:db8::/120"},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := NewLineReader(strings.NewReader(test.input)).Ranges(context.Background())
			require.NoError(t, err)
			assert.Equal(t, test.want, got)
		})
	}
}

func TestLineReader_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLineReader(strings.NewReader("10.0.0.0/8\n")).Ranges(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestLineReader_LongLine(t *testing.T) {
	input := strings.Repeat(" ", 70000) + "10.0.0.0/30\n2001:db8::/120\n"

	got, err := NewLineReader(strings.NewReader(input)).Ranges(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.0/30", "2001:db8::/120"}, got)
}

func TestStatic(t *testing.T) {
	got, err := Static{" 10.0.0.0/8", "", "2001:db8::/32 "}.Ranges(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.0/8", "2001:db8::/32"}, got)
}
