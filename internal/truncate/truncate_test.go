package truncate_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"

	"github.com/koda-agent/koda/internal/truncate"
)

func TestTruncateHead_RoundTripWithinLimits(t *testing.T) {
	text := "line one\nline two\nline three"
	r := truncate.TruncateHead(text, 10, 1024)
	require.False(t, r.Truncated)
	require.Equal(t, text, r.Content)
	require.Equal(t, 3, r.TotalLines)
	require.Equal(t, 3, r.OutputLines)
}

func TestTruncateHead_LineLimit(t *testing.T) {
	lines := make([]string, 10)
	for i := range lines {
		lines[i] = "line"
	}
	text := strings.Join(lines, "\n")

	r := truncate.TruncateHead(text, 3, 1024)
	require.True(t, r.Truncated)
	require.Equal(t, 3, r.OutputLines)
	require.Equal(t, 4, r.NextOffset)
	require.Equal(t, 10, r.TotalLines)
}

func TestTruncateHead_ByteLimit(t *testing.T) {
	text := "aaaaa\nbbbbb\nccccc\nddddd"
	// Each line is 5 bytes + separator; budget for exactly two lines.
	r := truncate.TruncateHead(text, 100, 12)
	require.True(t, r.Truncated)
	require.Equal(t, 2, r.OutputLines)
	require.Equal(t, "aaaaa\nbbbbb", r.Content)
}

func TestTruncateHead_FirstLineExceedsLimit(t *testing.T) {
	text := strings.Repeat("x", 200) + "\nshort"
	r := truncate.TruncateHead(text, 100, 10)
	require.True(t, r.Truncated)
	require.True(t, r.FirstLineExceedsLimit)
	require.Equal(t, "", r.Content)
	require.Equal(t, 1, r.NextOffset)
}

func TestTruncateHead_NeverSplitsUTF8CodePoint(t *testing.T) {
	// Multi-byte rune (3 bytes each) right at the boundary.
	text := strings.Repeat("世", 20)
	r := truncate.TruncateHead(text, 1, 10)
	require.True(t, utf8.ValidString(r.Content))
}

func TestTruncateTail_WithinLimits(t *testing.T) {
	text := "a\nb\nc"
	r := truncate.TruncateTail(text, 10, 1024)
	require.False(t, r.Truncated)
	require.Equal(t, text, r.Content)
}

func TestTruncateTail_LineLimit(t *testing.T) {
	lines := []string{"1", "2", "3", "4", "5"}
	text := strings.Join(lines, "\n")
	r := truncate.TruncateTail(text, 2, 1024)
	require.True(t, r.Truncated)
	require.Equal(t, "4\n5", r.Content)
	require.Equal(t, 4, r.NextOffset)
}

func TestTruncateTail_LastLinePartial(t *testing.T) {
	text := "short\n" + strings.Repeat("y", 200)
	r := truncate.TruncateTail(text, 100, 10)
	require.True(t, r.Truncated)
	require.True(t, r.LastLinePartial)
	require.NotEmpty(t, r.Content)
	require.LessOrEqual(t, len(r.Content), 10)
}
