// Package truncate implements the Content Truncator (spec §4.1): head/tail
// truncation of text with UTF-8-safe byte boundaries and continuation
// offsets.
//
// Grounded on original_source/koda/core/truncation.py, with two deliberate
// corrections over that source: truncate_head's first-line-overflow case is
// byte-boundary safe here (the Python original slices by character count,
// which is not a byte budget and is not UTF-8 safe), and truncate_tail emits
// a partial last line when even the last line overflows the budget, which
// the Python original does not implement at all.
package truncate

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/koda-agent/koda/pkg/ktypes"
)

// DefaultMaxLines and DefaultMaxBytes mirror the Python original's defaults.
const (
	DefaultMaxLines = 2000
	DefaultMaxBytes = 50 * 1024
)

// splitLines splits text into lines, preserving the exact per-line content
// (without the trailing newline) the way Python's str.splitlines() would for
// our purposes, but keeping an explicit marker of whether the input ended in
// a newline so total byte/line counts reflect the original exactly.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	// strings.Split on "a\nb\n" yields ["a","b",""]; drop a single trailing
	// empty element caused by a final newline so line counts match
	// human-visible line counts.
	if len(lines) > 0 && lines[len(lines)-1] == "" && strings.HasSuffix(text, "\n") {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// truncateToByteBudget walks backward from maxBytes until it lands on a UTF-8
// rune boundary, never splitting a code point.
func truncateToByteBudget(s string, maxBytes int) string {
	if maxBytes <= 0 {
		return ""
	}
	if len(s) <= maxBytes {
		return s
	}
	cut := maxBytes
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// tailToByteBudget is the mirror of truncateToByteBudget for suffixes: walk
// forward from len(s)-maxBytes until a rune boundary.
func tailToByteBudget(s string, maxBytes int) string {
	if maxBytes <= 0 {
		return ""
	}
	if len(s) <= maxBytes {
		return s
	}
	start := len(s) - maxBytes
	for start < len(s) && !utf8.RuneStart(s[start]) {
		start++
	}
	return s[start:]
}

// TruncateHead returns a prefix of text bounded by maxLines lines and
// maxBytes bytes, whichever is hit first.
func TruncateHead(text string, maxLines, maxBytes int) ktypes.TruncationResult {
	if maxLines <= 0 {
		maxLines = DefaultMaxLines
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	lines := splitLines(text)
	totalLines := len(lines)
	totalBytes := len(text)

	if totalLines <= maxLines && totalBytes <= maxBytes {
		return ktypes.TruncationResult{
			Content:     text,
			Truncated:   false,
			TotalLines:  totalLines,
			OutputLines: totalLines,
			TotalBytes:  totalBytes,
			OutputBytes: totalBytes,
			NextOffset:  totalLines + 1,
		}
	}

	if len(lines) > 0 && len(lines[0])+1 > maxBytes {
		return ktypes.TruncationResult{
			Content:               "",
			Truncated:             true,
			TruncatedBy:           ktypes.TruncatedHead,
			TotalLines:            totalLines,
			OutputLines:           0,
			TotalBytes:            totalBytes,
			OutputBytes:           0,
			NextOffset:            1,
			FirstLineExceedsLimit: true,
		}
	}

	var kept []string
	bytesUsed := 0
	for i, line := range lines {
		if i >= maxLines {
			break
		}
		lineBytes := len(line) + 1 // + separator
		if bytesUsed+lineBytes > maxBytes {
			break
		}
		kept = append(kept, line)
		bytesUsed += lineBytes
	}

	content := strings.Join(kept, "\n")
	// If no whole line fit but we have budget left over, emit a
	// byte-budget-bounded fragment of the first line rather than nothing.
	if len(kept) == 0 && len(lines) > 0 {
		content = truncateToByteBudget(lines[0], maxBytes)
	}

	return ktypes.TruncationResult{
		Content:     content,
		Truncated:   true,
		TruncatedBy: ktypes.TruncatedHead,
		TotalLines:  totalLines,
		OutputLines: len(kept),
		TotalBytes:  totalBytes,
		OutputBytes: len(content),
		NextOffset:  len(kept) + 1,
	}
}

// TruncateTail returns a suffix of text bounded by maxLines lines and
// maxBytes bytes.
func TruncateTail(text string, maxLines, maxBytes int) ktypes.TruncationResult {
	if maxLines <= 0 {
		maxLines = DefaultMaxLines
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	lines := splitLines(text)
	totalLines := len(lines)
	totalBytes := len(text)

	if totalLines <= maxLines && totalBytes <= maxBytes {
		return ktypes.TruncationResult{
			Content:     text,
			Truncated:   false,
			TotalLines:  totalLines,
			OutputLines: totalLines,
			TotalBytes:  totalBytes,
			OutputBytes: totalBytes,
			NextOffset:  1,
		}
	}

	lastIdx := len(lines) - 1
	if lastIdx >= 0 && len(lines[lastIdx])+1 > maxBytes {
		partial := tailToByteBudget(lines[lastIdx], maxBytes)
		return ktypes.TruncationResult{
			Content:         partial,
			Truncated:       true,
			TruncatedBy:     ktypes.TruncatedTail,
			TotalLines:      totalLines,
			OutputLines:     1,
			TotalBytes:      totalBytes,
			OutputBytes:     len(partial),
			NextOffset:      lastIdx + 1,
			LastLinePartial: true,
		}
	}

	var kept []string
	bytesUsed := 0
	startIdx := len(lines)
	for i := len(lines) - 1; i >= 0 && len(kept) < maxLines; i-- {
		line := lines[i]
		lineBytes := len(line) + 1
		if bytesUsed+lineBytes > maxBytes {
			break
		}
		kept = append([]string{line}, kept...)
		bytesUsed += lineBytes
		startIdx = i
	}

	content := strings.Join(kept, "\n")
	return ktypes.TruncationResult{
		Content:     content,
		Truncated:   true,
		TruncatedBy: ktypes.TruncatedTail,
		TotalLines:  totalLines,
		OutputLines: len(kept),
		TotalBytes:  totalBytes,
		OutputBytes: len(content),
		NextOffset:  startIdx + 1,
	}
}

// FormatMessage renders a human-readable continuation hint, adapted from
// truncation.py's format_truncation_message.
func FormatMessage(r ktypes.TruncationResult) string {
	if !r.Truncated {
		return ""
	}
	if r.TruncatedBy == ktypes.TruncatedHead {
		return "[Showing lines 1-" + strconv.Itoa(r.OutputLines) + " of " + strconv.Itoa(r.TotalLines) + ". Use offset=" + strconv.Itoa(r.NextOffset) + " to continue.]"
	}
	start := r.TotalLines - r.OutputLines + 1
	if start < 1 {
		start = 1
	}
	return "[Showing lines " + strconv.Itoa(start) + "-" + strconv.Itoa(r.TotalLines) + " of " + strconv.Itoa(r.TotalLines) + ".]"
}
