package toolio

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/koda-agent/koda/internal/kerr"
	"github.com/koda-agent/koda/internal/truncate"
)

// ReadInput is the read adapter's argument shape, adapted from the teacher's
// tool.ReadInput.
type ReadInput struct {
	FilePath string `json:"file_path"`
	Offset   int    `json:"offset,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

// ReadTool reads a file from the local filesystem, shaping long output
// through the Content Truncator rather than the teacher's own ad hoc
// line-count-then-byte-clamp loop.
type ReadTool struct{}

// NewReadTool constructs a read adapter. It carries no state of its own: the
// working directory, if any, is the caller's concern via FilePath.
func NewReadTool() *ReadTool { return &ReadTool{} }

func (t *ReadTool) Execute(ctx context.Context, input json.RawMessage) (*Result, error) {
	var params ReadInput
	if err := json.Unmarshal(input, &params); err != nil {
		return nil, fmt.Errorf("%w: invalid read input: %v", kerr.ErrToolFailed, err)
	}
	if params.Limit <= 0 {
		params.Limit = truncate.DefaultMaxLines
	}

	if shouldBlockEnvFile(params.FilePath) {
		return nil, fmt.Errorf("%w: blocked from reading %s", kerr.ErrToolFailed, params.FilePath)
	}

	info, err := os.Stat(params.FilePath)
	if err != nil {
		return nil, fmt.Errorf("%w: file not found: %s", kerr.ErrToolFailed, params.FilePath)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: path is a directory, not a file: %s", kerr.ErrToolFailed, params.FilePath)
	}

	if isImageFile(params.FilePath) {
		return readImage(params.FilePath)
	}
	if isBinaryFile(params.FilePath) {
		return nil, fmt.Errorf("%w: file appears to be binary", kerr.ErrToolFailed)
	}

	raw, err := os.ReadFile(params.FilePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerr.ErrToolFailed, err)
	}

	allLines := strings.Split(string(raw), "\n")
	if len(allLines) > 0 && allLines[len(allLines)-1] == "" && strings.HasSuffix(string(raw), "\n") {
		allLines = allLines[:len(allLines)-1]
	}
	totalLines := len(allLines)

	startIdx := 0
	if params.Offset > 1 {
		startIdx = params.Offset - 1
	}
	if startIdx > totalLines {
		startIdx = totalLines
	}

	windowed := make([]string, 0, len(allLines)-startIdx)
	for _, line := range allLines[startIdx:] {
		if len(line) > 2000 {
			line = line[:2000] + "..."
		}
		windowed = append(windowed, line)
	}

	tr := truncate.TruncateHead(strings.Join(windowed, "\n"), params.Limit, truncate.DefaultMaxBytes)

	kept := strings.Split(tr.Content, "\n")
	if tr.Content == "" {
		kept = nil
	}
	numbered := make([]string, 0, len(kept))
	for i, line := range kept {
		numbered = append(numbered, fmt.Sprintf("%05d| %s", startIdx+i+1, line))
	}

	var sb strings.Builder
	sb.WriteString("<file>\n")
	sb.WriteString(strings.Join(numbered, "\n"))

	lastReadLine := startIdx + len(kept)
	if lastReadLine < totalLines {
		sb.WriteString(fmt.Sprintf("\n\n(File has more lines. Use 'offset' parameter to read beyond line %d)", lastReadLine))
	} else {
		sb.WriteString(fmt.Sprintf("\n\n(End of file - total %d lines)", totalLines))
	}
	sb.WriteString("\n</file>")

	return &Result{
		Title:  fmt.Sprintf("Read %s", filepath.Base(params.FilePath)),
		Output: sb.String(),
		Metadata: map[string]any{
			"file":        params.FilePath,
			"lines":       len(kept),
			"total_lines": totalLines,
		},
	}, nil
}

func readImage(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerr.ErrToolFailed, err)
	}
	mediaType := detectMediaType(path)
	dataURL := fmt.Sprintf("data:%s;base64,%s", mediaType, base64.StdEncoding.EncodeToString(data))
	return &Result{
		Title:  fmt.Sprintf("Read %s", filepath.Base(path)),
		Output: "(Image file)",
		Attachment: &Attachment{
			Filename:  filepath.Base(path),
			MediaType: mediaType,
			URL:       dataURL,
		},
	}, nil
}

func isImageFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg", ".png", ".gif", ".bmp", ".webp":
		return true
	default:
		return false
	}
}

func isBinaryFile(path string) bool {
	file, err := os.Open(path)
	if err != nil {
		return false
	}
	defer file.Close()

	buf := make([]byte, 8000)
	n, _ := file.Read(buf)
	if n == 0 {
		return false
	}

	for i := 0; i < n; i++ {
		if buf[i] == 0 {
			return true
		}
	}

	nonPrintable := 0
	for i := 0; i < n; i++ {
		if buf[i] < 32 && buf[i] != '\n' && buf[i] != '\r' && buf[i] != '\t' {
			nonPrintable++
		}
	}
	return float64(nonPrintable)/float64(n) > 0.3
}

func detectMediaType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".bmp":
		return "image/bmp"
	case ".webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}

// shouldBlockEnvFile blocks any path containing ".env", except the
// .env.sample/.example whitelist suffixes.
func shouldBlockEnvFile(filePath string) bool {
	for _, w := range []string{".env.sample", ".example"} {
		if strings.HasSuffix(filePath, w) {
			return false
		}
	}
	return strings.Contains(filePath, ".env")
}
