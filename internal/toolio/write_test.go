package toolio_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/koda-agent/koda/internal/toolio"
)

func TestWrite_CreatesFileAndParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "out.txt")
	w := toolio.NewWriteTool()

	out, err := w.Execute(context.Background(), mustJSON(t, toolio.WriteInput{FilePath: path, Content: "hello"}))
	require.NoError(t, err)
	require.Equal(t, 5, out.Metadata["bytes"])

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "hello", string(got))
}

func TestWrite_OverwritesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	w := toolio.NewWriteTool()
	_, err := w.Execute(context.Background(), mustJSON(t, toolio.WriteInput{FilePath: path, Content: "new"}))
	require.NoError(t, err)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "new", string(got))
}

func TestWrite_RequiresFilePath(t *testing.T) {
	w := toolio.NewWriteTool()
	_, err := w.Execute(context.Background(), mustJSON(t, toolio.WriteInput{Content: "x"}))
	require.Error(t, err)
}
