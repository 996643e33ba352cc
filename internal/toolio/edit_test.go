package toolio_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/koda-agent/koda/internal/toolio"
)

func TestEdit_ExactSingleMatch(t *testing.T) {
	path := writeTemp(t, "f.go", "package main\n\nfunc old() {}\n")
	e := toolio.NewEditTool()

	out, err := e.Execute(context.Background(), mustJSON(t, toolio.EditInput{
		FilePath: path, OldString: "func old()", NewString: "func new()",
	}))
	require.NoError(t, err)
	require.Contains(t, out.Output, "Replaced 1 occurrence")

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(got), "func new()")
}

func TestEdit_AmbiguousMatchWithoutReplaceAllFails(t *testing.T) {
	path := writeTemp(t, "f.go", "x := 1\nx := 1\n")
	e := toolio.NewEditTool()

	_, err := e.Execute(context.Background(), mustJSON(t, toolio.EditInput{
		FilePath: path, OldString: "x := 1", NewString: "x := 2",
	}))
	require.Error(t, err)
}

func TestEdit_ReplaceAllReplacesEveryOccurrence(t *testing.T) {
	path := writeTemp(t, "f.go", "x := 1\nx := 1\n")
	e := toolio.NewEditTool()

	out, err := e.Execute(context.Background(), mustJSON(t, toolio.EditInput{
		FilePath: path, OldString: "x := 1", NewString: "x := 2", ReplaceAll: true,
	}))
	require.NoError(t, err)
	require.Contains(t, out.Output, "Replaced 2 occurrence(s)")

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "x := 2\nx := 2\n", string(got))
}

func TestEdit_NormalizedLineEndingFallback(t *testing.T) {
	path := writeTemp(t, "f.go", "line1\r\nline2\r\n")
	e := toolio.NewEditTool()

	out, err := e.Execute(context.Background(), mustJSON(t, toolio.EditInput{
		FilePath: path, OldString: "line1\nline2", NewString: "replaced",
	}))
	require.NoError(t, err)
	require.Contains(t, out.Output, "normalization")
}

func TestEdit_FuzzyFallbackOnNearMatch(t *testing.T) {
	path := writeTemp(t, "f.go", "func computeTotal(x int) int {\n\treturn x * 2\n}\n")
	e := toolio.NewEditTool()

	out, err := e.Execute(context.Background(), mustJSON(t, toolio.EditInput{
		FilePath:  path,
		OldString: "func computeTotal(x  int) int {",
		NewString: "func computeTotal(y int) int {",
	}))
	require.NoError(t, err)
	require.Contains(t, out.Output, "Replaced 1 occurrence")
}

func TestEdit_NoMatchFails(t *testing.T) {
	path := writeTemp(t, "f.go", "package main\n")
	e := toolio.NewEditTool()

	_, err := e.Execute(context.Background(), mustJSON(t, toolio.EditInput{
		FilePath: path, OldString: "totally absent content here", NewString: "x",
	}))
	require.Error(t, err)
}

func TestEdit_RejectsIdenticalOldAndNew(t *testing.T) {
	path := writeTemp(t, "f.go", "package main\n")
	e := toolio.NewEditTool()

	_, err := e.Execute(context.Background(), mustJSON(t, toolio.EditInput{
		FilePath: path, OldString: "same", NewString: "same",
	}))
	require.Error(t, err)
}

func TestEdit_MetadataCarriesDiff(t *testing.T) {
	path := writeTemp(t, "f.go", "package main\n\nfunc old() {}\n")
	e := toolio.NewEditTool()

	out, err := e.Execute(context.Background(), mustJSON(t, toolio.EditInput{
		FilePath: path, OldString: "func old()", NewString: "func renamed()",
	}))
	require.NoError(t, err)
	diff, ok := out.Metadata["diff"].(string)
	require.True(t, ok)
	require.NotEmpty(t, diff)
}
