package toolio_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/koda-agent/koda/internal/toolio"
)

func TestBash_CapturesStdout(t *testing.T) {
	b := toolio.NewBashTool()
	out, err := b.Execute(context.Background(), mustJSON(t, toolio.BashInput{Command: "echo hello"}))
	require.NoError(t, err)
	require.Contains(t, out.Output, "hello")
	require.Equal(t, 0, out.Metadata["exit"])
}

func TestBash_NonZeroExitIsReportedNotErrored(t *testing.T) {
	b := toolio.NewBashTool()
	out, err := b.Execute(context.Background(), mustJSON(t, toolio.BashInput{Command: "exit 3"}))
	require.NoError(t, err)
	require.Equal(t, 3, out.Metadata["exit"])
}

func TestBash_EmptyCommandFails(t *testing.T) {
	b := toolio.NewBashTool()
	_, err := b.Execute(context.Background(), mustJSON(t, toolio.BashInput{Command: "   "}))
	require.Error(t, err)
}

func TestBash_TimeoutIsReportedInOutput(t *testing.T) {
	b := toolio.NewBashTool()
	out, err := b.Execute(context.Background(), mustJSON(t, toolio.BashInput{
		Command: "sleep 5", Timeout: 50,
	}))
	require.NoError(t, err)
	require.True(t, out.Metadata["timed_out"].(bool))
	require.Contains(t, out.Output, "timed out")
}

func TestBash_InvalidSyntaxFails(t *testing.T) {
	b := toolio.NewBashTool()
	_, err := b.Execute(context.Background(), mustJSON(t, toolio.BashInput{Command: "if ["}))
	require.Error(t, err)
}
