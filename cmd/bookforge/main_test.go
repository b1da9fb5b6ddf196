package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maauso/bookforge/internal/project"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestDetectCommand(t *testing.T) {
	src := filepath.Join(t.TempDir(), "book.md")
	require.NoError(t, os.WriteFile(src, []byte("# One\n\nFirst.\n\n# Two\n\nSecond.\n"), 0600))

	out, err := execute(t, "detect", src, "--strategy", "markdown")
	require.NoError(t, err)
	assert.Contains(t, out, "LINE")
	assert.Contains(t, out, "One")
	assert.Contains(t, out, "Two")
	assert.Contains(t, out, "markdown")

	_, err = execute(t, "detect", src, "--strategy", "bogus")
	assert.Error(t, err)
}

func TestChunksCommand(t *testing.T) {
	dir := t.TempDir()
	p, err := project.Open(dir)
	require.NoError(t, err)
	require.NoError(t, p.SaveIndex([]project.IndexEntry{
		{ID: 0, ChapterIndex: 0, AudioFile: project.ChunkFileName(0), Text: "Hello there.", EstimatedSeconds: 30},
		{ID: 1, ChapterIndex: 0, AudioFile: project.ChunkFileName(1), Text: "General Kenobi.", EstimatedSeconds: 30},
	}))
	require.NoError(t, os.WriteFile(p.ChunkPath(project.ChunkFileName(0)), []byte("RIFF"), 0600))

	out, err := execute(t, "chunks", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "ok")
	assert.Contains(t, out, "missing")
	assert.Contains(t, out, "2 chunks, about 1 minutes")
}

func TestReviewRejectsBadChunkID(t *testing.T) {
	_, err := execute(t, "review", t.TempDir(), "abc")
	assert.ErrorContains(t, err, "invalid chunk id")
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short", preview("short", 10))
	assert.Equal(t, "abcdefg...", preview("abcdefghijklmnop", 10))
}
