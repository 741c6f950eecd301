package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

func TestRunner_SkipsFailedFileAndContinues(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"alice.md": resumeText(2),
		"empty.md": "   ",
		"zed.md":   resumeText(1),
		"skip.txt": "not matched",
	})
	repo := newMemResumeRepo()
	p := newTestProcessor(t, repo, &fakeEmbedder{dims: 4}, &recordingIndex{}, nil)
	var out bytes.Buffer
	r := NewRunner(p, dir, []string{"*.md"}, true, &out)

	report, err := r.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, report.Found)
	assert.Equal(t, 2, report.Succeeded)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, filepath.Join(dir, "empty.md"), report.Failed[0].Path)
	assert.ErrorIs(t, report.Failed[0].Err, ErrEmptyText)
	assert.Len(t, repo.resumes, 2)
	assert.Contains(t, out.String(), "Found 3 resumes")
	assert.Contains(t, out.String(), ">>> Processing: "+filepath.Join(dir, "alice.md"))
	assert.Contains(t, out.String(), "for alice")
}

func TestRunner_StopsOnFirstErrorWhenConfigured(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a-empty.md": "",
		"b.md":       resumeText(1),
	})
	repo := newMemResumeRepo()
	p := newTestProcessor(t, repo, &fakeEmbedder{dims: 4}, &recordingIndex{}, nil)
	r := NewRunner(p, dir, []string{"*.md"}, false, nil)

	report, err := r.Run(context.Background())

	require.Error(t, err)
	assert.Len(t, report.Failed, 1)
	assert.Equal(t, 0, report.Succeeded)
	assert.Empty(t, repo.resumes)
}

func TestDiscoverFiles_RecursiveAndDeduplicated(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.pdf":          "x",
		"team/b.docx":    "x",
		"team/deep/c.md": "x",
		"ignore.png":     "x",
	})

	files, err := DiscoverFiles(dir, []string{"**/*.pdf", "**/*.docx", "**/*.md", "*.pdf"})

	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.pdf"),
		filepath.Join(dir, "team", "b.docx"),
		filepath.Join(dir, "team", "deep", "c.md"),
	}, files)
}

func TestMatchesSource(t *testing.T) {
	dir := filepath.FromSlash("/data")
	patterns := []string{"*.pdf", "**/*.md"}
	tests := []struct {
		path string
		want bool
	}{
		{"/data/cv.pdf", true},
		{"/data/cv.md", true},
		{"/data/sub/deep/cv.md", true},
		{"/data/sub/cv.pdf", false},
		{"/data/cv.docx", false},
		{"/elsewhere/cv.pdf", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchesSource(dir, patterns, filepath.FromSlash(tt.path)))
		})
	}
}
