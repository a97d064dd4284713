package mcp

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PostHog/exported-recordings-analyzer/pkg/analysis"
)

func TestNewServerRegistersTools(t *testing.T) {
	srv := NewServer(ServerDeps{})

	assert.Equal(t, []string{ToolNameAnalyze}, srv.ListToolNames())
}

func TestValidateAnalyzeInput(t *testing.T) {
	existing := filepath.Join(t.TempDir(), "recording.json")
	require.NoError(t, os.WriteFile(existing, []byte(`{}`), 0o644))

	require.NoError(t, validateAnalyzeInput(existing, ModeExport))

	assert.ErrorIs(t, validateAnalyzeInput("", ModeExport), ErrEmptyPath)
	assert.ErrorIs(t, validateAnalyzeInput(existing, "stream"), ErrUnknownMode)
	assert.ErrorIs(t, validateAnalyzeInput(filepath.Join(t.TempDir(), "absent"), ModeExport), ErrPathNotFound)
}

func TestRunAnalysisExportMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recording.json")
	doc := `{"data":{"snapshots":[[{"type":2,"timestamp":1000,"data":{}}]]}}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	result, err := runAnalysis(analysis.NewClassifier(nil), path, ModeExport)
	require.NoError(t, err)

	assert.Equal(t, 1, result.MessageTypeCounts["FullSnapshot"])
}

func TestRunAnalysisDirMode(t *testing.T) {
	dir := t.TempDir()
	line := `{"window_id":"w1","data":[{"type":4,"timestamp":1000,"data":{"href":"x"}}]}` + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.jsonl"), []byte(line), 0o644))

	result, err := runAnalysis(analysis.NewClassifier(nil), dir, ModeDir)
	require.NoError(t, err)

	assert.Equal(t, 1, result.MessageTypeCounts["Meta"])
}
