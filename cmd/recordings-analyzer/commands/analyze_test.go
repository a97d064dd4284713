package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleExportDoc = `{"data":{"snapshots":[
	[{"type":2,"timestamp":1000,"data":{}}],
	[{"type":3,"timestamp":2000,"data":{"source":3,"id":1,"x":0,"y":10}}]
]}}`

func writeRecording(t *testing.T, doc string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "recording.json")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	return path
}

func TestAnalyzeCommand(t *testing.T) {
	path := writeRecording(t, sampleExportDoc)

	cmd := NewAnalyzeCommand()

	var out bytes.Buffer

	cmd.SetOut(&out)
	cmd.SetArgs([]string{path})
	require.NoError(t, cmd.Execute())

	report := out.String()
	assert.Contains(t, report, "Message types")
	assert.Contains(t, report, "FullSnapshot")
	assert.Contains(t, report, "Scroll")
	assert.Contains(t, report, "duration: 1s")
}

func TestAnalyzeCommandWritesRawSidecar(t *testing.T) {
	path := writeRecording(t, sampleExportDoc)

	cmd := NewAnalyzeCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{path, "--raw"})
	require.NoError(t, cmd.Execute())

	sidecar := path + ".decompressed.json"
	data, err := os.ReadFile(sidecar)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"timestamp": 1000`)
}

func TestAnalyzeCommandWritesPlot(t *testing.T) {
	doc := `{"data":{"snapshots":[[
		{"type":3,"timestamp":1000,"data":{"source":0,"adds":[{"node":{"type":1,"tagName":"div"}}]}}
	]]}}`
	path := writeRecording(t, doc)
	plotPath := filepath.Join(t.TempDir(), "sizes.html")

	cmd := NewAnalyzeCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{path, "--plot", plotPath})
	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile(plotPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Mutation addition sizes")
}

func TestAnalyzeCommandMissingFile(t *testing.T) {
	cmd := NewAnalyzeCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{filepath.Join(t.TempDir(), "absent.json")})

	require.Error(t, cmd.Execute())
}

func TestScanCommand(t *testing.T) {
	dir := t.TempDir()

	lines := `{"window_id":"w1","data":[{"type":2,"timestamp":1000,"data":{}}]}` + "\n" +
		`{"window_id":"w1","data":[{"type":3,"timestamp":2`

	require.NoError(t, os.WriteFile(filepath.Join(dir, "2023-01-01.jsonl"), []byte(lines), 0o644))

	cmd := NewScanCommand()

	var out bytes.Buffer

	cmd.SetOut(&out)
	cmd.SetArgs([]string{dir})
	require.NoError(t, cmd.Execute())

	report := out.String()
	assert.Contains(t, report, "FullSnapshot")
	assert.Contains(t, report, "Unterminated lines (1)")
	assert.Contains(t, report, "2023-01-01.jsonl")
}
