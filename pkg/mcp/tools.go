package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/PostHog/exported-recordings-analyzer/pkg/analysis"
	"github.com/PostHog/exported-recordings-analyzer/pkg/stream"
)

// ToolNameAnalyze is the recording analysis tool name.
const ToolNameAnalyze = "recording_analyze"

// Recording ingestion modes.
const (
	ModeExport = "export"
	ModeDir    = "dir"
)

// Sentinel errors for tool input validation.
var (
	// ErrEmptyPath indicates the path parameter is empty.
	ErrEmptyPath = errors.New("path parameter is required and must not be empty")
	// ErrUnknownMode indicates the mode parameter is not a known ingestion mode.
	ErrUnknownMode = errors.New("mode must be \"export\" or \"dir\"")
	// ErrPathNotFound indicates the recording path does not exist.
	ErrPathNotFound = errors.New("recording path does not exist")
)

// AnalyzeInput is the input schema for the recording_analyze tool.
type AnalyzeInput struct {
	Path string `json:"path"           jsonschema:"path to an exported recording JSON document or a directory of export files"`
	Mode string `json:"mode,omitempty" jsonschema:"ingestion mode: export (single JSON document, default) or dir (directory of newline-delimited files)"`
}

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

// handleAnalyze processes recording_analyze tool calls.
func (s *Server) handleAnalyze(
	_ context.Context,
	_ *mcpsdk.CallToolRequest,
	input AnalyzeInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	mode := input.Mode
	if mode == "" {
		mode = ModeExport
	}

	err := validateAnalyzeInput(input.Path, mode)
	if err != nil {
		return errorResult(err)
	}

	classifier := analysis.NewClassifier(s.logger)

	result, err := runAnalysis(classifier, input.Path, mode)
	if err != nil {
		return errorResult(err)
	}

	return jsonResult(result)
}

func runAnalysis(classifier *analysis.Classifier, path, mode string) (*analysis.Analysis, error) {
	if mode == ModeDir {
		return stream.NewDirDriver(classifier, nil, 0).AnalyzeDir(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open recording: %w", err)
	}
	defer f.Close()

	return stream.NewExportDriver(classifier, nil).Analyze(f)
}

func validateAnalyzeInput(path, mode string) error {
	if path == "" {
		return ErrEmptyPath
	}

	if mode != ModeExport && mode != ModeDir {
		return fmt.Errorf("%w: got %q", ErrUnknownMode, mode)
	}

	_, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrPathNotFound, path)
	}

	return nil
}

// errorResult builds a CallToolResult with isError set.
func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

// jsonResult builds a CallToolResult with JSON-encoded content.
func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, ToolOutput{Data: value}, nil
}
