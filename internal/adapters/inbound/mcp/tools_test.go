package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-logr/logr"
	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/complykit/complykit/internal/domain"
)

const fixtureDir = "../../../../testdata/analyzer"

func callTool(t *testing.T, handler func(context.Context, mcplib.CallToolRequest) (*mcplib.CallToolResult, error), args map[string]any) *mcplib.CallToolResult {
	t.Helper()
	var req mcplib.CallToolRequest
	req.Params.Arguments = args
	result, err := handler(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

func text(t *testing.T, result *mcplib.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	content, ok := result.Content[0].(mcplib.TextContent)
	require.True(t, ok)
	return content.Text
}

// mergedProject merges the fixtures into a temp project and returns its path.
func mergedProject(t *testing.T) string {
	t.Helper()
	projectPath := t.TempDir()
	fixtures, err := filepath.Abs(fixtureDir)
	require.NoError(t, err)

	result := callTool(t, handleMerge(projectPath, logr.Discard()), map[string]any{
		"inputs": fixtures,
		"output": "merged.json",
	})
	require.False(t, result.IsError, text(t, result))
	return projectPath
}

func TestHandleMerge_WritesResult(t *testing.T) {
	projectPath := mergedProject(t)

	_, err := os.Stat(filepath.Join(projectPath, "merged.json"))
	require.NoError(t, err)
}

func TestHandleMerge_RequiresInputs(t *testing.T) {
	result := callTool(t, handleMerge(t.TempDir(), logr.Discard()), map[string]any{})
	assert.True(t, result.IsError)
}

func TestHandleEvaluate_ReturnsReport(t *testing.T) {
	projectPath := mergedProject(t)

	result := callTool(t, handleEvaluate(projectPath, logr.Discard()), map[string]any{"result": "merged.json"})
	require.False(t, result.IsError, text(t, result))

	var report domain.EvaluationReport
	require.NoError(t, json.Unmarshal([]byte(text(t, result)), &report))
	assert.Equal(t, 1, report.Summary.Errors)
	assert.True(t, report.Failed())
}

func TestHandleEvaluate_MissingResult(t *testing.T) {
	result := callTool(t, handleEvaluate(t.TempDir(), logr.Discard()), map[string]any{"result": "nope.yml"})
	assert.True(t, result.IsError)
	assert.Contains(t, text(t, result), "evaluation aborted")
}

func TestHandleIssues_FiltersSeverity(t *testing.T) {
	projectPath := mergedProject(t)

	result := callTool(t, handleIssues(projectPath), map[string]any{"result": "merged.json", "min_severity": "ERROR"})
	require.False(t, result.IsError, text(t, result))
	assert.Contains(t, text(t, result), "Could not resolve the POM")
	assert.NotContains(t, text(t, result), "Odd Public License")
}

func TestHandleIssues_InvalidSeverity(t *testing.T) {
	result := callTool(t, handleIssues(t.TempDir()), map[string]any{"result": "merged.json", "min_severity": "FATAL"})
	assert.True(t, result.IsError)
}

func TestHandleListScanResults_Empty(t *testing.T) {
	projectPath := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(projectPath, ".complykit.yaml"), []byte("storage:\n  type: memory\n"), 0o644))

	result := callTool(t, handleListScanResults(projectPath), map[string]any{"package_id": "Maven:org.example:lib:1.2.0"})
	require.False(t, result.IsError, text(t, result))
	assert.Contains(t, text(t, result), "Maven:org.example:lib:1.2.0")
}

func TestTemplateArgument(t *testing.T) {
	assert.Equal(t, "a", templateArgument("a"))
	assert.Equal(t, "b", templateArgument([]string{"b", "c"}))
	assert.Empty(t, templateArgument(nil))
}
