package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-logr/logr"
	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/complykit/complykit/internal/adapters/outbound/config"
	"github.com/complykit/complykit/internal/adapters/outbound/gitinfo"
	"github.com/complykit/complykit/internal/adapters/outbound/license"
	"github.com/complykit/complykit/internal/adapters/outbound/resultfile"
	"github.com/complykit/complykit/internal/adapters/outbound/storage"
	"github.com/complykit/complykit/internal/application"
	"github.com/complykit/complykit/internal/domain"
)

// registerTools registers all complykit MCP tools on the given server.
func registerTools(s *server.MCPServer, projectPath string, log logr.Logger) {
	// 1. complykit_merge
	s.AddTool(
		mcplib.NewTool("complykit_merge",
			mcplib.WithDescription("Merge per-project analyzer result files into one dependency graph and write it to a file"),
			mcplib.WithString("inputs",
				mcplib.Required(),
				mcplib.Description("Comma-separated analyzer result files or directories"),
			),
			mcplib.WithString("output",
				mcplib.Description("Merged result file (default: analyzer-result.yml)"),
			),
		),
		handleMerge(projectPath, log),
	)

	// 2. complykit_evaluate
	s.AddTool(
		mcplib.NewTool("complykit_evaluate",
			mcplib.WithDescription("Evaluate the configured compliance policy against a merged analyzer result and return the report as JSON"),
			mcplib.WithString("result",
				mcplib.Required(),
				mcplib.Description("Path to the merged analyzer result"),
			),
		),
		handleEvaluate(projectPath, log),
	)

	// 3. complykit_issues
	s.AddTool(
		mcplib.NewTool("complykit_issues",
			mcplib.WithDescription("Returns the issues recorded in a merged analyzer result, per package"),
			mcplib.WithString("result",
				mcplib.Required(),
				mcplib.Description("Path to the merged analyzer result"),
			),
			mcplib.WithString("min_severity",
				mcplib.Description("Lowest severity to include: HINT, WARNING or ERROR (default: HINT)"),
			),
		),
		handleIssues(projectPath),
	)

	// 4. complykit_list_scan_results
	s.AddTool(
		mcplib.NewTool("complykit_list_scan_results",
			mcplib.WithDescription("Returns the stored scan results of a package"),
			mcplib.WithString("package_id",
				mcplib.Required(),
				mcplib.Description("Package coordinates as type:namespace:name:version"),
			),
		),
		handleListScanResults(projectPath),
	)
}

func handleMerge(projectPath string, log logr.Logger) server.ToolHandlerFunc {
	return func(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		inputs, err := request.RequireString("inputs")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		output := resolve(projectPath, request.GetString("output", "analyzer-result.yml"))

		cfg, err := config.New().Load(projectPath)
		if err != nil {
			return errorResult(fmt.Sprintf("loading config: %v", err)), nil
		}
		processor, err := license.New(cfg.LicenseMappings)
		if err != nil {
			return errorResult(err.Error()), nil
		}

		var paths []string
		for _, p := range strings.Split(inputs, ",") {
			if p = strings.TrimSpace(p); p != "" {
				paths = append(paths, resolve(projectPath, p))
			}
		}

		store := resultfile.New()
		result, err := application.NewMergeService(store, processor, log).Merge(paths)
		if err != nil {
			return errorResult(fmt.Sprintf("merge failed: %v", err)), nil
		}
		if err := store.WriteAnalyzerResult(output, result); err != nil {
			return errorResult(fmt.Sprintf("writing %s: %v", output, err)), nil
		}

		return jsonResult(map[string]any{
			"output":   output,
			"projects": len(result.Projects),
			"packages": len(result.Packages),
			"issues":   len(result.Issues),
		})
	}
}

func handleEvaluate(projectPath string, log logr.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		resultPath, err := request.RequireString("result")
		if err != nil {
			return errorResult(err.Error()), nil
		}

		svc := application.NewEvaluateService(
			resultfile.New(),
			config.New(),
			gitinfo.New(),
			application.WithLicenseValidator(license.IsSPDXLicense),
			application.WithLogger(log),
		)
		report, err := svc.Evaluate(ctx, resolve(projectPath, resultPath), projectPath)
		if err != nil {
			return errorResult(fmt.Sprintf("evaluation aborted: %v", err)), nil
		}
		return jsonResult(report)
	}
}

func handleIssues(projectPath string) server.ToolHandlerFunc {
	return func(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		resultPath, err := request.RequireString("result")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		min, err := domain.ParseSeverity(request.GetString("min_severity", "HINT"))
		if err != nil {
			return errorResult(err.Error()), nil
		}

		issues, err := application.NewIssueService(resultfile.New()).Collect(resolve(projectPath, resultPath), min)
		if err != nil {
			return errorResult(err.Error()), nil
		}
		if len(issues) == 0 {
			return textResult("No issues found."), nil
		}
		return jsonResult(issues)
	}
}

func handleListScanResults(projectPath string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		raw, err := request.RequireString("package_id")
		if err != nil {
			return errorResult(err.Error()), nil
		}

		container, err := listScanResults(ctx, projectPath, domain.ParseIdentifier(raw))
		if err != nil {
			return errorResult(err.Error()), nil
		}
		return jsonResult(container)
	}
}

func listScanResults(ctx context.Context, projectPath string, id domain.Identifier) (domain.ScanResultContainer, error) {
	cfg, err := config.New().Load(projectPath)
	if err != nil {
		return domain.ScanResultContainer{}, fmt.Errorf("loading config: %w", err)
	}
	store, err := storage.New(cfg.Storage, projectPath)
	if err != nil {
		return domain.ScanResultContainer{}, err
	}
	return application.NewScanResultService(store).List(ctx, id)
}

func resolve(projectPath, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(projectPath, path)
}

// jsonResult marshals v to JSON and returns it as a text content result.
func jsonResult(v interface{}) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
	}, nil
}

// textResult returns a plain text content result.
func textResult(text string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(text)},
	}
}

// errorResult returns a tool result that indicates an error occurred.
func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}
