package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/complykit/complykit/internal/adapters/outbound/config"
	"github.com/complykit/complykit/internal/domain"
	"github.com/complykit/complykit/internal/domain/policy"
)

// registerResources registers all complykit MCP resources on the given server.
func registerResources(s *server.MCPServer, projectPath string) {
	// 1. complykit://config - effective project configuration
	s.AddResource(
		mcplib.NewResource(
			"complykit://config",
			"Configuration",
			mcplib.WithResourceDescription("Effective .complykit.yaml configuration, defaults applied"),
			mcplib.WithMIMEType("application/json"),
		),
		handleConfigResource(projectPath),
	)

	// 2. complykit://rules - built-in policy rules
	s.AddResource(
		mcplib.NewResource(
			"complykit://rules",
			"Policy Rules",
			mcplib.WithResourceDescription("Names and descriptions of the policy rules evaluated for the project"),
			mcplib.WithMIMEType("application/json"),
		),
		handleRulesResource(projectPath),
	)

	// 3. complykit://scan-results/{package_id} - stored scan results (resource template)
	s.AddResourceTemplate(
		mcplib.NewResourceTemplate(
			"complykit://scan-results/{package_id}",
			"Stored Scan Results",
			mcplib.WithTemplateDescription("Scan results stored for a package"),
			mcplib.WithTemplateMIMEType("application/json"),
		),
		handleScanResultsResource(projectPath),
	)
}

func handleConfigResource(projectPath string) server.ResourceHandlerFunc {
	return func(_ context.Context, request mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		cfg, err := config.New().Load(projectPath)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		return jsonContents(request.Params.URI, cfg)
	}
}

type ruleInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func handleRulesResource(projectPath string) server.ResourceHandlerFunc {
	return func(_ context.Context, request mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		cfg, err := config.New().Load(projectPath)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}

		var rules []ruleInfo
		for _, def := range policy.FromConfig(cfg).Definitions() {
			rules = append(rules, ruleInfo{Name: def.Name(), Description: def.Description()})
		}
		return jsonContents(request.Params.URI, rules)
	}
}

func handleScanResultsResource(projectPath string) server.ResourceTemplateHandlerFunc {
	return func(ctx context.Context, request mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		// Populated by template matching
		raw := templateArgument(request.Params.Arguments["package_id"])
		if raw == "" {
			return nil, fmt.Errorf("package_id is required")
		}

		container, err := listScanResults(ctx, projectPath, domain.ParseIdentifier(raw))
		if err != nil {
			return nil, err
		}
		return jsonContents(request.Params.URI, container)
	}
}

// templateArgument reads a matched template variable, which arrives either
// as a string or as a list of strings.
func templateArgument(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case []string:
		if len(v) > 0 {
			return v[0]
		}
	}
	return ""
}

func jsonContents(uri string, v any) ([]mcplib.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling %s: %w", uri, err)
	}
	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
