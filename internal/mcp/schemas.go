package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/knowmem/knowmem-mcp/internal/validate"
)

// knowledgeStoreTool returns the tool definition for knowledge_store
func knowledgeStoreTool() mcp.Tool {
	return mcp.Tool{
		Name:        "knowledge_store",
		Description: "Save a short piece of knowledge for later retrieval",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"title": map[string]interface{}{
					"type":        "string",
					"description": "Short descriptive title (10-100 characters)",
					"minLength":   validate.TitleMinLen,
					"maxLength":   validate.TitleMaxLen,
				},
				"content": map[string]interface{}{
					"type":        "string",
					"description": "Knowledge body (50-5000 characters)",
					"minLength":   validate.ContentMinLen,
					"maxLength":   validate.ContentMaxLen,
				},
				"tags": map[string]interface{}{
					"type":        "array",
					"description": "Up to 10 lowercase tags (letters, digits, hyphens)",
					"items": map[string]interface{}{
						"type": "string",
					},
					"maxItems": validate.MaxTags,
				},
				"scope": map[string]interface{}{
					"type":        "string",
					"description": "Visibility scope: global (default), project:<name>, or repo:<name>",
					"default":     "global",
				},
			},
			Required: []string{"title", "content"},
		},
	}
}

// knowledgeUpdateTool returns the tool definition for knowledge_update
func knowledgeUpdateTool() mcp.Tool {
	return mcp.Tool{
		Name:        "knowledge_update",
		Description: "Modify an existing knowledge item; at least one field must be supplied",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "string",
					"description": "Identifier returned by knowledge_store",
				},
				"title": map[string]interface{}{
					"type":        "string",
					"description": "Replacement title (10-100 characters)",
				},
				"content": map[string]interface{}{
					"type":        "string",
					"description": "Replacement content (50-5000 characters)",
				},
				"tags": map[string]interface{}{
					"type":        "array",
					"description": "Replacement tag set",
					"items": map[string]interface{}{
						"type": "string",
					},
					"maxItems": validate.MaxTags,
				},
				"scope": map[string]interface{}{
					"type":        "string",
					"description": "Replacement scope",
				},
			},
			Required: []string{"id"},
		},
	}
}

// knowledgeSearchTool returns the tool definition for knowledge_search
func knowledgeSearchTool() mcp.Tool {
	return mcp.Tool{
		Name:        "knowledge_search",
		Description: "Search stored knowledge with full-text relevance ranking",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search terms (3-500 characters)",
					"minLength":   validate.QueryMinLen,
					"maxLength":   validate.QueryMaxLen,
				},
				"context_tags": map[string]interface{}{
					"type":        "array",
					"description": "Tags describing the current context; overlapping results rank higher",
					"items": map[string]interface{}{
						"type": "string",
					},
				},
				"scope": map[string]interface{}{
					"type":        "string",
					"description": "Restrict results to this scope plus global",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results (1-20)",
					"default":     validate.DefaultLimit,
					"minimum":     1,
					"maximum":     validate.MaxLimit,
				},
			},
			Required: []string{"query"},
		},
	}
}
