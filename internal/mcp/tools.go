package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/knowmem/knowmem-mcp/internal/knowledge"
)

// MCP error codes
const (
	ErrorCodeInvalidParams = -32602 // Invalid method parameters
	ErrorCodeInternalError = -32603 // Internal JSON-RPC error
	ErrorCodeValidation    = -32001 // One or more fields failed validation
	ErrorCodeDuplicate     = -32002 // Item collides with an existing one
	ErrorCodeNotFound      = -32003 // No item with the given id
)

// handleKnowledgeStore handles the knowledge_store tool invocation
func (s *Server) handleKnowledgeStore(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	req := knowledge.StoreRequest{
		Title:   getStringDefault(args, "title", ""),
		Content: getStringDefault(args, "content", ""),
		Tags:    getStringSlice(args, "tags"),
		Scope:   getStringDefault(args, "scope", ""),
	}

	result, err := s.service.Store(ctx, req)
	if err != nil {
		return nil, domainError(err)
	}

	response := map[string]interface{}{
		"success": result.Success,
		"id":      result.ID,
		"message": result.Message,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleKnowledgeUpdate handles the knowledge_update tool invocation
func (s *Server) handleKnowledgeUpdate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	id, ok := args["id"].(string)
	if !ok || id == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "id parameter is required", map[string]interface{}{
			"param":  "id",
			"reason": "missing or empty",
		})
	}

	req := knowledge.UpdateRequest{ID: id}
	if title, ok := args["title"].(string); ok {
		req.Title = &title
	}
	if content, ok := args["content"].(string); ok {
		req.Content = &content
	}
	if _, present := args["tags"]; present {
		tags := getStringSlice(args, "tags")
		req.Tags = &tags
	}
	if scope, ok := args["scope"].(string); ok {
		req.Scope = &scope
	}

	result, err := s.service.Update(ctx, req)
	if err != nil {
		return nil, domainError(err)
	}

	response := map[string]interface{}{
		"success": result.Success,
		"id":      result.ID,
		"message": result.Message,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleKnowledgeSearch handles the knowledge_search tool invocation
func (s *Server) handleKnowledgeSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	req := knowledge.SearchRequest{
		Query:       getStringDefault(args, "query", ""),
		ContextTags: getStringSlice(args, "context_tags"),
		Scope:       getStringDefault(args, "scope", ""),
	}
	if _, present := args["limit"]; present {
		limit := getIntDefault(args, "limit", 0)
		req.Limit = &limit
	}

	result, err := s.service.Search(ctx, req)
	if err != nil {
		return nil, domainError(err)
	}

	s.logger.Debug("search handled",
		slog.String("query", result.Query),
		slog.Int("total_matches", result.TotalMatches),
		slog.Int("returned", len(result.Results)))

	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to encode results", map[string]interface{}{
			"error": err.Error(),
		})
	}
	return mcp.NewToolResultText(string(encoded)), nil
}

// Helper functions

// domainError converts a service error into a protocol error with a
// stable code and the structured detail carried by the domain error.
func domainError(err error) error {
	domainErr, ok := knowledge.AsError(err)
	if !ok {
		return newMCPError(ErrorCodeInternalError, err.Error(), nil)
	}

	code := ErrorCodeInternalError
	switch domainErr.Kind {
	case knowledge.KindValidation:
		code = ErrorCodeValidation
	case knowledge.KindDuplicate:
		code = ErrorCodeDuplicate
	case knowledge.KindNotFound:
		code = ErrorCodeNotFound
	}

	return newMCPError(code, domainErr.Message, map[string]interface{}{
		"kind":   string(domainErr.Kind),
		"detail": domainErr.Detail,
	})
}

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}

// getStringSlice extracts a string array parameter, tolerating the
// []interface{} representation JSON decoding produces.
func getStringSlice(args map[string]interface{}, key string) []string {
	raw, ok := args[key].([]interface{})
	if !ok {
		if typed, ok := args[key].([]string); ok {
			return typed
		}
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
