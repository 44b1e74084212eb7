package mcp

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knowmem/knowmem-mcp/internal/config"
	"github.com/knowmem/knowmem-mcp/internal/knowledge"
)

func setupTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := &config.Config{
		DBPath:      filepath.Join(t.TempDir(), "knowledge.db"),
		BusyTimeout: time.Second,
		CacheSize:   16,
		CacheTTL:    time.Minute,
	}
	srv, err := NewServer(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Close() })
	return srv
}

func callRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return text.Text
}

func storeArgs() map[string]interface{} {
	return map[string]interface{}{
		"title":   "Configuring the staging database",
		"content": "The staging database lives behind the bastion host and every connection must go through the tunnel script in the ops directory.",
		"tags":    []interface{}{"staging", "database"},
		"scope":   "project:ops",
	}
}

func TestHandleKnowledgeStore(t *testing.T) {
	srv := setupTestServer(t)
	ctx := context.Background()

	result, err := srv.handleKnowledgeStore(ctx, callRequest("knowledge_store", storeArgs()))
	require.NoError(t, err)

	var response struct {
		Success bool   `json:"success"`
		ID      string `json:"id"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &response))
	assert.True(t, response.Success)
	assert.NotEmpty(t, response.ID)
}

func TestHandleKnowledgeStoreValidation(t *testing.T) {
	srv := setupTestServer(t)

	args := storeArgs()
	args["title"] = "short"
	_, err := srv.handleKnowledgeStore(context.Background(), callRequest("knowledge_store", args))
	require.Error(t, err)

	mcpErr, ok := err.(*MCPError)
	require.True(t, ok)
	assert.Equal(t, ErrorCodeValidation, mcpErr.Code)

	data, ok := mcpErr.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, string(knowledge.KindValidation), data["kind"])
}

func TestHandleKnowledgeStoreDuplicate(t *testing.T) {
	srv := setupTestServer(t)
	ctx := context.Background()

	_, err := srv.handleKnowledgeStore(ctx, callRequest("knowledge_store", storeArgs()))
	require.NoError(t, err)

	_, err = srv.handleKnowledgeStore(ctx, callRequest("knowledge_store", storeArgs()))
	require.Error(t, err)

	mcpErr, ok := err.(*MCPError)
	require.True(t, ok)
	assert.Equal(t, ErrorCodeDuplicate, mcpErr.Code)
}

func TestHandleKnowledgeUpdate(t *testing.T) {
	srv := setupTestServer(t)
	ctx := context.Background()

	result, err := srv.handleKnowledgeStore(ctx, callRequest("knowledge_store", storeArgs()))
	require.NoError(t, err)
	var stored struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &stored))

	updateResult, err := srv.handleKnowledgeUpdate(ctx, callRequest("knowledge_update", map[string]interface{}{
		"id":    stored.ID,
		"title": "Connecting to the staging database",
	}))
	require.NoError(t, err)

	var response struct {
		Success bool   `json:"success"`
		ID      string `json:"id"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, updateResult)), &response))
	assert.True(t, response.Success)
	assert.Equal(t, stored.ID, response.ID)
}

func TestHandleKnowledgeUpdateMissingID(t *testing.T) {
	srv := setupTestServer(t)

	_, err := srv.handleKnowledgeUpdate(context.Background(), callRequest("knowledge_update", map[string]interface{}{
		"title": "A title without any id",
	}))
	require.Error(t, err)

	mcpErr, ok := err.(*MCPError)
	require.True(t, ok)
	assert.Equal(t, ErrorCodeInvalidParams, mcpErr.Code)
}

func TestHandleKnowledgeUpdateNotFound(t *testing.T) {
	srv := setupTestServer(t)

	_, err := srv.handleKnowledgeUpdate(context.Background(), callRequest("knowledge_update", map[string]interface{}{
		"id":    "no-such-item",
		"title": "A replacement title value",
	}))
	require.Error(t, err)

	mcpErr, ok := err.(*MCPError)
	require.True(t, ok)
	assert.Equal(t, ErrorCodeNotFound, mcpErr.Code)
}

func TestHandleKnowledgeSearch(t *testing.T) {
	srv := setupTestServer(t)
	ctx := context.Background()

	_, err := srv.handleKnowledgeStore(ctx, callRequest("knowledge_store", storeArgs()))
	require.NoError(t, err)

	result, err := srv.handleKnowledgeSearch(ctx, callRequest("knowledge_search", map[string]interface{}{
		"query":        "staging database",
		"context_tags": []interface{}{"staging"},
		"limit":        float64(5),
	}))
	require.NoError(t, err)

	var response struct {
		Results []struct {
			ID    string  `json:"id"`
			Title string  `json:"title"`
			Score float64 `json:"score"`
		} `json:"results"`
		TotalMatches int    `json:"totalMatches"`
		Query        string `json:"query"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &response))
	require.NotEmpty(t, response.Results)
	assert.Equal(t, 1, response.TotalMatches)
	assert.Equal(t, "staging database", response.Query)
	assert.Greater(t, response.Results[0].Score, 0.0)
}

func TestHandleKnowledgeSearchValidation(t *testing.T) {
	srv := setupTestServer(t)

	_, err := srv.handleKnowledgeSearch(context.Background(), callRequest("knowledge_search", map[string]interface{}{
		"query": "ab",
	}))
	require.Error(t, err)

	mcpErr, ok := err.(*MCPError)
	require.True(t, ok)
	assert.Equal(t, ErrorCodeValidation, mcpErr.Code)
}

func TestToolSchemas(t *testing.T) {
	store := knowledgeStoreTool()
	assert.Equal(t, "knowledge_store", store.Name)
	assert.ElementsMatch(t, []string{"title", "content"}, store.InputSchema.Required)

	update := knowledgeUpdateTool()
	assert.Equal(t, "knowledge_update", update.Name)
	assert.Equal(t, []string{"id"}, update.InputSchema.Required)

	search := knowledgeSearchTool()
	assert.Equal(t, "knowledge_search", search.Name)
	assert.Equal(t, []string{"query"}, search.InputSchema.Required)
}
