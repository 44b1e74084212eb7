// Package mcp implements the Model Context Protocol (MCP) server for KnowMem.
//
// The MCP server exposes three tools to AI coding assistants:
//   - knowledge_store: Save a new knowledge item
//   - knowledge_update: Modify an existing knowledge item
//   - knowledge_search: Retrieve relevant knowledge with full-text search
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport:
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// The server communicates with MCP clients via standard input/output.
// Logging goes to stderr because stdout is reserved for the protocol.
//
// # Basic Usage
//
// The MCP server is typically started via the serve command:
//
//	knowmem serve
//
// # Tool: knowledge_store
//
//	Request:
//	{
//	  "name": "knowledge_store",
//	  "arguments": {
//	    "title": "Rotating service API keys",
//	    "content": "Rotate every service API key on a ninety day schedule...",
//	    "tags": ["security", "api-keys"],
//	    "scope": "project:vault"
//	  }
//	}
//
//	Response:
//	{
//	  "success": true,
//	  "id": "9f0c2a4e-...",
//	  "message": "knowledge stored"
//	}
//
// # Tool: knowledge_search
//
//	Request:
//	{
//	  "name": "knowledge_search",
//	  "arguments": {
//	    "query": "api key rotation",
//	    "context_tags": ["security"],
//	    "scope": "project:vault",
//	    "limit": 5
//	  }
//	}
//
//	Response:
//	{
//	  "results": [
//	    {"id": "...", "title": "...", "content": "...", "tags": [...], "scope": "...", "score": 2.431}
//	  ],
//	  "totalMatches": 12,
//	  "query": "api key rotation"
//	}
//
// # Error Handling
//
// Domain failures map to JSON-RPC error responses with stable codes:
//
//	{
//	  "error": {
//	    "code": -32001,
//	    "message": "title must be at least 10 characters; ...",
//	    "data": {
//	      "kind": "validation_error",
//	      "detail": {"violations": [...]}
//	    }
//	  }
//	}
//
// Error codes:
//   - -32602: Invalid params (malformed arguments)
//   - -32603: Internal error (database, filesystem)
//   - -32001: Validation failed
//   - -32002: Duplicate item (title or content collision)
//   - -32003: Item not found
package mcp
