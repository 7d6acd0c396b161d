// Package logging provides file-based structured logging with rotation.
// Logs are written as JSON to ~/.finewiki-mcp/logs/ so that stdio stays
// clean for the MCP protocol stream.
package logging
