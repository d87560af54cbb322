// Package driving holds the use-case interfaces that the CLI, the chat TUI
// and the MCP server call into. The services package implements them.
package driving
