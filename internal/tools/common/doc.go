// Package common provides helpers shared by the MCP tool packages: chat
// session resolution and the instrumentation wrapper every tool handler
// runs through.
package common
