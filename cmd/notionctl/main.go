// Notionctl drives a Notion workspace from the command line.
//
// Every tool is available as a subcommand, and the same tools can be served
// to agents over MCP (stdio) or over a small HTTP API.
//
// Usage:
//
//	# Store a token in the OS keychain and check it
//	notionctl setup --token ntn_... --verify
//
//	# Run a tool
//	notionctl search "roadmap" --filter page --max-results 5
//
//	# Serve the tools to an MCP client
//	notionctl serve mcp
package main

import (
	"errors"
	"os"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	root := newRootCmd(buildRuntime)
	if err := execute(root, os.Stderr); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(exitGeneral)
	}
}
