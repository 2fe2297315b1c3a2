package mcp

import (
	"github.com/ByteMirror/gitscrub/gitcfg"
	"github.com/ByteMirror/gitscrub/scrub"

	gomcp "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

const serverInstructions = "You are connected to gitscrub, a utility that resets a fixed " +
	"allow-list of global git configuration keys and installs a known identity. " +
	"Use scrub_status to see which allow-listed keys are currently set, config_list to read " +
	"the full global configuration, and scrub_run to apply the reset (pass dry_run=true to " +
	"preview the operations without touching the store)."

// ScrubMCPServer exposes the scrub operations over MCP stdio transport.
type ScrubMCPServer struct {
	server   *mcpserver.MCPServer
	store    gitcfg.Store
	scrubber *scrub.Scrubber
}

// NewScrubMCPServer creates an MCP server over the given store and scrubber.
func NewScrubMCPServer(store gitcfg.Store, scrubber *scrub.Scrubber) *ScrubMCPServer {
	s := mcpserver.NewMCPServer(
		"gitscrub",
		"0.1.0",
		mcpserver.WithInstructions(serverInstructions),
	)

	m := &ScrubMCPServer{
		server:   s,
		store:    store,
		scrubber: scrubber,
	}
	m.registerTools()

	Log("server created: tools registered")
	return m
}

func (m *ScrubMCPServer) registerTools() {
	scrubStatus := gomcp.NewTool("scrub_status",
		gomcp.WithDescription(
			"Check which allow-listed global git config keys are currently set and whether "+
				"the identity keys already hold the expected values. Credential-bearing key "+
				"names are redacted.",
		),
		gomcp.WithReadOnlyHintAnnotation(true),
	)
	m.server.AddTool(scrubStatus, handleScrubStatus(m.scrubber))

	configList := gomcp.NewTool("config_list",
		gomcp.WithDescription(
			"List the full global git configuration as key/value pairs, in store order.",
		),
		gomcp.WithReadOnlyHintAnnotation(true),
	)
	m.server.AddTool(configList, handleConfigList(m.store))

	scrubRun := gomcp.NewTool("scrub_run",
		gomcp.WithDescription(
			"Apply the reset: unset every allow-listed key, install the identity, and return "+
				"the per-operation outcomes plus the remaining configuration. "+
				"With dry_run=true, only the planned operations are returned and nothing is modified.",
		),
		gomcp.WithBoolean("dry_run",
			gomcp.Description("Preview the planned operations without mutating the store. Defaults to false."),
		),
	)
	m.server.AddTool(scrubRun, handleScrubRun(m.scrubber))
}

// Serve starts the MCP server using stdio transport.
func (m *ScrubMCPServer) Serve() error {
	return mcpserver.ServeStdio(m.server)
}
