package mcp

import (
	"context"
	"encoding/json"

	"github.com/ByteMirror/gitscrub/gitcfg"
	"github.com/ByteMirror/gitscrub/log"
	"github.com/ByteMirror/gitscrub/scrub"

	gomcp "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// statusView is the JSON representation returned by scrub_status.
type statusView struct {
	PresentKeys []entryView `json:"present_keys"`
	IdentityOK  bool        `json:"identity_ok"`
	Clean       bool        `json:"clean"`
}

type entryView struct {
	Key   string `json:"key"`
	Value string `json:"value,omitempty"`
}

// opView is the JSON representation of one operation outcome in scrub_run.
type opView struct {
	Kind   string `json:"kind"`
	Key    string `json:"key"`
	Value  string `json:"value,omitempty"`
	Status string `json:"status,omitempty"`
	Error  string `json:"error,omitempty"`
}

// handleScrubStatus reports the allow-listed keys still present in the store.
func handleScrubStatus(scrubber *scrub.Scrubber) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
		Log("tool call: scrub_status")
		present, identityOK, err := scrubber.Status(ctx)
		if err != nil {
			Log("scrub_status error: %v", err)
			return gomcp.NewToolResultError("failed to read store: " + err.Error()), nil
		}

		view := statusView{
			PresentKeys: []entryView{},
			IdentityOK:  identityOK,
			Clean:       len(present) == 0 && identityOK,
		}
		for _, e := range present {
			// Values of allow-listed keys can hold credentials (smtp
			// passwords, tokens in URLs); only the sanitized key goes out.
			view.PresentKeys = append(view.PresentKeys, entryView{Key: log.SanitizeKey(e.Key)})
		}

		data, err := json.MarshalIndent(view, "", "  ")
		if err != nil {
			return gomcp.NewToolResultError("failed to marshal status: " + err.Error()), nil
		}
		return gomcp.NewToolResultText(string(data)), nil
	}
}

// handleConfigList returns the full global listing.
func handleConfigList(store gitcfg.Store) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
		Log("tool call: config_list")
		entries, err := store.List(ctx)
		if err != nil {
			Log("config_list error: %v", err)
			return gomcp.NewToolResultError("failed to list configuration: " + err.Error()), nil
		}

		views := make([]entryView, 0, len(entries))
		for _, e := range entries {
			views = append(views, entryView{Key: e.Key, Value: e.Value})
		}
		data, err := json.MarshalIndent(views, "", "  ")
		if err != nil {
			return gomcp.NewToolResultError("failed to marshal listing: " + err.Error()), nil
		}

		Log("config_list: returning %d entries", len(views))
		return gomcp.NewToolResultText(string(data)), nil
	}
}

// handleScrubRun applies the reset, or previews it with dry_run.
func handleScrubRun(scrubber *scrub.Scrubber) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
		dryRun := req.GetBool("dry_run", false)
		Log("tool call: scrub_run (dry_run=%v)", dryRun)

		if dryRun {
			ops, err := scrubber.Plan(ctx)
			if err != nil {
				Log("scrub_run plan error: %v", err)
				return gomcp.NewToolResultError("failed to plan: " + err.Error()), nil
			}
			views := make([]opView, 0, len(ops))
			for _, op := range ops {
				views = append(views, opView{
					Kind:  op.Kind.String(),
					Key:   log.SanitizeKey(op.Key),
					Value: op.Value,
				})
			}
			data, err := json.MarshalIndent(views, "", "  ")
			if err != nil {
				return gomcp.NewToolResultError("failed to marshal plan: " + err.Error()), nil
			}
			return gomcp.NewToolResultText(string(data)), nil
		}

		report, err := scrubber.Run(ctx)
		if err != nil {
			Log("scrub_run error: %v", err)
			return gomcp.NewToolResultError("scrub failed: " + err.Error()), nil
		}

		result := struct {
			Operations []opView    `json:"operations"`
			Remaining  []entryView `json:"remaining"`
			Failed     bool        `json:"failed"`
		}{Failed: report.Failed()}
		for _, res := range report.Results {
			result.Operations = append(result.Operations, opView{
				Kind:   res.Op.Kind.String(),
				Key:    log.SanitizeKey(res.Op.Key),
				Value:  res.Op.Value,
				Status: res.Status.String(),
				Error:  res.Err,
			})
		}
		for _, e := range report.Remaining {
			result.Remaining = append(result.Remaining, entryView{Key: e.Key, Value: e.Value})
		}

		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return gomcp.NewToolResultError("failed to marshal result: " + err.Error()), nil
		}
		Log("scrub_run: %d operations, %d entries remain", len(result.Operations), len(result.Remaining))
		return gomcp.NewToolResultText(string(data)), nil
	}
}
