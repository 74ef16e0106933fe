package mcp

import "github.com/mark3labs/mcp-go/mcp"

var parseToolDef = mcp.NewTool("interval_parse",
	mcp.WithDescription("Read an interval table (CSV rows of start,end or start,end,weight) and return its intervals without storing them. "+
		"Blank lines and lines starting with # are ignored; rows with a column count other than 2 or 3 are skipped and reported as warnings."),
	mcp.WithString("path", mcp.Required(), mcp.Description("Path to a .csv or .txt file")),
	mcp.WithReadOnlyHintAnnotation(true),
)

var importToolDef = mcp.NewTool("interval_import",
	mcp.WithDescription("Parse an interval table and store it in the catalog."),
	mcp.WithString("path", mcp.Required(), mcp.Description("Path to a .csv or .txt file")),
	mcp.WithString("name", mcp.Description("Optional unique name for the set")),
	mcp.WithString("mode", mcp.Enum("error", "replace"), mcp.Description("Behavior when the name is taken (default: error)")),
)

var fetchToolDef = mcp.NewTool("interval_fetch",
	mcp.WithDescription("Fetch a stored interval set by id or name."),
	mcp.WithString("id", mcp.Description("Set ID (mutually exclusive with name)")),
	mcp.WithString("name", mcp.Description("Set name")),
	mcp.WithBoolean("include_deleted", mcp.Description("Include soft-deleted sets")),
	mcp.WithBoolean("include_intervals", mcp.Description("Return the intervals (default: true)")),
	mcp.WithString("filter", mcp.Description("Keep only intervals matching an expression over start, end, weight, length, weighted (e.g. \"weight > 2 && start >= 10\")")),
	mcp.WithReadOnlyHintAnnotation(true),
)

var listToolDef = mcp.NewTool("interval_list",
	mcp.WithDescription("List stored interval sets, newest first."),
	mcp.WithNumber("limit", mcp.Description("Max items (default 20, max 100)")),
	mcp.WithNumber("offset", mcp.Description("Items to skip")),
	mcp.WithBoolean("include_deleted", mcp.Description("Include soft-deleted sets")),
	mcp.WithReadOnlyHintAnnotation(true),
)

var deleteToolDef = mcp.NewTool("interval_delete",
	mcp.WithDescription("Soft-delete a stored interval set by id or name."),
	mcp.WithString("id", mcp.Description("Set ID (mutually exclusive with name)")),
	mcp.WithString("name", mcp.Description("Set name")),
	mcp.WithDestructiveHintAnnotation(true),
)

var exportToolDef = mcp.NewTool("interval_export",
	mcp.WithDescription("Write a stored interval set back out as a CSV interval table."),
	mcp.WithString("id", mcp.Description("Set ID (mutually exclusive with name)")),
	mcp.WithString("name", mcp.Description("Set name")),
	mcp.WithString("path", mcp.Description("Destination .csv file (default: ~/.ivtab/exports/<name>-<timestamp>.csv)")),
)
