package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/leonardcser/adminkit/internal/console"
)

// ListHandler refreshes and prints one of the console tables.
func ListHandler(d Deps) Handler {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		table, err := req.RequireString("table")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		var lines []string
		switch table {
		case "branches":
			if err := d.Console.Branches.Refresh(ctx); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			for _, b := range d.Console.Branches.Items() {
				lines = append(lines, fmt.Sprintf("%d. %s", b.ID, b.Name))
			}
		case "duties":
			if err := d.Console.Duties.Refresh(ctx); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			for _, du := range d.Console.Duties.Items() {
				lines = append(lines, fmt.Sprintf("%d. %s", du.ID, du.Name))
			}
		case "members":
			if err := d.Console.Members.Refresh(ctx); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			for _, m := range d.Console.Members.Items() {
				lines = append(lines, formatMember(m))
			}
		default:
			return mcp.NewToolResultError(fmt.Sprintf("unknown table %q (branches, duties, members)", table)), nil
		}
		if len(lines) == 0 {
			return mcp.NewToolResultText("No rows."), nil
		}
		return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
	}
}

func formatMember(m console.Member) string {
	s := fmt.Sprintf("%d. %s <%s>", m.ID, m.Name, m.Email)
	if roles := m.RoleList(); len(roles) > 0 {
		s += " [" + strings.Join(roles, ", ") + "]"
	}
	return s
}
