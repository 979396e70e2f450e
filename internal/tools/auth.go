package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// LoginHandler returns the handler for the "login" tool.
func LoginHandler(d Deps) Handler {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		username, err := req.RequireString("username")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		password, err := req.RequireString("password")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		res := d.Auth.Login(ctx, username, password)
		if !res.OK {
			return mcp.NewToolResultError(formatNotice(res.Notice(""))), nil
		}
		if err := d.Session.Login(res.Data); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		u, _ := d.Session.Current()
		return mcp.NewToolResultText(fmt.Sprintf("Signed in as %s (%s).", u.Name, u.Role)), nil
	}
}

// LogoutHandler returns the handler for the "logout" tool.
func LogoutHandler(d Deps) Handler {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		d.Session.Logout()
		return mcp.NewToolResultText("Signed out."), nil
	}
}

// WhoAmIHandler returns the handler for the "whoami" tool.
func WhoAmIHandler(d Deps) Handler {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		u, ok := d.Session.Current()
		if !ok {
			return mcp.NewToolResultText("Not signed in."), nil
		}
		out := fmt.Sprintf("%s (id %d, role %s)", u.Name, u.ID, u.Role)
		if !u.ExpiresAt.IsZero() {
			out += fmt.Sprintf(", session expires %s", u.ExpiresAt.Format("2006-01-02 15:04 MST"))
		}
		return mcp.NewToolResultText(out), nil
	}
}
