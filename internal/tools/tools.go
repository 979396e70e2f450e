package tools

import (
	"context"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/leonardcser/adminkit/internal/console"
	"github.com/leonardcser/adminkit/internal/session"
	"github.com/leonardcser/adminkit/internal/upload"
)

// Handler is the mcp-go tool handler shape.
type Handler = func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

var errSignedOut = errors.New("not signed in; call the login tool first")

// Deps are the collaborators the tools drive.
type Deps struct {
	Session *session.Session
	Auth    *console.Auth
	Console *console.Console
	// ReadFile replaces the bounded disk reader, mostly for tests.
	ReadFile func(path string) ([]byte, error)
}

// readFile loads an attachment. The default reader refuses files over l
// before loading them.
func (d Deps) readFile(path string, l upload.Limits) ([]byte, error) {
	if d.ReadFile != nil {
		return d.ReadFile(path)
	}
	f, err := upload.ReadFile(path, l)
	return f.Data, err
}

// signedIn wraps h so it only runs with a live session.
func signedIn(sess *session.Session, h Handler) Handler {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if _, ok := sess.Current(); !ok {
			return mcp.NewToolResultError(errSignedOut.Error()), nil
		}
		return h(ctx, req)
	}
}
