package tools

import (
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Register adds every console tool to s.
func Register(s *server.MCPServer, d Deps) {
	s.AddTool(mcp.NewTool("login",
		mcp.WithDescription("Signs in to the management console and remembers the session until it expires"),
		mcp.WithString("username", mcp.Required(), mcp.Description("Account user name")),
		mcp.WithString("password", mcp.Required(), mcp.Description("Account password")),
	), LoginHandler(d))

	s.AddTool(mcp.NewTool("logout",
		mcp.WithDescription("Signs out and forgets the stored session"),
	), LogoutHandler(d))

	s.AddTool(mcp.NewTool("whoami",
		mcp.WithDescription("Shows the signed-in user and when the session expires"),
	), WhoAmIHandler(d))

	s.AddTool(mcp.NewTool("list",
		mcp.WithDescription("Reloads and prints a console table"),
		mcp.WithString("table", mcp.Required(), mcp.Enum("branches", "duties", "members"), mcp.Description("Table to print")),
	), signedIn(d.Session, ListHandler(d)))

	s.AddTool(mcp.NewTool("branch-add-open",
		mcp.WithDescription("Opens the add-branch dialog"),
	), signedIn(d.Session, OpenBranchAddHandler(d)))

	s.AddTool(mcp.NewTool("duty-edit-open",
		mcp.WithDescription("Opens the edit-duty dialog populated from an existing duty"),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Duty id")),
	), signedIn(d.Session, OpenDutyEditHandler(d)))

	s.AddTool(mcp.NewTool("member-open",
		mcp.WithDescription("Opens the member dialog: empty to add, or populated when an id is given"),
		mcp.WithNumber("id", mcp.Description("Member id to edit")),
	), signedIn(d.Session, OpenMemberHandler(d)))

	s.AddTool(mcp.NewTool("member-attach",
		mcp.WithDescription(multiline(
			"Adds a local file to the open member dialog as a pending attachment",
			"Accepted: txt, pdf, png, jpeg, zip, xlsx, docx. Files are checked against the size limit before upload.",
		)),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path of the file to attach")),
	), signedIn(d.Session, AttachHandler(d)))

	s.AddTool(mcp.NewTool("dialog-set",
		mcp.WithDescription("Sets one field of the open dialog. Multi-select fields take a comma-separated list."),
		mcp.WithString("field", mcp.Required(), mcp.Description("Field name, e.g. name, email, roles")),
		mcp.WithString("value", mcp.Description("New value")),
	), signedIn(d.Session, SetFieldHandler(d)))

	s.AddTool(mcp.NewTool("dialog-status",
		mcp.WithDescription("Shows the open dialog's values, inline errors and whether it can be submitted"),
	), StatusHandler(d))

	s.AddTool(mcp.NewTool("dialog-close",
		mcp.WithDescription("Closes the open dialog; asks for confirmation when there are unsaved changes"),
	), CloseHandler(d))

	s.AddTool(mcp.NewTool("dialog-confirm",
		mcp.WithDescription("Answers the unsaved-changes prompt"),
		mcp.WithBoolean("discard", mcp.Required(), mcp.Description("true discards the changes and closes; false keeps editing")),
	), ConfirmHandler(d))

	s.AddTool(mcp.NewTool("dialog-submit",
		mcp.WithDescription("Saves the open dialog"),
	), signedIn(d.Session, SubmitHandler(d)))
}

// multiline joins lines with newlines for tool descriptions.
func multiline(lines ...string) string { return strings.Join(lines, "\n") }
