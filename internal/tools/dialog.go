package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/leonardcser/adminkit/internal/api"
	"github.com/leonardcser/adminkit/internal/console"
	"github.com/leonardcser/adminkit/internal/form"
)

// OpenBranchAddHandler opens the "add branch" dialog.
func OpenBranchAddHandler(d Deps) Handler {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ctl, err := d.Console.OpenBranchAdd()
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(formatStatus(ctl)), nil
	}
}

// OpenDutyEditHandler opens the "edit duty" dialog for a duty id.
func OpenDutyEditHandler(d Deps) Handler {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireFloat("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		ctl, err := d.Console.OpenDutyEdit(ctx, int64(id))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(formatStatus(ctl)), nil
	}
}

// OpenMemberHandler opens the member dialog, for edit when an id of a
// loaded member is given.
func OpenMemberHandler(d Deps) Handler {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := int64(req.GetFloat("id", 0))
		var (
			ctl console.Controller
			err error
		)
		if id == 0 {
			ctl, err = d.Console.OpenMemberAdd()
		} else {
			if !d.Console.Members.Loaded() {
				if err := d.Console.Members.Refresh(ctx); err != nil {
					return mcp.NewToolResultError(err.Error()), nil
				}
			}
			m, ok := d.Console.Members.Find(func(m console.Member) bool { return m.ID == id })
			if !ok {
				return mcp.NewToolResultError(fmt.Sprintf("member %d not found", id)), nil
			}
			ctl, err = d.Console.OpenMemberEdit(m)
		}
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(formatStatus(ctl)), nil
	}
}

// AttachHandler adds a local file to the open member dialog.
func AttachHandler(d Deps) Handler {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path, err := req.RequireString("path")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		data, err := d.readFile(path, d.Console.Limits())
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := d.Console.AttachToMember(path, data); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return activeStatus(d)
	}
}

// SetFieldHandler edits one field of the open dialog.
func SetFieldHandler(d Deps) Handler {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		field, err := req.RequireString("field")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		value := req.GetString("value", "")
		ctl, err := d.Console.Active()
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := ctl.SetField(field, value); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(formatStatus(ctl)), nil
	}
}

// StatusHandler reports the open dialog.
func StatusHandler(d Deps) Handler {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return activeStatus(d)
	}
}

// CloseHandler asks the open dialog to close.
func CloseHandler(d Deps) Handler {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ctl, err := d.Console.Active()
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		closed, err := ctl.RequestClose()
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if closed {
			return mcp.NewToolResultText("Dialog closed."), nil
		}
		return mcp.NewToolResultText("You have unsaved changes. Discard them? " +
			"Call dialog-confirm with discard=true to close, or discard=false to keep editing."), nil
	}
}

// ConfirmHandler resolves the discard prompt.
func ConfirmHandler(d Deps) Handler {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		discard, err := req.RequireBool("discard")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		ctl, err := d.Console.Active()
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := ctl.ResolveConfirm(discard); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if discard {
			return mcp.NewToolResultText("Changes discarded; dialog closed."), nil
		}
		return mcp.NewToolResultText(formatStatus(ctl)), nil
	}
}

// SubmitHandler saves the open dialog.
func SubmitHandler(d Deps) Handler {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ctl, err := d.Console.Active()
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		n, err := ctl.Submit(ctx)
		var verr *form.ValidationError
		switch {
		case errors.As(err, &verr):
			return mcp.NewToolResultError("Fix the highlighted fields:\n" + formatFieldErrors(verr.Fields)), nil
		case err != nil:
			return mcp.NewToolResultError(err.Error()), nil
		}
		if n.Kind != api.KindSuccess {
			return mcp.NewToolResultError(formatNotice(n)), nil
		}
		return mcp.NewToolResultText(formatNotice(n)), nil
	}
}

func activeStatus(d Deps) (*mcp.CallToolResult, error) {
	ctl, err := d.Console.Active()
	if err != nil {
		return mcp.NewToolResultText("No dialog is open."), nil
	}
	return mcp.NewToolResultText(formatStatus(ctl)), nil
}
