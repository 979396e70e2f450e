package tools

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/leonardcser/adminkit/internal/api"
	"github.com/leonardcser/adminkit/internal/console"
	"github.com/leonardcser/adminkit/internal/form"
)

func formatNotice(n api.Notice) string {
	return fmt.Sprintf("[%s] %s", n.Kind, n.Message)
}

// formatStatus renders the dialog the way the form would show it: values,
// inline errors and whether the submit button is enabled.
func formatStatus(ctl console.Controller) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s dialog (%s)\n", ctl.Name(), ctl.State()))
	if b, err := json.MarshalIndent(displayValues(ctl.Values()), "", "  "); err == nil {
		sb.WriteString("\n```json\n")
		sb.Write(b)
		sb.WriteString("\n```\n")
	}
	if errs := ctl.FieldErrors(); len(errs) > 0 {
		sb.WriteString("\n## Errors\n")
		sb.WriteString(formatFieldErrors(errs))
		sb.WriteString("\n")
	}
	submit := "disabled"
	if ctl.CanSubmit() {
		submit = "enabled"
	}
	sb.WriteString(fmt.Sprintf("\nSubmit: %s", submit))
	return sb.String()
}

func formatFieldErrors(errs form.FieldErrors) string {
	names := make([]string, 0, len(errs))
	for name := range errs {
		names = append(names, name)
	}
	sort.Strings(names)
	lines := make([]string, 0, len(names))
	for _, name := range names {
		lines = append(lines, "- "+name+": "+errs[name])
	}
	return strings.Join(lines, "\n")
}

// displayValues keeps attachment payloads out of the rendered dialog.
func displayValues(v any) any {
	m, ok := v.(console.Member)
	if !ok || len(m.Attachments) == 0 {
		return v
	}
	type shown struct {
		console.Member
		Attachments []string `json:"attachments"`
	}
	names := make([]string, 0, len(m.Attachments))
	for _, f := range m.Attachments {
		names = append(names, fmt.Sprintf("%s (%d bytes)", f.Name, f.Size()))
	}
	return shown{Member: m, Attachments: names}
}
