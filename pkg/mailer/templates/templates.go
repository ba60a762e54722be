package templates

import (
	"bytes"
	"embed"
	"fmt"
	htmpl "html/template"

	"github.com/loopline-app/loopline-api/pkg/mailer"
)

//go:embed *.tmpl
var FS embed.FS

var parsed = htmpl.Must(htmpl.ParseFS(FS, "*.tmpl"))

// RenderHTML renders the named template with the job data.
func RenderHTML(name string, data map[string]any) (string, error) {
	var buf bytes.Buffer
	if err := parsed.ExecuteTemplate(&buf, name+".tmpl", data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

// Subject returns the subject line for a known template name.
func Subject(name string) string {
	switch name {
	case mailer.TemplateVerifyEmail:
		return "Verify your email address"
	case mailer.TemplateResetPassword:
		return "Reset your password"
	default:
		return "Notification"
	}
}
