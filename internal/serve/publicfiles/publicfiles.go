package publicfiles

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed "*.html"
var Forms embed.FS

// RenderForm executes one of the embedded onboarding forms with the given
// session token baked into the submit action.
func RenderForm(templateName, sessionToken string) (string, error) {
	t, err := template.ParseFS(Forms, "*.html")
	if err != nil {
		return "", fmt.Errorf("error parsing embedded form files: %w", err)
	}

	var executed bytes.Buffer
	if err = t.ExecuteTemplate(&executed, templateName, struct{ SessionToken string }{SessionToken: sessionToken}); err != nil {
		return "", fmt.Errorf("executing form template %s: %w", templateName, err)
	}
	return executed.String(), nil
}
