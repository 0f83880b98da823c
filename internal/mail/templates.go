package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// TemplateData is the data every template receives.
type TemplateData struct {
	AppName     string
	DisplayName string
	Link        string
}

const (
	TemplateVerifyEmail = "verify-email.html"
	TemplateWelcome     = "welcome.html"
)

// Render executes the named template.
func Render(name string, data TemplateData) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}
