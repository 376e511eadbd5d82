package web

import (
	"embed"
	"html/template"
	"io/fs"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// staticRoot returns the embedded asset tree rooted below "static", so
// the router can mount it at /static without doubling the prefix.
func staticRoot() (fs.FS, error) {
	return fs.Sub(staticFS, "static")
}

// parseTemplates parses the embedded page templates with the helper set
// attached. Templates are addressed by their base file name.
func parseTemplates() (*template.Template, error) {
	return template.New("").Funcs(Helpers()).ParseFS(templateFS, "templates/*.html")
}
