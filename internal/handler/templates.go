package handler

import (
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

func parseTemplates() (*template.Template, error) {
	return template.New("ui").Funcs(template.FuncMap{
		"percent": func(v float64) string { return fmt.Sprintf("%.1f", v) },
	}).ParseFS(templateFS, "templates/*.html")
}
