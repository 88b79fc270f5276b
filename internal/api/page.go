package api

import (
	"bytes"
	"embed"
	"html/template"

	"github.com/bobby-s-dev/weather-widget/internal/widget"
)

//go:embed templates/page.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/page.html"))

type pageData struct {
	WidgetID string
	State    string
	View     widget.View
}

func renderPage(w *widget.Widget) (string, error) {
	v := w.View()
	data := pageData{
		WidgetID: w.ID(),
		State:    v.State().String(),
		View:     v,
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
