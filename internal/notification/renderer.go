package notification

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
)

//go:embed templates/*.html templates/*.txt
var templateFS embed.FS

// Renderer turns a notification kind and its data into message bodies
type Renderer interface {
	Render(kind Kind, data *View) (html string, text string, err error)
}

type rowData struct {
	Label string
	Value string
}

type buttonData struct {
	Label string
	URL   string
}

var funcs = map[string]interface{}{
	"row": func(label, value string) rowData {
		return rowData{Label: label, Value: value}
	},
	"button": func(label, url string) buttonData {
		return buttonData{Label: label, URL: url}
	},
	"join": strings.Join,
}

// TemplateRenderer renders the embedded HTML and plain-text templates
type TemplateRenderer struct {
	html map[Kind]*htmltemplate.Template
	text map[Kind]*texttemplate.Template
}

// NewTemplateRenderer parses every template up front so a broken template
// fails at startup instead of on first send
func NewTemplateRenderer() (*TemplateRenderer, error) {
	r := &TemplateRenderer{
		html: make(map[Kind]*htmltemplate.Template, len(Kinds)),
		text: make(map[Kind]*texttemplate.Template, len(Kinds)),
	}

	for _, kind := range Kinds {
		h, err := htmltemplate.New("layout.html").
			Funcs(htmltemplate.FuncMap(funcs)).
			ParseFS(templateFS, "templates/layout.html", "templates/"+string(kind)+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s html template: %w", kind, err)
		}
		r.html[kind] = h

		t, err := texttemplate.New("layout.txt").
			Funcs(texttemplate.FuncMap(funcs)).
			ParseFS(templateFS, "templates/layout.txt", "templates/"+string(kind)+".txt")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s text template: %w", kind, err)
		}
		r.text[kind] = t
	}

	return r, nil
}

func (r *TemplateRenderer) Render(kind Kind, data *View) (string, string, error) {
	h, ok := r.html[kind]
	if !ok {
		return "", "", fmt.Errorf("unknown notification kind %q", kind)
	}
	data.Staff = kind.IsStaff()

	var htmlBuf bytes.Buffer
	if err := h.Execute(&htmlBuf, data); err != nil {
		return "", "", fmt.Errorf("failed to render %s html: %w", kind, err)
	}

	var textBuf bytes.Buffer
	if err := r.text[kind].Execute(&textBuf, data); err != nil {
		return "", "", fmt.Errorf("failed to render %s text: %w", kind, err)
	}

	return htmlBuf.String(), strings.TrimSpace(textBuf.String()) + "\n", nil
}
