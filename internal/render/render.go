// Package render builds alert texts from the embedded message templates.
package render

import (
	"bytes"
	"embed"
	"strings"
	"text/template"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

type Renderer struct {
	t *template.Template
}

// AlertData feeds the "alert" template: category, free-text message and address.
type AlertData struct {
	Category string
	Message  string
	Address  string
}

// DeliveryData feeds the per-recipient "title" and "body" templates.
type DeliveryData struct {
	Category   string
	Alert      string
	Distance   string
	ETAMinutes int
}

func NewRenderer() (*Renderer, error) {
	t, err := template.New("alerts").
		Funcs(template.FuncMap{"upper": strings.ToUpper}).
		ParseFS(templatesFS, "templates/*.tmpl")
	if err != nil {
		return nil, err
	}
	return &Renderer{t: t}, nil
}

func (r *Renderer) Render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := r.t.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

func (r *Renderer) Alert(d AlertData) (string, error) {
	return r.Render("alert", d)
}

func (r *Renderer) Delivery(d DeliveryData) (title, body string, err error) {
	if title, err = r.Render("title", d); err != nil {
		return "", "", err
	}
	if body, err = r.Render("body", d); err != nil {
		return "", "", err
	}
	return title, body, nil
}
