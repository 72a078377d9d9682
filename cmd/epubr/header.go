package main

import (
	"bytes"
	"fmt"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"

	"epubr/config"
)

// HeaderValues are available for page header template expansion.
type HeaderValues struct {
	Title    string
	Creator  string
	Language string
	Href     string
	Index    int
	Total    int
	Page     int
	Pages    int
	Online   bool
}

// header renders page header, template is parsed once.
type header struct {
	tmpl *template.Template
}

func newHeader(field string) (*header, error) {
	tmpl, err := template.New(string(config.HeaderTemplateFieldName)).Funcs(sprig.FuncMap()).Parse(field)
	if err != nil {
		return nil, fmt.Errorf("unable to parse template field %s: %w", config.HeaderTemplateFieldName, err)
	}
	return &header{tmpl: tmpl}, nil
}

func (h *header) expand(v HeaderValues) (string, error) {
	buf := new(bytes.Buffer)
	if err := h.tmpl.Execute(buf, v); err != nil {
		return "", fmt.Errorf("unable to expand template field %s: %w", config.HeaderTemplateFieldName, err)
	}
	return buf.String(), nil
}
