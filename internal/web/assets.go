// ABOUTME: Embedded dashboard template and static assets.
// ABOUTME: The binary serves the UI without any files on disk.
package web

import (
	"embed"
	"html/template"
	"io/fs"
	"time"

	"github.com/harperreed/habits/internal/models"
)

//go:embed templates/*.tmpl static/*
var assets embed.FS

func staticFS() fs.FS {
	sub, err := fs.Sub(assets, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

var templateFuncs = template.FuncMap{
	"date":    models.FormatDate,
	"dayName": func(t time.Time) string { return t.Format("Mon") },
	"dayNum":  func(t time.Time) string { return t.Format("Jan 2") },
	"percent": func(rate float64) int { return int(rate*100 + 0.5) },
}

func loadTemplates() *template.Template {
	return template.Must(template.New("").Funcs(templateFuncs).ParseFS(assets, "templates/*.tmpl"))
}
