package server

import (
	"embed"
	"fmt"
	"html/template"
	"strconv"
	"strings"

	"github.com/Its-donkey/armada-console/internal/ui/model"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var pageTemplates = []string{"home", "login", "ranks", "events", "error"}

// loadTemplates parses every page together with the shared layout.
// It returns a map keyed by page name (e.g. "home", "events").
func loadTemplates() (map[string]*template.Template, error) {
	funcs := template.FuncMap{
		"rankName":   model.RankName,
		"truncate":   model.TruncateString,
		"join":       strings.Join,
		"lower":      strings.ToLower,
		"formatAUEC": formatAUEC,
		"lines":      func(s string) []string { return strings.Split(s, "\n") },
	}

	templates := make(map[string]*template.Template, len(pageTemplates))
	for _, name := range pageTemplates {
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/base.tmpl", "templates/"+name+".tmpl")
		if err != nil {
			return nil, fmt.Errorf("parse %s templates: %w", name, err)
		}
		templates[name] = tmpl
	}
	return templates, nil
}

// formatAUEC groups the bank balance in thousands, e.g. 1,250,000 aUEC.
func formatAUEC(amount int64) string {
	digits := strconv.FormatInt(amount, 10)
	sign := ""
	if strings.HasPrefix(digits, "-") {
		sign, digits = "-", digits[1:]
	}
	var b strings.Builder
	for i, ch := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(ch)
	}
	return sign + b.String() + " aUEC"
}
