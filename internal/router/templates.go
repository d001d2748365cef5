package router

import (
	"fmt"
	"html/template"
	"net/url"
	"path/filepath"
	"time"
	"yatube/internal/utils"

	"github.com/gin-contrib/multitemplate"
)

// Views lists every page template by the name handlers render it under.
var Views = []string{
	"posts/index.html",
	"posts/group_list.html",
	"posts/profile.html",
	"posts/post_detail.html",
	"posts/create_post.html",
	"posts/follow.html",
	"auth/signup.html",
	"auth/login.html",
	"auth/logged_out.html",
	"error.html",
}

var months = [...]string{
	"января", "февраля", "марта", "апреля", "мая", "июня",
	"июля", "августа", "сентября", "октября", "ноября", "декабря",
}

// FormatDate renders t as "2 января 2006".
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return fmt.Sprintf("%d %s %d", t.Day(), months[t.Month()-1], t.Year())
}

func FuncMap() template.FuncMap {
	return template.FuncMap{
		"dict": func(values ...interface{}) (map[string]interface{}, error) {
			if len(values)%2 != 0 {
				return nil, fmt.Errorf("invalid dict call")
			}
			dict := make(map[string]interface{}, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					return nil, fmt.Errorf("dict keys must be strings")
				}
				dict[key] = values[i+1]
			}
			return dict, nil
		},
		"add": func(a, b int) int {
			return a + b
		},
		"date":       FormatDate,
		"markdown":   utils.RenderMarkdown,
		"comment":    utils.RenderComment,
		"truncate":   utils.TruncateChars,
		"urlquery":   url.QueryEscape,
		"pathescape": url.PathEscape,
		"uintstr": func(id uint) string {
			return fmt.Sprint(id)
		},
	}
}

// LoadTemplates pairs every view with the shared layouts, includes and
// components.
func LoadTemplates(templatesDir string) (multitemplate.Renderer, error) {
	r := multitemplate.NewRenderer()

	var shared []string
	for _, dir := range []string{"layouts", "includes", "components"} {
		files, err := filepath.Glob(filepath.Join(templatesDir, dir, "*.html"))
		if err != nil {
			return nil, err
		}
		shared = append(shared, files...)
	}

	funcMap := FuncMap()
	for _, name := range Views {
		files := append(append([]string{}, shared...), filepath.Join(templatesDir, "views", name))
		tmpl, err := template.New(filepath.Base(files[0])).Funcs(funcMap).ParseFiles(files...)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		r.Add(name, tmpl)
	}
	return r, nil
}
